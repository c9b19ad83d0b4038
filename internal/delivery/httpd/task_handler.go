package httpd

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/marisa-playground/labeling-service/internal/models"
	"github.com/marisa-playground/labeling-service/internal/service"
)

func (h *Handler) NextTask(w http.ResponseWriter, r *http.Request) {
	poolID := chi.URLParam(r, "pool_id")
	if _, err := uuid.Parse(poolID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pool_id format")
		return
	}

	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx := r.Context()
	task, err := h.assignmentService.NextTask(ctx, poolID, user.ID)
	if err != nil {
		if errors.Is(err, service.ErrNoTaskAvailable) {
			writeError(w, http.StatusNotFound, "no task available")
			return
		}
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, task)
}

func (h *Handler) RecordEvaluation(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.RecordEvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.TaskID != "" {
		if _, err := uuid.Parse(req.TaskID); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid task_id format")
			return
		}
	}

	ctx := r.Context()
	response, err := h.evaluationService.RecordEvaluation(ctx, user.ID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, response)
}

func (h *Handler) TaskMetrics(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")
	if _, err := uuid.Parse(taskID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid task_id format")
		return
	}

	ctx := r.Context()
	metrics, err := h.consolidationService.TaskMetrics(ctx, taskID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, metrics)
}
