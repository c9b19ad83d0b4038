package httpd

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/marisa-playground/labeling-service/internal/models"
)

func (h *Handler) GetConsolidationDetail(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")
	if _, err := uuid.Parse(taskID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid task_id format")
		return
	}

	ctx := r.Context()
	detail, err := h.consolidationService.GetDetail(ctx, taskID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, detail)
}

func (h *Handler) Consolidate(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")
	if _, err := uuid.Parse(taskID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid task_id format")
		return
	}

	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.ConsolidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Action == "" {
		writeError(w, http.StatusBadRequest, "action is required")
		return
	}

	ctx := r.Context()
	if err := h.consolidationService.Apply(ctx, taskID, user.ID, &req); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Action applied successfully",
		"task_id": taskID,
		"action":  req.Action,
	})
}

func (h *Handler) Deconsolidate(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")
	if _, err := uuid.Parse(taskID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid task_id format")
		return
	}

	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx := r.Context()
	if err := h.consolidationService.Deconsolidate(ctx, taskID, user.ID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Task returned to active state",
		"task_id": taskID,
	})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	errMsg := err.Error()

	switch {
	case errMsg == "pool not found" || errMsg == "task not found":
		writeError(w, http.StatusNotFound, errMsg)
	case errMsg == "nothing consolidated":
		writeError(w, http.StatusNotFound, errMsg)
	case errMsg == "invalid credentials" || errMsg == "user is blocked" || errMsg == "invalid token":
		writeError(w, http.StatusUnauthorized, errMsg)
	case errMsg == "email already registered" || errMsg == "task is not consolidated":
		writeError(w, http.StatusConflict, errMsg)
	case strings.Contains(errMsg, "does not allow"):
		writeError(w, http.StatusConflict, errMsg)
	case errMsg == "answers are required" ||
		errMsg == "reason is required" ||
		errMsg == "extra_repetitions must be at least 1" ||
		errMsg == "invalid action" ||
		errMsg == "invalid role" ||
		errMsg == "invalid question kind" ||
		errMsg == "invalid task status" ||
		errMsg == "unknown question" ||
		errMsg == "options are required for select questions" ||
		errMsg == "required_repetitions must be at least 1" ||
		errMsg == "task_id and session_id are required" ||
		errMsg == "archive size exceeds limit" ||
		errMsg == "failed to read archive":
		writeError(w, http.StatusBadRequest, errMsg)
	default:
		h.logger.Error().Err(err).Msg("Service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
