package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/marisa-playground/labeling-service/internal/models"
)

func (h *Handler) CreatePool(w http.ResponseWriter, r *http.Request) {
	// Читаем JSON запрос
	var req models.CreatePoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Валидация
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	ctx := r.Context()
	pool, err := h.poolService.CreatePool(ctx, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, pool)
}

func (h *Handler) GetAllPools(w http.ResponseWriter, r *http.Request) {
	page := getIntQueryParam(r, "page", 1)
	limit := getIntQueryParam(r, "limit", 20)

	ctx := r.Context()
	pools, total, err := h.poolService.GetAllPools(ctx, page, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"pools": pools,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func (h *Handler) GetPoolByID(w http.ResponseWriter, r *http.Request) {
	poolID := chi.URLParam(r, "pool_id")
	if _, err := uuid.Parse(poolID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pool_id format")
		return
	}

	ctx := r.Context()
	pool, err := h.poolService.GetPoolByID(ctx, poolID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, pool)
}

func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	poolID := chi.URLParam(r, "pool_id")
	if _, err := uuid.Parse(poolID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pool_id format")
		return
	}

	var req models.CreateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	ctx := r.Context()
	question, err := h.poolService.CreateQuestion(ctx, poolID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, question)
}

func (h *Handler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	poolID := chi.URLParam(r, "pool_id")
	if _, err := uuid.Parse(poolID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pool_id format")
		return
	}

	ctx := r.Context()
	questions, err := h.poolService.GetQuestions(ctx, poolID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, questions)
}

func (h *Handler) GetPoolTasks(w http.ResponseWriter, r *http.Request) {
	poolID := chi.URLParam(r, "pool_id")
	if _, err := uuid.Parse(poolID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pool_id format")
		return
	}

	status := r.URL.Query().Get("status")
	page := getIntQueryParam(r, "page", 1)
	limit := getIntQueryParam(r, "limit", 20)

	ctx := r.Context()
	tasks, total, err := h.poolService.ListTasks(ctx, poolID, status, page, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, models.TasksResponse{
		Tasks: tasks,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func (h *Handler) PoolMetrics(w http.ResponseWriter, r *http.Request) {
	poolID := chi.URLParam(r, "pool_id")
	if _, err := uuid.Parse(poolID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pool_id format")
		return
	}

	ctx := r.Context()
	metrics, err := h.metricsService.PoolMetrics(ctx, poolID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, metrics)
}
