package httpd

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/marisa-playground/labeling-service/internal/auth"
	"github.com/marisa-playground/labeling-service/internal/service"
)

type Handler struct {
	authService          service.AuthService
	poolService          service.PoolService
	ingestService        service.IngestService
	assignmentService    service.AssignmentService
	evaluationService    service.EvaluationService
	consolidationService service.ConsolidationService
	metricsService       service.MetricsService
	exportService        service.ExportService
	logger               zerolog.Logger
}

func NewHandler(
	authService service.AuthService,
	poolService service.PoolService,
	ingestService service.IngestService,
	assignmentService service.AssignmentService,
	evaluationService service.EvaluationService,
	consolidationService service.ConsolidationService,
	metricsService service.MetricsService,
	exportService service.ExportService,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		authService:          authService,
		poolService:          poolService,
		ingestService:        ingestService,
		assignmentService:    assignmentService,
		evaluationService:    evaluationService,
		consolidationService: consolidationService,
		metricsService:       metricsService,
		exportService:        exportService,
		logger:               logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/api/v1", func(api chi.Router) {
		api.Post("/auth/login", h.Login)

		// Всё остальное — за bearer-аутентификацией; операции сверяются
		// с таблицей политик.
		api.Group(func(protected chi.Router) {
			protected.Use(h.Authenticate)

			protected.Route("/users", func(r chi.Router) {
				r.With(h.Require(auth.OpUserCreate)).Post("/", h.CreateUser)
			})

			protected.Route("/pools", func(r chi.Router) {
				r.With(h.Require(auth.OpPoolCreate)).Post("/", h.CreatePool)
				r.With(h.Require(auth.OpPoolList)).Get("/", h.GetAllPools)
				r.With(h.Require(auth.OpPoolGet)).Get("/{pool_id}", h.GetPoolByID)
				r.With(h.Require(auth.OpQuestionCreate)).Post("/{pool_id}/questions", h.CreateQuestion)
				r.With(h.Require(auth.OpQuestionList)).Get("/{pool_id}/questions", h.GetQuestions)
				r.With(h.Require(auth.OpPoolIngest)).Post("/{pool_id}/upload-zip", h.UploadZip)
				r.With(h.Require(auth.OpTaskNext)).Get("/{pool_id}/next-task", h.NextTask)
				r.With(h.Require(auth.OpPoolMetrics)).Get("/{pool_id}/metrics", h.PoolMetrics)
				r.With(h.Require(auth.OpTaskList)).Get("/{pool_id}/tasks", h.GetPoolTasks)
				r.With(h.Require(auth.OpPoolExport)).Get("/{pool_id}/export", h.ExportConsolidated)
			})

			protected.Route("/tasks", func(r chi.Router) {
				r.With(h.Require(auth.OpTaskDetail)).Get("/{task_id}/consolidation", h.GetConsolidationDetail)
				r.With(h.Require(auth.OpTaskConsolidate)).Post("/{task_id}/consolidate", h.Consolidate)
				r.With(h.Require(auth.OpTaskDeconsolidate)).Post("/{task_id}/deconsolidate", h.Deconsolidate)
				r.With(h.Require(auth.OpTaskMetrics)).Get("/{task_id}/metrics", h.TaskMetrics)
			})

			protected.With(h.Require(auth.OpEvaluationRecord)).Post("/evaluations", h.RecordEvaluation)
		})
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "labeling-service",
		"timestamp": time.Now().UTC(),
	}

	writeJSON(w, http.StatusOK, response)
}

func getIntQueryParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	response := map[string]interface{}{
		"success": true,
		"data":    data,
	}
	writeJSON(w, http.StatusOK, response)
}
