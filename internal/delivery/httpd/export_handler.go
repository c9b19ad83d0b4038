package httpd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/marisa-playground/labeling-service/internal/service"
)

func (h *Handler) ExportConsolidated(w http.ResponseWriter, r *http.Request) {
	poolID := chi.URLParam(r, "pool_id")
	if _, err := uuid.Parse(poolID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pool_id format")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = service.ExportFormatJSON
	}

	ctx := r.Context()
	fileName := fmt.Sprintf("pool_%s_%s", poolID, time.Now().Format("20060102"))

	switch format {
	case service.ExportFormatJSON:
		records, err := h.exportService.ExportJSON(ctx, poolID)
		if err != nil {
			h.handleServiceError(w, err)
			return
		}
		writeSuccess(w, records)

	case service.ExportFormatCSV:
		data, err := h.exportService.ExportCSV(ctx, poolID)
		if err != nil {
			h.handleServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", fileName))
		w.WriteHeader(http.StatusOK)
		w.Write(data)

	case service.ExportFormatXLSX:
		data, err := h.exportService.ExportXLSX(ctx, poolID)
		if err != nil {
			h.handleServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", fileName))
		w.WriteHeader(http.StatusOK)
		w.Write(data)

	default:
		writeError(w, http.StatusBadRequest, "Unsupported export format")
	}
}
