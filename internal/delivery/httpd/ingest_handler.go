package httpd

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (h *Handler) UploadZip(w http.ResponseWriter, r *http.Request) {
	poolID := chi.URLParam(r, "pool_id")
	if _, err := uuid.Parse(poolID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pool_id format")
		return
	}

	// Парсим multipart форму
	if err := r.ParseMultipartForm(100 << 20); err != nil { // 100MB
		writeError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	// Получаем файл
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".zip") {
		writeError(w, http.StatusBadRequest, "File must be a zip archive")
		return
	}

	// Читаем содержимое файла
	archive, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	ctx := r.Context()
	response, err := h.ingestService.IngestArchive(ctx, poolID, archive)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, response)
}
