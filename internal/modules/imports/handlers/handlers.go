// Package handlers provides HTTP handlers for CSV imports.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aristath/tradejournal/internal/modules/imports"
	"github.com/aristath/tradejournal/internal/modules/journal"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const defaultFilename = "upload.csv"

// Handler handles import HTTP requests
type Handler struct {
	service        *imports.Service
	maxUploadBytes int64
	log            zerolog.Logger
}

// NewHandler creates a new import handler
func NewHandler(service *imports.Service, maxUploadBytes int64, log zerolog.Logger) *Handler {
	return &Handler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		log:            log.With().Str("handler", "imports").Logger(),
	}
}

// HandleImport handles POST /api/imports
// Accepts a multipart form with a "file" field, or the CSV text as the request body.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	body, filename, ok := h.openUpload(w, r)
	if !ok {
		return
	}
	defer body.Close()

	summary, err := h.service.ImportCSV(r.Context(), filename, body)
	switch {
	case errors.Is(err, imports.ErrNothingImportable):
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error": summary.Message,
			"data":  summary,
		})
	case uploadErrorStatus(err) != 0:
		h.writeError(w, uploadErrorStatus(err), err.Error())
	case err != nil:
		h.log.Error().Err(err).Str("filename", filename).Msg("Import failed")
		h.writeError(w, http.StatusInternalServerError, "Import failed")
	default:
		h.writeData(w, http.StatusCreated, summary)
	}
}

// HandlePreview handles POST /api/imports/preview
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	body, _, ok := h.openUpload(w, r)
	if !ok {
		return
	}
	defer body.Close()

	summary, err := h.service.Preview(r.Context(), body)
	switch {
	case uploadErrorStatus(err) != 0:
		h.writeError(w, uploadErrorStatus(err), err.Error())
	case err != nil:
		h.log.Error().Err(err).Msg("Preview failed")
		h.writeError(w, http.StatusInternalServerError, "Preview failed")
	default:
		h.writeData(w, http.StatusOK, summary)
	}
}

// HandleHistory handles GET /api/imports
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	batches, err := h.service.History(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list imports")
		h.writeError(w, http.StatusInternalServerError, "Failed to list imports")
		return
	}

	h.writeData(w, http.StatusOK, map[string]interface{}{
		"imports": batches,
		"count":   len(batches),
	})
}

// HandleRevert handles DELETE /api/imports/{id}
func (h *Handler) HandleRevert(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "id")

	deleted, err := h.service.Revert(r.Context(), batchID)
	if errors.Is(err, journal.ErrBatchNotFound) {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("batch_id", batchID).Msg("Failed to revert import")
		h.writeError(w, http.StatusInternalServerError, "Failed to revert import")
		return
	}

	h.writeData(w, http.StatusOK, map[string]interface{}{
		"batchId": batchID,
		"deleted": deleted,
	})
}

// openUpload returns the CSV stream of the request, bounded by maxUploadBytes
func (h *Handler) openUpload(w http.ResponseWriter, r *http.Request) (io.ReadCloser, string, bool) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		filename := r.URL.Query().Get("filename")
		if filename == "" {
			filename = defaultFilename
		}
		return r.Body, filepath.Base(filename), true
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "Upload too large")
			return nil, "", false
		}
		h.writeError(w, http.StatusBadRequest, "Missing file field")
		return nil, "", false
	}

	filename := filepath.Base(header.Filename)
	if filename == "" || filename == "." {
		filename = defaultFilename
	}
	return file, filename, true
}

// uploadErrorStatus maps errors caused by the uploaded content to a status; 0 otherwise
func uploadErrorStatus(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, imports.ErrNoHeader), errors.Is(err, imports.ErrMalformedCSV):
		return http.StatusBadRequest
	default:
		return 0
	}
}

func (h *Handler) writeData(w http.ResponseWriter, status int, data interface{}) {
	h.writeJSON(w, status, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
