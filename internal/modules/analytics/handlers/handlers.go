// Package handlers provides HTTP handlers for dashboard analytics.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/tradejournal/internal/modules/analytics"
	"github.com/aristath/tradejournal/internal/modules/journal"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

const msgpackContentType = "application/msgpack"

// Handler handles analytics HTTP requests
type Handler struct {
	service *analytics.Service
	log     zerolog.Logger
}

// NewHandler creates a new analytics handler
func NewHandler(service *analytics.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "analytics").Logger(),
	}
}

// HandleSummary handles GET /api/analytics/summary
// Responds with msgpack when asked via Accept header or ?format=msgpack.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build summary")
		h.writeError(w, http.StatusInternalServerError, "Failed to build summary")
		return
	}

	if wantsMsgpack(r) {
		h.writeMsgpack(w, http.StatusOK, envelope(summary))
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(summary))
}

// HandleEquity handles GET /api/analytics/equity
func (h *Handler) HandleEquity(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	curve, err := h.service.Equity(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build equity curve")
		h.writeError(w, http.StatusInternalServerError, "Failed to build equity curve")
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(curve))
}

// HandleDrawdown handles GET /api/analytics/drawdown
func (h *Handler) HandleDrawdown(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	points, err := h.service.Drawdown(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build drawdown")
		h.writeError(w, http.StatusInternalServerError, "Failed to build drawdown")
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(points))
}

// HandleStreaks handles GET /api/analytics/streaks
func (h *Handler) HandleStreaks(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	streaks, err := h.service.Streaks(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute streaks")
		h.writeError(w, http.StatusInternalServerError, "Failed to compute streaks")
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(streaks))
}

// HandleHeatmap handles GET /api/analytics/heatmap
func (h *Handler) HandleHeatmap(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	cells, err := h.service.Heatmap(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build heatmap")
		h.writeError(w, http.StatusInternalServerError, "Failed to build heatmap")
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(cells))
}

// HandleBreakdown handles GET /api/analytics/breakdown/{dimension}
func (h *Handler) HandleBreakdown(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	dimension := chi.URLParam(r, "dimension")
	buckets, err := h.service.Breakdown(r.Context(), filter, dimension)
	if errors.Is(err, analytics.ErrUnknownDimension) {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("dimension", dimension).Msg("Failed to build breakdown")
		h.writeError(w, http.StatusInternalServerError, "Failed to build breakdown")
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(buckets))
}

func (h *Handler) parseFilter(w http.ResponseWriter, r *http.Request) (journal.Filter, bool) {
	filter, err := journal.ParseFilter(r.URL.Query())
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return journal.Filter{}, false
	}
	return filter, true
}

func wantsMsgpack(r *http.Request) bool {
	if r.URL.Query().Get("format") == "msgpack" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), msgpackContentType)
}

func envelope(data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
}

// writeMsgpack encodes with the json tags so both encodings share field names
func (h *Handler) writeMsgpack(w http.ResponseWriter, status int, data interface{}) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode msgpack response")
		h.writeError(w, http.StatusInternalServerError, "Failed to encode response")
		return
	}

	w.Header().Set("Content-Type", msgpackContentType)
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.log.Debug().Err(err).Msg("Failed to write msgpack response")
	}
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
