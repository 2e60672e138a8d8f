// Package handlers provides HTTP handlers for journal trades.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/tradejournal/internal/domain"
	"github.com/aristath/tradejournal/internal/events"
	"github.com/aristath/tradejournal/internal/metrics"
	"github.com/aristath/tradejournal/internal/modules/journal"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// TradeStore is the persistence the handlers need
type TradeStore interface {
	Create(ctx context.Context, record domain.TradeRecord) (*journal.Trade, error)
	GetByID(ctx context.Context, id int64) (*journal.Trade, error)
	Update(ctx context.Context, id int64, record domain.TradeRecord) (*journal.Trade, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f journal.Filter) ([]journal.Trade, error)
	ListRecords(ctx context.Context, f journal.Filter) ([]domain.TradeRecord, error)
}

// Handler handles trade HTTP requests
type Handler struct {
	trades       TradeStore
	eventManager *events.Manager
	now          func() time.Time
	log          zerolog.Logger
}

// NewHandler creates a new trade handler; eventManager may be nil
func NewHandler(trades TradeStore, eventManager *events.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		trades:       trades,
		eventManager: eventManager,
		now:          time.Now,
		log:          log.With().Str("handler", "journal").Logger(),
	}
}

// HandleList handles GET /api/trades
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter, err := journal.ParseFilter(r.URL.Query())
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	trades, err := h.trades.List(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list trades")
		h.writeError(w, http.StatusInternalServerError, "Failed to list trades")
		return
	}

	h.writeData(w, http.StatusOK, map[string]interface{}{
		"trades": trades,
		"count":  len(trades),
	})
}

// HandleGet handles GET /api/trades/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	trade, err := h.trades.GetByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, err, "Failed to get trade")
		return
	}

	h.writeData(w, http.StatusOK, trade)
}

// HandleCreate handles POST /api/trades
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	record, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}

	trade, err := h.trades.Create(r.Context(), journal.Normalize(record, h.now()))
	if err != nil {
		h.writeStoreError(w, err, "Failed to create trade")
		return
	}
	metrics.TradeWrites.WithLabelValues("create").Inc()

	h.emit(events.TradeCreated, trade)
	h.writeData(w, http.StatusCreated, trade)
}

// HandleUpdate handles PUT /api/trades/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	record, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}

	trade, err := h.trades.Update(r.Context(), id, journal.Normalize(record, h.now()))
	if err != nil {
		h.writeStoreError(w, err, "Failed to update trade")
		return
	}
	metrics.TradeWrites.WithLabelValues("update").Inc()

	h.emit(events.TradeUpdated, trade)
	h.writeData(w, http.StatusOK, trade)
}

// HandleDelete handles DELETE /api/trades/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.trades.Delete(r.Context(), id); err != nil {
		h.writeStoreError(w, err, "Failed to delete trade")
		return
	}
	metrics.TradeWrites.WithLabelValues("delete").Inc()

	h.emit(events.TradeDeleted, &journal.Trade{ID: id})
	h.writeData(w, http.StatusOK, map[string]interface{}{"deleted": id})
}

// HandleExport handles GET /api/trades/export
// Streams the filtered journal as CSV that the importer reads back unchanged.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	filter, err := journal.ParseFilter(r.URL.Query())
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.trades.ListRecords(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load trades for export")
		h.writeError(w, http.StatusInternalServerError, "Failed to export trades")
		return
	}

	filename := fmt.Sprintf("journal-%s.csv", h.now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	if err := journal.WriteCSV(w, records); err != nil {
		h.log.Error().Err(err).Msg("Failed to write export")
	}
}

func (h *Handler) decodeRecord(w http.ResponseWriter, r *http.Request) (domain.TradeRecord, bool) {
	var record domain.TradeRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return domain.TradeRecord{}, false
	}
	return record, true
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "Invalid trade id")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, journal.ErrTradeNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidNumber), errors.Is(err, domain.ErrFieldTooLong):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error().Err(err).Msg(msg)
		h.writeError(w, http.StatusInternalServerError, msg)
	}
}

func (h *Handler) emit(eventType events.EventType, trade *journal.Trade) {
	if h.eventManager == nil {
		return
	}
	h.eventManager.EmitTyped(eventType, "journal", &events.TradeChangedData{
		Type:   eventType,
		ID:     trade.ID,
		Symbol: trade.Symbol,
	})
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
