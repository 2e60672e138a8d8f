package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/aristath/tradejournal/internal/domain"
	"github.com/aristath/tradejournal/internal/events"
	"github.com/aristath/tradejournal/internal/modules/journal"
	testutil "github.com/aristath/tradejournal/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tradeResponse struct {
	Data journal.Trade `json:"data"`
}

func setupRouter(t *testing.T) (chi.Router, *events.Bus) {
	t.Helper()

	db, cleanup := testutil.NewTestDB(t, "journal")
	t.Cleanup(cleanup)

	log := zerolog.New(nil).Level(zerolog.Disabled)
	bus := events.NewBus(log)
	handler := NewHandler(journal.NewTradeRepository(db.Conn(), log), events.NewManager(bus, log), log)
	handler.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

	router := chi.NewRouter()
	router.Route("/api", handler.RegisterRoutes)
	return router, bus
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTradeCRUD(t *testing.T) {
	router, bus := setupRouter(t)

	var emitted []events.EventType
	for _, et := range []events.EventType{events.TradeCreated, events.TradeUpdated, events.TradeDeleted} {
		bus.Subscribe(et, func(e *events.Event) { emitted = append(emitted, e.Type) })
	}

	// Create
	w := do(t, router, http.MethodPost, "/api/trades", `{"symbol":"es","setup":"Breakout","profitLoss":125.5,"isWin":true,"rrAchieved":2.51}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created tradeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "ES", created.Data.Symbol)
	assert.Equal(t, "2024-06-01T12:00:00Z", created.Data.Date, "missing date defaults to now")
	id := created.Data.ID

	// Get
	w = do(t, router, http.MethodGet, "/api/trades/"+itoa(id), "")
	require.Equal(t, http.StatusOK, w.Code)

	// Update
	w = do(t, router, http.MethodPut, "/api/trades/"+itoa(id), `{"symbol":"ES","profitLoss":-40,"date":"2024-03-15 14:30:00"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated tradeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, -40.0, updated.Data.ProfitLoss)
	assert.Equal(t, "2024-03-15T14:30:00Z", updated.Data.Date)

	// List
	w = do(t, router, http.MethodGet, "/api/trades?symbol=es", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data struct {
			Trades []journal.Trade `json:"trades"`
			Count  int             `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Data.Count)

	// Delete
	w = do(t, router, http.MethodDelete, "/api/trades/"+itoa(id), "")
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, router, http.MethodGet, "/api/trades/"+itoa(id), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, []events.EventType{events.TradeCreated, events.TradeUpdated, events.TradeDeleted}, emitted)
}

func TestTradeHandlers_BadInput(t *testing.T) {
	router, _ := setupRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"invalid json", http.MethodPost, "/api/trades", `{`, http.StatusBadRequest},
		{"field too long", http.MethodPost, "/api/trades", `{"setup":"` + strings.Repeat("x", domain.MaxFieldLength+1) + `"}`, http.StatusBadRequest},
		{"bad id", http.MethodGet, "/api/trades/abc", "", http.StatusBadRequest},
		{"missing trade", http.MethodPut, "/api/trades/99", `{"symbol":"ES"}`, http.StatusNotFound},
		{"bad filter", http.MethodGet, "/api/trades?from=soon", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHandleExport(t *testing.T) {
	router, _ := setupRouter(t)

	w := do(t, router, http.MethodPost, "/api/trades", `{"symbol":"NQ","setup":"Pullback","profitLoss":-50,"date":"2024-03-01T10:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, router, http.MethodGet, "/api/trades/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "journal-2024-06-01.csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(journal.ExportHeader, ","), lines[0])
	assert.Equal(t, "2024-03-01T10:00:00Z,NQ,Pullback,,,,,,,0,0,-50,false", lines[1])
}

func TestRegisterRoutes(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	handler := NewHandler(nil, nil, log)

	router := chi.NewRouter()
	assert.NotPanics(t, func() {
		handler.RegisterRoutes(router)
	})
	assert.NotEmpty(t, router.Routes())
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
