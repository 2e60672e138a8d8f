package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aristath/tradejournal/internal/events"
	"github.com/aristath/tradejournal/internal/modules/imports"
	"github.com/aristath/tradejournal/internal/modules/journal"
	testutil "github.com/aristath/tradejournal/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tradingViewCSV = "Symbol,Setup,Profit,Result,Date\nEURUSD,Breakout,125.5,Win,2024-03-15 14:30:00\n,,,,\nGC,Pullback,-40,Loss,2024-03-16\n"

type summaryResponse struct {
	Data  imports.ImportSummary `json:"data"`
	Error string                `json:"error"`
}

func setupRouter(t *testing.T, maxUploadBytes int64) (chi.Router, *journal.TradeRepository) {
	t.Helper()

	db, cleanup := testutil.NewTestDB(t, "journal")
	t.Cleanup(cleanup)

	log := zerolog.New(nil).Level(zerolog.Disabled)
	trades := journal.NewTradeRepository(db.Conn(), log)
	importer := imports.NewImporter(imports.Options{
		Now: func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
	}, log)
	service := imports.NewService(importer, trades, journal.NewBatchRepository(db.Conn(), log),
		events.NewManager(events.NewBus(log), log), log)

	router := chi.NewRouter()
	router.Route("/api", NewHandler(service, maxUploadBytes, log).RegisterRoutes)
	return router, trades
}

func postCSV(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeSummary(t *testing.T, w *httptest.ResponseRecorder) summaryResponse {
	t.Helper()
	var resp summaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestHandleImport_RawBody(t *testing.T) {
	router, trades := setupRouter(t, 1<<20)

	w := postCSV(t, router, "/api/imports?filename=../../journal.csv", tradingViewCSV)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decodeSummary(t, w)
	assert.Equal(t, "journal.csv", resp.Data.Filename)
	assert.Equal(t, 2, resp.Data.Imported)
	assert.Equal(t, 1, resp.Data.Skipped)
	assert.Equal(t, "2 of 3 rows imported", resp.Data.Message)
	assert.NotEmpty(t, resp.Data.BatchID)
	assert.Empty(t, resp.Data.Records)

	records, err := trades.ListRecords(httptest.NewRequest(http.MethodGet, "/", nil).Context(), journal.Filter{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2024-03-15T14:30:00Z", records[0].Date)
}

func TestHandleImport_Multipart(t *testing.T) {
	router, _ := setupRouter(t, 1<<20)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "tradovate-march.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Contract,P/L,Initial Risk\nESM4,$125.50,50\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/imports", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeSummary(t, w)
	assert.Equal(t, "tradovate-march.csv", resp.Data.Filename)
	assert.Equal(t, 1, resp.Data.Formats.Tradovate)
}

func TestHandleImport_MultipartMissingFile(t *testing.T) {
	router, _ := setupRouter(t, 1<<20)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/imports", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleImport_Errors(t *testing.T) {
	tests := []struct {
		name       string
		maxBytes   int64
		body       string
		wantStatus int
	}{
		{"empty body", 1 << 20, "", http.StatusBadRequest},
		{"nothing importable", 1 << 20, "Symbol,Profit\n,\n", http.StatusUnprocessableEntity},
		{"header only", 1 << 20, "Symbol,Profit\n", http.StatusUnprocessableEntity},
		{"too large", 16, tradingViewCSV, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, trades := setupRouter(t, tt.maxBytes)

			w := postCSV(t, router, "/api/imports", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			count, err := trades.Count(httptest.NewRequest(http.MethodGet, "/", nil).Context())
			require.NoError(t, err)
			assert.Equal(t, 0, count)
		})
	}
}

func TestHandleImport_NothingImportableCarriesSummary(t *testing.T) {
	router, _ := setupRouter(t, 1<<20)

	w := postCSV(t, router, "/api/imports", "Symbol,Profit\n,\n ,\n")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	resp := decodeSummary(t, w)
	assert.Equal(t, "0 of 2 rows imported", resp.Error)
	assert.Len(t, resp.Data.RowErrors, 2)
	assert.Equal(t, 1, resp.Data.RowErrors[0].Row)
}

func TestHandlePreview(t *testing.T) {
	router, trades := setupRouter(t, 1<<20)

	w := postCSV(t, router, "/api/imports/preview", tradingViewCSV)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeSummary(t, w)
	require.Len(t, resp.Data.Records, 2)
	assert.Equal(t, "EURUSD", resp.Data.Records[0].Symbol)
	assert.True(t, resp.Data.Records[0].IsWin)
	assert.False(t, resp.Data.Records[1].IsWin)

	count, err := trades.Count(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	w = postCSV(t, router, "/api/imports/preview", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryAndRevert(t *testing.T) {
	router, trades := setupRouter(t, 1<<20)

	w := postCSV(t, router, "/api/imports?filename=first.csv", tradingViewCSV)
	require.Equal(t, http.StatusCreated, w.Code)
	batchID := decodeSummary(t, w).Data.BatchID

	req := httptest.NewRequest(http.MethodGet, "/api/imports", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var history struct {
		Data struct {
			Imports []journal.ImportBatch `json:"imports"`
			Count   int                   `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Equal(t, 1, history.Data.Count)
	assert.Equal(t, batchID, history.Data.Imports[0].ID)
	assert.Equal(t, "first.csv", history.Data.Imports[0].Filename)

	req = httptest.NewRequest(http.MethodGet, "/api/imports?limit=-1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/imports/"+batchID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"deleted":2`)

	count, err := trades.Count(req.Context())
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	req = httptest.NewRequest(http.MethodDelete, "/api/imports/"+batchID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterRoutes(t *testing.T) {
	router, _ := setupRouter(t, 1<<20)

	routes := map[string]bool{}
	err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes[method+" "+route] = true
		return nil
	})
	require.NoError(t, err)

	for _, want := range []string{
		"GET /api/imports/",
		"POST /api/imports/",
		"POST /api/imports/preview",
		"DELETE /api/imports/{id}",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}
