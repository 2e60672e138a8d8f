package server

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/tradejournal/internal/database"
	"github.com/aristath/tradejournal/internal/reliability"
)

// TradeCounter reports the number of stored trades
type TradeCounter interface {
	Count(ctx context.Context) (int, error)
}

// BackupRunner is the part of the R2 backup service the system endpoints drive
type BackupRunner interface {
	RunBackup(ctx context.Context, retentionDays int) (*reliability.BackupRun, error)
	ListBackups(ctx context.Context) ([]reliability.BackupInfo, error)
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status         string          `json:"status"`
	StartedAt      string          `json:"started_at"`
	UptimeSeconds  float64         `json:"uptime_seconds"`
	TradeCount     int             `json:"trade_count"`
	Database       *database.Stats `json:"database,omitempty"`
	CPUPercent     float64         `json:"cpu_percent"`
	MemoryPercent  float64         `json:"memory_percent"`
	Goroutines     int             `json:"goroutines"`
	GoVersion      string          `json:"go_version"`
	BackupsEnabled bool            `json:"backups_enabled"`
}

// SystemHandlers serves system status and backup operations
type SystemHandlers struct {
	db            *database.DB
	trades        TradeCounter
	backups       BackupRunner
	retentionDays int
	startedAt     time.Time
	systemStats   func() (float64, float64)
	log           zerolog.Logger
}

// NewSystemHandlers creates the system handlers; backups may be nil
func NewSystemHandlers(
	db *database.DB,
	trades TradeCounter,
	backups BackupRunner,
	retentionDays int,
	log zerolog.Logger,
) *SystemHandlers {
	h := &SystemHandlers{
		db:            db,
		trades:        trades,
		backups:       backups,
		retentionDays: retentionDays,
		startedAt:     time.Now(),
		log:           log.With().Str("handler", "system").Logger(),
	}
	h.systemStats = h.getSystemStats
	return h
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.systemStats()

	response := SystemStatusResponse{
		Status:         "healthy",
		StartedAt:      h.startedAt.UTC().Format(time.RFC3339),
		UptimeSeconds:  time.Since(h.startedAt).Seconds(),
		CPUPercent:     cpuPercent,
		MemoryPercent:  memPercent,
		Goroutines:     runtime.NumGoroutine(),
		GoVersion:      runtime.Version(),
		BackupsEnabled: h.backups != nil,
	}

	if h.trades != nil {
		count, err := h.trades.Count(r.Context())
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to count trades")
			response.Status = "degraded"
		}
		response.TradeCount = count
	}

	if h.db != nil {
		stats, err := h.db.GetStats()
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to read database stats")
			response.Status = "degraded"
		}
		response.Database = stats
	}

	writeJSON(w, http.StatusOK, response, h.log)
}

// HandleRunBackup handles POST /api/system/backups
func (h *SystemHandlers) HandleRunBackup(w http.ResponseWriter, r *http.Request) {
	if h.backups == nil {
		writeError(w, http.StatusServiceUnavailable, "Backups are not configured", h.log)
		return
	}

	run, err := h.backups.RunBackup(r.Context(), h.retentionDays)
	if err != nil {
		h.log.Error().Err(err).Msg("Manual backup failed")
		writeError(w, http.StatusInternalServerError, "Backup failed", h.log)
		return
	}

	writeJSON(w, http.StatusCreated, run, h.log)
}

// HandleListBackups handles GET /api/system/backups
func (h *SystemHandlers) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	if h.backups == nil {
		writeError(w, http.StatusServiceUnavailable, "Backups are not configured", h.log)
		return
	}

	backups, err := h.backups.ListBackups(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list backups")
		writeError(w, http.StatusInternalServerError, "Failed to list backups", h.log)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"backups": backups,
		"count":   len(backups),
	}, h.log)
}

// getSystemStats returns CPU and RAM usage percentages.
// CPU is sampled over 100ms to keep the endpoint responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
