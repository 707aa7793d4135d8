package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/finai/folio/internal/database"
)

// SystemHandlers exposes health and host metrics endpoints.
type SystemHandlers struct {
	db        *database.DB
	startTime time.Time
	version   string
	log       zerolog.Logger
}

// NewSystemHandlers creates system handlers
func NewSystemHandlers(db *database.DB, version string, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		db:        db,
		startTime: time.Now(),
		version:   version,
		log:       log.With().Str("handler", "system").Logger(),
	}
}

// HandleHealth reports service liveness and database reachability
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK

	dbStatus := "ok"
	if err := h.db.Conn().PingContext(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Database ping failed")
		dbStatus = "unreachable"
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	h.writeJSON(w, httpStatus, map[string]interface{}{
		"status":   status,
		"database": dbStatus,
		"uptime":   time.Since(h.startTime).Round(time.Second).String(),
		"version":  h.version,
	})
}

// HandleSystemInfo reports host CPU and memory usage
func (h *SystemHandlers) HandleSystemInfo(w http.ResponseWriter, r *http.Request) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	var memUsedPct float64
	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
	} else {
		memUsedPct = memStat.UsedPercent
	}

	var avgCPU float64
	if len(cpuPercent) > 0 {
		avgCPU = cpuPercent[0]
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"cpu_percent":    avgCPU,
		"memory_percent": memUsedPct,
		"goroutines":     runtime.NumGoroutine(),
		"go_version":     runtime.Version(),
	})
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
