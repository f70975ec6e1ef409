// cmd/newsloom/health.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemMetrics holds process and host metrics for the status endpoint
type SystemMetrics struct {
	Timestamp        time.Time `json:"timestamp"`
	MemoryUsageMB    float64   `json:"memory_usage_mb"`
	CPUUsagePercent  float64   `json:"cpu_usage_percent"`
	DiskUsagePercent float64   `json:"disk_usage_percent"`
	GoroutineCount   int       `json:"goroutine_count"`
	UptimeHours      float64   `json:"uptime_hours"`
}

// HealthServer exposes a small ops surface: liveness plus a status report
// with system metrics and per-source error state.
type HealthServer struct {
	store     Store
	startTime time.Time
	server    *http.Server
}

// NewHealthServer builds the ops HTTP server on the configured port
func NewHealthServer(store Store, port int) *HealthServer {
	hs := &HealthServer{
		store:     store,
		startTime: time.Now(),
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", hs.handleHealthz).Methods("GET")
	router.HandleFunc("/status", hs.handleStatus).Methods("GET")

	hs.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return hs
}

// Start runs the server until Shutdown is called
func (hs *HealthServer) Start() {
	go func() {
		GetLogger().Info("Health server listening on %s", hs.server.Addr)
		if err := hs.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			GetLogger().Error("Health server failed: %v", err)
		}
	}()
}

// Shutdown drains the server gracefully
func (hs *HealthServer) Shutdown(ctx context.Context) error {
	return hs.server.Shutdown(ctx)
}

func (hs *HealthServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (hs *HealthServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	type sourceStatus struct {
		Name       string `json:"name"`
		Enabled    bool   `json:"enabled"`
		ErrorCount int    `json:"error_count"`
		LastError  string `json:"last_error,omitempty"`
	}

	var sources []sourceStatus
	degraded := 0
	if all, err := hs.store.ListSources(r.Context(), false); err == nil {
		for _, src := range all {
			sources = append(sources, sourceStatus{
				Name:       src.Name,
				Enabled:    src.Enabled,
				ErrorCount: src.ErrorCount,
				LastError:  src.LastError,
			})
			if src.ErrorCount > 0 {
				degraded++
			}
		}
	} else {
		GetLogger().Warning("Status endpoint source listing failed: %v", err)
	}

	lastRun, err := hs.store.GetSetting(r.Context(), "last_fetch_run")
	if err != nil {
		GetLogger().Warning("Status endpoint setting read failed: %v", err)
	}

	status := "ok"
	if pinger, ok := hs.store.(interface{ Ping(context.Context) error }); ok {
		if err := pinger.Ping(r.Context()); err != nil {
			GetLogger().Warning("Database ping failed: %v", err)
			status = "degraded"
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":           status,
		"uptime":           time.Since(hs.startTime).String(),
		"last_fetch_run":   lastRun,
		"metrics":          collectSystemMetrics(hs.startTime),
		"sources":          sources,
		"degraded_sources": degraded,
	})
}

// collectSystemMetrics gathers host metrics; any probe that fails just
// leaves its field at zero
func collectSystemMetrics(startTime time.Time) SystemMetrics {
	metrics := SystemMetrics{
		Timestamp:      time.Now().UTC(),
		GoroutineCount: runtime.NumGoroutine(),
		UptimeHours:    time.Since(startTime).Hours(),
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		metrics.MemoryUsageMB = float64(vm.Used) / 1024 / 1024
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		metrics.CPUUsagePercent = percents[0]
	}
	if du, err := disk.Usage("/"); err == nil {
		metrics.DiskUsagePercent = du.UsedPercent
	}

	return metrics
}

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		GetLogger().Warning("Failed to encode response: %v", err)
	}
}
