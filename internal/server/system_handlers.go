package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/frontier/internal/marketdata"
	"github.com/aristath/frontier/internal/scheduler"
)

// IntegrityChecker verifies a database is reachable and not corrupt
type IntegrityChecker interface {
	QuickCheck(ctx context.Context) error
}

// SystemHandlers serves process, cache and job status
type SystemHandlers struct {
	log       zerolog.Logger
	dataDir   string
	startedAt time.Time
	scheduler *scheduler.Scheduler
	priceRepo *marketdata.Repository // nil when the price cache is disabled
	cacheDB   IntegrityChecker       // nil when the price cache is disabled
	jobs      map[string]scheduler.Job
}

// NewSystemHandlers creates system handlers; jobs become triggerable by name
func NewSystemHandlers(
	log zerolog.Logger,
	dataDir string,
	sched *scheduler.Scheduler,
	priceRepo *marketdata.Repository,
	cacheDB IntegrityChecker,
	jobs ...scheduler.Job,
) *SystemHandlers {
	byName := make(map[string]scheduler.Job, len(jobs))
	for _, job := range jobs {
		byName[job.Name()] = job
	}

	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		dataDir:   dataDir,
		startedAt: time.Now(),
		scheduler: sched,
		priceRepo: priceRepo,
		cacheDB:   cacheDB,
		jobs:      byName,
	}
}

// SystemStatusResponse is the process snapshot returned by /api/system/status
type SystemStatusResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Goroutines    int     `json:"goroutines"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	CacheEnabled  bool    `json:"cache_enabled"`
	CacheEntries  int     `json:"cache_entries"`
	CacheCheck    string  `json:"cache_check,omitempty"`
	Jobs          int     `json:"jobs"`
}

// JobsStatusResponse lists scheduler jobs
type JobsStatusResponse struct {
	TotalJobs int                   `json:"total_jobs"`
	Jobs      []scheduler.JobStatus `json:"jobs"`
}

// DiskUsageResponse reports the data directory size
type DiskUsageResponse struct {
	DataDirMB float64 `json:"data_dir_mb"`
}

// HandleSystemStatus returns process health, resource usage and cache size
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cpuPercent, memPercent := h.getSystemStats()
	response := SystemStatusResponse{
		Status:        "healthy",
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
		Goroutines:    runtime.NumGoroutine(),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		CacheEnabled:  h.priceRepo != nil,
		Jobs:          len(h.jobStatuses()),
	}

	if h.priceRepo != nil {
		count, err := h.priceRepo.Count(r.Context())
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to count cache entries")
			response.Status = "degraded"
		}
		response.CacheEntries = count
	}

	if h.cacheDB != nil {
		response.CacheCheck = "ok"
		if err := h.cacheDB.QuickCheck(r.Context()); err != nil {
			h.log.Error().Err(err).Msg("Price cache integrity check failed")
			response.CacheCheck = err.Error()
			response.Status = "degraded"
		}
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleJobsStatus returns the last outcome of every registered job
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting jobs status")

	jobs := h.jobStatuses()
	h.writeJSON(w, http.StatusOK, JobsStatusResponse{
		TotalJobs: len(jobs),
		Jobs:      jobs,
	})
}

// HandleRunJob runs a registered job immediately
func (h *SystemHandlers) HandleRunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	job, ok := h.jobs[name]
	if !ok || h.scheduler == nil {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown job: " + name})
		return
	}

	if err := h.scheduler.RunNow(job); err != nil {
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "completed",
		"job":    name,
	})
}

// HandleDiskUsage returns the size of the data directory
func (h *SystemHandlers) HandleDiskUsage(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting disk usage")

	h.writeJSON(w, http.StatusOK, DiskUsageResponse{
		DataDirMB: h.getDirSize(h.dataDir),
	})
}

func (h *SystemHandlers) jobStatuses() []scheduler.JobStatus {
	if h.scheduler == nil {
		return []scheduler.JobStatus{}
	}
	jobs := h.scheduler.Status()
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs
}

// getSystemStats samples CPU and memory usage; failures report zero
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil || len(cpuPercent) == 0 {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return cpuPercent[0], 0
	}

	return cpuPercent[0], memStat.UsedPercent
}

// getDirSize calculates total size of a directory in MB
func (h *SystemHandlers) getDirSize(dirPath string) float64 {
	var totalSize int64

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})
	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}

	return float64(totalSize) / 1024 / 1024
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
