// Package admin implements the observability side-car: a small Gin-based
// HTTP server exposing liveness, stats, and swagger documentation for an
// otherwise headless resolver process. It never mutates resolver state.
package admin

import "time"

// StatusResponse is the liveness probe's body.
type StatusResponse struct {
	Status string `json:"status"`
}

// CPUStats is a point-in-time CPU usage snapshot.
type CPUStats struct {
	NumCPU      int     `json:"num_cpu"`
	UsedPercent float64 `json:"used_percent"`
	IdlePercent float64 `json:"idle_percent"`
}

// MemoryStats is a point-in-time memory usage snapshot.
type MemoryStats struct {
	TotalMB     float64 `json:"total_mb"`
	FreeMB      float64 `json:"free_mb"`
	UsedMB      float64 `json:"used_mb"`
	UsedPercent float64 `json:"used_percent"`
}

// DNSStatsResponse mirrors server.DNSStatsSnapshot for JSON emission.
type DNSStatsResponse struct {
	QueriesTotal uint64  `json:"queries_total"`
	ResponsesNX  uint64  `json:"responses_nxdomain"`
	ResponsesErr uint64  `json:"responses_error"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// StatsResponse is the full /stats payload.
type StatsResponse struct {
	Uptime        string           `json:"uptime"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	StartTime     time.Time        `json:"start_time"`
	CPU           CPUStats         `json:"cpu"`
	Memory        MemoryStats      `json:"memory"`
	DNS           DNSStatsResponse `json:"dns"`
}
