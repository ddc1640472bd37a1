package admin

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/mjfern/rootdns/internal/server"
)

// handlerSet holds the read-only state the admin endpoints need. It is
// deliberately not exported: the side-car's surface is the HTTP API, not a
// reusable handler type.
type handlerSet struct {
	stats     *server.DNSStats
	startTime time.Time
}

// healthz godoc
// @Summary Liveness check
// @Description Returns ok if the admin process is up. Does not probe the resolver.
// @Tags system
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /healthz [get]
func (h *handlerSet) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// stats godoc
// @Summary Server statistics
// @Description Returns process uptime, host CPU/memory usage, and resolver query counters.
// @Tags system
// @Produce json
// @Success 200 {object} StatsResponse
// @Router /stats [get]
func (h *handlerSet) statsHandler(c *gin.Context) {
	uptime := time.Since(h.startTime)

	memStats := MemoryStats{}
	if vmStat, err := mem.VirtualMemory(); err == nil {
		memStats.TotalMB = float64(vmStat.Total) / 1024 / 1024
		memStats.FreeMB = float64(vmStat.Available) / 1024 / 1024
		memStats.UsedMB = float64(vmStat.Used) / 1024 / 1024
		memStats.UsedPercent = vmStat.UsedPercent
	}

	cpuStats := CPUStats{NumCPU: runtime.NumCPU()}
	if cpuPercent, err := cpu.Percent(200*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		cpuStats.UsedPercent = cpuPercent[0]
		cpuStats.IdlePercent = 100.0 - cpuPercent[0]
	}

	var dns DNSStatsResponse
	if h.stats != nil {
		snap := h.stats.Snapshot()
		dns = DNSStatsResponse{
			QueriesTotal: snap.QueriesTotal,
			ResponsesNX:  snap.ResponsesNX,
			ResponsesErr: snap.ResponsesErr,
			AvgLatencyMs: snap.AvgLatencyMs,
		}
	}

	c.JSON(http.StatusOK, StatsResponse{
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: int64(uptime.Seconds()),
		StartTime:     h.startTime,
		CPU:           cpuStats,
		Memory:        memStats,
		DNS:           dns,
	})
}
