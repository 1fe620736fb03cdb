package webapi

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/Iam-Iftekhar/animerch/pkg/metrics"
)

// systemStatus reports a point-in-time host and process snapshot for the
// admin dashboard.
func (h *Handler) systemStatus(c echo.Context) error {
	status := map[string]interface{}{
		"time": time.Now(),
	}

	if cpuuse, err := cpu.Percent(0, false); err == nil && len(cpuuse) > 0 {
		status["cpu_percent"] = cpuuse[0]
	}
	if meminfo, err := mem.VirtualMemory(); err == nil {
		status["mem_used_mb"] = meminfo.Used / 1024 / 1024
		status["mem_percent"] = meminfo.UsedPercent
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if rss, err := p.MemoryInfo(); err == nil {
			status["proc_rss_mb"] = rss.RSS / 1024 / 1024
		}
		if pcpu, err := p.CPUPercent(); err == nil {
			status["proc_cpu_percent"] = pcpu
		}
	}
	return ok(c, status)
}

// metricsRange reads back stored samples, default last 24 hours.
func (h *Handler) metricsRange(c echo.Context) error {
	name := c.Param("name")
	hours := 24
	if v := c.QueryParam("hours"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 24*30 {
			hours = n
		}
	}
	end := time.Now().Unix()
	start := end - int64(hours)*3600

	points, err := metrics.Range(name, start, end)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "METRICS_ERROR", "Failed to read metrics", nil)
	}
	return ok(c, map[string]interface{}{
		"metric": name,
		"points": points,
	})
}
