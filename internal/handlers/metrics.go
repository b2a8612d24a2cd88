package handlers

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/matchwise/backend/internal/models"
	"github.com/matchwise/backend/internal/services"
	"gorm.io/gorm"
)

var startTime = time.Now()

type MetricsHandler struct {
	db    *gorm.DB
	queue services.TaskQueue
}

func NewMetricsHandler(db *gorm.DB, queue services.TaskQueue) *MetricsHandler {
	return &MetricsHandler{db: db, queue: queue}
}

// Metrics returns Prometheus-compatible text format metrics.
func (h *MetricsHandler) Metrics(c *gin.Context) {
	var b strings.Builder

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	writeGauge(&b, "matchwise_uptime_seconds", "Time since server start in seconds", time.Since(startTime).Seconds())
	writeGauge(&b, "matchwise_goroutines", "Number of active goroutines", float64(runtime.NumGoroutine()))
	writeGauge(&b, "matchwise_memory_alloc_bytes", "Current heap allocation in bytes", float64(m.Alloc))

	if sqlDB, err := h.db.DB(); err == nil {
		stats := sqlDB.Stats()
		writeGauge(&b, "matchwise_db_open_connections", "Number of open DB connections", float64(stats.OpenConnections))
		writeGauge(&b, "matchwise_db_in_use_connections", "Number of in-use DB connections", float64(stats.InUse))
	}

	queueAsync := 0.0
	if h.queue != nil && h.queue.IsAsync() {
		queueAsync = 1.0
	}
	writeGauge(&b, "matchwise_queue_async_enabled", "Whether async queue (Redis) is enabled (1=yes, 0=no)", queueAsync)

	ctx := c.Request.Context()
	var matches, expired, activeProjects, vendors int64
	h.db.WithContext(ctx).Model(&models.Match{}).Count(&matches)
	h.db.WithContext(ctx).Model(&models.Match{}).Where("is_sla_expired = ?", true).Count(&expired)
	h.db.WithContext(ctx).Model(&models.Project{}).Where("status = ?", models.ProjectStatusActive).Count(&activeProjects)
	h.db.WithContext(ctx).Model(&models.Vendor{}).Count(&vendors)

	writeGauge(&b, "matchwise_matches_total", "Number of stored matches", float64(matches))
	writeGauge(&b, "matchwise_matches_sla_expired", "Number of matches flagged SLA expired", float64(expired))
	writeGauge(&b, "matchwise_projects_active", "Number of active projects", float64(activeProjects))
	writeGauge(&b, "matchwise_vendors_total", "Number of vendors", float64(vendors))

	c.Data(200, "text/plain; version=0.0.4; charset=utf-8", []byte(b.String()))
}

func writeGauge(b *strings.Builder, name, help string, value float64) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s gauge\n", name)
	fmt.Fprintf(b, "%s %g\n\n", name, value)
}
