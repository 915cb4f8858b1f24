package handlers

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/travelit/backend/internal/models"
)

var startTime = time.Now()

// Metrics returns Prometheus-compatible text format metrics.
// GET /metrics
func (h *HealthHandler) Metrics(c *gin.Context) {
	var b strings.Builder

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	writeGauge(&b, "travelit_uptime_seconds", "Time since server start in seconds", time.Since(startTime).Seconds())
	writeGauge(&b, "travelit_goroutines", "Number of active goroutines", float64(runtime.NumGoroutine()))
	writeGauge(&b, "travelit_memory_alloc_bytes", "Current heap allocation in bytes", float64(m.Alloc))
	writeGauge(&b, "travelit_gc_runs_total", "Total number of GC runs", float64(m.NumGC))

	if sqlDB, err := h.db.DB(); err == nil {
		stats := sqlDB.Stats()
		writeGauge(&b, "travelit_db_open_connections", "Number of open DB connections", float64(stats.OpenConnections))
		writeGauge(&b, "travelit_db_in_use_connections", "Number of in-use DB connections", float64(stats.InUse))
		writeGauge(&b, "travelit_db_idle_connections", "Number of idle DB connections", float64(stats.Idle))
	}

	queueAsync := 0.0
	if h.queue != nil && h.queue.IsAsync() {
		queueAsync = 1.0
	}
	writeGauge(&b, "travelit_queue_async_enabled", "Whether the Redis mail queue is in use (1=yes, 0=no)", queueAsync)

	var verified, unverified, maps, markers, pendingInvites int64
	h.db.Model(&models.User{}).Where("is_verified = ?", true).Count(&verified)
	h.db.Model(&models.User{}).Where("is_verified = ?", false).Count(&unverified)
	h.db.Model(&models.TravelMap{}).Count(&maps)
	h.db.Model(&models.Marker{}).Count(&markers)
	h.db.Model(&models.MapMembership{}).Where("status = ?", models.MembershipPending).Count(&pendingInvites)

	writeGauge(&b, "travelit_users_verified", "Number of verified accounts", float64(verified))
	writeGauge(&b, "travelit_users_unverified", "Number of accounts awaiting email verification", float64(unverified))
	writeGauge(&b, "travelit_maps_total", "Number of shared maps", float64(maps))
	writeGauge(&b, "travelit_markers_total", "Number of markers", float64(markers))
	writeGauge(&b, "travelit_map_invitations_pending", "Number of unanswered map invitations", float64(pendingInvites))

	c.Data(200, "text/plain; version=0.0.4; charset=utf-8", []byte(b.String()))
}

func writeGauge(b *strings.Builder, name, help string, value float64) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s gauge\n", name)
	fmt.Fprintf(b, "%s %g\n\n", name, value)
}
