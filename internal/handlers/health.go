package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/travelit/backend/internal/services"
	"gorm.io/gorm"
)

// HealthHandler reports the state of the datastore and the mail queue.
type HealthHandler struct {
	db    *gorm.DB
	queue services.TaskQueue
	redis redis.UniversalClient // nil when Redis is disabled
}

func NewHealthHandler(db *gorm.DB, queue services.TaskQueue, rdb redis.UniversalClient) *HealthHandler {
	return &HealthHandler{db: db, queue: queue, redis: rdb}
}

// CheckHealth returns the health status of all subsystems.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	sqlDB, err := h.db.DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	queueMode := "sync"
	if h.queue != nil && h.queue.IsAsync() {
		queueMode = "async (Redis)"
	}

	components := gin.H{
		"database":   dbStatus,
		"queue_mode": queueMode,
	}

	if h.redis != nil {
		redisStatus := "ok"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			// mail falls back to in-process delivery, so this only degrades
			redisStatus = "error: " + err.Error()
			if overall == "healthy" {
				overall = "degraded"
			}
		}
		components["redis"] = redisStatus
	}

	status := http.StatusOK
	if overall == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status":     overall,
		"service":    "travelit",
		"components": components,
	})
}
