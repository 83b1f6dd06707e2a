package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/rushikeshnarwade/sync-beats/internal/dto/response"
)

const version = "1.0.0"

type HealthHandler struct {
	started time.Time
	redis   *redis.Client
}

// NewHealthHandler creates a health handler. The Redis client may be nil
// when the server runs without Redis.
func NewHealthHandler(redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		started: time.Now(),
		redis:   redisClient,
	}
}

// Check godoc
// @Summary Health check
// @Description Reports server status and dependency reachability
// @Tags health
// @Produce json
// @Success 200 {object} response.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	services := make(map[string]string)
	status := "healthy"

	if h.redis != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.redis.Ping(ctx).Err(); err != nil {
			services["redis"] = "unreachable"
			status = "degraded"
		} else {
			services["redis"] = "ok"
		}
	}

	c.JSON(http.StatusOK, response.HealthResponse{
		Status:    status,
		Version:   version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Services:  services,
	})
}
