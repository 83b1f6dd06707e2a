package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rushikeshnarwade/sync-beats/internal/config"
	"github.com/rushikeshnarwade/sync-beats/internal/dto/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// In production, you should check the origin
		return true
	},
}

// Handler handles WebSocket connections
type Handler struct {
	hub    *Hub
	sync   config.SyncConfig
	logger *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, syncCfg config.SyncConfig, logger *zap.Logger) *Handler {
	return &Handler{
		hub:    hub,
		sync:   syncCfg,
		logger: logger,
	}
}

// ServeWS godoc
// @Summary WebSocket endpoint
// @Description Upgrades to a WebSocket carrying room synchronization intents and events
// @Tags sync
// @Success 101 {string} string "Switching Protocols"
// @Router /ws [get]
func (h *Handler) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket",
			zap.Error(err),
		)
		return
	}

	// A connection is identified by a fresh opaque ID and nothing else.
	client := NewClient(h.hub, conn, uuid.New().String(), h.logger)

	h.hub.register <- client

	go client.WritePump()
	go client.ReadPump()
}

// GetStats godoc
// @Summary Connection and room statistics
// @Description Returns counts of connected clients and active rooms
// @Tags sync
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/rooms/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	stats := h.hub.GetStats()
	for k, v := range h.hub.roomService.Stats() {
		stats[k] = v
	}
	response.Success(c, stats)
}

// GetSyncConfig godoc
// @Summary Client synchronization parameters
// @Description Returns the drift threshold, poll interval and echo-suppression windows clients should run with
// @Tags sync
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/sync/config [get]
func (h *Handler) GetSyncConfig(c *gin.Context) {
	response.Success(c, gin.H{
		"driftThreshold":      h.sync.DriftThreshold,
		"pollIntervalMs":      h.sync.PollInterval.Milliseconds(),
		"playPauseCooldownMs": h.sync.PlayPauseCooldown.Milliseconds(),
		"seekCooldownMs":      h.sync.SeekCooldown.Milliseconds(),
	})
}
