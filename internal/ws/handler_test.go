package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rushikeshnarwade/sync-beats/internal/config"
	"github.com/rushikeshnarwade/sync-beats/internal/dto/response"
)

func createTestHandler(t *testing.T) (*Handler, *Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := createTestHub(t)
	syncCfg := config.SyncConfig{
		DriftThreshold:    3.0,
		PollInterval:      time.Second,
		PlayPauseCooldown: 500 * time.Millisecond,
		SeekCooldown:      time.Second,
	}
	return NewHandler(hub, syncCfg, zap.NewNop()), hub
}

func getJSON(t *testing.T, router *gin.Engine, path string) map[string]interface{} {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected object data, got %T", resp.Data)
	}
	return data
}

func TestHandler_GetStats_DistinctRoomCounters(t *testing.T) {
	h, hub := createTestHandler(t)
	router := gin.New()
	router.GET("/api/v1/rooms/stats", h.GetStats)

	alice := createMockClient(hub, "conn-1")
	joinTestRoom(t, hub, alice, "", "alice")
	hub.unregisterClient(alice)

	data := getJSON(t, router, "/api/v1/rooms/stats")

	// The hub counts rooms with live connections, the service counts
	// rooms that exist, empty ones in grace included. Both are reported.
	if got := data["connected_rooms"]; got != float64(0) {
		t.Errorf("Expected 0 connected rooms, got %v", got)
	}
	if got := data["active_rooms"]; got != float64(1) {
		t.Errorf("Expected 1 active room, got %v", got)
	}
	if got := data["total_clients"]; got != float64(0) {
		t.Errorf("Expected 0 clients, got %v", got)
	}
}

func TestHandler_GetSyncConfig(t *testing.T) {
	h, _ := createTestHandler(t)
	router := gin.New()
	router.GET("/api/v1/sync/config", h.GetSyncConfig)

	data := getJSON(t, router, "/api/v1/sync/config")

	if got := data["driftThreshold"]; got != float64(3.0) {
		t.Errorf("Expected drift threshold 3, got %v", got)
	}
	if got := data["pollIntervalMs"]; got != float64(1000) {
		t.Errorf("Expected poll interval 1000ms, got %v", got)
	}
	if got := data["playPauseCooldownMs"]; got != float64(500) {
		t.Errorf("Expected play/pause cooldown 500ms, got %v", got)
	}
	if got := data["seekCooldownMs"]; got != float64(1000) {
		t.Errorf("Expected seek cooldown 1000ms, got %v", got)
	}
}
