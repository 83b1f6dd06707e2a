package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/rushikeshnarwade/sync-beats/internal/dto/response"
)

func TestHealthHandler_Check(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/health", NewHealthHandler(nil).Check)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var health response.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	// Without Redis configured there is nothing to probe.
	if health.Status != "healthy" {
		t.Errorf("Expected status healthy, got %s", health.Status)
	}
	if health.Timestamp == "" {
		t.Error("Expected a timestamp")
	}
	if health.Uptime == "" {
		t.Error("Expected an uptime")
	}
	if len(health.Services) != 0 {
		t.Errorf("Expected no services without Redis, got %v", health.Services)
	}
}
