package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func createTestLogger() (*zap.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoder := zapcore.NewJSONEncoder(encoderConfig)
	core := zapcore.NewCore(encoder, zapcore.AddSync(buf), zapcore.DebugLevel)
	logger := zap.New(core)
	return logger, buf
}

func TestLogger_LogsRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, buf := createTestLogger()

	router := gin.New()
	router.Use(RequestID())
	router.Use(Logger(logger))

	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest("GET", "/test?q=hello", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log entry: %v", err)
	}

	if entry["path"] != "/test" {
		t.Errorf("Expected path '/test', got '%v'", entry["path"])
	}
	if entry["query"] != "q=hello" {
		t.Errorf("Expected query 'q=hello', got '%v'", entry["query"])
	}
	if entry["status"] != float64(200) {
		t.Errorf("Expected status 200, got '%v'", entry["status"])
	}
	if entry["request_id"] == "" {
		t.Error("Expected a request_id field")
	}
}

func TestLogger_LevelByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		status int
		level  string
	}{
		{200, "info"},
		{404, "warn"},
		{500, "error"},
	}

	for _, tt := range tests {
		logger, buf := createTestLogger()
		router := gin.New()
		router.Use(Logger(logger))

		status := tt.status
		router.GET("/test", func(c *gin.Context) {
			c.Status(status)
		})

		req := httptest.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var entry map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("Failed to parse log entry: %v", err)
		}
		if entry["level"] != tt.level {
			t.Errorf("Status %d: expected level %s, got %v", tt.status, tt.level, entry["level"])
		}
	}
}

func TestRequestID_SetsHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())

	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	requestID := w.Header().Get("X-Request-ID")
	if requestID == "" {
		t.Error("Expected X-Request-ID header to be set")
	}
	// Generated IDs are UUIDs (8-4-4-4-12 format)
	if len(requestID) != 36 {
		t.Errorf("Expected UUID format (36 chars), got '%s'", requestID)
	}
}

func TestRequestID_UsesProvidedID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())

	var capturedRequestID string
	router.GET("/test", func(c *gin.Context) {
		capturedRequestID = GetRequestID(c)
		c.String(http.StatusOK, "OK")
	})

	providedID := "custom-request-id-123"

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", providedID)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") != providedID {
		t.Errorf("Expected request ID '%s', got '%s'", providedID, w.Header().Get("X-Request-ID"))
	}
	if capturedRequestID != providedID {
		t.Errorf("Expected context request ID '%s', got '%s'", providedID, capturedRequestID)
	}
}

func TestGetRequestID_NoMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	var capturedRequestID string
	router.GET("/test", func(c *gin.Context) {
		capturedRequestID = GetRequestID(c)
		c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if capturedRequestID != "" {
		t.Errorf("Expected empty string when middleware not used, got '%s'", capturedRequestID)
	}
}

func TestRecovery_RecoversPanic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, buf := createTestLogger()

	router := gin.New()
	router.Use(Recovery(logger))

	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	req := httptest.NewRequest("GET", "/panic", nil)
	w := httptest.NewRecorder()

	// Should not panic
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response JSON: %v", err)
	}
	if _, ok := response["error"].(map[string]interface{}); !ok {
		t.Error("Expected response to have 'error' field")
	}

	if !strings.Contains(buf.String(), "Panic recovered") {
		t.Error("Expected the panic to be logged")
	}
}
