package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func TestCatalogHandler_Search_MissingQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewCatalogHandler(nil, nil, zap.NewNop())
	router := gin.New()
	router.GET("/api/v1/search", h.Search)

	for _, q := range []string{"", "%20%20"} {
		req := httptest.NewRequest("GET", "/api/v1/search?q="+q, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Query %q: expected status 400, got %d", q, w.Code)
		}
	}
}
