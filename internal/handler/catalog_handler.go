package handler

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rushikeshnarwade/sync-beats/internal/dto/response"
	"github.com/rushikeshnarwade/sync-beats/internal/pkg/cache"
	"github.com/rushikeshnarwade/sync-beats/internal/service"
)

const searchCacheTTL = 15 * time.Minute

type CatalogHandler struct {
	catalogService *service.CatalogService
	cache          *cache.Cache
	logger         *zap.Logger
}

// NewCatalogHandler creates a catalog handler. The cache may be nil, in
// which case every search hits the upstream API.
func NewCatalogHandler(catalogService *service.CatalogService, c *cache.Cache, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		cache:          c,
		logger:         logger,
	}
}

// Search godoc
// @Summary Search the video catalog
// @Description Searches videos by keyword. A pasted video URL or bare video ID resolves directly without a keyword search.
// @Tags catalog
// @Produce json
// @Param q query string true "Search keywords or a video URL"
// @Success 200 {object} response.Response{data=[]service.CatalogResult}
// @Failure 400 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /api/v1/search [get]
func (h *CatalogHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		response.BadRequest(c, "query parameter q is required")
		return
	}

	// A pasted URL or ID skips the keyword search entirely.
	if videoID, ok := service.ExtractVideoID(query); ok {
		results, err := h.catalogService.Lookup(c.Request.Context(), videoID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, results)
		return
	}

	if cached, ok := h.fromCache(c, query); ok {
		response.Success(c, cached)
		return
	}

	results, err := h.catalogService.Search(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.storeCache(c, query, results)
	response.Success(c, results)
}

func (h *CatalogHandler) fromCache(c *gin.Context, query string) ([]service.CatalogResult, bool) {
	if h.cache == nil {
		return nil, false
	}

	raw, err := h.cache.Get(c.Request.Context(), cache.SearchKey(query))
	if err != nil {
		return nil, false
	}

	var results []service.CatalogResult
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		h.logger.Warn("Discarding malformed cached search results", zap.String("query", query))
		return nil, false
	}
	return results, true
}

func (h *CatalogHandler) storeCache(c *gin.Context, query string, results []service.CatalogResult) {
	if h.cache == nil {
		return
	}

	raw, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := h.cache.Set(c.Request.Context(), cache.SearchKey(query), raw, searchCacheTTL); err != nil {
		h.logger.Warn("Failed to cache search results", zap.Error(err))
	}
}
