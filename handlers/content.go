package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"opacweb-server/logger"
	"opacweb-server/services"
)

// GetContent serves one of the CMS-backed media collections
// @Summary Content by type
// @Produce json
// @Param type path string true "pictures | videos | music | radio"
// @Success 200 {object} map[string]interface{}
// @Router /api/content/{type} [get]
func GetContent(c *gin.Context) {
	contentType := c.Param("type")
	if !services.IsContentType(contentType) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown content type"})
		return
	}

	// Cached under the tag of the same name, which is exactly what the
	// CMS webhook invalidates.
	cacheKey := "content:" + contentType
	if cached, ok, err := Cache.Get(c.Request.Context(), cacheKey); err == nil && ok {
		c.Data(http.StatusOK, "application/json", cached)
		return
	}

	result, err := Content.GetContent(c.Request.Context(), contentType)
	if err != nil {
		if errors.Is(err, services.ErrSanityNotConfigured) {
			logger.Log.Error("cms not configured", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "content is not available"})
			return
		}
		logger.Log.Error("content fetch failed", zap.String("type", contentType), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load content"})
		return
	}

	if len(result) == 0 {
		result = []byte("null")
	}
	body := []byte(`{"result":` + string(result) + `}`)
	if err := Cache.Set(c.Request.Context(), cacheKey, body, contentType); err != nil {
		logger.Log.Warn("content cache write failed", zap.Error(err))
	}
	c.Data(http.StatusOK, "application/json", body)
}
