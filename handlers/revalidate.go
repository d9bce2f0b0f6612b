package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"opacweb-server/cache"
	"opacweb-server/config"
	"opacweb-server/logger"
)

// checkRevalidateSecret compares the caller's secret against the
// configured one. An unconfigured secret refuses everything; manual
// revalidation has no local-development escape hatch.
func checkRevalidateSecret(provided string) bool {
	secret := config.AppConfig.RevalidateSecret
	if secret == "" {
		return false
	}
	return len(provided) == len(secret) &&
		subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) == 1
}

type revalidateRequest struct {
	Tag string `json:"tag"`
}

// Revalidate invalidates a single cache tag on demand
// @Summary Manual tag revalidation
// @Accept json
// @Produce json
// @Param secret query string true "Shared secret"
// @Param body body revalidateRequest true "Tag to invalidate"
// @Success 200 {object} map[string]interface{}
// @Router /api/revalidate [post]
func Revalidate(c *gin.Context) {
	if !checkRevalidateSecret(c.Query("secret")) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid secret"})
		return
	}

	var req revalidateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Tag == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tag is required"})
		return
	}

	dropped, err := Cache.Invalidate(c.Request.Context(), req.Tag)
	if err != nil {
		logger.Log.Error("manual invalidation failed", zap.String("tag", req.Tag), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cache invalidation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"revalidated": true, "tag": req.Tag, "dropped": dropped})
}

// DebugCache invalidates one or all known tags
// @Summary Debug cache invalidation
// @Produce json
// @Param secret query string true "Shared secret"
// @Param tag query string false "Single tag; all known tags when omitted"
// @Success 200 {object} map[string]interface{}
// @Router /api/debug-cache [get]
func DebugCache(c *gin.Context) {
	if !checkRevalidateSecret(c.Query("secret")) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid secret"})
		return
	}

	tags := cache.KnownTags()
	if tag := c.Query("tag"); tag != "" {
		known := false
		for _, t := range cache.KnownTags() {
			if t == tag {
				known = true
				break
			}
		}
		if !known {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown tag"})
			return
		}
		tags = []string{tag}
	}

	dropped := make(map[string]int, len(tags))
	for _, tag := range tags {
		n, err := Cache.Invalidate(c.Request.Context(), tag)
		if err != nil {
			logger.Log.Error("debug invalidation failed", zap.String("tag", tag), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cache invalidation failed"})
			return
		}
		dropped[tag] = n
	}
	c.JSON(http.StatusOK, gin.H{"revalidated": true, "tags": tags, "dropped": dropped})
}
