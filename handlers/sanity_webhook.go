package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"opacweb-server/cache"
	"opacweb-server/config"
	"opacweb-server/logger"
)

// contentTypeTags maps CMS document types to cache tags.
var contentTypeTags = map[string]string{
	"pictures": cache.TagPictures,
	"videos":   cache.TagVideos,
	"music":    cache.TagMusic,
	"radio":    cache.TagRadio,
}

// allContentTags is the defensive blast radius for deletes that arrive
// without a document type.
func allContentTags() []string {
	return []string{cache.TagPictures, cache.TagVideos, cache.TagMusic, cache.TagRadio}
}

// SanityWebhook receives CMS change notifications
// @Summary Sanity webhook receiver
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/sanity-webhook [post]
func SanityWebhook(c *gin.Context) {
	start := time.Now()

	secret := config.AppConfig.SanityWebhookSecret
	verified := "ok"
	if secret == "" {
		logger.Log.Warn("sanity webhook secret not configured; accepting webhook UNVERIFIED")
		verified = "skipped"
	} else {
		header := c.GetHeader("sanity-webhook-secret")
		if len(header) != len(secret) || subtle.ConstantTimeCompare([]byte(header), []byte(secret)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
			return
		}
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read request body"})
		return
	}

	var payload struct {
		Type string `json:"_type"`
		ID   string `json:"_id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	var tags []string
	switch {
	case payload.Type != "":
		tag, ok := contentTypeTags[payload.Type]
		if !ok {
			c.JSON(http.StatusOK, gin.H{
				"received": true,
				"ignored":  true,
				"type":     payload.Type,
				"verified": verified,
			})
			return
		}
		tags = []string{tag}
	case payload.ID != "":
		// Deletes arrive without a _type; invalidate everything the CMS
		// feeds rather than guessing.
		tags = allContentTags()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing _type and _id"})
		return
	}

	for _, tag := range tags {
		if _, err := Cache.Invalidate(c.Request.Context(), tag); err != nil {
			logger.Log.Error("cache invalidation failed", zap.String("tag", tag), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cache invalidation failed"})
			return
		}
	}

	logger.Log.Info("sanity webhook processed", zap.Strings("tags", tags))
	c.JSON(http.StatusOK, gin.H{
		"revalidated":   true,
		"tags":          tags,
		"verified":      verified,
		"processing_ms": time.Since(start).Milliseconds(),
	})
}
