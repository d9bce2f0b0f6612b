package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"opacweb-server/config"
)

// RequestIDMiddleware tags every request with an id for log correlation.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// ShopEnabledMiddleware gates the commerce routes behind the shop
// feature flag. Routes stay registered so the response is an explicit
// 503 rather than a confusing 404.
func ShopEnabledMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !config.AppConfig.ShopEnabled {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "shop is currently disabled"})
			return
		}
		c.Next()
	}
}
