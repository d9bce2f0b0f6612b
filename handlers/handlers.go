package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"opacweb-server/cache"
	"opacweb-server/logger"
	"opacweb-server/services"
)

// Package-level dependencies, installed once from main. The cookie is
// the only cart state this server holds, so nothing here is mutable
// beyond these wiring globals.
var (
	Commerce services.Commerce
	Content  services.ContentSource
	Cache    cache.Store
)

// InitializeHandlers wires the handler package's dependencies.
func InitializeHandlers(commerce services.Commerce, content services.ContentSource, store cache.Store) {
	Commerce = commerce
	Content = content
	Cache = store
}

// respondCommerceError maps adapter failures onto the HTTP boundary.
// Configuration problems stay generic toward the client; the real cause
// is only logged server-side.
func respondCommerceError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrShopifyNotConfigured) {
		logger.Log.Error("commerce platform not configured", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"cart": nil, "error": "shop is not available"})
		return
	}
	if errors.Is(err, services.ErrCartNotFound) {
		// The stored id points at a cart that expired or was completed
		// upstream; drop the stale reference along with the 404.
		clearCartCookie(c)
		c.JSON(http.StatusNotFound, gin.H{"cart": nil, "error": "cart not found"})
		return
	}
	var commerceErr *services.CommerceError
	if errors.As(err, &commerceErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"cart": nil, "error": commerceErr.Message})
		return
	}
	logger.Log.Error("commerce request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"cart": nil, "error": "commerce request failed"})
}
