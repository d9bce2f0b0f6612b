package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"opacweb-server/cache"
	"opacweb-server/logger"
	"opacweb-server/services"
)

const (
	defaultProductPageSize = 20
	maxProductPageSize     = 100
	productListTimeout     = 5 * time.Second
)

// cursorPattern matches the base64-like token shape Shopify uses for
// pagination cursors. Anything else is dropped, never forwarded.
var cursorPattern = regexp.MustCompile(`^[a-zA-Z0-9+/=]+$`)

// GetProducts lists the catalog with cursor pagination
// @Summary List products
// @Produce json
// @Param first query int false "Page size (1-100, default 20)"
// @Param after query string false "Pagination cursor"
// @Success 200 {object} map[string]interface{}
// @Router /api/products [get]
func GetProducts(c *gin.Context) {
	first := defaultProductPageSize
	if raw := c.Query("first"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			first = parsed
		}
	}
	// Clamp rather than reject: a bad page size is not worth a 400.
	if first < 1 {
		first = 1
	}
	if first > maxProductPageSize {
		first = maxProductPageSize
	}

	after := c.Query("after")
	if after != "" && !cursorPattern.MatchString(after) {
		after = ""
	}

	cacheKey := fmt.Sprintf("products:first=%d:after=%s", first, after)
	if cached, ok, err := Cache.Get(c.Request.Context(), cacheKey); err == nil && ok {
		c.Data(http.StatusOK, "application/json", cached)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), productListTimeout)
	defer cancel()

	page, err := Commerce.GetProducts(ctx, first, after)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			c.JSON(http.StatusRequestTimeout, gin.H{"error": "product listing timed out"})
		case errors.Is(err, services.ErrShopifyNotConfigured):
			logger.Log.Error("commerce platform not configured", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "shop is not available"})
		default:
			logger.Log.Error("product listing failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load products"})
		}
		return
	}

	body, err := json.Marshal(gin.H{"products": page.Products, "page_info": page.PageInfo})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load products"})
		return
	}
	if err := Cache.Set(c.Request.Context(), cacheKey, body, cache.TagProducts, cache.PathTag("/shop")); err != nil {
		logger.Log.Warn("product cache write failed", zap.Error(err))
	}
	c.Data(http.StatusOK, "application/json", body)
}

// GetProductByHandle returns one product
// @Summary Product by handle
// @Produce json
// @Param handle path string true "Product handle"
// @Success 200 {object} map[string]interface{}
// @Router /api/products/{handle} [get]
func GetProductByHandle(c *gin.Context) {
	handle := c.Param("handle")

	cacheKey := "product:" + handle
	if cached, ok, err := Cache.Get(c.Request.Context(), cacheKey); err == nil && ok {
		c.Data(http.StatusOK, "application/json", cached)
		return
	}

	product, err := Commerce.GetProductByHandle(c.Request.Context(), handle)
	if err != nil {
		if errors.Is(err, services.ErrShopifyNotConfigured) {
			logger.Log.Error("commerce platform not configured", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "shop is not available"})
			return
		}
		logger.Log.Error("product lookup failed", zap.String("handle", handle), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	body, err := json.Marshal(gin.H{"product": product})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
		return
	}
	if err := Cache.Set(c.Request.Context(), cacheKey, body, cache.TagProducts, cache.PathTag("/shop/"+handle)); err != nil {
		logger.Log.Warn("product cache write failed", zap.Error(err))
	}
	c.Data(http.StatusOK, "application/json", body)
}
