package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
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

// allowedShopifyTopics is the explicit allow-list; anything else is
// acknowledged but triggers no invalidation, so unrelated topics cannot
// churn the cache.
var allowedShopifyTopics = map[string]bool{
	"products/create":         true,
	"products/update":         true,
	"products/delete":         true,
	"inventory_levels/update": true,
}

// verifyShopifySignature checks the HMAC-SHA256 header against the raw
// body. Returns "ok", "invalid", or "skipped" (no secret configured).
// The length check runs before the constant-time compare so mismatched
// sizes never reach it.
func verifyShopifySignature(secret string, body []byte, signature string) string {
	if secret == "" {
		logger.Log.Warn("shopify webhook secret not configured; accepting webhook UNVERIFIED")
		return "skipped"
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	if len(expected) != len(signature) {
		return "invalid"
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return "invalid"
	}
	return "ok"
}

// ShopifyWebhook receives commerce change notifications
// @Summary Shopify webhook receiver
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/shopify-webhook [post]
func ShopifyWebhook(c *gin.Context) {
	start := time.Now()

	// The raw bytes feed the HMAC; nothing may parse the body first.
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read request body"})
		return
	}

	secret := config.AppConfig.ShopifyWebhookSecret
	signature := c.GetHeader("X-Shopify-Hmac-Sha256")
	if secret != "" && signature == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing signature"})
		return
	}
	verified := verifyShopifySignature(secret, body, signature)
	if verified == "invalid" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	topic := c.GetHeader("X-Shopify-Topic")
	shopDomain := c.GetHeader("X-Shopify-Shop-Domain")
	if topic == "" || shopDomain == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing topic or shop domain header"})
		return
	}

	if !allowedShopifyTopics[topic] {
		logger.Log.Info("ignoring shopify webhook topic", zap.String("topic", topic))
		c.JSON(http.StatusOK, gin.H{
			"received": true,
			"ignored":  true,
			"topic":    topic,
			"verified": verified,
		})
		return
	}

	// Product payloads carry the handle; absence just means we skip the
	// per-product path.
	var payload struct {
		Handle string `json:"handle"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		payload.Handle = ""
	}

	tags := []string{cache.TagProducts, cache.PathTag("/shop")}
	if payload.Handle != "" {
		tags = append(tags, cache.PathTag("/shop/"+payload.Handle))
	}
	for _, tag := range tags {
		if _, err := Cache.Invalidate(c.Request.Context(), tag); err != nil {
			logger.Log.Error("cache invalidation failed", zap.String("tag", tag), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cache invalidation failed"})
			return
		}
	}

	logger.Log.Info("shopify webhook processed",
		zap.String("topic", topic),
		zap.String("shop", shopDomain),
		zap.Strings("tags", tags))
	c.JSON(http.StatusOK, gin.H{
		"revalidated":   true,
		"topic":         topic,
		"tags":          tags,
		"verified":      verified,
		"processing_ms": time.Since(start).Milliseconds(),
	})
}

// ShopifyWebhookHealth reports whether signature verification is armed
// @Summary Shopify webhook health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/shopify-webhook [get]
func ShopifyWebhookHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"secret_configured": config.AppConfig.ShopifyWebhookSecret != "",
	})
}
