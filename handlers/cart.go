package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"opacweb-server/cache"
	"opacweb-server/logger"
	"opacweb-server/models"
)

// GetCart returns the session cart
// @Summary Current cart
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/cart [get]
func GetCart(c *gin.Context) {
	cart, err := resolveSessionCart(c)
	if err != nil {
		respondCommerceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

type addToCartRequest struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
	CartID    string `json:"cartId"`
}

// AddToCart adds a variant to the session cart, creating one if needed
// @Summary Add to cart
// @Accept json
// @Produce json
// @Param body body addToCartRequest true "Variant and quantity"
// @Success 200 {object} map[string]interface{}
// @Router /api/cart [post]
func AddToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"cart": nil, "error": "invalid request body"})
		return
	}
	if req.VariantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"cart": nil, "error": "variantId is required"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"cart": nil, "error": "quantity must be at least 1"})
		return
	}

	cartID := req.CartID
	if cartID == "" {
		cartID = readCartID(c)
	}

	ctx := c.Request.Context()
	var cart *models.Cart
	if cartID != "" {
		added, addErr := Commerce.AddToCart(ctx, cartID, req.VariantID, req.Quantity)
		if addErr != nil {
			// The stored id may point at an expired cart; fall back to a
			// fresh one. If that fails too, the original add error is
			// the diagnostic one, so it wins.
			created, createErr := Commerce.CreateCart(ctx, req.VariantID, req.Quantity)
			if createErr != nil {
				respondCommerceError(c, addErr)
				return
			}
			cart = created
		} else {
			cart = added
		}
	} else {
		created, err := Commerce.CreateCart(ctx, req.VariantID, req.Quantity)
		if err != nil {
			respondCommerceError(c, err)
			return
		}
		cart = created
	}

	setCartCookie(c, cart.ID)
	invalidateCartPages(c)
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

type updateCartRequest struct {
	Updates []models.CartLineUpdate `json:"updates"`
	CartID  string                  `json:"cartId"`
}

// UpdateCart changes line quantities in one batched mutation
// @Summary Update cart lines
// @Accept json
// @Produce json
// @Param body body updateCartRequest true "Line updates"
// @Success 200 {object} map[string]interface{}
// @Router /api/cart [put]
func UpdateCart(c *gin.Context) {
	var req updateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"cart": nil, "error": "invalid request body"})
		return
	}
	if len(req.Updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"cart": nil, "error": "updates are required"})
		return
	}
	// Quantity floor: rejected locally, no upstream call. A line going
	// to zero is a remove, not an update.
	for _, update := range req.Updates {
		if update.Quantity < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"cart": nil, "error": "quantity must be at least 1"})
			return
		}
	}

	cartID := req.CartID
	if cartID == "" {
		cartID = readCartID(c)
	}
	if cartID == "" {
		c.JSON(http.StatusNotFound, gin.H{"cart": nil, "error": "no cart found"})
		return
	}

	cart, err := Commerce.UpdateCartLines(c.Request.Context(), cartID, req.Updates)
	if err != nil {
		respondCommerceError(c, err)
		return
	}

	setCartCookie(c, cart.ID)
	invalidateCartPages(c)
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

// RemoveFromCart deletes lines; the cookie is cleared when the cart empties
// @Summary Remove cart lines
// @Produce json
// @Param lineIds query string true "Comma-separated line ids"
// @Success 200 {object} map[string]interface{}
// @Router /api/cart [delete]
func RemoveFromCart(c *gin.Context) {
	raw := c.Query("lineIds")
	var lineIDs []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			lineIDs = append(lineIDs, id)
		}
	}
	if len(lineIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"cart": nil, "error": "lineIds are required"})
		return
	}

	cartID := readCartID(c)
	if cartID == "" {
		c.JSON(http.StatusNotFound, gin.H{"cart": nil, "error": "no cart found"})
		return
	}

	cart, err := Commerce.RemoveFromCart(c.Request.Context(), cartID, lineIDs)
	if err != nil {
		respondCommerceError(c, err)
		return
	}

	// An empty cart is equivalent to no cart; drop the reference so the
	// next read does not resolve a hollow one.
	if cart.TotalQuantity == 0 {
		clearCartCookie(c)
	} else {
		setCartCookie(c, cart.ID)
	}
	invalidateCartPages(c)
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

// ClearCartSession abandons the remote cart by dropping the cookie only
// @Summary Clear cart session
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/cart/session [delete]
func ClearCartSession(c *gin.Context) {
	// No remote mutation: the platform-side cart is simply abandoned.
	clearCartCookie(c)
	c.JSON(http.StatusOK, gin.H{"cart": nil})
}

// invalidateCartPages drops cached renders that embed cart state.
func invalidateCartPages(c *gin.Context) {
	if _, err := Cache.Invalidate(c.Request.Context(), cache.PathTag("/cart")); err != nil {
		logger.Log.Warn("cart page invalidation failed", zap.Error(err))
	}
}
