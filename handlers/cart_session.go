package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"opacweb-server/config"
	"opacweb-server/models"
)

const (
	cartCookieName   = "cart_id"
	cartCookieMaxAge = 30 * 24 * 60 * 60 // 30 days
)

// readCartID returns the session cart id, or "" when no cookie is set.
// An absent cookie is "no cart", never an error.
func readCartID(c *gin.Context) string {
	value, err := c.Cookie(cartCookieName)
	if err != nil {
		return ""
	}
	return value
}

// setCartCookie persists the cart reference. Re-set on every successful
// mutation so a platform-assigned new id always wins.
func setCartCookie(c *gin.Context, cartID string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cartCookieName, cartID, cartCookieMaxAge, "/", "", config.IsProduction(), true)
}

// clearCartCookie drops the reference so later reads do not chase a
// dead cart id.
func clearCartCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cartCookieName, "", -1, "/", "", config.IsProduction(), true)
}

// resolveSessionCart turns the cookie into a live cart. When the cookie
// points at a cart the platform no longer knows, the cookie is cleared
// and (nil, nil) is returned — same as having no cart at all.
func resolveSessionCart(c *gin.Context) (*models.Cart, error) {
	cartID := readCartID(c)
	if cartID == "" {
		return nil, nil
	}
	cart, err := Commerce.GetCart(c.Request.Context(), cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		clearCartCookie(c)
		return nil, nil
	}
	return cart, nil
}
