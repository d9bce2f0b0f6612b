package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"opacweb-server/cache"
	"opacweb-server/config"
	"opacweb-server/logger"
	"opacweb-server/models"
)

// fakeCommerce substitutes the Storefront client. Unset function fields
// make the corresponding call fail the test, so each test declares
// exactly the upstream traffic it expects.
type fakeCommerce struct {
	t  *testing.T
	mu sync.Mutex

	calls map[string]int

	getProductsFn     func(first int, after string) (*models.ProductPage, error)
	getByHandleFn     func(handle string) (*models.Product, error)
	createCartFn      func(variantID string, quantity int) (*models.Cart, error)
	addToCartFn       func(cartID, variantID string, quantity int) (*models.Cart, error)
	updateCartLinesFn func(cartID string, updates []models.CartLineUpdate) (*models.Cart, error)
	removeFromCartFn  func(cartID string, lineIDs []string) (*models.Cart, error)
	getCartFn         func(cartID string) (*models.Cart, error)
}

func newFakeCommerce(t *testing.T) *fakeCommerce {
	return &fakeCommerce{t: t, calls: make(map[string]int)}
}

func (f *fakeCommerce) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeCommerce) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeCommerce) GetProducts(ctx context.Context, first int, after string) (*models.ProductPage, error) {
	f.record("GetProducts")
	if f.getProductsFn == nil {
		f.t.Fatal("unexpected GetProducts call")
	}
	return f.getProductsFn(first, after)
}

func (f *fakeCommerce) GetProductByHandle(ctx context.Context, handle string) (*models.Product, error) {
	f.record("GetProductByHandle")
	if f.getByHandleFn == nil {
		f.t.Fatal("unexpected GetProductByHandle call")
	}
	return f.getByHandleFn(handle)
}

func (f *fakeCommerce) CreateCart(ctx context.Context, variantID string, quantity int) (*models.Cart, error) {
	f.record("CreateCart")
	if f.createCartFn == nil {
		f.t.Fatal("unexpected CreateCart call")
	}
	return f.createCartFn(variantID, quantity)
}

func (f *fakeCommerce) AddToCart(ctx context.Context, cartID, variantID string, quantity int) (*models.Cart, error) {
	f.record("AddToCart")
	if f.addToCartFn == nil {
		f.t.Fatal("unexpected AddToCart call")
	}
	return f.addToCartFn(cartID, variantID, quantity)
}

func (f *fakeCommerce) UpdateCartLines(ctx context.Context, cartID string, updates []models.CartLineUpdate) (*models.Cart, error) {
	f.record("UpdateCartLines")
	if f.updateCartLinesFn == nil {
		f.t.Fatal("unexpected UpdateCartLines call")
	}
	return f.updateCartLinesFn(cartID, updates)
}

func (f *fakeCommerce) RemoveFromCart(ctx context.Context, cartID string, lineIDs []string) (*models.Cart, error) {
	f.record("RemoveFromCart")
	if f.removeFromCartFn == nil {
		f.t.Fatal("unexpected RemoveFromCart call")
	}
	return f.removeFromCartFn(cartID, lineIDs)
}

func (f *fakeCommerce) GetCart(ctx context.Context, cartID string) (*models.Cart, error) {
	f.record("GetCart")
	if f.getCartFn == nil {
		f.t.Fatal("unexpected GetCart call")
	}
	return f.getCartFn(cartID)
}

// fakeContent substitutes the CMS client.
type fakeContent struct {
	fn func(contentType string) (json.RawMessage, error)
}

func (f *fakeContent) GetContent(ctx context.Context, contentType string) (json.RawMessage, error) {
	return f.fn(contentType)
}

// spyStore wraps the in-memory cache and records every invalidation so
// tests can assert which tags a webhook touched.
type spyStore struct {
	*cache.MemoryStore
	mu          sync.Mutex
	invalidated []string
}

func newSpyStore() *spyStore {
	return &spyStore{MemoryStore: cache.NewMemoryStore()}
}

func (s *spyStore) Invalidate(ctx context.Context, tag string) (int, error) {
	s.mu.Lock()
	s.invalidated = append(s.invalidated, tag)
	s.mu.Unlock()
	return s.MemoryStore.Invalidate(ctx, tag)
}

func (s *spyStore) invalidatedTags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.invalidated...)
}

// setupTest installs fakes into the handler globals and returns them.
func setupTest(t *testing.T) (*fakeCommerce, *spyStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
	config.AppConfig = &config.Config{
		ShopEnabled: true,
		Environment: "development",
	}
	commerce := newFakeCommerce(t)
	store := newSpyStore()
	InitializeHandlers(commerce, &fakeContent{fn: func(string) (json.RawMessage, error) {
		return json.RawMessage(`[]`), nil
	}}, store)
	return commerce, store
}

func cfgDisabled(t *testing.T) {
	t.Helper()
	config.AppConfig.ShopEnabled = false
}

// newTestRouter mirrors the route layout in main.go.
func newTestRouter() *gin.Engine {
	router := gin.New()
	api := router.Group("/api")
	shop := api.Group("")
	shop.Use(ShopEnabledMiddleware())
	{
		shop.GET("/cart", GetCart)
		shop.POST("/cart", AddToCart)
		shop.PUT("/cart", UpdateCart)
		shop.DELETE("/cart", RemoveFromCart)
		shop.DELETE("/cart/session", ClearCartSession)
		shop.GET("/products", GetProducts)
		shop.GET("/products/:handle", GetProductByHandle)
	}
	api.GET("/content/:type", GetContent)
	api.POST("/shopify-webhook", ShopifyWebhook)
	api.GET("/shopify-webhook", ShopifyWebhookHealth)
	api.POST("/sanity-webhook", SanityWebhook)
	api.POST("/revalidate", Revalidate)
	api.GET("/debug-cache", DebugCache)
	return router
}

func doRequest(router *gin.Engine, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func testCart(id string, lines ...models.CartLine) *models.Cart {
	total := 0
	for _, line := range lines {
		total += line.Quantity
	}
	return &models.Cart{
		ID:            id,
		CheckoutURL:   "https://checkout.example/" + id,
		TotalQuantity: total,
		Lines:         lines,
		Subtotal:      models.Money{Amount: "0.0", CurrencyCode: "EUR"},
		Total:         models.Money{Amount: "0.0", CurrencyCode: "EUR"},
	}
}

func testLine(id, variantID string, quantity int) models.CartLine {
	return models.CartLine{
		ID:       id,
		Quantity: quantity,
		Cost:     models.Money{Amount: "20.0", CurrencyCode: "EUR"},
		Merchandise: models.Merchandise{
			VariantID:    variantID,
			Title:        "M",
			ProductTitle: "Logo Tee",
			Price:        models.Money{Amount: "20.0", CurrencyCode: "EUR"},
		},
	}
}
