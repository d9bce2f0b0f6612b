package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opacweb-server/models"
	"opacweb-server/services"
)

func emptyPage() *models.ProductPage {
	return &models.ProductPage{Products: []models.Product{}, PageInfo: models.PageInfo{}}
}

func TestGetProductsClampsFirst(t *testing.T) {
	cases := []struct {
		query    string
		expected int
	}{
		{"", 20},
		{"first=abc", 20},
		{"first=0", 1},
		{"first=-7", 1},
		{"first=50", 50},
		{"first=100", 100},
		{"first=500", 100},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			commerce, _ := setupTest(t)
			var gotFirst int
			commerce.getProductsFn = func(first int, after string) (*models.ProductPage, error) {
				gotFirst = first
				return emptyPage(), nil
			}
			router := newTestRouter()

			rec := doRequest(router, http.MethodGet, "/api/products?"+tc.query, "", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.expected, gotFirst)
		})
	}
}

func TestGetProductsDropsMalformedCursor(t *testing.T) {
	cases := map[string]string{
		"valid base64ish": "eyJsYXN0X2lkIjo0Mn0=",
		"spaces":          "abc%20def",
		"semicolon":       "abc%3Bdef",
		"quote":           "abc%27def",
	}
	expectForwarded := map[string]string{
		"valid base64ish": "eyJsYXN0X2lkIjo0Mn0=",
		"spaces":          "",
		"semicolon":       "",
		"quote":           "",
	}
	for name, cursor := range cases {
		t.Run(name, func(t *testing.T) {
			commerce, _ := setupTest(t)
			var gotAfter string
			commerce.getProductsFn = func(first int, after string) (*models.ProductPage, error) {
				gotAfter = after
				return emptyPage(), nil
			}
			router := newTestRouter()

			rec := doRequest(router, http.MethodGet, "/api/products?after="+cursor, "", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, expectForwarded[name], gotAfter)
		})
	}
}

func TestGetProductsTimeout(t *testing.T) {
	commerce, _ := setupTest(t)
	commerce.getProductsFn = func(first int, after string) (*models.ProductPage, error) {
		return nil, context.DeadlineExceeded
	}
	router := newTestRouter()

	rec := doRequest(router, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusRequestTimeout, rec.Code)
}

func TestGetProductsUnconfigured(t *testing.T) {
	commerce, _ := setupTest(t)
	commerce.getProductsFn = func(first int, after string) (*models.ProductPage, error) {
		return nil, services.ErrShopifyNotConfigured
	}
	router := newTestRouter()

	rec := doRequest(router, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	// The missing variable stays server-side.
	assert.NotContains(t, rec.Body.String(), "SHOPIFY")
}

func TestGetProductsServedFromCacheUntilInvalidated(t *testing.T) {
	commerce, store := setupTest(t)
	calls := 0
	commerce.getProductsFn = func(first int, after string) (*models.ProductPage, error) {
		calls++
		return &models.ProductPage{
			Products: []models.Product{{ID: fmt.Sprintf("gid://p%d", calls), Handle: "tee", Title: "Tee"}},
			PageInfo: models.PageInfo{},
		}, nil
	}
	router := newTestRouter()

	first := doRequest(router, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, first.Code)
	second := doRequest(router, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 1, calls)
	assert.Equal(t, first.Body.String(), second.Body.String())

	_, err := store.Invalidate(context.Background(), "products")
	require.NoError(t, err)

	third := doRequest(router, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, third.Code)
	assert.Equal(t, 2, calls)
}

func TestGetProductByHandleNotFound(t *testing.T) {
	commerce, _ := setupTest(t)
	commerce.getByHandleFn = func(handle string) (*models.Product, error) {
		return nil, nil
	}
	router := newTestRouter()

	rec := doRequest(router, http.MethodGet, "/api/products/missing-tee", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProductByHandleFound(t *testing.T) {
	commerce, _ := setupTest(t)
	commerce.getByHandleFn = func(handle string) (*models.Product, error) {
		require.Equal(t, "logo-tee", handle)
		return &models.Product{ID: "gid://p1", Handle: handle, Title: "Logo Tee"}, nil
	}
	router := newTestRouter()

	rec := doRequest(router, http.MethodGet, "/api/products/logo-tee", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "logo-tee")
}
