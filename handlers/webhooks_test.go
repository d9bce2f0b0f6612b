package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opacweb-server/config"
)

const (
	webhookTestSecret = "opacweb-test-secret"
	webhookTestBody   = `{"id":123,"handle":"midnight-tee"}`
	// Recorded known-good signature for webhookTestSecret over
	// webhookTestBody; guards against the HMAC computation drifting.
	webhookTestSignature = "SufahigeIGVdQogWAKuNclc6QeKUSFkD1sxU86Nl1wI="
)

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func shopifyHeaders(signature, topic string) map[string]string {
	return map[string]string{
		"X-Shopify-Hmac-Sha256": signature,
		"X-Shopify-Topic":       topic,
		"X-Shopify-Shop-Domain": "opacweb.myshopify.com",
	}
}

func TestShopifySignatureFixture(t *testing.T) {
	assert.Equal(t, webhookTestSignature, signBody(webhookTestSecret, []byte(webhookTestBody)))
}

func TestShopifyWebhookValidSignature(t *testing.T) {
	_, store := setupTest(t)
	config.AppConfig.ShopifyWebhookSecret = webhookTestSecret
	router := newTestRouter()

	rec := doRequest(router, http.MethodPost, "/api/shopify-webhook", webhookTestBody,
		shopifyHeaders(webhookTestSignature, "products/update"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"revalidated":true`)
	assert.Contains(t, rec.Body.String(), `"verified":"ok"`)

	tags := store.invalidatedTags()
	assert.Contains(t, tags, "products")
	assert.Contains(t, tags, "path:/shop")
	assert.Contains(t, tags, "path:/shop/midnight-tee")
}

func TestShopifyWebhookSingleByteMutationFails(t *testing.T) {
	_, store := setupTest(t)
	config.AppConfig.ShopifyWebhookSecret = webhookTestSecret
	router := newTestRouter()

	// Same length as the signed body, one byte different.
	mutated := []byte(webhookTestBody)
	mutated[len(mutated)-2] ^= 0x01

	rec := doRequest(router, http.MethodPost, "/api/shopify-webhook", string(mutated),
		shopifyHeaders(webhookTestSignature, "products/update"))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, store.invalidatedTags())
}

func TestShopifyWebhookMissingSignature(t *testing.T) {
	_, store := setupTest(t)
	config.AppConfig.ShopifyWebhookSecret = webhookTestSecret
	router := newTestRouter()

	rec := doRequest(router, http.MethodPost, "/api/shopify-webhook", webhookTestBody,
		map[string]string{
			"X-Shopify-Topic":       "products/update",
			"X-Shopify-Shop-Domain": "opacweb.myshopify.com",
		})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, store.invalidatedTags())
}

func TestShopifyWebhookWrongLengthSignature(t *testing.T) {
	_, store := setupTest(t)
	config.AppConfig.ShopifyWebhookSecret = webhookTestSecret
	router := newTestRouter()

	rec := doRequest(router, http.MethodPost, "/api/shopify-webhook", webhookTestBody,
		shopifyHeaders("short", "products/update"))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, store.invalidatedTags())
}

// The response never echoes the configured secret or the expected
// signature back to the caller.
func TestShopifyWebhookDoesNotLeakSecret(t *testing.T) {
	_, _ = setupTest(t)
	config.AppConfig.ShopifyWebhookSecret = webhookTestSecret
	router := newTestRouter()

	rec := doRequest(router, http.MethodPost, "/api/shopify-webhook", webhookTestBody,
		shopifyHeaders("invalid-signature-invalid-signature-invalid==", "products/update"))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), webhookTestSecret)
	assert.NotContains(t, rec.Body.String(), webhookTestSignature)
}

func TestShopifyWebhookIgnoresUnlistedTopic(t *testing.T) {
	_, store := setupTest(t)
	config.AppConfig.ShopifyWebhookSecret = webhookTestSecret
	body := `{"id":9000}`
	router := newTestRouter()

	rec := doRequest(router, http.MethodPost, "/api/shopify-webhook", body,
		shopifyHeaders(signBody(webhookTestSecret, []byte(body)), "orders/create"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ignored":true`)
	assert.Empty(t, store.invalidatedTags())
}

// With no secret configured, verification is skipped but the response
// says so explicitly; this must never pass silently as verified.
func TestShopifyWebhookUnconfiguredSecretIsLoud(t *testing.T) {
	_, store := setupTest(t)
	config.AppConfig.ShopifyWebhookSecret = ""
	router := newTestRouter()

	rec := doRequest(router, http.MethodPost, "/api/shopify-webhook", webhookTestBody,
		shopifyHeaders("", "products/update"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"verified":"skipped"`)
	assert.Contains(t, store.invalidatedTags(), "products")
}

func TestShopifyWebhookHealth(t *testing.T) {
	_, _ = setupTest(t)
	config.AppConfig.ShopifyWebhookSecret = webhookTestSecret
	router := newTestRouter()

	rec := doRequest(router, http.MethodGet, "/api/shopify-webhook", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"secret_configured":true`)
}

func TestSanityWebhookMapsTypeToTag(t *testing.T) {
	_, store := setupTest(t)
	config.AppConfig.SanityWebhookSecret = "cms-secret"
	router := newTestRouter()

	rec := doRequest(router, http.MethodPost, "/api/sanity-webhook",
		`{"_type":"radio","_id":"doc-1"}`,
		map[string]string{"sanity-webhook-secret": "cms-secret"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"radio"}, store.invalidatedTags())
}

func TestSanityWebhookDeleteWithoutTypeInvalidatesAllContent(t *testing.T) {
	_, store := setupTest(t)
	config.AppConfig.SanityWebhookSecret = "cms-secret"
	router := newTestRouter()

	rec := doRequest(router, http.MethodPost, "/api/sanity-webhook",
		`{"_id":"doc-1"}`,
		map[string]string{"sanity-webhook-secret": "cms-secret"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.ElementsMatch(t, []string{"pictures", "videos", "music", "radio"}, store.invalidatedTags())
}

func TestSanityWebhookWrongSecret(t *testing.T) {
	_, store := setupTest(t)
	config.AppConfig.SanityWebhookSecret = "cms-secret"
	router := newTestRouter()

	rec := doRequest(router, http.MethodPost, "/api/sanity-webhook",
		`{"_type":"radio"}`,
		map[string]string{"sanity-webhook-secret": "wrong"})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, store.invalidatedTags())
}

func TestSanityWebhookUnknownTypeIgnored(t *testing.T) {
	_, store := setupTest(t)
	config.AppConfig.SanityWebhookSecret = "cms-secret"
	router := newTestRouter()

	rec := doRequest(router, http.MethodPost, "/api/sanity-webhook",
		`{"_type":"pressRelease","_id":"doc-1"}`,
		map[string]string{"sanity-webhook-secret": "cms-secret"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ignored":true`)
	assert.Empty(t, store.invalidatedTags())
}
