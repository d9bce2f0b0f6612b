package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"opacweb-server/models"
)

// ErrShopifyNotConfigured is returned before any network call when the
// store domain or storefront access token is missing.
var ErrShopifyNotConfigured = errors.New("shopify store domain or access token not configured")

// ErrCartNotFound is returned by cart mutations whose cart id no longer
// resolves upstream. Handlers map it to 404 and drop the session cookie.
var ErrCartNotFound = errors.New("cart not found")

// CommerceError is a platform-reported failure. It carries the first
// message Shopify returned, never a raw transport error.
type CommerceError struct {
	Message string
}

func (e *CommerceError) Error() string {
	return e.Message
}

// Commerce is the typed surface the handlers depend on. Keeping it an
// interface lets tests substitute a fake client.
type Commerce interface {
	GetProducts(ctx context.Context, first int, after string) (*models.ProductPage, error)
	GetProductByHandle(ctx context.Context, handle string) (*models.Product, error)
	CreateCart(ctx context.Context, variantID string, quantity int) (*models.Cart, error)
	AddToCart(ctx context.Context, cartID, variantID string, quantity int) (*models.Cart, error)
	UpdateCartLines(ctx context.Context, cartID string, updates []models.CartLineUpdate) (*models.Cart, error)
	RemoveFromCart(ctx context.Context, cartID string, lineIDs []string) (*models.Cart, error)
	GetCart(ctx context.Context, cartID string) (*models.Cart, error)
}

// ShopifyClient talks to the Shopify Storefront GraphQL API.
type ShopifyClient struct {
	storeDomain string
	accessToken string
	apiVersion  string
	// endpoint overrides the constructed URL; tests point it at a local
	// server.
	endpoint   string
	httpClient *http.Client
	tracer     trace.Tracer
}

// NewShopifyClient creates a Storefront API client. Credentials may be
// empty; every call checks them and fails with ErrShopifyNotConfigured
// so a misconfigured deploy is caught before the first network hop.
func NewShopifyClient(storeDomain, accessToken, apiVersion string) *ShopifyClient {
	return &ShopifyClient{
		storeDomain: storeDomain,
		accessToken: accessToken,
		apiVersion:  apiVersion,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tracer: otel.Tracer("opacweb-server/shopify"),
	}
}

type gqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// execute posts one GraphQL document and decodes the data envelope into out.
func (sc *ShopifyClient) execute(ctx context.Context, operation, query string, variables map[string]interface{}, out interface{}) error {
	if sc.storeDomain == "" || sc.accessToken == "" {
		return ErrShopifyNotConfigured
	}

	ctx, span := sc.tracer.Start(ctx, "shopify."+operation,
		trace.WithAttributes(attribute.String("shopify.operation", operation)))
	defer span.End()

	body, err := json.Marshal(gqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal graphql request: %w", err)
	}

	endpoint := sc.endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s/api/%s/graphql.json", sc.storeDomain, sc.apiVersion)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", sc.accessToken)

	resp, err := sc.httpClient.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			// Let the caller's deadline surface as-is so the product
			// listing path can report a timeout distinctly.
			return ctx.Err()
		}
		return &CommerceError{Message: "commerce platform unreachable"}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return &CommerceError{Message: "failed to read commerce platform response"}
	}
	if resp.StatusCode != http.StatusOK {
		span.SetStatus(codes.Error, resp.Status)
		return &CommerceError{Message: fmt.Sprintf("commerce platform returned status %d", resp.StatusCode)}
	}

	var envelope gqlResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return &CommerceError{Message: "invalid response from commerce platform"}
	}
	if len(envelope.Errors) > 0 {
		span.SetStatus(codes.Error, envelope.Errors[0].Message)
		return &CommerceError{Message: envelope.Errors[0].Message}
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return &CommerceError{Message: "invalid response from commerce platform"}
	}
	return nil
}

// firstUserError converts a mutation's userErrors list into a
// CommerceError, keeping only the first message.
func firstUserError(errs []userError) error {
	if len(errs) == 0 {
		return nil
	}
	return &CommerceError{Message: errs[0].Message}
}

// GetProducts fetches one page of the catalog. Callers clamp first into
// [1,100] and validate the cursor; the client forwards them as-is.
func (sc *ShopifyClient) GetProducts(ctx context.Context, first int, after string) (*models.ProductPage, error) {
	variables := map[string]interface{}{"first": first}
	if after != "" {
		variables["after"] = after
	}

	var data struct {
		Products struct {
			Edges []struct {
				Node shopifyProduct `json:"node"`
			} `json:"edges"`
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
		} `json:"products"`
	}
	if err := sc.execute(ctx, "getProducts", getProductsQuery, variables, &data); err != nil {
		return nil, err
	}

	page := &models.ProductPage{
		Products: make([]models.Product, 0, len(data.Products.Edges)),
		PageInfo: models.PageInfo{
			HasNextPage: data.Products.PageInfo.HasNextPage,
			EndCursor:   data.Products.PageInfo.EndCursor,
		},
	}
	for _, edge := range data.Products.Edges {
		page.Products = append(page.Products, edge.Node.toModel())
	}
	return page, nil
}

// GetProductByHandle returns the product or nil when the handle does
// not exist; a missing handle is not an error.
func (sc *ShopifyClient) GetProductByHandle(ctx context.Context, handle string) (*models.Product, error) {
	var data struct {
		Product *shopifyProduct `json:"product"`
	}
	if err := sc.execute(ctx, "getProductByHandle", getProductByHandleQuery, map[string]interface{}{"handle": handle}, &data); err != nil {
		return nil, err
	}
	if data.Product == nil {
		return nil, nil
	}
	product := data.Product.toModel()
	return &product, nil
}

// CreateCart creates a fresh cart holding exactly one line.
func (sc *ShopifyClient) CreateCart(ctx context.Context, variantID string, quantity int) (*models.Cart, error) {
	variables := map[string]interface{}{
		"input": map[string]interface{}{
			"lines": []map[string]interface{}{
				{"merchandiseId": variantID, "quantity": quantity},
			},
		},
	}
	var data struct {
		CartCreate struct {
			Cart       *shopifyCart `json:"cart"`
			UserErrors []userError  `json:"userErrors"`
		} `json:"cartCreate"`
	}
	if err := sc.execute(ctx, "createCart", cartCreateMutation, variables, &data); err != nil {
		return nil, err
	}
	if err := firstUserError(data.CartCreate.UserErrors); err != nil {
		return nil, err
	}
	if data.CartCreate.Cart == nil {
		return nil, &CommerceError{Message: "cart creation returned no cart"}
	}
	return data.CartCreate.Cart.toModel(), nil
}

// AddToCart appends a variant to an existing cart. When the cart id no
// longer resolves the mutation fails; the fallback to CreateCart is the
// caller's responsibility.
func (sc *ShopifyClient) AddToCart(ctx context.Context, cartID, variantID string, quantity int) (*models.Cart, error) {
	variables := map[string]interface{}{
		"cartId": cartID,
		"lines": []map[string]interface{}{
			{"merchandiseId": variantID, "quantity": quantity},
		},
	}
	var data struct {
		CartLinesAdd struct {
			Cart       *shopifyCart `json:"cart"`
			UserErrors []userError  `json:"userErrors"`
		} `json:"cartLinesAdd"`
	}
	if err := sc.execute(ctx, "addToCart", cartLinesAddMutation, variables, &data); err != nil {
		return nil, err
	}
	if err := firstUserError(data.CartLinesAdd.UserErrors); err != nil {
		return nil, err
	}
	if data.CartLinesAdd.Cart == nil {
		return nil, ErrCartNotFound
	}
	return data.CartLinesAdd.Cart.toModel(), nil
}

// UpdateCartLines applies all quantity changes in a single upstream
// mutation, so the batch is atomic from the caller's perspective.
func (sc *ShopifyClient) UpdateCartLines(ctx context.Context, cartID string, updates []models.CartLineUpdate) (*models.Cart, error) {
	lines := make([]map[string]interface{}, 0, len(updates))
	for _, u := range updates {
		lines = append(lines, map[string]interface{}{"id": u.ID, "quantity": u.Quantity})
	}
	variables := map[string]interface{}{"cartId": cartID, "lines": lines}

	var data struct {
		CartLinesUpdate struct {
			Cart       *shopifyCart `json:"cart"`
			UserErrors []userError  `json:"userErrors"`
		} `json:"cartLinesUpdate"`
	}
	if err := sc.execute(ctx, "updateCartLines", cartLinesUpdateMutation, variables, &data); err != nil {
		return nil, err
	}
	if err := firstUserError(data.CartLinesUpdate.UserErrors); err != nil {
		return nil, err
	}
	if data.CartLinesUpdate.Cart == nil {
		return nil, ErrCartNotFound
	}
	return data.CartLinesUpdate.Cart.toModel(), nil
}

// RemoveFromCart deletes the given lines from the cart.
func (sc *ShopifyClient) RemoveFromCart(ctx context.Context, cartID string, lineIDs []string) (*models.Cart, error) {
	variables := map[string]interface{}{"cartId": cartID, "lineIds": lineIDs}

	var data struct {
		CartLinesRemove struct {
			Cart       *shopifyCart `json:"cart"`
			UserErrors []userError  `json:"userErrors"`
		} `json:"cartLinesRemove"`
	}
	if err := sc.execute(ctx, "removeFromCart", cartLinesRemoveMutation, variables, &data); err != nil {
		return nil, err
	}
	if err := firstUserError(data.CartLinesRemove.UserErrors); err != nil {
		return nil, err
	}
	if data.CartLinesRemove.Cart == nil {
		return nil, ErrCartNotFound
	}
	return data.CartLinesRemove.Cart.toModel(), nil
}

// GetCart resolves a cart id. Returns (nil, nil) when the id is unknown
// or expired upstream; the session layer clears its cookie on nil.
func (sc *ShopifyClient) GetCart(ctx context.Context, cartID string) (*models.Cart, error) {
	var data struct {
		Cart *shopifyCart `json:"cart"`
	}
	if err := sc.execute(ctx, "getCart", getCartQuery, map[string]interface{}{"cartId": cartID}, &data); err != nil {
		return nil, err
	}
	if data.Cart == nil {
		return nil, nil
	}
	return data.Cart.toModel(), nil
}
