package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrSanityNotConfigured is returned before any network call when the
// CMS project id is missing.
var ErrSanityNotConfigured = errors.New("sanity project id not configured")

// groqQueries maps a content type to the GROQ document query the site
// renders from. The four types mirror the CMS schema.
var groqQueries = map[string]string{
	"pictures": `*[_type == "pictures"] | order(_createdAt desc)`,
	"videos":   `*[_type == "videos"] | order(_createdAt desc)`,
	"music":    `*[_type == "music"] | order(releaseDate desc)`,
	"radio":    `*[_type == "radio"] | order(_createdAt desc)`,
}

// IsContentType reports whether t is one of the CMS document types the
// content endpoint serves.
func IsContentType(t string) bool {
	_, ok := groqQueries[t]
	return ok
}

// ContentSource fetches CMS documents by content type. Handlers depend
// on the interface so tests can substitute a fake.
type ContentSource interface {
	GetContent(ctx context.Context, contentType string) (json.RawMessage, error)
}

// SanityClient queries the Sanity HTTP GROQ endpoint.
type SanityClient struct {
	projectID  string
	dataset    string
	apiVersion string
	// baseURL overrides the constructed project URL; tests point it at
	// a local server.
	baseURL    string
	httpClient *http.Client
}

func NewSanityClient(projectID, dataset, apiVersion string) *SanityClient {
	return &SanityClient{
		projectID:  projectID,
		dataset:    dataset,
		apiVersion: apiVersion,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// GetContent runs the GROQ query for the given content type and returns
// the raw result array.
func (sc *SanityClient) GetContent(ctx context.Context, contentType string) (json.RawMessage, error) {
	if sc.projectID == "" {
		return nil, ErrSanityNotConfigured
	}
	query, ok := groqQueries[contentType]
	if !ok {
		return nil, fmt.Errorf("unknown content type: %s", contentType)
	}

	base := sc.baseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.api.sanity.io", sc.projectID)
	}
	endpoint := fmt.Sprintf("%s/v%s/data/query/%s?query=%s",
		base, sc.apiVersion, sc.dataset, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := sc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query cms: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read cms response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cms returned status %d", resp.StatusCode)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("invalid cms response: %w", err)
	}
	return envelope.Result, nil
}
