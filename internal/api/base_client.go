package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/vilaca/zenhub-estimates/internal/domain"
)

const (
	// MaxConcurrentRequests limits concurrent API requests to avoid overwhelming the API
	MaxConcurrentRequests = 5

	redactedToken = "[REDACTED]"
)

// HTTPClient interface for HTTP operations (allows mocking in tests).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// BaseClient contains common fields and functionality for all API clients.
type BaseClient struct {
	BaseURL    string
	Token      string
	Agent      string
	HTTPClient HTTPClient
	Semaphore  chan struct{} // Limits concurrent requests
}

// NewBaseClient creates a new base client with rate limiting.
func NewBaseClient(config ClientConfig, httpClient HTTPClient) *BaseClient {
	return &BaseClient{
		BaseURL:    strings.TrimRight(config.BaseURL, "/"),
		Token:      config.Token,
		Agent:      config.Agent,
		HTTPClient: httpClient,
		Semaphore:  make(chan struct{}, MaxConcurrentRequests),
	}
}

// DoRateLimited runs fn once a request slot is free.
// A context cancelled while waiting is reported as a transport failure.
func (c *BaseClient) DoRateLimited(ctx context.Context, fn func() error) error {
	select {
	case c.Semaphore <- struct{}{}:
		defer func() { <-c.Semaphore }()
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", domain.ErrTransport, ctx.Err())
	}

	return fn()
}

// Redact replaces every occurrence of the token in s.
func (c *BaseClient) Redact(s string) string {
	if c.Token == "" {
		return s
	}
	return strings.ReplaceAll(s, c.Token, redactedToken)
}
