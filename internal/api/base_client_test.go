package api

import (
	"context"
	"errors"
	"testing"

	"github.com/vilaca/zenhub-estimates/internal/domain"
)

// TestBaseClient_RedactsToken tests that the token never survives Redact.
func TestBaseClient_RedactsToken(t *testing.T) {
	// Arrange
	c := NewBaseClient(ClientConfig{BaseURL: "https://api.zenhub.com/", Token: "s3cret"}, nil)

	// Act
	got := c.Redact(`{"error":"bad token s3cret"}`)

	// Assert
	if got != `{"error":"bad token [REDACTED]"}` {
		t.Errorf("unexpected redaction: %s", got)
	}
	if c.BaseURL != "https://api.zenhub.com" {
		t.Errorf("expected trailing slash trimmed, got %s", c.BaseURL)
	}
}

// TestBaseClient_DoRateLimited_Cancelled tests that waiting on a full semaphore honours the context.
func TestBaseClient_DoRateLimited_Cancelled(t *testing.T) {
	// Arrange
	c := NewBaseClient(ClientConfig{}, nil)
	for i := 0; i < MaxConcurrentRequests; i++ {
		c.Semaphore <- struct{}{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	called := false
	err := c.DoRateLimited(ctx, func() error {
		called = true
		return nil
	})

	// Assert
	if !errors.Is(err, domain.ErrTransport) {
		t.Errorf("expected transport error, got %v", err)
	}
	if called {
		t.Error("expected fn not to run")
	}
}
