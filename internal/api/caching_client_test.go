package api

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vilaca/zenhub-estimates/internal/domain"
	"github.com/vilaca/zenhub-estimates/internal/issues"
)

// mockClient is a minimal Client double that counts upstream calls.
type mockClient struct {
	issueCalls atomic.Int32
	repoCalls  atomic.Int32
	getIssues  func(ctx context.Context, workspaceID string, scope issues.Scope) ([]domain.Issue, error)
}

func (m *mockClient) GetCurrentUser(ctx context.Context) (*domain.User, error) {
	return &domain.User{Login: "alice"}, nil
}

func (m *mockClient) GetRepositories(ctx context.Context, workspaceID string) ([]domain.Repository, error) {
	m.repoCalls.Add(1)
	return []domain.Repository{{ID: 1, Name: "api", Owner: "acme"}}, nil
}

func (m *mockClient) GetIssues(ctx context.Context, workspaceID string, scope issues.Scope) ([]domain.Issue, error) {
	m.issueCalls.Add(1)
	if m.getIssues != nil {
		return m.getIssues(ctx, workspaceID, scope)
	}
	return []domain.Issue{{IssueNumber: 1}}, nil
}

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...interface{}) {}

// TestCachingClient_CachesIssues tests that a second identical request is served from cache.
// Follows AAA (Arrange, Act, Assert) pattern.
func TestCachingClient_CachesIssues(t *testing.T) {
	// Arrange
	upstream := &mockClient{}
	client := NewCachingClient(upstream, time.Minute, nopLogger{})
	scope := issues.NewScope([]domain.Repository{{ID: 1}, {ID: 2}})

	// Act
	first, err1 := client.GetIssues(context.Background(), "ws", scope)
	second, err2 := client.GetIssues(context.Background(), "ws", scope)

	// Assert
	if err1 != nil || err2 != nil {
		t.Fatalf("expected no errors, got %v / %v", err1, err2)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected 1 issue from both calls, got %d and %d", len(first), len(second))
	}
	if got := upstream.issueCalls.Load(); got != 1 {
		t.Errorf("expected 1 upstream call, got %d", got)
	}
}

// TestCachingClient_DistinctScopes tests that different scopes are cached separately.
func TestCachingClient_DistinctScopes(t *testing.T) {
	// Arrange
	upstream := &mockClient{}
	client := NewCachingClient(upstream, time.Minute, nopLogger{})

	// Act
	_, _ = client.GetIssues(context.Background(), "ws", issues.NewScope([]domain.Repository{{ID: 1}}))
	_, _ = client.GetIssues(context.Background(), "ws", issues.NewScope([]domain.Repository{{ID: 2}}))

	// Assert
	if got := upstream.issueCalls.Load(); got != 2 {
		t.Errorf("expected 2 upstream calls, got %d", got)
	}
}

// TestCachingClient_ConcurrentRequestsShareCall tests in-flight deduplication.
func TestCachingClient_ConcurrentRequestsShareCall(t *testing.T) {
	// Arrange
	release := make(chan struct{})
	upstream := &mockClient{
		getIssues: func(ctx context.Context, workspaceID string, scope issues.Scope) ([]domain.Issue, error) {
			<-release
			return []domain.Issue{{IssueNumber: 7}}, nil
		},
	}
	client := NewCachingClient(upstream, time.Minute, nopLogger{})
	scope := issues.NewScope([]domain.Repository{{ID: 1}})

	// Act
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.GetIssues(context.Background(), "ws", scope); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	// Assert
	if got := upstream.issueCalls.Load(); got != 1 {
		t.Errorf("expected 1 upstream call, got %d", got)
	}
}

// TestCachingClient_ErrorsNotCached tests that a failed fetch is retried on the next call.
func TestCachingClient_ErrorsNotCached(t *testing.T) {
	// Arrange
	fail := true
	upstream := &mockClient{
		getIssues: func(ctx context.Context, workspaceID string, scope issues.Scope) ([]domain.Issue, error) {
			if fail {
				return nil, errors.New("boom")
			}
			return []domain.Issue{}, nil
		},
	}
	client := NewCachingClient(upstream, time.Minute, nopLogger{})
	scope := issues.NewScope(nil)

	// Act
	_, err := client.GetIssues(context.Background(), "ws", scope)
	fail = false
	_, err2 := client.GetIssues(context.Background(), "ws", scope)

	// Assert
	if err == nil {
		t.Fatal("expected first call to fail")
	}
	if err2 != nil {
		t.Fatalf("expected second call to succeed, got %v", err2)
	}
	if got := upstream.issueCalls.Load(); got != 2 {
		t.Errorf("expected 2 upstream calls, got %d", got)
	}
}

// TestCache_Expiry tests that entries expire after the configured duration.
func TestCache_Expiry(t *testing.T) {
	// Arrange
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	c := newCache(30 * time.Second)
	c.now = func() time.Time { return now }
	c.set("k", 42)

	// Act
	_, foundBefore := c.get("k")
	now = now.Add(31 * time.Second)
	_, foundAfter := c.get("k")

	// Assert
	if !foundBefore {
		t.Error("expected entry before expiry")
	}
	if foundAfter {
		t.Error("expected entry to be expired")
	}
}

// TestCachingClient_Repositories tests repository caching.
func TestCachingClient_Repositories(t *testing.T) {
	// Arrange
	upstream := &mockClient{}
	client := NewCachingClient(upstream, time.Minute, nopLogger{})

	// Act
	repos, err := client.GetRepositories(context.Background(), "ws")
	_, _ = client.GetRepositories(context.Background(), "ws")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(repos) != 1 || repos[0].FullName() != "acme/api" {
		t.Errorf("unexpected repositories: %+v", repos)
	}
	if got := upstream.repoCalls.Load(); got != 1 {
		t.Errorf("expected 1 upstream call, got %d", got)
	}
}
