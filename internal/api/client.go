package api

import (
	"context"

	"github.com/vilaca/zenhub-estimates/internal/domain"
	"github.com/vilaca/zenhub-estimates/internal/issues"
)

// RepositoryCatalog lists the repositories that belong to a workspace.
type RepositoryCatalog interface {
	// GetRepositories returns the repositories connected to the workspace.
	GetRepositories(ctx context.Context, workspaceID string) ([]domain.Repository, error)
}

// IssueFetcher retrieves the unfiltered issue list of a workspace.
type IssueFetcher interface {
	// GetIssues returns every issue visible in the workspace for the given scope.
	// Returned slices are shared snapshots and must not be modified.
	GetIssues(ctx context.Context, workspaceID string, scope issues.Scope) ([]domain.Issue, error)
}

// UserFetcher resolves the identity behind the configured token.
type UserFetcher interface {
	// GetCurrentUser returns the authenticated user.
	GetCurrentUser(ctx context.Context) (*domain.User, error)
}

// Client is the full ZenHub API surface consumed by the report service.
// Consumers depend on the narrow interfaces above where they can.
type Client interface {
	RepositoryCatalog
	IssueFetcher
	UserFetcher
}

// ClientConfig holds common configuration for API clients.
type ClientConfig struct {
	BaseURL string
	Token   string
	Agent   string
}

// Logger interface for logging operations.
type Logger interface {
	Debugf(format string, args ...interface{})
}
