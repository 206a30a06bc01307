package zenhub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/vilaca/zenhub-estimates/internal/api"
	"github.com/vilaca/zenhub-estimates/internal/domain"
	"github.com/vilaca/zenhub-estimates/internal/issues"
)

const (
	// DefaultBaseURL is the production ZenHub API root.
	DefaultBaseURL = "https://api.zenhub.com"

	// DefaultAgent identifies this tool to ZenHub when no agent is configured.
	DefaultAgent = "zenhub-estimates"

	headerToken = "X-Authentication-Token"
	headerAgent = "X-Zenhub-Agent"

	// maxErrorBody bounds how much of an error response is echoed into errors.
	maxErrorBody = 4096

	// issueQueryFlags are fixed by the v5 protocol and always sent after repo_ids.
	issueQueryFlags = "epics=1&estimates=1&connections=1&forceUpdate=0&pipelines=1&priorities=1&releases=1"
)

// Client implements api.Client for ZenHub.
type Client struct {
	*api.BaseClient
}

var _ api.Client = (*Client)(nil)

// NewClient creates a new ZenHub client.
// Uses dependency injection for HTTPClient.
func NewClient(config api.ClientConfig, httpClient api.HTTPClient) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Agent == "" {
		config.Agent = DefaultAgent
	}

	return &Client{BaseClient: api.NewBaseClient(config, httpClient)}
}

// GetCurrentUser retrieves the user the token belongs to.
func (c *Client) GetCurrentUser(ctx context.Context) (*domain.User, error) {
	url := fmt.Sprintf("%s/v1/user", c.BaseURL)

	var zu zenhubUser
	if err := c.doRequest(ctx, http.MethodGet, url, nil, &zu); err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	user := zu.toDomain()
	if user.Login == "" {
		return nil, fmt.Errorf("failed to get current user: %w: response has no login", domain.ErrDecode)
	}
	return user, nil
}

// GetRepositories retrieves the repositories connected to a workspace.
func (c *Client) GetRepositories(ctx context.Context, workspaceID string) ([]domain.Repository, error) {
	url := fmt.Sprintf("%s/v1/graphql", c.BaseURL)
	payload, err := json.Marshal(graphqlRequest{
		Query:     workspaceRepositoriesQuery,
		Variables: map[string]interface{}{"workspaceId": workspaceID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode repository query: %w", err)
	}

	var resp graphqlResponse[workspaceRepositoriesData]
	if err := c.doRequest(ctx, http.MethodPost, url, payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to get repositories: %w", err)
	}
	if err := resp.err(c.Redact); err != nil {
		return nil, fmt.Errorf("failed to get repositories: %w", err)
	}
	if resp.Data.Workspace == nil {
		return nil, fmt.Errorf("failed to get repositories: %w: workspace %q not found", domain.ErrDecode, workspaceID)
	}

	return resp.Data.Workspace.toDomain(), nil
}

// GetIssues retrieves every issue of the workspace within the repository scope.
// An empty scope is still sent, as an empty repo_ids parameter.
func (c *Client) GetIssues(ctx context.Context, workspaceID string, scope issues.Scope) ([]domain.Issue, error) {
	url := IssuesURL(c.BaseURL, workspaceID, scope)

	var zIssues []zenhubIssue
	if err := c.doRequest(ctx, http.MethodGet, url, nil, &zIssues); err != nil {
		return nil, fmt.Errorf("failed to get issues: %w", err)
	}

	result := make([]domain.Issue, len(zIssues))
	for i, zi := range zIssues {
		result[i] = zi.toDomain()
	}
	return result, nil
}

// IssuesURL builds the v5 workspace issue list URL.
// repo_ids comes first and its commas are left unescaped.
func IssuesURL(baseURL, workspaceID string, scope issues.Scope) string {
	return fmt.Sprintf("%s/v5/workspaces/%s/issues?repo_ids=%s&%s",
		baseURL, url.PathEscape(workspaceID), scope.String(), issueQueryFlags)
}

// doRequest performs an HTTP request to the ZenHub API and decodes the JSON body.
func (c *Client) doRequest(ctx context.Context, method, url string, body []byte, result interface{}) error {
	return c.DoRateLimited(ctx, func() error {
		var reqBody io.Reader
		if body != nil {
			reqBody = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
		if err != nil {
			return fmt.Errorf("%w: failed to create request: %v", domain.ErrConfig, err)
		}

		req.Header.Set(headerToken, c.Token)
		req.Header.Set(headerAgent, c.Agent)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: request failed: %w", domain.ErrTransport, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return fmt.Errorf("%w: API returned status %d: %s", domain.ErrAuth, resp.StatusCode, c.readErrorBody(resp.Body))
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("%w: API returned status %d: %s", domain.ErrTransport, resp.StatusCode, c.readErrorBody(resp.Body))
		}

		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", domain.ErrDecode, err)
		}

		return nil
	})
}

func (c *Client) readErrorBody(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return c.Redact(string(bytes.TrimSpace(body)))
}
