package zenhub

import (
	"fmt"
	"strings"

	"github.com/vilaca/zenhub-estimates/internal/domain"
)

const workspaceRepositoriesQuery = `query WorkspaceRepositories($workspaceId: ID!) {
  workspace(id: $workspaceId) {
    id
    name
    description
    repositories {
      ghId
      name
      ownerName
    }
  }
}`

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphqlResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []graphqlError `json:"errors"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// err folds GraphQL errors into a single decode error.
// Messages pass through redact before they are joined.
func (r graphqlResponse[T]) err(redact func(string) string) error {
	if len(r.Errors) == 0 {
		return nil
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = redact(e.Message)
	}
	return fmt.Errorf("%w: graphql: %s", domain.ErrDecode, strings.Join(msgs, "; "))
}

type workspaceRepositoriesData struct {
	Workspace *zenhubWorkspace `json:"workspace"`
}

type zenhubWorkspace struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Description  *string            `json:"description"`
	Repositories []zenhubRepository `json:"repositories"`
}

type zenhubRepository struct {
	GhID      int    `json:"ghId"`
	Name      string `json:"name"`
	OwnerName string `json:"ownerName"`
}

func (w zenhubWorkspace) toDomain() []domain.Repository {
	repos := make([]domain.Repository, len(w.Repositories))
	for i, r := range w.Repositories {
		repos[i] = domain.Repository{
			ID:    r.GhID,
			Name:  r.Name,
			Owner: r.OwnerName,
		}
	}
	return repos
}
