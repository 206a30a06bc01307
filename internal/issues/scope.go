package issues

import (
	"strconv"
	"strings"

	"github.com/vilaca/zenhub-estimates/internal/domain"
)

// Scope is the deduplicated set of repository IDs an issue query is bounded by.
// IDs keep the order in which they were first seen.
type Scope struct {
	ids []int
}

// NewScope derives a scope from a list of repositories, dropping duplicate IDs.
func NewScope(repos []domain.Repository) Scope {
	seen := make(map[int]struct{}, len(repos))
	ids := make([]int, 0, len(repos))
	for _, r := range repos {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		ids = append(ids, r.ID)
	}
	return Scope{ids: ids}
}

// IDs returns a copy of the repository IDs in the scope.
func (s Scope) IDs() []int {
	out := make([]int, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of distinct repository IDs.
func (s Scope) Len() int {
	return len(s.ids)
}

// IsEmpty reports whether the scope holds no repositories.
func (s Scope) IsEmpty() bool {
	return len(s.ids) == 0
}

// String serializes the scope as decimal IDs joined with ",".
func (s Scope) String() string {
	parts := make([]string, len(s.ids))
	for i, id := range s.ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
