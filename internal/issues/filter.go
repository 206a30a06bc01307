package issues

import "github.com/vilaca/zenhub-estimates/internal/domain"

// Predicate is an extra constraint an issue must satisfy to match a Filter.
type Predicate func(domain.Issue) bool

// Filter selects issues. Every non-nil field is a constraint; nil fields
// impose none. An issue lacking the field a constraint inspects never matches it.
type Filter struct {
	ByAssignee     *string
	ByPipelineName *string
	Where          Predicate
}

// Aggregate is the result of applying a Filter to an issue list.
type Aggregate struct {
	Matched          []domain.Issue
	TotalEstimate    float64
	UnestimatedCount int
}

// Matches reports whether the issue satisfies all constraints of the filter.
// Only the singular Assignee is inspected; the Assignees list is ignored.
func (f Filter) Matches(issue domain.Issue) bool {
	if f.ByAssignee != nil {
		if issue.Assignee == nil || issue.Assignee.Login != *f.ByAssignee {
			return false
		}
	}
	if f.ByPipelineName != nil {
		if issue.Pipeline == nil || issue.Pipeline.Name != *f.ByPipelineName {
			return false
		}
	}
	if f.Where != nil && !f.Where(issue) {
		return false
	}
	return true
}

// Apply folds the issue list into the matching subset and its estimate totals.
// Matched issues keep their input order. The input slice is not modified.
func Apply(list []domain.Issue, f Filter) Aggregate {
	agg := Aggregate{Matched: make([]domain.Issue, 0, len(list))}
	for _, issue := range list {
		if !f.Matches(issue) {
			continue
		}
		agg = agg.add(issue)
	}
	return agg
}

func (a Aggregate) add(issue domain.Issue) Aggregate {
	a.Matched = append(a.Matched, issue)
	if issue.Estimate != nil {
		a.TotalEstimate += *issue.Estimate
	} else {
		a.UnestimatedCount++
	}
	return a
}
