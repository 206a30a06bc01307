// Package query compiles user-supplied issue expressions into filter predicates.
//
// Expressions use expr-lang syntax and see these variables:
//
//	title, state, repo     string
//	number                 int
//	estimate               float (0 when not estimated)
//	estimated, epic        bool
//	assignee, pipeline     string ("" when absent)
//	labels                 []string
package query

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/vilaca/zenhub-estimates/internal/domain"
	"github.com/vilaca/zenhub-estimates/internal/issues"
)

// Compile turns source into a predicate. An empty source yields a nil predicate.
// Evaluation errors at run time count as a non-match.
func Compile(source string) (issues.Predicate, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, nil
	}

	program, err := expr.Compile(source, expr.Env(issueEnv(domain.Issue{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: invalid where expression: %v", domain.ErrConfig, err)
	}

	return func(issue domain.Issue) bool {
		out, err := expr.Run(program, issueEnv(issue))
		if err != nil {
			return false
		}
		matched, _ := out.(bool)
		return matched
	}, nil
}

func issueEnv(issue domain.Issue) map[string]interface{} {
	estimate := 0.0
	if issue.Estimate != nil {
		estimate = *issue.Estimate
	}

	return map[string]interface{}{
		"title":     issue.Title,
		"state":     issue.State,
		"repo":      issue.RepoName,
		"number":    issue.IssueNumber,
		"estimate":  estimate,
		"estimated": issue.HasEstimate(),
		"epic":      issue.IsEpic,
		"assignee":  issue.AssigneeLogin(),
		"pipeline":  issue.PipelineName(),
		"labels":    issue.LabelNames(),
	}
}
