package report

import (
	"github.com/vilaca/zenhub-estimates/internal/domain"
	"github.com/vilaca/zenhub-estimates/internal/service"
)

type runDocument struct {
	Assignee  *string            `json:"assignee" yaml:"assignee"`
	Scope     []int              `json:"scope" yaml:"scope"`
	Pipelines []pipelineDocument `json:"pipelines" yaml:"pipelines"`
}

type pipelineDocument struct {
	Title            string          `json:"title" yaml:"title"`
	Issues           []issueDocument `json:"issues" yaml:"issues"`
	IssueCount       int             `json:"issue_count" yaml:"issue_count"`
	TotalEstimate    float64         `json:"total_estimate" yaml:"total_estimate"`
	UnestimatedCount int             `json:"unestimated_count" yaml:"unestimated_count"`
	Error            string          `json:"error,omitempty" yaml:"error,omitempty"`
}

type issueDocument struct {
	Repo     string   `json:"repo" yaml:"repo"`
	Number   int      `json:"number" yaml:"number"`
	Title    string   `json:"title" yaml:"title"`
	State    string   `json:"state" yaml:"state"`
	Estimate *float64 `json:"estimate" yaml:"estimate"`
	Assignee string   `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	Pipeline string   `json:"pipeline,omitempty" yaml:"pipeline,omitempty"`
	URL      string   `json:"url,omitempty" yaml:"url,omitempty"`
}

func newRunDocument(run *service.RunResult) runDocument {
	doc := runDocument{
		Assignee:  run.Assignee,
		Scope:     run.Scope.IDs(),
		Pipelines: make([]pipelineDocument, 0, len(run.Results)),
	}
	for _, res := range run.Results {
		if res.Err != nil {
			doc.Pipelines = append(doc.Pipelines, pipelineDocument{
				Title:  resultTitle(res),
				Issues: []issueDocument{},
				Error:  res.Err.Error(),
			})
			continue
		}
		doc.Pipelines = append(doc.Pipelines, newPipelineDocument(res.Report))
	}
	return doc
}

func newPipelineDocument(report *domain.PipelineReport) pipelineDocument {
	issues := make([]issueDocument, 0, len(report.Issues))
	for _, issue := range report.Issues {
		issues = append(issues, issueDocument{
			Repo:     issue.RepoName,
			Number:   issue.IssueNumber,
			Title:    issue.Title,
			State:    issue.State,
			Estimate: issue.Estimate,
			Assignee: issue.AssigneeLogin(),
			Pipeline: issue.PipelineName(),
			URL:      issue.HTMLURL,
		})
	}
	return pipelineDocument{
		Title:            report.Title,
		Issues:           issues,
		IssueCount:       len(issues),
		TotalEstimate:    report.TotalEstimate,
		UnestimatedCount: report.UnestimatedCount,
	}
}
