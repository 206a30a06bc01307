package domain

// Pipeline represents a board column in a ZenHub workspace.
// An issue references at most one pipeline.
type Pipeline struct {
	ID          string
	Name        string
	Description *string
}

// PipelineReport is the per-pipeline result of filtering and aggregating issues.
// Built once per requested pipeline per run; never persisted.
type PipelineReport struct {
	Title            string
	Issues           []Issue
	TotalEstimate    float64
	UnestimatedCount int
}

// EstimatedCount returns the number of report issues that carry an estimate.
func (r PipelineReport) EstimatedCount() int {
	return len(r.Issues) - r.UnestimatedCount
}
