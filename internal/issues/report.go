package issues

import "github.com/vilaca/zenhub-estimates/internal/domain"

// BuildReport packages an aggregate into a named report.
// The title is the filter's pipeline name, or domain.DefaultReportTitle.
func BuildReport(f Filter, agg Aggregate) domain.PipelineReport {
	title := domain.DefaultReportTitle
	if f.ByPipelineName != nil {
		title = *f.ByPipelineName
	}

	return domain.PipelineReport{
		Title:            title,
		Issues:           agg.Matched,
		TotalEstimate:    agg.TotalEstimate,
		UnestimatedCount: agg.UnestimatedCount,
	}
}
