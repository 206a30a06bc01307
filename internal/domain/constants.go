package domain

const (
	// DefaultReportTitle is the title of a report not scoped to a pipeline.
	DefaultReportTitle = "Issues"
)
