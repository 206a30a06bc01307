package issues

import (
	"testing"

	"github.com/vilaca/zenhub-estimates/internal/domain"
)

// TestBuildReport_Title tests title selection with and without a pipeline filter.
func TestBuildReport_Title(t *testing.T) {
	tests := []struct {
		name          string
		filter        Filter
		expectedTitle string
	}{
		{"pipeline filter", Filter{ByPipelineName: strPtr("In Progress")}, "In Progress"},
		{"assignee only", Filter{ByAssignee: strPtr("alice")}, domain.DefaultReportTitle},
		{"empty filter", Filter{}, "Issues"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange & Act
			report := BuildReport(tt.filter, Aggregate{})

			// Assert
			if report.Title != tt.expectedTitle {
				t.Errorf("expected title '%s', got '%s'", tt.expectedTitle, report.Title)
			}
		})
	}
}

// TestBuildReport_CarriesAggregates tests that totals pass through unchanged.
func TestBuildReport_CarriesAggregates(t *testing.T) {
	// Arrange
	filter := Filter{ByPipelineName: strPtr("Backlog")}
	agg := Apply([]domain.Issue{
		newIssue(1, "alice", "Backlog", floatPtr(1.5)),
		newIssue(2, "alice", "Backlog", nil),
	}, filter)

	// Act
	report := BuildReport(filter, agg)

	// Assert
	if len(report.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(report.Issues))
	}
	if report.TotalEstimate != 1.5 {
		t.Errorf("expected total estimate 1.5, got %v", report.TotalEstimate)
	}
	if report.UnestimatedCount != 1 || report.EstimatedCount() != 1 {
		t.Errorf("expected 1 estimated and 1 unestimated, got %d and %d",
			report.EstimatedCount(), report.UnestimatedCount)
	}
}
