// Package report writes run results to a terminal or as structured documents.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/vilaca/zenhub-estimates/internal/domain"
	"github.com/vilaca/zenhub-estimates/internal/service"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Renderer writes the reports of a run.
type Renderer interface {
	Render(w io.Writer, run *service.RunResult) error
}

// NewRenderer returns the renderer for format. An empty format means text.
// Colour only applies to text output.
func NewRenderer(format string, colour bool) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return NewTextRenderer(colour), nil
	case FormatJSON:
		return &JSONRenderer{}, nil
	case FormatYAML:
		return &YAMLRenderer{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown output format %q", domain.ErrConfig, format)
	}
}

// TextRenderer prints one table and summary line per pipeline.
type TextRenderer struct {
	summary *color.Color
	failure *color.Color
}

// NewTextRenderer creates a text renderer.
func NewTextRenderer(colour bool) *TextRenderer {
	r := &TextRenderer{
		summary: color.New(color.Bold),
		failure: color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{r.summary, r.failure} {
		if colour {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Render writes each pipeline's table and summary, or its error line, in order.
func (r *TextRenderer) Render(w io.Writer, run *service.RunResult) error {
	for i, res := range run.Results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if res.Err != nil {
			if _, err := r.failure.Fprintf(w, "%s: error: %v\n", resultTitle(res), res.Err); err != nil {
				return err
			}
			continue
		}
		if err := r.renderReport(w, res.Report); err != nil {
			return err
		}
	}
	return nil
}

func (r *TextRenderer) renderReport(w io.Writer, report *domain.PipelineReport) error {
	if len(report.Issues) > 0 {
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Repo", "#", "Est", "State", "Title"})
		table.SetBorder(false)
		table.SetAutoWrapText(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, issue := range report.Issues {
			table.Append([]string{
				issue.RepoName,
				strconv.Itoa(issue.IssueNumber),
				estimateCell(issue.Estimate),
				issue.State,
				strings.TrimSpace(issue.Title),
			})
		}
		table.Render()
	}

	_, err := r.summary.Fprintln(w, Summary(report))
	return err
}

// Summary returns the one-line totals for a report.
func Summary(report *domain.PipelineReport) string {
	return fmt.Sprintf("%s: %d issues, total estimate %s, unestimated %d",
		report.Title, len(report.Issues), formatEstimate(report.TotalEstimate), report.UnestimatedCount)
}

func estimateCell(e *float64) string {
	if e == nil {
		return ""
	}
	return formatEstimate(*e)
}

func formatEstimate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func resultTitle(res service.PipelineResult) string {
	if res.Name == "" {
		return domain.DefaultReportTitle
	}
	return res.Name
}

// JSONRenderer writes the run as an indented JSON document.
type JSONRenderer struct{}

// Render encodes the run as one JSON document.
func (r *JSONRenderer) Render(w io.Writer, run *service.RunResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(newRunDocument(run)); err != nil {
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}
	return nil
}

// YAMLRenderer writes the run as a YAML document.
type YAMLRenderer struct{}

// Render encodes the run as one YAML document.
func (r *YAMLRenderer) Render(w io.Writer, run *service.RunResult) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newRunDocument(run)); err != nil {
		return fmt.Errorf("failed to encode YAML report: %w", err)
	}
	return enc.Close()
}
