package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/openclause/clauseguard/internal/model"
)

// Renderer writes analysis reports as JSON, Markdown and terminal summaries
type Renderer struct {
	out io.Writer
}

// NewRenderer creates a renderer writing summaries to the given writer.
// A nil writer defaults to stdout.
func NewRenderer(out io.Writer) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	return &Renderer{out: out}
}

// RenderJSON writes the report as indented JSON. Path "-" or "" writes to
// the renderer's output stream.
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')

	if path == "" || path == "-" {
		_, err = r.out.Write(data)
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderMarkdown writes a human-readable report
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Contract Analysis Report\n\n")
	fmt.Fprintf(&b, "- **Source:** %s\n", report.Source)
	fmt.Fprintf(&b, "- **Analyzed:** %s\n", report.AnalyzedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- **Fingerprint:** %s\n", report.Fingerprint)
	fmt.Fprintf(&b, "- **Records:** %d (match rate %.1f%%, exact rate %.1f%%)\n\n",
		report.Summary.Total, report.Summary.MatchRate, report.Summary.ExactRate)

	if report.Extraction != nil {
		fmt.Fprintf(&b, "Extracted by %s (%s) over %d chunks.\n\n",
			report.Extraction.Provider, report.Extraction.Model, report.Extraction.Chunks)
	}

	fmt.Fprintf(&b, "## Records\n\n")
	fmt.Fprintf(&b, "| ID | Kind | Severity | Status | Confidence | Routing | Location |\n")
	fmt.Fprintf(&b, "|----|------|----------|--------|-----------:|---------|----------|\n")
	for _, rec := range report.Records {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %.2f | %s | %s |\n",
			rec.Record.ID, rec.Record.Kind, orDash(rec.Record.Severity),
			rec.Outcome.Status, rec.Confidence, rec.Routing, orDash(rec.Outcome.Location))
	}
	b.WriteString("\n")

	flagged := flaggedRecords(report.Records)
	if len(flagged) > 0 {
		fmt.Fprintf(&b, "## Flagged Records\n\n")
		for _, rec := range flagged {
			fmt.Fprintf(&b, "### %s (%s)\n\n", rec.Record.ID, rec.Record.Kind)
			if rec.Record.Description != "" {
				fmt.Fprintf(&b, "%s\n\n", rec.Record.Description)
			}
			fmt.Fprintf(&b, "> %s\n\n", rec.Record.ClaimedSourceText)
			for _, issue := range rec.Outcome.Issues {
				fmt.Fprintf(&b, "- %s\n", issue)
			}
			b.WriteString("\n")
		}
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// RenderSummary prints a short terminal summary
func (r *Renderer) RenderSummary(report *model.Report) {
	s := report.Summary

	fmt.Fprintf(r.out, "\n%s\n", report.Source)
	fmt.Fprintf(r.out, "  records: %d  (obligations %d, risk flags %d)\n",
		s.Total, s.ByKind[model.KindObligation], s.ByKind[model.KindRiskFlag])
	fmt.Fprintf(r.out, "  verified: %d exact, %d likely, %d flagged  (match rate %.1f%%)\n",
		s.ByStatus[model.StatusExact], s.ByStatus[model.StatusLikely],
		s.ByStatus[model.StatusFlagged], s.MatchRate)
	fmt.Fprintf(r.out, "  routing: %d auto-include, %d tag-verify, %d human-review\n",
		s.ByRouting[model.RouteAutoInclude], s.ByRouting[model.RouteTagVerify],
		s.ByRouting[model.RouteHumanReview])

	if len(s.HumanReview) > 0 {
		ids := append([]string(nil), s.HumanReview...)
		sort.Strings(ids)
		fmt.Fprintf(r.out, "  needs review: %s\n", strings.Join(ids, ", "))
	}
}

func flaggedRecords(records []model.ScoredRecord) []model.ScoredRecord {
	var flagged []model.ScoredRecord
	for _, rec := range records {
		if rec.Outcome.Status == model.StatusFlagged {
			flagged = append(flagged, rec)
		}
	}
	return flagged
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
