// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/job-outreach/internal/pipeline"
	"github.com/jonathan/job-outreach/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxEventsToShow is the default number of row outcomes to display
	maxEventsToShow = 10
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		runes := []rune(line)
		if len(runes) > boxWidth-4 {
			line = string(runes[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// statusLines renders one line per status in pipeline order, skipping zero counts.
func statusLines(counts map[types.Status]int) string {
	var sb strings.Builder
	total := 0
	for _, s := range types.AllStatuses {
		n := counts[s]
		if n == 0 {
			continue
		}
		total += n
		sb.WriteString(fmt.Sprintf("  %-28s %4d\n", shortStatus(s), n))
	}
	sb.WriteString(fmt.Sprintf("  %-28s %4d", "Total", total))
	return sb.String()
}

// shortStatus keeps the long failure labels inside the box.
func shortStatus(s types.Status) string {
	switch s {
	case types.StatusLinkedInFailed:
		return "LinkedIn request failed"
	case types.StatusGenerationFailed:
		return "Generation failed"
	default:
		return string(s)
	}
}

// PrintStatusCounts outputs the number of leads per status.
func (p *Printer) PrintStatusCounts(title string, counts map[types.Status]int) {
	if title == "" {
		title = "LEAD STATUS"
	}
	p.printBox(title, statusLines(counts))
}

// PrintRunReport outputs a summary of one pipeline pass.
func (p *Printer) PrintRunReport(report *pipeline.Report) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:       %s\n", report.RunID))
	if !report.FinishedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Duration:  %s\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond)))
	}
	if report.DryRun {
		sb.WriteString("Mode:      dry run (no messages sent)\n")
	}
	sb.WriteString(fmt.Sprintf("Checkpoints written: %d\n", report.Checkpoints))

	for _, stage := range report.Stages {
		sb.WriteString(fmt.Sprintf("\n%s: %d selected", stage.Stage, stage.Selected))
		if stage.Skipped > 0 {
			sb.WriteString(fmt.Sprintf(", %d skipped", stage.Skipped))
		}
		if stage.Pending > 0 {
			sb.WriteString(fmt.Sprintf(", %d pending", stage.Pending))
		}
		sb.WriteString("\n")
		for _, s := range types.AllStatuses {
			if n := stage.Results[s]; n > 0 {
				sb.WriteString(fmt.Sprintf("  • %s: %d\n", shortStatus(s), n))
			}
		}
	}

	if report.After != nil {
		sb.WriteString("\nAfter this pass:\n")
		sb.WriteString(statusLines(report.After))
	}

	p.printBox("PIPELINE PASS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEvents outputs the most recent row outcomes.
func (p *Printer) PrintEvents(events []pipeline.ProgressEvent) {
	if len(events) == 0 {
		return
	}

	var sb strings.Builder
	start := max(0, len(events)-maxEventsToShow)
	if start > 0 {
		sb.WriteString(fmt.Sprintf("... %d earlier outcomes\n", start))
	}
	for _, e := range events[start:] {
		sb.WriteString(fmt.Sprintf("#%d %s\n", e.Row, e.Lead))
		sb.WriteString(fmt.Sprintf("    %s → %s\n", e.Stage, shortStatus(e.Status)))
	}

	p.printBox("ROW OUTCOMES", strings.TrimSuffix(sb.String(), "\n"))
}
