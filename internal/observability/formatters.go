// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/cold-email-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// previewLines caps how much of an email body is shown
	previewLines = 12
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
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most width runes, marking the cut with "...".
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

// PrintJobPostings outputs a summary of every extracted posting.
func (p *Printer) PrintJobPostings(jobs []types.JobPosting) {
	if len(jobs) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Postings found: %d\n", len(jobs)))

	for i, job := range jobs {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, job.Role))
		sb.WriteString(fmt.Sprintf("    Experience: %s\n", job.Experience))
		if len(job.Skills) > 0 {
			count := min(len(job.Skills), maxItemsToShow)
			skills := strings.Join(job.Skills[:count], ", ")
			if len(job.Skills) > maxItemsToShow {
				skills += fmt.Sprintf(" (+%d more)", len(job.Skills)-maxItemsToShow)
			}
			sb.WriteString(fmt.Sprintf("    Skills: %s\n", skills))
		}
	}

	p.printBox("EXTRACTED JOB POSTINGS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintLinks outputs the portfolio links selected for one role.
func (p *Printer) PrintLinks(role string, links []string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Role: %s\n\n", role))
	if len(links) == 0 {
		sb.WriteString("No matching portfolio links")
	}
	for _, link := range links {
		sb.WriteString(fmt.Sprintf("  • %s\n", link))
	}

	p.printBox("PORTFOLIO LINKS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEmail outputs the head of a composed email with its status flags.
func (p *Printer) PrintEmail(role string, draft types.EmailDraft) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Role:  %s\n", role))
	sb.WriteString(fmt.Sprintf("Words: %d\n", len(strings.Fields(draft.Body))))
	switch {
	case draft.Degraded:
		sb.WriteString("Status: generation failed\n")
	case draft.SignatureAppended:
		sb.WriteString("Status: ok (signature appended)\n")
	default:
		sb.WriteString("Status: ok\n")
	}
	sb.WriteString("\n")

	lines := strings.Split(draft.Body, "\n")
	count := min(len(lines), previewLines)
	sb.WriteString(strings.Join(lines[:count], "\n"))
	if len(lines) > previewLines {
		sb.WriteString(fmt.Sprintf("\n... %d more lines", len(lines)-previewLines))
	}

	p.printBox("COMPOSED EMAIL", sb.String())
}

// PrintRunSummary outputs the totals for a finished run.
func (p *Printer) PrintRunSummary(jobs, degraded int, files []string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Emails generated: %d\n", jobs-degraded))
	sb.WriteString(fmt.Sprintf("Failed:           %d\n", degraded))
	if len(files) > 0 {
		sb.WriteString("\nFiles:\n")
		for _, f := range files {
			sb.WriteString(fmt.Sprintf("  • %s\n", f))
		}
	}

	p.printBox("RUN SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}
