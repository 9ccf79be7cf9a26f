// Package observability provides formatted terminal output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/interview-coach/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// barWidth is the widest bar drawn for a chart category
	barWidth = 20
)

// Printer handles formatted output for terminal sessions
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
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		for _, wrapped := range wrap(line, inner) {
			fmt.Fprintf(p.out, "│ %s │\n", pad(wrapped, inner))
		}
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintReport outputs a human-readable summary of an interview report.
func (p *Printer) PrintReport(report *types.InterviewReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(report.OverallFeedback)
	sb.WriteString("\n")

	writeList(&sb, "Strengths", report.Strengths)
	writeList(&sb, "Areas to Improve", report.Weaknesses)

	if report.ChartConsistent() && len(report.ChartData.Labels) > 0 {
		sb.WriteString("\nQuestions by Category:\n")
		maxValue := 0
		for _, v := range report.ChartData.Values {
			maxValue = max(maxValue, v)
		}
		for i, label := range report.ChartData.Labels {
			v := report.ChartData.Values[i]
			bar := 0
			if maxValue > 0 && v > 0 {
				bar = max(1, v*barWidth/maxValue)
			}
			sb.WriteString(fmt.Sprintf("  %-12s %s %d\n", label, strings.Repeat("█", bar), v))
		}
	}

	p.printBox("INTERVIEW REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDocuments outputs the size and opening lines of ingested documents.
func (p *Printer) PrintDocuments(docs *types.SessionDocuments) {
	if docs == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Session:  %s\n", docs.SessionID))
	sb.WriteString(fmt.Sprintf("Resume:   %d characters\n", utf8.RuneCountInString(docs.ResumeText)))
	sb.WriteString(fmt.Sprintf("Job:      %d characters\n", utf8.RuneCountInString(docs.JobDescriptionText)))
	if first := firstLine(docs.JobDescriptionText); first != "" {
		sb.WriteString("\n" + first)
	}

	p.printBox("INGESTED DOCUMENTS", sb.String())
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("\n" + title + ":\n")
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// wrap breaks line at word boundaries so no piece exceeds width runes.
// Words longer than width are split.
func wrap(line string, width int) []string {
	if utf8.RuneCountInString(line) <= width {
		return []string{line}
	}
	indent := line[:len(line)-len(strings.TrimLeft(line, " "))]

	var out []string
	current := ""
	for _, word := range strings.Fields(line) {
		for utf8.RuneCountInString(word) > width-len(indent) {
			if current != "" {
				out = append(out, current)
				current = ""
			}
			runes := []rune(word)
			out = append(out, indent+string(runes[:width-len(indent)]))
			word = string(runes[width-len(indent):])
		}
		switch {
		case current == "":
			current = indent + word
		case utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= width:
			current += " " + word
		default:
			out = append(out, current)
			current = indent + word
		}
	}
	if current != "" {
		out = append(out, current)
	}
	return out
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
