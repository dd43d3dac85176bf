// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/contract-review/internal/report"
	"github.com/jonathan/contract-review/internal/retrieval"
	"github.com/jonathan/contract-review/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
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
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, shorten(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// shorten cuts s to at most n runes, ending with "..." when cut
func shorten(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// PrintSections outputs the segmented sections, marking the clauses.
func (p *Printer) PrintSections(sections []types.ContractSection) {
	if len(sections) == 0 {
		return
	}

	clauses := 0
	var sb strings.Builder
	for _, s := range sections {
		marker := " "
		if s.IsClause() {
			marker = "§"
			clauses++
		}
		sb.WriteString(fmt.Sprintf("%s %3d  %s\n", marker, s.Order, shorten(s.Text, 56)))
	}
	header := fmt.Sprintf("%d sections, %d clauses\n\n", len(sections), clauses)

	p.printBox("CONTRACT SECTIONS", header+strings.TrimSuffix(sb.String(), "\n"))
}

// PrintVerdicts outputs the disposition counts of a run.
func (p *Printer) PrintVerdicts(verdicts []types.ClauseVerdict, unresolved []int) {
	if len(verdicts) == 0 && len(unresolved) == 0 {
		return
	}

	counts := report.Tally(verdicts)
	keys := make([]string, 0, len(counts))
	for d := range counts {
		keys = append(keys, string(d))
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("%-24s %d\n", k, counts[types.Disposition(k)]))
	}
	if len(unresolved) > 0 {
		ids := make([]string, len(unresolved))
		for i, idx := range unresolved {
			ids[i] = fmt.Sprintf("%d", idx)
		}
		sb.WriteString(fmt.Sprintf("%-24s %d (clauses %s)\n", "unresolved", len(unresolved), strings.Join(ids, ", ")))
	}

	p.printBox("CLAUSE DISPOSITIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReferences outputs the legal passages matched to the clauses.
func (p *Printer) PrintReferences(refs []types.ReferenceMatch) {
	if len(refs) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(refs), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("• %s\n", refs[i].Title))
		sb.WriteString(fmt.Sprintf("  %s\n", shorten(refs[i].Text, 60)))
	}
	if len(refs) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more passages", len(refs)-maxItemsToShow))
	}

	p.printBox("LEGAL REFERENCES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintHits outputs corpus search results with their scores.
func (p *Printer) PrintHits(query string, hits []retrieval.Hit) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Query: %s\n", query))
	if len(hits) == 0 {
		sb.WriteString("\nNo passages found")
	}
	for i, h := range hits {
		sb.WriteString(fmt.Sprintf("\n#%d  %.3f  %s\n", i+1, h.Score, h.Entry.Title))
		sb.WriteString(fmt.Sprintf("    %s", shorten(h.Entry.Text, 62)))
	}

	p.printBox("CORPUS SEARCH", sb.String())
}

// PrintReport outputs the problematic clauses with their issues and fixes.
func (p *Printer) PrintReport(payload types.ReportPayload) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Problematic clauses: %d\n", payload.ProblematicCount))

	for _, item := range payload.Output {
		sb.WriteString(fmt.Sprintf("\nClause %d: %s\n", item.ClauseIndex, shorten(item.ClauseText, 54)))
		sb.WriteString(fmt.Sprintf("  ✗ %s\n", item.Issue))
		if item.Suggestion != "" {
			sb.WriteString(fmt.Sprintf("  → %s\n", item.Suggestion))
		}
	}

	p.printBox("COMPLIANCE REPORT", strings.TrimSuffix(sb.String(), "\n"))
}
