// Package report aggregates clause verdicts into the compliance report.
package report

import (
	"github.com/jonathan/contract-review/internal/types"
)

// Aggregate keeps the problematic verdicts in their original order and counts them.
// It does not modify verdicts; aggregating its own output returns an equal report.
func Aggregate(verdicts []types.ClauseVerdict) types.ComplianceReport {
	items := make([]types.ClauseVerdict, 0, len(verdicts))
	for _, v := range verdicts {
		if v.IsProblematic() {
			items = append(items, v)
		}
	}
	return types.ComplianceReport{
		ProblematicCount: len(items),
		Items:            items,
	}
}

// Payload renders the report in the shape returned to callers
func Payload(report types.ComplianceReport) types.ReportPayload {
	output := make([]types.ReportItem, 0, len(report.Items))
	for _, v := range report.Items {
		output = append(output, types.ReportItem{
			ClauseIndex: v.Index,
			ClauseTitle: types.TitleClause,
			ClauseText:  v.Text,
			Issue:       v.IssueText(),
			Suggestion:  v.SuggestionText(),
		})
	}
	return types.ReportPayload{
		Status:           types.ReportStatusOK,
		ProblematicCount: report.ProblematicCount,
		Output:           output,
	}
}

// Tally counts verdicts per disposition
func Tally(verdicts []types.ClauseVerdict) map[types.Disposition]int {
	counts := make(map[types.Disposition]int, 4)
	for _, v := range verdicts {
		counts[v.Disposition]++
	}
	return counts
}
