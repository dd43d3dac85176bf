package types

import "fmt"

// Disposition is the final status assigned to a clause after filtering and classification
type Disposition string

// Disposition values
const (
	DispositionSkippedPersonalInfo Disposition = "skipped_personal_info"
	DispositionSkippedTrivial      Disposition = "skipped_trivial"
	DispositionCompliant           Disposition = "compliant"
	DispositionProblematic         Disposition = "problematic"
)

// ClauseVerdict is the per-clause outcome of a review run.
// Issue and Suggestion are only set when Disposition is DispositionProblematic.
type ClauseVerdict struct {
	Index       int         `json:"clause_index"`
	Title       string      `json:"clause_title"`
	Text        string      `json:"clause_text"`
	Disposition Disposition `json:"disposition"`
	Issue       *string     `json:"issue,omitempty"`
	Suggestion  *string     `json:"suggestion,omitempty"`
}

// NewVerdict builds a non-problematic verdict for a section
func NewVerdict(section ContractSection, disposition Disposition) (ClauseVerdict, error) {
	if disposition == DispositionProblematic {
		return ClauseVerdict{}, fmt.Errorf("problematic verdict for clause %d requires an issue", section.Order)
	}
	return ClauseVerdict{
		Index:       section.Order,
		Title:       section.Title,
		Text:        section.Text,
		Disposition: disposition,
	}, nil
}

// NewProblematicVerdict builds a problematic verdict carrying the issue and suggested fix
func NewProblematicVerdict(section ContractSection, issue, suggestion string) ClauseVerdict {
	return ClauseVerdict{
		Index:       section.Order,
		Title:       section.Title,
		Text:        section.Text,
		Disposition: DispositionProblematic,
		Issue:       &issue,
		Suggestion:  &suggestion,
	}
}

// IsProblematic reports whether the verdict flags a compliance issue
func (v ClauseVerdict) IsProblematic() bool {
	return v.Disposition == DispositionProblematic
}

// IssueText returns the issue or an empty string
func (v ClauseVerdict) IssueText() string {
	if v.Issue == nil {
		return ""
	}
	return *v.Issue
}

// SuggestionText returns the suggestion or an empty string
func (v ClauseVerdict) SuggestionText() string {
	if v.Suggestion == nil {
		return ""
	}
	return *v.Suggestion
}
