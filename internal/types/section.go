// Package types provides type definitions for structured data used throughout the contract-review system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Section title tags assigned by the segmenter
const (
	// TitleClause marks a section long enough to be checked for compliance
	TitleClause = "Clause"
	// TitleIntroduction marks body text that appears before any heading
	TitleIntroduction = "Introduction"
)

// ContractSection is one titled block of a segmented contract.
// Order is the position of the section in the contract and never changes.
type ContractSection struct {
	Order int    `json:"order"`
	Title string `json:"section_title"`
	Text  string `json:"section_text"`
}

// IsClause reports whether the section is eligible for compliance checking
func (s ContractSection) IsClause() bool {
	return s.Title == TitleClause
}

// ContractSections is the ordered output of segmentation
type ContractSections []ContractSection

// Clauses returns the sections titled TitleClause, in order
func (ss ContractSections) Clauses() ContractSections {
	out := make(ContractSections, 0, len(ss))
	for _, s := range ss {
		if s.IsClause() {
			out = append(out, s)
		}
	}
	return out
}
