// Package filtering decides which contract clauses carry legally checkable content.
package filtering

import (
	"regexp"
	"strings"

	"github.com/jonathan/contract-review/internal/ingestion"
	"github.com/jonathan/contract-review/internal/types"
)

// Decision is the outcome of filtering a clause
type Decision int

// Filter decisions
const (
	Proceed Decision = iota
	SkipPersonalInfo
	SkipTrivial
)

func (d Decision) String() string {
	switch d {
	case Proceed:
		return "proceed"
	case SkipPersonalInfo:
		return "skip_personal_info"
	case SkipTrivial:
		return "skip_trivial"
	default:
		return "unknown"
	}
}

// Disposition maps a skip decision to the verdict disposition recorded for the clause.
// ok is false for Proceed.
func (d Decision) Disposition() (types.Disposition, bool) {
	switch d {
	case SkipPersonalInfo:
		return types.DispositionSkippedPersonalInfo, true
	case SkipTrivial:
		return types.DispositionSkippedTrivial, true
	default:
		return "", false
	}
}

// RE2 word boundaries only know ASCII, so accented letters count as
// separators for \b. These match a Unicode letter/digit boundary instead.
const (
	wordStart = `(?:^|[^\p{L}\p{N}_])`
	wordEnd   = `(?:[^\p{L}\p{N}_]|$)`
)

// personalPatterns match identifying information in French contracts. Each
// pattern captures the matched marker in its single group.
var personalPatterns = []string{
	wordStart + `(Nom\s*:)`,
	wordStart + `(CIN)` + wordEnd,
	wordStart + `(N[o°]?\s?:\s?[A-Z0-9-]+)`,
	wordStart + `(Adresse\s*:)`,
	wordStart + `(Téléphone)` + wordEnd,
	wordStart + `(Tél)` + wordEnd,
	wordStart + `(Mobile)` + wordEnd,
	wordStart + `(Fax)` + wordEnd,
	wordStart + `(Email)` + wordEnd,
	`(@\w+\.\w+)`,
	wordStart + `(\d{2}[ .-]?\d{2}[ .-]?\d{2}[ .-]?\d{2}[ .-]?\d{2})` + wordEnd,
	wordStart + `(CD\d{4,})` + wordEnd,
}

var (
	personalRe = regexp.MustCompile(`(?i)` + strings.Join(personalPatterns, "|"))
	// tokenRe matches word-like tokens of two or more letters or digits
	tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)
)

// Filter classifies clauses before they reach the compliance classifier
type Filter struct {
	thresholds Thresholds
}

// New creates a Filter. Zero-valued thresholds fall back to the defaults.
func New(thresholds Thresholds) *Filter {
	return &Filter{thresholds: thresholds.withDefaults()}
}

// NewDefault creates a Filter with the default thresholds
func NewDefault() *Filter {
	return New(DefaultThresholds())
}

// Thresholds returns the effective thresholds
func (f *Filter) Thresholds() Thresholds {
	return f.thresholds
}

// Classify decides whether a clause proceeds to classification.
// The caller only passes sections titled types.TitleClause.
func (f *Filter) Classify(section types.ContractSection) Decision {
	text := strings.TrimSpace(section.Text)
	if f.IsPersonalInfoOnly(text) {
		return SkipPersonalInfo
	}
	if f.IsTrivial(text) {
		return SkipTrivial
	}
	return Proceed
}

// IsPersonalInfoOnly reports whether text is predominantly identifying information
func (f *Filter) IsPersonalInfoOnly(text string) bool {
	if text == "" {
		return false
	}

	found := countPersonalMarkers(text)
	if found == 0 {
		return false
	}

	tokens := tokenRe.FindAllString(text, -1)
	if len(tokens) == 0 {
		return true
	}

	ratio := float64(found) / float64(len(tokens))
	if ratio < f.thresholds.PersonalInfoRatio {
		return false
	}

	return !f.hasContractKeyword(text)
}

// IsTrivial reports whether text is a short all-caps heading mis-segmented as a clause
func (f *Filter) IsTrivial(text string) bool {
	_, trivial := f.TrivialReason(text)
	return trivial
}

// TrivialReason is IsTrivial with the matching rule: "empty", "header_keyword" or "short_caps".
func (f *Filter) TrivialReason(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "empty", true
	}

	words := strings.Fields(text)
	if len(words) > f.thresholds.TrivialWordLimit || !ingestion.IsUpperText(text) {
		return "", false
	}
	if f.hasHeaderKeyword(words) {
		return "header_keyword", true
	}
	return "short_caps", true
}

func (f *Filter) hasContractKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range f.thresholds.ContractKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func (f *Filter) hasHeaderKeyword(words []string) bool {
	for _, w := range words {
		upper := strings.ToUpper(w)
		for _, kw := range f.thresholds.HeaderKeywords {
			if upper == kw {
				return true
			}
		}
	}
	return false
}

// countPersonalMarkers counts non-overlapping personal markers. Scanning
// resumes right after each captured marker so that a boundary character
// consumed by wordEnd can still open the next match.
func countPersonalMarkers(text string) int {
	n := 0
	for pos := 0; pos < len(text); {
		loc := personalRe.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		end := -1
		for g := 1; 2*g+1 < len(loc); g++ {
			if loc[2*g] >= 0 {
				end = loc[2*g+1]
				break
			}
		}
		if end <= 0 {
			break
		}
		n++
		pos += end
	}
	return n
}
