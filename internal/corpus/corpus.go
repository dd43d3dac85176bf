// Package corpus prepares the legal reference corpus (the Moroccan labor code)
// from extracted text into titled sections.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/jonathan/contract-review/internal/types"
)

var (
	pageMarkerRe  = regexp.MustCompile(`(?i)Page\s+\d+`)
	hyphenBreakRe = regexp.MustCompile(`-\n\s*`)
	blankRunRe    = regexp.MustCompile(`\n{2,}`)

	// a major heading is a numbered all-caps line such as "12. DURÉE DU TRAVAIL"
	headingRe = regexp.MustCompile(`(?m)^(\d+\.\s+[A-ZÉÈÀÙÂÊÎÔÛÄËÏÖÜÇ'\- ]+)`)

	symbolRe     = regexp.MustCompile(`[^\p{L}\p{N}_\s\p{Z}.,;:!?()\-']`)
	whitespaceRe = regexp.MustCompile(`[\s\p{Z}]+`)
)

// CleanLegalText removes page markers and hyphenated line breaks and squeezes blank lines
func CleanLegalText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = pageMarkerRe.ReplaceAllString(text, " ")
	text = hyphenBreakRe.ReplaceAllString(text, "")
	text = blankRunRe.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// CleanBody replaces symbols other than letters, digits and basic punctuation
// with spaces and collapses whitespace
func CleanBody(text string) string {
	text = symbolRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// SplitSections splits cleaned corpus text on numbered major headings.
// Each entry's text runs from its heading to the next one. Text before the
// first heading is dropped.
func SplitSections(text string) []types.ReferenceEntry {
	locs := headingRe.FindAllStringSubmatchIndex(text, -1)
	entries := make([]types.ReferenceEntry, 0, len(locs))

	for i, loc := range locs {
		start := loc[0]
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}

		title := strings.TrimSpace(text[loc[2]:loc[3]])
		body := CleanBody(strings.TrimSpace(text[start:end]))
		entries = append(entries, types.ReferenceEntry{Title: title, Text: body})
	}
	return entries
}

// LoadEntries reads a JSON array of {title, text} entries
func LoadEntries(path string) ([]types.ReferenceEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus %s: %w", path, err)
	}

	var entries []types.ReferenceEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse corpus %s: %w", path, err)
	}

	kept := entries[:0]
	for _, e := range entries {
		if strings.TrimSpace(e.Text) != "" {
			kept = append(kept, e)
		}
	}
	return kept, nil
}
