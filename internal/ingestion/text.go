// Package ingestion prepares raw contract text for segmentation.
package ingestion

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// ErrEmptyContract is returned when a contract contains no usable text
var ErrEmptyContract = errors.New("contract text is empty")

// warningGlyph is left behind by the PDF extractor on some templates
const warningGlyph = "⚠"

// NormalizeContractText cleans extracted contract text while preserving line structure.
// Line endings are normalized, each line is trimmed and blank lines are dropped.
func NormalizeContractText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(strings.ReplaceAll(line, warningGlyph, ""))
		if line == "" {
			continue
		}
		cleaned = append(cleaned, line)
	}

	return strings.Join(cleaned, "\n")
}

// ReadContractFile reads and normalizes a contract text file.
// Missing, unreadable or empty files are reported as errors.
func ReadContractFile(path string) (string, *Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("contract file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read contract file: %w", err)
	}

	text := NormalizeContractText(string(content))
	if text == "" {
		return "", nil, fmt.Errorf("%s: %w", path, ErrEmptyContract)
	}

	return text, NewMetadata(text, path), nil
}

// IsUpperText reports whether s has at least one cased letter and no lowercase letters.
// Digits, punctuation and spaces are ignored.
func IsUpperText(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

// CountWords returns the number of whitespace-separated words in s
func CountWords(s string) int {
	return len(strings.Fields(s))
}
