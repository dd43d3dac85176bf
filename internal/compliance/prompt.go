package compliance

import (
	"strconv"
	"strings"

	"github.com/jonathan/contract-review/internal/prompts"
)

const (
	promptFile = "compliance.json"
	promptKey  = "classify-clause"
)

var clauseEscaper = strings.NewReplacer(`"`, `\"`, "\r\n", " ", "\n", " ", "\r", " ")

// EscapeClauseText prepares clause text for embedding in the quoted prompt block
func EscapeClauseText(text string) string {
	return strings.TrimSpace(clauseEscaper.Replace(text))
}

// BuildPrompt renders the French JSON-only classification prompt for one clause
func BuildPrompt(clauseText string, clauseIndex, issueLimit, suggestionLimit int) (string, error) {
	return prompts.Render(promptFile, promptKey, map[string]string{
		"ClauseIndex":     strconv.Itoa(clauseIndex),
		"ClauseText":      EscapeClauseText(clauseText),
		"IssueLimit":      strconv.Itoa(issueLimit),
		"SuggestionLimit": strconv.Itoa(suggestionLimit),
	})
}
