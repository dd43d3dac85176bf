// Package compliance asks the language model whether a contract clause complies
// with Moroccan labor law and interprets its JSON answer.
package compliance

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/contract-review/internal/llm"
	"github.com/jonathan/contract-review/internal/retry"
)

// Advertised length limits of the model's answer, in characters
const (
	DefaultIssueLimit      = 120
	DefaultSuggestionLimit = 150
)

// Kind is the classification outcome of one clause
type Kind int

// Outcome kinds
const (
	Unresolved Kind = iota
	Compliant
	Problematic
)

func (k Kind) String() string {
	switch k {
	case Compliant:
		return "compliant"
	case Problematic:
		return "problematic"
	default:
		return "unresolved"
	}
}

// Outcome is the result of classifying one clause.
// Issue and Suggestion are set only when Kind is Problematic.
type Outcome struct {
	Kind       Kind
	Issue      string
	Suggestion string
	// Raw is the last model answer, empty when no call succeeded
	Raw      string
	Attempts int
	Strategy Strategy
	// Err explains an Unresolved outcome
	Err error
}

// Options configures a Classifier
type Options struct {
	Retry retry.Policy
	// IssueLimit and SuggestionLimit truncate the answer fields; zero disables truncation.
	IssueLimit      int
	SuggestionLimit int
}

// DefaultOptions returns the default retry policy and answer limits
func DefaultOptions() Options {
	return Options{
		Retry:           retry.DefaultPolicy(),
		IssueLimit:      DefaultIssueLimit,
		SuggestionLimit: DefaultSuggestionLimit,
	}
}

// Classifier classifies single clauses through an llm.Client
type Classifier struct {
	client llm.Client
	opts   Options
}

// New creates a Classifier
func New(client llm.Client, opts Options) *Classifier {
	return &Classifier{client: client, opts: opts}
}

// Classify asks the model about one clause. It never returns an error:
// every failure is reported as an Unresolved outcome with Err set.
func (c *Classifier) Classify(ctx context.Context, clauseText string, clauseIndex int) Outcome {
	prompt, err := BuildPrompt(clauseText, clauseIndex, limitOrDefault(c.opts.IssueLimit, DefaultIssueLimit),
		limitOrDefault(c.opts.SuggestionLimit, DefaultSuggestionLimit))
	if err != nil {
		return Outcome{Kind: Unresolved, Strategy: StrategyNone, Err: err}
	}

	var raw string
	attempts, err := c.opts.Retry.Do(ctx, func(ctx context.Context, _ int) error {
		text, err := c.client.Generate(ctx, prompt)
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return llm.ErrEmptyResponse
		}
		raw = text
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Outcome{Kind: Unresolved, Attempts: attempts, Strategy: StrategyNone, Err: ctxErr}
		}
		return Outcome{
			Kind:     Unresolved,
			Attempts: attempts,
			Strategy: StrategyNone,
			Err:      &APICallError{Message: fmt.Sprintf("no model response for clause %d", clauseIndex), Attempts: attempts, Cause: err},
		}
	}

	out := c.Interpret(raw)
	out.Attempts = attempts
	return out
}

// Interpret turns a raw model answer into an Outcome
func (c *Classifier) Interpret(raw string) Outcome {
	ex := ExtractJSON(raw)
	if !ex.OK() {
		return Outcome{Kind: Unresolved, Raw: raw, Strategy: StrategyNone,
			Err: &ParseError{Message: "no JSON object in model answer", Raw: raw}}
	}

	obj, ok := ex.Object()
	if !ok {
		return Outcome{Kind: Unresolved, Raw: raw, Strategy: ex.Strategy,
			Err: &ParseError{Message: fmt.Sprintf("model answer is %T, not an object", ex.Value), Raw: raw}}
	}

	if compliant, ok := obj["compliant"].(bool); ok && compliant {
		return Outcome{Kind: Compliant, Raw: raw, Strategy: ex.Strategy}
	}

	issue, ok := obj["issue"].(string)
	if !ok || strings.TrimSpace(issue) == "" {
		return Outcome{Kind: Unresolved, Raw: raw, Strategy: ex.Strategy,
			Err: &ParseError{Message: "answer has neither compliant=true nor a non-empty issue", Raw: raw}}
	}

	var suggestion string
	switch v := obj["suggestion"].(type) {
	case nil:
	case string:
		suggestion = v
	default:
		return Outcome{Kind: Unresolved, Raw: raw, Strategy: ex.Strategy,
			Err: &ParseError{Message: fmt.Sprintf("suggestion is %T, not a string", v), Raw: raw}}
	}

	return Outcome{
		Kind:       Problematic,
		Issue:      Truncate(strings.TrimSpace(issue), c.opts.IssueLimit),
		Suggestion: Truncate(strings.TrimSpace(suggestion), c.opts.SuggestionLimit),
		Raw:        raw,
		Strategy:   ex.Strategy,
	}
}

// Truncate cuts s to at most limit runes. A limit of zero or less disables truncation.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

func limitOrDefault(limit, def int) int {
	if limit > 0 {
		return limit
	}
	return def
}
