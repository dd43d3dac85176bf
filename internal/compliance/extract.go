package compliance

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Strategy names the extraction step that produced a JSON value
type Strategy string

// Extraction strategies, tried in order
const (
	StrategyWholeText   Strategy = "whole_text"
	StrategyOuterBraces Strategy = "outer_braces"
	StrategyBraceScan   Strategy = "brace_scan"
	StrategyNone        Strategy = "none"
)

// Extraction is the tagged result of ExtractJSON
type Extraction struct {
	Value    any
	Strategy Strategy
}

// OK reports whether any strategy produced a value
func (e Extraction) OK() bool {
	return e.Strategy != StrategyNone
}

// Object returns the value as a JSON object, if it is one
func (e Extraction) Object() (map[string]any, bool) {
	obj, ok := e.Value.(map[string]any)
	return obj, ok
}

var braceRe = regexp.MustCompile(`(?s)\{.*?\}`)

// ExtractJSON finds the first JSON value in free-form model output.
// It tries the whole text, then the span from the first '{' to the last '}',
// then every shortest brace-delimited substring in order.
func ExtractJSON(text string) Extraction {
	if v, ok := decode(text); ok {
		return Extraction{Value: v, Strategy: StrategyWholeText}
	}

	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first >= 0 && last > first {
		if v, ok := decode(text[first : last+1]); ok {
			return Extraction{Value: v, Strategy: StrategyOuterBraces}
		}
	}

	for _, candidate := range braceRe.FindAllString(text, -1) {
		if v, ok := decode(candidate); ok {
			return Extraction{Value: v, Strategy: StrategyBraceScan}
		}
	}

	return Extraction{Strategy: StrategyNone}
}

func decode(s string) (any, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}
