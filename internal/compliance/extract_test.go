package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		strategy Strategy
	}{
		{"whole text", `{"compliant": true}`, StrategyWholeText},
		{"preamble and trailer", `Voici: {"compliant": true} merci`, StrategyOuterBraces},
		{"fenced", "```json\n{\"issue\": \"x\", \"suggestion\": \"\"}\n```", StrategyOuterBraces},
		{"two objects", `premier {"compliant": true} puis {"issue": "y"}`, StrategyBraceScan},
		{"garbage before valid", `{pas du json} {"compliant": true}`, StrategyBraceScan},
		{"no json", "Je ne peux pas répondre.", StrategyNone},
		{"empty", "", StrategyNone},
		{"reversed braces", "} rien {", StrategyNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := ExtractJSON(tt.input)
			assert.Equal(t, tt.strategy, ex.Strategy)
			assert.Equal(t, tt.strategy != StrategyNone, ex.OK())
		})
	}
}

func TestExtractJSON_FirstBraceScanMatchWins(t *testing.T) {
	ex := ExtractJSON(`a {"compliant": true} b {"issue": "y"}`)
	require.True(t, ex.OK())

	obj, ok := ex.Object()
	require.True(t, ok)
	assert.Equal(t, true, obj["compliant"])
}

func TestExtractJSON_NonObject(t *testing.T) {
	ex := ExtractJSON(`["a", "b"]`)
	require.True(t, ex.OK())
	_, ok := ex.Object()
	assert.False(t, ok)
}
