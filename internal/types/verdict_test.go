package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVerdict_RejectsProblematic(t *testing.T) {
	section := ContractSection{Order: 3, Title: TitleClause, Text: "Article 3: durée"}

	_, err := NewVerdict(section, DispositionProblematic)
	assert.Error(t, err)
}

func TestNewVerdict_NoIssueFields(t *testing.T) {
	section := ContractSection{Order: 3, Title: TitleClause, Text: "Article 3: durée"}

	v, err := NewVerdict(section, DispositionCompliant)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Index)
	assert.Nil(t, v.Issue)
	assert.Nil(t, v.Suggestion)
	assert.False(t, v.IsProblematic())

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "issue")
}

func TestNewProblematicVerdict_CarriesFields(t *testing.T) {
	section := ContractSection{Order: 7, Title: TitleClause, Text: "Clause de non-concurrence"}

	v := NewProblematicVerdict(section, "Durée illimitée", "")
	assert.True(t, v.IsProblematic())
	assert.Equal(t, 7, v.Index)
	assert.Equal(t, "Durée illimitée", v.IssueText())
	require.NotNil(t, v.Suggestion)
	assert.Equal(t, "", v.SuggestionText())
}

func TestContractSection_JSONKeysHeading(t *testing.T) {
	data, err := json.Marshal(ContractSection{Order: 0, Title: "EMPLOYEUR", Text: "EMPLOYEUR"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"order":0,"section_title":"EMPLOYEUR","section_text":"EMPLOYEUR"}`, string(data))
}
