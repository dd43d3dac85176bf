package report

import (
	"encoding/json"
	"testing"

	"github.com/jonathan/contract-review/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleVerdicts(t *testing.T) []types.ClauseVerdict {
	t.Helper()

	section := func(order int, text string) types.ContractSection {
		return types.ContractSection{Order: order, Title: types.TitleClause, Text: text}
	}

	personal, err := types.NewVerdict(section(1, "Nom: Jean Dupont"), types.DispositionSkippedPersonalInfo)
	require.NoError(t, err)
	compliant, err := types.NewVerdict(section(3, "Le préavis est d'un mois."), types.DispositionCompliant)
	require.NoError(t, err)

	return []types.ClauseVerdict{
		personal,
		types.NewProblematicVerdict(section(2, "Période d'essai d'un an."), "Durée excessive", "Limiter à trois mois"),
		compliant,
		types.NewProblematicVerdict(section(5, "Aucun congé annuel."), "Congé annuel obligatoire", ""),
	}
}

func TestAggregate(t *testing.T) {
	r := Aggregate(sampleVerdicts(t))

	assert.Equal(t, 2, r.ProblematicCount)
	require.Len(t, r.Items, 2)
	assert.Equal(t, 2, r.Items[0].Index)
	assert.Equal(t, 5, r.Items[1].Index)
}

func TestAggregate_Idempotent(t *testing.T) {
	once := Aggregate(sampleVerdicts(t))
	twice := Aggregate(once.Items)

	assert.Equal(t, once, twice)
}

func TestAggregate_Empty(t *testing.T) {
	r := Aggregate(nil)

	assert.Equal(t, 0, r.ProblematicCount)
	assert.NotNil(t, r.Items)
	assert.Empty(t, r.Items)
}

func TestPayload(t *testing.T) {
	p := Payload(Aggregate(sampleVerdicts(t)))

	assert.Equal(t, "ok", p.Status)
	assert.Equal(t, 2, p.ProblematicCount)
	require.Len(t, p.Output, 2)
	assert.Equal(t, types.ReportItem{
		ClauseIndex: 2,
		ClauseTitle: "Clause",
		ClauseText:  "Période d'essai d'un an.",
		Issue:       "Durée excessive",
		Suggestion:  "Limiter à trois mois",
	}, p.Output[0])
	assert.Equal(t, "", p.Output[1].Suggestion)
}

func TestPayload_EmptyOutputEncodesAsArray(t *testing.T) {
	data, err := json.Marshal(Payload(Aggregate(nil)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","problematic_count":0,"output":[]}`, string(data))
}

func TestTally(t *testing.T) {
	counts := Tally(sampleVerdicts(t))

	assert.Equal(t, 2, counts[types.DispositionProblematic])
	assert.Equal(t, 1, counts[types.DispositionCompliant])
	assert.Equal(t, 1, counts[types.DispositionSkippedPersonalInfo])
	assert.Equal(t, 0, counts[types.DispositionSkippedTrivial])
}
