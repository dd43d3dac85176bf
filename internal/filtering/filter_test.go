package filtering

import (
	"testing"

	"github.com/jonathan/contract-review/internal/types"
	"github.com/stretchr/testify/assert"
)

func clause(text string) types.ContractSection {
	return types.ContractSection{Order: 1, Title: types.TitleClause, Text: text}
}

func TestClassify(t *testing.T) {
	f := NewDefault()

	tests := []struct {
		name     string
		text     string
		expected Decision
	}{
		{"identity block", "Nom: Jean Dupont, CIN: AB123456", SkipPersonalInfo},
		{"identity with leave keyword", "Nom: Jean Dupont, le salarié bénéficie d'un congé annuel de 18 jours", Proceed},
		{"heading", "HORAIRES ET RÉMUNÉRATION", SkipTrivial},
		{"notice period rule", "Le salarié s'engage à respecter un préavis de deux mois.", Proceed},
		{"contact details", "Téléphone : 05 22 34 56 78 Email : rh@atlas.ma", SkipPersonalInfo},
		{"unknown short caps", "DISPOSITIONS FINALES", SkipTrivial},
		{"empty", "   ", SkipTrivial},
		{"long caps rule", "LE SALARIE NE POURRA EXERCER AUCUNE AUTRE ACTIVITE PROFESSIONNELLE", Proceed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, f.Classify(clause(tt.text)))
		})
	}
}

func TestIsPersonalInfoOnly_KeywordOverride(t *testing.T) {
	f := NewDefault()

	// ratio is high but the salary keyword keeps it checkable
	assert.False(t, f.IsPersonalInfoOnly("Nom: Ali CIN: CD123456 salaire"))
	assert.True(t, f.IsPersonalInfoOnly("Nom: Ali CIN: CD123456"))
}

func TestIsPersonalInfoOnly_NoMatch(t *testing.T) {
	f := NewDefault()
	assert.False(t, f.IsPersonalInfoOnly("La période d'essai est de trois mois."))
	assert.False(t, f.IsPersonalInfoOnly(""))
}

func TestIsPersonalInfoOnly_CustomRatio(t *testing.T) {
	strict := New(Thresholds{PersonalInfoRatio: 0.9})
	assert.False(t, strict.IsPersonalInfoOnly("Nom: Jean Dupont, CIN: AB123456"))
}

func TestIsTrivial_CustomWordLimit(t *testing.T) {
	f := New(Thresholds{TrivialWordLimit: 2})
	assert.False(t, f.IsTrivial("HORAIRES ET RÉMUNÉRATION"))
	assert.True(t, f.IsTrivial("AVANTAGES SOCIAUX"))
}

func TestNew_FillsDefaults(t *testing.T) {
	f := New(Thresholds{})
	th := f.Thresholds()
	assert.Equal(t, DefaultPersonalInfoRatio, th.PersonalInfoRatio)
	assert.Equal(t, DefaultTrivialWordLimit, th.TrivialWordLimit)
	assert.Equal(t, DefaultContractKeywords(), th.ContractKeywords)
}

func TestDecision_Disposition(t *testing.T) {
	d, ok := SkipPersonalInfo.Disposition()
	assert.True(t, ok)
	assert.Equal(t, types.DispositionSkippedPersonalInfo, d)

	d, ok = SkipTrivial.Disposition()
	assert.True(t, ok)
	assert.Equal(t, types.DispositionSkippedTrivial, d)

	_, ok = Proceed.Disposition()
	assert.False(t, ok)
	assert.Equal(t, "proceed", Proceed.String())
}

func TestTrivialReason(t *testing.T) {
	f := NewDefault()

	reason, ok := f.TrivialReason("")
	assert.True(t, ok)
	assert.Equal(t, "empty", reason)

	reason, ok = f.TrivialReason("CONGÉS PAYÉS")
	assert.True(t, ok)
	assert.Equal(t, "header_keyword", reason)

	reason, ok = f.TrivialReason("DISPOSITIONS FINALES")
	assert.True(t, ok)
	assert.Equal(t, "short_caps", reason)

	_, ok = f.TrivialReason("Le contrat prend effet le 1er mars.")
	assert.False(t, ok)
}

func TestCountPersonalMarkers_UnicodeBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{"identity block", "Nom: Jean Dupont, CIN: AB123456", 2},
		{"first name label", "Prénom : Amine Benali", 0},
		{"fax word prefix", "Télécopie du service interne", 0},
		{"abbreviated phone", "Tél. 0522345678", 2},
		{"adjacent markers share a separator", "CIN Tél", 2},
		{"accented prefix", "éCD12345", 0},
		{"reference number", "Réf CD12345", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, countPersonalMarkers(tt.text))
		})
	}
}

func TestIsPersonalInfoOnly_AccentedWords(t *testing.T) {
	f := NewDefault()
	assert.False(t, f.IsPersonalInfoOnly("Prénom : Amine Benali"))
	assert.False(t, f.IsPersonalInfoOnly("Télécopie du service interne"))
	assert.True(t, f.IsPersonalInfoOnly("Nom: Jean Dupont, CIN: AB123456"))
}
