package observability

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/contract-review/internal/retrieval"
	"github.com/jonathan/contract-review/internal/types"
)

func TestPrintSections(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSections([]types.ContractSection{
		{Order: 0, Title: "CONTRAT DE TRAVAIL", Text: "CONTRAT DE TRAVAIL"},
		{Order: 1, Title: types.TitleClause, Text: "Article 1 : La période d'essai est fixée à trois mois renouvelable une fois."},
	})
	output := buf.String()

	assert.Contains(t, output, "CONTRACT SECTIONS")
	assert.Contains(t, output, "2 sections, 1 clauses")
	assert.Contains(t, output, "§   1")
}

func TestPrintSections_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSections(nil)
	assert.Empty(t, buf.String())
}

func TestPrintVerdicts(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintVerdicts([]types.ClauseVerdict{
		{Index: 1, Disposition: types.DispositionSkippedPersonalInfo},
		{Index: 2, Disposition: types.DispositionCompliant},
		{Index: 3, Disposition: types.DispositionCompliant},
	}, []int{4, 7})
	output := buf.String()

	assert.Contains(t, output, "CLAUSE DISPOSITIONS")
	assert.Contains(t, output, "compliant")
	assert.Contains(t, output, "skipped_personal_info")
	assert.Contains(t, output, "clauses 4, 7")
}

func TestPrintReferences(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	refs := make([]types.ReferenceMatch, 7)
	for i := range refs {
		refs[i] = types.ReferenceMatch{Title: "13. PÉRIODE D'ESSAI", Text: "La période d'essai ne peut excéder trois mois."}
	}
	p.PrintReferences(refs)

	assert.Contains(t, buf.String(), "LEGAL REFERENCES")
	assert.Contains(t, buf.String(), "... and 2 more passages")
}

func TestPrintHits(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintHits("préavis", []retrieval.Hit{{Entry: types.ReferenceEntry{Title: "43. PRÉAVIS", Text: "Le délai de préavis"}, Score: 0.8123}})
	assert.Contains(t, buf.String(), "0.812")
	assert.Contains(t, buf.String(), "43. PRÉAVIS")

	buf.Reset()
	p.PrintHits("rien", nil)
	assert.Contains(t, buf.String(), "No passages found")
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintReport(types.ReportPayload{
		Status:           types.ReportStatusOK,
		ProblematicCount: 1,
		Output: []types.ReportItem{{
			ClauseIndex: 2,
			ClauseText:  "Article 1 : La période d'essai est fixée à douze mois.",
			Issue:       "Durée supérieure au maximum légal",
			Suggestion:  "Limiter à trois mois",
		}},
	})
	output := buf.String()

	assert.Contains(t, output, "COMPLIANCE REPORT")
	assert.Contains(t, output, "Problematic clauses: 1")
	assert.Contains(t, output, "✗ Durée supérieure au maximum légal")
	assert.Contains(t, output, "→ Limiter à trois mois")
}

func TestPrintBox_LinesHaveEqualWidth(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", "court\n"+strings.Repeat("é", 200))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	for _, line := range lines {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), line)
	}
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "abc", shorten("abc", 10))
	got := shorten(strings.Repeat("é", 20), 10)
	assert.Equal(t, 10, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.True(t, utf8.ValidString(got))
}
