package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/contract-review/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const labor = `Préambule du code.
1. DISPOSITIONS GÉNÉRALES
Le présent code s'applique aux per-
  sonnes liées par un contrat de travail.
Page 3
2. CONTRAT DE TRAVAIL
La période d'essai ⚠ ne peut excéder trois mois.`

func TestCleanLegalText(t *testing.T) {
	in := "Article 1\r\nPage 12\n\n\nLes salariés sont pro-\n   tégés.\n"

	out := CleanLegalText(in)

	assert.Equal(t, "Article 1\n \nLes salariés sont protégés.", out)
}

func TestCleanLegalText_PageMarkerCaseInsensitive(t *testing.T) {
	assert.Equal(t, "a   b", CleanLegalText("a PAGE 4 b"))
}

func TestCleanBody(t *testing.T) {
	assert.Equal(t, "Durée : 44 heures (maximum) - voir l'article 184.",
		CleanBody("Durée ⚠ :\n 44 heures   (maximum) — - voir l'article 184."))
}

func TestSplitSections(t *testing.T) {
	entries := SplitSections(CleanLegalText(labor))

	require.Len(t, entries, 2)
	assert.Equal(t, "1. DISPOSITIONS GÉNÉRALES", entries[0].Title)
	assert.Equal(t, "1. DISPOSITIONS GÉNÉRALES Le présent code s'applique aux personnes liées par un contrat de travail.", entries[0].Text)
	assert.Equal(t, "2. CONTRAT DE TRAVAIL", entries[1].Title)
	assert.Equal(t, "2. CONTRAT DE TRAVAIL La période d'essai ne peut excéder trois mois.", entries[1].Text)
}

func TestSplitSections_NoHeadings(t *testing.T) {
	entries := SplitSections("texte sans titre numéroté")
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestLoadEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sections.json")
	data := `[{"title":"1. A","text":"premier"},{"title":"2. B","text":"  "},{"title":"3. C","text":"troisième"}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	entries, err := LoadEntries(path)
	require.NoError(t, err)
	assert.Equal(t, []types.ReferenceEntry{
		{Title: "1. A", Text: "premier"},
		{Title: "3. C", Text: "troisième"},
	}, entries)
}

func TestLoadEntries_Errors(t *testing.T) {
	_, err := LoadEntries(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, err = LoadEntries(path)
	assert.Error(t, err)
}
