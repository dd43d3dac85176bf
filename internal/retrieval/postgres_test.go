package retrieval

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jonathan/contract-review/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresSearcher_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE EXTENSION IF NOT EXISTS vector").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`(?s)CREATE TABLE IF NOT EXISTS legal_sections.*text_hash TEXT NOT NULL UNIQUE`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	s := NewPostgresSearcher(db, &fakeEmbedder{})
	require.NoError(t, s.EnsureSchema(context.Background(), 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSearcher_Index(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	entries := corpus()[:2]

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO legal_sections .* ON CONFLICT \(text_hash\) DO NOTHING`)
	prep.ExpectExec().
		WithArgs(sqlmock.AnyArg(), entries[0].Title, entries[0].Text, TextHash(entries[0].Text), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs(sqlmock.AnyArg(), entries[1].Title, entries[1].Text, TextHash(entries[1].Text), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	s := NewPostgresSearcher(db, &fakeEmbedder{})
	n, err := s.Index(context.Background(), entries)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSearcher_IndexLongPassage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	long := strings.Repeat("Le salarié a droit à un congé annuel payé dans les conditions prévues. ", 150)
	require.Greater(t, len(long), 8192)
	entries := []types.ReferenceEntry{{Title: "LIVRE II. CONDITIONS DE TRAVAIL", Text: long}}

	hash := TextHash(long)
	assert.Len(t, hash, 64)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO legal_sections")
	prep.ExpectExec().
		WithArgs(sqlmock.AnyArg(), entries[0].Title, long, hash, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s := NewPostgresSearcher(db, &fakeEmbedder{})
	n, err := s.Index(context.Background(), entries)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTextHash(t *testing.T) {
	a := TextHash("La période d'essai ne peut excéder trois mois.")
	assert.Equal(t, a, TextHash("La période d'essai ne peut excéder trois mois."))
	assert.NotEqual(t, a, TextHash("La période d'essai ne peut excéder deux mois."))
}

func TestPostgresSearcher_IndexEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresSearcher(db, &fakeEmbedder{})
	n, err := s.Index(context.Background(), []types.ReferenceEntry{})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSearcher_Search(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"title", "text", "similarity"}).
		AddRow("3. CONGÉS", "Tout salarié a droit à un congé annuel payé.", 0.83)

	mock.ExpectQuery("SELECT title, text").
		WithArgs(sqlmock.AnyArg(), 1).
		WillReturnRows(rows)

	s := NewPostgresSearcher(db, &fakeEmbedder{})
	hits, err := s.Search(context.Background(), "congé annuel", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "3. CONGÉS", hits[0].Entry.Title)
	assert.InDelta(t, 0.83, hits[0].Score, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSearcher_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM legal_sections`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	s := NewPostgresSearcher(db, &fakeEmbedder{})
	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}
