package retrieval

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/contract-review/internal/llm"
	"github.com/jonathan/contract-review/internal/types"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// DefaultDimensions is the vector size of the default embedding model
const DefaultDimensions = 768

// PostgresSearcher ranks passages stored in a pgvector table by cosine distance
type PostgresSearcher struct {
	db       *sql.DB
	embedder llm.Embedder
}

// OpenPostgresSearcher connects to the vector database at url
func OpenPostgresSearcher(url string, embedder llm.Embedder) (*PostgresSearcher, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector database: %w", err)
	}
	return NewPostgresSearcher(db, embedder), nil
}

// NewPostgresSearcher wraps an open database handle
func NewPostgresSearcher(db *sql.DB, embedder llm.Embedder) *PostgresSearcher {
	return &PostgresSearcher{db: db, embedder: embedder}
}

// Close closes the database handle
func (p *PostgresSearcher) Close() error {
	return p.db.Close()
}

// Ping checks connectivity
func (p *PostgresSearcher) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// EnsureSchema creates the vector extension and the legal_sections table
func (p *PostgresSearcher) EnsureSchema(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}

	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS legal_sections (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			text TEXT NOT NULL,
			text_hash TEXT NOT NULL UNIQUE,
			embedding vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`, dimensions),
	}
	for _, stmt := range statements {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// Index embeds entries and stores them in one transaction. Passages already
// stored with the same text are left untouched. It returns the number inserted.
func (p *PostgresSearcher) Index(ctx context.Context, entries []types.ReferenceEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}
	vectors, err := embedAll(ctx, p.embedder, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed corpus: %w", err)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO legal_sections (id, title, text, text_hash, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (text_hash) DO NOTHING
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now()
	inserted := 0
	for i, e := range entries {
		res, err := stmt.ExecContext(ctx, uuid.New(), e.Title, e.Text, TextHash(e.Text), pgvector.NewVector(vectors[i]), now)
		if err != nil {
			return 0, fmt.Errorf("failed to insert section %q: %w", e.Title, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// TextHash is the dedup key stored next to a passage. Long passages exceed
// the btree row limit, so uniqueness is enforced on the digest.
func TextHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Search embeds query and returns the k nearest stored passages
func (p *PostgresSearcher) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, nil
	}

	vecs, err := p.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("expected 1 query embedding, got %d", len(vecs))
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT title, text, 1 - (embedding <=> $1) AS similarity
		FROM legal_sections
		ORDER BY embedding <=> $1
		LIMIT $2
	`, pgvector.NewVector(vecs[0]), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.Entry.Title, &h.Entry.Text, &h.Score); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return hits, nil
}

// Count returns the number of stored passages
func (p *PostgresSearcher) Count(ctx context.Context) (int, error) {
	var n int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM legal_sections`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
