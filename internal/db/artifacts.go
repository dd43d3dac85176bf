package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/contract-review/internal/types"
)

// SaveArtifact stores a JSON artifact for a review, replacing any previous version
func (db *DB) SaveArtifact(ctx context.Context, reviewID string, name types.ArtifactName, content any) error {
	id, err := uuid.Parse(reviewID)
	if err != nil {
		return fmt.Errorf("invalid review id %q: %w", reviewID, err)
	}

	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO review_artifacts (review_id, name, content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (review_id, name) DO UPDATE SET content = $3, created_at = NOW()`,
		id, string(name), jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", name, err)
	}
	return nil
}

// GetArtifact retrieves a JSON artifact. It returns nil, nil when none exists.
func (db *DB) GetArtifact(ctx context.Context, reviewID uuid.UUID, name types.ArtifactName) ([]byte, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM review_artifacts WHERE review_id = $1 AND name = $2`,
		reviewID, string(name),
	).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artifact %s: %w", name, err)
	}
	return content, nil
}

// ListArtifacts lists the artifacts stored for a review, oldest first
func (db *DB) ListArtifacts(ctx context.Context, reviewID uuid.UUID) ([]ArtifactSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT name, created_at FROM review_artifacts WHERE review_id = $1 ORDER BY created_at ASC`,
		reviewID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	summaries := []ArtifactSummary{}
	for rows.Next() {
		var a ArtifactSummary
		if err := rows.Scan(&a.Name, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		summaries = append(summaries, a)
	}
	return summaries, rows.Err()
}
