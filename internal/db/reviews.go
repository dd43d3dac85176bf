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

const defaultListLimit = 50

const reviewColumns = `id, file_name, header, status, problematic_count, result, COALESCE(error, ''), created_at, completed_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanReview(row scanner) (*Review, error) {
	var r Review
	var result []byte
	if err := row.Scan(&r.ID, &r.FileName, &r.Header, &r.Status, &r.ProblematicCount, &result, &r.Error, &r.CreatedAt, &r.CompletedAt); err != nil {
		return nil, err
	}
	if len(result) > 0 {
		r.Result = json.RawMessage(result)
	}
	return &r, nil
}

// CreateReview inserts a review with the given status and returns its ID
func (db *DB) CreateReview(ctx context.Context, fileName, header, status string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO reviews (file_name, header, status)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		fileName, header, status,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create review: %w", err)
	}
	return id, nil
}

// StartReview marks a queued review as running
func (db *DB) StartReview(ctx context.Context, id uuid.UUID) error {
	return db.setStatus(ctx, id, StatusRunning)
}

func (db *DB) setStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := db.pool.Exec(ctx, `UPDATE reviews SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("review %s: %w", id, ErrNotFound)
	}
	return nil
}

// CompleteReview stores the report payload and marks the review completed
func (db *DB) CompleteReview(ctx context.Context, id uuid.UUID, payload types.ReportPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE reviews
		 SET status = $1, problematic_count = $2, result = $3, error = NULL, completed_at = NOW()
		 WHERE id = $4`,
		StatusCompleted, payload.ProblematicCount, data, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("review %s: %w", id, ErrNotFound)
	}
	return nil
}

// FailReview records the failure message and marks the review failed
func (db *DB) FailReview(ctx context.Context, id uuid.UUID, message string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE reviews SET status = $1, error = $2, completed_at = NOW() WHERE id = $3`,
		StatusFailed, message, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark review failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("review %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetReview retrieves a review by ID. It returns nil, nil when none exists.
func (db *DB) GetReview(ctx context.Context, id uuid.UUID) (*Review, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id)
	r, err := scanReview(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return r, nil
}

// buildListQuery assembles the filtered review listing query
func buildListQuery(filters ReviewFilters) (string, []any) {
	if filters.Limit <= 0 {
		filters.Limit = defaultListLimit
	}

	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filters.Status)
		argNum++
	}
	if filters.FileName != "" {
		query += fmt.Sprintf(" AND file_name ILIKE $%d", argNum)
		args = append(args, "%"+filters.FileName+"%")
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)
	return query, args
}

// ListReviews retrieves recent reviews with optional filters
func (db *DB) ListReviews(ctx context.Context, filters ReviewFilters) ([]Review, error) {
	query, args := buildListQuery(filters)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// DeleteReview deletes a review and its artifacts (via cascade)
func (db *DB) DeleteReview(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("review %s: %w", id, ErrNotFound)
	}
	return nil
}
