package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Review statuses
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Review represents a contract review record
type Review struct {
	ID               uuid.UUID       `json:"id"`
	FileName         string          `json:"file_name"`
	Header           string          `json:"header,omitempty"`
	Status           string          `json:"status"`
	ProblematicCount *int            `json:"problematic_count,omitempty"`
	Result           json.RawMessage `json:"result,omitempty"`
	Error            string          `json:"error,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
}

// Done reports whether the review reached a terminal status
func (r *Review) Done() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// ReviewFilters holds optional filters for listing reviews
type ReviewFilters struct {
	Status   string
	FileName string
	Limit    int
}

// ArtifactSummary is a lightweight view of an artifact for listing
type ArtifactSummary struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
