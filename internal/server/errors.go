package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/contract-review/internal/db"
	"github.com/jonathan/contract-review/internal/pipeline"
	"github.com/jonathan/contract-review/internal/worker"
)

// ErrReviewNotFound indicates the review does not exist
type ErrReviewNotFound struct {
	ReviewID uuid.UUID
}

func (e *ErrReviewNotFound) Error() string {
	return fmt.Sprintf("review not found: %s", e.ReviewID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUnavailable indicates a feature needing a backend the server runs without
type ErrUnavailable struct {
	Feature string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s is not available on this server", e.Feature)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound    *ErrReviewNotFound
		validation  *ErrValidation
		input       *pipeline.InputError
		unavailable *ErrUnavailable
	)
	switch {
	case errors.As(err, &notFound), errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &input):
		return http.StatusBadRequest
	case errors.As(err, &unavailable), errors.Is(err, worker.ErrQueueFull), errors.Is(err, worker.ErrStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
