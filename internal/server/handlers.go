package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/contract-review/internal/db"
	"github.com/jonathan/contract-review/internal/pipeline"
	"github.com/jonathan/contract-review/internal/retrieval"
	"github.com/jonathan/contract-review/internal/types"
	"github.com/jonathan/contract-review/internal/worker"
)

// Limits of the search endpoint
const (
	MaxSearchLimit = 20
	maxBodyBytes   = 5 << 20
)

// ReviewRequest is the body of the review endpoints
type ReviewRequest struct {
	FileName string `json:"file_name" validate:"max=255"`
	Text     string `json:"text" validate:"required"`
	Header   string `json:"header,omitempty" validate:"max=1000"`
}

// ReviewResponse is the report payload, tagged with the stored review ID when one exists
type ReviewResponse struct {
	ReviewID string `json:"review_id,omitempty"`
	types.ReportPayload
}

// AsyncResponse acknowledges a queued review
type AsyncResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// SearchResult is one corpus passage returned by the search endpoint
type SearchResult struct {
	Title string  `json:"title"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// SearchResponse is the body returned by the search endpoint
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// decodeReviewRequest reads and validates the request body
func (s *Server) decodeReviewRequest(w http.ResponseWriter, r *http.Request) (*ReviewRequest, error) {
	var req ReviewRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		return nil, &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	if err := s.validate.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, &ErrValidation{Field: strings.ToLower(verrs[0].Field()), Message: "failed " + verrs[0].Tag()}
		}
		return nil, &ErrValidation{Field: "body", Message: err.Error()}
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, &ErrValidation{Field: "text", Message: "failed required"}
	}
	if req.FileName == "" {
		req.FileName = "contract.txt"
	}
	return &req, nil
}

// runReview records the review when a store is configured and runs the pipeline
func (s *Server) runReview(ctx context.Context, req *ReviewRequest, onProgress pipeline.ProgressCallback) (ReviewResponse, error) {
	var id uuid.UUID
	if s.store != nil {
		var err error
		id, err = s.store.CreateReview(ctx, req.FileName, req.Header, db.StatusRunning)
		if err != nil {
			return ReviewResponse{}, err
		}
	}

	in := pipeline.Input{
		FileName:   req.FileName,
		Header:     req.Header,
		Text:       req.Text,
		OnProgress: onProgress,
	}
	if id != uuid.Nil {
		in.ReviewID = id.String()
	}

	res, err := s.reviewer.Review(ctx, in)
	if err != nil {
		s.failReview(id, err)
		return ReviewResponse{}, err
	}

	if id != uuid.Nil {
		if err := s.store.CompleteReview(ctx, id, res.Payload); err != nil {
			log.Printf("[SERVER] Warning: failed to store result of review %s: %v", id, err)
		}
	}
	return ReviewResponse{ReviewID: in.ReviewID, ReportPayload: res.Payload}, nil
}

// failReview marks a stored review failed. It uses a fresh context since the
// request context may be the reason for the failure.
func (s *Server) failReview(id uuid.UUID, cause error) {
	if s.store == nil || id == uuid.Nil {
		return
	}
	if err := s.store.FailReview(context.Background(), id, cause.Error()); err != nil {
		log.Printf("[SERVER] Warning: failed to mark review %s failed: %v", id, err)
	}
}

// handleReview runs a review synchronously and returns the report payload
func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeReviewRequest(w, r)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	resp, err := s.runReview(r.Context(), req, nil)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleReviewStream runs a review and streams progress via SSE
func (s *Server) handleReviewStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeReviewRequest(w, r)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	stream, err := NewEventStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp, err := s.runReview(r.Context(), req, func(event pipeline.ProgressEvent) {
		if err := stream.Progress(event); err != nil {
			log.Printf("[SERVER] failed to write progress event: %v", err)
		}
	})
	if err != nil {
		log.Printf("[SERVER] streaming review failed: %v", err)
		_ = stream.Fail(err)
		return
	}
	if err := stream.Complete(resp); err != nil {
		log.Printf("[SERVER] failed to write completion event: %v", err)
	}
}

// handleReviewAsync queues a review for the background worker
func (s *Server) handleReviewAsync(w http.ResponseWriter, r *http.Request) {
	if s.store == nil || s.worker == nil {
		s.errorFor(w, &ErrUnavailable{Feature: "asynchronous review"})
		return
	}

	req, err := s.decodeReviewRequest(w, r)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	id, err := s.store.CreateReview(r.Context(), req.FileName, req.Header, db.StatusQueued)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	job := worker.Job{ID: id.String(), FileName: req.FileName, Text: req.Text, Header: req.Header}
	if err := s.worker.Submit(job); err != nil {
		s.failReview(id, err)
		s.errorFor(w, err)
		return
	}

	log.Printf("[SERVER] queued review %s (%s)", id, req.FileName)
	s.jsonResponse(w, http.StatusAccepted, AsyncResponse{ID: id.String(), Status: db.StatusQueued})
}

// ProcessJob runs a queued review and records its outcome. It is the worker handler.
func (s *Server) ProcessJob(ctx context.Context, job worker.Job) error {
	id, err := uuid.Parse(job.ID)
	if err != nil {
		return err
	}
	if err := s.store.StartReview(ctx, id); err != nil {
		return err
	}

	res, err := s.reviewer.Review(ctx, pipeline.Input{
		ReviewID: job.ID,
		FileName: job.FileName,
		Header:   job.Header,
		Text:     job.Text,
	})
	if err != nil {
		s.failReview(id, err)
		return err
	}
	return s.store.CompleteReview(ctx, id, res.Payload)
}

// pathReviewID parses the {id} URL parameter
func pathReviewID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "invalid review ID format"}
	}
	return id, nil
}

// requireStore reports whether review persistence is configured, writing 503 if not
func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		s.errorFor(w, &ErrUnavailable{Feature: "review storage"})
		return false
	}
	return true
}

// handleListReviews lists stored reviews, newest first
func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}

	q := r.URL.Query()
	filters := db.ReviewFilters{
		Status:   q.Get("status"),
		FileName: q.Get("file_name"),
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			s.errorFor(w, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		filters.Limit = limit
	}

	reviews, err := s.store.ListReviews(r.Context(), filters)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	if reviews == nil {
		reviews = []db.Review{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"reviews": reviews, "count": len(reviews)})
}

// handleGetReview returns one stored review with its result
func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	id, err := pathReviewID(r)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	review, err := s.store.GetReview(r.Context(), id)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	if review == nil {
		s.errorFor(w, &ErrReviewNotFound{ReviewID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, review)
}

// handleDeleteReview deletes a review and its artifacts
func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	id, err := pathReviewID(r)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	if err := s.store.DeleteReview(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			err = &ErrReviewNotFound{ReviewID: id}
		}
		s.errorFor(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetArtifact returns one stored artifact of a review as raw JSON
func (s *Server) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	id, err := pathReviewID(r)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	name, err := types.ParseArtifactName(chi.URLParam(r, "kind"))
	if err != nil {
		s.errorFor(w, &ErrValidation{Field: "kind", Message: err.Error()})
		return
	}

	content, err := s.store.GetArtifact(r.Context(), id, name)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	if content == nil {
		s.errorResponse(w, http.StatusNotFound, "artifact not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		log.Printf("Error writing artifact: %v", err)
	}
}

// handleSearch returns the legal passages closest to a free-text query
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.searcher == nil {
		s.errorFor(w, &ErrUnavailable{Feature: "legal corpus search"})
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		s.errorFor(w, &ErrValidation{Field: "query", Message: "is required"})
		return
	}

	k := retrieval.DefaultSearchLimit
	if v := r.URL.Query().Get("k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxSearchLimit {
			s.errorFor(w, &ErrValidation{Field: "k", Message: "must be between 1 and 20"})
			return
		}
		k = n
	}

	hits, err := s.searcher.Search(r.Context(), query, k)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	results := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, SearchResult{Title: h.Entry.Title, Text: h.Entry.Text, Score: h.Score})
	}
	s.jsonResponse(w, http.StatusOK, SearchResponse{Query: query, Results: results})
}
