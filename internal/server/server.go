// Package server provides the HTTP REST API for contract reviews.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/contract-review/internal/config"
	"github.com/jonathan/contract-review/internal/db"
	"github.com/jonathan/contract-review/internal/pipeline"
	"github.com/jonathan/contract-review/internal/retrieval"
	"github.com/jonathan/contract-review/internal/server/middleware"
	"github.com/jonathan/contract-review/internal/server/ratelimit"
	"github.com/jonathan/contract-review/internal/types"
	"github.com/jonathan/contract-review/internal/worker"
)

// ServiceName is reported by the health endpoint
const ServiceName = "contract-review"

// Reviewer runs the review pipeline
type Reviewer interface {
	Review(ctx context.Context, in pipeline.Input) (*pipeline.Result, error)
}

// ReviewStore persists reviews and their artifacts. *db.DB implements it.
type ReviewStore interface {
	CreateReview(ctx context.Context, fileName, header, status string) (uuid.UUID, error)
	StartReview(ctx context.Context, id uuid.UUID) error
	CompleteReview(ctx context.Context, id uuid.UUID, payload types.ReportPayload) error
	FailReview(ctx context.Context, id uuid.UUID, message string) error
	GetReview(ctx context.Context, id uuid.UUID) (*db.Review, error)
	ListReviews(ctx context.Context, filters db.ReviewFilters) ([]db.Review, error)
	DeleteReview(ctx context.Context, id uuid.UUID) error
	GetArtifact(ctx context.Context, reviewID uuid.UUID, name types.ArtifactName) ([]byte, error)
}

// Config holds server configuration
type Config struct {
	Port           int
	Version        string
	AllowedOrigins []string
}

// Deps are the collaborators of the server. Only Reviewer is required.
type Deps struct {
	Reviewer Reviewer
	Store    ReviewStore
	Searcher retrieval.Searcher
	Worker   *worker.Worker
	JWT      *config.JWTConfig
	Limiter  *ratelimit.Limiter
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	router      *chi.Mux
	version     string
	reviewer    Reviewer
	store       ReviewStore
	searcher    retrieval.Searcher
	worker      *worker.Worker
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	validate    *validator.Validate
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Reviewer == nil {
		return nil, errors.New("server: reviewer is required")
	}
	if cfg.Port == 0 {
		cfg.Port = config.DefaultPort
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:*", "https://*"}
	}

	s := &Server{
		version:     cfg.Version,
		reviewer:    deps.Reviewer,
		store:       deps.Store,
		searcher:    deps.Searcher,
		worker:      deps.Worker,
		rateLimiter: deps.Limiter,
		validate:    validator.New(),
	}
	if deps.JWT != nil {
		s.jwtService = NewJWTService(deps.JWT)
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.withLogging)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	if s.rateLimiter != nil {
		r.Use(s.withRateLimit)
	}
	s.router = r
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Minute, // a review paces one model call per clause
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		if s.jwtService != nil {
			r.Use(middleware.AuthMiddleware(s.jwtService.AsTokenValidator()))
		}

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", s.handleListReviews)
			r.Post("/", s.handleReview)
			r.Post("/stream", s.handleReviewStream)
			r.Post("/async", s.handleReviewAsync)
			r.Get("/{id}", s.handleGetReview)
			r.Delete("/{id}", s.handleDeleteReview)
			r.Get("/{id}/artifacts/{kind}", s.handleGetArtifact)
		})
		r.Get("/search", s.handleSearch)
	})
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves requests until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	log.Println("Server stopped")
	return nil
}

// withRateLimit rejects clients over their endpoint budget with 429
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Printf("[%s] %s %d in %v (req %s)", r.Method, r.URL.Path, ww.Status(), time.Since(start),
			chimiddleware.GetReqID(r.Context()))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": ServiceName,
		"version": s.version,
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// errorFor writes err with the status HTTPStatus maps it to
func (s *Server) errorFor(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[SERVER] internal error: %v", err)
	}
	s.errorResponse(w, status, err.Error())
}

// extractClientID uses the address set by the RealIP middleware.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
