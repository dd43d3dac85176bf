package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jonathan/contract-review/internal/config"
	"github.com/jonathan/contract-review/internal/db"
	"github.com/jonathan/contract-review/internal/pipeline"
	"github.com/jonathan/contract-review/internal/retrieval"
	"github.com/jonathan/contract-review/internal/server"
	"github.com/jonathan/contract-review/internal/server/ratelimit"
	"github.com/jonathan/contract-review/internal/worker"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

var (
	servePort       int
	serveCorpusFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for reviewing contracts.
Reviews are stored when DATABASE_URL is set, which also enables asynchronous
reviews processed by the background worker.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to PORT or 8080)")
	serveCmd.Flags().StringVar(&serveCorpusFile, "corpus", "", "Legal corpus JSON to search in memory (overrides CORPUS_PATH and VECTOR_DATABASE_URL)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	jwtCfg, err := config.OptionalJWTConfig()
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	opts := pipeline.Options{
		Classifier: newClassifier(client, cfg),
		PaceDelay:  cfg.PaceDelay(),
	}
	deps := server.Deps{JWT: jwtCfg}

	backend, err := openSearcher(ctx, cfg, client, serveCorpusFile)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()
	if backend != nil {
		opts.Retriever = retrieval.NewRetriever(backend, cfg.RetryPolicy())
		deps.Searcher = backend
	} else {
		log.Printf("[SERVER] no legal corpus configured; search is disabled and references will be empty")
	}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			return err
		}
		opts.Store = database
		deps.Store = database
	} else {
		log.Printf("[SERVER] DATABASE_URL not set; reviews are not stored")
	}

	reviewer, err := pipeline.NewReviewer(opts)
	if err != nil {
		return err
	}
	deps.Reviewer = reviewer

	rlCfg, err := ratelimit.LoadConfig()
	if err != nil {
		return err
	}
	if rlCfg.Enabled {
		deps.Limiter = ratelimit.NewLimiter(rlCfg)
	}

	// the worker handler needs the server, which needs the worker
	var srv *server.Server
	var wk *worker.Worker
	if deps.Store != nil {
		wk = worker.New(cfg.QueueSize, func(ctx context.Context, job worker.Job) error {
			return srv.ProcessJob(ctx, job)
		})
		deps.Worker = wk
	}

	srv, err = server.New(server.Config{
		Port:           cfg.Port,
		Version:        version,
		AllowedOrigins: allowedOrigins(),
	}, deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	if wk != nil {
		g.Go(func() error {
			return wk.Run(gctx)
		})
	}
	return g.Wait()
}

// allowedOrigins reads CORS_ALLOWED_ORIGINS as a comma-separated list
func allowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
