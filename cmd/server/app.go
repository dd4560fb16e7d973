package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	apiMiddleware "github.com/phrazzld/annotate-api/internal/api/middleware"
	"github.com/phrazzld/annotate-api/internal/config"
	"github.com/phrazzld/annotate-api/internal/events"
	"github.com/phrazzld/annotate-api/internal/generation"
	"github.com/phrazzld/annotate-api/internal/platform/llm"
	"github.com/phrazzld/annotate-api/internal/platform/postgres"
	"github.com/phrazzld/annotate-api/internal/platform/redis"
	"github.com/phrazzld/annotate-api/internal/service"
	"github.com/phrazzld/annotate-api/internal/task"
)

const tokenWarmTimeout = 30 * time.Second

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// redis is nil when the results archive is disabled
	redis *goredis.Client

	metricsRegistry *prometheus.Registry
	httpMetrics     *apiMiddleware.HTTPMetrics

	annotationService *service.AnnotationService
	labelService      *service.LabelService
	statsService      *service.StatsService
	generationService *generation.Service
	tokenCounter      *llm.TiktokenCounter

	taskRunner *task.TaskRunner
}

// newApplication creates a new application instance with all dependencies initialized.
// The database connection must be established before calling it.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:          cfg,
		logger:          logger,
		db:              db,
		metricsRegistry: prometheus.NewRegistry(),
	}
	app.metricsRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.httpMetrics = apiMiddleware.NewHTTPMetrics(app.metricsRegistry)

	annotationStore := postgres.NewPostgresAnnotationStore(db, logger)
	labelStore := postgres.NewPostgresLabelStore(db, logger)
	statsStore := postgres.NewPostgresStatsStore(db, logger)

	var err error
	app.annotationService, err = service.NewAnnotationService(annotationStore, db, cfg.Pagination, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create annotation service: %w", err)
	}
	app.labelService, err = service.NewLabelService(labelStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create label service: %w", err)
	}
	app.statsService, err = service.NewStatsService(statsStore)
	if err != nil {
		return nil, fmt.Errorf("failed to create stats service: %w", err)
	}

	app.taskRunner, err = setupTaskRunner(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to setup task runner: %w", err)
	}

	app.generationService, err = app.setupGeneration(ctx)
	if err != nil {
		app.taskRunner.Stop()
		return nil, err
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// setupGeneration wires the generation task manager: registry, event hub,
// label splitter, LLM client factory and the optional Redis archive.
func (app *application) setupGeneration(ctx context.Context) (*generation.Service, error) {
	cfg := app.config.Generation

	splitter, err := generation.NewSplitter(cfg.LabelPrecedence, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create label splitter: %w", err)
	}

	app.tokenCounter = llm.NewTiktokenCounter(app.logger)
	factory := llm.NewFactory(
		llm.NewMetrics(app.metricsRegistry),
		app.tokenCounter,
		app.logger,
	)

	deps := generation.Dependencies{
		Registry: generation.NewRegistry(time.Duration(cfg.CleanupDelaySeconds)*time.Second, app.logger),
		Hub:      events.NewHub(app.logger),
		Runner:   app.taskRunner,
		Factory:  factory,
		Splitter: splitter,
		Metrics:  generation.NewMetrics(app.metricsRegistry),
	}

	if url := app.config.Redis.URL; url != "" {
		client, err := redis.Connect(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to results archive: %w", err)
		}
		app.redis = client
		ttl := time.Duration(app.config.Redis.ResultsTTLMinutes) * time.Minute
		deps.Archive = redis.NewArchive(client, ttl, app.logger)
		app.logger.Info("generation results archive enabled", "ttl", ttl)
	}

	svc, err := generation.NewService(generation.Config{
		RequestTimeout:  time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		MaxCount:        cfg.MaxCount,
		StartOnSubmit:   cfg.StartOnSubmit,
		DefaultProvider: cfg.DefaultProvider,
	}, deps, app.logger)
	if err != nil {
		if app.redis != nil {
			_ = app.redis.Close()
		}
		return nil, fmt.Errorf("failed to create generation service: %w", err)
	}
	return svc, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	go app.warmTokenCounter(ctx)

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// warmTokenCounter loads the token encoding off the request path. Token
// metrics use an estimate until it is ready, or for good if it fails.
func (app *application) warmTokenCounter(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, tokenWarmTimeout)
	defer cancel()

	if err := app.tokenCounter.Warm(ctx); err != nil {
		app.logger.Warn("token encoding not ready, token metrics use estimates", "error", err)
	}
}

// setupTaskRunner initializes and starts the background task processor
// that runs generators.
func setupTaskRunner(cfg *config.Config, logger *slog.Logger) (*task.TaskRunner, error) {
	taskRunner := task.NewTaskRunner(task.TaskRunnerConfig{
		QueueSize:   cfg.Generation.QueueSize,
		WorkerCount: cfg.Generation.WorkerCount,
	}, logger)

	if err := taskRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}
	return taskRunner, nil
}

// cleanup handles graceful shutdown of application resources. Generators are
// stopped first so their final state still reaches the archive.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.generationService != nil {
		app.generationService.Close()
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis connection", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
