// Package defectlens provides a library for mining defect data from Git
// repositories.
//
// Defectlens clones a repository, extracts and classifies its commits,
// links bug-fixing commits back to the commits that introduced the
// defects, and computes per-commit change metrics. Analysis runs as
// background jobs with live status events.
//
// Basic usage:
//
//	client, err := defectlens.New(
//	    defectlens.WithSQLite(".defectlens/data.db"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Submit a repository for analysis
//	result, err := client.Analyses.Submit(ctx, service.SubmitParams{
//	    UserID:        "user-1",
//	    RepositoryURL: "https://github.com/apache/commons-lang",
//	})
//
//	// Watch the job
//	sub := client.Notifier().Subscribe(result.JobID)
//	defer sub.Cancel()
//	for event := range sub.C() {
//	    fmt.Println(event.Status(), event.Step())
//	}
package defectlens

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	handleranalysis "github.com/defectlens/defectlens/application/handler/analysis"
	"github.com/defectlens/defectlens/application/service"
	"github.com/defectlens/defectlens/domain/task"
	"github.com/defectlens/defectlens/infrastructure/github"
	"github.com/defectlens/defectlens/infrastructure/notify"
	"github.com/defectlens/defectlens/infrastructure/persistence"
	"github.com/defectlens/defectlens/infrastructure/pipeline"
	"github.com/defectlens/defectlens/internal/config"
	"github.com/defectlens/defectlens/internal/database"
	"github.com/defectlens/defectlens/internal/log"
)

// ErrNoDatabase indicates New was called without a database option.
var ErrNoDatabase = errors.New("defectlens: no database configured")

// Client is the main entry point for the defectlens library.
// The background workers start automatically on creation.
//
// Access resources via struct fields:
//
//	client.Analyses.Submit(ctx, params)
//	client.Repositories.List(ctx)
//	client.Commits.ListForRepository(ctx, repoID, nil)
type Client struct {
	// Public resource fields (direct service access)
	Analyses     *service.Analysis
	Repositories *service.Repository
	Commits      *service.Commit
	Metrics      *service.Metric
	Tasks        *service.Queue

	db       database.Database
	notifier *notify.Notifier
	queue    *service.Queue
	worker   *service.Worker
	registry *service.Registry

	logger   *slog.Logger
	dataDir  string
	cloneDir string
	closed   atomic.Bool
	mu       sync.Mutex
}

// New creates a new Client with the given options.
// The background workers are started automatically.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.dbURL == "" {
		return nil, ErrNoDatabase
	}

	logger := cfg.logger
	if logger == nil {
		logger = log.NewLogger(config.NewAppConfig()).Slog()
	}

	dataDir, err := config.PrepareDataDir(cfg.dataDir)
	if err != nil {
		return nil, err
	}

	cloneDir, err := config.PrepareCloneDir(cfg.cloneDir, dataDir)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()

	db, err := database.NewDatabase(ctx, cfg.dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := persistence.AutoMigrate(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
	}

	if err := persistence.ValidateSchema(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("validate schema: %w", err), errClose)
	}

	// Create stores
	repoStore := persistence.NewRepositoryStore(db)
	jobStore := persistence.NewJobStore(db)
	commitStore := persistence.NewCommitStore(db)
	metricStore := persistence.NewMetricStore(db)
	taskStore := persistence.NewTaskStore(db)

	// Create application services
	notifier := notify.NewNotifier(logger)
	registry := service.NewRegistry()
	queue := service.NewQueue(taskStore, logger)

	worker := service.NewWorker(taskStore, registry, logger).
		WithCount(cfg.workerCount)
	if cfg.workerPollPeriod > 0 {
		worker.WithPollPeriod(cfg.workerPollPeriod)
	}

	var gh *github.Client
	if cfg.githubToken != "" {
		gh = github.NewClient(cfg.githubToken, logger)
	}

	runner := cfg.runner
	if runner == nil {
		runner = pipeline.NewProcessRunner(cfg.pythonBin, cfg.scriptsDir, logger)
	}

	client := &Client{
		db:       db,
		notifier: notifier,
		queue:    queue,
		worker:   worker,
		registry: registry,
		logger:   logger,
		dataDir:  dataDir,
		cloneDir: cloneDir,
	}

	// Initialize service fields directly
	client.Analyses = service.NewAnalysis(repoStore, jobStore, queue, gh, logger)
	client.Repositories = service.NewRepository(repoStore, logger)
	client.Commits = service.NewCommit(commitStore, logger)
	client.Metrics = service.NewMetric(metricStore, logger)
	client.Tasks = queue

	// Register the pipeline handler
	runHandler := handleranalysis.NewRun(
		jobStore, repoStore, commitStore, metricStore,
		runner, notifier, cloneDir, logger,
	)
	registry.Register(task.OperationAnalyzeRepository, runHandler)

	// Start the background workers
	worker.Start(ctx)

	return client, nil
}

// Close releases all resources and stops the background workers.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return service.ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.worker.Stop()

	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	c.logger.Info("defectlens client closed")
	return nil
}

// Notifier returns the job status notifier for subscribing to live
// job events.
func (c *Client) Notifier() *notify.Notifier {
	return c.notifier
}

// ProcessOne synchronously processes a single queued task, bypassing
// the poll loop (for testing).
func (c *Client) ProcessOne(ctx context.Context) (bool, error) {
	return c.worker.ProcessOne(ctx)
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// DataDir returns the resolved data directory.
func (c *Client) DataDir() string {
	return c.dataDir
}

// CloneDir returns the resolved clone directory.
func (c *Client) CloneDir() string {
	return c.cloneDir
}
