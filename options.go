package defectlens

import (
	"log/slog"
	"time"

	"github.com/defectlens/defectlens/infrastructure/pipeline"
	"github.com/defectlens/defectlens/internal/config"
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	dbURL            string
	dataDir          string
	cloneDir         string
	logger           *slog.Logger
	workerCount      int
	workerPollPeriod time.Duration
	runner           pipeline.Runner
	pythonBin        string
	scriptsDir       string
	githubToken      string
}

// newClientConfig creates a clientConfig with defaults from internal/config.
// This ensures all defaults come from the single source of truth.
func newClientConfig() *clientConfig {
	return &clientConfig{
		dataDir:     config.DefaultDataDir(),
		workerCount: config.DefaultWorkerCount,
		pythonBin:   config.DefaultPythonBin,
		scriptsDir:  config.DefaultScriptsSubdir,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite configures SQLite as the database.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.dbURL = "sqlite:///" + path
	}
}

// WithPostgres configures PostgreSQL as the database.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.dbURL = dsn
	}
}

// WithDatabaseURL sets the database URL directly
// (sqlite:///path or postgres://...).
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) {
		c.dbURL = url
	}
}

// WithDataDir sets the data directory for working copies and database storage.
func WithDataDir(dir string) Option {
	return func(c *clientConfig) {
		c.dataDir = dir
	}
}

// WithCloneDir sets the directory where repositories are cloned.
// If not specified, defaults to {dataDir}/repos.
func WithCloneDir(dir string) Option {
	return func(c *clientConfig) {
		c.cloneDir = dir
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithWorkerCount sets the number of background worker goroutines.
// Defaults to 1 if not specified.
func WithWorkerCount(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.workerCount = n
		}
	}
}

// WithWorkerPollPeriod sets how often the background workers check for new
// tasks. Lower values speed up task pickup at the cost of more frequent
// polling, which is useful in tests.
func WithWorkerPollPeriod(d time.Duration) Option {
	return func(c *clientConfig) {
		c.workerPollPeriod = d
	}
}

// WithRunner sets a custom pipeline runner. Intended for tests that
// replace the external collaborators with fakes.
func WithRunner(r pipeline.Runner) Option {
	return func(c *clientConfig) {
		c.runner = r
	}
}

// WithPipelineCommands sets the interpreter and scripts directory used
// to invoke the analysis collaborators.
func WithPipelineCommands(pythonBin, scriptsDir string) Option {
	return func(c *clientConfig) {
		if pythonBin != "" {
			c.pythonBin = pythonBin
		}
		if scriptsDir != "" {
			c.scriptsDir = scriptsDir
		}
	}
}

// WithGitHubToken sets the token for the GitHub metadata probe at
// submission time.
func WithGitHubToken(token string) Option {
	return func(c *clientConfig) {
		c.githubToken = token
	}
}
