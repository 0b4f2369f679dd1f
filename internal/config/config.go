// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost             = "0.0.0.0"
	DefaultPort             = 8080
	DefaultLogLevel         = "INFO"
	DefaultWorkerCount      = 1
	DefaultWorkerPollPeriod = 5 * time.Second
	DefaultCloneSubdir      = "repos"
	DefaultPythonBin        = "python3"
	DefaultScriptsSubdir    = "scripts"
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// PipelineConfig configures the external analysis stage commands.
type PipelineConfig struct {
	pythonBin  string
	scriptsDir string
}

// NewPipelineConfig creates a new PipelineConfig with defaults.
func NewPipelineConfig() PipelineConfig {
	return PipelineConfig{
		pythonBin:  DefaultPythonBin,
		scriptsDir: DefaultScriptsSubdir,
	}
}

// PythonBin returns the Python interpreter used to run stage scripts.
func (p PipelineConfig) PythonBin() string { return p.pythonBin }

// ScriptsDir returns the directory holding the stage scripts.
func (p PipelineConfig) ScriptsDir() string { return p.scriptsDir }

// WithPythonBin returns a new config with the specified interpreter.
func (p PipelineConfig) WithPythonBin(bin string) PipelineConfig {
	p.pythonBin = bin
	return p
}

// WithScriptsDir returns a new config with the specified scripts directory.
func (p PipelineConfig) WithScriptsDir(dir string) PipelineConfig {
	p.scriptsDir = dir
	return p
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	host        string
	port        int
	dataDir     string
	cloneDir    string
	dbURL       string
	logLevel    string
	logFormat   LogFormat
	workerCount int
	workerPoll  time.Duration
	githubToken string
	corsOrigins []string
	pipeline    PipelineConfig
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".defectlens"
	}
	return filepath.Join(home, ".defectlens")
}

// DefaultCloneDir returns the default clone directory for a given data directory.
func DefaultCloneDir(dataDir string) string {
	return filepath.Join(dataDir, DefaultCloneSubdir)
}

// PrepareDataDir creates the data directory if it does not exist and returns it.
func PrepareDataDir(dataDir string) (string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dataDir, nil
}

// PrepareCloneDir resolves the clone directory (defaulting if empty) and creates it.
func PrepareCloneDir(cloneDir, dataDir string) (string, error) {
	if cloneDir == "" {
		cloneDir = DefaultCloneDir(dataDir)
	}
	if err := os.MkdirAll(cloneDir, 0o755); err != nil {
		return "", fmt.Errorf("create clone directory: %w", err)
	}
	return cloneDir, nil
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	dataDir := DefaultDataDir()
	return AppConfig{
		host:        DefaultHost,
		port:        DefaultPort,
		dataDir:     dataDir,
		dbURL:       "sqlite:///" + filepath.Join(dataDir, "defectlens.db"),
		logLevel:    DefaultLogLevel,
		logFormat:   LogFormatPretty,
		workerCount: DefaultWorkerCount,
		workerPoll:  DefaultWorkerPollPeriod,
		corsOrigins: []string{"*"},
		pipeline:    NewPipelineConfig(),
	}
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DataDir returns the data directory path.
func (c AppConfig) DataDir() string { return c.dataDir }

// CloneDir returns the clone directory path.
func (c AppConfig) CloneDir() string {
	if c.cloneDir != "" {
		return c.cloneDir
	}
	return filepath.Join(c.dataDir, DefaultCloneSubdir)
}

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// WorkerCount returns the number of background workers.
func (c AppConfig) WorkerCount() int { return c.workerCount }

// WorkerPollPeriod returns how often idle workers poll the queue.
func (c AppConfig) WorkerPollPeriod() time.Duration { return c.workerPoll }

// GitHubToken returns the token used for GitHub API and clone access.
func (c AppConfig) GitHubToken() string { return c.githubToken }

// CORSOrigins returns the allowed CORS origins.
func (c AppConfig) CORSOrigins() []string {
	origins := make([]string, len(c.corsOrigins))
	copy(origins, c.corsOrigins)
	return origins
}

// Pipeline returns the pipeline stage configuration.
func (c AppConfig) Pipeline() PipelineConfig { return c.pipeline }

// EnsureDataDir creates the data directory if it doesn't exist.
func (c AppConfig) EnsureDataDir() error {
	return os.MkdirAll(c.dataDir, 0o755)
}

// EnsureCloneDir creates the clone directory if it doesn't exist.
func (c AppConfig) EnsureCloneDir() error {
	return os.MkdirAll(c.CloneDir(), 0o755)
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDataDir sets the data directory.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) {
		c.dataDir = dir
		// Update default DB URL when data dir changes
		if c.dbURL == "" || strings.Contains(c.dbURL, "defectlens.db") {
			c.dbURL = "sqlite:///" + filepath.Join(dir, "defectlens.db")
		}
	}
}

// WithCloneDir sets the clone directory.
func WithCloneDir(dir string) AppConfigOption {
	return func(c *AppConfig) { c.cloneDir = dir }
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithWorkerCount sets the number of background workers.
func WithWorkerCount(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.workerCount = n
		}
	}
}

// WithWorkerPollPeriod sets the idle worker poll period.
func WithWorkerPollPeriod(d time.Duration) AppConfigOption {
	return func(c *AppConfig) {
		if d > 0 {
			c.workerPoll = d
		}
	}
}

// WithGitHubToken sets the GitHub access token.
func WithGitHubToken(token string) AppConfigOption {
	return func(c *AppConfig) { c.githubToken = token }
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins []string) AppConfigOption {
	return func(c *AppConfig) {
		c.corsOrigins = make([]string, len(origins))
		copy(c.corsOrigins, origins)
	}
}

// WithPipelineConfig sets the pipeline stage configuration.
func WithPipelineConfig(p PipelineConfig) AppConfigOption {
	return func(c *AppConfig) { c.pipeline = p }
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Apply returns a new AppConfig with the given options applied.
// This copies all fields from the receiver and then applies the options,
// making it safe to use when adding new fields to AppConfig.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
// Sensitive values like tokens are masked.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("data_dir", c.dataDir),
		slog.String("clone_dir", c.CloneDir()),
		slog.String("log_level", c.logLevel),
		slog.String("db_url", c.maskedDBURL()),
		slog.Int("worker_count", c.workerCount),
		slog.Duration("worker_poll_period", c.workerPoll),
		slog.String("python_bin", c.pipeline.PythonBin()),
		slog.String("scripts_dir", c.pipeline.ScriptsDir()),
		slog.Bool("github_token_set", c.githubToken != ""),
	}
}

func (c AppConfig) maskedDBURL() string {
	if c.dbURL == "" {
		return "(default)"
	}
	if strings.HasPrefix(c.dbURL, "sqlite:") {
		return c.dbURL
	}
	return "postgres://***@***"
}

// ParseOrigins parses a comma-separated string of CORS origins.
func ParseOrigins(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
