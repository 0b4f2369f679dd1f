package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Field names map directly to environment variable names.
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DataDir is the data directory path.
	// Env: DATA_DIR
	// Default: ~/.defectlens
	DataDir string `envconfig:"DATA_DIR"`

	// CloneDir is the directory repositories are cloned into.
	// Env: CLONE_DIR
	// Default: {data_dir}/repos
	CloneDir string `envconfig:"CLONE_DIR"`

	// DBURL is the database connection URL.
	// Env: DB_URL
	// Default: sqlite:///{data_dir}/defectlens.db
	DBURL string `envconfig:"DB_URL"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// WorkerCount is the number of background workers.
	// Env: WORKER_COUNT (default: 1)
	WorkerCount int `envconfig:"WORKER_COUNT" default:"1"`

	// WorkerPollSeconds is how often idle workers poll the queue.
	// Env: WORKER_POLL_SECONDS (default: 5)
	WorkerPollSeconds float64 `envconfig:"WORKER_POLL_SECONDS" default:"5"`

	// PythonBin is the Python interpreter used to run stage scripts.
	// Env: PYTHON_BIN (default: python3)
	PythonBin string `envconfig:"PYTHON_BIN" default:"python3"`

	// ScriptsDir is the directory holding the stage scripts.
	// Env: SCRIPTS_DIR (default: scripts)
	ScriptsDir string `envconfig:"SCRIPTS_DIR" default:"scripts"`

	// GitHubToken is the token used for GitHub API and clone access.
	// Env: GITHUB_TOKEN
	GitHubToken string `envconfig:"GITHUB_TOKEN"`

	// CORSOrigins is a comma-separated list of allowed CORS origins.
	// Env: CORS_ORIGINS
	CORSOrigins string `envconfig:"CORS_ORIGINS"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
// For example, prefix "DEFECTLENS" would require DEFECTLENS_DATA_DIR
// instead of DATA_DIR.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	// Apply overrides from environment
	if e.Host != "" {
		cfg = applyOption(cfg, WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = applyOption(cfg, WithPort(e.Port))
	}
	if e.DataDir != "" {
		cfg = applyOption(cfg, WithDataDir(e.DataDir))
	}
	if e.CloneDir != "" {
		cfg = applyOption(cfg, WithCloneDir(e.CloneDir))
	}
	if e.DBURL != "" {
		cfg = applyOption(cfg, WithDBURL(e.DBURL))
	}
	if e.LogLevel != "" {
		cfg = applyOption(cfg, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = applyOption(cfg, WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	if e.WorkerCount > 0 {
		cfg = applyOption(cfg, WithWorkerCount(e.WorkerCount))
	}
	if e.WorkerPollSeconds > 0 {
		cfg = applyOption(cfg, WithWorkerPollPeriod(time.Duration(e.WorkerPollSeconds*float64(time.Second))))
	}
	if e.GitHubToken != "" {
		cfg = applyOption(cfg, WithGitHubToken(e.GitHubToken))
	}
	if e.CORSOrigins != "" {
		cfg = applyOption(cfg, WithCORSOrigins(ParseOrigins(e.CORSOrigins)))
	}

	pipeline := NewPipelineConfig()
	if e.PythonBin != "" {
		pipeline = pipeline.WithPythonBin(e.PythonBin)
	}
	if e.ScriptsDir != "" {
		pipeline = pipeline.WithScriptsDir(e.ScriptsDir)
	}
	cfg = applyOption(cfg, WithPipelineConfig(pipeline))

	return cfg
}

// applyOption applies an option to the config.
func applyOption(cfg AppConfig, opt AppConfigOption) AppConfig {
	opt(&cfg)
	return cfg
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}
