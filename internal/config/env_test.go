package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "pretty", cfg.LogFormat)
	assert.Equal(t, 1, cfg.WorkerCount)
	assert.Equal(t, "python3", cfg.PythonBin)
	assert.Equal(t, "scripts", cfg.ScriptsDir)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "3001")
	t.Setenv("DB_URL", "postgres://localhost/defectlens")
	t.Setenv("WORKER_COUNT", "3")
	t.Setenv("WORKER_POLL_SECONDS", "0.5")
	t.Setenv("PYTHON_BIN", "/usr/bin/python3.12")
	t.Setenv("GITHUB_TOKEN", "ghp_test")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 3001, cfg.Port)
	assert.Equal(t, "postgres://localhost/defectlens", cfg.DBURL)
	assert.Equal(t, 3, cfg.WorkerCount)
	assert.InDelta(t, 0.5, cfg.WorkerPollSeconds, 0.001)
	assert.Equal(t, "/usr/bin/python3.12", cfg.PythonBin)
	assert.Equal(t, "ghp_test", cfg.GitHubToken)
}

func TestEnvConfig_ToAppConfig(t *testing.T) {
	env := EnvConfig{
		Host:              "10.0.0.1",
		Port:              9090,
		DBURL:             "sqlite:///tmp/a.db",
		LogLevel:          "DEBUG",
		LogFormat:         "json",
		WorkerCount:       2,
		WorkerPollSeconds: 1,
		PythonBin:         "python3.11",
		ScriptsDir:        "/opt/scripts",
		GitHubToken:       "tok",
		CORSOrigins:       "http://localhost:3000,https://app.example.com",
	}

	cfg := env.ToAppConfig()

	assert.Equal(t, "10.0.0.1:9090", cfg.Addr())
	assert.Equal(t, "sqlite:///tmp/a.db", cfg.DBURL())
	assert.Equal(t, "DEBUG", cfg.LogLevel())
	assert.Equal(t, LogFormatJSON, cfg.LogFormat())
	assert.Equal(t, 2, cfg.WorkerCount())
	assert.Equal(t, time.Second, cfg.WorkerPollPeriod())
	assert.Equal(t, "python3.11", cfg.Pipeline().PythonBin())
	assert.Equal(t, "/opt/scripts", cfg.Pipeline().ScriptsDir())
	assert.Equal(t, "tok", cfg.GitHubToken())
	assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.CORSOrigins())
}

func TestEnvConfig_ToAppConfig_EmptyFieldsKeepDefaults(t *testing.T) {
	env := EnvConfig{}
	cfg := env.ToAppConfig()

	assert.Equal(t, DefaultWorkerCount, cfg.WorkerCount())
	assert.Equal(t, DefaultWorkerPollPeriod, cfg.WorkerPollPeriod())
	assert.Equal(t, LogFormatPretty, cfg.LogFormat())
	assert.Equal(t, DefaultPythonBin, cfg.Pipeline().PythonBin())
}

func TestParseLogFormat(t *testing.T) {
	assert.Equal(t, LogFormatJSON, parseLogFormat("json"))
	assert.Equal(t, LogFormatJSON, parseLogFormat("JSON"))
	assert.Equal(t, LogFormatPretty, parseLogFormat("pretty"))
	assert.Equal(t, LogFormatPretty, parseLogFormat("anything"))
}
