package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/defectlens/defectlens"
	"github.com/defectlens/defectlens/infrastructure/api"
	"github.com/defectlens/defectlens/internal/config"
	"github.com/defectlens/defectlens/internal/log"
)

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                 Server host to bind to (default: 0.0.0.0)
  PORT                 Server port to listen on (default: 8080)
  DATA_DIR             Data directory (default: ~/.defectlens)
  CLONE_DIR            Working-copy directory (default: {data_dir}/repos)
  DB_URL               Database URL (default: sqlite:///{data_dir}/defectlens.db)
  LOG_LEVEL            Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT           Log format: pretty, json (default: pretty)
  WORKER_COUNT         Concurrent analysis workers (default: 1)
  WORKER_POLL_SECONDS  Queue poll period in seconds (default: 5)
  PYTHON_BIN           Interpreter for the analysis scripts (default: python3)
  SCRIPTS_DIR          Directory holding the analysis scripts (default: scripts)
  GITHUB_TOKEN         Token for the GitHub metadata probe
  CORS_ORIGINS         Comma-separated list of allowed browser origins`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	// Apply command line overrides (flags take precedence over env vars)
	cfg = applyServeOverrides(cfg, host, port)

	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	if err := cfg.EnsureCloneDir(); err != nil {
		return fmt.Errorf("create clone directory: %w", err)
	}

	logger := log.NewLogger(cfg)
	slogger := logger.Slog()

	opts := []defectlens.Option{
		defectlens.WithDatabaseURL(cfg.DBURL()),
		defectlens.WithDataDir(cfg.DataDir()),
		defectlens.WithCloneDir(cfg.CloneDir()),
		defectlens.WithLogger(slogger),
		defectlens.WithWorkerCount(cfg.WorkerCount()),
		defectlens.WithWorkerPollPeriod(cfg.WorkerPollPeriod()),
		defectlens.WithPipelineCommands(cfg.Pipeline().PythonBin(), cfg.Pipeline().ScriptsDir()),
	}
	if cfg.GitHubToken() != "" {
		opts = append(opts, defectlens.WithGitHubToken(cfg.GitHubToken()))
	}

	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	slogger.LogAttrs(context.Background(), slog.LevelInfo, "starting defectlens", attrs...)

	client, err := defectlens.New(opts...)
	if err != nil {
		return fmt.Errorf("create defectlens client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close defectlens client", slog.Any("error", err))
		}
	}()

	apiServer := api.NewAPIServer(client, cfg.CORSOrigins())
	router := apiServer.Router()
	apiServer.MountRoutes()

	// Health check endpoints
	router.Get("/health", healthHandler)
	router.Get("/healthz", healthHandler)

	// Root endpoint with API info
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"name":"defectlens","version":"%s"}`, version)
	})

	server := api.NewServer(cfg.Addr(), slogger)
	server.Router().Mount("/", router)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		slogger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}
