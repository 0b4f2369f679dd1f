// Package main is the entry point for the defectlens CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/defectlens/defectlens/internal/config"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "defectlens",
		Short: "Defectlens repository analysis server",
		Long:  `Defectlens mines Git repositories for defect data: it classifies commits, links bug-fixing commits to the commits that introduced the defects, and computes per-commit change metrics.`,
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from .env file and environment variables.
func loadConfig(envFile string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
