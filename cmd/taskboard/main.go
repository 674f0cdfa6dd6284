package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/maxviazov/taskboard-service/internal/config"
	"github.com/maxviazov/taskboard-service/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var version = "dev"

const defaultConfigPath = "config.yaml"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "taskboard",
		Short:         "Taskboard - projects, tasks and a dashboard over HTTP",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML config; APP_* env variables override it")

	serve := serveCmd(&configPath)
	// Running the binary without a subcommand starts the server.
	root.RunE = serve.RunE

	root.AddCommand(serve)
	root.AddCommand(migrateCmd(&configPath))
	root.AddCommand(pagesCmd())
	return root
}

// loadConfig reads the config file. The default path is optional so that a container
// configured purely through env still starts; an explicitly passed path must exist.
func loadConfig(cmd *cobra.Command, path string) (*config.Config, error) {
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config loading failed: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	l, err := logger.New(&cfg.Logger)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("logger initialization failed: %w", err)
	}
	return l.With().Str("service", cfg.App.Name).Str("version", cfg.App.Version).Logger(), nil
}
