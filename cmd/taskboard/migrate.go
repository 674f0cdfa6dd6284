package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/maxviazov/taskboard-service/internal/repository"
	"github.com/maxviazov/taskboard-service/migrations"
	"github.com/spf13/cobra"
)

func migrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect the embedded database migrations",
	}
	steps := []struct {
		use, short string
		run        func(context.Context, *sql.DB) error
	}{
		{"up", "Apply every pending migration", migrations.Up},
		{"down", "Roll back the most recent migration", migrations.Down},
		{"status", "Print the state of each migration", migrations.Status},
	}
	for _, s := range steps {
		run := s.run
		cmd.AddCommand(&cobra.Command{
			Use:   s.use,
			Short: s.short,
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, _ []string) error {
				return withDB(c, *configPath, run)
			},
		})
	}
	return cmd
}

func withDB(cmd *cobra.Command, configPath string, fn func(context.Context, *sql.DB) error) error {
	cfg, err := loadConfig(cmd, configPath)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	db, err := sql.Open("pgx", repository.DSN(cfg.Postgres))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := fn(ctx, db); err != nil {
		return err
	}
	log.Info().Str("command", cmd.Name()).Msg("migrations done")
	return nil
}
