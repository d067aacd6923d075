package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/platform/sqlstore"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

// newMigrateCommand builds "migrate up|down|status|version" over the embedded migrations.
func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		migrateSubcommand("up", "Apply all pending migrations", func(ctx context.Context, p *goose.Provider, out io.Writer) error {
			results, err := p.Up(ctx)
			for _, r := range results {
				fmt.Fprintf(out, "applied %s (%s)\n", r.Source.Path, r.Duration)
			}
			return err
		}),
		migrateSubcommand("down", "Roll back the most recent migration", func(ctx context.Context, p *goose.Provider, out io.Writer) error {
			r, err := p.Down(ctx)
			if r != nil {
				fmt.Fprintf(out, "rolled back %s\n", r.Source.Path)
			}
			return err
		}),
		migrateSubcommand("status", "Show the state of every migration", func(ctx context.Context, p *goose.Provider, out io.Writer) error {
			statuses, err := p.Status(ctx)
			if err != nil {
				return err
			}
			for _, s := range statuses {
				applied := "pending"
				if s.State == goose.StateApplied {
					applied = "applied " + s.AppliedAt.UTC().Format("2006-01-02 15:04:05")
				}
				fmt.Fprintf(out, "%-40s %s\n", s.Source.Path, applied)
			}
			return nil
		}),
		migrateSubcommand("version", "Print the current schema version", func(ctx context.Context, p *goose.Provider, out io.Writer) error {
			v, err := p.GetDBVersion(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d\n", v)
			return nil
		}),
	)
	return cmd
}

type migrationAction func(ctx context.Context, p *goose.Provider, out io.Writer) error

func migrateSubcommand(use, short string, action migrationAction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := initializeApp()
			if err != nil {
				return err
			}
			ctx := logger.WithLogger(cmd.Context(), log)

			db, dialect, err := sqlstore.Open(ctx, cfg.Database.URL, sqlstore.Options{
				MaxOpenConns: cfg.Database.MaxOpenConns,
			})
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()

			provider, err := sqlstore.NewMigrator(db.DB, dialect)
			if err != nil {
				return err
			}
			log.Info("running migration command",
				slog.String("command", use),
				slog.String("dialect", string(dialect)))
			if err := action(ctx, provider, cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("migrate %s failed: %w", use, err)
			}
			return nil
		},
	}
}
