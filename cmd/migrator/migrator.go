package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var dsn, dir string

	cmd := &cobra.Command{
		Use:   "migrator",
		Short: "Apply database migrations for the CRM api-gateway",
		Long: `Apply goose migrations (users, outbox) to PostgreSQL.

The stored functions the CRM calls are owned by the database team and are
not managed here.

Examples:
  migrator up                       # apply all pending migrations
  migrator down                     # roll back the latest migration
  migrator status --dir ./migrations
`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&dsn, "dsn", os.Getenv("DB_DSN"), "PostgreSQL DSN (default $DB_DSN)")
	cmd.PersistentFlags().StringVar(&dir, "dir", "migrations", "Directory with goose migrations")

	run := func(fn func(ctx context.Context, db *sql.DB, dir string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return withDB(dsn, func(db *sql.DB) error { return fn(ctx, db, dir) })
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, db *sql.DB, dir string) error {
				return goose.UpContext(ctx, db, dir)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, db *sql.DB, dir string) error {
				return goose.DownContext(ctx, db, dir)
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print migration status",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, db *sql.DB, dir string) error {
				return goose.StatusContext(ctx, db, dir)
			}),
		},
	)
	return cmd
}

func withDB(dsn string, fn func(db *sql.DB) error) error {
	if dsn == "" {
		return errors.New("dsn is empty: pass --dsn or set DB_DSN")
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	return fn(db)
}
