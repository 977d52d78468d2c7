package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/bookcatalog/internal/config"
	"github.com/dshills/bookcatalog/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
	Long: `Commands for applying and rolling back schema migrations.
The serve and mcp commands apply pending migrations on startup.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMigrate(cmd, storage.ApplyMigrations)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMigrate(cmd, storage.RollbackMigration)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMigrate(cmd, nil)
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}

// runMigrate opens the database without migrating it, runs step when set
// and prints the resulting schema version.
func runMigrate(cmd *cobra.Command, step func(ctx context.Context, db *sql.DB) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Only the database path matters here, so the full validation is skipped
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	db, err := storage.OpenWithoutMigrations(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	before, err := storage.SchemaVersion(ctx, db)
	if err != nil {
		return err
	}
	if step != nil {
		if err := step(ctx, db); err != nil {
			return err
		}
	}
	after, err := storage.SchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	switch {
	case step == nil:
		cmd.Printf("%s %s\n", cyan("Schema version:"), after)
	case before == after:
		cmd.Printf("%s schema already at %s\n", yellow("Nothing to do:"), after)
	default:
		cmd.Printf("%s schema %s -> %s\n", green("✓"), before, after)
	}
	return nil
}
