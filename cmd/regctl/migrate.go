package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"regdesk/internal/platform/config"
	"regdesk/internal/platform/database"
	"regdesk/migrations"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded SQL migrations to DATABASE_URL",
		Long: `Apply every embedded *.up.sql migration in order.

Migrations are idempotent, so running migrate twice is safe.

Examples:
  regctl migrate
  regctl migrate --list`,
		Args: cobra.NoArgs,
		RunE: runMigrate,
	}
	cmd.Flags().Bool("list", false, "list the migrations without applying them")
	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	if list, _ := cmd.Flags().GetBool("list"); list {
		files, err := migrations.UpFiles()
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintln(out, f)
		}
		return nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required for migrate")
	}

	pool, err := database.New(cmd.Context(), database.DefaultConfig(cfg.DatabaseURL))
	if err != nil {
		return err
	}
	defer pool.Close() //nolint:errcheck // process exits right after

	applied, err := migrations.Apply(cmd.Context(), pool.DB())
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	for _, f := range applied {
		fmt.Fprintf(out, "applied %s\n", f)
	}
	return nil
}

func loadConfig(cmd *cobra.Command) (config.Server, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	return config.Load(envFile)
}
