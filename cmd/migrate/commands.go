package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/carbon-ledger/pkg/config"
	"github.com/angelmondragon/carbon-ledger/pkg/logger"
	"github.com/angelmondragon/carbon-ledger/pkg/migrate"
)

type rootOptions struct {
	Dir     string
	SeedDir string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the carbon ledger Postgres schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.Dir, "dir", migrate.DefaultDir, "goose migrations directory")
	root.PersistentFlags().StringVar(&opts.SeedDir, "seed-dir", migrate.DefaultSeedDir, "seed directory")

	for _, command := range []string{"up", "down", "status"} {
		root.AddCommand(newGooseCommand(opts, command))
	}
	root.AddCommand(
		newVersionCommand(opts),
		newSeedCommand(opts),
		newCreateCommand(opts),
		newValidateCommand(opts),
	)
	return root
}

func newGooseCommand(opts *rootOptions, command string) *cobra.Command {
	return &cobra.Command{
		Use:   command,
		Short: fmt.Sprintf("Run goose %s", command),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), command, opts.Dir, func(ctx context.Context, db *sql.DB) error {
				return migrate.Run(ctx, db, opts.Dir, command)
			})
		},
	}
}

func newVersionCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version <YYYYMMDDHHMMSS>",
		Short: "Migrate up or down to a specific version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), "version", opts.Dir, func(ctx context.Context, db *sql.DB) error {
				return migrate.MigrateToVersion(ctx, db, opts.Dir, args[0])
			})
		},
	}
}

func newSeedCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the reference entities and products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), "seed", opts.SeedDir, func(ctx context.Context, db *sql.DB) error {
				return migrate.Seed(ctx, db, opts.SeedDir)
			})
		},
	}
}

func newCreateCommand(opts *rootOptions) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty SQL migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.Dir
			if seed {
				dir = opts.SeedDir
			}
			path, err := migrate.CreateSQLMigration(dir, args[0])
			if err != nil {
				return fmt.Errorf("create migration: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "created migration:", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "create the file in the seed directory")
	return cmd
}

func newValidateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check migration and seed file names and goose markers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, dir := range []string{opts.Dir, opts.SeedDir} {
				if err := migrate.ValidateDir(dir); err != nil {
					return fmt.Errorf("migration validation failed: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migration validation passed")
			return nil
		},
	}
}

// withDatabase loads config and opens a lib/pq connection for goose.
func withDatabase(ctx context.Context, command, dir string, fn func(context.Context, *sql.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.FeatureFlags.UseSQLite {
		return fmt.Errorf("goose migrations target postgres; unset %s", config.EnvUseSQLite)
	}

	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{
		"env": cfg.App.Env,
		"cmd": command,
		"dir": dir,
	})

	db, err := sql.Open("postgres", cfg.DB.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		logg.Error(ctx, "resource not working: database", err)
		return fmt.Errorf("ping database: %w", err)
	}

	logg.Info(ctx, "migrate.start")
	if err := fn(ctx, db); err != nil {
		logg.Error(ctx, "migrate.failed", err)
		return err
	}
	logg.Info(ctx, "migrate.done")
	return nil
}
