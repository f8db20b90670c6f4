package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pagemark/internal/config"
	"github.com/kailas-cloud/pagemark/internal/db/sqlite"
	logpkg "github.com/kailas-cloud/pagemark/internal/logger"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	env    string
	dbPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "pagemark",
		Short: "Capture and look up named coordinates on PDF pages",
		Long: `pagemark stores named points on PDF pages and finds the text under a coordinate.
Running it without a subcommand starts the HTTP server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "config environment (config/<env>.yaml)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "override database.path")

	root.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newExportCmd(opts),
		newLookupCmd(),
		newVersionCmd(),
	)
	return root
}

// loadConfig reads the environment config and applies flag overrides.
func (o *rootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.env)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if o.dbPath != "" {
		cfg.Database.Path = o.dbPath
	}
	return cfg, nil
}

// openStore opens the SQLite store, applying pending migrations, and waits for it to answer.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (*sqlite.Store, error) {
	store, err := sqlite.NewStore(ctx, sqlite.Config{
		Path:          cfg.Database.Path,
		BusyTimeoutMS: cfg.Database.BusyTimeoutMS,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Debug("Database ready", zap.String("path", store.Path()))
	return store, nil
}

// cliLogger builds a logger for one-shot commands: warnings and errors only.
func cliLogger(env string) *zap.Logger {
	l, err := logpkg.NewLogger(env, "warn")
	if err != nil {
		return zap.NewNop()
	}
	return l
}
