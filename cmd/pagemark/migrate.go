package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long:  `Opens the configured SQLite database, applies every pending migration and prints the schema version.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg, cliLogger(opts.env))
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			v, err := store.Version(cmd.Context())
			if err != nil {
				return fmt.Errorf("read schema version: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", v, store.Path())
			return nil
		},
	}
}
