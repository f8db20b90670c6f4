package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	documentrepo "github.com/kailas-cloud/pagemark/internal/repository/document"
	pointrepo "github.com/kailas-cloud/pagemark/internal/repository/point"
	documentuc "github.com/kailas-cloud/pagemark/internal/usecase/document"
	pointuc "github.com/kailas-cloud/pagemark/internal/usecase/point"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var documentID, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the points of a document as CSV",
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

			docs := documentuc.New(documentrepo.New(store))
			points := pointuc.New(pointrepo.New(store), docs)

			data, err := points.ExportCSV(cmd.Context(), documentID)
			if err != nil {
				return fmt.Errorf("export %s: %w", documentID, err)
			}

			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(filepath.Clean(out), data, 0o600); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			cmd.PrintErrf("wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&documentID, "document", "", "document ID (required)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("document")
	return cmd
}
