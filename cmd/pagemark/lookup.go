package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/pagemark/internal/domain/match"
	"github.com/kailas-cloud/pagemark/internal/transport/pdf"
)

func newLookupCmd() *cobra.Command {
	var (
		page      int
		x, y      float64
		tolerance float64
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "lookup FILE.pdf",
		Short: "Print the words near a page coordinate of a local PDF",
		Long: `Extracts the words of one page and prints those whose origin lies within
the tolerance of (x, y). Coordinates are PDF points with the origin at the bottom-left.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extractor := pdf.NewExtractor(nil, cliLogger("local"))
			p, err := extractor.ExtractFile(cmd.Context(), args[0], page)
			if err != nil {
				return fmt.Errorf("extract page %d: %w", page, err)
			}

			tokens, err := match.Match(p.Tokens, x, y, tolerance)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := json.MarshalIndent(tokens, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal tokens: %w", err)
				}
				_, _ = fmt.Fprintln(out, string(data))
				return nil
			}

			if len(tokens) == 0 {
				_, _ = fmt.Fprintln(out, "No text found near the coordinate.")
				return nil
			}
			for _, t := range tokens {
				_, _ = fmt.Fprintf(out, "%-30s x0=%.2f y0=%.2f x1=%.2f y1=%.2f\n", t.Text, t.X0, t.Y0, t.X1, t.Y1)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number (1-based)")
	cmd.Flags().Float64Var(&x, "x", 0, "x coordinate in points")
	cmd.Flags().Float64Var(&y, "y", 0, "y coordinate in points")
	cmd.Flags().Float64Var(&tolerance, "tolerance", match.DefaultTolerance, "match tolerance in points")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output tokens as JSON")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")
	return cmd
}
