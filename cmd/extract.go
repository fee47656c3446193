package cmd

import (
	"fmt"

	"beamkit/internal/modules/extractor"

	"github.com/spf13/cobra"
)

func newExtractCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Write the QR code URLs of a single-use code export as a list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Extract
			n, err := extractor.New(a.fs, cfg.Input, cfg.Output).Run(cmd.Context(), a.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d URLs to %s\n", n, cfg.Output)
			return nil
		},
	}

	cmd.Flags().StringP("input", "i", "input.txt", "JSON export to read")
	cmd.Flags().StringP("output", "o", "output.txt", "URL list to write")
	a.v.BindPFlag("extract.input", cmd.Flags().Lookup("input"))
	a.v.BindPFlag("extract.output", cmd.Flags().Lookup("output"))
	return cmd
}
