package cmd

import (
	"fmt"

	"beamkit/internal/modules/rewriter"

	"github.com/spf13/cobra"
)

func newRewriteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewrite",
		Short: "Replace an IPFS link in every file of a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Rewrite
			report, err := rewriter.New(a.fs, cfg.Dir, cfg.Source, cfg.Target, cfg.DryRun).Run(cmd.Context(), a.logger)

			verb := "Rewrote"
			if cfg.DryRun {
				verb = "Would rewrite"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d of %d files (%d replacements, %d failed)\n",
				verb, report.Changed, report.Scanned, report.Replacements, report.Failed)
			return err
		},
	}

	cmd.Flags().StringP("dir", "d", rewriter.DefaultDir, "Directory of files to rewrite")
	cmd.Flags().String("source", rewriter.DefaultSource, "Link to replace")
	cmd.Flags().String("target", rewriter.DefaultTarget, "Replacement link")
	cmd.Flags().Bool("dry-run", false, "Report what would change without writing")
	a.v.BindPFlag("rewrite.dir", cmd.Flags().Lookup("dir"))
	a.v.BindPFlag("rewrite.source", cmd.Flags().Lookup("source"))
	a.v.BindPFlag("rewrite.target", cmd.Flags().Lookup("target"))
	a.v.BindPFlag("rewrite.dry_run", cmd.Flags().Lookup("dry-run"))
	return cmd
}
