package cmd

import (
	"context"
	"fmt"
	"io"

	"beamkit/internal/models"
	"beamkit/internal/modules/downloader"
	"beamkit/internal/modules/filereader"
	"beamkit/internal/modules/persistence"
	"beamkit/internal/modules/pipeline"
	"beamkit/internal/prompt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newDownloadCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download every QR code image of the URL list as <index>.png",
		Long: `Download reads the URL list written by extract and saves every QR chart
image as <index>.png. Indices count up or down from the starting point.
Missing --start or --direction values are read from standard input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, a)
		},
	}

	cmd.Flags().StringP("input", "i", "output.txt", "URL list to read")
	cmd.Flags().StringP("dir", "d", "Download", "Directory the images are saved to")
	cmd.Flags().StringP("start", "s", "", "Starting point (integer)")
	cmd.Flags().String("direction", "", "Direction: up or down")
	cmd.Flags().String("template", downloader.DefaultTemplate, "Only URLs containing this are downloaded")
	cmd.Flags().Duration("timeout", 0, "Per request timeout, 0 for none")
	cmd.Flags().String("user-agent", "", "User-Agent header sent with each request")
	for key, flag := range map[string]string{
		"download.input":      "input",
		"download.dir":        "dir",
		"download.start":      "start",
		"download.direction":  "direction",
		"download.template":   "template",
		"download.timeout":    "timeout",
		"download.user_agent": "user-agent",
	} {
		a.v.BindPFlag(key, cmd.Flags().Lookup(flag))
	}
	return cmd
}

func runDownload(cmd *cobra.Command, a *app) error {
	cfg := a.cfg.Download
	out := cmd.OutOrStdout()

	p := prompt.New(cmd.InOrStdin(), out, prompt.IsTerminal(cmd.InOrStdin()))
	if err := p.Fill(&cfg.Start, "Enter the starting point: ", "start"); err != nil {
		return err
	}
	if err := p.Fill(&cfg.Direction, "Enter the direction (up or down): ", "direction"); err != nil {
		return err
	}
	start, direction, err := cfg.Plan()
	if err != nil {
		return err
	}

	opts := []downloader.Option{downloader.WithTemplate(cfg.Template), downloader.WithUserAgent(cfg.UserAgent)}
	if cfg.Timeout > 0 {
		opts = append(opts, downloader.WithTimeout(cfg.Timeout))
	}

	a.logger.Info("starting URL processing",
		zap.String("list", cfg.Input),
		zap.String("dir", cfg.Dir),
		zap.Int("start", start),
		zap.Stringer("direction", direction))

	pipe := pipeline.New(a.logger)
	pipe.AddStage(filereader.New(a.fs, cfg.Input))
	pipe.AddStage(downloader.New(start, direction, opts...))
	pipe.AddStage(persistence.New(a.fs, cfg.Dir))
	pipe.AddStage(&reporter{out: out})

	src := make(chan interface{})
	close(src)
	items, err := pipe.Run(cmd.Context(), src)
	if err != nil {
		return err
	}

	results := make([]models.Result, 0, len(items))
	for _, item := range items {
		results = append(results, item.(models.Result))
	}
	summary := models.Summarize(results)

	fmt.Fprintf(out, "%d downloaded (%s), %d skipped, %d failed\n",
		summary.Succeeded, humanize.Bytes(uint64(summary.Bytes)), summary.Skipped, summary.Failed)
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", summary.Failed, summary.Failed+summary.Succeeded)
	}
	return nil
}

// reporter prints a line per saved image as results arrive and passes them on.
type reporter struct {
	out io.Writer
}

var downloaded = color.New(color.FgGreen)

func (r *reporter) Execute(ctx context.Context, input <-chan interface{}, output chan<- interface{}, logger *zap.Logger) error {
	for item := range input {
		if res, ok := item.(models.Result); ok {
			switch res.Status {
			case models.StatusSuccess:
				downloaded.Fprintf(r.out, "Downloaded: %s\n", res.Path)
			case models.StatusFailed:
				logger.Error("download failed", zap.String("url", res.URL), zap.Int("index", res.Index), zap.String("reason", res.Reason))
			}
		}
		select {
		case output <- item:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
