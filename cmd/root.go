package cmd

import (
	"context"
	"os"

	"beamkit/internal/config"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	fs     afero.Fs
	v      *viper.Viper
	logger *zap.Logger
	level  zap.AtomicLevel
	cfg    *config.Config
}

// NewRootCmd builds the command tree. fs is where every file is read and written.
func NewRootCmd(fs afero.Fs, logger *zap.Logger, level zap.AtomicLevel) *cobra.Command {
	a := &app{fs: fs, v: viper.New(), logger: logger, level: level}
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "beamkit",
		Short: "Rip QR code images from a single-use code export and fix metadata links",
		Long: `beamkit extracts QR code URLs from a single-use code JSON export,
downloads the QR images as numbered PNG files and rewrites IPFS links
across a directory of metadata JSON files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Init(a.v, configFile); err != nil {
				return err
			}
			cfg, err := config.Load(a.v)
			if err != nil {
				return err
			}
			a.cfg = cfg

			var lvl zapcore.Level
			if err := lvl.Set(cfg.LogLevel); err != nil {
				return err
			}
			a.level.SetLevel(lvl)
			a.logger.Debug("configuration loaded", zap.String("config_file", a.v.ConfigFileUsed()))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a config file (yaml, toml or json)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	a.v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(newExtractCmd(a), newDownloadCmd(a), newRewriteCmd(a))
	return rootCmd
}

// Execute runs the command line on the OS filesystem. level is raised or
// lowered by --log-level. It exits the process with status 1 on error.
func Execute(ctx context.Context, logger *zap.Logger, level zap.AtomicLevel) {
	if err := NewRootCmd(afero.NewOsFs(), logger, level).ExecuteContext(ctx); err != nil {
		logger.Error("execution failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
