package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"beamkit/internal/modules/downloader"
	"beamkit/internal/modules/indexing"
	"beamkit/internal/modules/rewriter"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const EnvPrefix = "BEAMKIT"

type Config struct {
	LogLevel string         `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	Extract  ExtractConfig  `mapstructure:"extract"`
	Download DownloadConfig `mapstructure:"download"`
	Rewrite  RewriteConfig  `mapstructure:"rewrite"`
}

type ExtractConfig struct {
	Input  string `mapstructure:"input" validate:"required"`
	Output string `mapstructure:"output" validate:"required"`
}

type DownloadConfig struct {
	Input     string        `mapstructure:"input" validate:"required"`
	Dir       string        `mapstructure:"dir" validate:"required"`
	Template  string        `mapstructure:"template" validate:"required"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gte=0"`
	UserAgent string        `mapstructure:"user_agent"`

	// Start and Direction stay empty when not supplied so the caller can
	// prompt for them.
	Start     string `mapstructure:"start" validate:"omitempty,numeric"`
	Direction string `mapstructure:"direction" validate:"omitempty,oneof=up down"`
}

type RewriteConfig struct {
	Dir    string `mapstructure:"dir" validate:"required"`
	Source string `mapstructure:"source" validate:"required"`
	Target string `mapstructure:"target"`
	DryRun bool   `mapstructure:"dry_run"`
}

// SetDefaults registers the values the original scripts hard-coded.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("extract.input", "input.txt")
	v.SetDefault("extract.output", "output.txt")

	v.SetDefault("download.input", "output.txt")
	v.SetDefault("download.dir", "Download")
	v.SetDefault("download.template", downloader.DefaultTemplate)
	v.SetDefault("download.timeout", 0)
	v.SetDefault("download.user_agent", "")
	v.SetDefault("download.start", "")
	v.SetDefault("download.direction", "")

	v.SetDefault("rewrite.dir", rewriter.DefaultDir)
	v.SetDefault("rewrite.source", rewriter.DefaultSource)
	v.SetDefault("rewrite.target", rewriter.DefaultTarget)
	v.SetDefault("rewrite.dry_run", false)
}

// Init prepares v for env lookups and reads configFile when given.
func Init(v *viper.Viper, configFile string) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if configFile == "" {
		return nil
	}
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Load unmarshals and validates the resolved configuration.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Download.Start = strings.TrimSpace(cfg.Download.Start)
	cfg.Download.Direction = strings.ToLower(strings.TrimSpace(cfg.Download.Direction))

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate reports every invalid field in one error.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Plan parses the download start and direction. Both must be set.
func (d DownloadConfig) Plan() (int, indexing.Direction, error) {
	start, err := strconv.Atoi(d.Start)
	if err != nil {
		return 0, indexing.Up, fmt.Errorf("starting point must be an integer, got %q", d.Start)
	}
	dir, err := indexing.ParseDirection(d.Direction)
	if err != nil {
		return 0, indexing.Up, err
	}
	return start, dir, nil
}
