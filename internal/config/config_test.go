package config

import (
	"testing"
	"time"

	"beamkit/internal/modules/downloader"
	"beamkit/internal/modules/indexing"
	"beamkit/internal/modules/rewriter"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	require.NoError(t, Init(v, ""))

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "input.txt", cfg.Extract.Input)
	assert.Equal(t, "output.txt", cfg.Extract.Output)
	assert.Equal(t, "output.txt", cfg.Download.Input)
	assert.Equal(t, "Download", cfg.Download.Dir)
	assert.Equal(t, downloader.DefaultTemplate, cfg.Download.Template)
	assert.Zero(t, cfg.Download.Timeout)
	assert.Empty(t, cfg.Download.Start)
	assert.Empty(t, cfg.Download.Direction)
	assert.Equal(t, rewriter.DefaultDir, cfg.Rewrite.Dir)
	assert.Equal(t, rewriter.DefaultSource, cfg.Rewrite.Source)
	assert.Equal(t, rewriter.DefaultTarget, cfg.Rewrite.Target)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("BEAMKIT_DOWNLOAD_START", "12")
	t.Setenv("BEAMKIT_DOWNLOAD_DIRECTION", "DOWN")
	t.Setenv("BEAMKIT_DOWNLOAD_TIMEOUT", "3s")

	v := viper.New()
	require.NoError(t, Init(v, ""))
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Download.Timeout)
	start, dir, err := cfg.Download.Plan()
	require.NoError(t, err)
	assert.Equal(t, 12, start)
	assert.Equal(t, indexing.Down, dir)
}

func TestLoad_ConfigFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/beamkit.yaml", []byte(`
download:
  start: 40
  direction: up
  dir: codes
rewrite:
  dir: metadata
`), 0644))

	v := viper.New()
	v.SetFs(fs)
	require.NoError(t, Init(v, "/beamkit.yaml"))
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "40", cfg.Download.Start)
	assert.Equal(t, "codes", cfg.Download.Dir)
	assert.Equal(t, "metadata", cfg.Rewrite.Dir)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{name: "bad direction", key: "download.direction", val: "sideways"},
		{name: "non integer start", key: "download.start", val: "five"},
		{name: "bad log level", key: "log_level", val: "loud"},
		{name: "empty rewrite source", key: "rewrite.source", val: ""},
		{name: "empty download dir", key: "download.dir", val: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			require.NoError(t, Init(v, ""))
			v.Set(tt.key, tt.val)

			_, err := Load(v)
			assert.ErrorContains(t, err, "invalid config")
		})
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	v := viper.New()
	v.SetFs(afero.NewMemMapFs())
	assert.Error(t, Init(v, "/nope.yaml"))
}

func TestDownloadConfig_Plan(t *testing.T) {
	start, dir, err := DownloadConfig{Start: "-3", Direction: "up"}.Plan()
	require.NoError(t, err)
	assert.Equal(t, -3, start)
	assert.Equal(t, indexing.Up, dir)

	_, _, err = DownloadConfig{Start: "1.5", Direction: "up"}.Plan()
	assert.ErrorContains(t, err, "integer")

	_, _, err = DownloadConfig{Start: "1", Direction: "left"}.Plan()
	assert.ErrorIs(t, err, indexing.ErrInvalidDirection)
}
