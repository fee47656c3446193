package persistence

import (
	"context"
	"path/filepath"
	"strconv"

	"beamkit/internal/models"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// FilePersister implements pipeline.Stage for saving downloaded codes as <index>.png.
type FilePersister struct {
	fs          afero.Fs
	downloadDir string // Directory where files are saved
}

const defaultDownloadDir = "Download" // Default directory for saving files

// New creates a new FilePersister instance with an optional custom directory.
//
// Parameters:
//   - fs: Filesystem the files are written to.
//   - downloadDir: Optional variadic parameter for the directory path. Uses defaultDownloadDir if not provided.
//
// Returns:
//   - A pointer to a new FilePersister instance.
func New(fs afero.Fs, downloadDir ...string) *FilePersister {
	dir := defaultDownloadDir
	if len(downloadDir) > 0 && downloadDir[0] != "" {
		dir = downloadDir[0]
	}
	return &FilePersister{fs: fs, downloadDir: dir}
}

// PathFor returns the file an index is written to.
func (fp *FilePersister) PathFor(index int) string {
	return filepath.Join(fp.downloadDir, strconv.Itoa(index)+".png")
}

// Execute saves content received on the input channel and emits one
// models.Result per item.
//
// Parameters:
//   - ctx: Context for cancellation and timeouts.
//   - input: Channel of models.Content.
//   - output: Channel receiving a models.Result per content.
//   - logger: Logger for logging progress and errors.
//
// Returns:
//   - An error if the directory cannot be created or ctx is canceled, nil otherwise.
func (fp *FilePersister) Execute(ctx context.Context, input <-chan interface{}, output chan<- interface{}, logger *zap.Logger) error {
	if err := fp.fs.MkdirAll(fp.downloadDir, 0755); err != nil {
		return err
	}

	successCount := 0
	skipCount := 0
	failCount := 0

	for content := range input {
		c, ok := content.(models.Content)
		if !ok {
			logger.Warn("invalid input type, expected Content", zap.Any("type", content))
			continue
		}

		result := fp.persist(c, logger)
		switch result.Status {
		case models.StatusSuccess:
			successCount++
		case models.StatusSkipped:
			skipCount++
		default:
			failCount++
		}

		select {
		case <-ctx.Done():
			logger.Warn("persistence interrupted", zap.Error(ctx.Err()))
			return ctx.Err()
		case output <- result:
		}
	}

	logger.Info("persistence statistics",
		zap.Int("successful", successCount),
		zap.Int("skipped", skipCount),
		zap.Int("failed", failCount))
	return nil
}

func (fp *FilePersister) persist(c models.Content, logger *zap.Logger) models.Result {
	result := models.Result{URL: c.Record.URL, Index: c.Index}
	switch {
	case c.Skipped:
		result.Status = models.StatusSkipped
		return result
	case c.Error != nil:
		result.Status = models.StatusFailed
		result.Reason = c.Error.Error()
		return result
	}

	path := fp.PathFor(c.Index)
	logger.Debug("persisting file", zap.String("filepath", path))
	if err := afero.WriteFile(fp.fs, path, c.Data, 0644); err != nil {
		logger.Warn("persist failed",
			zap.String("url", c.Record.URL),
			zap.String("filepath", path),
			zap.Error(err))
		result.Status = models.StatusFailed
		result.Reason = err.Error()
		return result
	}

	result.Status = models.StatusSuccess
	result.Path = path
	result.Size = int64(len(c.Data))
	return result
}
