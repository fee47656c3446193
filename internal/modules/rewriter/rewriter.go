package rewriter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	DefaultDir    = "json"
	DefaultSource = "https://nftstorage.link/ipfs/bafybeihxqkih2kxscy47m3ncxj244qf6bpxijzbzd3vnlxsp2hv6oa3kli"
	DefaultTarget = "https://nftstorage.link/ipfs/bafybeidecivwnewezc6xk7zmkci54y3haekiwg6lmaaa6b4l4t37ewsu"
)

var ErrEmptySource = errors.New("source link must not be empty")

// Report counts what a rewrite pass did.
type Report struct {
	Scanned      int
	Changed      int
	Replacements int
	Failed       int
}

// Rewriter replaces one literal link with another in every file of a directory.
type Rewriter struct {
	fs     afero.Fs
	dir    string
	source []byte
	target []byte
	dryRun bool
}

func New(fs afero.Fs, dir, source, target string, dryRun bool) *Rewriter {
	return &Rewriter{
		fs:     fs,
		dir:    dir,
		source: []byte(source),
		target: []byte(target),
		dryRun: dryRun,
	}
}

// Run scans the directory once. Files whose name starts with a dot are
// never opened. Per-file failures do not stop the scan and are returned
// combined.
func (r *Rewriter) Run(ctx context.Context, logger *zap.Logger) (Report, error) {
	var report Report
	if len(r.source) == 0 {
		return report, ErrEmptySource
	}

	entries, err := afero.ReadDir(r.fs, r.dir)
	if err != nil {
		return report, fmt.Errorf("read dir %s: %w", r.dir, err)
	}

	var errs error
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, multierr.Append(errs, err)
		}
		if strings.HasPrefix(entry.Name(), ".") || !entry.Mode().IsRegular() {
			continue
		}
		report.Scanned++

		path := filepath.Join(r.dir, entry.Name())
		n, err := r.rewriteFile(path, entry.Mode().Perm())
		if err != nil {
			logger.Warn("rewrite failed", zap.String("file", path), zap.Error(err))
			report.Failed++
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		if n > 0 {
			report.Changed++
			report.Replacements += n
			logger.Debug("rewrote file", zap.String("file", path), zap.Int("replacements", n), zap.Bool("dry_run", r.dryRun))
		}
	}

	logger.Info("rewrite statistics",
		zap.String("dir", r.dir),
		zap.Int("scanned", report.Scanned),
		zap.Int("changed", report.Changed),
		zap.Int("replacements", report.Replacements),
		zap.Int("failed", report.Failed),
		zap.Bool("dry_run", r.dryRun))
	return report, errs
}

// rewriteFile returns the number of replacements made. Files without a
// match are left as they are.
func (r *Rewriter) rewriteFile(path string, perm os.FileMode) (int, error) {
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return 0, err
	}

	n := bytes.Count(data, r.source)
	if n == 0 || r.dryRun {
		return n, nil
	}

	if err := r.replaceFile(path, bytes.ReplaceAll(data, r.source, r.target), perm); err != nil {
		return 0, err
	}
	return n, nil
}

// replaceFile writes data next to path and renames it over path, so a
// failed write leaves the original untouched. The temporary name starts
// with a dot and is therefore never picked up by a scan.
func (r *Rewriter) replaceFile(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := afero.TempFile(r.fs, filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer func() {
		if err != nil {
			r.fs.Remove(name)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = r.fs.Chmod(name, perm); err != nil {
		return err
	}
	return r.fs.Rename(name, path)
}
