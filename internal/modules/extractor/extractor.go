package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"beamkit/internal/models"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ErrMissingField is returned when an edge lacks part of the node.qr.url path.
var ErrMissingField = errors.New("missing field")

// object returns the exact-case member key of raw, which must be a JSON
// object. Missing members and nulls are reported as ErrMissingField.
func object(raw json.RawMessage, key, path string) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		if path == "" {
			path = "document"
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	v, ok := fields[key]
	if !ok || isNull(v) {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, joinPath(path, key))
	}
	return v, nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// Extract decodes an export and returns one record per edge, in order.
// The whole input must be a single JSON document and keys match exactly.
func Extract(r io.Reader) ([]models.CodeRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	var doc json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}

	raw, err := object(doc, "data", "")
	if err != nil {
		return nil, err
	}
	if raw, err = object(raw, "GetSingleUseCodes", "data"); err != nil {
		return nil, err
	}
	if raw, err = object(raw, "edges", "data.GetSingleUseCodes"); err != nil {
		return nil, err
	}

	var edges []json.RawMessage
	if err := json.Unmarshal(raw, &edges); err != nil {
		return nil, fmt.Errorf("data.GetSingleUseCodes.edges: %w", err)
	}

	records := make([]models.CodeRecord, 0, len(edges))
	for i, e := range edges {
		path := fmt.Sprintf("edges[%d]", i)
		raw, err := object(e, "node", path)
		if err != nil {
			return nil, err
		}
		if raw, err = object(raw, "qr", path+".node"); err != nil {
			return nil, err
		}
		if raw, err = object(raw, "url", path+".node.qr"); err != nil {
			return nil, err
		}
		var url string
		if err := json.Unmarshal(raw, &url); err != nil {
			return nil, fmt.Errorf("%s.node.qr.url: %w", path, err)
		}
		records = append(records, models.CodeRecord{URL: url})
	}
	return records, nil
}

// Extractor reads an export file and writes the URL list next to it.
type Extractor struct {
	fs         afero.Fs
	inputPath  string
	outputPath string
}

func New(fs afero.Fs, inputPath, outputPath string) *Extractor {
	return &Extractor{fs: fs, inputPath: inputPath, outputPath: outputPath}
}

// Run extracts the URLs and overwrites the output file with them joined by
// newlines. The output is left untouched if extraction fails.
func (e *Extractor) Run(ctx context.Context, logger *zap.Logger) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f, err := e.fs.Open(e.inputPath)
	if err != nil {
		return 0, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	records, err := Extract(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", e.inputPath, err)
	}
	logger.Debug("extracted records", zap.String("input", e.inputPath), zap.Int("count", len(records)))

	urls := make([]string, len(records))
	for i, r := range records {
		urls[i] = r.URL
	}

	if err := afero.WriteFile(e.fs, e.outputPath, []byte(strings.Join(urls, "\n")), 0644); err != nil {
		return 0, fmt.Errorf("write url list: %w", err)
	}

	logger.Info("url list written",
		zap.String("output", e.outputPath),
		zap.Int("total_urls", len(urls)))
	return len(urls), nil
}
