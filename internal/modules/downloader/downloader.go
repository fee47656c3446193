package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"beamkit/internal/models"
	"beamkit/internal/modules/indexing"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// DefaultTemplate identifies QR code image links among the extracted URLs.
const DefaultTemplate = "https://chart.googleapis.com/chart?cht=qr&chs=512x512&chl="

// Downloader fetches matching URLs one at a time, in list order.
type Downloader struct {
	client    *http.Client
	plan      indexing.Plan
	template  string
	userAgent string
}

type Option func(*Downloader)

func WithClient(c *http.Client) Option {
	return func(d *Downloader) { d.client = c }
}

// WithTimeout bounds each request. Zero means no limit.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Downloader) { d.client = &http.Client{Timeout: timeout} }
}

func WithTemplate(template string) Option {
	return func(d *Downloader) { d.template = template }
}

func WithUserAgent(ua string) Option {
	return func(d *Downloader) { d.userAgent = ua }
}

// New creates a Downloader. The plan's Total is taken from each record.
func New(start int, direction indexing.Direction, opts ...Option) *Downloader {
	d := &Downloader{
		client:   http.DefaultClient,
		plan:     indexing.Plan{Start: start, Direction: direction},
		template: DefaultTemplate,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Matches reports whether url contains the QR chart template.
func (d *Downloader) Matches(url string) bool {
	return strings.Contains(url, d.template)
}

// Execute implements pipeline.Stage. It consumes models.URLRecord and emits
// one models.Content per record.
func (d *Downloader) Execute(ctx context.Context, input <-chan interface{}, output chan<- interface{}, logger *zap.Logger) error {
	for item := range input {
		rec, ok := item.(models.URLRecord)
		if !ok {
			logger.Warn("invalid input type, expected URLRecord", zap.Any("type", item))
			continue
		}
		if err := ctx.Err(); err != nil {
			logger.Warn("download interrupted", zap.Error(err))
			return err
		}

		content := d.process(ctx, rec, logger)
		select {
		case output <- content:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (d *Downloader) process(ctx context.Context, rec models.URLRecord, logger *zap.Logger) models.Content {
	plan := d.plan
	plan.Total = rec.Total
	index := plan.IndexAt(rec.Position)

	if !d.Matches(rec.URL) {
		return models.Content{Record: rec, Index: index, Skipped: true}
	}

	content := d.downloadURL(ctx, rec.URL)
	content.Record = rec
	content.Index = index

	if content.Error != nil {
		logger.Warn("download failed", zap.String("url", rec.URL), zap.Int("index", index), zap.Error(content.Error))
		return content
	}
	if content.StatusCode < 200 || content.StatusCode > 299 {
		logger.Warn("unexpected status, keeping body",
			zap.String("url", rec.URL),
			zap.Int("status", content.StatusCode))
	}
	if !strings.HasPrefix(content.MIME, "image/") {
		logger.Warn("body is not an image",
			zap.String("url", rec.URL),
			zap.String("mime", content.MIME))
	}
	logger.Debug("downloaded",
		zap.String("url", rec.URL),
		zap.Int("index", index),
		zap.Int("bytes", len(content.Data)),
		zap.Duration("duration", content.Duration))
	return content
}

// downloadURL issues a single GET. The body is returned whatever the status.
func (d *Downloader) downloadURL(ctx context.Context, url string) models.Content {
	start := time.Now()
	content := models.Content{Record: models.URLRecord{URL: url}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		content.Error = fmt.Errorf("build request: %w", err)
		content.Duration = time.Since(start)
		return content
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		content.Error = fmt.Errorf("download failed: %w", err)
		content.Duration = time.Since(start)
		return content
	}
	defer resp.Body.Close()

	content.StatusCode = resp.StatusCode
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		content.Error = fmt.Errorf("read failed: %w", err)
		content.Duration = time.Since(start)
		return content
	}

	content.Data = data
	content.MIME = mimetype.Detect(data).String()
	content.Duration = time.Since(start)
	return content
}
