package filereader

import (
	"bufio"
	"context"
	"fmt"
	"unicode/utf8"

	"beamkit/internal/models"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const maxLineSize = 1024 * 1024

// scanLines splits on every line boundary:
// \n, \r\n, a lone \r, \v, \f, the \x1c-\x1e separators, NEL and the
// Unicode line and paragraph separators. A final line needs no terminator.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for i := 0; i < len(data); {
		if !atEOF && !utf8.FullRune(data[i:]) {
			return 0, nil, nil
		}
		r, size := utf8.DecodeRune(data[i:])
		switch r {
		case '\r':
			if i+1 == len(data) && !atEOF {
				return 0, nil, nil
			}
			if i+1 < len(data) && data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		case '\n', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
			return i + size, data[:i], nil
		}
		i += size
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// FileReader implements pipeline.Stage for a newline separated URL list.
type FileReader struct {
	fs   afero.Fs
	path string
}

// New creates a new FileReader
func New(fs afero.Fs, path string) *FileReader {
	return &FileReader{fs: fs, path: path}
}

// ReadLines returns every line of the list. A trailing newline does not
// produce an extra empty line; blank lines in between are kept.
func (fr *FileReader) ReadLines() ([]string, error) {
	file, err := fr.fs.Open(fr.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(scanLines)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", fr.path, err)
	}
	return lines, nil
}

// Execute reads the whole list first so every record carries the list
// length, then emits the records in order.
func (fr *FileReader) Execute(ctx context.Context, input <-chan interface{}, output chan<- interface{}, logger *zap.Logger) error {
	lines, err := fr.ReadLines()
	if err != nil {
		return err
	}

	for i, line := range lines {
		select {
		case <-ctx.Done():
			logger.Warn("file reading interrupted", zap.Error(ctx.Err()))
			return ctx.Err()
		case output <- models.URLRecord{Position: i, Total: len(lines), URL: line}:
			logger.Debug("read URL", zap.Int("position", i), zap.String("url", line))
		}
	}

	logger.Info("finished reading URLs", zap.String("path", fr.path), zap.Int("total_urls", len(lines)))
	return nil
}
