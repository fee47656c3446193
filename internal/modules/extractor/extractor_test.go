package extractor

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const threeEdges = `{"data":{"GetSingleUseCodes":{"edges":[
	{"node":{"qr":{"url":"https://chart.googleapis.com/chart?cht=qr&chs=512x512&chl=a"}}},
	{"node":{"qr":{"url":"https://chart.googleapis.com/chart?cht=qr&chs=512x512&chl=b"}}},
	{"node":{"qr":{"url":"https://example.com/c.png"}}}
]}}}`

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      []string
		expectErr bool
		missing   bool
	}{
		{
			name:  "three edges",
			input: threeEdges,
			want: []string{
				"https://chart.googleapis.com/chart?cht=qr&chs=512x512&chl=a",
				"https://chart.googleapis.com/chart?cht=qr&chs=512x512&chl=b",
				"https://example.com/c.png",
			},
		},
		{
			name:  "no edges",
			input: `{"data":{"GetSingleUseCodes":{"edges":[]}}}`,
			want:  []string{},
		},
		{
			name:      "malformed json",
			input:     `{"data":`,
			expectErr: true,
		},
		{
			name:      "missing data",
			input:     `{}`,
			expectErr: true,
			missing:   true,
		},
		{
			name:      "missing edges",
			input:     `{"data":{"GetSingleUseCodes":{}}}`,
			expectErr: true,
			missing:   true,
		},
		{
			name:      "edge without qr",
			input:     `{"data":{"GetSingleUseCodes":{"edges":[{"node":{"qr":{"url":"x"}}},{"node":{}}]}}}`,
			expectErr: true,
			missing:   true,
		},
		{
			name:      "trailing garbage",
			input:     `{"data":{"GetSingleUseCodes":{"edges":[{"node":{"qr":{"url":"u"}}}]}}} trailing garbage`,
			expectErr: true,
		},
		{
			name:      "second document",
			input:     `{"data":{"GetSingleUseCodes":{"edges":[]}}}{}`,
			expectErr: true,
		},
		{
			name:      "wrong-case keys",
			input:     `{"DATA":{"getsingleusecodes":{"EDGES":[{"NODE":{"QR":{"URL":"u"}}}]}}}`,
			expectErr: true,
			missing:   true,
		},
		{
			name:      "wrong-case url key",
			input:     `{"data":{"GetSingleUseCodes":{"edges":[{"node":{"qr":{"URL":"u"}}}]}}}`,
			expectErr: true,
			missing:   true,
		},
		{
			name:      "url not a string",
			input:     `{"data":{"GetSingleUseCodes":{"edges":[{"node":{"qr":{"url":7}}}]}}}`,
			expectErr: true,
		},
		{
			name:      "edges not a list",
			input:     `{"data":{"GetSingleUseCodes":{"edges":{}}}}`,
			expectErr: true,
		},
		{
			name:      "null url",
			input:     `{"data":{"GetSingleUseCodes":{"edges":[{"node":{"qr":{"url":null}}}]}}}`,
			expectErr: true,
			missing:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Extract(strings.NewReader(tt.input))
			if tt.expectErr {
				require.Error(t, err)
				if tt.missing {
					assert.ErrorIs(t, err, ErrMissingField)
				}
				assert.Nil(t, records)
				return
			}
			require.NoError(t, err)

			got := make([]string, len(records))
			for i, r := range records {
				got[i] = r.URL
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractor_Run(t *testing.T) {
	logger := zaptest.NewLogger(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "input.txt", []byte(threeEdges), 0644))

	n, err := New(fs, "input.txt", "output.txt").Run(context.Background(), logger)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	out, err := afero.ReadFile(fs, "output.txt")
	require.NoError(t, err)
	assert.False(t, strings.HasSuffix(string(out), "\n"), "no trailing newline expected")

	lines := strings.Split(string(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "https://example.com/c.png", lines[2])
}

func TestExtractor_RunLeavesOutputOnFailure(t *testing.T) {
	logger := zaptest.NewLogger(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "input.txt", []byte(`{"data":{}}`), 0644))
	require.NoError(t, afero.WriteFile(fs, "output.txt", []byte("previous"), 0644))

	_, err := New(fs, "input.txt", "output.txt").Run(context.Background(), logger)
	require.ErrorIs(t, err, ErrMissingField)

	out, err := afero.ReadFile(fs, "output.txt")
	require.NoError(t, err)
	assert.Equal(t, "previous", string(out))
}

func TestExtractor_RunMissingInput(t *testing.T) {
	_, err := New(afero.NewMemMapFs(), "nope.txt", "output.txt").Run(context.Background(), zaptest.NewLogger(t))
	assert.Error(t, err)
}
