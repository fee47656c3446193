package models

import "time"

// CodeRecord is one edge of a single-use code export.
type CodeRecord struct {
	URL string
}

// URLRecord is one line of the URL list together with its place in it.
type URLRecord struct {
	Position int
	Total    int
	URL      string
}

// Content is what the fetch step produced for a single URL.
type Content struct {
	Record     URLRecord
	Index      int
	Data       []byte
	StatusCode int
	MIME       string
	Skipped    bool
	Error      error
	Duration   time.Duration
}

type Status int

const (
	StatusSuccess Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Result is the final outcome for one URL of the list.
type Result struct {
	URL    string
	Index  int
	Status Status
	Path   string // set on success
	Reason string // set on failure
	Size   int64
}

type Summary struct {
	Succeeded int
	Skipped   int
	Failed    int
	Bytes     int64
	Results   []Result
}

// Summarize folds per-URL results into counters, keeping the results in order.
func Summarize(results []Result) Summary {
	s := Summary{Results: results}
	for _, r := range results {
		switch r.Status {
		case StatusSuccess:
			s.Succeeded++
			s.Bytes += r.Size
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}
