package fetch

import (
	"context"
	"time"
)

// RawDocument is the fetched source handed to the signal extractor.
// HTML is the rendered DOM for browser fetches and the raw response body
// for static fetches.
type RawDocument struct {
	URL           string
	FinalURL      string
	HTML          string
	StatusCode    int
	ScreenshotURI string
	FetchedAt     time.Time
	LoadTime      time.Duration
	Rendered      bool
}

// Options tune a single fetch.
type Options struct {
	// UseProxy routes the fetch through the configured residential proxy.
	UseProxy bool

	// Screenshot captures a full-page screenshot when the backend supports it.
	Screenshot bool
}

// Fetcher retrieves a page for signal extraction. Implementations must be
// safe for concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts Options) (*RawDocument, error)
	Close() error
}

// StorageClient uploads screenshots captured during a fetch.
type StorageClient interface {
	UploadScreenshot(ctx context.Context, key string, data []byte) (string, error)
}
