package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/offerpilot/offerpilot/internal/config"
	"github.com/offerpilot/offerpilot/internal/domain"
)

const maxStaticBodyBytes = 4 << 20 // 4 MiB is plenty for a landing page

// StaticFetcher retrieves pages over plain HTTP with retries. Cheaper and
// faster than the browser, but JS-built pages come back as empty shells,
// so it is the fallback backend, not the default.
type StaticFetcher struct {
	client *retryablehttp.Client
	logger *zap.Logger
}

// NewStaticFetcher creates a static HTTP fetcher. Proxy routing, when
// requested per fetch, uses the same proxy settings as the browser backend.
func NewStaticFetcher(cfg config.FetcherConfig, logger *zap.Logger) *StaticFetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 1 * time.Second
	client.RetryWaitMax = 10 * time.Second
	client.HTTPClient.Timeout = cfg.NavTimeout
	client.Logger = nil

	if cfg.ProxyURL != "" {
		if proxyURL, err := url.Parse(cfg.ProxyURL); err == nil {
			if cfg.ProxyUsername != "" {
				proxyURL.User = url.UserPassword(cfg.ProxyUsername, cfg.ProxyPassword)
			}
			transport := &http.Transport{Proxy: http.ProxyURL(proxyURL)}
			client.HTTPClient.Transport = transport
		}
	}

	return &StaticFetcher{
		client: client,
		logger: logger.Named("fetch.static"),
	}
}

// Fetch retrieves the raw response body. Screenshot options are ignored.
func (f *StaticFetcher) Fetch(ctx context.Context, target string, opts Options) (*RawDocument, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, domain.ErrFetchUnavailable(target, fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	startTime := time.Now()

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, domain.ErrFetchUnavailable(target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, domain.ErrFetchUnavailable(target, fmt.Errorf("page returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStaticBodyBytes))
	if err != nil {
		return nil, domain.ErrFetchUnavailable(target, fmt.Errorf("reading body: %w", err))
	}

	finalURL := target
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	f.logger.Debug("fetched static page",
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Int("html_bytes", len(body)))

	return &RawDocument{
		URL:        target,
		FinalURL:   finalURL,
		HTML:       string(body),
		StatusCode: resp.StatusCode,
		FetchedAt:  time.Now().UTC(),
		LoadTime:   time.Since(startTime),
		Rendered:   false,
	}, nil
}

// Close is a no-op for the static backend.
func (f *StaticFetcher) Close() error {
	return nil
}
