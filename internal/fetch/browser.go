package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/offerpilot/offerpilot/internal/config"
	"github.com/offerpilot/offerpilot/internal/domain"
)

const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// BrowserFetcher renders pages in headless Chromium so JS-built landing
// pages yield their real DOM. One browser process is shared; each fetch
// gets a fresh browser context so sites cannot leak state between fetches.
type BrowserFetcher struct {
	cfg     config.FetcherConfig
	logger  *zap.Logger
	storage StorageClient

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
}

// NewBrowserFetcher creates a browser fetcher. The browser process is
// launched lazily on first fetch so construction never needs Chromium
// installed (the static fallback still works without it).
func NewBrowserFetcher(cfg config.FetcherConfig, storage StorageClient, logger *zap.Logger) *BrowserFetcher {
	return &BrowserFetcher{
		cfg:     cfg,
		logger:  logger.Named("fetch.browser"),
		storage: storage,
	}
}

func (f *BrowserFetcher) ensureBrowser() (playwright.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil && f.browser.IsConnected() {
		return f.browser, nil
	}

	if f.pw == nil {
		pw, err := playwright.Run()
		if err != nil {
			return nil, fmt.Errorf("starting playwright: %w", err)
		}
		f.pw = pw
	}

	browser, err := f.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(f.cfg.Headless),
	})
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}
	f.browser = browser
	return browser, nil
}

// Fetch navigates to the URL, waits for the network to settle plus a fixed
// delay for late-rendering frameworks, and returns the rendered DOM.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string, opts Options) (*RawDocument, error) {
	browser, err := f.ensureBrowser()
	if err != nil {
		return nil, domain.ErrFetchUnavailable(url, err)
	}

	ctxOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  1920,
			Height: 1080,
		},
		UserAgent: playwright.String(browserUserAgent),
	}
	if opts.UseProxy && f.cfg.ProxyURL != "" {
		ctxOpts.Proxy = &playwright.Proxy{
			Server:   f.cfg.ProxyURL,
			Username: playwright.String(f.cfg.ProxyUsername),
			Password: playwright.String(f.cfg.ProxyPassword),
		}
	}

	browserCtx, err := browser.NewContext(ctxOpts)
	if err != nil {
		return nil, domain.ErrFetchUnavailable(url, fmt.Errorf("creating browser context: %w", err))
	}
	defer browserCtx.Close()

	page, err := browserCtx.NewPage()
	if err != nil {
		return nil, domain.ErrFetchUnavailable(url, fmt.Errorf("creating page: %w", err))
	}
	defer page.Close()

	startTime := time.Now()

	resp, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(f.cfg.NavTimeout.Milliseconds())),
	})
	if err != nil {
		return nil, domain.ErrFetchUnavailable(url, fmt.Errorf("navigating: %w", err))
	}

	statusCode := 0
	if resp != nil {
		statusCode = resp.Status()
		if statusCode >= 400 {
			return nil, domain.ErrFetchUnavailable(url, fmt.Errorf("page returned status %d", statusCode))
		}
	}

	// Late-rendering SPAs keep mutating the DOM after networkidle.
	page.WaitForTimeout(float64(f.cfg.SettleDelay.Milliseconds()))

	loadTime := time.Since(startTime)

	html, err := page.Content()
	if err != nil {
		return nil, domain.ErrFetchUnavailable(url, fmt.Errorf("reading page content: %w", err))
	}

	doc := &RawDocument{
		URL:        url,
		FinalURL:   page.URL(),
		HTML:       html,
		StatusCode: statusCode,
		FetchedAt:  time.Now().UTC(),
		LoadTime:   loadTime,
		Rendered:   true,
	}

	if opts.Screenshot && f.cfg.Screenshots && f.storage != nil {
		f.captureScreenshot(ctx, page, doc)
	}

	f.logger.Debug("fetched rendered page",
		zap.String("url", url),
		zap.Int("status", statusCode),
		zap.Duration("load_time", loadTime),
		zap.Int("html_bytes", len(html)))

	return doc, nil
}

// captureScreenshot is best effort. A failed capture or upload never fails
// the fetch.
func (f *BrowserFetcher) captureScreenshot(ctx context.Context, page playwright.Page, doc *RawDocument) {
	data, err := page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
		Type:     playwright.ScreenshotTypeJpeg,
		Quality:  playwright.Int(80),
	})
	if err != nil {
		f.logger.Warn("screenshot capture failed", zap.String("url", doc.URL), zap.Error(err))
		return
	}

	key := fmt.Sprintf("screenshots/%d.jpg", time.Now().UnixNano())
	uri, err := f.storage.UploadScreenshot(ctx, key, data)
	if err != nil {
		f.logger.Warn("screenshot upload failed", zap.String("url", doc.URL), zap.Error(err))
		return
	}
	doc.ScreenshotURI = uri
}

// Close shuts down the shared browser process.
func (f *BrowserFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil {
		f.browser.Close()
		f.browser = nil
	}
	if f.pw != nil {
		err := f.pw.Stop()
		f.pw = nil
		return err
	}
	return nil
}
