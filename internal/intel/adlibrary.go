package intel

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/offerpilot/offerpilot/internal/config"
	"github.com/offerpilot/offerpilot/internal/domain"
)

// AdSearchQuery targets the ad-transparency library. PageID is exact and
// preferred; SearchTerm is the fuzzy fallback when no page id is on file.
type AdSearchQuery struct {
	PageID     string
	SearchTerm string
}

// AdLibraryClient queries an ad-transparency archive for a business's
// active ads. The response shape is loose vendor JSON, so fields are read
// path-wise rather than unmarshalled into a struct.
type AdLibraryClient struct {
	cfg    config.AdLibraryConfig
	client *retryablehttp.Client
	logger *zap.Logger
}

// NewAdLibraryClient creates an ad-library client.
func NewAdLibraryClient(cfg config.AdLibraryConfig, logger *zap.Logger) *AdLibraryClient {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 1 * time.Second
	client.RetryWaitMax = 8 * time.Second
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = nil

	return &AdLibraryClient{
		cfg:    cfg,
		client: client,
		logger: logger.Named("intel.adlibrary"),
	}
}

// Available reports whether the client is configured with credentials.
func (c *AdLibraryClient) Available() bool {
	return c.cfg.AccessToken != ""
}

// Search returns active ads for the query. The exact page-id lookup runs
// first; when it yields nothing and a search term is present, the fuzzy
// name search runs as fallback. Failures surface as FetchUnavailable so
// the caller can degrade to an empty result.
func (c *AdLibraryClient) Search(ctx context.Context, query AdSearchQuery) ([]domain.AdRecord, error) {
	if !c.Available() {
		return nil, domain.ErrFetchUnavailable("ad library", fmt.Errorf("no access token configured"))
	}

	if query.PageID != "" {
		ads, err := c.search(ctx, url.Values{"search_page_ids": {query.PageID}})
		if err != nil {
			return nil, err
		}
		if len(ads) > 0 || query.SearchTerm == "" {
			return ads, nil
		}
		c.logger.Debug("page id lookup empty, falling back to name search",
			zap.String("page_id", query.PageID),
			zap.String("search_term", query.SearchTerm))
	}

	if query.SearchTerm == "" {
		return []domain.AdRecord{}, nil
	}
	return c.search(ctx, url.Values{"search_terms": {query.SearchTerm}})
}

func (c *AdLibraryClient) search(ctx context.Context, params url.Values) ([]domain.AdRecord, error) {
	params.Set("access_token", c.cfg.AccessToken)
	params.Set("ad_reached_countries", c.cfg.Country)
	params.Set("ad_active_status", "ACTIVE")
	params.Set("limit", strconv.Itoa(c.cfg.PageLimit))
	params.Set("fields", "page_name,ad_creative_bodies,ad_creative_link_captions,ad_delivery_start_time,ad_creative_link_titles,media_type,cta_type")

	endpoint := c.cfg.BaseURL + "?" + params.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, domain.ErrFetchUnavailable("ad library", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.ErrFetchUnavailable("ad library", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.ErrFetchUnavailable("ad library", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, domain.ErrFetchUnavailable("ad library",
			fmt.Errorf("archive returned status %d: %s", resp.StatusCode, gjson.GetBytes(body, "error.message").String()))
	}

	return parseAdRecords(body), nil
}

// parseAdRecords reads the archive's data array path-wise. Missing fields
// produce zero values, never errors: vendor responses drift.
func parseAdRecords(body []byte) []domain.AdRecord {
	ads := []domain.AdRecord{}
	gjson.GetBytes(body, "data").ForEach(func(_, ad gjson.Result) bool {
		record := domain.AdRecord{
			AdvertiserName: ad.Get("page_name").String(),
			Text:           ad.Get("ad_creative_bodies.0").String(),
			HasVideo:       ad.Get("media_type").String() == "VIDEO",
			StartDate:      ad.Get("ad_delivery_start_time").String(),
			CTALabel:       ad.Get("cta_type").String(),
		}
		if record.Text == "" {
			record.Text = ad.Get("ad_creative_link_titles.0").String()
		}
		ads = append(ads, record)
		return true
	})
	return ads
}
