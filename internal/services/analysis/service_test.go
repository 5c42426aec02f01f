package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/offerpilot/offerpilot/internal/config"
	"github.com/offerpilot/offerpilot/internal/domain"
	"github.com/offerpilot/offerpilot/internal/extract"
	"github.com/offerpilot/offerpilot/internal/fetch"
	"github.com/offerpilot/offerpilot/internal/intel"
	"github.com/offerpilot/offerpilot/internal/llm"
	"github.com/offerpilot/offerpilot/internal/offer"
	"github.com/offerpilot/offerpilot/internal/resilience"
	"github.com/offerpilot/offerpilot/internal/scoring"
)

type stubFetcher struct {
	doc *fetch.RawDocument
	err error
}

func (f *stubFetcher) Fetch(_ context.Context, url string, _ fetch.Options) (*fetch.RawDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	doc := *f.doc
	doc.URL = url
	return &doc, nil
}

func (f *stubFetcher) Close() error { return nil }

type memOfferStore struct {
	records []*domain.OfferRecord
	fail    bool
}

func (s *memOfferStore) Create(_ context.Context, record *domain.OfferRecord) error {
	if s.fail {
		return errors.New("db down")
	}
	s.records = append(s.records, record)
	return nil
}

func (s *memOfferStore) ListByLeadID(_ context.Context, leadID string) ([]*domain.OfferRecord, error) {
	var out []*domain.OfferRecord
	for _, r := range s.records {
		if r.LeadID == leadID {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, domain.NotFoundError("offers", leadID)
	}
	return out, nil
}

type stubAds struct {
	ads       []domain.AdRecord
	err       error
	available bool
	lastQuery intel.AdSearchQuery
}

func (s *stubAds) Available() bool { return s.available }

func (s *stubAds) Search(_ context.Context, query intel.AdSearchQuery) ([]domain.AdRecord, error) {
	s.lastQuery = query
	return s.ads, s.err
}

// degradedChain builds a real chain whose model links are backed by
// unconfigured providers, so every request falls through to templates.
func degradedChain(t *testing.T) *offer.Chain {
	t.Helper()
	logger := zap.NewNop()

	anthropic := llm.NewAnthropicProvider(config.AnthropicConfig{Model: "claude-sonnet-4-20250514"})
	openai := llm.NewOpenAIProvider(config.OpenAIConfig{Model: "gpt-4o"})

	return offer.NewChain(logger,
		offer.NewModelStrategy(
			offer.NewModelSynthesizer(anthropic, logger),
			resilience.NewCircuitBreaker(resilience.ProviderConfig(anthropic.Name())),
			time.Second,
		),
		offer.NewModelStrategy(
			offer.NewModelSynthesizer(openai, logger),
			resilience.NewCircuitBreaker(resilience.ProviderConfig(openai.Name())),
			time.Second,
		),
		offer.NewTemplateStrategy(offer.NewTemplateSynthesizer(logger)),
	)
}

func newTestService(t *testing.T, deps Deps) *Service {
	t.Helper()
	logger := zap.NewNop()
	if deps.Extractor == nil {
		deps.Extractor = extract.NewExtractor(logger)
	}
	if deps.Aggregator == nil {
		deps.Aggregator = intel.NewAggregator(logger)
	}
	if deps.Chain == nil {
		deps.Chain = degradedChain(t)
	}
	if deps.Scorer == nil {
		deps.Scorer = scoring.NewScorer(scoring.DefaultRuleset(), logger)
	}
	return New(deps, logger)
}

func TestAnalyzeDegradesToUKTemplateOffer(t *testing.T) {
	// Unreachable .co.uk site with no configured model providers still
	// produces a complete, deterministic, GBP-denominated offer.
	svc := newTestService(t, Deps{
		Browser: &stubFetcher{err: domain.ErrFetchUnavailable("https://example.co.uk", errors.New("net::ERR_NAME_NOT_RESOLVED"))},
		Static:  &stubFetcher{err: domain.ErrFetchUnavailable("https://example.co.uk", errors.New("connection refused"))},
	})

	result, err := svc.Analyze(context.Background(), AnalyzeRequest{URL: "https://example.co.uk"})
	require.NoError(t, err)

	assert.False(t, result.AIPowered)
	assert.Equal(t, "template", result.ModelUsed)
	assert.NotEmpty(t, result.Notice)
	assert.Contains(t, result.Notice, "fetch failed")

	require.NotNil(t, result.Offer)
	require.NoError(t, result.Offer.Validate())
	assert.Equal(t, domain.CurrencyGBP, result.Offer.Pricing.Currency)
	assert.Less(t, result.Offer.Pricing.OfferPrice, result.Offer.Pricing.TotalValue)

	again, err := svc.Analyze(context.Background(), AnalyzeRequest{URL: "https://example.co.uk"})
	require.NoError(t, err)
	assert.Equal(t, result.Offer, again.Offer)
}

func TestAnalyzeUsesStaticFallback(t *testing.T) {
	html := `<html><body>
		<h1>Advanced Skin Tightening in London</h1>
		<p>Treatments from £1,997. 30 day money back guarantee.</p>
		<button>Book now</button>
	</body></html>`

	static := &stubFetcher{doc: &fetch.RawDocument{HTML: html, StatusCode: 200}}
	svc := newTestService(t, Deps{
		Browser: &stubFetcher{err: domain.ErrFetchUnavailable("x", errors.New("browser crashed"))},
		Static:  static,
	})

	result, err := svc.Analyze(context.Background(), AnalyzeRequest{URL: "https://skintight.co.uk"})
	require.NoError(t, err)

	assert.Equal(t, domain.CurrencyGBP, result.Intelligence.Currency)
	assert.Equal(t, domain.PositioningPremium, result.Intelligence.PricePositioning)
	assert.NotContains(t, result.Notice, "fetch failed")
}

func TestAnalyzePersistsOfferBestEffort(t *testing.T) {
	store := &memOfferStore{}
	svc := newTestService(t, Deps{
		Browser: &stubFetcher{err: errors.New("down")},
		Offers:  store,
	})

	_, err := svc.Analyze(context.Background(), AnalyzeRequest{URL: "https://example.com", LeadID: "lead-1"})
	require.NoError(t, err)
	require.Len(t, store.records, 1)
	assert.Equal(t, "lead-1", store.records[0].LeadID)
	assert.False(t, store.records[0].AIPowered)

	// A failing store never fails the analysis.
	svc = newTestService(t, Deps{
		Browser: &stubFetcher{err: errors.New("down")},
		Offers:  &memOfferStore{fail: true},
	})
	_, err = svc.Analyze(context.Background(), AnalyzeRequest{URL: "https://example.com", LeadID: "lead-1"})
	assert.NoError(t, err)
}

func TestAnalyzeAppliesIndustryHint(t *testing.T) {
	svc := newTestService(t, Deps{
		Browser: &stubFetcher{err: errors.New("down")},
	})

	result, err := svc.Analyze(context.Background(), AnalyzeRequest{
		URL:          "https://example.com",
		IndustryHint: "Aesthetic Clinic",
	})
	require.NoError(t, err)
	assert.Equal(t, "Aesthetic Clinic", result.Intelligence.BusinessType)
}

func TestAnalyzeValidatesURL(t *testing.T) {
	svc := newTestService(t, Deps{Browser: &stubFetcher{err: errors.New("down")}})

	_, err := svc.Analyze(context.Background(), AnalyzeRequest{URL: ""})
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeValidation))

	_, err = svc.Analyze(context.Background(), AnalyzeRequest{URL: "not a url"})
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeValidation))
}

func TestAnalyzePinnedProviderFailureIsHardError(t *testing.T) {
	svc := newTestService(t, Deps{Browser: &stubFetcher{err: errors.New("down")}})

	_, err := svc.Analyze(context.Background(), AnalyzeRequest{
		URL:      "https://example.com",
		Provider: "anthropic",
	})
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeProviderUnavailable))
}

func TestScoreAssessment(t *testing.T) {
	store := &memOfferStore{}
	svc := newTestService(t, Deps{Offers: store})

	answers := domain.QualificationAnswers{
		"method":     "ozempic",
		"skinFeel":   "loose",
		"timeline":   "asap",
		"commitment": "ready",
	}
	outcome, err := svc.ScoreAssessment(context.Background(), "lead-9", answers)
	require.NoError(t, err)
	assert.Equal(t, 95, outcome.Score.MatchScore)
	assert.InDelta(t, 0.95, outcome.Score.ConversionProbability, 1e-9)
	assert.Nil(t, outcome.Offer)

	_, err = svc.ScoreAssessment(context.Background(), "lead-9", domain.QualificationAnswers{"method": "ozempic"})
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeValidation))
}

func TestScoreAssessmentJoinsLatestOffer(t *testing.T) {
	store := &memOfferStore{}
	svc := newTestService(t, Deps{
		Browser: &stubFetcher{err: errors.New("down")},
		Offers:  store,
	})

	_, err := svc.Analyze(context.Background(), AnalyzeRequest{URL: "https://example.com", LeadID: "lead-3"})
	require.NoError(t, err)

	answers := domain.QualificationAnswers{
		"method":     "diet_exercise",
		"skinFeel":   "tight",
		"timeline":   "month",
		"commitment": "considering",
	}
	outcome, err := svc.ScoreAssessment(context.Background(), "lead-3", answers)
	require.NoError(t, err)
	require.NotNil(t, outcome.Offer)
	assert.Equal(t, "lead-3", outcome.Offer.LeadID)
}

func TestSearchAdsSingleBusiness(t *testing.T) {
	ads := &stubAds{available: true, ads: []domain.AdRecord{
		{AdvertiserName: "Glow Clinic", Text: "before and after results", HasVideo: true},
		{AdvertiserName: "Glow Clinic", Text: "5 star reviews from real clients"},
	}}
	svc := newTestService(t, Deps{Ads: ads})

	got, err := svc.SearchAds(context.Background(), "", "glow clinic")
	require.NoError(t, err)
	assert.Equal(t, "Glow Clinic", got.BusinessName)
	assert.Equal(t, 2, got.ActiveAdCount)
	require.NotNil(t, got.CreativePatterns)
	assert.True(t, got.CreativePatterns.HasVideo)
}

func TestSearchAdsUnavailable(t *testing.T) {
	svc := newTestService(t, Deps{Ads: &stubAds{available: false}})

	_, err := svc.SearchAds(context.Background(), "", "glow clinic")
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeProviderUnavailable))

	svc = newTestService(t, Deps{Ads: &stubAds{available: true}})
	_, err = svc.SearchAds(context.Background(), "", "")
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeValidation))
}

func TestSearchIndustryAdsGroupsByAdvertiser(t *testing.T) {
	records := make([]domain.AdRecord, 0, 14)
	for i := 0; i < 12; i++ {
		records = append(records, domain.AdRecord{AdvertiserName: "Big Spender", Text: "offer"})
	}
	records = append(records,
		domain.AdRecord{AdvertiserName: "Small Shop", Text: "offer"},
		domain.AdRecord{AdvertiserName: "Small Shop", Text: "offer"},
	)

	ads := &stubAds{available: true, ads: records}
	svc := newTestService(t, Deps{Ads: ads})

	got, err := svc.SearchIndustryAds(context.Background(), "aesthetic clinic")
	require.NoError(t, err)
	assert.Equal(t, "aesthetic clinic", ads.lastQuery.SearchTerm)
	require.Len(t, got.Competitors, 2)
	assert.Equal(t, "Big Spender", got.Competitors[0].BusinessName)
	assert.Equal(t, 12, got.Competitors[0].ActiveAdCount)
	assert.Equal(t, domain.SpendHigh, got.DominantSpend)
}

func TestGetOffers(t *testing.T) {
	store := &memOfferStore{}
	svc := newTestService(t, Deps{
		Browser: &stubFetcher{err: errors.New("down")},
		Offers:  store,
	})

	_, err := svc.Analyze(context.Background(), AnalyzeRequest{URL: "https://example.com", LeadID: "lead-2"})
	require.NoError(t, err)

	offers, err := svc.GetOffers(context.Background(), "lead-2")
	require.NoError(t, err)
	assert.Len(t, offers, 1)

	_, err = svc.GetOffers(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeNotFound))
}
