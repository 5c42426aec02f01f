package analysis

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/offerpilot/offerpilot/internal/domain"
	"github.com/offerpilot/offerpilot/internal/extract"
	"github.com/offerpilot/offerpilot/internal/fetch"
	"github.com/offerpilot/offerpilot/internal/intel"
	"github.com/offerpilot/offerpilot/internal/observability"
	"github.com/offerpilot/offerpilot/internal/offer"
	"github.com/offerpilot/offerpilot/internal/scoring"
)

// OfferStore persists finished offers. Persistence is best effort: the
// pipeline's value is computation, not durability.
type OfferStore interface {
	Create(ctx context.Context, record *domain.OfferRecord) error
	ListByLeadID(ctx context.Context, leadID string) ([]*domain.OfferRecord, error)
}

// AssessmentStore persists scored assessments.
type AssessmentStore interface {
	Create(ctx context.Context, record *domain.AssessmentRecord) error
}

// IntelligenceCache caches finished analyses per URL.
type IntelligenceCache interface {
	GetIntelligence(ctx context.Context, url string) (*domain.CompetitorIntelligence, error)
	SetIntelligence(ctx context.Context, url string, intel *domain.CompetitorIntelligence) error
}

// AdSearcher queries the ad-transparency source.
type AdSearcher interface {
	Available() bool
	Search(ctx context.Context, query intel.AdSearchQuery) ([]domain.AdRecord, error)
}

// Service runs the competitor-intelligence and offer-synthesis pipeline.
// Each request is stateless; the only shared state is the lazily
// initialized provider clients held by the chain.
type Service struct {
	browser    fetch.Fetcher
	static     fetch.Fetcher
	extractor  *extract.Extractor
	aggregator *intel.Aggregator
	ads        AdSearcher
	chain      *offer.Chain
	scorer     *scoring.Scorer

	offers      OfferStore
	assessments AssessmentStore
	cache       IntelligenceCache

	metrics *observability.Metrics
	logger  *zap.Logger
}

// Deps holds the service's collaborators. Stores, cache, ad searcher and
// metrics may be nil; the service degrades rather than failing.
type Deps struct {
	Browser     fetch.Fetcher
	Static      fetch.Fetcher
	Extractor   *extract.Extractor
	Aggregator  *intel.Aggregator
	Ads         AdSearcher
	Chain       *offer.Chain
	Scorer      *scoring.Scorer
	Offers      OfferStore
	Assessments AssessmentStore
	Cache       IntelligenceCache
	Metrics     *observability.Metrics
}

// New creates the analysis service.
func New(deps Deps, logger *zap.Logger) *Service {
	return &Service{
		browser:     deps.Browser,
		static:      deps.Static,
		extractor:   deps.Extractor,
		aggregator:  deps.Aggregator,
		ads:         deps.Ads,
		chain:       deps.Chain,
		scorer:      deps.Scorer,
		offers:      deps.Offers,
		assessments: deps.Assessments,
		cache:       deps.Cache,
		metrics:     deps.Metrics,
		logger:      logger.Named("analysis"),
	}
}

// AnalyzeRequest is one analyze call.
type AnalyzeRequest struct {
	URL          string `json:"url"`
	IndustryHint string `json:"industry_hint,omitempty"`
	Style        string `json:"style,omitempty"`
	Provider     string `json:"provider,omitempty"` // pins a single provider; empty means auto
	LeadID       string `json:"lead_id,omitempty"`
	UseProxy     bool   `json:"use_proxy,omitempty"`
}

// AnalyzeResult is the caller-facing analysis output. AIPowered and Notice
// tell the caller how much to trust the offer content.
type AnalyzeResult struct {
	Intelligence *domain.CompetitorIntelligence `json:"intelligence"`
	Offer        *domain.GeneratedOffer         `json:"offer"`
	ModelUsed    string                         `json:"model_used"`
	AIPowered    bool                           `json:"ai_powered"`
	Notice       string                         `json:"notice,omitempty"`
}

// Analyze runs the full pipeline: fetch, extract, aggregate, synthesize.
// Fetch failure degrades to empty signals; provider failure degrades down
// the chain. Only validation errors and pinned-provider failures surface
// as hard errors.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error) {
	start := time.Now()

	target, err := validateURL(req.URL)
	if err != nil {
		return nil, err
	}

	var notices []string

	competitorIntel := s.cachedIntelligence(ctx, target)
	if competitorIntel == nil {
		signals, fetchNotice := s.fetchAndExtract(ctx, target, req.UseProxy)
		if fetchNotice != "" {
			notices = append(notices, fetchNotice)
		}

		var facts *domain.KnownFacts
		if req.IndustryHint != "" {
			facts = &domain.KnownFacts{BusinessType: req.IndustryHint}
		}

		competitorIntel = s.aggregator.Aggregate([]*domain.ScrapedSignals{signals}, facts)
		s.cacheIntelligence(ctx, target, competitorIntel)
	}

	result, err := s.chain.Synthesize(ctx, competitorIntel, offer.ParseStyle(req.Style), req.Provider)
	if err != nil {
		return nil, err
	}
	if result.Notice != "" {
		notices = append(notices, result.Notice)
	}

	s.persistOffer(ctx, req.LeadID, result)

	mode := "auto"
	if req.Provider != "" {
		mode = "pinned"
	}
	if s.metrics != nil {
		s.metrics.RecordAnalysis(mode, result.AIPowered, time.Since(start))
		if mode == "auto" && !result.AIPowered {
			s.metrics.ProviderFallbacksTotal.Inc()
		}
	}

	s.logger.Info("analysis complete",
		zap.String("url", target),
		zap.String("model_used", result.ModelUsed),
		zap.Bool("ai_powered", result.AIPowered),
		zap.Duration("duration", time.Since(start)))

	return &AnalyzeResult{
		Intelligence: competitorIntel,
		Offer:        result.Offer,
		ModelUsed:    result.ModelUsed,
		AIPowered:    result.AIPowered,
		Notice:       strings.Join(notices, "; "),
	}, nil
}

// fetchAndExtract tries the browser backend, then the static one. Both
// failing is not an error: extraction runs on an empty document so the
// TLD currency hint and defaults still apply.
func (s *Service) fetchAndExtract(ctx context.Context, target string, useProxy bool) (*domain.ScrapedSignals, string) {
	opts := fetch.Options{UseProxy: useProxy, Screenshot: true}

	var doc *fetch.RawDocument
	var err error = domain.ErrFetchUnavailable(target, nil)
	if s.browser != nil {
		doc, err = s.browser.Fetch(ctx, target, opts)
		if s.metrics != nil {
			s.metrics.RecordFetch("browser", err)
		}
	}
	if err != nil && s.static != nil {
		s.logger.Warn("browser fetch failed, trying static", zap.String("url", target), zap.Error(err))
		doc, err = s.static.Fetch(ctx, target, opts)
		if s.metrics != nil {
			s.metrics.RecordFetch("static", err)
		}
	}

	html := ""
	notice := ""
	if err != nil {
		s.logger.Warn("all fetch backends failed, proceeding with empty signals",
			zap.String("url", target), zap.Error(err))
		notice = "source fetch failed; analysis based on industry defaults"
	} else {
		html = doc.HTML
	}

	signals, err := s.extractor.Extract(target, html)
	if err != nil {
		// Unparseable HTML degrades the same way as a failed fetch.
		signals = domain.NewScrapedSignals(target)
		notice = "source could not be parsed; analysis based on industry defaults"
	}

	if s.metrics != nil {
		s.metrics.SignalsExtracted.WithLabelValues("prices").Observe(float64(len(signals.Prices)))
		s.metrics.SignalsExtracted.WithLabelValues("headlines").Observe(float64(len(signals.Headlines)))
		s.metrics.SignalsExtracted.WithLabelValues("testimonials").Observe(float64(len(signals.Testimonials)))
		s.metrics.SignalsExtracted.WithLabelValues("guarantees").Observe(float64(len(signals.Guarantees)))
	}
	return signals, notice
}

// AssessmentOutcome joins the deterministic scores with the lead's most
// recent synthesized offer, when one exists, so the caller can render the
// whole journey from one response.
type AssessmentOutcome struct {
	Score *domain.ScoreResult `json:"score"`
	Offer *domain.OfferRecord `json:"offer,omitempty"`
}

// ScoreAssessment scores a lead's answers and persists the record best
// effort. Scoring itself is pure: no network, no side effects.
func (s *Service) ScoreAssessment(ctx context.Context, leadID string, answers domain.QualificationAnswers) (*AssessmentOutcome, error) {
	result, err := s.scorer.Score(answers)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AssessmentsTotal.Inc()
	}

	if s.assessments != nil && leadID != "" {
		record := domain.NewAssessmentRecord(leadID, answers, *result)
		if err := s.assessments.Create(ctx, record); err != nil {
			s.logger.Error("persisting assessment failed",
				zap.String("lead_id", leadID), zap.Error(err))
		}
	}

	outcome := &AssessmentOutcome{Score: result}
	if s.offers != nil && leadID != "" {
		if records, err := s.offers.ListByLeadID(ctx, leadID); err == nil && len(records) > 0 {
			outcome.Offer = records[0]
		}
	}
	return outcome, nil
}

// SearchAds queries the ad library for one business by page ID or name.
func (s *Service) SearchAds(ctx context.Context, pageID, searchTerm string) (*domain.CompetitorIntelligence, error) {
	if s.ads == nil || !s.ads.Available() {
		return nil, domain.ErrProviderUnavailable("ad library", nil)
	}
	if pageID == "" && searchTerm == "" {
		return nil, domain.ValidationError("search_term", "search_term or page_id is required")
	}

	ads, err := s.ads.Search(ctx, intel.AdSearchQuery{PageID: pageID, SearchTerm: searchTerm})
	s.recordAdSearch("single", err)
	if err != nil {
		return nil, err
	}

	competitorIntel := s.aggregator.Aggregate(nil, nil)
	competitorIntel.BusinessID = pageID
	competitorIntel.BusinessName = searchTerm
	if len(ads) > 0 {
		competitorIntel.BusinessName = ads[0].AdvertiserName
	}
	s.aggregator.AggregateAds(competitorIntel, ads)

	return competitorIntel, nil
}

// SearchIndustryAds searches by industry term, fans the results out into
// one intelligence per advertiser, and aggregates an industry view.
func (s *Service) SearchIndustryAds(ctx context.Context, industry string) (*domain.AggregatedIndustryIntelligence, error) {
	if s.ads == nil || !s.ads.Available() {
		return nil, domain.ErrProviderUnavailable("ad library", nil)
	}
	if industry == "" {
		return nil, domain.ValidationError("industry", "industry is required")
	}

	ads, err := s.ads.Search(ctx, intel.AdSearchQuery{SearchTerm: industry})
	s.recordAdSearch("industry", err)
	if err != nil {
		return nil, err
	}

	byAdvertiser := map[string][]domain.AdRecord{}
	var order []string
	for _, ad := range ads {
		name := ad.AdvertiserName
		if name == "" {
			continue
		}
		if _, seen := byAdvertiser[name]; !seen {
			order = append(order, name)
		}
		byAdvertiser[name] = append(byAdvertiser[name], ad)
	}

	competitors := make([]*domain.CompetitorIntelligence, 0, len(order))
	for _, name := range order {
		competitorIntel := s.aggregator.Aggregate(nil, nil)
		competitorIntel.BusinessID = name
		competitorIntel.BusinessName = name
		s.aggregator.AggregateAds(competitorIntel, byAdvertiser[name])
		competitors = append(competitors, competitorIntel)
	}

	return s.aggregator.AggregateIndustry(industry, competitors), nil
}

// GetOffers returns a lead's persisted offers, newest first.
func (s *Service) GetOffers(ctx context.Context, leadID string) ([]*domain.OfferRecord, error) {
	if s.offers == nil {
		return nil, domain.NotFoundError("offers", leadID)
	}
	return s.offers.ListByLeadID(ctx, leadID)
}

func (s *Service) cachedIntelligence(ctx context.Context, target string) *domain.CompetitorIntelligence {
	if s.cache == nil {
		return nil
	}
	cached, err := s.cache.GetIntelligence(ctx, target)
	if err != nil {
		s.logger.Warn("intelligence cache read failed", zap.Error(err))
		return nil
	}
	return cached
}

func (s *Service) cacheIntelligence(ctx context.Context, target string, competitorIntel *domain.CompetitorIntelligence) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetIntelligence(ctx, target, competitorIntel); err != nil {
		s.logger.Warn("intelligence cache write failed", zap.Error(err))
	}
}

func (s *Service) recordAdSearch(mode string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	s.metrics.AdSearchesTotal.WithLabelValues(mode, outcome).Inc()
}

func (s *Service) persistOffer(ctx context.Context, leadID string, result *offer.Result) {
	if s.offers == nil || leadID == "" {
		return
	}
	record := domain.NewOfferRecord(leadID, result.Offer, result.ModelUsed, result.AIPowered)
	if err := s.offers.Create(ctx, record); err != nil {
		s.logger.Error("persisting offer failed",
			zap.String("lead_id", leadID), zap.Error(err))
	}
}

func validateURL(raw string) (string, error) {
	if raw == "" {
		return "", domain.ValidationError("url", "url is required")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || !strings.Contains(parsed.Host, ".") {
		return "", domain.ValidationError("url", "invalid url")
	}
	return parsed.String(), nil
}
