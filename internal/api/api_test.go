package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/offerpilot/offerpilot/internal/config"
	"github.com/offerpilot/offerpilot/internal/extract"
	"github.com/offerpilot/offerpilot/internal/intel"
	"github.com/offerpilot/offerpilot/internal/llm"
	"github.com/offerpilot/offerpilot/internal/offer"
	rediscache "github.com/offerpilot/offerpilot/internal/repository/redis"
	"github.com/offerpilot/offerpilot/internal/resilience"
	"github.com/offerpilot/offerpilot/internal/scoring"
	"github.com/offerpilot/offerpilot/internal/services/analysis"
)

// newTestRouter wires a router around a service with no fetch backends,
// no persistence and no configured model providers. Every analysis runs
// the fully degraded path, which is exactly what a handler test needs:
// deterministic output with no network.
func newTestRouter(t *testing.T) *Router {
	t.Helper()
	logger := zap.NewNop()

	anthropic := llm.NewAnthropicProvider(config.AnthropicConfig{Model: "claude-sonnet-4-20250514"})
	chain := offer.NewChain(logger,
		offer.NewModelStrategy(
			offer.NewModelSynthesizer(anthropic, logger),
			resilience.NewCircuitBreaker(resilience.ProviderConfig(anthropic.Name())),
			time.Second,
		),
		offer.NewTemplateStrategy(offer.NewTemplateSynthesizer(logger)),
	)

	svc := analysis.New(analysis.Deps{
		Extractor:  extract.NewExtractor(logger),
		Aggregator: intel.NewAggregator(logger),
		Chain:      chain,
		Scorer:     scoring.NewScorer(scoring.DefaultRuleset(), logger),
	}, logger)

	return NewRouter(RouterConfig{
		Service:     svc,
		ConfigStore: rediscache.NewMemoryConfigStore(),
		Logger:      logger,
		EnableCORS:  true,
	})
}

func doRequest(t *testing.T, router *Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Notice  string          `json:"notice"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeEnvelope(t, rec).Success)
}

func TestReadyWithoutDependencies(t *testing.T) {
	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyzeDegradedResponse(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/analyze", `{"url":"https://example.co.uk"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Notice)

	var result analysis.AnalyzeResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.False(t, result.AIPowered)
	assert.Equal(t, "template", result.ModelUsed)
	require.NotNil(t, result.Offer)
	assert.Equal(t, "GBP", string(result.Offer.Pricing.Currency))
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/analyze", `{"url":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/analyze", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzePinnedProviderUnavailable(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/analyze",
		`{"url":"https://example.com","provider":"anthropic"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "PROVIDER_UNAVAILABLE", env.Error.Code)
}

func TestScoreAssessmentEndpoint(t *testing.T) {
	router := newTestRouter(t)

	body := `{"lead_id":"lead-1","answers":{"method":"ozempic","skinFeel":"loose","timeline":"asap","commitment":"ready"}}`
	rec := doRequest(t, router, http.MethodPost, "/api/v1/assessments", body)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	var outcome struct {
		Score struct {
			MatchScore            int     `json:"match_score"`
			ConversionProbability float64 `json:"conversion_probability"`
			RecommendedTreatment  string  `json:"recommended_treatment"`
		} `json:"score"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &outcome))
	assert.Equal(t, 95, outcome.Score.MatchScore)
	assert.InDelta(t, 0.95, outcome.Score.ConversionProbability, 1e-9)
	assert.Equal(t, "Skin Tightening", outcome.Score.RecommendedTreatment)
}

func TestScoreAssessmentMissingAnswers(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/assessments",
		`{"answers":{"method":"ozempic"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdsSearchUnavailable(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/ads/search?search_term=clinic", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWidgetConfigRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/widgets/w-1/config", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body := `{"widget_id":"ignored","business_name":"Glow Clinic","offer_style":"formula_a"}`
	rec = doRequest(t, router, http.MethodPut, "/api/v1/widgets/w-1/config", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/widgets/w-1/config", "")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	var cfg struct {
		WidgetID     string `json:"widget_id"`
		BusinessName string `json:"business_name"`
		OfferStyle   string `json:"offer_style"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cfg))
	assert.Equal(t, "w-1", cfg.WidgetID)
	assert.Equal(t, "Glow Clinic", cfg.BusinessName)
}

func TestLeadOffersNotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/leads/lead-x/offers", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
