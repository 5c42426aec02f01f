package intel

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/offerpilot/offerpilot/internal/domain"
)

func newTestAggregator() *Aggregator {
	return NewAggregator(zap.NewNop())
}

func TestAggregatePremiumPricingWithoutGuarantee(t *testing.T) {
	a := newTestAggregator()

	signals := domain.NewScrapedSignals("https://competitor.co.uk")
	signals.Currency = domain.CurrencyGBP
	signals.Prices = []string{"£1,997", "£497"}

	intel := a.Aggregate([]*domain.ScrapedSignals{signals}, nil)

	assert.Equal(t, domain.PositioningPremium, intel.PricePositioning)
	assert.Contains(t, intel.Weaknesses, "No clear guarantee")
	assert.Equal(t, domain.CurrencyGBP, intel.Currency)
}

func TestClassifyPricePositioning(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   domain.PricePositioning
	}{
		{"thousands value is premium", []string{"£1,997"}, domain.PositioningPremium},
		{"999 suffix is premium", []string{"$999"}, domain.PositioningPremium},
		{"000 suffix is premium", []string{"€2,000"}, domain.PositioningPremium},
		{"under 500 is budget", []string{"£297"}, domain.PositioningBudget},
		{"middle range", []string{"£650", "£750"}, domain.PositioningMidMarket},
		{"mixed evidence resolves premium", []string{"£97", "£4,997"}, domain.PositioningPremium},
		{"no parseable tokens", []string{}, domain.PositioningMidMarket},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyPricePositioning(tt.tokens))
		})
	}
}

func TestAggregateDifferentiators(t *testing.T) {
	a := newTestAggregator()

	signals := domain.NewScrapedSignals("https://competitor.com")
	signals.Guarantees = []string{"Full money back guarantee"}
	signals.UrgencyPhrases = []string{"Only 3 spots left"}
	for i := 0; i < 6; i++ {
		signals.Testimonials = append(signals.Testimonials, fmt.Sprintf("Great results, testimonial number %d", i))
	}

	intel := a.Aggregate([]*domain.ScrapedSignals{signals}, nil)

	assert.Contains(t, intel.Differentiators, "Offers a guarantee")
	assert.Contains(t, intel.Differentiators, "Strong social proof")
	assert.Contains(t, intel.Differentiators, "Uses urgency tactics")
	assert.Empty(t, intel.Weaknesses)
}

func TestAggregateKnownFactsWin(t *testing.T) {
	a := newTestAggregator()

	signals := domain.NewScrapedSignals("https://competitor.com")
	signals.BusinessType = "Fitness Studio"

	intel := a.Aggregate([]*domain.ScrapedSignals{signals}, &domain.KnownFacts{
		BusinessType:    "Aesthetic Clinic",
		Differentiators: []string{"Award-winning practitioners"},
	})

	assert.Equal(t, "Aesthetic Clinic", intel.BusinessType)
	assert.Equal(t, "Award-winning practitioners", intel.Differentiators[0])
}

func TestAggregateAdsSpendAndPatterns(t *testing.T) {
	a := newTestAggregator()

	ads := make([]domain.AdRecord, 0, 12)
	for i := 0; i < 9; i++ {
		ads = append(ads, domain.AdRecord{AdvertiserName: "Glow Clinic", Text: "Book your consultation today"})
	}
	for i := 0; i < 3; i++ {
		ads = append(ads, domain.AdRecord{AdvertiserName: "Glow Clinic", Text: "See the before and after photos"})
	}

	intel := &domain.CompetitorIntelligence{}
	a.AggregateAds(intel, ads)

	require.NotNil(t, intel.EstimatedSpend)
	assert.Equal(t, domain.SpendHigh, intel.EstimatedSpend.Level)
	assert.Equal(t, 12, intel.ActiveAdCount)
	require.NotNil(t, intel.CreativePatterns)
	assert.True(t, intel.CreativePatterns.HasBeforeAfter)
	assert.False(t, intel.CreativePatterns.HasVideo)
}

func TestEstimateSpendThresholds(t *testing.T) {
	tests := []struct {
		count int
		want  domain.SpendLevel
	}{
		{0, domain.SpendLow},
		{5, domain.SpendLow},
		{6, domain.SpendMedium},
		{10, domain.SpendMedium},
		{11, domain.SpendHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, estimateSpend(tt.count).Level, "count %d", tt.count)
	}
}

func TestReverseEngineerFunnel(t *testing.T) {
	a := newTestAggregator()

	signals := domain.NewScrapedSignals("https://competitor.com")
	signals.Headlines = []string{"Transform Your Body"}
	signals.Features = []string{"8 week programme"}
	signals.Prices = []string{"£997"}
	signals.Guarantees = []string{"Money back guarantee"}
	signals.CTALabels = []string{"Book Now"}

	intel := a.Aggregate([]*domain.ScrapedSignals{signals}, nil)

	require.Len(t, intel.Funnel, 4)
	assert.Equal(t, "awareness", intel.Funnel[0].Stage)
	assert.Equal(t, "interest", intel.Funnel[1].Stage)
	assert.Equal(t, "consideration", intel.Funnel[2].Stage)
	assert.Equal(t, "conversion", intel.Funnel[3].Stage)
	assert.Contains(t, intel.Funnel[3].Elements, "Book Now")
	assert.Contains(t, intel.Funnel[3].Elements, "Money back guarantee")
}

func TestParseAdRecords(t *testing.T) {
	body := []byte(`{
		"data": [
			{
				"page_name": "Glow Clinic",
				"ad_creative_bodies": ["Before and after results you won't believe"],
				"ad_delivery_start_time": "2026-07-01",
				"media_type": "VIDEO",
				"cta_type": "BOOK_NOW"
			},
			{
				"page_name": "Glow Clinic",
				"ad_creative_link_titles": ["Summer offer"]
			}
		]
	}`)

	ads := parseAdRecords(body)
	require.Len(t, ads, 2)
	assert.Equal(t, "Glow Clinic", ads[0].AdvertiserName)
	assert.True(t, ads[0].HasVideo)
	assert.Equal(t, "BOOK_NOW", ads[0].CTALabel)
	assert.Equal(t, "Summer offer", ads[1].Text)
	assert.False(t, ads[1].HasVideo)
}
