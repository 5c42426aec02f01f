package offer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/offerpilot/offerpilot/internal/domain"
)

func TestTemplateSynthesizerPricingInvariant(t *testing.T) {
	s := NewTemplateSynthesizer(zap.NewNop())

	for businessType := range industryTemplates {
		for _, style := range []Style{StyleFormulaA, StyleFormulaB, StyleFormulaC} {
			intel := &domain.CompetitorIntelligence{
				BusinessType: businessType,
				Currency:     domain.CurrencyGBP,
			}
			out := s.Synthesize(intel, style)

			require.NoError(t, out.Validate(), "%s/%s", businessType, style)
			assert.Less(t, out.Pricing.OfferPrice, out.Pricing.TotalValue, "%s/%s", businessType, style)
			assert.InDelta(t, out.StackedValue(), out.Pricing.TotalValue, 0.01, "%s/%s", businessType, style)
			assert.Equal(t, domain.CurrencyGBP, out.Pricing.Currency)
		}
	}
}

func TestTemplateSynthesizerStyleChangesPrice(t *testing.T) {
	s := NewTemplateSynthesizer(zap.NewNop())
	intel := &domain.CompetitorIntelligence{BusinessType: "Fitness Studio", Currency: domain.CurrencyUSD}

	conservative := s.Synthesize(intel, StyleFormulaA)
	aggressive := s.Synthesize(intel, StyleFormulaC)

	assert.Greater(t, conservative.Pricing.OfferPrice, aggressive.Pricing.OfferPrice)
}

func TestTemplateSynthesizerExploitsGuaranteeGap(t *testing.T) {
	s := NewTemplateSynthesizer(zap.NewNop())

	withGap := s.Synthesize(&domain.CompetitorIntelligence{
		BusinessType: "Aesthetic Clinic",
		Currency:     domain.CurrencyGBP,
		Weaknesses:   []string{"No clear guarantee"},
	}, StyleFormulaB)
	assert.Equal(t, guaranteeExploitGap, withGap.Guarantee)

	without := s.Synthesize(&domain.CompetitorIntelligence{
		BusinessType: "Aesthetic Clinic",
		Currency:     domain.CurrencyGBP,
	}, StyleFormulaB)
	assert.Equal(t, guaranteeStandard, without.Guarantee)
}

func TestTemplateSynthesizerUnknownIndustryFallsBack(t *testing.T) {
	s := NewTemplateSynthesizer(zap.NewNop())

	out := s.Synthesize(&domain.CompetitorIntelligence{
		BusinessType: "Submarine Manufacturer",
		Currency:     domain.CurrencyEUR,
	}, StyleFormulaB)

	require.NoError(t, out.Validate())
	assert.Equal(t, industryTemplates["Service Business"].DreamOutcome, out.DreamOutcome)
}

func TestWireOfferClampsPriceViolation(t *testing.T) {
	raw := `{
		"dream_outcome": "x",
		"value_stack": [{"item": "a", "value": 600, "description": ""}, {"item": "b", "value": 400, "description": ""}],
		"pricing": {"total_value": 0, "offer_price": 5000, "payment_plan": null},
		"guarantee": "g",
		"urgency": "u",
		"scarcity": "s",
		"bonuses": []
	}`

	var wire generatedOfferWire
	require.NoError(t, json.Unmarshal([]byte(raw), &wire))

	out := wire.toDomain(domain.CurrencyGBP)
	out.Normalize()

	// Total derives from the stack; the violating price clamps to 20%.
	assert.Equal(t, 1000.0, out.Pricing.TotalValue)
	assert.Equal(t, 200.0, out.Pricing.OfferPrice)
	assert.NoError(t, out.Validate())
}

func TestWireOfferRejectsPartialObject(t *testing.T) {
	raw := `{"dream_outcome": "x", "pricing": {"total_value": 100, "offer_price": 20}}`

	var wire generatedOfferWire
	require.NoError(t, json.Unmarshal([]byte(raw), &wire))

	out := wire.toDomain(domain.CurrencyUSD)
	out.Normalize()
	assert.Error(t, out.Validate())
}

func TestBuildPromptIncludesIntelligence(t *testing.T) {
	intel := &domain.CompetitorIntelligence{
		BusinessType:     "Aesthetic Clinic",
		Currency:         domain.CurrencyGBP,
		PricePositioning: domain.PositioningPremium,
		PriceTokens:      []string{"£1,997"},
		Weaknesses:       []string{"No clear guarantee"},
		EstimatedSpend:   &domain.EstimatedSpend{Level: domain.SpendHigh, Reasoning: "12 active ads"},
	}

	prompt := buildPrompt(intel, StyleFormulaC)
	assert.Contains(t, prompt, "Aesthetic Clinic")
	assert.Contains(t, prompt, "premium")
	assert.Contains(t, prompt, "£1,997")
	assert.Contains(t, prompt, "No clear guarantee")
	assert.Contains(t, prompt, "formula_c")
}

func TestParseStyle(t *testing.T) {
	assert.Equal(t, StyleFormulaA, ParseStyle("formula_a"))
	assert.Equal(t, StyleFormulaC, ParseStyle("formula_c"))
	assert.Equal(t, StyleFormulaB, ParseStyle("formula_b"))
	assert.Equal(t, StyleFormulaB, ParseStyle(""))
	assert.Equal(t, StyleFormulaB, ParseStyle("bogus"))
}
