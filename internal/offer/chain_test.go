package offer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/offerpilot/offerpilot/internal/domain"
)

type stubStrategy struct {
	name      string
	aiPowered bool
	offer     *domain.GeneratedOffer
	err       error
	calls     int
}

func (s *stubStrategy) Name() string    { return s.name }
func (s *stubStrategy) AIPowered() bool { return s.aiPowered }
func (s *stubStrategy) Attempt(context.Context, *domain.CompetitorIntelligence, Style) (*domain.GeneratedOffer, string, error) {
	s.calls++
	if s.err != nil {
		return nil, "", s.err
	}
	return s.offer, s.name + "-model", nil
}

func testIntel() *domain.CompetitorIntelligence {
	return &domain.CompetitorIntelligence{
		BusinessType: "Aesthetic Clinic",
		Currency:     domain.CurrencyGBP,
		Weaknesses:   []string{"No clear guarantee"},
	}
}

func validOffer() *domain.GeneratedOffer {
	o := &domain.GeneratedOffer{
		DreamOutcome: "outcome",
		ValueStack:   []domain.ValueItem{{Item: "thing", Value: 1000}},
		Pricing:      domain.OfferPricing{TotalValue: 1000, OfferPrice: 200, Currency: domain.CurrencyGBP},
		Guarantee:    "guarantee",
	}
	o.Normalize()
	return o
}

func TestChainFirstSuccessShortCircuits(t *testing.T) {
	primary := &stubStrategy{name: "anthropic", aiPowered: true, offer: validOffer()}
	secondary := &stubStrategy{name: "openai", aiPowered: true, offer: validOffer()}
	chain := NewChain(zap.NewNop(), primary, secondary)

	result, err := chain.Synthesize(context.Background(), testIntel(), StyleFormulaB, "")
	require.NoError(t, err)

	assert.True(t, result.AIPowered)
	assert.Equal(t, "anthropic-model", result.ModelUsed)
	assert.Empty(t, result.Notice)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, secondary.calls)
}

func TestChainFallsThroughToTemplate(t *testing.T) {
	primary := &stubStrategy{name: "anthropic", aiPowered: true, err: errors.New("timeout")}
	secondary := &stubStrategy{name: "openai", aiPowered: true, err: errors.New("bad gateway")}
	template := NewTemplateStrategy(NewTemplateSynthesizer(zap.NewNop()))
	chain := NewChain(zap.NewNop(), primary, secondary, template)

	result, err := chain.Synthesize(context.Background(), testIntel(), StyleFormulaB, "")
	require.NoError(t, err)

	assert.False(t, result.AIPowered)
	assert.Equal(t, TemplateStrategyName, result.ModelUsed)
	assert.NotEmpty(t, result.Notice)
	assert.Contains(t, result.Notice, "anthropic")
	assert.Contains(t, result.Notice, "openai")
	require.NotNil(t, result.Offer)
	assert.NoError(t, result.Offer.Validate())
}

func TestChainAttemptsAreSequential(t *testing.T) {
	primary := &stubStrategy{name: "anthropic", aiPowered: true, err: errors.New("down")}
	secondary := &stubStrategy{name: "openai", aiPowered: true, offer: validOffer()}
	chain := NewChain(zap.NewNop(), primary, secondary)

	result, err := chain.Synthesize(context.Background(), testIntel(), StyleFormulaB, "")
	require.NoError(t, err)

	assert.Equal(t, "openai-model", result.ModelUsed)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestChainPinnedProviderFailureIsHardError(t *testing.T) {
	primary := &stubStrategy{name: "anthropic", aiPowered: true, err: errors.New("down")}
	template := NewTemplateStrategy(NewTemplateSynthesizer(zap.NewNop()))
	chain := NewChain(zap.NewNop(), primary, template)

	_, err := chain.Synthesize(context.Background(), testIntel(), StyleFormulaB, "anthropic")
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeProviderUnavailable))
}

func TestChainPinnedUnknownProvider(t *testing.T) {
	chain := NewChain(zap.NewNop(), NewTemplateStrategy(NewTemplateSynthesizer(zap.NewNop())))

	_, err := chain.Synthesize(context.Background(), testIntel(), StyleFormulaB, "gemini")
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeValidation))
}

func TestChainCancelledContext(t *testing.T) {
	primary := &stubStrategy{name: "anthropic", aiPowered: true, offer: validOffer()}
	chain := NewChain(zap.NewNop(), primary)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := chain.Synthesize(ctx, testIntel(), StyleFormulaB, "")
	assert.Error(t, err)
	assert.Equal(t, 0, primary.calls)
}
