package offer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/offerpilot/offerpilot/internal/domain"
	"github.com/offerpilot/offerpilot/internal/llm"
)

// TemplateSynthesizer builds offers deterministically from industry
// templates and the aggregated intelligence. It cannot fail, which is what
// makes it the terminal link of the fallback chain.
type TemplateSynthesizer struct {
	logger *zap.Logger
}

// NewTemplateSynthesizer creates a deterministic synthesizer.
func NewTemplateSynthesizer(logger *zap.Logger) *TemplateSynthesizer {
	return &TemplateSynthesizer{logger: logger.Named("offer.template")}
}

// Synthesize builds an offer for the business type in the intelligence.
// The guarantee is chosen to exploit the competitor's weaknesses: a
// competitor with no clear guarantee gets undercut with a double
// money-back one.
func (s *TemplateSynthesizer) Synthesize(intel *domain.CompetitorIntelligence, style Style) *domain.GeneratedOffer {
	tpl := templateFor(intel.BusinessType)

	stack := make([]domain.ValueItem, len(tpl.ValueStack))
	copy(stack, tpl.ValueStack)

	total := 0.0
	for _, item := range stack {
		total += item.Value
	}

	fraction := priceFractionByStyle[style]
	if fraction == 0 {
		fraction = priceFractionByStyle[StyleFormulaB]
	}
	price := math.Round(total * fraction)

	guarantee := guaranteeStandard
	for _, w := range intel.Weaknesses {
		if strings.Contains(strings.ToLower(w), "guarantee") {
			guarantee = guaranteeExploitGap
			break
		}
	}

	out := &domain.GeneratedOffer{
		DreamOutcome: tpl.DreamOutcome,
		ValueStack:   stack,
		Pricing: domain.OfferPricing{
			TotalValue: total,
			OfferPrice: price,
			Currency:   intel.Currency,
		},
		Guarantee: guarantee,
		Urgency:   urgencyByStyle[style],
		Scarcity:  scarcityByStyle[style],
		Bonuses:   append([]string{}, tpl.Bonuses...),
	}
	out.Normalize()

	s.logger.Debug("synthesized template offer",
		zap.String("business_type", intel.BusinessType),
		zap.String("style", string(style)),
		zap.Float64("offer_price", out.Pricing.OfferPrice))

	return out
}

// ModelSynthesizer builds offers via a generative model, validating the
// response against the offer schema before accepting it.
type ModelSynthesizer struct {
	provider llm.Provider
	logger   *zap.Logger
}

// NewModelSynthesizer creates a model-backed synthesizer over one provider.
func NewModelSynthesizer(provider llm.Provider, logger *zap.Logger) *ModelSynthesizer {
	return &ModelSynthesizer{
		provider: provider,
		logger:   logger.Named("offer." + provider.Name()),
	}
}

// Provider returns the underlying model provider.
func (s *ModelSynthesizer) Provider() llm.Provider { return s.provider }

const synthesisSystemPrompt = `You are a direct-response offer strategist for local service businesses.
Given competitor intelligence, design an irresistible offer that undercuts the competitor's weaknesses.
Respond with a JSON object of this exact shape:
{
  "dream_outcome": string,
  "value_stack": [{"item": string, "value": number, "description": string}],
  "pricing": {"total_value": number, "offer_price": number, "payment_plan": number or null},
  "guarantee": string,
  "urgency": string,
  "scarcity": string,
  "bonuses": [string]
}
Rules: offer_price must be well below total_value. Values are in the currency given, numbers only, no symbols.`

// Synthesize prompts the model with the aggregated intelligence and parses
// the response as a GeneratedOffer. Schema mismatch is an error so the
// chain falls through; a partial object is never trusted.
func (s *ModelSynthesizer) Synthesize(ctx context.Context, intel *domain.CompetitorIntelligence, style Style) (*domain.GeneratedOffer, error) {
	if !s.provider.Available() {
		return nil, domain.ErrProviderUnavailable(s.provider.Name(), fmt.Errorf("not configured"))
	}

	userPrompt := buildPrompt(intel, style)

	var wire generatedOfferWire
	if _, err := s.provider.CompleteJSON(ctx, synthesisSystemPrompt, userPrompt, &wire); err != nil {
		return nil, domain.ErrProviderUnavailable(s.provider.Name(), err)
	}

	out := wire.toDomain(intel.Currency)
	out.Normalize()
	if err := out.Validate(); err != nil {
		return nil, domain.ErrParseFailure(s.provider.Name(), err)
	}

	s.logger.Debug("synthesized model offer",
		zap.String("model", s.provider.Model()),
		zap.Float64("offer_price", out.Pricing.OfferPrice))

	return out, nil
}

// generatedOfferWire is the schema a model response must match. Kept
// separate from the domain type so unknown or missing fields surface as
// validation failures rather than silently defaulting.
type generatedOfferWire struct {
	DreamOutcome string `json:"dream_outcome"`
	ValueStack   []struct {
		Item        string  `json:"item"`
		Value       float64 `json:"value"`
		Description string  `json:"description"`
	} `json:"value_stack"`
	Pricing struct {
		TotalValue  float64  `json:"total_value"`
		OfferPrice  float64  `json:"offer_price"`
		PaymentPlan *float64 `json:"payment_plan"`
	} `json:"pricing"`
	Guarantee string   `json:"guarantee"`
	Urgency   string   `json:"urgency"`
	Scarcity  string   `json:"scarcity"`
	Bonuses   []string `json:"bonuses"`
}

func (w *generatedOfferWire) toDomain(currency domain.Currency) *domain.GeneratedOffer {
	out := &domain.GeneratedOffer{
		DreamOutcome: w.DreamOutcome,
		Pricing: domain.OfferPricing{
			TotalValue:  w.Pricing.TotalValue,
			OfferPrice:  w.Pricing.OfferPrice,
			PaymentPlan: w.Pricing.PaymentPlan,
			Currency:    currency,
		},
		Guarantee: w.Guarantee,
		Urgency:   w.Urgency,
		Scarcity:  w.Scarcity,
		Bonuses:   w.Bonuses,
	}
	for _, item := range w.ValueStack {
		out.ValueStack = append(out.ValueStack, domain.ValueItem{
			Item:        item.Item,
			Value:       item.Value,
			Description: item.Description,
		})
	}
	return out
}

// buildPrompt embeds the aggregated intelligence as structured context.
func buildPrompt(intel *domain.CompetitorIntelligence, style Style) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Business type: %s\n", intel.BusinessType)
	fmt.Fprintf(&sb, "Currency: %s\n", intel.Currency)
	fmt.Fprintf(&sb, "Competitor price positioning: %s\n", intel.PricePositioning)
	fmt.Fprintf(&sb, "Offer style: %s\n", style)

	if len(intel.PriceTokens) > 0 {
		fmt.Fprintf(&sb, "Competitor prices seen: %s\n", strings.Join(intel.PriceTokens, ", "))
	}
	if len(intel.Differentiators) > 0 {
		fmt.Fprintf(&sb, "Competitor strengths: %s\n", strings.Join(intel.Differentiators, "; "))
	}
	if len(intel.Weaknesses) > 0 {
		fmt.Fprintf(&sb, "Competitor weaknesses to exploit: %s\n", strings.Join(intel.Weaknesses, "; "))
	}
	if len(intel.Headlines) > 0 {
		fmt.Fprintf(&sb, "Competitor headlines: %s\n", strings.Join(intel.Headlines, " | "))
	}
	if intel.EstimatedSpend != nil {
		fmt.Fprintf(&sb, "Competitor ad spend: %s (%s)\n", intel.EstimatedSpend.Level, intel.EstimatedSpend.Reasoning)
	}
	if intel.CreativePatterns != nil {
		patterns, _ := json.Marshal(intel.CreativePatterns)
		fmt.Fprintf(&sb, "Competitor creative patterns: %s\n", patterns)
	}

	sb.WriteString("\nDesign the offer now.")
	return sb.String()
}
