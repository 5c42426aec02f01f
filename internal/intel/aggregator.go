package intel

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/offerpilot/offerpilot/internal/domain"
)

// Spend and positioning thresholds. Arbitrary business tuning carried over
// as data so it can be revised without touching pipeline logic.
const (
	premiumPriceFloor   = 1000.0
	budgetPriceCeiling  = 500.0
	socialProofMinCount = 6 // more than 5 testimonials reads as social proof
	highSpendAdCount    = 10
	mediumSpendAdCount  = 5
)

var priceDigitsRe = regexp.MustCompile(`\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?`)

// Aggregator merges extracted signals, and optionally ad records and
// statically known facts, into a single competitor intelligence view.
// Stateless; signals are not retained after aggregation.
type Aggregator struct {
	logger *zap.Logger
}

// NewAggregator creates an intelligence aggregator.
func NewAggregator(logger *zap.Logger) *Aggregator {
	return &Aggregator{logger: logger.Named("intel")}
}

// Aggregate merges one or more fetches' signals for a single business.
// Known facts win over scraped inference on conflict.
func (a *Aggregator) Aggregate(signals []*domain.ScrapedSignals, facts *domain.KnownFacts) *domain.CompetitorIntelligence {
	intel := &domain.CompetitorIntelligence{
		BusinessType:    "Service Business",
		Currency:        domain.CurrencyUSD,
		Differentiators: []string{},
		Weaknesses:      []string{},
		AnalyzedAt:      time.Now().UTC(),
	}

	var prices, headlines, guarantees, testimonials, urgency, ctas, features []string
	for _, s := range signals {
		if s == nil {
			continue
		}
		if intel.BusinessID == "" {
			intel.BusinessID = s.SourceURL
		}
		if s.BusinessType != "" && s.BusinessType != "Service Business" {
			intel.BusinessType = s.BusinessType
		}
		if s.Currency != "" {
			intel.Currency = s.Currency
		}
		prices = append(prices, s.Prices...)
		headlines = append(headlines, s.Headlines...)
		guarantees = append(guarantees, s.Guarantees...)
		testimonials = append(testimonials, s.Testimonials...)
		urgency = append(urgency, s.UrgencyPhrases...)
		ctas = append(ctas, s.CTALabels...)
		features = append(features, s.Features...)
	}

	intel.PriceTokens = prices
	intel.PricePositioning = classifyPricePositioning(prices)
	intel.Headlines = headlines
	intel.Guarantees = guarantees

	intel.Differentiators, intel.Weaknesses = deriveStrengthsAndGaps(guarantees, testimonials, urgency)
	intel.Funnel = reverseEngineerFunnel(headlines, features, prices, guarantees, ctas)

	if facts != nil {
		applyKnownFacts(intel, facts)
	}

	a.logger.Debug("aggregated intelligence",
		zap.String("business_id", intel.BusinessID),
		zap.String("positioning", string(intel.PricePositioning)),
		zap.Int("weaknesses", len(intel.Weaknesses)))

	return intel
}

// AggregateAds folds raw ad records into the intelligence: spend estimate
// from active ad count and creative patterns from presence checks over the
// ad-text corpus.
func (a *Aggregator) AggregateAds(intel *domain.CompetitorIntelligence, ads []domain.AdRecord) {
	intel.ActiveAdCount = len(ads)
	intel.EstimatedSpend = estimateSpend(len(ads))

	patterns := &domain.CreativePatterns{}
	for _, ad := range ads {
		lower := strings.ToLower(ad.Text)
		if ad.HasVideo {
			patterns.HasVideo = true
		}
		if strings.Contains(lower, "before") && strings.Contains(lower, "after") {
			patterns.HasBeforeAfter = true
		}
		if strings.Contains(lower, "review") || strings.Contains(lower, "testimonial") ||
			strings.Contains(lower, "clients") || strings.Contains(lower, "5 star") || strings.Contains(lower, "five star") {
			patterns.HasSocialProof = true
		}
	}
	switch {
	case patterns.HasVideo:
		patterns.VisualStyle = "video-led"
	case patterns.HasBeforeAfter:
		patterns.VisualStyle = "transformation"
	case len(ads) > 0:
		patterns.VisualStyle = "static"
	}
	intel.CreativePatterns = patterns
}

// AggregateIndustry fans multiple per-competitor analyses into one industry
// view: the dominant spend level and the union of creative patterns.
func (a *Aggregator) AggregateIndustry(industry string, competitors []*domain.CompetitorIntelligence) *domain.AggregatedIndustryIntelligence {
	out := &domain.AggregatedIndustryIntelligence{
		Industry:    industry,
		Competitors: competitors,
		AnalyzedAt:  time.Now().UTC(),
	}

	spendVotes := map[domain.SpendLevel]int{}
	for _, c := range competitors {
		if c.EstimatedSpend != nil {
			spendVotes[c.EstimatedSpend.Level]++
		}
		if c.CreativePatterns != nil {
			if c.CreativePatterns.HasVideo {
				out.CommonPatterns.HasVideo = true
			}
			if c.CreativePatterns.HasBeforeAfter {
				out.CommonPatterns.HasBeforeAfter = true
			}
			if c.CreativePatterns.HasSocialProof {
				out.CommonPatterns.HasSocialProof = true
			}
		}
	}

	out.DominantSpend = domain.SpendLow
	best := 0
	for _, level := range []domain.SpendLevel{domain.SpendHigh, domain.SpendMedium, domain.SpendLow} {
		if spendVotes[level] > best {
			best = spendVotes[level]
			out.DominantSpend = level
		}
	}

	return out
}

// classifyPricePositioning buckets a price-token set. Premium evidence wins
// ties over budget evidence: overestimating a competitor is the safer error
// for the downstream undercutting strategy.
func classifyPricePositioning(tokens []string) domain.PricePositioning {
	var premium, budget bool
	for _, token := range tokens {
		value, ok := parsePriceValue(token)
		if !ok {
			continue
		}
		digits := strings.ReplaceAll(priceDigitsRe.FindString(token), ",", "")
		if dot := strings.IndexByte(digits, '.'); dot >= 0 {
			digits = digits[:dot]
		}
		if value >= premiumPriceFloor || strings.HasSuffix(digits, "999") || strings.HasSuffix(digits, "000") {
			premium = true
		}
		if value < budgetPriceCeiling {
			budget = true
		}
	}
	switch {
	case premium:
		return domain.PositioningPremium
	case budget:
		return domain.PositioningBudget
	default:
		return domain.PositioningMidMarket
	}
}

func parsePriceValue(token string) (float64, bool) {
	digits := priceDigitsRe.FindString(token)
	if digits == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func deriveStrengthsAndGaps(guarantees, testimonials, urgency []string) (differentiators, weaknesses []string) {
	differentiators = []string{}
	weaknesses = []string{}

	if len(guarantees) > 0 {
		differentiators = append(differentiators, "Offers a guarantee")
	} else {
		weaknesses = append(weaknesses, "No clear guarantee")
	}

	if len(testimonials) >= socialProofMinCount {
		differentiators = append(differentiators, "Strong social proof")
	} else if len(testimonials) == 0 {
		weaknesses = append(weaknesses, "No visible testimonials")
	}

	if len(urgency) > 0 {
		differentiators = append(differentiators, "Uses urgency tactics")
	} else {
		weaknesses = append(weaknesses, "No urgency or scarcity")
	}

	return differentiators, weaknesses
}

// estimateSpend maps active ad count to a spend level with the heuristic
// spelled out in the reasoning string.
func estimateSpend(adCount int) *domain.EstimatedSpend {
	level := domain.SpendLow
	switch {
	case adCount > highSpendAdCount:
		level = domain.SpendHigh
	case adCount > mediumSpendAdCount:
		level = domain.SpendMedium
	}
	return &domain.EstimatedSpend{
		Level:     level,
		Reasoning: fmt.Sprintf("%d active ads in the transparency library", adCount),
	}
}

// reverseEngineerFunnel relabels extracted copy by the funnel stage it
// serves. Pure grouping, no new computation.
func reverseEngineerFunnel(headlines, features, prices, guarantees, ctas []string) []domain.FunnelStage {
	var funnel []domain.FunnelStage
	if len(headlines) > 0 {
		funnel = append(funnel, domain.FunnelStage{Stage: "awareness", Elements: headlines})
	}
	if len(features) > 0 {
		funnel = append(funnel, domain.FunnelStage{Stage: "interest", Elements: features})
	}
	if len(prices) > 0 {
		funnel = append(funnel, domain.FunnelStage{Stage: "consideration", Elements: prices})
	}
	conversion := append(append([]string{}, guarantees...), ctas...)
	if len(conversion) > 0 {
		funnel = append(funnel, domain.FunnelStage{Stage: "conversion", Elements: conversion})
	}
	return funnel
}

func applyKnownFacts(intel *domain.CompetitorIntelligence, facts *domain.KnownFacts) {
	if facts.BusinessType != "" {
		intel.BusinessType = facts.BusinessType
	}
	if len(facts.Differentiators) > 0 {
		intel.Differentiators = mergePreferring(facts.Differentiators, intel.Differentiators)
	}
	if len(facts.Weaknesses) > 0 {
		intel.Weaknesses = mergePreferring(facts.Weaknesses, intel.Weaknesses)
	}
}

// mergePreferring concatenates preferred then derived, deduplicated, with
// preferred entries first.
func mergePreferring(preferred, derived []string) []string {
	out := make([]string, 0, len(preferred)+len(derived))
	seen := make(map[string]struct{})
	for _, lists := range [][]string{preferred, derived} {
		for _, v := range lists {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
