package domain

import "time"

// PricePositioning buckets a competitor by its visible price points.
type PricePositioning string

const (
	PositioningBudget    PricePositioning = "budget"
	PositioningMidMarket PricePositioning = "mid-market"
	PositioningPremium   PricePositioning = "premium"
)

// SpendLevel estimates a competitor's advertising spend.
type SpendLevel string

const (
	SpendLow    SpendLevel = "low"
	SpendMedium SpendLevel = "medium"
	SpendHigh   SpendLevel = "high"
)

// EstimatedSpend carries the spend estimate plus the heuristic that produced it.
type EstimatedSpend struct {
	Level     SpendLevel `json:"level"`
	Reasoning string     `json:"reasoning"`
}

// CreativePatterns summarizes recurring patterns across a competitor's ad creatives.
type CreativePatterns struct {
	HasVideo       bool   `json:"has_video"`
	HasBeforeAfter bool   `json:"has_before_after"`
	HasSocialProof bool   `json:"has_social_proof"`
	VisualStyle    string `json:"visual_style,omitempty"`
}

// FunnelStage groups extracted copy by the stage of the funnel it serves.
type FunnelStage struct {
	Stage    string   `json:"stage"` // "awareness", "interest", "consideration", "conversion"
	Elements []string `json:"elements"`
}

// KnownFacts are statically known attributes of a business, merged into
// aggregation output. Known facts win over scraped inference on conflict.
type KnownFacts struct {
	BusinessType    string   `json:"business_type,omitempty"`
	Differentiators []string `json:"differentiators,omitempty"`
	Weaknesses      []string `json:"weaknesses,omitempty"`
	AdLibraryPageID string   `json:"ad_library_page_id,omitempty"`
}

// CompetitorIntelligence is the aggregation of one or more ScrapedSignals
// (and optionally ad records) for a single competitor or business.
type CompetitorIntelligence struct {
	BusinessID       string           `json:"business_id"` // domain or ad-library page id
	BusinessName     string           `json:"business_name,omitempty"`
	BusinessType     string           `json:"business_type"`
	Currency         Currency         `json:"currency"`
	PricePositioning PricePositioning `json:"price_positioning"`
	PriceTokens      []string         `json:"price_tokens,omitempty"`
	Differentiators  []string         `json:"differentiators"`
	Weaknesses       []string         `json:"weaknesses"`
	EstimatedSpend   *EstimatedSpend  `json:"estimated_spend,omitempty"`
	CreativePatterns *CreativePatterns `json:"creative_patterns,omitempty"`
	Funnel           []FunnelStage    `json:"funnel,omitempty"`
	ActiveAdCount    int              `json:"active_ad_count,omitempty"`
	Headlines        []string         `json:"headlines,omitempty"`
	Guarantees       []string         `json:"guarantees,omitempty"`
	AnalyzedAt       time.Time        `json:"analyzed_at"`
}

// AggregatedIndustryIntelligence fans multiple competitor analyses into a
// single industry view for the ad-sweep endpoint.
type AggregatedIndustryIntelligence struct {
	Industry      string                    `json:"industry"`
	Competitors   []*CompetitorIntelligence `json:"competitors"`
	DominantSpend SpendLevel                `json:"dominant_spend"`
	CommonPatterns CreativePatterns         `json:"common_patterns"`
	AnalyzedAt    time.Time                 `json:"analyzed_at"`
}

// AdRecord is one raw ad as returned by the ad-transparency source.
type AdRecord struct {
	AdvertiserName string `json:"advertiser_name"`
	Text           string `json:"text"`
	HasVideo       bool   `json:"has_video"`
	StartDate      string `json:"start_date,omitempty"`
	CTALabel       string `json:"cta_label,omitempty"`
}
