package domain

// Currency is the detected pricing currency of a scraped source.
type Currency string

const (
	CurrencyGBP Currency = "GBP"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// Symbol returns the display symbol for the currency.
func (c Currency) Symbol() string {
	switch c {
	case CurrencyGBP:
		return "£"
	case CurrencyEUR:
		return "€"
	default:
		return "$"
	}
}

// Caps on extracted signal sequences. Everything downstream (prompts,
// aggregation heuristics) is sized against these.
const (
	MaxPrices        = 10
	MaxSignalSamples = 20
)

// ScrapedSignals is one fetch's worth of extracted content. Sequences are
// deduplicated but preserve document order. Created fresh per fetch, never
// mutated after construction, and discarded after aggregation.
type ScrapedSignals struct {
	SourceURL      string   `json:"source_url"`
	BusinessType   string   `json:"business_type"`
	Currency       Currency `json:"currency"`
	Prices         []string `json:"prices"`
	Headlines      []string `json:"headlines"`
	Features       []string `json:"features"`
	Testimonials   []string `json:"testimonials"`
	Guarantees     []string `json:"guarantees"`
	UrgencyPhrases []string `json:"urgency_phrases"`
	CTALabels      []string `json:"cta_labels"`
}

// IsEmpty reports whether the fetch produced no usable signals at all.
func (s *ScrapedSignals) IsEmpty() bool {
	return len(s.Prices) == 0 &&
		len(s.Headlines) == 0 &&
		len(s.Features) == 0 &&
		len(s.Testimonials) == 0 &&
		len(s.Guarantees) == 0 &&
		len(s.UrgencyPhrases) == 0 &&
		len(s.CTALabels) == 0
}

// NewScrapedSignals returns empty (not nil) signal slices so callers can
// range without nil checks.
func NewScrapedSignals(sourceURL string) *ScrapedSignals {
	return &ScrapedSignals{
		SourceURL:      sourceURL,
		BusinessType:   "Service Business",
		Currency:       CurrencyUSD,
		Prices:         []string{},
		Headlines:      []string{},
		Features:       []string{},
		Testimonials:   []string{},
		Guarantees:     []string{},
		UrgencyPhrases: []string{},
		CTALabels:      []string{},
	}
}

// DedupeCapped appends items to dst in order, skipping duplicates, until
// the cap is reached. Used by the extractor to enforce the sample caps.
func DedupeCapped(dst []string, items []string, cap int) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, v := range dst {
		seen[v] = struct{}{}
	}
	for _, v := range items {
		if len(dst) >= cap {
			break
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		dst = append(dst, v)
	}
	return dst
}
