package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/offerpilot/offerpilot/internal/domain"
)

// Bounds on the text length of individual extracted elements. Anything
// outside these is navigation chrome or boilerplate, not signal.
const (
	minHeadlineLen    = 5
	maxHeadlineLen    = 200
	minCTALen         = 2
	maxCTALen         = 50
	minFeatureLen     = 4
	maxFeatureLen     = 160
	minTestimonialLen = 20
	maxTestimonialLen = 500
	maxPhraseLen      = 200
)

var (
	priceRe = regexp.MustCompile(`[£$€]\s?\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?|\b\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?\s?(?:GBP|USD|EUR)\b`)

	whitespaceRe = regexp.MustCompile(`\s+`)
	sentenceRe   = regexp.MustCompile(`[.!?\n]+`)
)

// Extractor pulls commercial signals out of fetched HTML. Stateless and
// safe for concurrent use; all tuning lives in the keyword tables.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates a signal extractor.
func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger.Named("extract")}
}

// Extract parses the HTML and returns deduplicated, capped signals.
// A page that yields nothing in every category is a valid result, not an
// error; only unparseable input fails.
func (e *Extractor) Extract(sourceURL, html string) (*domain.ScrapedSignals, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, domain.ErrParseFailure("extractor", err)
	}

	doc.Find("script, style, noscript").Remove()

	signals := domain.NewScrapedSignals(sourceURL)

	rawText := doc.Text()
	pageText := normalizeSpace(rawText)
	lowerText := strings.ToLower(pageText)

	signals.BusinessType = classifyBusinessType(lowerText)
	signals.Currency = detectCurrency(pageText, sourceURL)
	signals.Prices = domain.DedupeCapped(signals.Prices, priceRe.FindAllString(pageText, -1), domain.MaxPrices)

	signals.Headlines = e.collectText(doc, "h1, h2, h3", minHeadlineLen, maxHeadlineLen)
	signals.Features = e.collectSelectors(doc, featureSelectors, minFeatureLen, maxFeatureLen)
	signals.Testimonials = e.collectSelectors(doc, testimonialSelectors, minTestimonialLen, maxTestimonialLen)
	signals.CTALabels = e.collectSelectors(doc, ctaSelectors, minCTALen, maxCTALen)
	signals.Guarantees = collectPhrases(rawText, guaranteeKeywords)
	signals.UrgencyPhrases = collectPhrases(rawText, urgencyKeywords)

	e.logger.Debug("extracted signals",
		zap.String("url", sourceURL),
		zap.String("business_type", signals.BusinessType),
		zap.String("currency", string(signals.Currency)),
		zap.Int("prices", len(signals.Prices)),
		zap.Int("headlines", len(signals.Headlines)),
		zap.Bool("empty", signals.IsEmpty()))

	return signals, nil
}

// collectText gathers text from a selector, bounded by length, in document order.
func (e *Extractor) collectText(doc *goquery.Document, selector string, minLen, maxLen int) []string {
	var items []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		text := normalizeSpace(s.Text())
		if len(text) >= minLen && len(text) <= maxLen {
			items = append(items, text)
		}
	})
	return domain.DedupeCapped([]string{}, items, domain.MaxSignalSamples)
}

// collectSelectors tries each selector in order and merges results under
// the shared cap. Later selectors only fill remaining room.
func (e *Extractor) collectSelectors(doc *goquery.Document, selectors []string, minLen, maxLen int) []string {
	out := []string{}
	for _, selector := range selectors {
		if len(out) >= domain.MaxSignalSamples {
			break
		}
		var items []string
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			text := normalizeSpace(s.Text())
			if len(text) >= minLen && len(text) <= maxLen {
				items = append(items, text)
			}
		})
		out = domain.DedupeCapped(out, items, domain.MaxSignalSamples)
	}
	return out
}

// collectPhrases splits raw text into sentences, using element boundaries
// as separators, and keeps those containing any of the keywords.
func collectPhrases(rawText string, keywords []string) []string {
	var matches []string
	for _, sentence := range sentenceRe.Split(rawText, -1) {
		sentence = normalizeSpace(sentence)
		if sentence == "" || len(sentence) > maxPhraseLen {
			continue
		}
		lower := strings.ToLower(sentence)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matches = append(matches, sentence)
				break
			}
		}
	}
	return domain.DedupeCapped([]string{}, matches, domain.MaxSignalSamples)
}

// classifyBusinessType returns the first rule whose keywords appear in the
// page text. Unmatched pages keep the generic default.
func classifyBusinessType(lowerText string) string {
	for _, rule := range businessTypeRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lowerText, kw) {
				return rule.Type
			}
		}
	}
	return "Service Business"
}

// detectCurrency counts currency markers in the page text. The TLD of the
// source wins any tie, and wins outright whenever the hinted currency has
// evidence at all: a .co.uk page showing both £ and $ reports GBP, and one
// showing no prices still reports GBP. Only unambiguous contrary evidence
// (foreign symbols with zero hinted ones) overrides the hint.
func detectCurrency(pageText, sourceURL string) domain.Currency {
	counts := map[domain.Currency]int{
		domain.CurrencyGBP: strings.Count(pageText, "£") + strings.Count(pageText, "GBP"),
		domain.CurrencyEUR: strings.Count(pageText, "€") + strings.Count(pageText, "EUR"),
		domain.CurrencyUSD: strings.Count(pageText, "$") + strings.Count(pageText, "USD"),
	}

	hint := tldHint(sourceURL)
	if hint != "" && counts[hint] > 0 {
		return hint
	}

	best := domain.Currency("")
	bestCount := 0
	tied := false
	for _, c := range []domain.Currency{domain.CurrencyGBP, domain.CurrencyEUR, domain.CurrencyUSD} {
		switch {
		case counts[c] > bestCount:
			best, bestCount, tied = c, counts[c], false
		case counts[c] == bestCount && bestCount > 0:
			tied = true
		}
	}

	if bestCount > 0 && !tied {
		return best
	}
	if hint != "" {
		return hint
	}
	if bestCount > 0 {
		return best
	}
	return domain.CurrencyUSD
}

func tldHint(sourceURL string) domain.Currency {
	parsed, err := url.Parse(sourceURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	switch {
	case strings.HasSuffix(host, ".co.uk"), strings.HasSuffix(host, ".uk"):
		return domain.CurrencyGBP
	case strings.HasSuffix(host, ".ie"), strings.HasSuffix(host, ".eu"),
		strings.HasSuffix(host, ".de"), strings.HasSuffix(host, ".fr"),
		strings.HasSuffix(host, ".es"), strings.HasSuffix(host, ".it"),
		strings.HasSuffix(host, ".nl"):
		return domain.CurrencyEUR
	case strings.HasSuffix(host, ".us"), strings.HasSuffix(host, ".com"):
		return domain.CurrencyUSD
	}
	return ""
}

func normalizeSpace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
