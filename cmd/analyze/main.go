package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/offerpilot/offerpilot/internal/config"
	"github.com/offerpilot/offerpilot/internal/extract"
	"github.com/offerpilot/offerpilot/internal/fetch"
	"github.com/offerpilot/offerpilot/internal/intel"
	"github.com/offerpilot/offerpilot/internal/llm"
	"github.com/offerpilot/offerpilot/internal/offer"
	"github.com/offerpilot/offerpilot/internal/resilience"
	"github.com/offerpilot/offerpilot/internal/scoring"
	"github.com/offerpilot/offerpilot/internal/services/analysis"
)

var (
	green  = color.New(color.FgGreen, color.Bold)
	red    = color.New(color.FgRed, color.Bold)
	yellow = color.New(color.FgYellow, color.Bold)
	cyan   = color.New(color.FgCyan, color.Bold)
	bold   = color.New(color.Bold)
)

func main() {
	godotenv.Load()

	targetURL := flag.String("url", "", "Competitor URL to analyze")
	industry := flag.String("industry", "", "Industry hint (e.g. \"Aesthetic Clinic\")")
	adSweep := flag.Bool("ad-sweep", false, "Run an industry ad sweep instead of a URL analysis (requires -industry)")
	style := flag.String("style", "formula_b", "Offer style: formula_a, formula_b or formula_c")
	provider := flag.String("provider", "", "Pin a single model provider (anthropic, openai)")
	useProxy := flag.Bool("proxy", false, "Fetch through the configured proxy")
	output := flag.String("output", "", "Write full JSON result to a file")
	verbose := flag.Bool("verbose", false, "Verbose output")

	flag.Parse()

	if *adSweep && *industry == "" {
		red.Println("❌ -ad-sweep requires -industry")
		flag.Usage()
		os.Exit(1)
	}
	if !*adSweep && *targetURL == "" {
		red.Println("❌ -url is required")
		flag.Usage()
		os.Exit(1)
	}

	var logger *zap.Logger
	if *verbose {
		logger, _ = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.OutputPaths = []string{"/dev/null"}
		logger, _ = cfg.Build()
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		red.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	service := buildService(cfg, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	if *adSweep {
		runAdSweep(ctx, service, *industry, *output)
		return
	}

	bold.Println("OfferPilot — competitor analysis")
	fmt.Printf("🎯 Target: %s\n", *targetURL)
	if *industry != "" {
		fmt.Printf("🏷  Industry: %s\n", *industry)
	}
	fmt.Println()

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Analyzing"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWriter(os.Stderr),
	)

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				bar.Add(1)
			}
		}
	}()

	result, err := service.Analyze(ctx, analysis.AnalyzeRequest{
		URL:          *targetURL,
		IndustryHint: *industry,
		Style:        *style,
		Provider:     *provider,
		UseProxy:     *useProxy,
	})
	close(done)
	bar.Finish()
	fmt.Println()

	if err != nil {
		red.Printf("❌ Analysis failed: %v\n", err)
		os.Exit(1)
	}

	printResult(result)

	if *output != "" {
		data, _ := json.MarshalIndent(result, "", "  ")
		if err := os.WriteFile(*output, data, 0644); err != nil {
			red.Printf("❌ Failed to write output: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\n📁 Full result written to %s\n", *output)
	}
}

func runAdSweep(ctx context.Context, service *analysis.Service, industry, output string) {
	bold.Println("OfferPilot — industry ad sweep")
	fmt.Printf("🏷  Industry: %s\n\n", industry)

	result, err := service.SearchIndustryAds(ctx, industry)
	if err != nil {
		red.Printf("❌ Ad sweep failed: %v\n", err)
		os.Exit(1)
	}

	bar := progressbar.NewOptions(len(result.Competitors),
		progressbar.OptionSetDescription("Competitors"),
		progressbar.OptionSetWriter(os.Stderr),
	)

	cyan.Println("── Industry view ─────────────────────────")
	fmt.Printf("   Dominant spend: %s\n", result.DominantSpend)
	fmt.Printf("   Video creatives: %v, before/after: %v, social proof: %v\n",
		result.CommonPatterns.HasVideo,
		result.CommonPatterns.HasBeforeAfter,
		result.CommonPatterns.HasSocialProof)
	fmt.Println()

	for _, c := range result.Competitors {
		bar.Add(1)
		fmt.Printf("   %-30s ads=%-4d", c.BusinessName, c.ActiveAdCount)
		if c.EstimatedSpend != nil {
			fmt.Printf(" spend=%s", c.EstimatedSpend.Level)
		}
		fmt.Println()
	}
	bar.Finish()

	if output != "" {
		data, _ := json.MarshalIndent(result, "", "  ")
		if err := os.WriteFile(output, data, 0644); err != nil {
			red.Printf("❌ Failed to write output: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\n📁 Full result written to %s\n", output)
	}
}

func buildService(cfg *config.Config, logger *zap.Logger) *analysis.Service {
	browser := fetch.NewBrowserFetcher(cfg.Fetcher, nil, logger)
	static := fetch.NewStaticFetcher(cfg.Fetcher, logger)

	anthropic := llm.NewAnthropicProvider(cfg.Anthropic)
	openai := llm.NewOpenAIProvider(cfg.OpenAI)

	chain := offer.NewChain(logger,
		offer.NewModelStrategy(
			offer.NewModelSynthesizer(anthropic, logger),
			resilience.NewCircuitBreaker(resilience.ProviderConfig(anthropic.Name())),
			offer.DefaultAttemptTimeout,
		),
		offer.NewModelStrategy(
			offer.NewModelSynthesizer(openai, logger),
			resilience.NewCircuitBreaker(resilience.ProviderConfig(openai.Name())),
			offer.DefaultAttemptTimeout,
		),
		offer.NewTemplateStrategy(offer.NewTemplateSynthesizer(logger)),
	)

	return analysis.New(analysis.Deps{
		Browser:    browser,
		Static:     static,
		Extractor:  extract.NewExtractor(logger),
		Aggregator: intel.NewAggregator(logger),
		Ads:        intel.NewAdLibraryClient(cfg.AdLibrary, logger),
		Chain:      chain,
		Scorer:     scoring.NewScorer(scoring.DefaultRuleset(), logger),
	}, logger)
}

func printResult(result *analysis.AnalyzeResult) {
	intel := result.Intelligence

	cyan.Println("── Intelligence ──────────────────────────")
	fmt.Printf("   Business type: %s\n", intel.BusinessType)
	fmt.Printf("   Positioning:   %s\n", intel.PricePositioning)
	fmt.Printf("   Currency:      %s\n", intel.Currency)
	if len(intel.PriceTokens) > 0 {
		fmt.Printf("   Prices seen:   %v\n", intel.PriceTokens)
	}
	for _, d := range intel.Differentiators {
		green.Printf("   + %s\n", d)
	}
	for _, w := range intel.Weaknesses {
		yellow.Printf("   - %s\n", w)
	}

	fmt.Println()
	cyan.Println("── Offer ─────────────────────────────────")
	offer := result.Offer
	symbol := offer.Pricing.Currency.Symbol()
	bold.Printf("   %s\n", offer.DreamOutcome)
	for _, item := range offer.ValueStack {
		fmt.Printf("   • %-40s %s%.0f\n", item.Item, symbol, item.Value)
	}
	fmt.Printf("   Total value:  %s%.0f\n", symbol, offer.Pricing.TotalValue)
	green.Printf("   Offer price:  %s%.0f\n", symbol, offer.Pricing.OfferPrice)
	fmt.Printf("   Guarantee:    %s\n", offer.Guarantee)
	fmt.Printf("   Urgency:      %s\n", offer.Urgency)

	fmt.Println()
	if result.AIPowered {
		green.Printf("✓ Generated by %s\n", result.ModelUsed)
	} else {
		yellow.Println("⚡ Template fallback (no model provider available)")
	}
	if result.Notice != "" {
		yellow.Printf("ℹ %s\n", result.Notice)
	}
}
