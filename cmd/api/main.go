package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/offerpilot/offerpilot/internal/api"
	"github.com/offerpilot/offerpilot/internal/config"
	"github.com/offerpilot/offerpilot/internal/extract"
	"github.com/offerpilot/offerpilot/internal/fetch"
	"github.com/offerpilot/offerpilot/internal/intel"
	"github.com/offerpilot/offerpilot/internal/llm"
	"github.com/offerpilot/offerpilot/internal/observability"
	"github.com/offerpilot/offerpilot/internal/offer"
	"github.com/offerpilot/offerpilot/internal/repository/postgres"
	rediscache "github.com/offerpilot/offerpilot/internal/repository/redis"
	"github.com/offerpilot/offerpilot/internal/resilience"
	"github.com/offerpilot/offerpilot/internal/scoring"
	"github.com/offerpilot/offerpilot/internal/services/analysis"
	"github.com/offerpilot/offerpilot/internal/storage"
)

func main() {
	// Local development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(string(cfg.Env), cfg.GetLogLevel())
	defer logger.Sync()

	logger.Info("Starting OfferPilot API",
		zap.String("version", cfg.App.Version),
		zap.String("environment", string(cfg.Env)),
	)

	// Connect to PostgreSQL (optional; analyses work without persistence)
	var db *postgres.DB
	var repos *postgres.Repositories
	db, err = postgres.New(cfg.Database)
	if err != nil {
		logger.Warn("Failed to connect to database, persistence disabled", zap.Error(err))
		db = nil
	} else {
		defer db.Close()
		repos = postgres.NewRepositories(db.DB)
		logger.Info("Connected to PostgreSQL",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
		)
	}

	// Connect to Redis (optional)
	var cache *rediscache.Cache
	cache, err = rediscache.New(cfg.Redis)
	if err != nil {
		logger.Warn("Failed to connect to Redis, caching disabled", zap.Error(err))
		cache = nil
	} else {
		defer cache.Close()
		logger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr()))
	}

	// Screenshot storage (optional)
	var screenshotStore fetch.StorageClient
	if cfg.Storage.Enabled {
		minioClient, err := storage.NewMinIOClient(cfg.Storage)
		if err != nil {
			logger.Warn("Failed to create storage client, screenshots disabled", zap.Error(err))
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := minioClient.EnsureBucket(ctx); err != nil {
				logger.Warn("Failed to ensure storage bucket, screenshots disabled", zap.Error(err))
			} else {
				screenshotStore = minioClient
			}
			cancel()
		}
	}

	metrics := observability.NewMetrics(cfg.App.Name)

	browser := fetch.NewBrowserFetcher(cfg.Fetcher, screenshotStore, logger)
	defer browser.Close()
	static := fetch.NewStaticFetcher(cfg.Fetcher, logger)

	anthropic := llm.NewAnthropicProvider(cfg.Anthropic)
	openai := llm.NewOpenAIProvider(cfg.OpenAI)

	breakers := resilience.NewManager()
	chain := offer.NewChain(logger,
		offer.NewModelStrategy(
			offer.NewModelSynthesizer(anthropic, logger),
			breakers.Get(anthropic.Name(), resilience.ProviderConfig(anthropic.Name())),
			offer.DefaultAttemptTimeout,
		),
		offer.NewModelStrategy(
			offer.NewModelSynthesizer(openai, logger),
			breakers.Get(openai.Name(), resilience.ProviderConfig(openai.Name())),
			offer.DefaultAttemptTimeout,
		),
		offer.NewTemplateStrategy(offer.NewTemplateSynthesizer(logger)),
	)
	chain.SetObserver(metrics.RecordProviderAttempt)

	go collectGauges(metrics, db, anthropic, openai)

	deps := analysis.Deps{
		Browser:    browser,
		Static:     static,
		Extractor:  extract.NewExtractor(logger),
		Aggregator: intel.NewAggregator(logger),
		Ads:        intel.NewAdLibraryClient(cfg.AdLibrary, logger),
		Chain:      chain,
		Scorer:     scoring.NewScorer(scoring.DefaultRuleset(), logger),
		Metrics:    metrics,
	}
	if repos != nil {
		deps.Offers = repos.Offers
		deps.Assessments = repos.Assessments
	}
	if cache != nil {
		deps.Cache = cache
	}

	service := analysis.New(deps, logger)

	// Widget config lives in Redis when available, in memory otherwise.
	var configStore rediscache.ConfigStore
	if cache != nil {
		configStore = rediscache.NewConfigStore(cache)
	} else {
		configStore = rediscache.NewMemoryConfigStore()
	}

	rateLimit := 0
	if cfg.RateLimits.Enabled {
		rateLimit = cfg.RateLimits.RequestsPerMin
	}

	router := api.NewRouter(api.RouterConfig{
		Service:     service,
		ConfigStore: configStore,
		DB:          db,
		Cache:       cache,
		Breakers:    breakers,
		Metrics:     metrics,
		Logger:      logger,
		EnableCORS:  true,
		RateLimit:   rateLimit,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API server listening", zap.String("addr", addr))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Fatal("Server error", zap.Error(err))

	case sig := <-shutdown:
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown failed, forcing close", zap.Error(err))
			server.Close()
		}

		logger.Info("Server stopped gracefully")
	}
}

// collectGauges periodically samples runtime and dependency state into
// Prometheus. Token counters are cumulative in the providers, so deltas
// are fed to the monotonic counters here.
func collectGauges(metrics *observability.Metrics, db *postgres.DB, anthropic *llm.AnthropicProvider, openai *llm.OpenAIProvider) {
	var lastAnthropicIn, lastAnthropicOut, lastOpenAIIn, lastOpenAIOut int64

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		metrics.GoroutinesActive.Set(float64(runtime.NumGoroutine()))
		if db != nil {
			metrics.DBConnectionsActive.Set(float64(db.Stats().OpenConnections))
		}

		in, out := anthropic.TokenTotals()
		metrics.ProviderTokensUsed.WithLabelValues("anthropic", "input").Add(float64(in - lastAnthropicIn))
		metrics.ProviderTokensUsed.WithLabelValues("anthropic", "output").Add(float64(out - lastAnthropicOut))
		lastAnthropicIn, lastAnthropicOut = in, out

		in, out = openai.TokenTotals()
		metrics.ProviderTokensUsed.WithLabelValues("openai", "input").Add(float64(in - lastOpenAIIn))
		metrics.ProviderTokensUsed.WithLabelValues("openai", "output").Add(float64(out - lastOpenAIOut))
		lastOpenAIIn, lastOpenAIOut = in, out
	}
}

// initLogger creates a configured zap logger
func initLogger(env, level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := config.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	return logger
}
