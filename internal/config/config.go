package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Environment represents the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration
type Config struct {
	// Environment
	Env      Environment `envconfig:"ENV" default:"development"`
	LogLevel string      `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool        `envconfig:"DEBUG" default:"false"`

	// Application
	App AppConfig

	// Server
	Server ServerConfig

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Model providers
	Anthropic AnthropicConfig
	OpenAI    OpenAIConfig

	// Source fetching
	Fetcher FetcherConfig

	// Ad transparency library
	AdLibrary AdLibraryConfig

	// Screenshot storage
	Storage StorageConfig

	// Rate limits
	RateLimits RateLimitConfig
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"offerpilot"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	LogLevel    string `envconfig:"APP_LOG_LEVEL" default:"info"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"90s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds PostgreSQL settings
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"offerpilot"`
	Password        string        `envconfig:"DB_PASSWORD" default:""`
	Database        string        `envconfig:"DB_NAME" default:"offerpilot"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	ConnMaxIdleTime time.Duration `envconfig:"DB_CONN_MAX_IDLE_TIME" default:"1m"`
}

// DSN returns the PostgreSQL connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisConfig holds Redis settings
type RedisConfig struct {
	Host         string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port         int           `envconfig:"REDIS_PORT" default:"6379"`
	Password     string        `envconfig:"REDIS_PASSWORD" default:""`
	DB           int           `envconfig:"REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REDIS_MIN_IDLE_CONNS" default:"5"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Addr returns Redis address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AnthropicConfig holds settings for the primary model provider.
type AnthropicConfig struct {
	APIKey       string        `envconfig:"ANTHROPIC_API_KEY" default:""`
	BaseURL      string        `envconfig:"ANTHROPIC_BASE_URL" default:"https://api.anthropic.com"`
	Model        string        `envconfig:"ANTHROPIC_MODEL" default:"claude-sonnet-4-20250514"`
	MaxTokens    int           `envconfig:"ANTHROPIC_MAX_TOKENS" default:"4096"`
	Timeout      time.Duration `envconfig:"ANTHROPIC_TIMEOUT" default:"60s"`
	RateLimitRPM int           `envconfig:"ANTHROPIC_RATE_LIMIT_RPM" default:"50"`
	CacheTTL     time.Duration `envconfig:"ANTHROPIC_CACHE_TTL" default:"1h"`
}

// OpenAIConfig holds settings for the secondary model provider.
type OpenAIConfig struct {
	APIKey       string        `envconfig:"OPENAI_API_KEY" default:""`
	BaseURL      string        `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com"`
	Model        string        `envconfig:"OPENAI_MODEL" default:"gpt-4o"`
	MaxTokens    int           `envconfig:"OPENAI_MAX_TOKENS" default:"4096"`
	Timeout      time.Duration `envconfig:"OPENAI_TIMEOUT" default:"60s"`
	RateLimitRPM int           `envconfig:"OPENAI_RATE_LIMIT_RPM" default:"60"`
	CacheTTL     time.Duration `envconfig:"OPENAI_CACHE_TTL" default:"1h"`
}

// FetcherConfig holds source-fetcher settings.
type FetcherConfig struct {
	Headless      bool          `envconfig:"FETCHER_HEADLESS" default:"true"`
	NavTimeout    time.Duration `envconfig:"FETCHER_NAV_TIMEOUT" default:"30s"`
	SettleDelay   time.Duration `envconfig:"FETCHER_SETTLE_DELAY" default:"2500ms"`
	ProxyURL      string        `envconfig:"FETCHER_PROXY_URL" default:""`
	ProxyUsername string        `envconfig:"FETCHER_PROXY_USERNAME" default:""`
	ProxyPassword string        `envconfig:"FETCHER_PROXY_PASSWORD" default:""`
	Screenshots   bool          `envconfig:"FETCHER_SCREENSHOTS" default:"true"`
}

// AdLibraryConfig holds ad-transparency source settings.
type AdLibraryConfig struct {
	BaseURL     string        `envconfig:"AD_LIBRARY_BASE_URL" default:"https://graph.facebook.com/v19.0/ads_archive"`
	AccessToken string        `envconfig:"AD_LIBRARY_ACCESS_TOKEN" default:""`
	Country     string        `envconfig:"AD_LIBRARY_COUNTRY" default:"GB"`
	PageLimit   int           `envconfig:"AD_LIBRARY_PAGE_LIMIT" default:"25"`
	Timeout     time.Duration `envconfig:"AD_LIBRARY_TIMEOUT" default:"20s"`
}

// StorageConfig holds screenshot storage settings
type StorageConfig struct {
	Enabled         bool   `envconfig:"STORAGE_ENABLED" default:"false"`
	Endpoint        string `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string `envconfig:"STORAGE_ACCESS_KEY_ID" default:"minioadmin"`
	SecretAccessKey string `envconfig:"STORAGE_SECRET_ACCESS_KEY" default:"minioadmin"`
	Bucket          string `envconfig:"STORAGE_BUCKET" default:"offerpilot"`
	UseSSL          bool   `envconfig:"STORAGE_USE_SSL" default:"false"`
	ScreenshotDir   string `envconfig:"STORAGE_SCREENSHOT_DIR" default:"screenshots"`
}

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	Enabled        bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMin int  `envconfig:"RATE_LIMIT_REQUESTS_PER_MIN" default:"120"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration. Missing provider keys are allowed:
// an unconfigured provider degrades to "unavailable" for the process
// lifetime rather than blocking startup.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, "SERVER_PORT must be a valid port")
	}

	if c.Env == EnvProduction && c.Database.Password == "" {
		errs = append(errs, "DB_PASSWORD is required in production")
	}

	if c.AdLibrary.PageLimit <= 0 {
		errs = append(errs, "AD_LIBRARY_PAGE_LIMIT must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// GetLogLevel returns the appropriate zap log level
func (c *Config) GetLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}
