package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. SUPPLYLENS_SERVER_PORT
const EnvPrefix = "SUPPLYLENS"

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Scrape     ScrapeConfig     `mapstructure:"scrape"`
	Fetch      FetchConfig      `mapstructure:"fetch"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Database   DatabaseConfig   `mapstructure:"database"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Suppliers  SuppliersConfig  `mapstructure:"suppliers"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port" validate:"required,numeric"`
	Environment     string        `mapstructure:"environment" validate:"oneof=development staging production test"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	MetricsEnabled  bool          `mapstructure:"metrics_enabled"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json console"`
	Output string `mapstructure:"output"`
}

// Renderer backends
const (
	RendererService = "service"
	RendererBrowser = "browser"
	RendererNone    = "none"
)

// ScrapeConfig holds the rendering backend configuration. An empty API key
// disables the scrape service.
type ScrapeConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url" validate:"required,url"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RatePerSecond float64       `mapstructure:"rate_per_second" validate:"gte=0"`
	Burst         int           `mapstructure:"burst" validate:"gte=0"`
	WaitFor       time.Duration `mapstructure:"wait_for" validate:"gte=0"`
	Renderer      string        `mapstructure:"renderer" validate:"oneof=service browser none"`
	BrowserBin    string        `mapstructure:"browser_bin"`
}

// FetchConfig holds direct page fetch configuration
type FetchConfig struct {
	Timeout        time.Duration `mapstructure:"timeout" validate:"gt=0"`
	UserAgent      string        `mapstructure:"user_agent"`
	AcceptLanguage string        `mapstructure:"accept_language"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes" validate:"gt=0"`
}

// ExtractionConfig holds strategy chain configuration
type ExtractionConfig struct {
	StrategyTimeout time.Duration `mapstructure:"strategy_timeout" validate:"gt=0"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type             string        `mapstructure:"type" validate:"oneof=memory redis"` // "memory" or "redis"
	RedisURL         string        `mapstructure:"redis_url" validate:"required_if=Type redis"`
	KeyPrefix        string        `mapstructure:"key_prefix"`
	TTL              time.Duration `mapstructure:"ttl" validate:"gt=0"`
	FallbackToMemory bool          `mapstructure:"fallback_to_memory"`
}

// DatabaseConfig holds product storage configuration
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=sqlite postgres"`
	DSN    string `mapstructure:"dsn" validate:"required"`
}

// RateLimitConfig holds inbound rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip" validate:"gte=0"` // requests per minute, 0 disables
	Burst int `mapstructure:"burst" validate:"gte=0"`
}

// SuppliersConfig holds supplier detection configuration
type SuppliersConfig struct {
	MaxPlatforms int `mapstructure:"max_platforms" validate:"gte=1,lte=6"`
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/supplylens/")

	// Environment variable settings
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory when present.
// Variables already set in the environment win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}

// setDefaults sets default configuration values. Every key needs a default
// so AutomaticEnv can bind it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"chrome-extension://*"})
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.metrics_enabled", true)

	v.SetDefault("log.level", "")
	v.SetDefault("log.format", "")
	v.SetDefault("log.output", "stdout")

	// Scrape service defaults
	v.SetDefault("scrape.api_key", "")
	v.SetDefault("scrape.base_url", "https://api.firecrawl.dev")
	v.SetDefault("scrape.timeout", "30s")
	v.SetDefault("scrape.rate_per_second", 1.0)
	v.SetDefault("scrape.burst", 5)
	v.SetDefault("scrape.wait_for", "3s")
	v.SetDefault("scrape.renderer", RendererService)
	v.SetDefault("scrape.browser_bin", "")

	v.SetDefault("fetch.timeout", "15s")
	v.SetDefault("fetch.user_agent", "")
	v.SetDefault("fetch.accept_language", "")
	v.SetDefault("fetch.max_body_bytes", 5<<20)

	v.SetDefault("extraction.strategy_timeout", "20s")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.key_prefix", "supplylens:")
	v.SetDefault("cache.ttl", "30m")
	v.SetDefault("cache.fallback_to_memory", true)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:supplylens.db?_pragma=busy_timeout(5000)")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.burst", 20)

	v.SetDefault("suppliers.max_platforms", 4)
}

var structValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report config keys rather than Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// validate validates the configuration
func validate(config *Config) error {
	if err := structValidator.Struct(config); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	if config.Database.Driver == "postgres" && !strings.HasPrefix(config.Database.DSN, "postgres") {
		return fmt.Errorf("database dsn must be a postgres:// url when driver is postgres")
	}

	return nil
}

// describe turns a field error into "cache.redis_url is required when type is redis"
func describe(fe validator.FieldError) string {
	key := strings.ToLower(strings.TrimPrefix(fe.Namespace(), "Config."))
	switch fe.Tag() {
	case "required":
		return key + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", key, strings.ToLower(strings.Replace(fe.Param(), " ", " is ", 1)))
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", key, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s=%s (got %v)", key, fe.Tag(), fe.Param(), fe.Value())
	}
}
