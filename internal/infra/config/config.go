package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP           HTTPConfig           `yaml:"http"`
	LLM            LLMConfig            `yaml:"llm"`
	Places         PlacesConfig         `yaml:"places"`
	Recommendation RecommendationConfig `yaml:"recommendation"`
	Auth           AuthConfig           `yaml:"auth"`
	Postgres       PostgresConfig       `yaml:"postgres"`
	Telemetry      TelemetryConfig      `yaml:"telemetry"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	EnablePprof    bool            `yaml:"enablePprof"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// LLMConfig selects and configures the intent extraction model.
type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseUrl"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	MaxTokens   int           `yaml:"maxTokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// PlacesConfig configures the Google Places client.
type PlacesConfig struct {
	APIKey   string        `yaml:"apiKey"`
	BaseURL  string        `yaml:"baseUrl"`
	Language string        `yaml:"language"`
	Timeout  time.Duration `yaml:"timeout"`
	Breaker  BreakerConfig `yaml:"breaker"`
}

// BreakerConfig tunes the circuit breaker guarding places calls.
type BreakerConfig struct {
	Enabled          bool          `yaml:"enabled"`
	MaxRequests      uint32        `yaml:"maxRequests"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold uint32        `yaml:"failureThreshold"`
}

// RecommendationConfig holds pipeline limits.
type RecommendationConfig struct {
	CacheCapacity int               `yaml:"cacheCapacity"`
	MaxEnriched   int               `yaml:"maxEnriched"`
	EnrichWorkers int               `yaml:"enrichWorkers"`
	PhotoMaxWidth int               `yaml:"photoMaxWidth"`
	SharedCache   SharedCacheConfig `yaml:"sharedCache"`
}

// SharedCacheConfig enables the Valkey tier behind the in-process search cache.
type SharedCacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Addr    string        `yaml:"addr"`
	Prefix  string        `yaml:"prefix"`
	TTL     time.Duration `yaml:"ttl"`
}

// AuthConfig controls token issuing and Google sign-in.
type AuthConfig struct {
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"tokenTtl"`
	Google   GoogleConfig  `yaml:"google"`
}

// GoogleConfig selects which Google ID tokens are accepted. Sign-in is
// disabled while ClientID is empty.
type GoogleConfig struct {
	ClientID string `yaml:"clientId"`
	Issuer   string `yaml:"issuer"`
	JWKSURL  string `yaml:"jwksUrl"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN         string `yaml:"dsn"`
	MaxConns    int32  `yaml:"maxConns"`
	MinConns    int32  `yaml:"minConns"`
	AutoMigrate bool   `yaml:"autoMigrate"`
}

// TelemetryConfig enables OTLP trace export.
type TelemetryConfig struct {
	ServiceName  string  `yaml:"serviceName"`
	OTLPEndpoint string  `yaml:"otlpEndpoint"`
	SampleRatio  float64 `yaml:"sampleRatio"`
}

// Load reads configuration from a YAML file, an optional .env file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// loadDotEnv never overrides variables already present in the environment.
func loadDotEnv() error {
	path := os.Getenv("DOTENV_PATH")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.HTTP.Address, "HTTP_ADDRESS")
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	setBool(&cfg.HTTP.EnablePprof, "HTTP_ENABLE_PPROF")
	setBool(&cfg.HTTP.RateLimit.Enabled, "HTTP_RATE_LIMIT_ENABLED")
	setInt(&cfg.HTTP.RateLimit.RequestsPerMinute, "HTTP_RATE_LIMIT_RPM")
	setInt(&cfg.HTTP.RateLimit.Burst, "HTTP_RATE_LIMIT_BURST")
	setBool(&cfg.HTTP.Retry.Enabled, "HTTP_RETRY_ENABLED")
	setInt(&cfg.HTTP.Retry.MaxAttempts, "HTTP_RETRY_MAX_ATTEMPTS")
	setDuration(&cfg.HTTP.Retry.BaseBackoff, "HTTP_RETRY_BASE_BACKOFF")

	setString(&cfg.LLM.Provider, "LLM_PROVIDER")
	setString(&cfg.LLM.BaseURL, "LLM_BASE_URL")
	setString(&cfg.LLM.Model, "LLM_MODEL")
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	setInt(&cfg.LLM.MaxTokens, "LLM_MAX_TOKENS")
	setDuration(&cfg.LLM.Timeout, "LLM_TIMEOUT")
	setString(&cfg.LLM.APIKey, "LLM_API_KEY")
	if cfg.LLM.APIKey == "" {
		switch strings.ToLower(cfg.LLM.Provider) {
		case "gemini":
			setString(&cfg.LLM.APIKey, "GEMINI_API_KEY")
		case "anthropic":
			setString(&cfg.LLM.APIKey, "ANTHROPIC_API_KEY")
		case "openai":
			setString(&cfg.LLM.APIKey, "OPENAI_API_KEY")
		}
	}

	setString(&cfg.Places.APIKey, "GOOGLE_MAPS_API_KEY")
	setString(&cfg.Places.BaseURL, "PLACES_BASE_URL")
	setString(&cfg.Places.Language, "PLACES_LANGUAGE")
	setDuration(&cfg.Places.Timeout, "PLACES_TIMEOUT")
	setBool(&cfg.Places.Breaker.Enabled, "PLACES_BREAKER_ENABLED")

	setInt(&cfg.Recommendation.CacheCapacity, "RECOMMENDATION_CACHE_CAPACITY")
	setInt(&cfg.Recommendation.MaxEnriched, "RECOMMENDATION_MAX_ENRICHED")
	setInt(&cfg.Recommendation.EnrichWorkers, "RECOMMENDATION_ENRICH_WORKERS")
	setBool(&cfg.Recommendation.SharedCache.Enabled, "SEARCH_CACHE_VALKEY_ENABLED")
	setString(&cfg.Recommendation.SharedCache.Addr, "SEARCH_CACHE_VALKEY_ADDR")
	setDuration(&cfg.Recommendation.SharedCache.TTL, "SEARCH_CACHE_VALKEY_TTL")

	setString(&cfg.Auth.Secret, "AUTH_SECRET")
	setDuration(&cfg.Auth.TokenTTL, "AUTH_TOKEN_TTL")
	setString(&cfg.Auth.Google.ClientID, "GOOGLE_CLIENT_ID")
	setString(&cfg.Auth.Google.Issuer, "GOOGLE_ID_TOKEN_ISSUER")
	setString(&cfg.Auth.Google.JWKSURL, "GOOGLE_JWKS_URL")

	setString(&cfg.Postgres.DSN, "POSTGRES_DSN")
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MinConns = int32(parsed)
		}
	}
	setBool(&cfg.Postgres.AutoMigrate, "POSTGRES_AUTO_MIGRATE")

	setString(&cfg.Telemetry.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&cfg.Telemetry.ServiceName, "OTEL_SERVICE_NAME")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 90 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/healthz",
					"/metrics",
					"/debug/pprof",
				},
			},
		},
		LLM: LLMConfig{
			Provider:    "gemini",
			Model:       "gemini-2.0-flash",
			Temperature: 0.2,
			MaxTokens:   256,
			Timeout:     30 * time.Second,
		},
		Places: PlacesConfig{
			BaseURL:  "https://maps.googleapis.com/maps/api/place",
			Language: "fr",
			Timeout:  10 * time.Second,
			Breaker: BreakerConfig{
				Enabled:          true,
				MaxRequests:      1,
				Interval:         time.Minute,
				Timeout:          30 * time.Second,
				FailureThreshold: 5,
			},
		},
		Recommendation: RecommendationConfig{
			CacheCapacity: 100,
			MaxEnriched:   10,
			EnrichWorkers: 1,
			PhotoMaxWidth: 400,
			SharedCache: SharedCacheConfig{
				Prefix: "findmy:places",
				TTL:    24 * time.Hour,
			},
		},
		Auth: AuthConfig{
			TokenTTL: 30 * time.Minute,
			Google: GoogleConfig{
				Issuer:  "https://accounts.google.com",
				JWKSURL: "https://www.googleapis.com/oauth2/v3/certs",
			},
		},
		Postgres: PostgresConfig{
			MaxConns:    4,
			AutoMigrate: true,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "findmy",
			SampleRatio: 1,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.Places.APIKey) == "" {
		return errors.New("places.apiKey is required (GOOGLE_MAPS_API_KEY)")
	}
	if c.Places.Timeout <= 0 {
		return errors.New("places.timeout must be positive")
	}
	switch strings.ToLower(c.LLM.Provider) {
	case "gemini", "openai", "anthropic":
	default:
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return errors.New("llm.apiKey is required for the selected provider")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("auth.secret is required (AUTH_SECRET)")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.tokenTtl must be positive")
	}
	if c.Recommendation.CacheCapacity <= 0 {
		return errors.New("recommendation.cacheCapacity must be positive")
	}
	if c.Recommendation.MaxEnriched <= 0 {
		return errors.New("recommendation.maxEnriched must be positive")
	}
	if c.Recommendation.EnrichWorkers <= 0 {
		return errors.New("recommendation.enrichWorkers must be positive")
	}
	if c.Recommendation.SharedCache.Enabled && strings.TrimSpace(c.Recommendation.SharedCache.Addr) == "" {
		return errors.New("recommendation.sharedCache.addr cannot be empty when the shared cache is enabled")
	}
	if c.Places.Breaker.Enabled && c.Places.Breaker.FailureThreshold == 0 {
		return errors.New("places.breaker.failureThreshold must be positive")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}
