package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/findmy/internal/domain/auth"
	"github.com/yanqian/findmy/internal/domain/recommendation"
	"github.com/yanqian/findmy/internal/domain/restaurant"
	"github.com/yanqian/findmy/internal/infra/config"
	"github.com/yanqian/findmy/internal/infra/database"
	"github.com/yanqian/findmy/internal/infra/llm/anthropic"
	"github.com/yanqian/findmy/internal/infra/llm/chatgpt"
	"github.com/yanqian/findmy/internal/infra/llm/gemini"
	"github.com/yanqian/findmy/internal/infra/places/googlemaps"
	"github.com/yanqian/findmy/internal/infra/restaurantrepo"
	"github.com/yanqian/findmy/internal/infra/searchcache"
	"github.com/yanqian/findmy/internal/infra/telemetry"
	"github.com/yanqian/findmy/internal/infra/userrepo"
)

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:   cfg.Auth.Secret,
		TokenTTL: cfg.Auth.TokenTTL,
		Google: auth.GoogleConfig{
			ClientID: cfg.Auth.Google.ClientID,
			Issuer:   cfg.Auth.Google.Issuer,
			JWKSURL:  cfg.Auth.Google.JWKSURL,
		},
	}
}

// provideGoogleVerifier returns nil when no client id is configured, which
// leaves Google sign-in disabled.
func provideGoogleVerifier(authCfg auth.Config, logger *slog.Logger) (auth.IDTokenVerifier, error) {
	if strings.TrimSpace(authCfg.Google.ClientID) == "" {
		logger.Info("google client id not set, google sign-in disabled")
		return nil, nil
	}
	verifier, err := auth.NewGoogleVerifier(context.Background(), authCfg.Google)
	if err != nil {
		return nil, err
	}
	return verifier, nil
}

func provideTelemetry(cfg *config.Config, logger *slog.Logger) (*telemetry.Provider, func(), error) {
	provider, err := telemetry.New(context.Background(), telemetry.Config{
		ServiceName:  cfg.Telemetry.ServiceName,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		SampleRatio:  cfg.Telemetry.SampleRatio,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}
	return provider, cleanup, nil
}

// providePostgresPool returns a nil pool when no DSN is configured or the
// database cannot be reached; repositories then fall back to memory.
func providePostgresPool(cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, func()) {
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil, func() {}
	}
	if cfg.Postgres.AutoMigrate {
		if err := database.Migrate(dsn, logger); err != nil {
			logger.Error("schema migration failed, using memory repositories", "error", err)
			return nil, func() {}
		}
	}
	pool, err := database.NewPool(context.Background(), database.Config{
		DSN:      dsn,
		MaxConns: cfg.Postgres.MaxConns,
		MinConns: cfg.Postgres.MinConns,
	})
	if err != nil {
		logger.Error("postgres unavailable, using memory repositories", "error", err)
		return nil, func() {}
	}
	logger.Info("postgres repositories enabled")
	return pool, pool.Close
}

func provideRestaurantRepository(pool *pgxpool.Pool) restaurant.Repository {
	if pool == nil {
		return restaurantrepo.NewMemoryRepository()
	}
	return restaurantrepo.NewPostgresRepository(pool)
}

func provideAuthRepository(pool *pgxpool.Pool) auth.Repository {
	if pool == nil {
		return userrepo.NewMemoryRepository()
	}
	return userrepo.NewPostgresRepository(pool)
}

func provideRestaurantFinder(repo restaurant.Repository) recommendation.RestaurantFinder {
	return repo
}

func provideLanguageModel(cfg *config.Config) (recommendation.LanguageModel, error) {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "gemini":
		return gemini.NewClient(context.Background(), cfg.LLM.APIKey, gemini.Options{
			Model:       cfg.LLM.Model,
			BaseURL:     cfg.LLM.BaseURL,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     cfg.LLM.Timeout,
		})
	case "openai":
		return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, chatgpt.Options{
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     cfg.LLM.Timeout,
		})
	case "anthropic":
		return anthropic.NewClient(cfg.LLM.APIKey, anthropic.Options{
			Model:       cfg.LLM.Model,
			BaseURL:     cfg.LLM.BaseURL,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     cfg.LLM.Timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLM.Provider)
	}
}

func providePlacesClient(cfg *config.Config, logger *slog.Logger) (*googlemaps.Client, error) {
	breaker := cfg.Places.Breaker
	return googlemaps.NewClient(googlemaps.Config{
		APIKey:   cfg.Places.APIKey,
		BaseURL:  cfg.Places.BaseURL,
		Language: cfg.Places.Language,
		Timeout:  cfg.Places.Timeout,
		Breaker: googlemaps.BreakerConfig{
			Enabled:          breaker.Enabled,
			MaxRequests:      breaker.MaxRequests,
			Interval:         breaker.Interval,
			Timeout:          breaker.Timeout,
			FailureThreshold: breaker.FailureThreshold,
		},
	}, logger)
}

func provideRecommendationConfig(cfg *config.Config, places *googlemaps.Client) recommendation.Config {
	return recommendation.Config{
		MaxEnriched:   cfg.Recommendation.MaxEnriched,
		EnrichWorkers: cfg.Recommendation.EnrichWorkers,
		PhotoBaseURL:  places.PhotoBaseURL(),
		PhotoMaxWidth: cfg.Recommendation.PhotoMaxWidth,
		APIKey:        cfg.Places.APIKey,
	}
}

// provideSearchCache builds the in-process LRU and, when enabled and reachable,
// puts a Valkey tier behind it.
func provideSearchCache(cfg *config.Config, logger *slog.Logger) (recommendation.SearchCache, func(), error) {
	local, err := searchcache.NewLRU(cfg.Recommendation.CacheCapacity)
	if err != nil {
		return nil, nil, err
	}
	shared := cfg.Recommendation.SharedCache
	if !shared.Enabled {
		return local, func() {}, nil
	}
	opt, err := buildValkeyOptions(shared.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, using memory search cache", "error", err)
		return local, func() {}, nil
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, using memory search cache", "error", err)
		return local, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, using memory search cache", "error", err)
		client.Close()
		return local, func() {}, nil
	}
	logger.Info("valkey search cache tier enabled", "addr", shared.Addr)
	tier := searchcache.NewValkeyTier(client, shared.Prefix, shared.TTL)
	return searchcache.NewTiered(local, tier, logger), client.Close, nil
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
