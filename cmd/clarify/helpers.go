package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/clarify/internal/config"
	"github.com/Veraticus/clarify/internal/engine"
	"github.com/Veraticus/clarify/internal/llm"
	"github.com/Veraticus/clarify/internal/quality"
	"github.com/Veraticus/clarify/internal/service"
	"github.com/Veraticus/clarify/internal/storage"
	"github.com/Veraticus/clarify/internal/vagueness"
	"github.com/Veraticus/clarify/internal/workspace"
	"github.com/spf13/viper"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := config.DefaultDatabasePath()
	if configured := viper.GetString("storage.path"); configured != "" {
		dbPath = config.ExpandPath(configured)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initVagueness builds the vagueness service, restoring any persisted
// trained model and the configured threshold.
func initVagueness(ctx context.Context, store service.Storage) (*vagueness.Service, error) {
	svc := vagueness.NewService(slog.Default())

	if threshold := viper.GetInt("vagueness.threshold"); threshold > 0 {
		if err := svc.SetThreshold(threshold); err != nil {
			return nil, err
		}
	}

	if store != nil {
		if err := svc.LoadFrom(ctx, store); err != nil {
			return nil, fmt.Errorf("failed to load trained model: %w", err)
		}
	}
	return svc, nil
}

// createProviderChain builds the provider fallback chain from
// configuration. Providers are tried in the order they are listed.
func createProviderChain() (*llm.Chain, error) {
	names := viper.GetStringSlice("llm.providers")
	if len(names) == 0 {
		names = []string{"openai"}
	}

	configs := make([]llm.Config, 0, len(names))
	for _, name := range names {
		cfg := llm.Config{
			Provider:    name,
			Model:       viper.GetString("llm." + name + ".model"),
			BaseURL:     viper.GetString("llm." + name + ".base_url"),
			Temperature: viper.GetFloat64("llm." + name + ".temperature"),
			MaxTokens:   viper.GetInt("llm." + name + ".max_tokens"),
		}

		switch name {
		case "openai":
			cfg.APIKey = viper.GetString("llm.openai.api_key")
			if cfg.APIKey == "" {
				cfg.APIKey = os.Getenv("OPENAI_API_KEY")
			}
			if cfg.APIKey == "" {
				return nil, fmt.Errorf("OpenAI API key not found in config or OPENAI_API_KEY environment variable")
			}
		case "anthropic":
			cfg.APIKey = viper.GetString("llm.anthropic.api_key")
			if cfg.APIKey == "" {
				cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
			}
			if cfg.APIKey == "" {
				return nil, fmt.Errorf("anthropic API key not found in config or ANTHROPIC_API_KEY environment variable")
			}
		default:
			return nil, fmt.Errorf("unsupported LLM provider: %s", name)
		}
		configs = append(configs, cfg)
	}

	return llm.NewChain(llm.ChainConfig{Providers: configs}, slog.Default())
}

// buildEngine wires the full enhancement pipeline together.
func buildEngine(ctx context.Context, store service.Storage, activeFile string) (*engine.Engine, *vagueness.Service, error) {
	vaguenessSvc, err := initVagueness(ctx, store)
	if err != nil {
		return nil, nil, err
	}

	chain, err := createProviderChain()
	if err != nil {
		return nil, nil, err
	}

	// Stored consent is the decision of record; the config key only
	// force-enables for hosts without persistent settings.
	consent := viper.GetBool("context.semantic_consent")
	if store != nil && !consent {
		consent, err = store.GetConsent(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read consent setting: %w", err)
		}
	}

	host := &workspace.FSHost{
		Root:       viper.GetString("context.workspace_root"),
		ActivePath: activeFile,
	}
	aggregator := workspace.NewAggregator(host, workspace.Options{
		SemanticConsent: consent,
		MaxLength:       viper.GetInt("context.max_length"),
	}, slog.Default())

	limiterCfg := engine.DefaultRateLimiterConfig()
	if windowMs := viper.GetInt("ratelimit.window_ms"); windowMs > 0 {
		limiterCfg.Window = time.Duration(windowMs) * time.Millisecond
	}
	if maxRequests := viper.GetInt("ratelimit.max_requests"); maxRequests > 0 {
		limiterCfg.MaxRequests = maxRequests
	}
	limiter, err := engine.NewRateLimiter(limiterCfg)
	if err != nil {
		return nil, nil, err
	}

	cacheCfg := engine.DefaultCacheConfig()
	if ttlMs := viper.GetInt("cache.ttl_ms"); ttlMs > 0 {
		cacheCfg.TTL = time.Duration(ttlMs) * time.Millisecond
	}
	if maxEntries := viper.GetInt("cache.max_entries"); maxEntries > 0 {
		cacheCfg.MaxEntries = maxEntries
	}

	eng, err := engine.New(engine.Deps{
		Vagueness: vaguenessSvc,
		Contexts:  aggregator,
		Provider:  chain,
		Quality:   quality.NewAnalyzer(),
		Limiter:   limiter,
		Cache:     engine.NewResultCache(cacheCfg),
		Storage:   store,
		Logger:    slog.Default(),
	})
	if err != nil {
		return nil, nil, err
	}
	return eng, vaguenessSvc, nil
}
