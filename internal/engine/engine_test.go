package engine

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/clarify/internal/llm"
	"github.com/Veraticus/clarify/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineFixture struct {
	engine   *Engine
	analyzer *MockAnalyzer
	contexts *MockContextSource
	provider *MockProvider
	limiter  *RateLimiter
	cache    *ResultCache
	clock    *time.Time
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	limiter, err := NewRateLimiter(DefaultRateLimiterConfig())
	require.NoError(t, err)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	cache := NewResultCache(DefaultCacheConfig())
	cache.now = func() time.Time { return current }

	f := &engineFixture{
		analyzer: &MockAnalyzer{},
		contexts: &MockContextSource{},
		provider: &MockProvider{},
		limiter:  limiter,
		cache:    cache,
		clock:    &current,
	}

	f.engine, err = New(Deps{
		Vagueness: f.analyzer,
		Contexts:  f.contexts,
		Provider:  f.provider,
		Quality:   &MockQualityMeter{},
		Limiter:   limiter,
		Cache:     cache,
	})
	require.NoError(t, err)
	return f
}

func TestNew(t *testing.T) {
	t.Run("requires every collaborator", func(t *testing.T) {
		limiter, err := NewRateLimiter(DefaultRateLimiterConfig())
		require.NoError(t, err)

		complete := Deps{
			Vagueness: &MockAnalyzer{},
			Contexts:  &MockContextSource{},
			Provider:  &MockProvider{},
			Quality:   &MockQualityMeter{},
			Limiter:   limiter,
			Cache:     NewResultCache(DefaultCacheConfig()),
		}

		_, err = New(complete)
		require.NoError(t, err)

		for name, strip := range map[string]func(*Deps){
			"vagueness": func(d *Deps) { d.Vagueness = nil },
			"contexts":  func(d *Deps) { d.Contexts = nil },
			"provider":  func(d *Deps) { d.Provider = nil },
			"quality":   func(d *Deps) { d.Quality = nil },
			"limiter":   func(d *Deps) { d.Limiter = nil },
			"cache":     func(d *Deps) { d.Cache = nil },
		} {
			deps := complete
			strip(&deps)
			_, err := New(deps)
			require.Error(t, err, "missing %s", name)
		}
	})
}

func TestProcessPrompt(t *testing.T) {
	t.Run("skips a specific prompt without touching provider or limiter", func(t *testing.T) {
		f := newEngineFixture(t)
		f.analyzer.AnalyzeFunc = func(string) model.AnalysisResult {
			return model.AnalysisResult{Source: model.SourceRules, Score: 10}
		}

		result := f.engine.ProcessPrompt(context.Background(), "fix the TypeError in src/auth/login.ts on line 42")

		assert.Equal(t, model.OutcomeSkipped, result.Outcome)
		assert.True(t, result.Skipped())
		assert.Nil(t, result.Rewrite)
		assert.Equal(t, 0, f.provider.CallCount())
		assert.Equal(t, 0, f.contexts.Calls)
		assert.Equal(t, DefaultRateLimiterConfig().MaxRequests, f.limiter.Remaining())
	})

	t.Run("enhances a vague prompt end to end", func(t *testing.T) {
		f := newEngineFixture(t)
		f.provider.EnhanceFunc = func(_ context.Context, prompt, _ string) (llm.EnhanceResponse, error) {
			return llm.EnhanceResponse{Text: "Fix the login handler in auth.go", Model: "openai/gpt-4o-mini", TokensUsed: 55}, nil
		}

		result := f.engine.ProcessPrompt(context.Background(), "fix it")

		require.True(t, result.Succeeded())
		require.NotNil(t, result.Rewrite)
		assert.Equal(t, "fix it", result.Rewrite.Original)
		assert.Equal(t, "Fix the login handler in auth.go", result.Rewrite.Enhanced)
		assert.Equal(t, "openai/gpt-4o-mini", result.Rewrite.Model)
		assert.False(t, result.Cached)
		assert.Equal(t, DefaultRateLimiterConfig().MaxRequests-1, f.limiter.Remaining())
	})

	t.Run("denies when the rate limit is exhausted", func(t *testing.T) {
		f := newEngineFixture(t)
		for i := 0; i < DefaultRateLimiterConfig().MaxRequests; i++ {
			f.limiter.RecordRequest()
		}
		*f.clock = f.clock.Add(18 * time.Second)

		result := f.engine.ProcessPrompt(context.Background(), "fix it")

		assert.True(t, result.Failed())
		assert.Equal(t, model.CategoryQuotaExceeded, result.Category)
		assert.Contains(t, result.Message, "Rate limit")
		assert.Contains(t, result.Message, strconv.Itoa(42), "message names the seconds until reset")
		assert.Equal(t, 0, f.provider.CallCount())
	})

	t.Run("serves a cache hit without consuming rate limit", func(t *testing.T) {
		f := newEngineFixture(t)

		first := f.engine.ProcessPrompt(context.Background(), "fix it")
		require.True(t, first.Succeeded())
		require.False(t, first.Cached)

		second := f.engine.ProcessPrompt(context.Background(), "fix it")
		require.True(t, second.Succeeded())
		assert.True(t, second.Cached)
		assert.Equal(t, first.Rewrite.Enhanced, second.Rewrite.Enhanced)
		assert.Equal(t, 1, f.provider.CallCount())
		assert.Equal(t, DefaultRateLimiterConfig().MaxRequests-1, f.limiter.Remaining())
	})

	t.Run("different context blocks miss the cache", func(t *testing.T) {
		f := newEngineFixture(t)
		contextBlock := "Tech: Go"
		f.contexts.DetectFunc = func(context.Context) (*model.TieredContext, error) {
			return &model.TieredContext{Formatted: contextBlock}, nil
		}

		first := f.engine.ProcessPrompt(context.Background(), "fix it")
		require.True(t, first.Succeeded())

		contextBlock = "Tech: Rust"
		second := f.engine.ProcessPrompt(context.Background(), "fix it")
		require.True(t, second.Succeeded())
		assert.False(t, second.Cached)
		assert.Equal(t, 2, f.provider.CallCount())
	})

	t.Run("surfaces the provider chain's failure category", func(t *testing.T) {
		f := newEngineFixture(t)
		f.provider.EnhanceFunc = func(context.Context, string, string) (llm.EnhanceResponse, error) {
			return llm.EnhanceResponse{}, &llm.ChainFailure{
				Category: model.CategoryAuthFailed,
				Err:      errors.New("invalid api key"),
			}
		}

		result := f.engine.ProcessPrompt(context.Background(), "fix it")

		assert.True(t, result.Failed())
		assert.Equal(t, model.CategoryAuthFailed, result.Category)
		assert.Contains(t, result.Message, "API key")
		assert.Nil(t, result.Rewrite)
	})

	t.Run("a failed enhancement is not cached", func(t *testing.T) {
		f := newEngineFixture(t)
		fail := true
		f.provider.EnhanceFunc = func(_ context.Context, prompt, _ string) (llm.EnhanceResponse, error) {
			if fail {
				return llm.EnhanceResponse{}, errors.New("connection refused")
			}
			return llm.EnhanceResponse{Text: "Enhanced", Model: "m", TokensUsed: 1}, nil
		}

		first := f.engine.ProcessPrompt(context.Background(), "fix it")
		require.True(t, first.Failed())

		fail = false
		second := f.engine.ProcessPrompt(context.Background(), "fix it")
		require.True(t, second.Succeeded())
		assert.False(t, second.Cached)
	})

	t.Run("honors cancellation before any work", func(t *testing.T) {
		f := newEngineFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result := f.engine.ProcessPrompt(ctx, "fix it")

		assert.True(t, result.Failed())
		assert.Equal(t, model.CategoryCancelled, result.Category)
		assert.Empty(t, f.analyzer.Analyzed)
		assert.Equal(t, 0, f.provider.CallCount())
	})

	t.Run("honors cancellation during context collection", func(t *testing.T) {
		f := newEngineFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		f.contexts.DetectFunc = func(ctx context.Context) (*model.TieredContext, error) {
			cancel()
			return nil, ctx.Err()
		}

		result := f.engine.ProcessPrompt(ctx, "fix it")

		assert.True(t, result.Failed())
		assert.Equal(t, model.CategoryCancelled, result.Category)
		assert.Equal(t, 0, f.provider.CallCount())
	})

	t.Run("proceeds without context when collection fails", func(t *testing.T) {
		f := newEngineFixture(t)
		f.contexts.DetectFunc = func(context.Context) (*model.TieredContext, error) {
			return nil, errors.New("walk failed")
		}

		var gotContext string
		f.provider.EnhanceFunc = func(_ context.Context, prompt, contextBlock string) (llm.EnhanceResponse, error) {
			gotContext = contextBlock
			return llm.EnhanceResponse{Text: "Enhanced", Model: "m", TokensUsed: 1}, nil
		}

		result := f.engine.ProcessPrompt(context.Background(), "fix it")

		require.True(t, result.Succeeded())
		assert.Empty(t, gotContext)
	})
}

func TestProcessPrompts(t *testing.T) {
	t.Run("returns results in input order", func(t *testing.T) {
		f := newEngineFixture(t)
		f.provider.EnhanceFunc = func(_ context.Context, prompt, _ string) (llm.EnhanceResponse, error) {
			return llm.EnhanceResponse{Text: "Enhanced: " + prompt, Model: "m", TokensUsed: 1}, nil
		}

		prompts := []string{"fix this thing", "update the stuff", "make it better", "clean it up"}
		results, err := f.engine.ProcessPrompts(context.Background(), prompts)
		require.NoError(t, err)
		require.Len(t, results, len(prompts))

		for i, result := range results {
			require.True(t, result.Succeeded(), "prompt %d", i)
			assert.True(t, strings.HasSuffix(result.Rewrite.Enhanced, prompts[i]))
		}
	})

	t.Run("stops admitting work once cancelled", func(t *testing.T) {
		f := newEngineFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := f.engine.ProcessPrompts(ctx, []string{"fix it", "fix that"})
		require.Error(t, err)
	})
}

func TestReset(t *testing.T) {
	t.Run("clears limiter and cache together", func(t *testing.T) {
		f := newEngineFixture(t)

		result := f.engine.ProcessPrompt(context.Background(), "fix it")
		require.True(t, result.Succeeded())
		require.Equal(t, DefaultRateLimiterConfig().MaxRequests-1, f.limiter.Remaining())

		f.engine.Reset()

		assert.Equal(t, DefaultRateLimiterConfig().MaxRequests, f.limiter.Remaining())
		assert.Equal(t, 0, f.cache.Len())
	})
}
