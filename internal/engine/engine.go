// Package engine implements the prompt-enhancement orchestrator: it
// sequences cache lookup, vagueness gating, rate-limit admission,
// context collection, provider fallback, and quality measurement,
// propagating cancellation throughout.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/Veraticus/clarify/internal/common"
	"github.com/Veraticus/clarify/internal/llm"
	"github.com/Veraticus/clarify/internal/model"
	"github.com/Veraticus/clarify/internal/service"
)

// batchConcurrency bounds in-flight enhancements in ProcessPrompts.
const batchConcurrency = 4

// Deps are the collaborators injected into the engine at construction.
// The limiter, cache, and analyzer are shared process-wide state; the
// engine exposes their lifecycle via Reset instead of hiding them in
// package globals.
type Deps struct {
	Vagueness Analyzer
	Contexts  ContextSource
	Provider  Provider
	Quality   QualityMeter
	Limiter   *RateLimiter
	Cache     *ResultCache
	// Storage is optional; when present, successful rewrites are
	// recorded as history.
	Storage service.Storage
	Logger  *slog.Logger
}

// Engine coordinates one ProcessPrompt workflow end to end.
type Engine struct {
	deps Deps
}

// New creates an engine, validating that required collaborators are
// present.
func New(deps Deps) (*Engine, error) {
	if deps.Vagueness == nil {
		return nil, fmt.Errorf("%w: vagueness analyzer is required", common.ErrMissingConfig)
	}
	if deps.Contexts == nil {
		return nil, fmt.Errorf("%w: context source is required", common.ErrMissingConfig)
	}
	if deps.Provider == nil {
		return nil, fmt.Errorf("%w: provider is required", common.ErrMissingConfig)
	}
	if deps.Quality == nil {
		return nil, fmt.Errorf("%w: quality meter is required", common.ErrMissingConfig)
	}
	if deps.Limiter == nil {
		return nil, fmt.Errorf("%w: rate limiter is required", common.ErrMissingConfig)
	}
	if deps.Cache == nil {
		return nil, fmt.Errorf("%w: result cache is required", common.ErrMissingConfig)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Engine{deps: deps}, nil
}

// ProcessPrompt runs the full enhancement workflow for one prompt.
// Ordering is strict: threshold gating always precedes any provider
// call, context collection is deferred until gating has passed, and
// cache hits never consume rate-limit budget. Cancellation is checked
// at entry and again after context collection.
func (e *Engine) ProcessPrompt(ctx context.Context, prompt string) model.WorkflowResult {
	requestID := uuid.NewString()
	logger := e.deps.Logger.With("request_id", requestID)

	if err := ctx.Err(); err != nil {
		return e.cancelled(logger, err)
	}

	analysis := e.deps.Vagueness.Analyze(prompt)
	threshold := e.deps.Vagueness.Threshold()
	logger.Debug("prompt analyzed",
		"score", analysis.Score,
		"source", analysis.Source,
		"threshold", threshold)

	if analysis.Score < threshold {
		logger.Info("prompt already specific enough, skipping enhancement",
			"score", analysis.Score)
		return model.WorkflowResult{
			Outcome:  model.OutcomeSkipped,
			Analysis: analysis,
		}
	}

	if !e.deps.Limiter.CanMakeRequest() {
		seconds := int(math.Ceil(e.deps.Limiter.TimeUntilReset().Seconds()))
		msg := fmt.Sprintf("Rate limit reached. Wait %d seconds before the next enhancement.", seconds)
		logger.Warn("rate limit denied admission", "reset_seconds", seconds)
		return model.WorkflowResult{
			Outcome:  model.OutcomeFailed,
			Analysis: analysis,
			Category: model.CategoryQuotaExceeded,
			Message:  msg,
		}
	}

	tiered, err := e.deps.Contexts.Detect(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return e.cancelled(logger, err)
		}
		// A degraded context is not fatal; enhance without it.
		logger.Warn("context collection failed, proceeding without context", "error", err)
		tiered = &model.TieredContext{}
	}

	if err := ctx.Err(); err != nil {
		return e.cancelled(logger, err)
	}

	if cached, ok := e.deps.Cache.Get(prompt, tiered.Formatted); ok {
		logger.Info("cache hit", "model", cached.Model)
		return model.WorkflowResult{
			Outcome:  model.OutcomeSuccess,
			Analysis: analysis,
			Rewrite:  &cached,
			Cached:   true,
		}
	}

	resp, err := e.deps.Provider.Enhance(ctx, prompt, tiered.Formatted)
	if err != nil {
		return e.providerFailed(logger, analysis, err)
	}

	improvements, scores := e.deps.Quality.Measure(prompt, resp.Text, &analysis)
	rewrite := model.RewriteResult{
		Original:     prompt,
		Enhanced:     resp.Text,
		Model:        resp.Model,
		TokensUsed:   resp.TokensUsed,
		Improvements: improvements,
	}

	e.deps.Cache.Set(prompt, tiered.Formatted, rewrite)
	e.deps.Limiter.RecordRequest()

	logger.Info("prompt enhanced",
		"model", resp.Model,
		"tokens", resp.TokensUsed,
		"specificity_gain", scores.SpecificityGain,
		"relevance", scores.Relevance)

	e.recordHistory(ctx, logger, requestID, analysis, rewrite)

	return model.WorkflowResult{
		Outcome:  model.OutcomeSuccess,
		Analysis: analysis,
		Rewrite:  &rewrite,
	}
}

// ProcessPrompts enhances a batch concurrently, bounded by a weighted
// semaphore. Results come back in input order.
func (e *Engine) ProcessPrompts(ctx context.Context, prompts []string) ([]model.WorkflowResult, error) {
	results := make([]model.WorkflowResult, len(prompts))
	sem := semaphore.NewWeighted(batchConcurrency)

	for i, prompt := range prompts {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("batch cancelled: %w", err)
		}
		go func(idx int, p string) {
			defer sem.Release(1)
			results[idx] = e.ProcessPrompt(ctx, p)
		}(i, prompt)
	}

	// Draining the full weight waits for every worker.
	if err := sem.Acquire(ctx, batchConcurrency); err != nil {
		return nil, fmt.Errorf("batch cancelled: %w", err)
	}
	return results, nil
}

// Reset clears the shared limiter and cache, for test isolation and
// host-lifecycle teardown.
func (e *Engine) Reset() {
	e.deps.Limiter.Reset()
	e.deps.Cache.Reset()
}

func (e *Engine) cancelled(logger *slog.Logger, err error) model.WorkflowResult {
	logger.Info("enhancement cancelled")
	return model.WorkflowResult{
		Outcome:  model.OutcomeFailed,
		Category: model.CategoryCancelled,
		Message:  "Enhancement was cancelled. " + common.NextStep(model.CategoryCancelled),
	}
}

func (e *Engine) providerFailed(logger *slog.Logger, analysis model.AnalysisResult, err error) model.WorkflowResult {
	category := common.Categorize(err)

	var failure *llm.ChainFailure
	if errors.As(err, &failure) {
		category = failure.Category
	}

	logger.Error("all providers failed", "category", category, "error", err)
	return model.WorkflowResult{
		Outcome:  model.OutcomeFailed,
		Analysis: analysis,
		Category: category,
		Message:  fmt.Sprintf("Enhancement failed (%s). %s", category, common.NextStep(category)),
	}
}

func (e *Engine) recordHistory(ctx context.Context, logger *slog.Logger, requestID string, analysis model.AnalysisResult, rewrite model.RewriteResult) {
	if e.deps.Storage == nil {
		return
	}
	err := e.deps.Storage.SaveEnhancement(ctx, &model.Enhancement{
		ID:          requestID,
		Prompt:      rewrite.Original,
		Enhanced:    rewrite.Enhanced,
		Model:       rewrite.Model,
		ScoreBefore: analysis.Score,
		Cached:      false,
	})
	if err != nil {
		logger.Warn("failed to record enhancement history", "error", err)
	}
}
