package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/clarify/internal/common"
	"github.com/Veraticus/clarify/internal/model"
	"github.com/Veraticus/clarify/internal/service"
)

// ChainConfig configures the provider fallback chain.
type ChainConfig struct {
	// Providers are tried in priority order.
	Providers []Config
	// Retry bounds per-provider attempts for transient failures.
	// Zero values take the chain defaults.
	Retry service.RetryOptions
}

// Chain tries providers in priority order: the first success wins, any
// failure is classified and logged, and only a caller cancellation
// stops the walk early. Transient failures get one more attempt
// against the same provider before the chain moves on.
type Chain struct {
	clients []Client
	retry   service.RetryOptions
	logger  *slog.Logger
}

// defaultChainRetry keeps per-provider retries short so falling back
// to the next provider is never delayed by more than a couple of
// seconds.
func defaultChainRetry() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  2,
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
	}
}

// ChainFailure is the classified result of every provider failing.
type ChainFailure struct {
	Category model.ErrorCategory
	Err      error
}

func (f *ChainFailure) Error() string {
	return fmt.Sprintf("all providers failed (%s): %v", f.Category, f.Err)
}

func (f *ChainFailure) Unwrap() error {
	return f.Err
}

// NewChain builds a provider chain from ordered configurations.
// Unknown provider names are construction errors.
func NewChain(cfg ChainConfig, logger *slog.Logger) (*Chain, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Providers) == 0 {
		return nil, common.ErrNoProviders
	}

	clients := make([]Client, 0, len(cfg.Providers))
	for _, providerCfg := range cfg.Providers {
		client, err := newClient(providerCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create %q client: %w", providerCfg.Provider, err)
		}
		clients = append(clients, client)
	}

	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry = defaultChainRetry()
	}
	return &Chain{clients: clients, retry: retry, logger: logger}, nil
}

// NewChainFromClients builds a chain over pre-constructed clients.
func NewChainFromClients(logger *slog.Logger, clients ...Client) (*Chain, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(clients) == 0 {
		return nil, common.ErrNoProviders
	}
	return &Chain{clients: clients, retry: defaultChainRetry(), logger: logger}, nil
}

// newClient creates one provider client based on its configuration.
func newClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return newOpenAIClient(cfg)
	case "anthropic":
		return newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// Names lists the chain's providers in priority order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.clients))
	for i, client := range c.clients {
		names[i] = client.Name()
	}
	return names
}

// Enhance walks the provider list. Streaming-capable providers are
// consumed through accumulation; the result is always one string.
func (c *Chain) Enhance(ctx context.Context, prompt, contextBlock string) (EnhanceResponse, error) {
	var lastFailure *ChainFailure

	for _, client := range c.clients {
		if err := ctx.Err(); err != nil {
			return EnhanceResponse{}, &ChainFailure{Category: common.Categorize(err), Err: err}
		}

		resp, err := c.enhanceWithRetry(ctx, client, prompt, contextBlock)
		if err == nil {
			return resp, nil
		}

		category := common.Categorize(err)
		if category == model.CategoryCancelled {
			return EnhanceResponse{}, &ChainFailure{Category: category, Err: err}
		}

		c.logger.Warn("provider failed, falling back",
			"provider", client.Name(),
			"category", category,
			"error", err)
		lastFailure = &ChainFailure{Category: category, Err: err}
	}

	if lastFailure == nil {
		return EnhanceResponse{}, &ChainFailure{
			Category: model.CategoryModelUnavailable,
			Err:      common.ErrNoProviders,
		}
	}
	return EnhanceResponse{}, lastFailure
}

// enhanceWithRetry gives one provider a bounded second chance on
// transient failures before the chain falls back. Auth, quota, and
// cancellation failures propagate on the first attempt.
func (c *Chain) enhanceWithRetry(ctx context.Context, client Client, prompt, contextBlock string) (EnhanceResponse, error) {
	var resp EnhanceResponse
	var lastErr error

	op := func() error {
		r, err := c.enhanceWith(ctx, client, prompt, contextBlock)
		if err != nil {
			lastErr = err
			return &common.RetryableError{Err: err, Retryable: transient(common.Categorize(err))}
		}
		resp = r
		return nil
	}

	if err := common.WithRetry(ctx, op, c.retry); err != nil {
		// Surface the provider's own error, not the retry wrapper, so
		// classification downstream still sees the structured shape.
		if lastErr != nil {
			return EnhanceResponse{}, lastErr
		}
		return EnhanceResponse{}, err
	}
	return resp, nil
}

// transient reports categories worth another attempt against the same
// provider.
func transient(category model.ErrorCategory) bool {
	return category == model.CategoryNetworkError || category == model.CategoryTimeout
}

func (c *Chain) enhanceWith(ctx context.Context, client Client, prompt, contextBlock string) (EnhanceResponse, error) {
	if streamer, ok := client.(StreamingClient); ok {
		seq, resp, err := streamer.EnhanceStream(ctx, prompt, contextBlock)
		if err != nil {
			return EnhanceResponse{}, err
		}
		text, err := Accumulate(ctx, seq)
		if err != nil {
			return EnhanceResponse{}, err
		}
		if text == "" {
			return EnhanceResponse{}, fmt.Errorf("empty streamed enhancement")
		}
		resp.Text = text
		return resp, nil
	}
	return client.Enhance(ctx, prompt, contextBlock)
}
