package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/clarify/internal/model"
	"github.com/Veraticus/clarify/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClient is a canned-response Client for chain tests. With
// failUntil set, err is returned for the first failUntil calls and
// resp afterwards; with it zero, err (when set) is permanent.
type stubClient struct {
	name      string
	resp      EnhanceResponse
	err       error
	failUntil int
	calls     int
}

func (s *stubClient) Name() string { return s.name }
func (s *stubClient) Enhance(_ context.Context, _, _ string) (EnhanceResponse, error) {
	s.calls++
	if s.err != nil && (s.failUntil == 0 || s.calls <= s.failUntil) {
		return EnhanceResponse{}, s.err
	}
	return s.resp, nil
}

// quickRetry keeps retry delays out of test runtime.
func quickRetry() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  2,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
		Multiplier:   1,
	}
}

// stubStreamer delivers its response as chunks.
type stubStreamer struct {
	stubClient
	chunks []string
}

func (s *stubStreamer) EnhanceStream(_ context.Context, _, _ string) (ChunkSeq, EnhanceResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, EnhanceResponse{}, s.err
	}
	seq := func(yield func(string) bool) {
		for _, chunk := range s.chunks {
			if !yield(chunk) {
				return
			}
		}
	}
	return seq, s.resp, nil
}

func TestChainEnhance(t *testing.T) {
	t.Run("first success wins", func(t *testing.T) {
		primary := &stubClient{name: "openai", resp: EnhanceResponse{Text: "better", Model: "openai/gpt-4o-mini"}}
		secondary := &stubClient{name: "anthropic"}
		chain, err := NewChainFromClients(nil, primary, secondary)
		require.NoError(t, err)

		resp, err := chain.Enhance(context.Background(), "fix it", "")
		require.NoError(t, err)
		assert.Equal(t, "openai/gpt-4o-mini", resp.Model)
		assert.Equal(t, 0, secondary.calls, "secondary must not be consulted after a success")
	})

	t.Run("falls back after exhausting retries on a network error", func(t *testing.T) {
		primary := &stubClient{name: "openai", err: errors.New("connection refused")}
		secondary := &stubClient{name: "anthropic", resp: EnhanceResponse{Text: "better", Model: "anthropic/claude-3-5-haiku"}}
		chain, err := NewChainFromClients(nil, primary, secondary)
		require.NoError(t, err)
		chain.retry = quickRetry()

		resp, err := chain.Enhance(context.Background(), "fix it", "")
		require.NoError(t, err, "a primary failure must not surface when the secondary succeeds")
		assert.Equal(t, "anthropic/claude-3-5-haiku", resp.Model)
		assert.Equal(t, 2, primary.calls, "transient failures get a second attempt before fallback")
	})

	t.Run("transient failure recovers on the same provider", func(t *testing.T) {
		primary := &stubClient{
			name:      "openai",
			err:       errors.New("connection refused"),
			failUntil: 1,
			resp:      EnhanceResponse{Text: "better", Model: "openai/gpt-4o-mini"},
		}
		secondary := &stubClient{name: "anthropic"}
		chain, err := NewChainFromClients(nil, primary, secondary)
		require.NoError(t, err)
		chain.retry = quickRetry()

		resp, err := chain.Enhance(context.Background(), "fix it", "")
		require.NoError(t, err)
		assert.Equal(t, "openai/gpt-4o-mini", resp.Model)
		assert.Equal(t, 2, primary.calls)
		assert.Equal(t, 0, secondary.calls, "fallback must not fire when a retry succeeds")
	})

	t.Run("auth failures skip the retry and fall back at once", func(t *testing.T) {
		primary := &stubClient{name: "openai", err: errors.New("invalid api key")}
		secondary := &stubClient{name: "anthropic", resp: EnhanceResponse{Text: "better", Model: "anthropic/claude-3-5-haiku"}}
		chain, err := NewChainFromClients(nil, primary, secondary)
		require.NoError(t, err)
		chain.retry = quickRetry()

		resp, err := chain.Enhance(context.Background(), "fix it", "")
		require.NoError(t, err)
		assert.Equal(t, "anthropic/claude-3-5-haiku", resp.Model)
		assert.Equal(t, 1, primary.calls, "non-transient failures must not be retried")
	})

	t.Run("all failures surface the last classified error", func(t *testing.T) {
		primary := &stubClient{name: "openai", err: errors.New("connection refused")}
		secondary := &stubClient{name: "anthropic", err: errors.New("invalid api key")}
		chain, err := NewChainFromClients(nil, primary, secondary)
		require.NoError(t, err)
		chain.retry = quickRetry()

		_, err = chain.Enhance(context.Background(), "fix it", "")
		var failure *ChainFailure
		require.ErrorAs(t, err, &failure)
		assert.Equal(t, model.CategoryAuthFailed, failure.Category)
	})

	t.Run("cancellation stops the walk immediately", func(t *testing.T) {
		primary := &stubClient{name: "openai", err: context.Canceled}
		secondary := &stubClient{name: "anthropic", resp: EnhanceResponse{Text: "better"}}
		chain, err := NewChainFromClients(nil, primary, secondary)
		require.NoError(t, err)

		_, err = chain.Enhance(context.Background(), "fix it", "")
		var failure *ChainFailure
		require.ErrorAs(t, err, &failure)
		assert.Equal(t, model.CategoryCancelled, failure.Category)
		assert.Equal(t, 0, secondary.calls)
	})

	t.Run("streaming providers are accumulated", func(t *testing.T) {
		streamer := &stubStreamer{
			stubClient: stubClient{name: "openai", resp: EnhanceResponse{Model: "openai/gpt-4o-mini"}},
			chunks:     []string{"Implement ", "the cache ", "in internal/engine"},
		}
		chain, err := NewChainFromClients(nil, streamer)
		require.NoError(t, err)

		resp, err := chain.Enhance(context.Background(), "fix it", "")
		require.NoError(t, err)
		assert.Equal(t, "Implement the cache in internal/engine", resp.Text)
	})
}

func TestNewChain(t *testing.T) {
	t.Run("rejects empty provider list", func(t *testing.T) {
		_, err := NewChain(ChainConfig{}, nil)
		require.Error(t, err)
	})

	t.Run("rejects unknown provider names", func(t *testing.T) {
		_, err := NewChain(ChainConfig{Providers: []Config{{Provider: "carrier-pigeon", APIKey: "k"}}}, nil)
		require.Error(t, err)
	})

	t.Run("builds clients in priority order", func(t *testing.T) {
		chain, err := NewChain(ChainConfig{Providers: []Config{
			{Provider: "openai", APIKey: "k1"},
			{Provider: "anthropic", APIKey: "k2"},
		}}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"openai", "anthropic"}, chain.Names())
	})
}

func TestAccumulate(t *testing.T) {
	t.Run("joins chunks and trims", func(t *testing.T) {
		seq := ChunkSeq(func(yield func(string) bool) {
			yield("  hello ")
			yield("world  ")
		})
		out, err := Accumulate(context.Background(), seq)
		require.NoError(t, err)
		assert.Equal(t, "hello world", out)
	})

	t.Run("cancellation aborts consumption", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		seq := ChunkSeq(func(yield func(string) bool) {
			yield("first")
			cancel()
			yield("second")
		})
		_, err := Accumulate(ctx, seq)
		require.ErrorIs(t, err, context.Canceled)
	})
}
