// Package llm contains the text-generation provider clients and the
// ordered fallback chain the engine enhances prompts through.
package llm

import (
	"context"
	"fmt"
	"time"
)

// requestTimeout bounds every provider round trip, independently of the
// caller's cancellation token. A timeout is recoverable; a caller
// cancellation is not.
const requestTimeout = 30 * time.Second

// Client is one text-generation provider.
type Client interface {
	// Name identifies the provider for logs and fallback decisions.
	Name() string
	// Enhance rewrites a prompt given a rendered context block.
	Enhance(ctx context.Context, prompt, contextBlock string) (EnhanceResponse, error)
}

// EnhanceResponse is a provider's rewrite of a prompt.
type EnhanceResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds configuration for one provider client.
type Config struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
}

// enhanceSystemPrompt instructs providers how to rewrite.
const enhanceSystemPrompt = "You are a prompt enhancement assistant. Rewrite the user's " +
	"instruction to be specific and actionable: name concrete targets, enumerate requirements, " +
	"and preserve the original intent. Respond with only the improved instruction text."

// buildEnhancePrompt renders the user message sent to every provider.
func buildEnhancePrompt(prompt, contextBlock string) string {
	if contextBlock == "" {
		return fmt.Sprintf("Improve this instruction:\n\n%s", prompt)
	}
	return fmt.Sprintf("Improve this instruction:\n\n%s\n\nWorkspace context:\n%s", prompt, contextBlock)
}
