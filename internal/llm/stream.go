package llm

import (
	"context"
	"strings"
)

// ChunkSeq is a finite lazy sequence of text fragments from a streaming
// provider. The consumer stops iteration by returning false.
type ChunkSeq func(yield func(string) bool)

// StreamingClient is implemented by providers that can deliver the
// enhancement incrementally. The engine never inspects individual
// fragments; they are accumulated before quality analysis.
type StreamingClient interface {
	Client
	EnhanceStream(ctx context.Context, prompt, contextBlock string) (ChunkSeq, EnhanceResponse, error)
}

// Accumulate drains a chunk sequence into one string, stopping early if
// the context is cancelled.
func Accumulate(ctx context.Context, seq ChunkSeq) (string, error) {
	var sb strings.Builder
	seq(func(chunk string) bool {
		if ctx.Err() != nil {
			return false
		}
		sb.WriteString(chunk)
		return true
	})
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.TrimSpace(sb.String()), nil
}
