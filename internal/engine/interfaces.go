package engine

import (
	"context"

	"github.com/Veraticus/clarify/internal/llm"
	"github.com/Veraticus/clarify/internal/model"
	"github.com/Veraticus/clarify/internal/quality"
)

// Analyzer scores prompts for vagueness and owns the skip/enhance
// threshold.
type Analyzer interface {
	Analyze(prompt string) model.AnalysisResult
	Threshold() int
}

// ContextSource gathers the tiered workspace context.
type ContextSource interface {
	Detect(ctx context.Context) (*model.TieredContext, error)
}

// Provider enhances prompts, typically through an ordered fallback
// chain of clients.
type Provider interface {
	Enhance(ctx context.Context, prompt, contextBlock string) (llm.EnhanceResponse, error)
}

// QualityMeter measures how much a rewrite improved a prompt.
type QualityMeter interface {
	Measure(original, enhanced string, originalAnalysis *model.AnalysisResult) (model.ImprovementBreakdown, quality.Scores)
}
