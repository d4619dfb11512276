package engine

import (
	"context"
	"sync"

	"github.com/Veraticus/clarify/internal/llm"
	"github.com/Veraticus/clarify/internal/model"
	"github.com/Veraticus/clarify/internal/quality"
)

// MockAnalyzer is a mock implementation of Analyzer for testing.
type MockAnalyzer struct {
	AnalyzeFunc    func(prompt string) model.AnalysisResult
	ThresholdValue int

	mu       sync.Mutex
	Analyzed []string
}

// Analyze implements Analyzer.
func (m *MockAnalyzer) Analyze(prompt string) model.AnalysisResult {
	m.mu.Lock()
	m.Analyzed = append(m.Analyzed, prompt)
	m.mu.Unlock()

	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(prompt)
	}
	return model.AnalysisResult{Source: model.SourceRules, Score: 50}
}

// Threshold implements Analyzer.
func (m *MockAnalyzer) Threshold() int {
	if m.ThresholdValue != 0 {
		return m.ThresholdValue
	}
	return 30
}

// MockContextSource is a mock implementation of ContextSource for testing.
type MockContextSource struct {
	DetectFunc func(ctx context.Context) (*model.TieredContext, error)

	mu    sync.Mutex
	Calls int
}

// Detect implements ContextSource.
func (m *MockContextSource) Detect(ctx context.Context) (*model.TieredContext, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()

	if m.DetectFunc != nil {
		return m.DetectFunc(ctx)
	}
	return &model.TieredContext{}, nil
}

// MockProvider is a mock implementation of Provider for testing.
type MockProvider struct {
	EnhanceFunc func(ctx context.Context, prompt, contextBlock string) (llm.EnhanceResponse, error)

	mu    sync.Mutex
	Calls int
}

// Enhance implements Provider.
func (m *MockProvider) Enhance(ctx context.Context, prompt, contextBlock string) (llm.EnhanceResponse, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()

	if m.EnhanceFunc != nil {
		return m.EnhanceFunc(ctx, prompt, contextBlock)
	}
	return llm.EnhanceResponse{Text: "Enhanced: " + prompt, Model: "mock/model", TokensUsed: 10}, nil
}

// CallCount returns how many times Enhance was invoked.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// MockQualityMeter is a mock implementation of QualityMeter for testing.
type MockQualityMeter struct {
	MeasureFunc func(original, enhanced string, originalAnalysis *model.AnalysisResult) (model.ImprovementBreakdown, quality.Scores)
}

// Measure implements QualityMeter.
func (m *MockQualityMeter) Measure(original, enhanced string, originalAnalysis *model.AnalysisResult) (model.ImprovementBreakdown, quality.Scores) {
	if m.MeasureFunc != nil {
		return m.MeasureFunc(original, enhanced, originalAnalysis)
	}
	return model.ImprovementBreakdown{AddedSpecificity: true, StayedOnTopic: true}, quality.Scores{}
}
