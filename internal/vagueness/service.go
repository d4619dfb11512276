package vagueness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/Veraticus/clarify/internal/common"
	"github.com/Veraticus/clarify/internal/model"
	"github.com/Veraticus/clarify/internal/service"
)

// Hybrid blend weights when both scoring paths contribute.
const (
	hybridMLWeight    = 0.6
	hybridRulesWeight = 0.4
)

// DefaultThreshold is the skip/enhance boundary used by the engine.
const DefaultThreshold = 30

// scoringMode selects which path produces the score. It is decided by
// model readiness and rule signals, never by inspecting a mode string.
type scoringMode int

const (
	modeRules scoringMode = iota
	modeML
	modeHybrid
)

// Service combines the rule-based classifier with the trainable model
// into a hybrid scorer, and owns the trained model's lifecycle.
type Service struct {
	rules     *Classifier
	trained   *Trained
	logger    *slog.Logger
	threshold int
	mu        sync.RWMutex
}

// NewService creates a vagueness service with an untrained model.
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		rules:     NewClassifier(),
		threshold: DefaultThreshold,
		logger:    logger,
	}
}

// Analyze produces a hybrid vagueness analysis. Issues always come from
// the rule pass, since they carry human-readable explanations; the
// score blends in the trained model when one is available.
func (s *Service) Analyze(prompt string) model.AnalysisResult {
	s.mu.RLock()
	trained := s.trained
	s.mu.RUnlock()

	ruleResult := s.rules.Analyze(prompt)

	switch s.mode(trained, ruleResult) {
	case modeRules:
		return ruleResult

	case modeML:
		result := ruleResult
		result.Score = trained.Score(prompt)
		result.Source = model.SourceML
		result.Confidence = trained.Confidence(prompt)
		return result

	default: // modeHybrid
		mlScore := float64(trained.Score(prompt))
		blended := hybridMLWeight*mlScore + hybridRulesWeight*float64(ruleResult.Score)
		result := ruleResult
		result.Score = clampScore(int(math.Round(blended)))
		result.Source = model.SourceHybrid
		result.Confidence = trained.Confidence(prompt)
		return result
	}
}

// mode picks the scoring path: rules when untrained, pure ML when the
// rules found nothing to blend in, hybrid otherwise.
func (s *Service) mode(trained *Trained, ruleResult model.AnalysisResult) scoringMode {
	if trained == nil {
		return modeRules
	}
	if len(ruleResult.Issues) == 0 {
		return modeML
	}
	return modeHybrid
}

// Train fits the trainable model from labeled examples. On failure the
// previously trained model, if any, is left untouched.
func (s *Service) Train(examples []model.LabeledExample) error {
	trained, err := FitTrained(examples)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	s.mu.Lock()
	s.trained = trained
	s.mu.Unlock()

	s.logger.Info("vagueness model trained",
		"examples", len(examples),
		"vocabulary", trained.vectorizer.Size())
	return nil
}

// Trained reports whether a trained model is loaded.
func (s *Service) Trained() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trained != nil
}

// Export serializes the trained model as JSON.
func (s *Service) Export() ([]byte, error) {
	s.mu.RLock()
	trained := s.trained
	s.mu.RUnlock()

	if trained == nil {
		return nil, fmt.Errorf("no trained model to export")
	}
	return json.Marshal(trained.Export())
}

// Import loads a previously exported model. Scores after an
// export/import cycle are bit-identical to the original's.
func (s *Service) Import(data []byte) error {
	var tm model.TrainedModel
	if err := json.Unmarshal(data, &tm); err != nil {
		return fmt.Errorf("failed to parse model JSON: %w", err)
	}

	trained, err := ImportTrained(tm)
	if err != nil {
		return fmt.Errorf("failed to import model: %w", err)
	}

	s.mu.Lock()
	s.trained = trained
	s.mu.Unlock()
	return nil
}

// Reset drops the trained model, reverting to rule-only scoring.
func (s *Service) Reset() {
	s.mu.Lock()
	s.trained = nil
	s.mu.Unlock()
}

// SetThreshold sets the skip/enhance boundary.
func (s *Service) SetThreshold(n int) error {
	if n < 0 || n > 100 {
		return fmt.Errorf("%w: threshold %d outside [0,100]", common.ErrInvalidConfig, n)
	}
	s.mu.Lock()
	s.threshold = n
	s.mu.Unlock()
	return nil
}

// Threshold returns the current skip/enhance boundary.
func (s *Service) Threshold() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threshold
}

// SaveTo persists the trained model through the storage layer.
func (s *Service) SaveTo(ctx context.Context, store service.Storage) error {
	blob, err := s.Export()
	if err != nil {
		return err
	}
	return store.SaveTrainedModel(ctx, blob)
}

// LoadFrom restores a trained model from the storage layer. A missing
// model is not an error; the service stays on rule-only scoring.
func (s *Service) LoadFrom(ctx context.Context, store service.Storage) error {
	blob, err := store.GetTrainedModel(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.Import(blob)
}
