package vagueness

import (
	"fmt"
	"math"

	"github.com/Veraticus/clarify/internal/model"
)

// Training hyperparameters. Fixed so that fitting the same examples
// always learns the same weights.
const (
	trainEpochs       = 300
	trainLearningRate = 0.5
)

// Trained is a logistic-regression vagueness model over TF-IDF
// features. Predictions are in [0,1]; Score scales to 0-100.
type Trained struct {
	vectorizer *Vectorizer
	weights    []float64
	bias       float64
}

// FitTrained learns a model from labeled examples. It returns an error
// on empty input and never produces a partially-fitted model: all state
// is built in fresh buffers and only returned on success.
func FitTrained(examples []model.LabeledExample) (*Trained, error) {
	if len(examples) == 0 {
		return nil, fmt.Errorf("no training examples provided")
	}

	corpus := make([]string, len(examples))
	labels := make([]float64, len(examples))
	for i, ex := range examples {
		if ex.Score < 0 || ex.Score > 100 {
			return nil, fmt.Errorf("example %d: score %.1f outside [0,100]", i, ex.Score)
		}
		corpus[i] = ex.Prompt
		labels[i] = ex.Score / 100
	}

	vec := NewVectorizer(corpus)
	if vec.Size() == 0 {
		return nil, fmt.Errorf("training corpus produced an empty vocabulary")
	}

	features := make([][]float64, len(corpus))
	for i, doc := range corpus {
		features[i] = vec.Transform(doc)
	}

	weights := make([]float64, vec.Size())
	bias := 0.0

	// Full-batch gradient descent. Zero-initialized weights and a fixed
	// epoch count keep training deterministic.
	n := float64(len(features))
	for epoch := 0; epoch < trainEpochs; epoch++ {
		gradW := make([]float64, len(weights))
		gradB := 0.0
		for i, x := range features {
			p := sigmoid(dot(weights, x) + bias)
			diff := p - labels[i]
			for j, xj := range x {
				if xj != 0 {
					gradW[j] += diff * xj
				}
			}
			gradB += diff
		}
		for j := range weights {
			weights[j] -= trainLearningRate * gradW[j] / n
		}
		bias -= trainLearningRate * gradB / n
	}

	return &Trained{
		vectorizer: vec,
		weights:    weights,
		bias:       bias,
	}, nil
}

// Predict returns the model's vagueness probability for a prompt.
func (t *Trained) Predict(prompt string) float64 {
	x := t.vectorizer.Transform(prompt)
	return sigmoid(dot(t.weights, x) + t.bias)
}

// Score returns the 0-100 vagueness score for a prompt.
func (t *Trained) Score(prompt string) int {
	return clampScore(int(math.Round(t.Predict(prompt) * 100)))
}

// Confidence reflects how far the prediction sits from the decision
// boundary: 0.5 at the boundary, approaching 1 at the extremes.
func (t *Trained) Confidence(prompt string) float64 {
	p := t.Predict(prompt)
	margin := math.Abs(2*p - 1)
	if margin < 0.55 {
		return 0.55
	}
	return margin
}

// Export serializes the model for persistence.
func (t *Trained) Export() model.TrainedModel {
	vocab := make(map[string]int, len(t.vectorizer.vocabulary))
	for k, v := range t.vectorizer.vocabulary {
		vocab[k] = v
	}
	docFreq := make([]int, len(t.vectorizer.docFreq))
	copy(docFreq, t.vectorizer.docFreq)
	weights := make([]float64, len(t.weights))
	copy(weights, t.weights)

	return model.TrainedModel{
		Version: model.TrainedModelVersion,
		Vectorizer: model.VectorizerState{
			Vocabulary:        vocab,
			DocumentFrequency: docFreq,
			DocumentCount:     t.vectorizer.docCount,
		},
		Classifier: model.ClassifierState{
			Weights: weights,
			Bias:    t.bias,
		},
	}
}

// ImportTrained reconstructs a model from its persisted form.
// Re-scoring any prompt after an export/import cycle yields a
// bit-identical result.
func ImportTrained(tm model.TrainedModel) (*Trained, error) {
	if tm.Version != model.TrainedModelVersion {
		return nil, fmt.Errorf("unsupported model version %d", tm.Version)
	}
	if len(tm.Classifier.Weights) != len(tm.Vectorizer.DocumentFrequency) {
		return nil, fmt.Errorf("model weight count %d does not match vocabulary size %d",
			len(tm.Classifier.Weights), len(tm.Vectorizer.DocumentFrequency))
	}
	for tok, idx := range tm.Vectorizer.Vocabulary {
		if idx < 0 || idx >= len(tm.Vectorizer.DocumentFrequency) {
			return nil, fmt.Errorf("vocabulary entry %q has out-of-range index %d", tok, idx)
		}
	}

	return &Trained{
		vectorizer: &Vectorizer{
			vocabulary: tm.Vectorizer.Vocabulary,
			docFreq:    tm.Vectorizer.DocumentFrequency,
			docCount:   tm.Vectorizer.DocumentCount,
		},
		weights: tm.Classifier.Weights,
		bias:    tm.Classifier.Bias,
	}, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
