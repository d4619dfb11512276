package model

// TrainedModelVersion is the current schema version for exported models.
const TrainedModelVersion = 1

// VectorizerState holds a serialized bag-of-words vectorizer. Vocabulary
// maps token to feature index; DocumentFrequency is indexed by feature.
type VectorizerState struct {
	Vocabulary        map[string]int `json:"vocabulary"`
	DocumentFrequency []int          `json:"documentFrequency"`
	DocumentCount     int            `json:"documentCount"`
}

// ClassifierState holds learned logistic-regression parameters.
type ClassifierState struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// TrainedModel is the persisted form of the trainable vagueness model.
// Re-importing an exported model must reproduce identical scores for
// identical inputs.
type TrainedModel struct {
	Version    int             `json:"version"`
	Vectorizer VectorizerState `json:"vectorizer"`
	Classifier ClassifierState `json:"classifier"`
}

// LabeledExample pairs a prompt with its known vagueness score (0-100).
type LabeledExample struct {
	Prompt string  `json:"prompt"`
	Score  float64 `json:"score"`
}

// Enhancement is one persisted history record of a completed rewrite.
type Enhancement struct {
	ID          string
	Prompt      string
	Enhanced    string
	Model       string
	ScoreBefore int
	Cached      bool
	CreatedAt   string
}
