package vagueness

import (
	"encoding/json"
	"testing"

	"github.com/Veraticus/clarify/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trainingExamples() []model.LabeledExample {
	return []model.LabeledExample{
		{Prompt: "fix it", Score: 95},
		{Prompt: "make this better", Score: 90},
		{Prompt: "do the thing", Score: 92},
		{Prompt: "help me with stuff", Score: 88},
		{Prompt: "clean this up somehow", Score: 85},
		{Prompt: "implement JWT authentication in src/auth/login.go", Score: 10},
		{Prompt: "add a Redis cache layer to the session store with a 5 minute TTL", Score: 8},
		{Prompt: "fix the TypeError in src/auth/login.ts on line 42", Score: 15},
		{Prompt: "write table tests for internal/engine/cache.go covering LRU eviction", Score: 5},
		{Prompt: "migrate the users table to add an email_verified column in PostgreSQL", Score: 12},
	}
}

func TestFitTrained(t *testing.T) {
	t.Run("fails on empty input", func(t *testing.T) {
		_, err := FitTrained(nil)
		require.Error(t, err)
	})

	t.Run("fails on out-of-range label", func(t *testing.T) {
		_, err := FitTrained([]model.LabeledExample{{Prompt: "x", Score: 150}})
		require.Error(t, err)
	})

	t.Run("separates vague from specific prompts", func(t *testing.T) {
		trained, err := FitTrained(trainingExamples())
		require.NoError(t, err)

		vague := trained.Score("fix it")
		specific := trained.Score("implement JWT authentication in src/auth/login.go")
		assert.Greater(t, vague, specific)
	})

	t.Run("training is deterministic", func(t *testing.T) {
		a, err := FitTrained(trainingExamples())
		require.NoError(t, err)
		b, err := FitTrained(trainingExamples())
		require.NoError(t, err)

		assert.Equal(t, a.Score("make a website"), b.Score("make a website"))
		assert.Equal(t, a.Predict("fix it"), b.Predict("fix it"))
	})

	t.Run("scores stay within bounds", func(t *testing.T) {
		trained, err := FitTrained(trainingExamples())
		require.NoError(t, err)

		for _, prompt := range []string{"", "fix it", "unknown tokens only zzz", "implement the cache"} {
			score := trained.Score(prompt)
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 100)
		}
	})
}

func TestTrainedRoundTrip(t *testing.T) {
	trained, err := FitTrained(trainingExamples())
	require.NoError(t, err)

	blob, err := json.Marshal(trained.Export())
	require.NoError(t, err)

	var tm model.TrainedModel
	require.NoError(t, json.Unmarshal(blob, &tm))

	restored, err := ImportTrained(tm)
	require.NoError(t, err)

	// Re-scoring after an export/import cycle must be bit-identical.
	for _, prompt := range []string{"fix it", "make a website", "implement JWT authentication in src/auth/login.go"} {
		assert.Equal(t, trained.Predict(prompt), restored.Predict(prompt), "prompt: %q", prompt)
		assert.Equal(t, trained.Score(prompt), restored.Score(prompt), "prompt: %q", prompt)
	}
}

func TestImportTrainedValidation(t *testing.T) {
	trained, err := FitTrained(trainingExamples())
	require.NoError(t, err)
	exported := trained.Export()

	t.Run("rejects unknown version", func(t *testing.T) {
		bad := exported
		bad.Version = 99
		_, err := ImportTrained(bad)
		require.Error(t, err)
	})

	t.Run("rejects mismatched weight count", func(t *testing.T) {
		bad := exported
		bad.Classifier.Weights = bad.Classifier.Weights[:1]
		_, err := ImportTrained(bad)
		require.Error(t, err)
	})
}
