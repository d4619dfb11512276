package vagueness

import (
	"testing"

	"github.com/Veraticus/clarify/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceAnalyze(t *testing.T) {
	t.Run("untrained service delegates to rules", func(t *testing.T) {
		svc := NewService(nil)

		result := svc.Analyze("fix it")
		assert.Equal(t, model.SourceRules, result.Source)
		assert.True(t, result.HasVagueVerb)
		assert.Greater(t, result.Score, 60)
	})

	t.Run("trained service blends rule signals", func(t *testing.T) {
		svc := NewService(nil)
		require.NoError(t, svc.Train(trainingExamples()))

		// Rule issues present, so the score is a hybrid blend.
		result := svc.Analyze("fix it")
		assert.Equal(t, model.SourceHybrid, result.Source)
		assert.NotEmpty(t, result.Issues, "issues are always rule-derived")
		assert.GreaterOrEqual(t, result.Confidence, 0.55)
	})

	t.Run("trained service reports pure ml when rules are silent", func(t *testing.T) {
		svc := NewService(nil)
		require.NoError(t, svc.Train(trainingExamples()))

		result := svc.Analyze("build a REST API with JWT auth and PostgreSQL")
		assert.Equal(t, model.SourceML, result.Source)
		assert.Empty(t, result.Issues)
	})

	t.Run("scores stay within bounds across modes", func(t *testing.T) {
		svc := NewService(nil)
		require.NoError(t, svc.Train(trainingExamples()))

		for _, prompt := range []string{"", "fix it", "implement JWT authentication in src/auth/login.go"} {
			result := svc.Analyze(prompt)
			assert.GreaterOrEqual(t, result.Score, 0)
			assert.LessOrEqual(t, result.Score, 100)
		}
	})
}

func TestServiceModelLifecycle(t *testing.T) {
	t.Run("failed training leaves existing model intact", func(t *testing.T) {
		svc := NewService(nil)
		require.NoError(t, svc.Train(trainingExamples()))
		before := svc.Analyze("fix it")

		require.Error(t, svc.Train(nil))

		after := svc.Analyze("fix it")
		assert.Equal(t, before.Score, after.Score)
		assert.True(t, svc.Trained())
	})

	t.Run("export then import reproduces identical scores", func(t *testing.T) {
		svc := NewService(nil)
		require.NoError(t, svc.Train(trainingExamples()))

		blob, err := svc.Export()
		require.NoError(t, err)

		restored := NewService(nil)
		require.NoError(t, restored.Import(blob))

		for _, prompt := range []string{"fix it", "make a website", "add a Redis cache layer"} {
			assert.Equal(t, svc.Analyze(prompt).Score, restored.Analyze(prompt).Score, "prompt: %q", prompt)
		}
	})

	t.Run("export without a model fails", func(t *testing.T) {
		svc := NewService(nil)
		_, err := svc.Export()
		require.Error(t, err)
	})

	t.Run("import rejects malformed JSON", func(t *testing.T) {
		svc := NewService(nil)
		require.Error(t, svc.Import([]byte("not json")))
		assert.False(t, svc.Trained())
	})

	t.Run("reset reverts to rule-only scoring", func(t *testing.T) {
		svc := NewService(nil)
		require.NoError(t, svc.Train(trainingExamples()))
		svc.Reset()

		assert.False(t, svc.Trained())
		assert.Equal(t, model.SourceRules, svc.Analyze("fix it").Source)
	})
}

func TestServiceThreshold(t *testing.T) {
	svc := NewService(nil)

	assert.Equal(t, DefaultThreshold, svc.Threshold())

	require.NoError(t, svc.SetThreshold(55))
	assert.Equal(t, 55, svc.Threshold())

	require.Error(t, svc.SetThreshold(-1))
	require.Error(t, svc.SetThreshold(101))
	assert.Equal(t, 55, svc.Threshold(), "rejected values must not change the threshold")
}
