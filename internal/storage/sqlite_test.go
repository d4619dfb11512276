package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/Veraticus/clarify/internal/common"
	"github.com/Veraticus/clarify/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "clarify-test.db")
	storage, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	require.NoError(t, storage.Migrate(context.Background()))
	return storage
}

func TestNewSQLiteStorage(t *testing.T) {
	t.Run("requires a path", func(t *testing.T) {
		_, err := NewSQLiteStorage("")
		require.Error(t, err)
	})

	t.Run("creates missing parent directories", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "nested", "dir", "clarify.db")
		storage, err := NewSQLiteStorage(dbPath)
		require.NoError(t, err)
		require.NoError(t, storage.Close())
	})
}

func TestMigrate(t *testing.T) {
	t.Run("is idempotent", func(t *testing.T) {
		storage := setupTestStorage(t)
		require.NoError(t, storage.Migrate(context.Background()))
	})
}

func TestTrainedModelStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("returns not found before any save", func(t *testing.T) {
		storage := setupTestStorage(t)

		_, err := storage.GetTrainedModel(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrNotFound))
	})

	t.Run("round trips a model blob", func(t *testing.T) {
		storage := setupTestStorage(t)
		blob := []byte(`{"version":1,"vectorizer":{},"classifier":{}}`)

		require.NoError(t, storage.SaveTrainedModel(ctx, blob))

		got, err := storage.GetTrainedModel(ctx)
		require.NoError(t, err)
		assert.Equal(t, blob, got)
	})

	t.Run("a second save replaces the first", func(t *testing.T) {
		storage := setupTestStorage(t)

		require.NoError(t, storage.SaveTrainedModel(ctx, []byte("first")))
		require.NoError(t, storage.SaveTrainedModel(ctx, []byte("second")))

		got, err := storage.GetTrainedModel(ctx)
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), got)
	})

	t.Run("rejects an empty blob", func(t *testing.T) {
		storage := setupTestStorage(t)
		require.Error(t, storage.SaveTrainedModel(ctx, nil))
	})

	t.Run("delete removes the model", func(t *testing.T) {
		storage := setupTestStorage(t)

		require.NoError(t, storage.SaveTrainedModel(ctx, []byte("blob")))
		require.NoError(t, storage.DeleteTrainedModel(ctx))

		_, err := storage.GetTrainedModel(ctx)
		assert.True(t, errors.Is(err, common.ErrNotFound))

		// Deleting again is a no-op.
		require.NoError(t, storage.DeleteTrainedModel(ctx))
	})
}

func TestConsentStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to denied", func(t *testing.T) {
		storage := setupTestStorage(t)

		granted, err := storage.GetConsent(ctx)
		require.NoError(t, err)
		assert.False(t, granted)
	})

	t.Run("persists grant and revocation", func(t *testing.T) {
		storage := setupTestStorage(t)

		require.NoError(t, storage.SetConsent(ctx, true))
		granted, err := storage.GetConsent(ctx)
		require.NoError(t, err)
		assert.True(t, granted)

		require.NoError(t, storage.SetConsent(ctx, false))
		granted, err = storage.GetConsent(ctx)
		require.NoError(t, err)
		assert.False(t, granted)
	})
}

func TestEnhancementStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("saves and lists history", func(t *testing.T) {
		storage := setupTestStorage(t)

		for i := 0; i < 3; i++ {
			require.NoError(t, storage.SaveEnhancement(ctx, &model.Enhancement{
				ID:          fmt.Sprintf("req-%d", i),
				Prompt:      "fix it",
				Enhanced:    fmt.Sprintf("Fix handler %d", i),
				Model:       "openai/gpt-4o-mini",
				ScoreBefore: 90,
			}))
		}

		got, err := storage.ListEnhancements(ctx, 0)
		require.NoError(t, err)
		require.Len(t, got, 3)

		for _, e := range got {
			assert.NotEmpty(t, e.CreatedAt)
			assert.Equal(t, 90, e.ScoreBefore)
		}
	})

	t.Run("honors the limit", func(t *testing.T) {
		storage := setupTestStorage(t)

		for i := 0; i < 5; i++ {
			require.NoError(t, storage.SaveEnhancement(ctx, &model.Enhancement{
				ID:       fmt.Sprintf("req-%d", i),
				Prompt:   "fix it",
				Enhanced: "done",
				Model:    "m",
			}))
		}

		got, err := storage.ListEnhancements(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("requires an ID", func(t *testing.T) {
		storage := setupTestStorage(t)
		err := storage.SaveEnhancement(ctx, &model.Enhancement{Prompt: "fix it"})
		require.Error(t, err)
	})

	t.Run("rejects a duplicate ID", func(t *testing.T) {
		storage := setupTestStorage(t)

		record := &model.Enhancement{ID: "req-1", Prompt: "p", Enhanced: "e", Model: "m"}
		require.NoError(t, storage.SaveEnhancement(ctx, record))
		require.Error(t, storage.SaveEnhancement(ctx, record))
	})
}
