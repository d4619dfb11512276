package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/clarify/internal/common"
)

// SaveTrainedModel stores the serialized trained model, replacing any
// previous one. There is only ever one trained model per database.
func (s *SQLiteStorage) SaveTrainedModel(ctx context.Context, blob []byte) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(blob) == 0 {
		return errors.New("trained model blob is required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trained_models (id, blob, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET blob = excluded.blob, updated_at = CURRENT_TIMESTAMP`,
		blob)
	if err != nil {
		return fmt.Errorf("failed to save trained model: %w", err)
	}
	return nil
}

// GetTrainedModel returns the serialized trained model, or
// common.ErrNotFound when none has been saved.
func (s *SQLiteStorage) GetTrainedModel(ctx context.Context) ([]byte, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT blob FROM trained_models WHERE id = 1`).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trained model: %w", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load trained model: %w", err)
	}
	return blob, nil
}

// DeleteTrainedModel removes the stored model. Deleting when none
// exists is a no-op.
func (s *SQLiteStorage) DeleteTrainedModel(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM trained_models WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to delete trained model: %w", err)
	}
	return nil
}
