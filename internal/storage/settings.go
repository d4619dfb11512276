package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const consentKey = "semantic_consent"

// SetConsent records whether the user allows semantic workspace
// analysis.
func (s *SQLiteStorage) SetConsent(ctx context.Context, granted bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	value := "false"
	if granted {
		value = "true"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		consentKey, value)
	if err != nil {
		return fmt.Errorf("failed to save consent setting: %w", err)
	}
	return nil
}

// GetConsent returns the stored consent decision. Consent defaults to
// denied when it has never been recorded.
func (s *SQLiteStorage) GetConsent(ctx context.Context) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, consentKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load consent setting: %w", err)
	}
	return value == "true", nil
}
