package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/clarify/internal/model"
)

// SaveEnhancement records one completed rewrite in the history table.
func (s *SQLiteStorage) SaveEnhancement(ctx context.Context, enhancement *model.Enhancement) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if enhancement == nil {
		return errors.New("enhancement is required")
	}
	if err := validateString(enhancement.ID, "enhancement.ID"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO enhancements (id, prompt, enhanced, model, score_before, cached)
		VALUES (?, ?, ?, ?, ?, ?)`,
		enhancement.ID,
		enhancement.Prompt,
		enhancement.Enhanced,
		enhancement.Model,
		enhancement.ScoreBefore,
		enhancement.Cached)
	if err != nil {
		return fmt.Errorf("failed to save enhancement: %w", err)
	}
	return nil
}

// ListEnhancements returns the most recent history records, newest
// first. A non-positive limit returns everything.
func (s *SQLiteStorage) ListEnhancements(ctx context.Context, limit int) ([]model.Enhancement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unlimited
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, prompt, enhanced, model, score_before, cached, created_at
		FROM enhancements
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list enhancements: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var enhancements []model.Enhancement
	for rows.Next() {
		var e model.Enhancement
		if err := rows.Scan(&e.ID, &e.Prompt, &e.Enhanced, &e.Model, &e.ScoreBefore, &e.Cached, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan enhancement: %w", err)
		}
		enhancements = append(enhancements, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate enhancements: %w", err)
	}
	return enhancements, nil
}
