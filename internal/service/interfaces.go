// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/clarify/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Trained model operations
	SaveTrainedModel(ctx context.Context, blob []byte) error
	GetTrainedModel(ctx context.Context) ([]byte, error)
	DeleteTrainedModel(ctx context.Context) error

	// Settings operations
	SetConsent(ctx context.Context, granted bool) error
	GetConsent(ctx context.Context) (bool, error)

	// Enhancement history operations
	SaveEnhancement(ctx context.Context, enhancement *model.Enhancement) error
	ListEnhancements(ctx context.Context, limit int) ([]model.Enhancement, error)

	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
