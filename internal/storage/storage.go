// Package storage defines the persistence interface for detection results.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/datadetector/internal/models"
)

// ErrNotFound is returned when no result exists for an ID.
var ErrNotFound = errors.New("result not found")

// Storage defines detection result persistence operations.
type Storage interface {
	// SaveFileResult stores r, replacing any earlier result with the same ID.
	SaveFileResult(ctx context.Context, r *models.FileResult) error
	GetFileResult(ctx context.Context, id string) (*models.FileResult, error)
	// ListFileResults returns results newest first.
	ListFileResults(ctx context.Context, offset, limit int) ([]*models.FileResult, error)
	DeleteFileResult(ctx context.Context, id string) error

	// Stats
	CountFiles(ctx context.Context) (int64, error)
	CountSheets(ctx context.Context) (int64, error)
	CountDataSheets(ctx context.Context) (int64, error)

	Close() error
}
