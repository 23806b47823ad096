// Package storage holds the record stores that back the collection handed
// to the validator and the analyzer.
package storage

import (
	"context"
	"errors"

	"daytrack/internal/core"
)

var ErrNotFound = errors.New("record not found")

// RecordStore persists day records. Stores assign ID and CreatedAt on
// Create and keep both unchanged on Update. Uniqueness of dates is not a
// store concern.
type RecordStore interface {
	List(ctx context.Context) ([]core.DailyRecord, error)
	Get(ctx context.Context, id string) (core.DailyRecord, error)
	Create(ctx context.Context, r core.DailyRecord) (core.DailyRecord, error)
	Update(ctx context.Context, r core.DailyRecord) (core.DailyRecord, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
