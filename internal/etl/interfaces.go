package etl

import (
	"context"

	"github.com/BartekS5/ingest/pkg/models"
)

// Sink is a destination the Loader writes into.
type Sink interface {
	// Prepare is the zero-row schema write. Replace drops and recreates
	// the table, append creates it only when missing.
	Prepare(ctx context.Context, table string, cols []models.ColumnDef, mode models.WriteMode) error
	// Append adds rows whose values follow cols.
	Append(ctx context.Context, table string, cols []models.ColumnDef, rows [][]any) error
	Close() error
}

// ProgressFunc is told the [lo, hi) range of every chunk once it is written.
type ProgressFunc func(lo, hi int)
