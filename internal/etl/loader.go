package etl

import (
	"context"

	"github.com/BartekS5/ingest/pkg/logger"
	"github.com/BartekS5/ingest/pkg/models"
)

// DefaultChunkSize is the number of rows per append write.
const DefaultChunkSize = 100000

// Loader writes a table into a Sink: one schema write, then appends in
// fixed-size chunks in row order.
type Loader struct {
	Sink      Sink
	ChunkSize int
	Progress  ProgressFunc

	// OnSchemaWritten and OnAppend let the pipeline track its state.
	OnSchemaWritten func()
	OnAppend        func()
}

// NewLoader returns a loader with the default chunk size when size <= 0.
func NewLoader(sink Sink, size int) *Loader {
	return &Loader{Sink: sink, ChunkSize: size}
}

func (l *Loader) chunkSize() int {
	if l.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return l.ChunkSize
}

// Load writes every row of t into target and returns the number of append
// writes issued. Chunks written before a failure stay in the destination.
func (l *Loader) Load(ctx context.Context, target string, t *models.Table, mode models.WriteMode) (int, error) {
	cols := t.Schema()
	if err := ValidateColumns(cols); err != nil {
		return 0, &LoadError{Table: target, Err: err}
	}

	if err := l.Sink.Prepare(ctx, target, cols, mode); err != nil {
		return 0, &LoadError{Table: target, Err: err}
	}
	if l.OnSchemaWritten != nil {
		l.OnSchemaWritten()
	}

	size := l.chunkSize()
	chunks := 0
	for lo := 0; lo < t.NumRows; lo += size {
		hi := min(lo+size, t.NumRows)
		if l.OnAppend != nil {
			l.OnAppend()
		}
		if err := l.Sink.Append(ctx, target, cols, t.Rows(lo, hi)); err != nil {
			return chunks, &LoadError{Table: target, Lo: lo, Hi: hi, Err: err}
		}
		chunks++

		logger.Infof("Loaded rows %d to %d", lo, hi)
		if l.Progress != nil {
			l.Progress(lo, hi)
		}
	}
	return chunks, nil
}
