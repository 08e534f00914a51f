package etl

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/BartekS5/ingest/pkg/logger"
	"github.com/BartekS5/ingest/pkg/models"
	"github.com/google/uuid"
)

// Source describes one file to ingest.
type Source struct {
	Name string
	URL  string
	// Format is detected from the URL when empty.
	Format Format
	Table  string
	// TimestampColumns defaults to DefaultTimestampColumns when nil.
	TimestampColumns []string
	// Cache, when set, is the local path the file is streamed to before
	// parsing. Otherwise the payload is held in memory.
	Cache      string
	ReuseCache bool
	// ChunkSize and Mode override the pipeline defaults when set.
	ChunkSize int
	Mode      models.WriteMode
}

func (s Source) label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Table
}

// Result summarises one run. It is returned on failure as well.
type Result struct {
	RunID    string
	Source   string
	Table    string
	Rows     int
	Chunks   int
	State    State
	Duration time.Duration
}

// advance moves the run to s. DONE and FAILED are final.
func (r *Result) advance(s State) {
	if r.State.Terminal() {
		return
	}
	r.State = s
}

// Pipeline runs fetch, parse, normalize and load for a source.
type Pipeline struct {
	Fetcher   *Fetcher
	Sink      Sink
	ChunkSize int
	Mode      models.WriteMode
	// DryRun stops after normalization and writes nothing.
	DryRun   bool
	Progress ProgressFunc
}

func NewPipeline(fetcher *Fetcher, sink Sink, chunkSize int, dryRun bool) *Pipeline {
	return &Pipeline{
		Fetcher:   fetcher,
		Sink:      sink,
		ChunkSize: chunkSize,
		Mode:      models.ModeReplace,
		DryRun:    dryRun,
	}
}

// Run ingests one source. A fetch or parse failure happens before any
// write, so the destination is left untouched.
func (p *Pipeline) Run(ctx context.Context, src Source) (*Result, error) {
	res := &Result{
		RunID:  uuid.NewString(),
		Source: src.label(),
		Table:  src.Table,
		State:  StateInit,
	}
	start := time.Now()
	log := logger.With("run_id", res.RunID, "source", res.Source)

	err := p.run(ctx, src, res)
	res.Duration = time.Since(start)
	if err != nil {
		res.advance(StateFailed)
		log.Error("Pipeline failed", "table", src.Table, "error", err)
		return res, err
	}

	res.advance(StateDone)
	log.Info("Pipeline finished", "table", src.Table, "rows", res.Rows, "chunks", res.Chunks, "duration", res.Duration)
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, src Source, res *Result) error {
	if src.Table == "" {
		return &LoadError{Err: fmt.Errorf("no destination table for %s", src.URL)}
	}

	format := src.Format
	if format == "" {
		f, err := DetectFormat(src.URL)
		if err != nil {
			return &ParseError{Err: err}
		}
		format = f
	}

	logger.Infof("Downloading %s", src.URL)
	t, err := p.fetchAndParse(ctx, src, format, res)
	if err != nil {
		return err
	}
	res.advance(StateParsed)
	res.Rows = t.NumRows

	tsCols := src.TimestampColumns
	if tsCols == nil {
		tsCols = DefaultTimestampColumns
	}
	if err := Normalize(t, tsCols); err != nil {
		return err
	}
	res.advance(StateNormalized)

	if p.DryRun {
		if err := ValidateColumns(t.Schema()); err != nil {
			return &LoadError{Table: src.Table, Err: err}
		}
		logger.Infof("[DRY RUN] Would load %d rows into %s", t.NumRows, src.Table)
		return nil
	}
	if p.Sink == nil {
		return &LoadError{Table: src.Table, Err: fmt.Errorf("no sink configured")}
	}

	chunk := src.ChunkSize
	if chunk <= 0 {
		chunk = p.ChunkSize
	}
	mode := src.Mode
	if mode == "" {
		mode = p.Mode
	}
	if mode == "" {
		mode = models.ModeReplace
	}

	loader := NewLoader(p.Sink, chunk)
	loader.Progress = p.Progress
	loader.OnSchemaWritten = func() { res.advance(StateSchemaWritten) }
	loader.OnAppend = func() { res.advance(StateAppending) }

	logger.Infof("Loading %d rows into %s (%s, chunk size %d)", t.NumRows, src.Table, mode, loader.chunkSize())
	chunks, err := loader.Load(ctx, src.Table, t, mode)
	res.Chunks = chunks
	return err
}

func (p *Pipeline) fetchAndParse(ctx context.Context, src Source, format Format, res *Result) (*models.Table, error) {
	if src.Cache == "" {
		data, err := p.Fetcher.Fetch(ctx, src.URL)
		if err != nil {
			return nil, err
		}
		res.advance(StateFetched)
		return Parse(format, data)
	}

	if src.ReuseCache && cached(src.Cache) {
		logger.Infof("Reusing cached file %s", src.Cache)
	} else {
		n, err := p.Fetcher.Download(ctx, src.URL, src.Cache)
		if err != nil {
			return nil, err
		}
		logger.Infof("Saved %d bytes to %s", n, src.Cache)
	}
	res.advance(StateFetched)
	return ParseFile(format, src.Cache)
}

func cached(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// RunAll ingests sources in order and stops at the first failure.
func (p *Pipeline) RunAll(ctx context.Context, sources []Source) ([]*Result, error) {
	results := make([]*Result, 0, len(sources))
	for _, src := range sources {
		res, err := p.Run(ctx, src)
		results = append(results, res)
		if err != nil {
			return results, fmt.Errorf("source %s: %w", res.Source, err)
		}
	}
	return results, nil
}
