package cli

import (
	"context"
	"fmt"

	"github.com/BartekS5/ingest/internal/config"
	"github.com/BartekS5/ingest/internal/etl"
	"github.com/BartekS5/ingest/pkg/database"
	"github.com/BartekS5/ingest/pkg/logger"
	"github.com/BartekS5/ingest/pkg/models"
	"github.com/spf13/cobra"
)

func (o *LoadOptions) source(cmd *cobra.Command) (etl.Source, error) {
	src := etl.Source{
		URL:        o.URL,
		Table:      o.TableName,
		Cache:      o.Cache,
		ReuseCache: o.ReuseCache,
	}
	if o.Format != "" {
		format, err := etl.ParseFormat(o.Format)
		if err != nil {
			return src, err
		}
		src.Format = format
	}
	mode, err := models.ParseWriteMode(o.Mode)
	if err != nil {
		return src, err
	}
	src.Mode = mode
	if cmd.Flags().Changed("timestamp_columns") {
		src.TimestampColumns = o.TimestampColumns
	}
	return src, nil
}

// openSink connects to the configured destination.
func openSink(ctx context.Context, p database.Params) (etl.Sink, error) {
	if p.IsMongo() {
		client, err := database.ConnectMongo(ctx, p)
		if err != nil {
			return nil, err
		}
		return etl.NewMongoSink(client, p.Name), nil
	}

	db, dialect, err := database.ConnectSQL(ctx, p)
	if err != nil {
		return nil, err
	}
	return etl.NewSQLSink(db, dialect), nil
}

func newFetcher(cfg *config.Config) *etl.Fetcher {
	return etl.NewFetcher(etl.FetcherOptions{
		Timeout:            cfg.Timeout,
		InsecureSkipVerify: cfg.Insecure,
		UserAgent:          "ingest/" + Version,
	})
}

func runSources(ctx context.Context, root *RootOptions, sources []etl.Source) error {
	cfg := root.cfg
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}

	var sink etl.Sink
	if !root.DryRun {
		s, err := openSink(ctx, cfg.DB)
		if err != nil {
			return err
		}
		defer s.Close()
		sink = s
	}

	pipeline := etl.NewPipeline(newFetcher(cfg), sink, cfg.ChunkSize, root.DryRun)
	results, err := pipeline.RunAll(ctx, sources)
	if err != nil {
		return err
	}

	for _, res := range results {
		logger.Info("Loaded source", "source", res.Source, "table", res.Table, "rows", res.Rows, "chunks", res.Chunks)
	}
	logger.Info("Done.")
	return nil
}
