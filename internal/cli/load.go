package cli

import (
	"github.com/BartekS5/ingest/internal/etl"
	"github.com/spf13/cobra"
)

const defaultTableName = "yellow_tripdata_2025_01"

type LoadOptions struct {
	URL              string
	TableName        string
	Format           string
	TimestampColumns []string
	Cache            string
	ReuseCache       bool
	Mode             string
}

// NewLoadCmd loads a single URL into one table.
func NewLoadCmd(root *RootOptions) *cobra.Command {
	opts := &LoadOptions{}

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Download one Parquet or CSV file and load it into a table",
		Example: `  ingest load --url https://d37ci6vzurychx.cloudfront.net/trip-data/yellow_tripdata_2025-01.parquet
  ingest load --url https://example.com/zones.csv --table_name zones --timestamp_columns=""`,
		RunE: func(c *cobra.Command, args []string) error {
			src, err := opts.source(c)
			if err != nil {
				return err
			}
			return runSources(c.Context(), root, []etl.Source{src})
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.URL, "url", "", "URL of the Parquet or CSV file")
	f.StringVar(&opts.TableName, "table_name", defaultTableName, "Destination table")
	f.StringVar(&opts.Format, "format", "", "File format: parquet or csv (detected from the URL when empty)")
	f.StringSliceVar(&opts.TimestampColumns, "timestamp_columns", etl.DefaultTimestampColumns, "Columns to convert to timestamps")
	f.StringVar(&opts.Cache, "cache", "", "Stream the download to this path before parsing")
	f.BoolVar(&opts.ReuseCache, "reuse_cache", false, "Skip the download when the cache file already exists")
	f.StringVar(&opts.Mode, "mode", "replace", "Write mode: replace or append")

	cmd.MarkFlagRequired("url")

	return cmd
}
