// Package cli handles the command-line interface logic
// using the Cobra library.
package cli

import (
	"fmt"
	"path/filepath"

	"github.com/BartekS5/ingest/internal/config"
	"github.com/BartekS5/ingest/internal/etl"
	"github.com/spf13/cobra"
)

const (
	defaultGreenURL = "https://d37ci6vzurychx.cloudfront.net/trip-data/green_tripdata_2025-11.parquet"
	defaultZonesURL = "https://github.com/DataTalksClub/nyc-tlc-data/releases/download/misc/taxi_zone_lookup.csv"
)

type GreenZonesOptions struct {
	GreenURL   string
	ZonesURL   string
	GreenTable string
	ZonesTable string
	DataDir    string
	ReuseCache bool
}

// sources streams both files into DataDir and loads them in order.
func (o *GreenZonesOptions) sources() []etl.Source {
	return []etl.Source{
		{
			Name:             "green",
			URL:              o.GreenURL,
			Format:           etl.FormatParquet,
			Table:            o.GreenTable,
			TimestampColumns: []string{"lpep_pickup_datetime", "lpep_dropoff_datetime"},
			Cache:            filepath.Join(o.DataDir, "green_tripdata_2025-11.parquet"),
			ReuseCache:       o.ReuseCache,
		},
		{
			Name:             "zones",
			URL:              o.ZonesURL,
			Format:           etl.FormatCSV,
			Table:            o.ZonesTable,
			TimestampColumns: []string{},
			Cache:            filepath.Join(o.DataDir, "taxi_zone_lookup.csv"),
			ReuseCache:       o.ReuseCache,
		},
	}
}

func newGreenZonesCmd(root *RootOptions) *cobra.Command {
	opts := &GreenZonesOptions{}

	cmd := &cobra.Command{
		Use:   "green-zones",
		Short: "Load the green taxi trips for November 2025 and the taxi zone lookup",
		RunE: func(c *cobra.Command, args []string) error {
			return runSources(c.Context(), root, opts.sources())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.GreenURL, "green_url", defaultGreenURL, "URL of the green trips Parquet file")
	f.StringVar(&opts.ZonesURL, "zones_url", defaultZonesURL, "URL of the taxi zone lookup CSV file")
	f.StringVar(&opts.GreenTable, "green_table", "green_tripdata_2025_11", "Destination table for green trips")
	f.StringVar(&opts.ZonesTable, "zones_table", "taxi_zone_lookup", "Destination table for zones")
	f.StringVar(&opts.DataDir, "data_dir", "data", "Directory the downloads are streamed into")
	f.BoolVar(&opts.ReuseCache, "reuse_cache", false, "Skip downloads already present in data_dir")

	return cmd
}

func newRunCmd(root *RootOptions) *cobra.Command {
	var jobFile string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every source of a YAML job manifest",
		RunE: func(c *cobra.Command, args []string) error {
			job, err := config.LoadJob(jobFile)
			if err != nil {
				return err
			}
			if err := job.ApplyTo(root.cfg); err != nil {
				return err
			}
			return runSources(c.Context(), root, job.PipelineSources())
		},
	}

	cmd.Flags().StringVarP(&jobFile, "file", "f", "configs/nyc_taxi.yaml", "Path to the job manifest")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "ingest", Version)
		},
	}
}
