package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/BartekS5/ingest/internal/etl"
	"github.com/BartekS5/ingest/pkg/database"
	"github.com/BartekS5/ingest/pkg/models"
	"gopkg.in/yaml.v3"
)

// DatabaseSpec is the destination block of a job manifest. URL, when set,
// wins over the individual fields.
type DatabaseSpec struct {
	Driver   string `yaml:"driver"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       string `yaml:"db"`
	SSLMode  string `yaml:"sslmode"`
	URL      string `yaml:"url"`
}

// SourceSpec is one entry of the sources list.
type SourceSpec struct {
	Name             string   `yaml:"name"`
	URL              string   `yaml:"url"`
	Format           string   `yaml:"format"`
	Table            string   `yaml:"table"`
	TimestampColumns []string `yaml:"timestamp_columns"`
	Cache            string   `yaml:"cache"`
	ReuseCache       bool     `yaml:"reuse_cache"`
	ChunkSize        int      `yaml:"chunk_size"`
	Mode             string   `yaml:"mode"`
}

// Job is a manifest describing several sources loaded into one database.
type Job struct {
	Database  *DatabaseSpec `yaml:"database"`
	ChunkSize int           `yaml:"chunk_size"`
	Insecure  bool          `yaml:"insecure"`
	Sources   []SourceSpec  `yaml:"sources"`
}

// LoadJob reads and parses a manifest. ${VAR} references are expanded from
// the environment before decoding; any other $ is kept as written.
func LoadJob(filePath string) (*Job, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file '%s': %w", filePath, err)
	}

	job, err := ParseJob(expandEnv(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse job file '%s': %w", filePath, err)
	}
	return job, nil
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func expandEnv(raw []byte) []byte {
	return envRef.ReplaceAllFunc(raw, func(ref []byte) []byte {
		return []byte(os.Getenv(string(ref[2 : len(ref)-1])))
	})
}

// ParseJob decodes and validates manifest YAML. Unknown keys are errors.
func ParseJob(data []byte) (*Job, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var job Job
	if err := dec.Decode(&job); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return &job, nil
}

// Validate checks every source before anything is fetched.
func (j *Job) Validate() error {
	if len(j.Sources) == 0 {
		return errors.New("job has no sources")
	}
	if j.ChunkSize < 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", j.ChunkSize)
	}
	for i, s := range j.Sources {
		label := s.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		if s.URL == "" {
			return fmt.Errorf("source %s: url is required", label)
		}
		if s.Table == "" {
			return fmt.Errorf("source %s: table is required", label)
		}
		if s.Format != "" {
			if _, err := etl.ParseFormat(s.Format); err != nil {
				return fmt.Errorf("source %s: %w", label, err)
			}
		} else if _, err := etl.DetectFormat(s.URL); err != nil {
			return fmt.Errorf("source %s: %w", label, err)
		}
		if _, err := models.ParseWriteMode(s.Mode); err != nil {
			return fmt.Errorf("source %s: %w", label, err)
		}
		if s.ChunkSize < 0 {
			return fmt.Errorf("source %s: chunk_size must be positive, got %d", label, s.ChunkSize)
		}
	}
	return nil
}

// ApplyTo overlays the manifest's database and run settings on cfg.
func (j *Job) ApplyTo(cfg *Config) error {
	if j.ChunkSize > 0 {
		cfg.ChunkSize = j.ChunkSize
	}
	if j.Insecure {
		cfg.Insecure = true
	}

	if d := j.Database; d != nil {
		if d.URL != "" {
			p, err := database.ParseURL(d.URL)
			if err != nil {
				return err
			}
			cfg.DB = p
		} else {
			overlay(&cfg.DB.Driver, d.Driver)
			overlay(&cfg.DB.User, d.User)
			overlay(&cfg.DB.Password, d.Password)
			overlay(&cfg.DB.Host, d.Host)
			overlay(&cfg.DB.Name, d.DB)
			overlay(&cfg.DB.SSLMode, d.SSLMode)
			if d.Port != 0 {
				cfg.DB.Port = d.Port
			}
		}
	}
	return cfg.Validate()
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// PipelineSources converts the manifest entries for the pipeline.
func (j *Job) PipelineSources() []etl.Source {
	out := make([]etl.Source, 0, len(j.Sources))
	for _, s := range j.Sources {
		// Validate has already accepted format and mode.
		format, _ := etl.ParseFormat(s.Format)
		if s.Format == "" {
			format = ""
		}
		mode, _ := models.ParseWriteMode(s.Mode)

		out = append(out, etl.Source{
			Name:             s.Name,
			URL:              s.URL,
			Format:           format,
			Table:            s.Table,
			TimestampColumns: s.TimestampColumns,
			Cache:            s.Cache,
			ReuseCache:       s.ReuseCache,
			ChunkSize:        s.ChunkSize,
			Mode:             mode,
		})
	}
	return out
}
