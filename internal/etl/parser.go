package etl

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/BartekS5/ingest/pkg/models"
)

// Format is the encoding of a source file.
type Format string

const (
	FormatParquet Format = "parquet"
	FormatCSV     Format = "csv"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatParquet, "pq":
		return FormatParquet, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want parquet or csv)", s)
	}
}

// DetectFormat infers the format from the extension of the URL path.
func DetectFormat(rawURL string) (Format, error) {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".parquet", ".pq":
		return FormatParquet, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("cannot detect format of %q, pass --format", rawURL)
	}
}

// Parse decodes an in-memory payload.
func Parse(format Format, data []byte) (*models.Table, error) {
	switch format {
	case FormatParquet:
		return readParquet(bytes.NewReader(data), int64(len(data)))
	case FormatCSV:
		return readCSV(bytes.NewReader(data))
	default:
		return nil, &ParseError{Format: string(format), Err: fmt.Errorf("unsupported format")}
	}
}

// ParseFile decodes a local file.
func ParseFile(format Format, filePath string) (*models.Table, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, &ParseError{Format: string(format), Err: fmt.Errorf("open file: %w", err)}
	}
	defer f.Close()

	switch format {
	case FormatParquet:
		stat, err := f.Stat()
		if err != nil {
			return nil, &ParseError{Format: string(format), Err: fmt.Errorf("stat file: %w", err)}
		}
		return readParquet(f, stat.Size())
	case FormatCSV:
		return readCSV(f)
	default:
		return nil, &ParseError{Format: string(format), Err: fmt.Errorf("unsupported format")}
	}
}
