package etl

import (
	"fmt"
	"strings"

	"github.com/BartekS5/ingest/pkg/models"
	"github.com/BartekS5/ingest/pkg/utils"
)

// DefaultTimestampColumns are the pickup and dropoff columns of the NYC
// yellow and green trip files.
var DefaultTimestampColumns = []string{
	"tpep_pickup_datetime",
	"tpep_dropoff_datetime",
	"lpep_pickup_datetime",
	"lpep_dropoff_datetime",
}

// NormalizeName trims and lower-cases a column name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeColumnNames rewrites every column name in place.
func NormalizeColumnNames(t *models.Table) {
	for _, c := range t.Columns {
		c.Name = NormalizeName(c.Name)
	}
}

// CoerceTimestamps converts the named columns to timestamps. Names are
// matched after normalization; columns missing from the table are skipped.
func CoerceTimestamps(t *models.Table, names []string) error {
	for _, name := range names {
		col := t.Column(NormalizeName(name))
		if col == nil || col.Type == models.TypeTimestamp {
			continue
		}
		if col.Type == models.TypeFloat || col.Type == models.TypeBoolean {
			return &ParseError{Format: "timestamp", Column: col.Name, Err: fmt.Errorf("cannot convert %s column to timestamp", col.Type)}
		}

		converted := make([]any, len(col.Values))
		for i, v := range col.Values {
			ts, err := utils.ConvertDateTime(v)
			if err != nil {
				return &ParseError{Format: "timestamp", Column: col.Name, Row: i, Err: err}
			}
			converted[i] = ts
		}
		col.Values = converted
		col.Type = models.TypeTimestamp
	}
	return nil
}

// Normalize applies the name transform and then timestamp coercion. It
// never changes the row count.
func Normalize(t *models.Table, timestampColumns []string) error {
	NormalizeColumnNames(t)
	return CoerceTimestamps(t, timestampColumns)
}
