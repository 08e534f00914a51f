package etl

import (
	"fmt"

	"github.com/BartekS5/ingest/pkg/models"
)

// ValidateColumns checks the names about to be written: non-empty, already
// normalized and unique.
func ValidateColumns(cols []models.ColumnDef) error {
	if len(cols) == 0 {
		return fmt.Errorf("table has no columns")
	}
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if c.Name == "" {
			return fmt.Errorf("empty column name")
		}
		if c.Name != NormalizeName(c.Name) {
			return fmt.Errorf("column %q is not normalized", c.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate column %q", c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}
