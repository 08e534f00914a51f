package models

import (
	"fmt"
	"strings"
)

// ColumnType is the inferred scalar type of a column.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeInteger
	TypeFloat
	TypeBoolean
	TypeTimestamp
)

func (t ColumnType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeBoolean:
		return "boolean"
	case TypeTimestamp:
		return "timestamp"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// WriteMode selects how the first write of a run treats the destination table.
type WriteMode string

const (
	ModeReplace WriteMode = "replace" // drop and recreate the table
	ModeAppend  WriteMode = "append"  // create if missing, keep existing rows
)

// ParseWriteMode accepts "replace", "append" or "" (replace).
func ParseWriteMode(s string) (WriteMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeReplace):
		return ModeReplace, nil
	case string(ModeAppend):
		return ModeAppend, nil
	default:
		return "", fmt.Errorf("unknown write mode %q (want replace or append)", s)
	}
}

// Column holds the values of one column. Values[i] is nil for a null cell,
// otherwise a string, int64, float64, bool or time.Time matching Type.
type Column struct {
	Name   string
	Type   ColumnType
	Values []any
}

// Table is an in-memory columnar dataset.
type Table struct {
	Columns []*Column
	NumRows int
}

// NewTable builds a table from columns that all have the same length.
func NewTable(cols ...*Column) (*Table, error) {
	t := &Table{Columns: cols}
	for i, c := range cols {
		if i == 0 {
			t.NumRows = len(c.Values)
			continue
		}
		if len(c.Values) != t.NumRows {
			return nil, fmt.Errorf("column %q has %d values, want %d", c.Name, len(c.Values), t.NumRows)
		}
	}
	return t, nil
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Schema returns name/type pairs without values.
func (t *Table) Schema() []ColumnDef {
	defs := make([]ColumnDef, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = ColumnDef{Name: c.Name, Type: c.Type}
	}
	return defs
}

// Rows materializes rows [lo, hi) in column order.
func (t *Table) Rows(lo, hi int) [][]any {
	if lo < 0 {
		lo = 0
	}
	if hi > t.NumRows {
		hi = t.NumRows
	}
	if lo >= hi {
		return nil
	}
	rows := make([][]any, hi-lo)
	for r := range rows {
		row := make([]any, len(t.Columns))
		for c, col := range t.Columns {
			row[c] = col.Values[lo+r]
		}
		rows[r] = row
	}
	return rows
}

// ColumnDef describes a destination column.
type ColumnDef struct {
	Name string
	Type ColumnType
}
