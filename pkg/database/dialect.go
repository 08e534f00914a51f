package database

import (
	"fmt"
	"strings"

	"github.com/BartekS5/ingest/pkg/models"
	"github.com/lib/pq"
)

// Dialect captures what differs between SQL engines when creating a table
// and bulk inserting into it.
type Dialect struct {
	Name string
	// DriverName is the database/sql driver registered by the driver package.
	DriverName string
	// MaxParams bounds bind parameters in a single statement.
	MaxParams int
	// UseCopy selects COPY FROM STDIN instead of multi-row INSERT.
	UseCopy bool

	types       map[models.ColumnType]string
	quote       func(string) string
	placeholder func(n int) string
}

// maxRowsPerInsert also bounds the row constructors in one VALUES list
// (SQL Server refuses more than 1000).
const maxRowsPerInsert = 1000

func doubleQuote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func questionMark(int) string { return "?" }

var dialects = map[string]*Dialect{
	"postgres": {
		Name:       "postgres",
		DriverName: "postgres",
		MaxParams:  65535,
		UseCopy:    true,
		types: map[models.ColumnType]string{
			models.TypeString:    "TEXT",
			models.TypeInteger:   "BIGINT",
			models.TypeFloat:     "DOUBLE PRECISION",
			models.TypeBoolean:   "BOOLEAN",
			models.TypeTimestamp: "TIMESTAMP",
		},
		quote:       pq.QuoteIdentifier,
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	},
	"mysql": {
		Name:       "mysql",
		DriverName: "mysql",
		MaxParams:  65535,
		types: map[models.ColumnType]string{
			models.TypeString:    "TEXT",
			models.TypeInteger:   "BIGINT",
			models.TypeFloat:     "DOUBLE",
			models.TypeBoolean:   "BOOLEAN",
			models.TypeTimestamp: "DATETIME(6)",
		},
		quote:       func(name string) string { return "`" + strings.ReplaceAll(name, "`", "``") + "`" },
		placeholder: questionMark,
	},
	"sqlserver": {
		Name:       "sqlserver",
		DriverName: "sqlserver",
		MaxParams:  2100,
		types: map[models.ColumnType]string{
			models.TypeString:    "NVARCHAR(MAX)",
			models.TypeInteger:   "BIGINT",
			models.TypeFloat:     "FLOAT",
			models.TypeBoolean:   "BIT",
			models.TypeTimestamp: "DATETIME2",
		},
		quote:       func(name string) string { return "[" + strings.ReplaceAll(name, "]", "]]") + "]" },
		placeholder: func(n int) string { return fmt.Sprintf("@p%d", n) },
	},
	"sqlite": {
		Name:       "sqlite",
		DriverName: "sqlite",
		MaxParams:  32766,
		types: map[models.ColumnType]string{
			models.TypeString:    "TEXT",
			models.TypeInteger:   "INTEGER",
			models.TypeFloat:     "REAL",
			models.TypeBoolean:   "BOOLEAN",
			models.TypeTimestamp: "TIMESTAMP",
		},
		quote:       doubleQuote,
		placeholder: questionMark,
	},
	"duckdb": {
		Name:       "duckdb",
		DriverName: "duckdb",
		MaxParams:  65535,
		types: map[models.ColumnType]string{
			models.TypeString:    "VARCHAR",
			models.TypeInteger:   "BIGINT",
			models.TypeFloat:     "DOUBLE",
			models.TypeBoolean:   "BOOLEAN",
			models.TypeTimestamp: "TIMESTAMP",
		},
		quote:       doubleQuote,
		placeholder: questionMark,
	},
}

// DialectFor returns the dialect of a SQL driver (aliases accepted).
func DialectFor(driver string) (*Dialect, error) {
	name, err := CanonicalDriver(driver)
	if err != nil {
		return nil, err
	}
	d, ok := dialects[name]
	if !ok {
		return nil, fmt.Errorf("driver %q is not a SQL database", driver)
	}
	return d, nil
}

// Quote quotes an identifier.
func (d *Dialect) Quote(name string) string {
	return d.quote(name)
}

// TypeName returns the column type used in CREATE TABLE.
func (d *Dialect) TypeName(t models.ColumnType) string {
	if name, ok := d.types[t]; ok {
		return name
	}
	return d.types[models.TypeString]
}

// DropTableSQL drops the table when present.
func (d *Dialect) DropTableSQL(table string) string {
	return "DROP TABLE IF EXISTS " + d.Quote(table)
}

// CreateTableSQL creates the table with nullable columns.
func (d *Dialect) CreateTableSQL(table string, cols []models.ColumnDef, ifNotExists bool) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = d.Quote(c.Name) + " " + d.TypeName(c.Type)
	}
	body := fmt.Sprintf("%s (%s)", d.Quote(table), strings.Join(defs, ", "))

	if !ifNotExists {
		return "CREATE TABLE " + body
	}
	if d.Name == "sqlserver" {
		lit := strings.ReplaceAll(table, "'", "''")
		return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s", lit, body)
	}
	return "CREATE TABLE IF NOT EXISTS " + body
}

// RowsPerInsert is how many rows of ncols columns fit in one INSERT. It
// fails when a single row needs more bind parameters than the engine allows.
func (d *Dialect) RowsPerInsert(ncols int) (int, error) {
	if ncols <= 0 {
		return maxRowsPerInsert, nil
	}
	// SQL Server counts its own internal parameter, keep one spare.
	n := (d.MaxParams - 1) / ncols
	if n < 1 {
		return 0, fmt.Errorf("%s accepts at most %d bind parameters per statement, a row of %d columns does not fit",
			d.Name, d.MaxParams-1, ncols)
	}
	if n > maxRowsPerInsert {
		n = maxRowsPerInsert
	}
	return n, nil
}

// InsertSQL builds a multi-row INSERT with nrows value tuples.
func (d *Dialect) InsertSQL(table string, cols []models.ColumnDef, nrows int) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = d.Quote(c.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", d.Quote(table), strings.Join(names, ", "))
	n := 1
	for r := 0; r < nrows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c := range cols {
			if c > 0 {
				b.WriteString(", ")
			}
			b.WriteString(d.placeholder(n))
			n++
		}
		b.WriteByte(')')
	}
	return b.String()
}
