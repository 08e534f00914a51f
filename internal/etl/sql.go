package etl

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/BartekS5/ingest/pkg/database"
	"github.com/BartekS5/ingest/pkg/logger"
	"github.com/BartekS5/ingest/pkg/models"
	"github.com/lib/pq"
)

// SQLSink writes into a relational database through database/sql.
type SQLSink struct {
	DB      *sql.DB
	Dialect *database.Dialect
}

func NewSQLSink(db *sql.DB, dialect *database.Dialect) *SQLSink {
	return &SQLSink{DB: db, Dialect: dialect}
}

func (s *SQLSink) Prepare(ctx context.Context, table string, cols []models.ColumnDef, mode models.WriteMode) error {
	if mode == models.ModeAppend {
		if _, err := s.DB.ExecContext(ctx, s.Dialect.CreateTableSQL(table, cols, true)); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
		return nil
	}

	if _, err := s.DB.ExecContext(ctx, s.Dialect.DropTableSQL(table)); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}
	if _, err := s.DB.ExecContext(ctx, s.Dialect.CreateTableSQL(table, cols, false)); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// Append writes one chunk inside its own transaction.
func (s *SQLSink) Append(ctx context.Context, table string, cols []models.ColumnDef, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	if s.Dialect.UseCopy {
		err = copyRows(ctx, tx, table, cols, rows)
	} else {
		err = s.insertRows(ctx, tx, table, cols, rows)
	}
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Errorf("Rollback of %s chunk failed: %v", table, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLSink) insertRows(ctx context.Context, tx *sql.Tx, table string, cols []models.ColumnDef, rows [][]any) error {
	per, err := s.Dialect.RowsPerInsert(len(cols))
	if err != nil {
		return err
	}

	var full *sql.Stmt
	defer func() {
		if full != nil {
			full.Close()
		}
	}()

	args := make([]any, 0, per*len(cols))
	for lo := 0; lo < len(rows); lo += per {
		hi := min(lo+per, len(rows))

		args = args[:0]
		for _, row := range rows[lo:hi] {
			args = append(args, row...)
		}

		if hi-lo < per {
			query := s.Dialect.InsertSQL(table, cols, hi-lo)
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert: %w", err)
			}
			continue
		}

		if full == nil {
			stmt, err := tx.PrepareContext(ctx, s.Dialect.InsertSQL(table, cols, per))
			if err != nil {
				return fmt.Errorf("prepare insert: %w", err)
			}
			full = stmt
		}
		if _, err := full.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert: %w", err)
		}
	}
	return nil
}

func copyRows(ctx context.Context, tx *sql.Tx, table string, cols []models.ColumnDef, rows [][]any) error {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(table, names...))
	if err != nil {
		return fmt.Errorf("prepare copy: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("copy row: %w", err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("flush copy: %w", err)
	}
	return nil
}

func (s *SQLSink) Close() error {
	return s.DB.Close()
}
