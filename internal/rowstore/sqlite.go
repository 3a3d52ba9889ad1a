package rowstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/andihoo/chrono/internal/db"
)

// SQLiteStore keeps the tables in a local SQLite file. Table and column
// names come from the fixed schema, never from callers, so they are safe to
// splice into statements.
type SQLiteStore struct {
	sqlDB *sql.DB
	db    db.DBTX
	uow   db.UnitOfWork
}

func NewSQLiteStore(database *sql.DB) *SQLiteStore {
	return &SQLiteStore{
		sqlDB: database,
		db:    database,
		uow:   db.NewSQLiteUnitOfWork(database),
	}
}

func (s *SQLiteStore) EnsureSchema(_ context.Context) error {
	if err := db.Migrate(s.sqlDB); err != nil {
		return fmt.Errorf("provisioning sqlite schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FetchAll(ctx context.Context, table Table) ([]Row, error) {
	schema, err := SchemaFor(table)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY rowid`, strings.Join(schema.Columns, ", "), schema.Name)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", table, err)
	}
	defer rows.Close()

	var out []Row
	cells := make([]string, len(schema.Columns))
	dest := make([]any, len(cells))
	for i := range cells {
		dest[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", table, err)
		}
		row := make(Row, len(cells))
		for i, col := range schema.Columns {
			row[col] = cells[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", table, err)
	}
	return out, nil
}

func (s *SQLiteStore) Append(ctx context.Context, table Table, row Row) error {
	schema, err := SchemaFor(table)
	if err != nil {
		return err
	}
	if err := checkAppend(schema, row); err != nil {
		return err
	}
	full := completeRow(schema, row)
	args := make([]any, len(schema.Columns))
	for i, col := range schema.Columns {
		args[i] = full[col]
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		schema.Name, strings.Join(schema.Columns, ", "), placeholders(len(args)))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s %s=%q: %w", table, schema.Key, row[schema.Key], ErrDuplicateKey)
		}
		return fmt.Errorf("inserting %s row: %w", table, err)
	}
	return nil
}

func (s *SQLiteStore) UpdateByKey(ctx context.Context, table Table, keyColumn, keyValue string, fields Row) error {
	schema, err := SchemaFor(table)
	if err != nil {
		return err
	}
	if err := checkUpdate(schema, keyColumn, fields); err != nil {
		return err
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var n int
		count := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ?`, schema.Name, keyColumn)
		if err := tx.QueryRowContext(ctx, count, keyValue).Scan(&n); err != nil {
			return fmt.Errorf("counting %s rows: %w", table, err)
		}
		if err := checkMatchCount(schema, keyColumn, keyValue, n); err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}

		sets := make([]string, 0, len(fields))
		args := make([]any, 0, len(fields)+1)
		for _, col := range schema.Columns {
			v, ok := fields[col]
			if !ok {
				continue
			}
			sets = append(sets, col+" = ?")
			args = append(args, v)
		}
		args = append(args, keyValue)
		update := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = ?`, schema.Name, strings.Join(sets, ", "), keyColumn)
		if _, err := tx.ExecContext(ctx, update, args...); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%s %s=%q: %w", table, schema.Key, fields[schema.Key], ErrDuplicateKey)
			}
			return fmt.Errorf("updating %s row: %w", table, err)
		}
		return nil
	})
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
