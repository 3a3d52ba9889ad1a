// Package rowstore is the tabular persistence contract behind the timer.
//
// Every backend (in-memory, SQLite, Google Sheets) stores four fixed tables
// of string cells and exposes the same three operations. Key uniqueness is a
// store invariant: appending an existing key or updating a key that matches
// several rows fails with ErrDuplicateKey.
package rowstore

import (
	"context"
	"errors"
	"fmt"
	"maps"
)

var (
	ErrRowNotFound   = errors.New("row not found")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrUnknownTable  = errors.New("unknown table")
	ErrUnknownColumn = errors.New("unknown column")
	ErrUnavailable   = errors.New("row store unavailable")
)

// Row is one record keyed by column name. Missing columns read as "".
type Row map[string]string

func (r Row) Clone() Row {
	return maps.Clone(r)
}

// Store is implemented by every backend.
type Store interface {
	// FetchAll returns the rows of a table in insertion order.
	FetchAll(ctx context.Context, table Table) ([]Row, error)
	// Append adds a row; the caller supplies the key.
	Append(ctx context.Context, table Table, row Row) error
	// UpdateByKey sets fields on the single row whose keyColumn equals keyValue.
	UpdateByKey(ctx context.Context, table Table, keyColumn, keyValue string, fields Row) error
}

// Provisioner creates tables and header layouts when absent. It must be
// idempotent.
type Provisioner interface {
	EnsureSchema(ctx context.Context) error
}

// Backend is a provisionable Store.
type Backend interface {
	Store
	Provisioner
}

// checkColumns rejects cells that do not belong to the table.
func checkColumns(schema TableSchema, row Row) error {
	for col := range row {
		if !schema.HasColumn(col) {
			return fmt.Errorf("%s.%s: %w", schema.Name, col, ErrUnknownColumn)
		}
	}
	return nil
}

// checkAppend validates a row for insertion.
func checkAppend(schema TableSchema, row Row) error {
	if err := checkColumns(schema, row); err != nil {
		return err
	}
	if row[schema.Key] == "" {
		return fmt.Errorf("%s: missing key column %s", schema.Name, schema.Key)
	}
	return nil
}

// checkUpdate validates the key column and fields of an update.
func checkUpdate(schema TableSchema, keyColumn string, fields Row) error {
	if !schema.HasColumn(keyColumn) {
		return fmt.Errorf("%s.%s: %w", schema.Name, keyColumn, ErrUnknownColumn)
	}
	return checkColumns(schema, fields)
}

// completeRow returns a copy of row carrying every column of the schema.
func completeRow(schema TableSchema, row Row) Row {
	out := make(Row, len(schema.Columns))
	for _, col := range schema.Columns {
		out[col] = row[col]
	}
	return out
}

// matchRows returns the indexes of rows whose column equals value.
func matchRows(rows []Row, column, value string) []int {
	var idx []int
	for i, r := range rows {
		if r[column] == value {
			idx = append(idx, i)
		}
	}
	return idx
}

// checkMatchCount applies the single-row rule of UpdateByKey.
func checkMatchCount(schema TableSchema, keyColumn, keyValue string, n int) error {
	switch {
	case n == 0:
		return fmt.Errorf("%s where %s=%q: %w", schema.Name, keyColumn, keyValue, ErrRowNotFound)
	case n > 1:
		return fmt.Errorf("%s where %s=%q matches %d rows: %w", schema.Name, keyColumn, keyValue, n, ErrDuplicateKey)
	}
	return nil
}

// keyChangeConflicts reports whether fields rename the table key of row i to
// a value another row already holds.
func keyChangeConflicts(schema TableSchema, rows []Row, i int, fields Row) bool {
	newKey, ok := fields[schema.Key]
	if !ok || newKey == rows[i][schema.Key] {
		return false
	}
	for j, r := range rows {
		if j != i && r[schema.Key] == newKey {
			return true
		}
	}
	return false
}
