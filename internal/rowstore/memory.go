package rowstore

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps every table in process memory. It backs tests and the
// demo mode; contents vanish with the process.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[Table][]Row
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[Table][]Row)}
}

func (m *MemoryStore) EnsureSchema(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range Tables() {
		if _, ok := m.tables[t]; !ok {
			m.tables[t] = nil
		}
	}
	return nil
}

func (m *MemoryStore) FetchAll(_ context.Context, table Table) ([]Row, error) {
	if _, err := SchemaFor(table); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := m.tables[table]
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Clone())
	}
	return out, nil
}

func (m *MemoryStore) Append(_ context.Context, table Table, row Row) error {
	schema, err := SchemaFor(table)
	if err != nil {
		return err
	}
	if err := checkAppend(schema, row); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(matchRows(m.tables[table], schema.Key, row[schema.Key])) > 0 {
		return fmt.Errorf("%s %s=%q: %w", table, schema.Key, row[schema.Key], ErrDuplicateKey)
	}
	m.tables[table] = append(m.tables[table], completeRow(schema, row))
	return nil
}

func (m *MemoryStore) UpdateByKey(_ context.Context, table Table, keyColumn, keyValue string, fields Row) error {
	schema, err := SchemaFor(table)
	if err != nil {
		return err
	}
	if err := checkUpdate(schema, keyColumn, fields); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.tables[table]
	idx := matchRows(rows, keyColumn, keyValue)
	if err := checkMatchCount(schema, keyColumn, keyValue, len(idx)); err != nil {
		return err
	}
	i := idx[0]
	if keyChangeConflicts(schema, rows, i, fields) {
		return fmt.Errorf("%s %s=%q: %w", table, schema.Key, fields[schema.Key], ErrDuplicateKey)
	}
	for k, v := range fields {
		rows[i][k] = v
	}
	return nil
}
