package testutil

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/andihoo/chrono/internal/rowstore"
)

// FailingStore wraps a Backend and injects errors. Writes are counted starting
// at 1; when the count reaches FailOnWrite the write fails with Err. Setting
// Down fails every call with rowstore.ErrUnavailable.
type FailingStore struct {
	rowstore.Backend
	FailOnWrite int32
	Err         error

	writes atomic.Int32
	mu     sync.Mutex
	down   bool
}

func NewFailingStore(next rowstore.Backend) *FailingStore {
	return &FailingStore{Backend: next, Err: rowstore.ErrUnavailable}
}

// SetDown toggles a full outage.
func (f *FailingStore) SetDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

// Writes reports how many writes have been attempted so far.
func (f *FailingStore) Writes() int32 { return f.writes.Load() }

func (f *FailingStore) isDown() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.down
}

func (f *FailingStore) FetchAll(ctx context.Context, table rowstore.Table) ([]rowstore.Row, error) {
	if f.isDown() {
		return nil, rowstore.ErrUnavailable
	}
	return f.Backend.FetchAll(ctx, table)
}

func (f *FailingStore) Append(ctx context.Context, table rowstore.Table, row rowstore.Row) error {
	if err := f.writeErr(); err != nil {
		return err
	}
	return f.Backend.Append(ctx, table, row)
}

func (f *FailingStore) UpdateByKey(ctx context.Context, table rowstore.Table, keyColumn, keyValue string, fields rowstore.Row) error {
	if err := f.writeErr(); err != nil {
		return err
	}
	return f.Backend.UpdateByKey(ctx, table, keyColumn, keyValue, fields)
}

func (f *FailingStore) writeErr() error {
	if f.isDown() {
		return rowstore.ErrUnavailable
	}
	if n := f.writes.Add(1); f.FailOnWrite > 0 && n == f.FailOnWrite {
		return f.Err
	}
	return nil
}
