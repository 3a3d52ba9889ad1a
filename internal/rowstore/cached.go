package rowstore

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachedStore memoizes FetchAll per table in front of a slow backend.
// Every write drops the cached copy of the written table before returning,
// so a caller always reads its own writes.
type CachedStore struct {
	next  Backend
	cache *expirable.LRU[Table, []Row]

	mu  sync.Mutex
	gen map[Table]uint64
}

// NewCachedStore wraps next. A non-positive ttl keeps entries until the next
// write; a non-positive size holds every table.
func NewCachedStore(next Backend, size int, ttl time.Duration) *CachedStore {
	if size <= 0 {
		size = len(Tables())
	}
	return &CachedStore{
		next:  next,
		cache: expirable.NewLRU[Table, []Row](size, nil, ttl),
		gen:   make(map[Table]uint64),
	}
}

func (c *CachedStore) EnsureSchema(ctx context.Context) error {
	defer c.Invalidate(Tables()...)
	return c.next.EnsureSchema(ctx)
}

func (c *CachedStore) FetchAll(ctx context.Context, table Table) ([]Row, error) {
	if rows, ok := c.cache.Get(table); ok {
		return cloneRows(rows), nil
	}

	c.mu.Lock()
	gen := c.gen[table]
	c.mu.Unlock()

	rows, err := c.next.FetchAll(ctx, table)
	if err != nil {
		return nil, err
	}

	// A write that landed while we were reading makes this copy stale.
	c.mu.Lock()
	if c.gen[table] == gen {
		c.cache.Add(table, cloneRows(rows))
	}
	c.mu.Unlock()
	return rows, nil
}

func (c *CachedStore) Append(ctx context.Context, table Table, row Row) error {
	defer c.Invalidate(table)
	return c.next.Append(ctx, table, row)
}

func (c *CachedStore) UpdateByKey(ctx context.Context, table Table, keyColumn, keyValue string, fields Row) error {
	defer c.Invalidate(table)
	return c.next.UpdateByKey(ctx, table, keyColumn, keyValue, fields)
}

// Invalidate drops cached copies so the next read goes to the backend.
func (c *CachedStore) Invalidate(tables ...Table) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tables {
		c.gen[t]++
		c.cache.Remove(t)
	}
}

func cloneRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}
