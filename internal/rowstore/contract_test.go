package rowstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/andihoo/chrono/internal/db"
	"github.com/andihoo/chrono/internal/rowstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends lists every Store implementation the contract suite runs against.
func backends() map[string]func(t *testing.T) rowstore.Backend {
	return map[string]func(t *testing.T) rowstore.Backend{
		"memory": func(t *testing.T) rowstore.Backend {
			return rowstore.NewMemoryStore()
		},
		"sqlite": func(t *testing.T) rowstore.Backend {
			database, err := db.OpenDB(db.MemoryPath)
			require.NoError(t, err)
			t.Cleanup(func() { database.Close() })
			return rowstore.NewSQLiteStore(database)
		},
		"sheets": func(t *testing.T) rowstore.Backend {
			_, store := newFakeSheetsStore(t)
			return store
		},
		"cached": func(t *testing.T) rowstore.Backend {
			return rowstore.NewCachedStore(rowstore.NewMemoryStore(), 0, time.Minute)
		},
	}
}

func provisioned(t *testing.T, newStore func(t *testing.T) rowstore.Backend) rowstore.Backend {
	t.Helper()
	s := newStore(t)
	require.NoError(t, s.EnsureSchema(context.Background()))
	return s
}

func TestStoreContract_EnsureSchemaIdempotent(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			s := provisioned(t, newStore)
			require.NoError(t, s.EnsureSchema(context.Background()))

			for _, table := range rowstore.Tables() {
				rows, err := s.FetchAll(context.Background(), table)
				require.NoError(t, err)
				assert.Empty(t, rows, "table %s", table)
			}
		})
	}
}

func TestStoreContract_AppendAndFetchInOrder(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := provisioned(t, newStore)

			require.NoError(t, s.Append(ctx, rowstore.TableTasks, rowstore.Row{"task_id": "T-2", "title": "second"}))
			require.NoError(t, s.Append(ctx, rowstore.TableTasks, rowstore.Row{"task_id": "T-1", "title": "first"}))

			rows, err := s.FetchAll(ctx, rowstore.TableTasks)
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, "T-2", rows[0]["task_id"])
			assert.Equal(t, "T-1", rows[1]["task_id"])
			assert.Equal(t, "first", rows[1]["title"])

			v, ok := rows[0]["closed_at"]
			assert.True(t, ok, "missing columns read back as empty cells")
			assert.Equal(t, "", v)
		})
	}
}

func TestStoreContract_AppendDuplicateKey(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := provisioned(t, newStore)

			require.NoError(t, s.Append(ctx, rowstore.TableUsers, rowstore.Row{"user_email": "a@x.io", "name": "Ann"}))
			err := s.Append(ctx, rowstore.TableUsers, rowstore.Row{"user_email": "a@x.io", "name": "Other"})
			require.ErrorIs(t, err, rowstore.ErrDuplicateKey)

			rows, err := s.FetchAll(ctx, rowstore.TableUsers)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, "Ann", rows[0]["name"])
		})
	}
}

func TestStoreContract_RejectsBadInput(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := provisioned(t, newStore)

			_, err := s.FetchAll(ctx, rowstore.Table("projects"))
			require.ErrorIs(t, err, rowstore.ErrUnknownTable)

			err = s.Append(ctx, rowstore.TableLogins, rowstore.Row{"login_id": "L-1", "bogus": "x"})
			require.ErrorIs(t, err, rowstore.ErrUnknownColumn)

			err = s.Append(ctx, rowstore.TableLogins, rowstore.Row{"user_email": "a@x.io"})
			require.Error(t, err, "key column is required")

			err = s.UpdateByKey(ctx, rowstore.TableLogins, "bogus", "x", rowstore.Row{})
			require.ErrorIs(t, err, rowstore.ErrUnknownColumn)
		})
	}
}

func TestStoreContract_UpdateByKey(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := provisioned(t, newStore)

			require.NoError(t, s.Append(ctx, rowstore.TableSessions, rowstore.Row{"session_id": "S-1", "task_id": "T-1", "start_at": "a"}))
			require.NoError(t, s.Append(ctx, rowstore.TableSessions, rowstore.Row{"session_id": "S-2", "task_id": "T-1", "start_at": "b"}))

			require.NoError(t, s.UpdateByKey(ctx, rowstore.TableSessions, "session_id", "S-2",
				rowstore.Row{"pause_at": "p", "duration_seconds": "100"}))

			rows, err := s.FetchAll(ctx, rowstore.TableSessions)
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, "", rows[0]["pause_at"])
			assert.Equal(t, "p", rows[1]["pause_at"])
			assert.Equal(t, "100", rows[1]["duration_seconds"])
			assert.Equal(t, "b", rows[1]["start_at"], "untouched cells keep their value")

			err = s.UpdateByKey(ctx, rowstore.TableSessions, "session_id", "S-9", rowstore.Row{"pause_at": "p"})
			require.ErrorIs(t, err, rowstore.ErrRowNotFound)

			err = s.UpdateByKey(ctx, rowstore.TableSessions, "task_id", "T-1", rowstore.Row{"end_at": "e"})
			require.ErrorIs(t, err, rowstore.ErrDuplicateKey, "a match on several rows is refused")

			err = s.UpdateByKey(ctx, rowstore.TableSessions, "session_id", "S-1", rowstore.Row{"session_id": "S-2"})
			require.ErrorIs(t, err, rowstore.ErrDuplicateKey)
		})
	}
}

func TestStoreContract_FetchReturnsCopies(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := provisioned(t, newStore)
			require.NoError(t, s.Append(ctx, rowstore.TableUsers, rowstore.Row{"user_email": "a@x.io", "name": "Ann"}))

			rows, err := s.FetchAll(ctx, rowstore.TableUsers)
			require.NoError(t, err)
			rows[0]["name"] = "mutated"

			again, err := s.FetchAll(ctx, rowstore.TableUsers)
			require.NoError(t, err)
			assert.Equal(t, "Ann", again[0]["name"])
		})
	}
}

func TestSchemaFor(t *testing.T) {
	s, err := rowstore.SchemaFor(rowstore.TableSessions)
	require.NoError(t, err)
	assert.Equal(t, "session_id", s.Key)
	assert.True(t, s.HasColumn("automatic"))

	assert.Equal(t, "kind", rowstore.CanonicalColumn("pause_type"))
	assert.Equal(t, "title", rowstore.CanonicalColumn("titre"))
	assert.Equal(t, "status", rowstore.CanonicalColumn("status"))
}
