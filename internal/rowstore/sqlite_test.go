package rowstore_test

import (
	"context"
	"testing"

	"github.com/andihoo/chrono/internal/db"
	"github.com/andihoo/chrono/internal/rowstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSQLiteSchemaMatchesRowSchema guards against migrations drifting from
// the column lists every backend shares.
func TestSQLiteSchemaMatchesRowSchema(t *testing.T) {
	database, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	for _, table := range rowstore.Tables() {
		schema, err := rowstore.SchemaFor(table)
		require.NoError(t, err)

		rows, err := database.Query(`SELECT name, pk FROM pragma_table_info(?) ORDER BY cid`, string(table))
		require.NoError(t, err)
		var cols []string
		var pkCol string
		for rows.Next() {
			var name string
			var pk int
			require.NoError(t, rows.Scan(&name, &pk))
			cols = append(cols, name)
			if pk > 0 {
				pkCol = name
			}
		}
		require.NoError(t, rows.Err())
		rows.Close()

		assert.Equal(t, schema.Columns, cols, "table %s", table)
		assert.Equal(t, schema.Key, pkCol, "table %s", table)
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := t.TempDir() + "/chrono.db"
	ctx := context.Background()

	database, err := db.OpenDB(path)
	require.NoError(t, err)
	s := rowstore.NewSQLiteStore(database)
	require.NoError(t, s.Append(ctx, rowstore.TableTasks, rowstore.Row{"task_id": "T-1", "title": "kept"}))
	require.NoError(t, database.Close())

	database, err = db.OpenDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	rows, err := rowstore.NewSQLiteStore(database).FetchAll(ctx, rowstore.TableTasks)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "kept", rows[0]["title"])
}
