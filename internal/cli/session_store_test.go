package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/andihoo/chrono/internal/domain"
	"github.com/andihoo/chrono/internal/service"
	"github.com/andihoo/chrono/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSessionStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileSessionStore(path)

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, service.ErrNotLoggedIn)

	sess := domain.NewUserSession(testutil.NewTestUser("a@example.com", testutil.WithName("A")), "L-1")
	sess.ActivateTask("T-1", "S-1", testutil.BaseTime)
	require.NoError(t, store.Save(ctx, sess))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", loaded.Email)
	assert.Equal(t, "L-1", loaded.LoginID)
	assert.Equal(t, "T-1", loaded.ActiveTaskID)
	assert.True(t, loaded.ActiveSessionStart.Equal(testutil.BaseTime))

	require.NoError(t, store.Clear(ctx))
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, service.ErrNotLoggedIn)
	require.NoError(t, store.Clear(ctx))
}

func TestFileSessionStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileSessionStore(path).Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrNotLoggedIn)
	assert.Contains(t, err.Error(), "decode session")
}
