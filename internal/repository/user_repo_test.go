package repository

import (
	"context"
	"testing"

	"github.com/andihoo/chrono/internal/domain"
	"github.com/andihoo/chrono/internal/rowstore"
	"github.com/andihoo/chrono/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepo_CreateGetUpdate(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			repo := NewRowUserRepo(store)
			ctx := context.Background()

			u := testutil.NewTestUser(" Alice@Example.com ", testutil.WithName("Alice"))
			require.NoError(t, repo.Create(ctx, u))

			fetched, err := repo.GetByEmail(ctx, "ALICE@example.com")
			require.NoError(t, err)
			assert.Equal(t, "alice@example.com", fetched.Email)
			assert.Equal(t, "Alice", fetched.Name)
			assert.Equal(t, domain.RoleUser, fetched.Role)

			fetched.Role = domain.RoleAdmin
			require.NoError(t, repo.Update(ctx, fetched))
			again, err := repo.GetByEmail(ctx, "alice@example.com")
			require.NoError(t, err)
			assert.True(t, again.IsAdmin())
		})
	}
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	repo := NewRowUserRepo(testutil.NewTestStore(t))
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, testutil.NewTestUser("dup@example.com")))
	err := repo.Create(ctx, testutil.NewTestUser("DUP@example.com"))
	assert.ErrorIs(t, err, rowstore.ErrDuplicateKey)
}

func TestUserRepo_NotFound(t *testing.T) {
	repo := NewRowUserRepo(testutil.NewTestStore(t))
	ctx := context.Background()
	_, err := repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, testutil.NewTestUser("nobody@example.com")), ErrNotFound)
}
