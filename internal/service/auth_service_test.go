package service

import (
	"context"
	"testing"
	"time"

	"github.com/andihoo/chrono/internal/app"
	"github.com/andihoo/chrono/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_LoginExistingUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.auth.Login(ctx, app.LoginRequest{Email: "  Alice@Example.com "})
	require.NoError(t, err)
	assert.Equal(t, aliceEmail, sess.Email)
	assert.Equal(t, "Alice", sess.Name)
	assert.Equal(t, domain.RoleUser, sess.Role)
	assert.NotEmpty(t, sess.LoginID)

	login, err := f.logins.GetByID(ctx, sess.LoginID)
	require.NoError(t, err)
	assert.True(t, login.IsOpen())
}

func TestAuth_LoginSyncsBootstrapAccount(t *testing.T) {
	f := newFixtureWithBootstrap(t, &domain.User{Email: "Boss@example.com", Name: "Boss", Role: domain.RoleAdmin})
	ctx := context.Background()

	sess, err := f.auth.Login(ctx, app.LoginRequest{Email: "boss@example.com"})
	require.NoError(t, err)
	assert.True(t, sess.IsAdmin())

	stored, err := f.users.GetByEmail(ctx, "boss@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Boss", stored.Name)
	assert.Equal(t, domain.RoleAdmin, stored.Role)
}

func TestAuth_LoginNewUserNeedsName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Login(ctx, app.LoginRequest{Email: "new@example.com"})
	assert.ErrorIs(t, err, &app.ValidationError{Code: app.ValidationErrNameRequired})
	_, err = f.users.GetByEmail(ctx, "new@example.com")
	assert.Error(t, err)

	sess, err := f.auth.Login(ctx, app.LoginRequest{Email: "new@example.com", Name: "Newcomer"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, sess.Role)
	assert.Equal(t, "Newcomer", sess.Name)
}

func TestAuth_LoginRejectsBadEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Login(ctx, app.LoginRequest{Email: "   "})
	assert.ErrorIs(t, err, &app.ValidationError{Code: app.ValidationErrEmptyEmail})

	_, err = f.auth.Login(ctx, app.LoginRequest{Email: "not-an-address"})
	assert.ErrorIs(t, err, &app.ValidationError{Code: app.ValidationErrInvalidEmail})
}

func TestAuth_LoginRestoresRunningTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.addTask(t, "A")

	first, err := f.auth.Login(ctx, app.LoginRequest{Email: aliceEmail})
	require.NoError(t, err)
	require.NoError(t, f.timer.Start(ctx, first, task.ID))

	second, err := f.auth.Login(ctx, app.LoginRequest{Email: aliceEmail})
	require.NoError(t, err)
	assert.Equal(t, task.ID, second.ActiveTaskID)
	assert.NotEqual(t, first.LoginID, second.LoginID)
}

func TestAuth_LogoutClosesLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.auth.Login(ctx, app.LoginRequest{Email: bobEmail})
	require.NoError(t, err)
	f.clock.Advance(45 * time.Minute)
	require.NoError(t, f.auth.Logout(ctx, sess))

	login, err := f.logins.GetByID(ctx, sess.LoginID)
	require.NoError(t, err)
	assert.False(t, login.IsOpen())
	assert.Equal(t, int64(2700), login.TotalLoggedSeconds)

	require.NoError(t, f.auth.Logout(ctx, sess), "a second logout is a no-op")
	assert.ErrorIs(t, f.auth.Logout(ctx, nil), ErrNotLoggedIn)
}

func TestAuth_LogoutWithoutLoginRowIsTolerated(t *testing.T) {
	f := newFixture(t)
	sess := f.session(t, aliceEmail)
	assert.NoError(t, f.auth.Logout(context.Background(), sess))
}

func newFixtureWithBootstrap(t *testing.T, bootstrap ...*domain.User) *fixture {
	t.Helper()
	f := newFixture(t)
	f.auth = NewAuthService(f.users, f.logins, f.timer, f.clock, bootstrap, nil)
	return f
}
