package service

import (
	"context"
	"testing"

	"github.com/andihoo/chrono/internal/clock"
	"github.com/andihoo/chrono/internal/domain"
	"github.com/andihoo/chrono/internal/repository"
	"github.com/andihoo/chrono/internal/rowstore"
	"github.com/andihoo/chrono/internal/testutil"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail = "admin@example.com"
	aliceEmail = "alice@example.com"
	bobEmail   = "bob@example.com"
)

// fixture wires every service over one in-memory store and a manual clock.
type fixture struct {
	store     rowstore.Backend
	clock     *clock.Manual
	tasks     *repository.RowTaskRepo
	sessions  *repository.RowSessionRepo
	users     *repository.RowUserRepo
	logins    *repository.RowLoginRepo
	timer     TimerService
	auth      AuthService
	taskSvc   TaskService
	dashboard DashboardService
	report    ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, testutil.NewTestStore(t))
}

func newFixtureWithStore(t *testing.T, store rowstore.Backend) *fixture {
	t.Helper()
	f := &fixture{
		store:    store,
		clock:    clock.NewManual(testutil.BaseTime),
		tasks:    repository.NewRowTaskRepo(store),
		sessions: repository.NewRowSessionRepo(store),
		users:    repository.NewRowUserRepo(store),
		logins:   repository.NewRowLoginRepo(store),
	}
	f.timer = NewTimerService(f.tasks, f.sessions, f.clock, TimerOptions{})
	f.auth = NewAuthService(f.users, f.logins, f.timer, f.clock, []*domain.User{
		{Email: adminEmail, Name: "Admin", Role: domain.RoleAdmin},
	}, nil)
	f.taskSvc = NewTaskService(f.tasks, f.users, f.clock)
	f.dashboard = NewDashboardService(f.timer, f.taskSvc, f.sessions, f.clock)
	f.report = NewReportService(f.tasks, f.sessions, f.logins, f.users, f.clock)

	ctx := context.Background()
	for _, u := range []*domain.User{
		testutil.NewTestUser(adminEmail, testutil.WithRole(domain.RoleAdmin), testutil.WithName("Admin")),
		testutil.NewTestUser(aliceEmail, testutil.WithName("Alice")),
		testutil.NewTestUser(bobEmail, testutil.WithName("Bob")),
	} {
		require.NoError(t, f.users.Create(ctx, u))
	}
	return f
}

// session returns a logged-in context for a seeded user without writing a
// login row.
func (f *fixture) session(t *testing.T, email string) *domain.UserSession {
	t.Helper()
	u, err := f.users.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return domain.NewUserSession(u, "")
}

func (f *fixture) addTask(t *testing.T, title string, opts ...testutil.TaskOption) *domain.Task {
	t.Helper()
	task := testutil.NewTestTask(title, opts...)
	require.NoError(t, f.tasks.Create(context.Background(), task))
	return task
}

func (f *fixture) records(t *testing.T) []*domain.SessionRecord {
	t.Helper()
	all, err := f.sessions.ListAll(context.Background())
	require.NoError(t, err)
	return all
}

func (f *fixture) task(t *testing.T, id string) *domain.Task {
	t.Helper()
	task, err := f.tasks.GetByID(context.Background(), id)
	require.NoError(t, err)
	return task
}
