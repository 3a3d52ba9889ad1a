package service

import (
	"context"
	"errors"
	"time"

	"github.com/andihoo/chrono/internal/app"
	"github.com/andihoo/chrono/internal/domain"
)

var (
	// ErrNotLoggedIn is returned when an action needs a user session and
	// none was supplied.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrForbidden is returned when a non-admin attempts an admin action.
	ErrForbidden = errors.New("admin role required")
)

// TimerService is the per-user timer state machine. Every method mutates the
// supplied UserSession only when it succeeds, and first applies global pause
// expiry.
type TimerService interface {
	Start(ctx context.Context, sess *domain.UserSession, taskID string) error
	Pause(ctx context.Context, sess *domain.UserSession, taskID string) error
	Resume(ctx context.Context, sess *domain.UserSession, taskID string) error
	Complete(ctx context.Context, sess *domain.UserSession, taskID string) error
	// ToggleGlobalPause reports whether a global pause is active afterwards.
	ToggleGlobalPause(ctx context.Context, sess *domain.UserSession) (bool, error)
	StartGlobalPause(ctx context.Context, sess *domain.UserSession) error
	EndGlobalPause(ctx context.Context, sess *domain.UserSession) error
	// ExpireGlobalPause ends an overdue global pause and reports whether it
	// did so. The record is closed at start + limit rather than at now, so a
	// pause noticed late never counts more than the limit.
	ExpireGlobalPause(ctx context.Context, sess *domain.UserSession) (bool, error)
	// Reconcile rebuilds the session context from open records in the store.
	Reconcile(ctx context.Context, sess *domain.UserSession) error
	GlobalPauseLimit() time.Duration
}

type AuthService interface {
	Login(ctx context.Context, req app.LoginRequest) (*domain.UserSession, error)
	Logout(ctx context.Context, sess *domain.UserSession) error
}

type TaskService interface {
	Create(ctx context.Context, sess *domain.UserSession, req app.CreateTaskRequest) (*domain.Task, error)
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	// ListVisible returns the tasks shown to a user: every open task plus the
	// finished tasks assigned to them, newest first.
	ListVisible(ctx context.Context, email string) ([]*domain.Task, error)
	Delete(ctx context.Context, sess *domain.UserSession, id string) error
	Reopen(ctx context.Context, sess *domain.UserSession, id string) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
}

type DashboardService interface {
	Build(ctx context.Context, sess *domain.UserSession) (*app.DashboardView, error)
}

type ReportService interface {
	Build(ctx context.Context) (*app.ReportView, error)
}
