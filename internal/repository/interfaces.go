package repository

import (
	"context"
	"errors"

	"github.com/andihoo/chrono/internal/domain"
)

// ErrNotFound is returned when a lookup by key finds no row.
var ErrNotFound = errors.New("not found")

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
}

type SessionRepo interface {
	Create(ctx context.Context, s *domain.SessionRecord) error
	GetByID(ctx context.Context, id string) (*domain.SessionRecord, error)
	// Finalize writes the pause_at/end_at, duration and automatic cells.
	Finalize(ctx context.Context, s *domain.SessionRecord) error
	ListAll(ctx context.Context) ([]*domain.SessionRecord, error)
	ListByTask(ctx context.Context, taskID string) ([]*domain.SessionRecord, error)
	ListByUser(ctx context.Context, email string) ([]*domain.SessionRecord, error)
	// ListOpen returns unfinalized records of one kind; an empty email
	// matches every user.
	ListOpen(ctx context.Context, email string, kind domain.SessionKind) ([]*domain.SessionRecord, error)
}

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

type LoginRepo interface {
	Create(ctx context.Context, l *domain.Login) error
	Close(ctx context.Context, l *domain.Login) error
	GetByID(ctx context.Context, id string) (*domain.Login, error)
	ListAll(ctx context.Context) ([]*domain.Login, error)
	// LatestForUser returns the most recently appended login of the user.
	LatestForUser(ctx context.Context, email string) (*domain.Login, error)
}
