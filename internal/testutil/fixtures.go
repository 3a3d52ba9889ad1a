package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/andihoo/chrono/internal/domain"
)

var testEmailCounter atomic.Int64

// BaseTime is a fixed instant tests build timelines from.
var BaseTime = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

// User options
type UserOption func(*domain.User)

func WithRole(r domain.Role) UserOption {
	return func(u *domain.User) {
		u.Role = r
	}
}

func WithName(n string) UserOption {
	return func(u *domain.User) {
		u.Name = n
	}
}

// NewTestUser builds a user; an empty email gets a unique one.
func NewTestUser(email string, opts ...UserOption) *domain.User {
	if email == "" {
		email = fmt.Sprintf("user%02d@example.com", testEmailCounter.Add(1))
	}
	u := &domain.User{
		Email:     domain.NormalizeEmail(email),
		Name:      "Test User",
		Role:      domain.RoleUser,
		CreatedAt: BaseTime,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Task options
type TaskOption func(*domain.Task)

func WithAssignee(email string) TaskOption {
	return func(t *domain.Task) {
		t.AssigneeEmail = domain.NormalizeEmail(email)
	}
}

func WithStatus(s domain.TaskStatus) TaskOption {
	return func(t *domain.Task) {
		t.Status = s
	}
}

func WithDueAt(d time.Time) TaskOption {
	return func(t *domain.Task) {
		t.DueAt = &d
	}
}

func WithDescription(d string) TaskOption {
	return func(t *domain.Task) {
		t.Description = d
	}
}

func NewTestTask(title string, opts ...TaskOption) *domain.Task {
	t := &domain.Task{
		ID:        domain.NewTaskID(),
		Title:     title,
		Status:    domain.TaskTodo,
		CreatedAt: BaseTime,
		CreatedBy: "admin@example.com",
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Session options
type SessionOption func(*domain.SessionRecord)

// WithEnded finalizes the record through end_at after the given span.
func WithEnded(d time.Duration) SessionOption {
	return func(s *domain.SessionRecord) {
		_ = s.End(s.StartAt.Add(d))
	}
}

// WithPaused finalizes the record through pause_at after the given span.
func WithPaused(d time.Duration) SessionOption {
	return func(s *domain.SessionRecord) {
		_ = s.Pause(s.StartAt.Add(d))
	}
}

func WithResumed() SessionOption {
	return func(s *domain.SessionRecord) {
		at := s.StartAt
		s.ResumeAt = &at
	}
}

func NewTestMission(taskID, email string, start time.Time, opts ...SessionOption) *domain.SessionRecord {
	s := domain.NewMissionRecord(taskID, domain.NormalizeEmail(email), start, false)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func NewTestGlobal(email string, start time.Time, opts ...SessionOption) *domain.SessionRecord {
	s := domain.NewGlobalRecord(domain.NormalizeEmail(email), start)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewTestLogin builds a login; a positive span closes it.
func NewTestLogin(email string, at time.Time, span time.Duration) *domain.Login {
	l := &domain.Login{
		ID:        domain.NewLoginID(),
		UserEmail: domain.NormalizeEmail(email),
		LoginAt:   at,
	}
	if span > 0 {
		_ = l.Close(at.Add(span))
	}
	return l
}
