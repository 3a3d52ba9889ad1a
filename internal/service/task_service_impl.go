package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/andihoo/chrono/internal/app"
	"github.com/andihoo/chrono/internal/clock"
	"github.com/andihoo/chrono/internal/domain"
	"github.com/andihoo/chrono/internal/repository"
)

type taskService struct {
	tasks    repository.TaskRepo
	users    repository.UserRepo
	clock    clock.Clock
	observer UseCaseObserver
}

func NewTaskService(tasks repository.TaskRepo, users repository.UserRepo, clk clock.Clock, observers ...UseCaseObserver) TaskService {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &taskService{
		tasks:    tasks,
		users:    users,
		clock:    clk,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *taskService) Create(ctx context.Context, sess *domain.UserSession, req app.CreateTaskRequest) (task *domain.Task, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() { observe(ctx, s.observer, "task-create", startedAt, fields, err) }()

	if err = requireAdmin(sess); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	desc := strings.TrimSpace(req.Description)
	if title == "" {
		return nil, app.NewValidationError(app.ValidationErrEmptyTitle, "a task needs a title")
	}
	if desc == "" {
		return nil, app.NewValidationError(app.ValidationErrEmptyDesc, "a task needs a description")
	}

	assignee := domain.NormalizeEmail(req.AssigneeEmail)
	if assignee == "" {
		assignee = sess.Email
	}
	if _, err = s.users.GetByEmail(ctx, assignee); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, app.NewValidationError(app.ValidationErrUnknownAssignee, "%s is not a known user", assignee)
		}
		return nil, fmt.Errorf("checking assignee: %w", err)
	}

	now := s.clock.Now()
	if req.DueAt != nil && req.DueAt.Before(now) {
		return nil, app.NewValidationError(app.ValidationErrDueInPast, "due date %s is in the past", req.DueAt.Format(time.RFC3339))
	}

	task = &domain.Task{
		ID:            domain.NewTaskID(),
		Title:         title,
		Description:   desc,
		AssigneeEmail: assignee,
		CreatedAt:     now,
		DueAt:         req.DueAt,
		Status:        domain.TaskTodo,
		CreatedBy:     sess.Email,
	}
	fields["task_id"] = task.ID
	fields["assignee"] = assignee
	if err = s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

func (s *taskService) ListVisible(ctx context.Context, email string) ([]*domain.Task, error) {
	email = domain.NormalizeEmail(email)
	all, err := s.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	var visible []*domain.Task
	for _, t := range all {
		if t.IsDeleted() {
			continue
		}
		if t.IsDone() && t.AssigneeEmail != email {
			continue
		}
		visible = append(visible, t)
	}
	slices.SortStableFunc(visible, func(a, b *domain.Task) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return visible, nil
}

func (s *taskService) Delete(ctx context.Context, sess *domain.UserSession, id string) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"task_id": id}
	defer func() { observe(ctx, s.observer, "task-delete", startedAt, fields, err) }()

	if err = requireAdmin(sess); err != nil {
		return err
	}
	var task *domain.Task
	task, err = s.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	task.MarkDeleted()
	return s.tasks.Update(ctx, task)
}

func (s *taskService) Reopen(ctx context.Context, sess *domain.UserSession, id string) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"task_id": id}
	defer func() { observe(ctx, s.observer, "task-reopen", startedAt, fields, err) }()

	if err = requireAdmin(sess); err != nil {
		return err
	}
	var task *domain.Task
	task, err = s.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rerr := task.Reopen(); rerr != nil {
		return app.NewValidationError(app.ValidationErrNotReopenable, "task %s is %s, only finished tasks can be reopened", id, task.Status)
	}
	return s.tasks.Update(ctx, task)
}

func (s *taskService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

func requireAdmin(sess *domain.UserSession) error {
	if sess == nil {
		return ErrNotLoggedIn
	}
	if !sess.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
