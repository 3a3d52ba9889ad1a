package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/andihoo/chrono/internal/domain"
	"github.com/andihoo/chrono/internal/rowstore"
)

// RowTaskRepo implements TaskRepo over the tasks table.
type RowTaskRepo struct {
	store rowstore.Store
}

func NewRowTaskRepo(store rowstore.Store) *RowTaskRepo {
	return &RowTaskRepo{store: store}
}

func (r *RowTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	row := taskToRow(t)
	row["task_id"] = t.ID
	if err := r.store.Append(ctx, rowstore.TableTasks, row); err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (r *RowTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	tasks, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
}

func (r *RowTaskRepo) List(ctx context.Context) ([]*domain.Task, error) {
	rows, err := r.store.FetchAll(ctx, rowstore.TableTasks)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	tasks := make([]*domain.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, rowToTask(row))
	}
	return tasks, nil
}

func (r *RowTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	err := r.store.UpdateByKey(ctx, rowstore.TableTasks, "task_id", t.ID, taskToRow(t))
	if errors.Is(err, rowstore.ErrRowNotFound) {
		return fmt.Errorf("task %s: %w", t.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	return nil
}

// taskToRow renders every non-key column.
func taskToRow(t *domain.Task) rowstore.Row {
	return rowstore.Row{
		"title":              t.Title,
		"description":        t.Description,
		"assignee_email":     t.AssigneeEmail,
		"created_at":         formatTime(t.CreatedAt),
		"due_at":             formatNullableTime(t.DueAt),
		"status":             string(t.Status),
		"total_time_seconds": formatSeconds(t.TotalTimeSeconds),
		"created_by":         t.CreatedBy,
		"closed_by":          t.ClosedBy,
		"closed_at":          formatNullableTime(t.ClosedAt),
	}
}

func rowToTask(row rowstore.Row) *domain.Task {
	return &domain.Task{
		ID:               row["task_id"],
		Title:            row["title"],
		Description:      row["description"],
		AssigneeEmail:    domain.NormalizeEmail(row["assignee_email"]),
		CreatedAt:        parseLenientTime(row["created_at"]),
		DueAt:            parseNullableTime(row["due_at"]),
		Status:           domain.ParseTaskStatus(row["status"]),
		TotalTimeSeconds: parseSeconds(row["total_time_seconds"]),
		CreatedBy:        row["created_by"],
		ClosedBy:         row["closed_by"],
		ClosedAt:         parseNullableTime(row["closed_at"]),
	}
}
