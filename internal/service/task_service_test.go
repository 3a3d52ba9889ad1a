package service

import (
	"context"
	"testing"
	"time"

	"github.com/andihoo/chrono/internal/app"
	"github.com/andihoo/chrono/internal/domain"
	"github.com/andihoo/chrono/internal/repository"
	"github.com/andihoo/chrono/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskService_CreateByAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	due := testutil.BaseTime.Add(72 * time.Hour)

	task, err := f.taskSvc.Create(ctx, f.session(t, adminEmail), app.CreateTaskRequest{
		Title:         "  Audit  ",
		Description:   "yearly audit",
		AssigneeEmail: "ALICE@example.com",
		DueAt:         &due,
	})
	require.NoError(t, err)
	assert.Equal(t, "Audit", task.Title)
	assert.Equal(t, aliceEmail, task.AssigneeEmail)
	assert.Equal(t, adminEmail, task.CreatedBy)
	assert.Equal(t, domain.TaskTodo, task.Status)

	stored := f.task(t, task.ID)
	assert.Equal(t, "yearly audit", stored.Description)
	require.NotNil(t, stored.DueAt)
	assert.True(t, due.Equal(*stored.DueAt))
}

func TestTaskService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.session(t, adminEmail)
	past := testutil.BaseTime.Add(-time.Hour)

	cases := []struct {
		name string
		req  app.CreateTaskRequest
		code app.ValidationErrorCode
	}{
		{"empty title", app.CreateTaskRequest{Title: " ", Description: "d"}, app.ValidationErrEmptyTitle},
		{"empty description", app.CreateTaskRequest{Title: "t"}, app.ValidationErrEmptyDesc},
		{"unknown assignee", app.CreateTaskRequest{Title: "t", Description: "d", AssigneeEmail: "ghost@example.com"}, app.ValidationErrUnknownAssignee},
		{"due in past", app.CreateTaskRequest{Title: "t", Description: "d", DueAt: &past}, app.ValidationErrDueInPast},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.taskSvc.Create(ctx, admin, tc.req)
			assert.ErrorIs(t, err, &app.ValidationError{Code: tc.code})
		})
	}

	tasks, err := f.tasks.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTaskService_AdminOnlyOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.session(t, aliceEmail)
	task := f.addTask(t, "A", testutil.WithStatus(domain.TaskDone))

	_, err := f.taskSvc.Create(ctx, alice, app.CreateTaskRequest{Title: "t", Description: "d"})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.taskSvc.Delete(ctx, alice, task.ID), ErrForbidden)
	assert.ErrorIs(t, f.taskSvc.Reopen(ctx, alice, task.ID), ErrForbidden)
	assert.ErrorIs(t, f.taskSvc.Delete(ctx, nil, task.ID), ErrNotLoggedIn)
}

func TestTaskService_DeleteAndReopen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.session(t, adminEmail)
	done := f.addTask(t, "done", testutil.WithStatus(domain.TaskDone))
	open := f.addTask(t, "open")

	require.NoError(t, f.taskSvc.Reopen(ctx, admin, done.ID))
	assert.Equal(t, domain.TaskInProgress, f.task(t, done.ID).Status)

	err := f.taskSvc.Reopen(ctx, admin, open.ID)
	assert.ErrorIs(t, err, &app.ValidationError{Code: app.ValidationErrNotReopenable})

	require.NoError(t, f.taskSvc.Delete(ctx, admin, open.ID))
	assert.Equal(t, domain.TaskDeleted, f.task(t, open.ID).Status)

	assert.ErrorIs(t, f.taskSvc.Delete(ctx, admin, "T-missing"), repository.ErrNotFound)
}

func TestTaskService_ListVisible(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	older := f.addTask(t, "older")
	newer := testutil.NewTestTask("newer")
	newer.CreatedAt = testutil.BaseTime.Add(time.Hour)
	require.NoError(t, f.tasks.Create(ctx, newer))
	mine := f.addTask(t, "mine done", testutil.WithStatus(domain.TaskDone), testutil.WithAssignee(aliceEmail))
	f.addTask(t, "bob done", testutil.WithStatus(domain.TaskDone), testutil.WithAssignee(bobEmail))
	f.addTask(t, "gone", testutil.WithStatus(domain.TaskDeleted))

	visible, err := f.taskSvc.ListVisible(ctx, aliceEmail)
	require.NoError(t, err)
	var ids []string
	for _, task := range visible {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []string{newer.ID, older.ID, mine.ID}, ids)
}
