package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func TestParseTaskStatus(t *testing.T) {
	cases := []struct {
		in   string
		want TaskStatus
	}{
		{"todo", TaskTodo},
		{"in_progress", TaskInProgress},
		{"DONE", TaskDone},
		{" deleted ", TaskDeleted},
		{"À faire", TaskTodo},
		{"En cours", TaskInProgress},
		{"Terminer", TaskDone},
		{"DELETED", TaskDeleted},
		{"", TaskTodo},
		{"garbage", TaskTodo},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseTaskStatus(tc.in), "input=%q", tc.in)
	}
}

func TestParseSessionKind(t *testing.T) {
	k, ok := ParseSessionKind("mission")
	require.True(t, ok)
	assert.Equal(t, SessionMission, k)

	k, ok = ParseSessionKind("auto_stop")
	require.True(t, ok)
	assert.Equal(t, SessionGlobal, k)

	_, ok = ParseSessionKind("")
	assert.False(t, ok)
}

func TestMarkInProgress_FromTodo(t *testing.T) {
	task := &Task{ID: "t1", Status: TaskTodo}
	require.NoError(t, task.MarkInProgress())
	assert.Equal(t, TaskInProgress, task.Status)
}

func TestMarkInProgress_RejectsDoneAndDeleted(t *testing.T) {
	for _, st := range []TaskStatus{TaskDone, TaskDeleted} {
		task := &Task{ID: "t1", Status: st}
		err := task.MarkInProgress()
		require.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, st, task.Status, "status should not change")
	}
}

func TestClose_SetsClosingFields(t *testing.T) {
	task := &Task{ID: "t1", Status: TaskInProgress}
	require.NoError(t, task.Close("a@x.io", 350, testNow))

	assert.Equal(t, TaskDone, task.Status)
	assert.Equal(t, "a@x.io", task.ClosedBy)
	require.NotNil(t, task.ClosedAt)
	assert.Equal(t, testNow, *task.ClosedAt)
	assert.Equal(t, int64(350), task.TotalTimeSeconds)
}

func TestClose_DoneTaskIsRewritten(t *testing.T) {
	earlier := testNow.Add(-time.Hour)
	task := &Task{ID: "t1", Status: TaskDone, ClosedBy: "u@x.io", ClosedAt: &earlier}
	require.NoError(t, task.Close("admin@x.io", 10, testNow))
	assert.Equal(t, "admin@x.io", task.ClosedBy)
	assert.Equal(t, testNow, *task.ClosedAt)
}

func TestClose_DeletedRejected(t *testing.T) {
	task := &Task{ID: "t1", Status: TaskDeleted}
	err := task.Close("a@x.io", 1, testNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deleted")
	assert.Nil(t, task.ClosedAt)
}

func TestReopen(t *testing.T) {
	task := &Task{ID: "t1", Status: TaskDone, ClosedBy: "u@x.io", ClosedAt: &testNow, TotalTimeSeconds: 90}
	require.NoError(t, task.Reopen())
	assert.Equal(t, TaskInProgress, task.Status)
	assert.Empty(t, task.ClosedBy)
	assert.Nil(t, task.ClosedAt)
	assert.Equal(t, int64(90), task.TotalTimeSeconds)

	require.ErrorIs(t, task.Reopen(), ErrInvalidTransition)
}
