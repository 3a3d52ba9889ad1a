package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTransition is returned when a state method is called on a value
// whose current status does not allow it.
var ErrInvalidTransition = errors.New("invalid state transition")

type Task struct {
	ID               string
	Title            string
	Description      string
	AssigneeEmail    string
	CreatedAt        time.Time
	DueAt            *time.Time
	Status           TaskStatus
	TotalTimeSeconds int64
	CreatedBy        string
	ClosedBy         string
	ClosedAt         *time.Time
}

func (t *Task) IsDone() bool    { return t.Status == TaskDone }
func (t *Task) IsDeleted() bool { return t.Status == TaskDeleted }

// CanTrack reports whether new mission time may be recorded against the task.
func (t *Task) CanTrack() error {
	switch t.Status {
	case TaskDone:
		return fmt.Errorf("task %s is done: %w", t.ID, ErrInvalidTransition)
	case TaskDeleted:
		return fmt.Errorf("task %s is deleted: %w", t.ID, ErrInvalidTransition)
	}
	return nil
}

// MarkInProgress moves a todo task to in_progress. In-progress tasks are left
// unchanged.
func (t *Task) MarkInProgress() error {
	if err := t.CanTrack(); err != nil {
		return err
	}
	t.Status = TaskInProgress
	return nil
}

// Close records the completion of the task. Closing an already closed task
// rewrites the closing fields; callers decide who may do that.
func (t *Task) Close(by string, totalSeconds int64, at time.Time) error {
	if t.IsDeleted() {
		return fmt.Errorf("cannot complete deleted task %s: %w", t.ID, ErrInvalidTransition)
	}
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	t.Status = TaskDone
	t.ClosedBy = by
	t.ClosedAt = &at
	t.TotalTimeSeconds = totalSeconds
	return nil
}

// Reopen moves a done task back to in_progress and clears its closing fields.
// The stored total is kept until the next completion recomputes it.
func (t *Task) Reopen() error {
	if t.Status != TaskDone {
		return fmt.Errorf("cannot reopen %s task %s: %w", t.Status, t.ID, ErrInvalidTransition)
	}
	t.Status = TaskInProgress
	t.ClosedBy = ""
	t.ClosedAt = nil
	return nil
}

func (t *Task) MarkDeleted() {
	t.Status = TaskDeleted
}
