package app

import (
	"time"

	"github.com/andihoo/chrono/internal/domain"
)

// DashboardView is everything a front end needs to render one user's timer
// screen at a given instant.
type DashboardView struct {
	Now         time.Time        `json:"now"`
	User        UserView         `json:"user"`
	State       string           `json:"state"`
	ActiveTask  *ActiveTaskView  `json:"active_task,omitempty"`
	GlobalPause *GlobalPauseView `json:"global_pause,omitempty"`
	Tasks       []TaskView       `json:"tasks"`
	// Notice is set when the call that built the view expired a global pause.
	Notice string `json:"notice,omitempty"`
}

type UserView struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type ActiveTaskView struct {
	TaskID         string    `json:"task_id"`
	Title          string    `json:"title"`
	SessionStart   time.Time `json:"session_start"`
	SessionSeconds int64     `json:"session_seconds"`
}

type GlobalPauseView struct {
	StartedAt        time.Time `json:"started_at"`
	ElapsedSeconds   int64     `json:"elapsed_seconds"`
	RemainingSeconds int64     `json:"remaining_seconds"`
}

// TaskAction names a timer action the front end may offer for a task.
type TaskAction string

const (
	ActionStart    TaskAction = "start"
	ActionPause    TaskAction = "pause"
	ActionResume   TaskAction = "resume"
	ActionComplete TaskAction = "complete"
	ActionReopen   TaskAction = "reopen"
)

type TaskView struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	AssigneeEmail string       `json:"assignee_email"`
	Status        string       `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	DueAt         *time.Time   `json:"due_at,omitempty"`
	ClosedAt      *time.Time   `json:"closed_at,omitempty"`
	ClosedBy      string       `json:"closed_by,omitempty"`
	TotalSeconds  int64        `json:"total_seconds"`
	Active        bool         `json:"active"`
	Actions       []TaskAction `json:"actions"`
}

// NewTaskView maps a stored task with its recorded total. Live totals,
// the active flag and actions are filled in by the dashboard.
func NewTaskView(t *domain.Task) TaskView {
	return TaskView{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		AssigneeEmail: t.AssigneeEmail,
		Status:        string(t.Status),
		CreatedAt:     t.CreatedAt,
		DueAt:         t.DueAt,
		ClosedAt:      t.ClosedAt,
		ClosedBy:      t.ClosedBy,
		TotalSeconds:  t.TotalTimeSeconds,
	}
}

// CanDo reports whether action is offered for the task.
func (v TaskView) CanDo(action TaskAction) bool {
	for _, a := range v.Actions {
		if a == action {
			return true
		}
	}
	return false
}

type ReportView struct {
	GeneratedAt    time.Time           `json:"generated_at"`
	CompletedTasks []CompletedTaskView `json:"completed_tasks"`
	LoginTotals    []UserTotalView     `json:"login_totals"`
	PauseTotals    []PauseTotalView    `json:"pause_totals"`
}

type CompletedTaskView struct {
	TaskID        string     `json:"task_id"`
	Title         string     `json:"title"`
	AssigneeEmail string     `json:"assignee_email"`
	TotalSeconds  int64      `json:"total_seconds"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
	ClosedBy      string     `json:"closed_by,omitempty"`
}

type UserTotalView struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Seconds int64  `json:"seconds"`
}

type PauseTotalView struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Seconds int64  `json:"seconds"`
}
