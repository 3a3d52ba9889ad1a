package domain

import "strings"

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
	TaskDeleted    TaskStatus = "deleted"
)

// legacyTaskStatuses maps the labels written by the spreadsheet-era
// deployment onto the canonical statuses.
var legacyTaskStatuses = map[string]TaskStatus{
	"à faire":  TaskTodo,
	"en cours": TaskInProgress,
	"terminer": TaskDone,
	"terminé":  TaskDone,
	"deleted":  TaskDeleted,
}

// ParseTaskStatus normalizes a stored status value. Unknown values fall back
// to todo so a hand-edited row never blocks the task list.
func ParseTaskStatus(s string) TaskStatus {
	v := strings.ToLower(strings.TrimSpace(s))
	switch TaskStatus(v) {
	case TaskTodo, TaskInProgress, TaskDone, TaskDeleted:
		return TaskStatus(v)
	}
	if st, ok := legacyTaskStatuses[v]; ok {
		return st
	}
	return TaskTodo
}

type SessionKind string

const (
	SessionMission SessionKind = "mission"
	SessionGlobal  SessionKind = "global"
)

// ParseSessionKind accepts the canonical kinds plus "auto_stop", which older
// rows used for automatically expired global pauses.
func ParseSessionKind(s string) (SessionKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mission":
		return SessionMission, true
	case "global", "auto_stop":
		return SessionGlobal, true
	}
	return "", false
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

// GlobalPauseTaskID is the task_id written on global pause records.
const GlobalPauseTaskID = "GLOBAL_PAUSE"

// TimerState is the per-user timer state derived from a UserSession.
type TimerState int

const (
	StateIdle TimerState = iota
	StateTaskActive
	StateGloballyPaused
)

func (s TimerState) String() string {
	switch s {
	case StateTaskActive:
		return "task_active"
	case StateGloballyPaused:
		return "globally_paused"
	default:
		return "idle"
	}
}
