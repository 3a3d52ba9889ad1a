package domain

import "time"

// UserSession is the ephemeral per-user timer context. It is created at
// login, passed to every timer action, and discarded at logout. The session
// records in the store remain the source of truth; a lost UserSession is
// rebuilt from them on the next login.
type UserSession struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    Role   `json:"role"`
	LoginID string `json:"login_id"`

	ActiveTaskID       string    `json:"active_task_id,omitempty"`
	ActiveSessionID    string    `json:"active_session_id,omitempty"`
	ActiveSessionStart time.Time `json:"active_session_start,omitzero"`

	GlobalPauseActive    bool      `json:"global_pause_active,omitempty"`
	GlobalPauseSessionID string    `json:"global_pause_session_id,omitempty"`
	GlobalPauseStart     time.Time `json:"global_pause_start,omitzero"`
}

// NewUserSession builds an idle context for a freshly logged-in user.
func NewUserSession(u *User, loginID string) *UserSession {
	return &UserSession{
		Email:   u.Email,
		Name:    u.Name,
		Role:    u.Role,
		LoginID: loginID,
	}
}

func (s *UserSession) IsAdmin() bool { return s.Role == RoleAdmin }

// State derives the timer state. A global pause wins over a stale active task.
func (s *UserSession) State() TimerState {
	switch {
	case s.GlobalPauseActive:
		return StateGloballyPaused
	case s.ActiveTaskID != "":
		return StateTaskActive
	default:
		return StateIdle
	}
}

func (s *UserSession) ActivateTask(taskID, sessionID string, start time.Time) {
	s.ActiveTaskID = taskID
	s.ActiveSessionID = sessionID
	s.ActiveSessionStart = start
}

func (s *UserSession) ClearTask() {
	s.ActiveTaskID = ""
	s.ActiveSessionID = ""
	s.ActiveSessionStart = time.Time{}
}

func (s *UserSession) EnterGlobalPause(sessionID string, start time.Time) {
	s.GlobalPauseActive = true
	s.GlobalPauseSessionID = sessionID
	s.GlobalPauseStart = start
}

func (s *UserSession) LeaveGlobalPause() {
	s.GlobalPauseActive = false
	s.GlobalPauseSessionID = ""
	s.GlobalPauseStart = time.Time{}
}
