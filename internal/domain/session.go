package domain

import (
	"fmt"
	"time"
)

// SessionRecord is one span of mission or global-pause time. A record is
// finalized once PauseAt or EndAt is set; DurationSeconds is only meaningful
// after that.
type SessionRecord struct {
	ID              string
	TaskID          string
	UserEmail       string
	StartAt         time.Time
	PauseAt         *time.Time
	ResumeAt        *time.Time
	EndAt           *time.Time
	DurationSeconds int64
	Kind            SessionKind
	Automatic       bool
}

// NewMissionRecord opens a mission record. Resumed records carry ResumeAt
// equal to their start.
func NewMissionRecord(taskID, email string, now time.Time, resumed bool) *SessionRecord {
	r := &SessionRecord{
		ID:        NewSessionID(),
		TaskID:    taskID,
		UserEmail: email,
		StartAt:   now,
		Kind:      SessionMission,
	}
	if resumed {
		at := now
		r.ResumeAt = &at
	}
	return r
}

// NewGlobalRecord opens a global pause record.
func NewGlobalRecord(email string, now time.Time) *SessionRecord {
	return &SessionRecord{
		ID:        NewPauseID(),
		TaskID:    GlobalPauseTaskID,
		UserEmail: email,
		StartAt:   now,
		Kind:      SessionGlobal,
	}
}

func (s *SessionRecord) IsFinalized() bool {
	return s.PauseAt != nil || s.EndAt != nil
}

func (s *SessionRecord) IsMission() bool { return s.Kind == SessionMission }
func (s *SessionRecord) IsGlobal() bool  { return s.Kind == SessionGlobal }

// Pause finalizes the record through pause_at.
func (s *SessionRecord) Pause(at time.Time) error {
	if s.IsFinalized() {
		return fmt.Errorf("session %s already finalized: %w", s.ID, ErrInvalidTransition)
	}
	s.PauseAt = &at
	s.DurationSeconds = SecondsBetween(s.StartAt, at)
	return nil
}

// End finalizes the record through end_at.
func (s *SessionRecord) End(at time.Time) error {
	if s.IsFinalized() {
		return fmt.Errorf("session %s already finalized: %w", s.ID, ErrInvalidTransition)
	}
	s.EndAt = &at
	s.DurationSeconds = SecondsBetween(s.StartAt, at)
	return nil
}

// ElapsedAt is the stored duration for finalized records and the live span
// up to now for open ones.
func (s *SessionRecord) ElapsedAt(now time.Time) int64 {
	if s.IsFinalized() {
		return s.DurationSeconds
	}
	return SecondsBetween(s.StartAt, now)
}

// SecondsBetween returns whole seconds from start to end, never negative.
func SecondsBetween(start, end time.Time) int64 {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}
