package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/andihoo/chrono/internal/app"
	"github.com/andihoo/chrono/internal/clock"
	"github.com/andihoo/chrono/internal/domain"
	"github.com/andihoo/chrono/internal/durations"
	"github.com/andihoo/chrono/internal/repository"
)

// DefaultGlobalPauseLimit is how long a global pause may run before it is
// ended automatically.
const DefaultGlobalPauseLimit = time.Hour

type TimerOptions struct {
	GlobalPauseLimit time.Duration
	Logger           *slog.Logger
}

type timerService struct {
	tasks    repository.TaskRepo
	sessions repository.SessionRepo
	clock    clock.Clock
	limit    time.Duration
	logger   *slog.Logger
	observer UseCaseObserver

	// mu serializes the open-record check with the append that follows it.
	mu sync.Mutex
}

func NewTimerService(
	tasks repository.TaskRepo,
	sessions repository.SessionRepo,
	clk clock.Clock,
	opts TimerOptions,
	observers ...UseCaseObserver,
) TimerService {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	if opts.GlobalPauseLimit <= 0 {
		opts.GlobalPauseLimit = DefaultGlobalPauseLimit
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &timerService{
		tasks:    tasks,
		sessions: sessions,
		clock:    clk,
		limit:    opts.GlobalPauseLimit,
		logger:   opts.Logger,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *timerService) GlobalPauseLimit() time.Duration { return s.limit }

func (s *timerService) Start(ctx context.Context, sess *domain.UserSession, taskID string) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"task_id": taskID}
	defer func() { observe(ctx, s.observer, "timer-start", startedAt, fields, err) }()

	return s.openMission(ctx, sess, taskID, false)
}

func (s *timerService) Resume(ctx context.Context, sess *domain.UserSession, taskID string) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"task_id": taskID}
	defer func() { observe(ctx, s.observer, "timer-resume", startedAt, fields, err) }()

	return s.openMission(ctx, sess, taskID, true)
}

// openMission appends a mission record for the task. Start and Resume share
// preconditions; a resumed record also carries resume_at.
func (s *timerService) openMission(ctx context.Context, sess *domain.UserSession, taskID string, resumed bool) error {
	if sess == nil {
		return ErrNotLoggedIn
	}
	if _, err := s.expireIfDue(ctx, sess); err != nil {
		return err
	}
	if sess.State() == domain.StateGloballyPaused {
		return app.NewTimerError(app.TimerErrGloballyPaused, "end the global pause before tracking a task")
	}
	if sess.ActiveTaskID != "" {
		return app.NewTimerError(app.TimerErrTaskAlreadyActive, "pause task %s first", sess.ActiveTaskID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.trackableTask(ctx, taskID)
	if err != nil {
		return err
	}

	open, err := s.sessions.ListOpen(ctx, sess.Email, domain.SessionMission)
	if err != nil {
		return fmt.Errorf("checking open missions: %w", err)
	}
	if len(open) > 0 {
		return app.NewTimerError(app.TimerErrTaskAlreadyActive, "task %s is already running for %s", open[0].TaskID, sess.Email)
	}

	rec := domain.NewMissionRecord(task.ID, sess.Email, s.clock.Now(), resumed)
	if err := s.sessions.Create(ctx, rec); err != nil {
		return fmt.Errorf("opening mission session: %w", err)
	}
	// The record is stored, so the session follows it even if the status
	// write below fails; Reconcile would adopt the record anyway.
	sess.ActivateTask(task.ID, rec.ID, rec.StartAt)

	if task.Status == domain.TaskTodo {
		if err := task.MarkInProgress(); err != nil {
			return err
		}
		if err := s.tasks.Update(ctx, task); err != nil {
			return fmt.Errorf("marking task in progress: %w", err)
		}
	}
	return nil
}

func (s *timerService) Pause(ctx context.Context, sess *domain.UserSession, taskID string) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"task_id": taskID}
	defer func() { observe(ctx, s.observer, "timer-pause", startedAt, fields, err) }()

	if sess == nil {
		return ErrNotLoggedIn
	}
	if _, err = s.expireIfDue(ctx, sess); err != nil {
		return err
	}
	if sess.ActiveTaskID == "" || sess.ActiveTaskID != taskID {
		return app.NewTimerError(app.TimerErrNotActiveTask, "task %s is not running", taskID)
	}

	var seconds int64
	seconds, err = s.finalizeMission(ctx, sess, s.clock.Now(), false)
	if err != nil {
		return err
	}
	fields["duration_seconds"] = seconds
	sess.ClearTask()
	return nil
}

func (s *timerService) Complete(ctx context.Context, sess *domain.UserSession, taskID string) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"task_id": taskID}
	defer func() { observe(ctx, s.observer, "timer-complete", startedAt, fields, err) }()

	if sess == nil {
		return ErrNotLoggedIn
	}
	if _, err = s.expireIfDue(ctx, sess); err != nil {
		return err
	}

	var task *domain.Task
	task, err = s.lookupTask(ctx, taskID)
	if err != nil {
		return err
	}
	switch {
	case task.IsDeleted():
		return app.NewTimerError(app.TimerErrTaskDeleted, "task %s was deleted", taskID)
	case task.IsDone() && !sess.IsAdmin():
		return app.NewTimerError(app.TimerErrTaskAlreadyDone, "only an admin can modify finished task %s", taskID)
	}

	now := s.clock.Now()
	if sess.ActiveTaskID == taskID {
		if _, err = s.finalizeMission(ctx, sess, now, true); err != nil {
			return err
		}
		sess.ClearTask()
	}

	var records []*domain.SessionRecord
	records, err = s.sessions.ListByTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("loading task sessions: %w", err)
	}
	total := durations.TotalMissionTime(records, taskID)
	fields["total_time_seconds"] = total

	if err = task.Close(sess.Email, total, now); err != nil {
		return err
	}
	if err = s.tasks.Update(ctx, task); err != nil {
		return fmt.Errorf("closing task: %w", err)
	}
	return nil
}

func (s *timerService) ToggleGlobalPause(ctx context.Context, sess *domain.UserSession) (active bool, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		fields["active"] = active
		observe(ctx, s.observer, "timer-toggle-global-pause", startedAt, fields, err)
	}()

	if sess == nil {
		return false, ErrNotLoggedIn
	}
	var expired bool
	expired, err = s.expireIfDue(ctx, sess)
	if err != nil {
		return sess.GlobalPauseActive, err
	}
	if expired {
		// The pause the user meant to end is already over.
		fields["expired"] = true
		return false, nil
	}
	if sess.GlobalPauseActive {
		err = s.endGlobal(ctx, sess, s.clock.Now(), false)
		return sess.GlobalPauseActive, err
	}
	err = s.startGlobal(ctx, sess)
	return sess.GlobalPauseActive, err
}

func (s *timerService) StartGlobalPause(ctx context.Context, sess *domain.UserSession) (err error) {
	startedAt := time.Now()
	defer func() { observe(ctx, s.observer, "timer-start-global-pause", startedAt, nil, err) }()

	if sess == nil {
		return ErrNotLoggedIn
	}
	if _, err = s.expireIfDue(ctx, sess); err != nil {
		return err
	}
	if sess.GlobalPauseActive {
		return app.NewTimerError(app.TimerErrGloballyPaused, "a global pause is already active")
	}
	return s.startGlobal(ctx, sess)
}

func (s *timerService) EndGlobalPause(ctx context.Context, sess *domain.UserSession) (err error) {
	startedAt := time.Now()
	defer func() { observe(ctx, s.observer, "timer-end-global-pause", startedAt, nil, err) }()

	if sess == nil {
		return ErrNotLoggedIn
	}
	if _, err = s.expireIfDue(ctx, sess); err != nil {
		return err
	}
	if !sess.GlobalPauseActive {
		return app.NewTimerError(app.TimerErrNotGloballyPaused, "no global pause is active")
	}
	return s.endGlobal(ctx, sess, s.clock.Now(), false)
}

func (s *timerService) ExpireGlobalPause(ctx context.Context, sess *domain.UserSession) (bool, error) {
	if sess == nil {
		return false, ErrNotLoggedIn
	}
	return s.expireIfDue(ctx, sess)
}

func (s *timerService) Reconcile(ctx context.Context, sess *domain.UserSession) (err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() { observe(ctx, s.observer, "timer-reconcile", startedAt, fields, err) }()

	if sess == nil {
		return ErrNotLoggedIn
	}

	var missions, globals []*domain.SessionRecord
	missions, err = s.sessions.ListOpen(ctx, sess.Email, domain.SessionMission)
	if err != nil {
		return fmt.Errorf("loading open missions: %w", err)
	}
	globals, err = s.sessions.ListOpen(ctx, sess.Email, domain.SessionGlobal)
	if err != nil {
		return fmt.Errorf("loading open global pauses: %w", err)
	}

	if rec := latest(missions); rec != nil {
		sess.ActivateTask(rec.TaskID, rec.ID, rec.StartAt)
		fields["active_task_id"] = rec.TaskID
	}
	if rec := latest(globals); rec != nil {
		sess.EnterGlobalPause(rec.ID, rec.StartAt)
		fields["global_pause"] = true
		// Activation pauses the task before the global record is written, so
		// both being open means a crash in between.
		if sess.ActiveTaskID != "" {
			if _, err = s.finalizeMission(ctx, sess, rec.StartAt, false); err != nil {
				return err
			}
			sess.ClearTask()
		}
	}

	var expired bool
	expired, err = s.expireIfDue(ctx, sess)
	fields["expired"] = expired
	return err
}

func (s *timerService) startGlobal(ctx context.Context, sess *domain.UserSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	open, err := s.sessions.ListOpen(ctx, "", domain.SessionGlobal)
	if err != nil {
		return fmt.Errorf("checking open global pauses: %w", err)
	}
	for _, rec := range open {
		if rec.UserEmail != sess.Email {
			return app.NewTimerError(app.TimerErrGlobalPauseHeld, "a global pause is already held by %s", rec.UserEmail)
		}
	}
	if rec := latest(open); rec != nil {
		// Our own pause left open by another client: adopt it instead of
		// writing a second one.
		sess.EnterGlobalPause(rec.ID, rec.StartAt)
		_, err := s.expireIfDue(ctx, sess)
		return err
	}

	now := s.clock.Now()
	if sess.ActiveTaskID != "" {
		if _, err := s.finalizeMission(ctx, sess, now, false); err != nil {
			return err
		}
		sess.ClearTask()
	}

	rec := domain.NewGlobalRecord(sess.Email, now)
	if err := s.sessions.Create(ctx, rec); err != nil {
		return fmt.Errorf("opening global pause: %w", err)
	}
	sess.EnterGlobalPause(rec.ID, rec.StartAt)
	return nil
}

func (s *timerService) endGlobal(ctx context.Context, sess *domain.UserSession, at time.Time, automatic bool) error {
	rec := &domain.SessionRecord{
		ID:        sess.GlobalPauseSessionID,
		TaskID:    domain.GlobalPauseTaskID,
		UserEmail: sess.Email,
		StartAt:   sess.GlobalPauseStart,
		Kind:      domain.SessionGlobal,
		Automatic: automatic,
	}
	if err := rec.End(at); err != nil {
		return err
	}
	if err := s.finalize(ctx, rec); err != nil {
		return fmt.Errorf("ending global pause: %w", err)
	}
	sess.LeaveGlobalPause()
	return nil
}

// expireIfDue ends a global pause that has outlived the limit. The record is
// closed at start + limit, not at now.
func (s *timerService) expireIfDue(ctx context.Context, sess *domain.UserSession) (bool, error) {
	if !sess.GlobalPauseActive || sess.GlobalPauseStart.IsZero() {
		return false, nil
	}
	if s.clock.Now().Sub(sess.GlobalPauseStart) <= s.limit {
		return false, nil
	}
	if err := s.endGlobal(ctx, sess, sess.GlobalPauseStart.Add(s.limit), true); err != nil {
		return false, err
	}
	s.logger.InfoContext(ctx, "global pause expired", "user", sess.Email, "limit", s.limit.String())
	return true, nil
}

// finalizeMission closes the session's active mission record through
// pause_at or end_at and returns its duration.
func (s *timerService) finalizeMission(ctx context.Context, sess *domain.UserSession, at time.Time, end bool) (int64, error) {
	rec := &domain.SessionRecord{
		ID:        sess.ActiveSessionID,
		TaskID:    sess.ActiveTaskID,
		UserEmail: sess.Email,
		StartAt:   sess.ActiveSessionStart,
		Kind:      domain.SessionMission,
	}
	var err error
	if end {
		err = rec.End(at)
	} else {
		err = rec.Pause(at)
	}
	if err != nil {
		return 0, err
	}
	if err := s.finalize(ctx, rec); err != nil {
		return 0, fmt.Errorf("finalizing mission session: %w", err)
	}
	return rec.DurationSeconds, nil
}

// finalize persists a closed record. A missing row is logged and otherwise
// ignored so the in-memory state can still move on.
func (s *timerService) finalize(ctx context.Context, rec *domain.SessionRecord) error {
	err := s.sessions.Finalize(ctx, rec)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.WarnContext(ctx, "session row missing on finalize", "session_id", rec.ID, "kind", string(rec.Kind))
		return nil
	}
	return err
}

func (s *timerService) lookupTask(ctx context.Context, taskID string) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, app.NewTimerError(app.TimerErrTaskNotFound, "task %s does not exist", taskID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading task: %w", err)
	}
	return task, nil
}

func (s *timerService) trackableTask(ctx context.Context, taskID string) (*domain.Task, error) {
	task, err := s.lookupTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	switch {
	case task.IsDeleted():
		return nil, app.NewTimerError(app.TimerErrTaskDeleted, "task %s was deleted", taskID)
	case task.IsDone():
		return nil, app.NewTimerError(app.TimerErrTaskAlreadyDone, "task %s is finished", taskID)
	}
	return task, nil
}

// latest returns the record with the greatest start, or nil.
func latest(records []*domain.SessionRecord) *domain.SessionRecord {
	if len(records) == 0 {
		return nil
	}
	return slices.MaxFunc(records, func(a, b *domain.SessionRecord) int {
		return a.StartAt.Compare(b.StartAt)
	})
}
