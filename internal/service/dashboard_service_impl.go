package service

import (
	"context"
	"fmt"

	"github.com/andihoo/chrono/internal/app"
	"github.com/andihoo/chrono/internal/clock"
	"github.com/andihoo/chrono/internal/domain"
	"github.com/andihoo/chrono/internal/durations"
	"github.com/andihoo/chrono/internal/repository"
)

type dashboardService struct {
	timer    TimerService
	tasks    TaskService
	sessions repository.SessionRepo
	clock    clock.Clock
}

func NewDashboardService(timer TimerService, tasks TaskService, sessions repository.SessionRepo, clk clock.Clock) DashboardService {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &dashboardService{timer: timer, tasks: tasks, sessions: sessions, clock: clk}
}

// ExpiredNotice is the DashboardView notice set when building the view ended
// an overdue global pause.
const ExpiredNotice = "global pause ended automatically after reaching its limit"

func (s *dashboardService) Build(ctx context.Context, sess *domain.UserSession) (*app.DashboardView, error) {
	if sess == nil {
		return nil, ErrNotLoggedIn
	}
	expired, err := s.timer.ExpireGlobalPause(ctx, sess)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListVisible(ctx, sess.Email)
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	records, err := s.sessions.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}

	now := s.clock.Now()
	live := durations.LiveMissionTimeByTask(records, now)
	state := sess.State()

	view := &app.DashboardView{
		Now:   now,
		User:  app.UserView{Email: sess.Email, Name: sess.Name, Role: string(sess.Role)},
		State: state.String(),
		Tasks: make([]app.TaskView, 0, len(tasks)),
	}
	if expired {
		view.Notice = ExpiredNotice
	}
	if state == domain.StateGloballyPaused {
		elapsed := domain.SecondsBetween(sess.GlobalPauseStart, now)
		remaining := int64(s.timer.GlobalPauseLimit().Seconds()) - elapsed
		view.GlobalPause = &app.GlobalPauseView{
			StartedAt:        sess.GlobalPauseStart,
			ElapsedSeconds:   elapsed,
			RemainingSeconds: max(remaining, 0),
		}
	}

	for _, t := range tasks {
		active := t.ID == sess.ActiveTaskID
		tv := app.NewTaskView(t)
		tv.Active = active
		tv.Actions = taskActions(t, active, state, sess.IsAdmin())
		if !t.IsDone() {
			tv.TotalSeconds = live[t.ID]
		}
		if active {
			view.ActiveTask = &app.ActiveTaskView{
				TaskID:         t.ID,
				Title:          t.Title,
				SessionStart:   sess.ActiveSessionStart,
				SessionSeconds: domain.SecondsBetween(sess.ActiveSessionStart, now),
			}
		}
		view.Tasks = append(view.Tasks, tv)
	}
	return view, nil
}

// taskActions lists the buttons a front end should offer for one task.
func taskActions(t *domain.Task, active bool, state domain.TimerState, admin bool) []app.TaskAction {
	switch {
	case t.IsDone():
		if admin {
			return []app.TaskAction{app.ActionComplete, app.ActionReopen}
		}
		return nil
	case active:
		return []app.TaskAction{app.ActionPause, app.ActionComplete}
	case state != domain.StateIdle:
		return []app.TaskAction{app.ActionComplete}
	case t.Status == domain.TaskInProgress:
		return []app.TaskAction{app.ActionResume, app.ActionComplete}
	default:
		return []app.TaskAction{app.ActionStart, app.ActionComplete}
	}
}
