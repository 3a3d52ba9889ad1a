package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andihoo/chrono/internal/app"
	"github.com/andihoo/chrono/internal/clock"
	"github.com/andihoo/chrono/internal/domain"
	"github.com/andihoo/chrono/internal/durations"
	"github.com/andihoo/chrono/internal/repository"
)

type reportService struct {
	tasks    repository.TaskRepo
	sessions repository.SessionRepo
	logins   repository.LoginRepo
	users    repository.UserRepo
	clock    clock.Clock
	observer UseCaseObserver
}

func NewReportService(
	tasks repository.TaskRepo,
	sessions repository.SessionRepo,
	logins repository.LoginRepo,
	users repository.UserRepo,
	clk clock.Clock,
	observers ...UseCaseObserver,
) ReportService {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &reportService{
		tasks:    tasks,
		sessions: sessions,
		logins:   logins,
		users:    users,
		clock:    clk,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *reportService) Build(ctx context.Context) (report *app.ReportView, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() { observe(ctx, s.observer, "report", startedAt, fields, err) }()

	var (
		tasks   []*domain.Task
		records []*domain.SessionRecord
		logins  []*domain.Login
		users   []*domain.User
	)
	if tasks, err = s.tasks.List(ctx); err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	if records, err = s.sessions.ListAll(ctx); err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}
	if logins, err = s.logins.ListAll(ctx); err != nil {
		return nil, fmt.Errorf("loading logins: %w", err)
	}
	if users, err = s.users.List(ctx); err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}

	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.Email] = u.Name
	}
	nameOf := func(email string) string {
		if n, ok := names[email]; ok && n != "" {
			return n
		}
		return email
	}

	report = &app.ReportView{
		GeneratedAt:    s.clock.Now(),
		CompletedTasks: []app.CompletedTaskView{},
		LoginTotals:    []app.UserTotalView{},
		PauseTotals:    []app.PauseTotalView{},
	}
	for _, t := range tasks {
		if !t.IsDone() {
			continue
		}
		report.CompletedTasks = append(report.CompletedTasks, app.CompletedTaskView{
			TaskID:        t.ID,
			Title:         t.Title,
			AssigneeEmail: t.AssigneeEmail,
			TotalSeconds:  t.TotalTimeSeconds,
			ClosedAt:      t.ClosedAt,
			ClosedBy:      t.ClosedBy,
		})
	}
	for _, total := range durations.Sorted(durations.LoginTimeByUser(logins)) {
		report.LoginTotals = append(report.LoginTotals, app.UserTotalView{
			Email:   total.Key,
			Name:    nameOf(total.Key),
			Seconds: total.Seconds,
		})
	}
	for _, kind := range []domain.SessionKind{domain.SessionMission, domain.SessionGlobal} {
		for _, total := range durations.Sorted(durations.PauseTimeByUser(records, kind)) {
			report.PauseTotals = append(report.PauseTotals, app.PauseTotalView{
				Email:   total.Key,
				Name:    nameOf(total.Key),
				Kind:    string(kind),
				Seconds: total.Seconds,
			})
		}
	}

	fields["completed_tasks"] = len(report.CompletedTasks)
	return report, nil
}
