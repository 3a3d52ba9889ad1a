package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/andihoo/chrono/internal/app"
	"github.com/andihoo/chrono/internal/durations"
)

// FormatDashboard renders the one-shot text version of the timer screen.
func FormatDashboard(v *app.DashboardView) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s  %s %s\n\n",
		StateIndicator(v.State), Bold(v.User.Name), Dim("<"+v.User.Email+">")))

	if v.Notice != "" {
		b.WriteString(StyleYellow.Render("! "+v.Notice) + "\n\n")
	}

	if v.GlobalPause != nil {
		b.WriteString(FormatGlobalPause(v.GlobalPause) + "\n\n")
	}

	if v.ActiveTask != nil {
		b.WriteString(fmt.Sprintf("%s %s  %s\n\n",
			StyleGreen.Render("▶"),
			Bold(v.ActiveTask.Title),
			StyleGreen.Render(durations.FormatHMS(v.ActiveTask.SessionSeconds))))
	}

	if len(v.Tasks) == 0 {
		b.WriteString(Dim("No tasks.") + "\n")
	} else {
		b.WriteString(FormatTaskList(v.Tasks, v.Now))
	}

	return RenderBox("Chrono", strings.TrimRight(b.String(), "\n")) + "\n"
}

// FormatGlobalPause renders the break countdown.
func FormatGlobalPause(p *app.GlobalPauseView) string {
	total := p.ElapsedSeconds + p.RemainingSeconds
	return fmt.Sprintf("%s %s elapsed, %s left  %s",
		StyleYellow.Render("Break"),
		durations.FormatHMS(p.ElapsedSeconds),
		durations.FormatHMS(p.RemainingSeconds),
		RenderBudget(p.ElapsedSeconds, total, 20))
}

// FormatTaskList renders tasks as a table. The active task is marked.
func FormatTaskList(tasks []app.TaskView, now time.Time) string {
	headers := []string{"", "ID", "TITLE", "ASSIGNEE", "STATUS", "DUE", "TIME"}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		marker := " "
		if t.Active {
			marker = StyleGreen.Render("▶")
		}
		rows = append(rows, []string{
			marker,
			Dim(t.ID),
			Truncate(t.Title, 40),
			t.AssigneeEmail,
			TaskStatusPill(t.Status),
			DueLabel(t.DueAt, now),
			durations.FormatHMS(t.TotalSeconds),
		})
	}
	return RenderTable(headers, rows)
}

// FormatTaskDetail renders one task with its description and history.
func FormatTaskDetail(t app.TaskView, now time.Time) string {
	var b strings.Builder
	line := func(label, value string) {
		b.WriteString(fmt.Sprintf("%s %s\n", Dim(fmt.Sprintf("%-10s", label)), value))
	}

	line("ID", t.ID)
	line("Status", TaskStatusPill(t.Status))
	line("Assignee", t.AssigneeEmail)
	line("Created", HumanTimestampFrom(t.CreatedAt, now))
	line("Due", DueLabel(t.DueAt, now))
	line("Time", durations.FormatHMS(t.TotalSeconds))
	if t.ClosedAt != nil {
		line("Closed", fmt.Sprintf("%s by %s", ShortDateTime(*t.ClosedAt), t.ClosedBy))
	}
	if len(t.Actions) > 0 {
		names := make([]string, len(t.Actions))
		for i, a := range t.Actions {
			names[i] = string(a)
		}
		line("Actions", strings.Join(names, ", "))
	}
	if t.Description != "" {
		b.WriteString("\n" + t.Description + "\n")
	}

	return RenderBox(t.Title, strings.TrimRight(b.String(), "\n")) + "\n"
}

// FormatReport renders the administrator report.
func FormatReport(r *app.ReportView) string {
	var b strings.Builder

	b.WriteString(Header("Completed tasks") + "\n")
	if len(r.CompletedTasks) == 0 {
		b.WriteString(Dim("No completed tasks.") + "\n")
	} else {
		rows := make([][]string, 0, len(r.CompletedTasks))
		for _, t := range r.CompletedTasks {
			closed := "--"
			if t.ClosedAt != nil {
				closed = ShortDateTime(*t.ClosedAt)
			}
			rows = append(rows, []string{Truncate(t.Title, 40), t.AssigneeEmail, closed, durations.FormatHMS(t.TotalSeconds)})
		}
		b.WriteString(RenderTable([]string{"TITLE", "ASSIGNEE", "CLOSED", "TIME"}, rows))
	}

	b.WriteString("\n" + Header("Logged-in time") + "\n")
	if len(r.LoginTotals) == 0 {
		b.WriteString(Dim("No closed logins.") + "\n")
	} else {
		rows := make([][]string, 0, len(r.LoginTotals))
		for _, u := range r.LoginTotals {
			rows = append(rows, []string{u.Name, u.Email, durations.FormatHMS(u.Seconds)})
		}
		b.WriteString(RenderTable([]string{"NAME", "EMAIL", "TIME"}, rows))
	}

	b.WriteString("\n" + Header("Pause time") + "\n")
	if len(r.PauseTotals) == 0 {
		b.WriteString(Dim("No pauses.") + "\n")
	} else {
		rows := make([][]string, 0, len(r.PauseTotals))
		for _, p := range r.PauseTotals {
			rows = append(rows, []string{p.Name, p.Email, p.Kind, durations.FormatHMS(p.Seconds)})
		}
		b.WriteString(RenderTable([]string{"NAME", "EMAIL", "KIND", "TIME"}, rows))
	}

	return b.String()
}
