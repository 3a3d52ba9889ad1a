package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andihoo/chrono/internal/app"
	"github.com/andihoo/chrono/internal/cli/formatter"
	"github.com/andihoo/chrono/internal/durations"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const tickInterval = time.Second

type (
	dashboardLoadedMsg struct {
		view *app.DashboardView
		err  error
	}
	tickMsg time.Time
	// actionDoneMsg carries a mutation's outcome and the reloaded view.
	actionDoneMsg struct {
		status flashMsg
		loaded dashboardLoadedMsg
	}
)

// dashboardView is the live timer screen: the active task and break
// counters refresh every second, and keys drive the timer.
type dashboardView struct {
	state   *SharedState
	data    *app.DashboardView
	cursor  int
	loading bool
	err     error
}

func newDashboardView(state *SharedState) *dashboardView {
	return &dashboardView{state: state, loading: true}
}

func (v *dashboardView) ID() ViewID    { return ViewDashboard }
func (v *dashboardView) Title() string { return "Dashboard" }

func (v *dashboardView) ShortHelp() []key.Binding {
	hints := []key.Binding{
		key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resume")),
		key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "complete")),
		key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "break")),
		key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "report")),
	}
	if v.state.Session.IsAdmin() {
		hints = append(hints,
			key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
			key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
			key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "reopen")),
		)
	}
	return append(hints, key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")))
}

func (v *dashboardView) Init() tea.Cmd {
	return tea.Batch(v.load(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// load builds the view model. Building applies break expiry, so the session
// is persisted afterwards.
func (v *dashboardView) load() tea.Cmd {
	state := v.state
	return func() tea.Msg {
		return loadDashboard(context.Background(), state)
	}
}

func loadDashboard(ctx context.Context, state *SharedState) dashboardLoadedMsg {
	view, err := state.App.Dashboard.Build(ctx, state.Session)
	if err == nil {
		err = state.persist(ctx)
	}
	return dashboardLoadedMsg{view: view, err: err}
}

func (v *dashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		return v, v.apply(msg)

	case actionDoneMsg:
		status := msg.status
		if cmd := v.apply(msg.loaded); cmd != nil && !status.isErr {
			return v, cmd
		}
		return v, func() tea.Msg { return status }

	case tickMsg:
		return v, tea.Batch(v.load(), tick())

	case refreshViewMsg:
		return v, v.load()

	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}
	return v, nil
}

// apply stores a loaded view. A break expiry notice becomes the status line.
func (v *dashboardView) apply(msg dashboardLoadedMsg) tea.Cmd {
	v.loading = false
	v.err = msg.err
	if msg.err != nil {
		return nil
	}
	v.data = msg.view
	if v.cursor >= len(v.data.Tasks) {
		v.cursor = max(len(v.data.Tasks)-1, 0)
	}
	if notice := msg.view.Notice; notice != "" {
		return func() tea.Msg { return flash(notice) }
	}
	return nil
}

func (v *dashboardView) selected() (app.TaskView, bool) {
	if v.data == nil || v.cursor < 0 || v.cursor >= len(v.data.Tasks) {
		return app.TaskView{}, false
	}
	return v.data.Tasks[v.cursor], true
}

func (v *dashboardView) handleKey(msg tea.KeyMsg) tea.Cmd {
	timer := v.state.App.Timer
	tasks := v.state.App.Tasks

	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
		return nil
	case "down", "j":
		if v.data != nil && v.cursor < len(v.data.Tasks)-1 {
			v.cursor++
		}
		return nil
	case "s":
		return v.taskAction("Started", timer.Start)
	case "p":
		if id := v.state.Session.ActiveTaskID; id != "" {
			return v.run(func(ctx context.Context) (string, error) {
				return "Paused", timer.Pause(ctx, v.state.Session, id)
			})
		}
		return v.taskAction("Paused", timer.Pause)
	case "r":
		return v.taskAction("Resumed", timer.Resume)
	case "c":
		return v.taskAction("Completed", timer.Complete)
	case "b":
		return v.run(func(ctx context.Context) (string, error) {
			active, err := timer.ToggleGlobalPause(ctx, v.state.Session)
			if active {
				return "Break started", err
			}
			return "Break ended", err
		})
	case "g":
		return pushView(newReportView(v.state))
	case "n":
		if !v.state.Session.IsAdmin() {
			return func() tea.Msg { return flashMsg{text: "admin role required", isErr: true} }
		}
		return pushView(newCreateTaskView(v.state))
	case "x":
		return v.taskAction("Deleted", tasks.Delete)
	case "o":
		return v.taskAction("Reopened", tasks.Reopen)
	}
	return nil
}

// taskAction applies action to the selected task.
func (v *dashboardView) taskAction(done string, action timerAction) tea.Cmd {
	t, ok := v.selected()
	if !ok {
		return func() tea.Msg { return flashMsg{text: "no task selected", isErr: true} }
	}
	sess := v.state.Session
	return v.run(func(ctx context.Context) (string, error) {
		return fmt.Sprintf("%s %s", done, t.Title), action(ctx, sess, t.ID)
	})
}

// run executes a mutation, persists the session and reloads the view.
func (v *dashboardView) run(fn func(ctx context.Context) (string, error)) tea.Cmd {
	state := v.state
	return func() tea.Msg {
		ctx := context.Background()
		text, err := fn(ctx)
		if perr := state.persist(ctx); err == nil {
			err = perr
		}
		status := flashMsg{text: text}
		if err != nil {
			status = flashMsg{text: err.Error(), isErr: true}
		}
		return actionDoneMsg{status: status, loaded: loadDashboard(ctx, state)}
	}
}

func (v *dashboardView) View() string {
	if v.loading && v.data == nil {
		return formatter.Dim("Loading...")
	}
	if v.err != nil {
		return formatter.StyleRed.Render("Error: " + v.err.Error())
	}

	d := v.data
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s  %s\n\n", formatter.StateIndicator(d.State), formatter.Bold(d.User.Name)))

	if d.GlobalPause != nil {
		b.WriteString(formatter.FormatGlobalPause(d.GlobalPause) + "\n\n")
	}
	if d.ActiveTask != nil {
		b.WriteString(fmt.Sprintf("%s %s  %s\n\n",
			formatter.StyleGreen.Render("▶"),
			formatter.Bold(d.ActiveTask.Title),
			formatter.StyleGreen.Render(durations.FormatHMS(d.ActiveTask.SessionSeconds))))
	}

	if len(d.Tasks) == 0 {
		b.WriteString(formatter.Dim("No tasks.") + "\n")
		return b.String()
	}

	headers := []string{"", "TITLE", "ASSIGNEE", "STATUS", "DUE", "TIME"}
	rows := make([][]string, 0, len(d.Tasks))
	for i, t := range d.Tasks {
		cursor := " "
		if i == v.cursor {
			cursor = formatter.StyleHeader.Render("›")
		}
		title := formatter.Truncate(t.Title, 40)
		if t.Active {
			title = formatter.StyleGreen.Render("▶ " + title)
		}
		rows = append(rows, []string{
			cursor,
			title,
			t.AssigneeEmail,
			formatter.TaskStatusPill(t.Status),
			formatter.DueLabel(t.DueAt, d.Now),
			durations.FormatHMS(t.TotalSeconds),
		})
	}
	b.WriteString(formatter.RenderTable(headers, rows))
	return b.String()
}
