package cli

import (
	"strings"

	"github.com/andihoo/chrono/internal/cli/formatter"
	"github.com/andihoo/chrono/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// appModel is the root bubbletea Model for the dashboard TUI.
// It manages a view stack, a status line and the key hint bar.
type appModel struct {
	state     *SharedState
	viewStack []View
	quitting  bool

	status      string
	statusIsErr bool
}

func newAppModel(app *App, sess *domain.UserSession) appModel {
	state := &SharedState{App: app, Session: sess}
	return appModel{
		state:     state,
		viewStack: []View{newDashboardView(state)},
	}
}

func (m *appModel) activeView() View {
	if len(m.viewStack) == 0 {
		return nil
	}
	return m.viewStack[len(m.viewStack)-1]
}

func (m *appModel) setActiveView(v View) {
	if len(m.viewStack) > 0 {
		m.viewStack[len(m.viewStack)-1] = v
	}
}

// ── bubbletea interface ──────────────────────────────────────────────────────

func (m appModel) Init() tea.Cmd {
	if v := m.activeView(); v != nil {
		return v.Init()
	}
	return nil
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.state.Width = msg.Width
		m.state.Height = msg.Height

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		// Any key press clears a stale status line.
		m.status = ""
		m.statusIsErr = false
		if v := m.activeView(); v != nil && v.ID() == ViewDashboard && msg.String() == "q" {
			m.quitting = true
			return m, tea.Quit
		}

	case pushViewMsg:
		m.viewStack = append(m.viewStack, msg.view)
		return m, msg.view.Init()

	case popViewMsg:
		if len(m.viewStack) > 1 {
			m.viewStack = m.viewStack[:len(m.viewStack)-1]
		}
		return m, func() tea.Msg { return refreshViewMsg{} }

	case refreshViewMsg:
		// Broadcast so views under a form reload after its mutation.
		var cmds []tea.Cmd
		for i, v := range m.viewStack {
			updated, cmd := v.Update(msg)
			m.viewStack[i] = updated.(View)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case wizardCompleteMsg:
		if len(m.viewStack) > 1 {
			m.viewStack = m.viewStack[:len(m.viewStack)-1]
		}
		return m, tea.Batch(msg.nextCmd, func() tea.Msg { return refreshViewMsg{} })

	case flashMsg:
		m.status = msg.text
		m.statusIsErr = msg.isErr
		return m, nil
	}

	if v := m.activeView(); v != nil {
		updated, cmd := v.Update(msg)
		m.setActiveView(updated.(View))
		return m, cmd
	}
	return m, nil
}

func (m appModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	crumbs := []string{formatter.StyleHeader.Render("chrono")}
	for _, v := range m.viewStack {
		crumbs = append(crumbs, v.Title())
	}
	user := formatter.Dim(m.state.Session.Email)
	b.WriteString(strings.Join(crumbs, formatter.Dim(" › ")) + "  " + user + "\n")
	b.WriteString(formatter.Dim(strings.Repeat("─", max(m.state.Width, 20))) + "\n")

	if v := m.activeView(); v != nil {
		b.WriteString(v.View())
	}
	b.WriteString("\n")

	switch {
	case m.status == "":
		b.WriteString("\n")
	case m.statusIsErr:
		b.WriteString(formatter.StyleRed.Render("✖ "+m.status) + "\n")
	default:
		b.WriteString(formatter.StyleGreen.Render("✔ "+m.status) + "\n")
	}

	b.WriteString(renderHints(m.hints()))
	return b.String()
}

func (m appModel) hints() []key.Binding {
	var bindings []key.Binding
	if v := m.activeView(); v != nil {
		bindings = append(bindings, v.ShortHelp()...)
	}
	return append(bindings, key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")))
}

func renderHints(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, formatter.Bold(h.Key)+" "+formatter.Dim(h.Desc))
	}
	return strings.Join(parts, formatter.Dim("  ·  "))
}
