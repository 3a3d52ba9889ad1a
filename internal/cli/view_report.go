package cli

import (
	"context"

	"github.com/andihoo/chrono/internal/app"
	"github.com/andihoo/chrono/internal/cli/formatter"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type reportLoadedMsg struct {
	report *app.ReportView
	err    error
}

// reportView shows the aggregated report. It is static once loaded.
type reportView struct {
	state  *SharedState
	report *app.ReportView
	err    error
}

func newReportView(state *SharedState) *reportView {
	return &reportView{state: state}
}

func (v *reportView) ID() ViewID    { return ViewReport }
func (v *reportView) Title() string { return "Report" }

func (v *reportView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	}
}

func (v *reportView) Init() tea.Cmd { return v.load() }

func (v *reportView) load() tea.Cmd {
	reports := v.state.App.Report
	return func() tea.Msg {
		r, err := reports.Build(context.Background())
		return reportLoadedMsg{report: r, err: err}
	}
}

func (v *reportView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reportLoadedMsg:
		v.report, v.err = msg.report, msg.err
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return v, popView()
		case "r":
			return v, v.load()
		}
	}
	return v, nil
}

func (v *reportView) View() string {
	switch {
	case v.err != nil:
		return formatter.StyleRed.Render("Error: " + v.err.Error())
	case v.report == nil:
		return formatter.Dim("Loading...")
	}
	return formatter.FormatReport(v.report)
}
