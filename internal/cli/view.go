package cli

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewID identifies each type of view in the TUI.
type ViewID int

const (
	ViewDashboard ViewID = iota
	ViewReport
	ViewForm
)

// View is the interface that all TUI views must implement.
// It extends tea.Model with navigation and help metadata.
type View interface {
	tea.Model
	ID() ViewID
	ShortHelp() []key.Binding // key hints shown in the bottom bar
	Title() string            // breadcrumb segment for this view
}

type (
	pushViewMsg    struct{ view View }
	popViewMsg     struct{}
	refreshViewMsg struct{}
	// flashMsg sets the one-line status shown above the key hints.
	flashMsg struct {
		text  string
		isErr bool
	}
	// wizardCompleteMsg pops the wizard and runs its follow-up.
	wizardCompleteMsg struct{ nextCmd tea.Cmd }
)

func pushView(v View) tea.Cmd {
	return func() tea.Msg { return pushViewMsg{view: v} }
}

func popView() tea.Cmd {
	return func() tea.Msg { return popViewMsg{} }
}

func flash(text string) tea.Msg { return flashMsg{text: text} }

func flashError(err error) tea.Msg { return flashMsg{text: err.Error(), isErr: true} }
