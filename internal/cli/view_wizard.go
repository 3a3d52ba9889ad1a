package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/andihoo/chrono/internal/app"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// wizardView wraps a huh.Form as a View on the navigation stack.
// When the form completes it sends a wizardCompleteMsg carrying done's result.
type wizardView struct {
	state    *SharedState
	form     *huh.Form
	titleStr string
	done     func() tea.Cmd
}

func newWizardView(state *SharedState, title string, form *huh.Form, done func() tea.Cmd) *wizardView {
	return &wizardView{
		state:    state,
		form:     form,
		titleStr: title,
		done:     done,
	}
}

func (v *wizardView) Init() tea.Cmd {
	return v.form.Init()
}

func (v *wizardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return v, tea.Batch(popView(), func() tea.Msg { return flash("Cancelled.") })
	}

	form, cmd := v.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		v.form = f
	}

	if v.form.State == huh.StateCompleted {
		var doneCmd tea.Cmd
		if v.done != nil {
			doneCmd = v.done()
		}
		return v, func() tea.Msg {
			return wizardCompleteMsg{nextCmd: doneCmd}
		}
	}
	return v, cmd
}

func (v *wizardView) View() string {
	return v.form.View()
}

func (v *wizardView) ID() ViewID    { return ViewForm }
func (v *wizardView) Title() string { return v.titleStr }
func (v *wizardView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "next")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// createTaskFields holds the values bound to the new task form.
type createTaskFields struct {
	Title       string
	Description string
	Assignee    string
	Due         string
}

// newCreateTaskView builds the admin form for a new task. The assignee
// select lists every known user.
func newCreateTaskView(state *SharedState) *wizardView {
	fields := &createTaskFields{Assignee: state.Session.Email}

	options := []huh.Option[string]{huh.NewOption(state.Session.Email, state.Session.Email)}
	if users, err := state.App.Tasks.ListUsers(context.Background()); err == nil && len(users) > 0 {
		options = options[:0]
		for _, u := range users {
			label := u.Email
			if u.Name != "" && u.Name != u.Email {
				label = u.Name + " <" + u.Email + ">"
			}
			options = append(options, huh.NewOption(label, u.Email))
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&fields.Title).
				Validate(required("a title")),
			huh.NewText().
				Title("Description").
				Value(&fields.Description).
				Validate(required("a description")),
			huh.NewSelect[string]().
				Title("Assignee").
				Options(options...).
				Value(&fields.Assignee),
			huh.NewInput().
				Title("Due date").
				Placeholder("YYYY-MM-DD, optional").
				Value(&fields.Due).
				Validate(func(s string) error {
					_, err := parseDue(s)
					return err
				}),
		),
	).WithTheme(chronoHuhTheme()).WithShowHelp(false)

	return newWizardView(state, "New task", form, func() tea.Cmd {
		return func() tea.Msg { return applyCreateTask(state, *fields) }
	})
}

func required(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

// applyCreateTask creates the task and reports the outcome as a status line.
func applyCreateTask(state *SharedState, f createTaskFields) tea.Msg {
	due, err := parseDue(f.Due)
	if err != nil {
		return flashError(err)
	}
	task, err := state.App.Tasks.Create(context.Background(), state.Session, app.CreateTaskRequest{
		Title:         strings.TrimSpace(f.Title),
		Description:   strings.TrimSpace(f.Description),
		AssigneeEmail: f.Assignee,
		DueAt:         due,
	})
	if err != nil {
		return flashError(err)
	}
	return flash("Created " + task.Title)
}
