package cli

import (
	"context"
	"fmt"

	"github.com/andihoo/chrono/internal/cli/formatter"
	"github.com/andihoo/chrono/internal/domain"
	"github.com/spf13/cobra"
)

type timerAction func(ctx context.Context, sess *domain.UserSession, taskID string) error

// newTimerActionCmd builds one of the start/pause/resume/complete commands.
// pause and complete default to the running task when no ID is given.
func newTimerActionCmd(app *App, use, short, done string, defaultActive bool, action func(*App) timerAction) *cobra.Command {
	args := cobra.ExactArgs(1)
	if defaultActive {
		args = cobra.MaximumNArgs(1)
	}

	return &cobra.Command{
		Use:   use + " <task>",
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, _, err := loadSession(ctx, app)
			if err != nil {
				return err
			}

			var taskID string
			switch {
			case len(args) == 1:
				taskID, err = resolveTaskID(ctx, app, sess.Email, args[0])
				if err != nil {
					return err
				}
			case sess.ActiveTaskID != "":
				taskID = sess.ActiveTaskID
			default:
				return fmt.Errorf("no task is running; name the task")
			}

			actErr := action(app)(ctx, sess, taskID)
			// The store may have moved even when the action failed.
			if err := app.Sessions.Save(ctx, sess); err != nil {
				return err
			}
			if actErr != nil {
				return actErr
			}

			title := taskID
			if t, err := app.Tasks.GetByID(ctx, taskID); err == nil {
				title = t.Title
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n",
				formatter.StyleGreen.Render("✔"), done, formatter.Bold(title), formatter.Dim(taskID))
			return nil
		},
	}
}

func newStartCmd(app *App) *cobra.Command {
	return newTimerActionCmd(app, "start", "Start timing a task", "Started", false,
		func(a *App) timerAction { return a.Timer.Start })
}

func newPauseCmd(app *App) *cobra.Command {
	return newTimerActionCmd(app, "pause", "Pause the running task", "Paused", true,
		func(a *App) timerAction { return a.Timer.Pause })
}

func newResumeCmd(app *App) *cobra.Command {
	return newTimerActionCmd(app, "resume", "Resume a paused task", "Resumed", false,
		func(a *App) timerAction { return a.Timer.Resume })
}

func newCompleteCmd(app *App) *cobra.Command {
	return newTimerActionCmd(app, "complete", "Mark a task done", "Completed", true,
		func(a *App) timerAction { return a.Timer.Complete })
}

func newBreakCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "break",
		Short: "Start or end a global pause",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			sess, breakEnded, err := loadSession(ctx, app)
			if err != nil {
				return err
			}
			if breakEnded {
				// The user meant to end a break that is already over.
				if err := app.Sessions.Save(ctx, sess); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s Break had already ended\n", formatter.StyleYellow.Render("!"))
				return nil
			}

			wasActive := sess.ActiveTaskID
			active, toggleErr := app.Timer.ToggleGlobalPause(ctx, sess)
			if err := app.Sessions.Save(ctx, sess); err != nil {
				return err
			}
			if toggleErr != nil {
				return toggleErr
			}

			if active {
				fmt.Fprintf(out, "%s Break started, ends automatically after %s\n",
					formatter.StyleYellow.Render("◐"), app.Timer.GlobalPauseLimit())
				if wasActive != "" {
					fmt.Fprintf(out, "  Paused %s\n", wasActive)
				}
				return nil
			}
			fmt.Fprintf(out, "%s Break ended\n", formatter.StyleGreen.Render("✔"))
			return nil
		},
	}
}
