package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andihoo/chrono/internal/app"
	"github.com/andihoo/chrono/internal/cli/formatter"
	"github.com/andihoo/chrono/internal/domain"
	"github.com/spf13/cobra"
)

func newTaskCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "List and manage tasks",
	}

	cmd.AddCommand(
		newTaskListCmd(a),
		newTaskAddCmd(a),
		newTaskShowCmd(a),
		newTaskDeleteCmd(a),
		newTaskReopenCmd(a),
	)

	return cmd
}

func newTaskListCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the tasks visible to you",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, _, err := loadSession(ctx, a)
			if err != nil {
				return err
			}
			view, err := a.Dashboard.Build(ctx, sess)
			if err != nil {
				return err
			}
			if err := a.Sessions.Save(ctx, sess); err != nil {
				return err
			}

			if len(view.Tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTaskList(view.Tasks, view.Now))
			return nil
		},
	}
}

// parseDue reads YYYY-MM-DD as the end of that local day, or RFC 3339.
func parseDue(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		end := t.AddDate(0, 0, 1).Add(-time.Second)
		return &end, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q (want YYYY-MM-DD)", s)
	}
	return &t, nil
}

func newTaskAddCmd(a *App) *cobra.Command {
	var title, description, assignee, due string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, _, err := loadSession(ctx, a)
			if err != nil {
				return err
			}
			dueAt, err := parseDue(due)
			if err != nil {
				return err
			}

			task, err := a.Tasks.Create(ctx, sess, app.CreateTaskRequest{
				Title:         title,
				Description:   description,
				AssigneeEmail: assignee,
				DueAt:         dueAt,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s %s for %s\n",
				formatter.Bold(task.Title), formatter.Dim(task.ID), task.AssigneeEmail)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee email (default: you)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

// taskView finds the task in the user's dashboard, falling back to a bare
// view for tasks the dashboard does not list.
func taskView(ctx context.Context, a *App, sess *domain.UserSession, id string) (app.TaskView, time.Time, error) {
	view, err := a.Dashboard.Build(ctx, sess)
	if err != nil {
		return app.TaskView{}, time.Time{}, err
	}
	for _, t := range view.Tasks {
		if t.ID == id {
			return t, view.Now, nil
		}
	}
	t, err := a.Tasks.GetByID(ctx, id)
	if err != nil {
		return app.TaskView{}, time.Time{}, err
	}
	return app.NewTaskView(t), view.Now, nil
}

func newTaskShowCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task>",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, _, err := loadSession(ctx, a)
			if err != nil {
				return err
			}
			id, err := resolveTaskID(ctx, a, sess.Email, args[0])
			if err != nil {
				return err
			}
			tv, now, err := taskView(ctx, a, sess, id)
			if err != nil {
				return err
			}
			if err := a.Sessions.Save(ctx, sess); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTaskDetail(tv, now))
			return nil
		},
	}
}

func newTaskDeleteCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task>",
		Short: "Delete a task (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, _, err := loadSession(ctx, a)
			if err != nil {
				return err
			}
			id, err := resolveTaskID(ctx, a, sess.Email, args[0])
			if err != nil {
				return err
			}
			if err := a.Tasks.Delete(ctx, sess, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", id)
			return nil
		},
	}
}

func newTaskReopenCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <task>",
		Short: "Reopen a finished task (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, _, err := loadSession(ctx, a)
			if err != nil {
				return err
			}
			id, err := resolveTaskID(ctx, a, sess.Email, args[0])
			if err != nil {
				return err
			}
			if err := a.Tasks.Reopen(ctx, sess, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reopened task %s\n", id)
			return nil
		},
	}
}
