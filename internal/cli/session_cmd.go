package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/andihoo/chrono/internal/app"
	"github.com/andihoo/chrono/internal/cli/formatter"
	"github.com/andihoo/chrono/internal/domain"
	"github.com/andihoo/chrono/internal/service"
	"github.com/spf13/cobra"
)

// loadSession returns the saved session with its timer context rebuilt from
// the open records in the store, which may have changed since it was saved.
// breakEnded reports that a break the saved session was on is over.
func loadSession(ctx context.Context, app *App) (sess *domain.UserSession, breakEnded bool, err error) {
	sess, err = app.Sessions.Load(ctx)
	if err != nil {
		if errors.Is(err, service.ErrNotLoggedIn) {
			return nil, false, fmt.Errorf("%w: run `chrono login <email>` first", err)
		}
		return nil, false, err
	}
	wasOnBreak := sess.GlobalPauseActive
	sess.ClearTask()
	sess.LeaveGlobalPause()
	if err := app.Timer.Reconcile(ctx, sess); err != nil {
		return nil, false, err
	}
	return sess, wasOnBreak && !sess.GlobalPauseActive, nil
}

func newLoginCmd(a *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Log in, creating the account on first use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if current, err := a.Sessions.Load(ctx); err == nil {
				return fmt.Errorf("already logged in as %s; run `chrono logout` first", current.Email)
			} else if !errors.Is(err, service.ErrNotLoggedIn) {
				return err
			}

			sess, err := a.Auth.Login(ctx, app.LoginRequest{Email: args[0], Name: name})
			if err != nil {
				return err
			}
			if err := a.Sessions.Save(ctx, sess); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Logged in as %s %s\n",
				formatter.StyleGreen.Render("✔"), formatter.Bold(sess.Name), formatter.RoleBadge(string(sess.Role)))
			if sess.ActiveTaskID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "  Timer still running on %s\n", sess.ActiveTaskID)
			}
			if sess.GlobalPauseActive {
				fmt.Fprintln(cmd.OutOrStdout(), "  Break still running")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required for new accounts)")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Close the login and forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, _, err := loadSession(ctx, app)
			if err != nil {
				return err
			}
			if err := app.Auth.Logout(ctx, sess); err != nil {
				return err
			}
			if err := app.Sessions.Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Logged out %s\n", formatter.StyleGreen.Render("✔"), sess.Email)
			return nil
		},
	}
}

func newWhoAmICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user and timer state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, _, err := loadSession(ctx, app)
			if err != nil {
				return err
			}
			if err := app.Sessions.Save(ctx, sess); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s  %s\n",
				formatter.Bold(sess.Name), formatter.Dim("<"+sess.Email+">"),
				formatter.RoleBadge(string(sess.Role)), formatter.StateIndicator(sess.State().String()))
			return nil
		},
	}
}
