package cli

import (
	"fmt"

	"github.com/andihoo/chrono/internal/cli/formatter"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newDashboardCmd(app *App) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"ui"},
		Short:   "Open the live timer dashboard",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, _, err := loadSession(ctx, app)
			if err != nil {
				return err
			}

			if once || app.IsInteractive == nil || !app.IsInteractive() {
				view, err := app.Dashboard.Build(ctx, sess)
				if err != nil {
					return err
				}
				if err := app.Sessions.Save(ctx, sess); err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDashboard(view))
				return nil
			}

			m := newAppModel(app, sess)
			if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
				return fmt.Errorf("running dashboard: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Print the dashboard once instead of running it live")
	return cmd
}
