package cli

import (
	"fmt"
	"log/slog"

	"github.com/andihoo/chrono/internal/clock"
	"github.com/andihoo/chrono/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Timer     service.TimerService
	Auth      service.AuthService
	Tasks     service.TaskService
	Dashboard service.DashboardService
	Report    service.ReportService

	// Sessions persists the logged-in user's timer context between
	// invocations.
	Sessions SessionStore
	Clock    clock.Clock
	Logger   *slog.Logger

	// IsInteractive reports whether stdin is a terminal. The dashboard
	// refuses to start without one.
	IsInteractive func() bool

	WebAddr string
	Version string
}

// NewRootCmd creates the top-level "chrono" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "chrono",
		Short:         "Task timer with breaks and time reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Parsed early by main; declared here so cobra accepts it.
	root.PersistentFlags().String("config", "", "Config file (default $XDG_CONFIG_HOME/chrono/chrono.yml)")

	root.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoAmICmd(app),
		newTaskCmd(app),
		newStartCmd(app),
		newPauseCmd(app),
		newResumeCmd(app),
		newCompleteCmd(app),
		newBreakCmd(app),
		newReportCmd(app),
		newDashboardCmd(app),
		newServeCmd(app),
		newVersionCmd(app),
	)

	return root
}

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := app.Version
			if v == "" {
				v = "dev"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "chrono %s\n", v)
			return nil
		},
	}
}
