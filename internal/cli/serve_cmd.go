package cli

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/andihoo/chrono/internal/web"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	var sweep time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = app.WebAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := web.NewServer(web.Services{
				Timer:     app.Timer,
				Auth:      app.Auth,
				Tasks:     app.Tasks,
				Dashboard: app.Dashboard,
				Report:    app.Report,
			}, web.Options{Logger: app.Logger, SweepInterval: sweep})

			cmd.Printf("Serving on http://%s (Ctrl+C to stop)\n", addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config web.addr)")
	cmd.Flags().DurationVar(&sweep, "sweep", web.DefaultSweepInterval, "How often idle sessions get break expiry applied")
	return cmd
}
