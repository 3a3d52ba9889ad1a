package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/andihoo/chrono/internal/bootstrap"
	"github.com/andihoo/chrono/internal/cli"
	"github.com/andihoo/chrono/internal/config"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath, err := configFlag(os.Args[1:])
	if err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := cfg.Log.NewLogger(os.Stderr)

	ctx := context.Background()
	services, err := bootstrap.New(ctx, cfg, bootstrap.Options{Logger: logger})
	if err != nil {
		return err
	}
	defer services.Close()

	app := &cli.App{
		Timer:     services.Timer,
		Auth:      services.Auth,
		Tasks:     services.Tasks,
		Dashboard: services.Dashboard,
		Report:    services.Report,
		Sessions:  cli.NewFileSessionStore(cfg.CLI.SessionFile),
		Clock:     services.Clock,
		Logger:    logger,
		WebAddr:   cfg.Web.Addr,
		Version:   version,
	}

	// The live dashboard needs a terminal.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

// configFlag reads --config ahead of cobra, since the store is opened
// before any command runs. Other arguments are left to cobra.
func configFlag(args []string) (string, error) {
	var picked []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		switch {
		case strings.HasPrefix(arg, "--config="):
			picked = append(picked, arg)
		case arg == "--config" && i+1 < len(args):
			picked = append(picked, arg, args[i+1])
			i++
		}
	}

	flags := pflag.NewFlagSet("chrono", pflag.ContinueOnError)
	path := flags.String("config", "", "config file")
	if err := flags.Parse(picked); err != nil {
		return "", err
	}
	return *path, nil
}
