// Package bootstrap opens the configured row store and wires repositories
// and services into an App shared by the CLI, dashboard and HTTP server.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/andihoo/chrono/internal/clock"
	"github.com/andihoo/chrono/internal/config"
	"github.com/andihoo/chrono/internal/db"
	"github.com/andihoo/chrono/internal/repository"
	"github.com/andihoo/chrono/internal/rowstore"
	"github.com/andihoo/chrono/internal/service"
)

type App struct {
	Timer     service.TimerService
	Auth      service.AuthService
	Tasks     service.TaskService
	Dashboard service.DashboardService
	Report    service.ReportService

	Store  *rowstore.CachedStore
	Clock  clock.Clock
	Logger *slog.Logger

	closer io.Closer
}

// Close releases the backing database, if any.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// Options override pieces of the wiring, mostly for tests.
type Options struct {
	Clock  clock.Clock
	Logger *slog.Logger
	// Backend replaces the store selected by configuration.
	Backend rowstore.Backend
}

func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	clk := opts.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = cfg.Log.NewLogger(io.Discard)
	}

	backend := opts.Backend
	var closer io.Closer
	if backend == nil {
		var err error
		backend, closer, err = openBackend(ctx, cfg.Store)
		if err != nil {
			return nil, err
		}
	}

	store := rowstore.NewCachedStore(backend, cfg.Store.CacheSize, cfg.Store.CacheTTL)
	if err := store.EnsureSchema(ctx); err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, fmt.Errorf("provisioning %s store: %w", cfg.Store.Backend, err)
	}

	accounts, err := config.LoadAccounts(cfg.AccountsFile)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}

	users := repository.NewRowUserRepo(store)
	tasks := repository.NewRowTaskRepo(store)
	sessions := repository.NewRowSessionRepo(store)
	logins := repository.NewRowLoginRepo(store)

	observer := service.NewSlogUseCaseObserver(logger)
	timer := service.NewTimerService(tasks, sessions, clk, service.TimerOptions{
		GlobalPauseLimit: cfg.Timer.GlobalPauseLimit,
		Logger:           logger,
	}, observer)
	taskSvc := service.NewTaskService(tasks, users, clk, observer)

	return &App{
		Timer:     timer,
		Auth:      service.NewAuthService(users, logins, timer, clk, accounts, logger, observer),
		Tasks:     taskSvc,
		Dashboard: service.NewDashboardService(timer, taskSvc, sessions, clk),
		Report:    service.NewReportService(tasks, sessions, logins, users, clk, observer),
		Store:     store,
		Clock:     clk,
		Logger:    logger,
		closer:    closer,
	}, nil
}

func openBackend(ctx context.Context, cfg config.StoreConfig) (rowstore.Backend, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return rowstore.NewMemoryStore(), nil, nil
	case config.BackendSQLite:
		database, err := db.OpenDB(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		return rowstore.NewSQLiteStore(database), database, nil
	case config.BackendSheets:
		s, err := rowstore.NewSheetsStore(ctx, rowstore.SheetsConfig{
			SpreadsheetID:   cfg.Sheets.SpreadsheetID,
			CredentialsFile: cfg.Sheets.CredentialsFile,
			CredentialsJSON: cfg.Sheets.CredentialsJSON,
			Worksheets: map[rowstore.Table]string{
				rowstore.TableUsers:    cfg.Sheets.Worksheets.Users,
				rowstore.TableTasks:    cfg.Sheets.Worksheets.Tasks,
				rowstore.TableSessions: cfg.Sheets.Worksheets.Sessions,
				rowstore.TableLogins:   cfg.Sheets.Worksheets.Logins,
			},
		})
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
