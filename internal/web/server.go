// Package web serves the timer over a JSON HTTP API. Clients log in once and
// send the returned token as "Authorization: Bearer <token>".
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/andihoo/chrono/internal/app"
	"github.com/andihoo/chrono/internal/domain"
	"github.com/andihoo/chrono/internal/service"
)

const (
	DefaultSweepInterval = 30 * time.Second
	maxBodyBytes         = 64 << 10
)

type Services struct {
	Timer     service.TimerService
	Auth      service.AuthService
	Tasks     service.TaskService
	Dashboard service.DashboardService
	Report    service.ReportService
}

type Options struct {
	Logger *slog.Logger
	// SweepInterval is how often idle sessions get global pause expiry
	// applied.
	SweepInterval time.Duration
}

type Server struct {
	svc      Services
	sessions *Registry
	logger   *slog.Logger
	interval time.Duration
}

func NewServer(svc Services, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	return &Server{
		svc:      svc,
		sessions: NewRegistry(),
		logger:   opts.Logger,
		interval: opts.SweepInterval,
	}
}

func (s *Server) Sessions() *Registry { return s.sessions }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.authed(s.handleLogout))
	mux.HandleFunc("GET /api/dashboard", s.authed(s.handleDashboard))
	mux.HandleFunc("POST /api/tasks", s.authed(s.handleCreateTask))
	mux.HandleFunc("DELETE /api/tasks/{id}", s.authed(s.handleDeleteTask))
	mux.HandleFunc("POST /api/tasks/{id}/{action}", s.authed(s.handleTaskAction))
	mux.HandleFunc("POST /api/break", s.authed(s.handleBreak))
	mux.HandleFunc("GET /api/report", s.authed(s.handleReport))
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
// The expiry sweeper runs for the lifetime of the server.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.RunSweeper(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		return nil
	}
}

// RunSweeper applies global pause expiry to every registered session on a
// ticker until ctx is done.
func (s *Server) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one expiry pass and returns how many pauses it ended.
func (s *Server) Sweep(ctx context.Context) int {
	ended := 0
	s.sessions.Each(func(_ string, sess *domain.UserSession) {
		expired, err := s.svc.Timer.ExpireGlobalPause(ctx, sess)
		if err != nil {
			s.logger.Warn("sweeping global pause", "email", sess.Email, "error", err)
			return
		}
		if expired {
			ended++
		}
	})
	return ended
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, token string, sess *domain.UserSession) error

// authed resolves the bearer token and runs h under the session's lock.
func (s *Server) authed(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			s.writeError(w, r, errUnauthorized)
			return
		}
		token = strings.TrimSpace(token)
		found, err := s.sessions.With(token, func(sess *domain.UserSession) error {
			return h(w, r, token, sess)
		})
		if !found {
			err = errUnauthorized
		}
		if err != nil {
			s.writeError(w, r, err)
		}
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequest(fmt.Sprintf("invalid JSON body: %v", err))
	}
	return nil
}

type loginResponse struct {
	Token     string             `json:"token"`
	Dashboard *app.DashboardView `json:"dashboard"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req app.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.svc.Auth.Login(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.svc.Dashboard.Build(r.Context(), sess)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	token := s.sessions.Add(sess)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, Dashboard: view})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, token string, sess *domain.UserSession) error {
	if err := s.svc.Auth.Logout(r.Context(), sess); err != nil {
		return err
	}
	s.sessions.Remove(token)
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, _ string, sess *domain.UserSession) error {
	view, err := s.svc.Dashboard.Build(r.Context(), sess)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, view)
	return nil
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request, _ string, sess *domain.UserSession) error {
	var req app.CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	task, err := s.svc.Tasks.Create(r.Context(), sess, req)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, app.NewTaskView(task))
	return nil
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request, _ string, sess *domain.UserSession) error {
	if err := s.svc.Tasks.Delete(r.Context(), sess, r.PathValue("id")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Server) handleTaskAction(w http.ResponseWriter, r *http.Request, _ string, sess *domain.UserSession) error {
	ctx := r.Context()
	id := r.PathValue("id")

	var err error
	switch app.TaskAction(r.PathValue("action")) {
	case app.ActionStart:
		err = s.svc.Timer.Start(ctx, sess, id)
	case app.ActionPause:
		err = s.svc.Timer.Pause(ctx, sess, id)
	case app.ActionResume:
		err = s.svc.Timer.Resume(ctx, sess, id)
	case app.ActionComplete:
		err = s.svc.Timer.Complete(ctx, sess, id)
	case app.ActionReopen:
		err = s.svc.Tasks.Reopen(ctx, sess, id)
	default:
		http.NotFound(w, r)
		return nil
	}
	if err != nil {
		return err
	}
	return s.handleDashboard(w, r, "", sess)
}

type breakResponse struct {
	Active    bool               `json:"active"`
	Dashboard *app.DashboardView `json:"dashboard"`
}

func (s *Server) handleBreak(w http.ResponseWriter, r *http.Request, _ string, sess *domain.UserSession) error {
	active, err := s.svc.Timer.ToggleGlobalPause(r.Context(), sess)
	if err != nil {
		return err
	}
	view, err := s.svc.Dashboard.Build(r.Context(), sess)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, breakResponse{Active: active, Dashboard: view})
	return nil
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request, _ string, _ *domain.UserSession) error {
	report, err := s.svc.Report.Build(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, report)
	return nil
}
