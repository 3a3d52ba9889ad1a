package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/andihoo/chrono/internal/app"
	"github.com/andihoo/chrono/internal/clock"
	"github.com/andihoo/chrono/internal/domain"
	"github.com/andihoo/chrono/internal/repository"
)

type authService struct {
	users     repository.UserRepo
	logins    repository.LoginRepo
	timer     TimerService
	clock     clock.Clock
	bootstrap map[string]*domain.User
	logger    *slog.Logger
	observer  UseCaseObserver
}

// NewAuthService builds the login flow. Bootstrap users are written to the
// store the first time they log in.
func NewAuthService(
	users repository.UserRepo,
	logins repository.LoginRepo,
	timer TimerService,
	clk clock.Clock,
	bootstrap []*domain.User,
	logger *slog.Logger,
	observers ...UseCaseObserver,
) AuthService {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	known := make(map[string]*domain.User, len(bootstrap))
	for _, u := range bootstrap {
		known[domain.NormalizeEmail(u.Email)] = u
	}
	return &authService{
		users:     users,
		logins:    logins,
		timer:     timer,
		clock:     clk,
		bootstrap: known,
		logger:    logger,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *authService) Login(ctx context.Context, req app.LoginRequest) (sess *domain.UserSession, err error) {
	startedAt := time.Now()
	email := domain.NormalizeEmail(req.Email)
	fields := map[string]any{"email": email}
	defer func() { observe(ctx, s.observer, "login", startedAt, fields, err) }()

	if email == "" {
		return nil, app.NewValidationError(app.ValidationErrEmptyEmail, "an email address is required")
	}
	if addr, perr := mail.ParseAddress(email); perr != nil || addr.Address != email {
		return nil, app.NewValidationError(app.ValidationErrInvalidEmail, "%q is not a valid email address", req.Email)
	}

	var user *domain.User
	user, err = s.resolveUser(ctx, email, strings.TrimSpace(req.Name))
	if err != nil {
		return nil, err
	}
	fields["role"] = string(user.Role)

	login := &domain.Login{
		ID:        domain.NewLoginID(),
		UserEmail: user.Email,
		LoginAt:   s.clock.Now(),
	}
	if err = s.logins.Create(ctx, login); err != nil {
		return nil, fmt.Errorf("recording login: %w", err)
	}

	sess = domain.NewUserSession(user, login.ID)
	if err = s.timer.Reconcile(ctx, sess); err != nil {
		return nil, fmt.Errorf("restoring timer state: %w", err)
	}
	fields["state"] = sess.State().String()
	return sess, nil
}

// resolveUser finds the stored user, syncing a bootstrap account or creating
// a new user account when needed.
func (s *authService) resolveUser(ctx context.Context, email, name string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if known, ok := s.bootstrap[email]; ok {
		user = &domain.User{Email: email, Name: known.Name, Role: known.Role}
	} else {
		if name == "" {
			return nil, app.NewValidationError(app.ValidationErrNameRequired, "%s has no account yet; a name is required to create one", email)
		}
		user = &domain.User{Email: email, Name: name, Role: domain.RoleUser}
	}
	user.CreatedAt = s.clock.Now()
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

func (s *authService) Logout(ctx context.Context, sess *domain.UserSession) (err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() { observe(ctx, s.observer, "logout", startedAt, fields, err) }()

	if sess == nil {
		return ErrNotLoggedIn
	}
	fields["email"] = sess.Email

	if _, err = s.timer.ExpireGlobalPause(ctx, sess); err != nil {
		return err
	}

	var login *domain.Login
	if sess.LoginID != "" {
		login, err = s.logins.GetByID(ctx, sess.LoginID)
	} else {
		login, err = s.logins.LatestForUser(ctx, sess.Email)
	}
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.WarnContext(ctx, "no login row to close", "email", sess.Email, "login_id", sess.LoginID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading login: %w", err)
	}
	if !login.IsOpen() {
		return nil
	}

	if err = login.Close(s.clock.Now()); err != nil {
		return err
	}
	fields["total_logged_seconds"] = login.TotalLoggedSeconds
	err = s.logins.Close(ctx, login)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.WarnContext(ctx, "login row vanished before close", "login_id", login.ID)
		err = nil
	}
	return err
}
