package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/andihoo/chrono/internal/domain"
	"github.com/andihoo/chrono/internal/rowstore"
)

// RowLoginRepo implements LoginRepo over the logins table.
type RowLoginRepo struct {
	store rowstore.Store
}

func NewRowLoginRepo(store rowstore.Store) *RowLoginRepo {
	return &RowLoginRepo{store: store}
}

func (r *RowLoginRepo) Create(ctx context.Context, l *domain.Login) error {
	row := rowstore.Row{
		"login_id":             l.ID,
		"user_email":           domain.NormalizeEmail(l.UserEmail),
		"login_at":             formatTime(l.LoginAt),
		"logout_at":            formatNullableTime(l.LogoutAt),
		"total_logged_seconds": "",
	}
	if !l.IsOpen() {
		row["total_logged_seconds"] = formatSeconds(l.TotalLoggedSeconds)
	}
	if err := r.store.Append(ctx, rowstore.TableLogins, row); err != nil {
		return fmt.Errorf("inserting login: %w", err)
	}
	return nil
}

func (r *RowLoginRepo) Close(ctx context.Context, l *domain.Login) error {
	fields := rowstore.Row{
		"logout_at":            formatNullableTime(l.LogoutAt),
		"total_logged_seconds": formatSeconds(l.TotalLoggedSeconds),
	}
	err := r.store.UpdateByKey(ctx, rowstore.TableLogins, "login_id", l.ID, fields)
	if errors.Is(err, rowstore.ErrRowNotFound) {
		return fmt.Errorf("login %s: %w", l.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("closing login: %w", err)
	}
	return nil
}

func (r *RowLoginRepo) ListAll(ctx context.Context) ([]*domain.Login, error) {
	rows, err := r.store.FetchAll(ctx, rowstore.TableLogins)
	if err != nil {
		return nil, fmt.Errorf("listing logins: %w", err)
	}
	out := make([]*domain.Login, 0, len(rows))
	for _, row := range rows {
		at, err := parseTime(row["login_at"])
		if err != nil || row["login_id"] == "" {
			continue
		}
		out = append(out, &domain.Login{
			ID:                 row["login_id"],
			UserEmail:          domain.NormalizeEmail(row["user_email"]),
			LoginAt:            at,
			LogoutAt:           parseNullableTime(row["logout_at"]),
			TotalLoggedSeconds: parseSeconds(row["total_logged_seconds"]),
		})
	}
	return out, nil
}

func (r *RowLoginRepo) GetByID(ctx context.Context, id string) (*domain.Login, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range all {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, fmt.Errorf("login %s: %w", id, ErrNotFound)
}

func (r *RowLoginRepo) LatestForUser(ctx context.Context, email string) (*domain.Login, error) {
	email = domain.NormalizeEmail(email)
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].UserEmail == email {
			return all[i], nil
		}
	}
	return nil, fmt.Errorf("login for %s: %w", email, ErrNotFound)
}
