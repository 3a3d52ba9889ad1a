package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/andihoo/chrono/internal/domain"
	"github.com/andihoo/chrono/internal/rowstore"
)

// RowUserRepo implements UserRepo over the users table, keyed by email.
type RowUserRepo struct {
	store rowstore.Store
}

func NewRowUserRepo(store rowstore.Store) *RowUserRepo {
	return &RowUserRepo{store: store}
}

func (r *RowUserRepo) Create(ctx context.Context, u *domain.User) error {
	u.Email = domain.NormalizeEmail(u.Email)
	row := rowstore.Row{
		"user_email": u.Email,
		"name":       u.Name,
		"role":       string(u.Role),
		"created_at": formatTime(u.CreatedAt),
	}
	if err := r.store.Append(ctx, rowstore.TableUsers, row); err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *RowUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
}

func (r *RowUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.store.FetchAll(ctx, rowstore.TableUsers)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	users := make([]*domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, &domain.User{
			Email:     domain.NormalizeEmail(row["user_email"]),
			Name:      row["name"],
			Role:      domain.ParseRole(row["role"]),
			CreatedAt: parseLenientTime(row["created_at"]),
		})
	}
	return users, nil
}

func (r *RowUserRepo) Update(ctx context.Context, u *domain.User) error {
	fields := rowstore.Row{"name": u.Name, "role": string(u.Role)}
	err := r.store.UpdateByKey(ctx, rowstore.TableUsers, "user_email", domain.NormalizeEmail(u.Email), fields)
	if errors.Is(err, rowstore.ErrRowNotFound) {
		return fmt.Errorf("user %s: %w", u.Email, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return nil
}
