package domain

import (
	"fmt"
	"strings"
	"time"
)

type User struct {
	Email     string
	Name      string
	Role      Role
	CreatedAt time.Time
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// NormalizeEmail trims and lower-cases an address so it can be used as a key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login is one login-to-logout span of a user.
type Login struct {
	ID                 string
	UserEmail          string
	LoginAt            time.Time
	LogoutAt           *time.Time
	TotalLoggedSeconds int64
}

func (l *Login) IsOpen() bool { return l.LogoutAt == nil }

func (l *Login) Close(at time.Time) error {
	if !l.IsOpen() {
		return fmt.Errorf("login %s already closed: %w", l.ID, ErrInvalidTransition)
	}
	l.LogoutAt = &at
	l.TotalLoggedSeconds = SecondsBetween(l.LoginAt, at)
	return nil
}
