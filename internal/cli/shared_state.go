package cli

import (
	"context"

	"github.com/andihoo/chrono/internal/domain"
)

// SharedState holds context shared across all views via pointer.
type SharedState struct {
	App     *App
	Session *domain.UserSession

	// Terminal dimensions
	Width  int
	Height int
}

// persist saves the session so CLI commands run from another shell see the
// dashboard's changes.
func (s *SharedState) persist(ctx context.Context) error {
	if s.App.Sessions == nil {
		return nil
	}
	return s.App.Sessions.Save(ctx, s.Session)
}

// ContentHeight returns the available height for view content,
// accounting for header (2 lines), status line (1) and key hints (2).
func (s *SharedState) ContentHeight() int {
	h := s.Height - 5
	if h < 1 {
		return 1
	}
	return h
}
