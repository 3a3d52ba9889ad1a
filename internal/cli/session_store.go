package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andihoo/chrono/internal/domain"
	"github.com/andihoo/chrono/internal/service"
)

// SessionStore keeps the CLI user's session context between commands.
// Load returns service.ErrNotLoggedIn when nothing is saved.
type SessionStore interface {
	Load(ctx context.Context) (*domain.UserSession, error)
	Save(ctx context.Context, sess *domain.UserSession) error
	Clear(ctx context.Context) error
}

type FileSessionStore struct {
	path string
}

func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

func (s *FileSessionStore) Save(_ context.Context, sess *domain.UserSession) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	payload, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	// Atomic replace.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

func (s *FileSessionStore) Load(_ context.Context) (*domain.UserSession, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, service.ErrNotLoggedIn
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}
	var sess domain.UserSession
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if sess.Email == "" {
		return nil, service.ErrNotLoggedIn
	}
	return &sess, nil
}

func (s *FileSessionStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
