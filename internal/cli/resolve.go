package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andihoo/chrono/internal/domain"
	"github.com/andihoo/chrono/internal/repository"
)

// resolveTaskID accepts a full task ID, an unambiguous ID prefix, or an
// exact title among the tasks visible to the user.
func resolveTaskID(ctx context.Context, app *App, email, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("task ID is required")
	}

	if t, err := app.Tasks.GetByID(ctx, input); err == nil {
		return t.ID, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	tasks, err := app.Tasks.ListVisible(ctx, email)
	if err != nil {
		return "", err
	}

	// 1. ID prefix, case-insensitive
	var matches []*domain.Task
	upper := strings.ToUpper(input)
	for _, t := range tasks {
		if strings.HasPrefix(strings.ToUpper(t.ID), upper) {
			matches = append(matches, t)
		}
	}

	// 2. Exact title
	if len(matches) == 0 {
		for _, t := range tasks {
			if strings.EqualFold(strings.TrimSpace(t.Title), input) {
				matches = append(matches, t)
			}
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("task %q: %w", input, repository.ErrNotFound)
	case 1:
		return matches[0].ID, nil
	default:
		return "", fmt.Errorf("task %q is ambiguous (%d matches)", input, len(matches))
	}
}
