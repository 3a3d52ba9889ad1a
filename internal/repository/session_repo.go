package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andihoo/chrono/internal/domain"
	"github.com/andihoo/chrono/internal/rowstore"
)

// RowSessionRepo implements SessionRepo over the sessions table. Rows whose
// start_at cannot be parsed are skipped; they contribute nothing to totals.
type RowSessionRepo struct {
	store rowstore.Store
}

func NewRowSessionRepo(store rowstore.Store) *RowSessionRepo {
	return &RowSessionRepo{store: store}
}

func (r *RowSessionRepo) Create(ctx context.Context, s *domain.SessionRecord) error {
	row := rowstore.Row{
		"session_id":       s.ID,
		"task_id":          s.TaskID,
		"user_email":       s.UserEmail,
		"start_at":         formatTime(s.StartAt),
		"pause_at":         formatNullableTime(s.PauseAt),
		"resume_at":        formatNullableTime(s.ResumeAt),
		"end_at":           formatNullableTime(s.EndAt),
		"duration_seconds": "",
		"kind":             string(s.Kind),
		"automatic":        boolToCell(s.Automatic),
	}
	if s.IsFinalized() {
		row["duration_seconds"] = formatSeconds(s.DurationSeconds)
	}
	if err := r.store.Append(ctx, rowstore.TableSessions, row); err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

func (r *RowSessionRepo) Finalize(ctx context.Context, s *domain.SessionRecord) error {
	fields := rowstore.Row{
		"pause_at":         formatNullableTime(s.PauseAt),
		"end_at":           formatNullableTime(s.EndAt),
		"duration_seconds": formatSeconds(s.DurationSeconds),
		"automatic":        boolToCell(s.Automatic),
	}
	err := r.store.UpdateByKey(ctx, rowstore.TableSessions, "session_id", s.ID, fields)
	if errors.Is(err, rowstore.ErrRowNotFound) {
		return fmt.Errorf("session %s: %w", s.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("finalizing session: %w", err)
	}
	return nil
}

func (r *RowSessionRepo) GetByID(ctx context.Context, id string) (*domain.SessionRecord, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range all {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
}

func (r *RowSessionRepo) ListAll(ctx context.Context) ([]*domain.SessionRecord, error) {
	rows, err := r.store.FetchAll(ctx, rowstore.TableSessions)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	out := make([]*domain.SessionRecord, 0, len(rows))
	for _, row := range rows {
		if s, ok := rowToSession(row); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *RowSessionRepo) ListByTask(ctx context.Context, taskID string) ([]*domain.SessionRecord, error) {
	return r.filter(ctx, func(s *domain.SessionRecord) bool { return s.TaskID == taskID })
}

func (r *RowSessionRepo) ListByUser(ctx context.Context, email string) ([]*domain.SessionRecord, error) {
	email = domain.NormalizeEmail(email)
	return r.filter(ctx, func(s *domain.SessionRecord) bool { return s.UserEmail == email })
}

func (r *RowSessionRepo) ListOpen(ctx context.Context, email string, kind domain.SessionKind) ([]*domain.SessionRecord, error) {
	email = domain.NormalizeEmail(email)
	return r.filter(ctx, func(s *domain.SessionRecord) bool {
		return !s.IsFinalized() && s.Kind == kind && (email == "" || s.UserEmail == email)
	})
}

func (r *RowSessionRepo) filter(ctx context.Context, keep func(*domain.SessionRecord) bool) ([]*domain.SessionRecord, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []*domain.SessionRecord
	for _, s := range all {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out, nil
}

func rowToSession(row rowstore.Row) (*domain.SessionRecord, bool) {
	start, err := parseTime(row["start_at"])
	if err != nil || strings.TrimSpace(row["session_id"]) == "" {
		return nil, false
	}
	s := &domain.SessionRecord{
		ID:              row["session_id"],
		TaskID:          row["task_id"],
		UserEmail:       domain.NormalizeEmail(row["user_email"]),
		StartAt:         start,
		PauseAt:         parseNullableTime(row["pause_at"]),
		ResumeAt:        parseNullableTime(row["resume_at"]),
		EndAt:           parseNullableTime(row["end_at"]),
		DurationSeconds: parseSeconds(row["duration_seconds"]),
		Automatic:       cellToBool(row["automatic"]),
	}
	kind, ok := domain.ParseSessionKind(row["kind"])
	switch {
	case !ok && s.TaskID == domain.GlobalPauseTaskID:
		kind = domain.SessionGlobal
	case !ok:
		kind = domain.SessionMission
	}
	s.Kind = kind
	if strings.EqualFold(strings.TrimSpace(row["kind"]), "auto_stop") {
		s.Automatic = true
	}
	return s, true
}
