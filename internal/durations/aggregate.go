// Package durations rebuilds elapsed totals from session and login records.
//
// Every function is pure: totals are recomputed from the records on each
// call and nothing is cached or written back.
package durations

import (
	"cmp"
	"slices"
	"time"

	"github.com/andihoo/chrono/internal/domain"
)

// TotalMissionTime sums the stored durations of finalized mission records for
// the task. Open records contribute nothing.
func TotalMissionTime(records []*domain.SessionRecord, taskID string) int64 {
	var total int64
	for _, r := range records {
		if r.IsMission() && r.TaskID == taskID && r.IsFinalized() {
			total += r.DurationSeconds
		}
	}
	return total
}

// LiveMissionTime is TotalMissionTime plus now - start_at for every open
// mission record of the task.
func LiveMissionTime(records []*domain.SessionRecord, taskID string, now time.Time) int64 {
	var total int64
	for _, r := range records {
		if r.IsMission() && r.TaskID == taskID {
			total += r.ElapsedAt(now)
		}
	}
	return total
}

// LiveMissionTimeByTask computes LiveMissionTime for every task at once.
func LiveMissionTimeByTask(records []*domain.SessionRecord, now time.Time) map[string]int64 {
	out := make(map[string]int64)
	for _, r := range records {
		if r.IsMission() {
			out[r.TaskID] += r.ElapsedAt(now)
		}
	}
	return out
}

// TotalPauseTime sums finalized records of the given kind for one user.
func TotalPauseTime(records []*domain.SessionRecord, email string, kind domain.SessionKind) int64 {
	var total int64
	for _, r := range records {
		if r.UserEmail == email && r.Kind == kind && r.IsFinalized() {
			total += r.DurationSeconds
		}
	}
	return total
}

// PauseTimeByUser groups finalized records of the given kind by user.
func PauseTimeByUser(records []*domain.SessionRecord, kind domain.SessionKind) map[string]int64 {
	out := make(map[string]int64)
	for _, r := range records {
		if r.Kind == kind && r.IsFinalized() {
			out[r.UserEmail] += r.DurationSeconds
		}
	}
	return out
}

// TotalLoginTime sums closed logins of one user. An open login counts zero.
func TotalLoginTime(logins []*domain.Login, email string) int64 {
	var total int64
	for _, l := range logins {
		if l.UserEmail == email && !l.IsOpen() {
			total += l.TotalLoggedSeconds
		}
	}
	return total
}

// LoginTimeByUser groups closed logins by user.
func LoginTimeByUser(logins []*domain.Login) map[string]int64 {
	out := make(map[string]int64)
	for _, l := range logins {
		if !l.IsOpen() {
			out[l.UserEmail] += l.TotalLoggedSeconds
		}
	}
	return out
}

// Total is one keyed entry of a grouped total.
type Total struct {
	Key     string
	Seconds int64
}

// Sorted flattens a grouped total, largest first, ties broken by key.
func Sorted(m map[string]int64) []Total {
	out := make([]Total, 0, len(m))
	for k, v := range m {
		out = append(out, Total{Key: k, Seconds: v})
	}
	slices.SortFunc(out, func(a, b Total) int {
		if c := cmp.Compare(b.Seconds, a.Seconds); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}
