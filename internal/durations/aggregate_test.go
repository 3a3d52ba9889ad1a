package durations

import (
	"math/rand"
	"testing"
	"time"

	"github.com/andihoo/chrono/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func mission(taskID, email string, start time.Time, secs int64, finalized bool) *domain.SessionRecord {
	r := domain.NewMissionRecord(taskID, email, start, false)
	if finalized {
		if err := r.Pause(start.Add(time.Duration(secs) * time.Second)); err != nil {
			panic(err)
		}
	}
	return r
}

func global(email string, start time.Time, secs int64, finalized bool) *domain.SessionRecord {
	r := domain.NewGlobalRecord(email, start)
	if finalized {
		if err := r.End(start.Add(time.Duration(secs) * time.Second)); err != nil {
			panic(err)
		}
	}
	return r
}

func TestTotalMissionTime_SumsFinalizedOnly(t *testing.T) {
	records := []*domain.SessionRecord{
		mission("T-1", "a@x.io", t0, 100, true),
		mission("T-1", "a@x.io", t0.Add(time.Hour), 200, true),
		mission("T-1", "b@x.io", t0.Add(2*time.Hour), 50, true),
		mission("T-1", "a@x.io", t0.Add(3*time.Hour), 0, false),
		mission("T-2", "a@x.io", t0, 999, true),
		global("a@x.io", t0, 500, true),
	}
	assert.Equal(t, int64(350), TotalMissionTime(records, "T-1"))
	assert.Equal(t, int64(999), TotalMissionTime(records, "T-2"))
	assert.Equal(t, int64(0), TotalMissionTime(records, "T-3"))
}

func TestLiveMissionTime_IncludesOpenRecord(t *testing.T) {
	open := mission("T-1", "a@x.io", t0.Add(time.Hour), 0, false)
	records := []*domain.SessionRecord{
		mission("T-1", "a@x.io", t0, 100, true),
		open,
	}
	now := t0.Add(time.Hour + 30*time.Second)
	assert.Equal(t, int64(130), LiveMissionTime(records, "T-1", now))
	assert.Equal(t, int64(100), TotalMissionTime(records, "T-1"))

	byTask := LiveMissionTimeByTask(records, now)
	assert.Equal(t, int64(130), byTask["T-1"])
}

func TestTotalPauseTime_ByKindAndUser(t *testing.T) {
	records := []*domain.SessionRecord{
		mission("T-1", "a@x.io", t0, 60, true),
		mission("T-1", "a@x.io", t0, 0, false),
		global("a@x.io", t0, 120, true),
		global("a@x.io", t0, 0, false),
		global("b@x.io", t0, 30, true),
	}
	assert.Equal(t, int64(60), TotalPauseTime(records, "a@x.io", domain.SessionMission))
	assert.Equal(t, int64(120), TotalPauseTime(records, "a@x.io", domain.SessionGlobal))
	assert.Equal(t, int64(30), TotalPauseTime(records, "b@x.io", domain.SessionGlobal))

	byUser := PauseTimeByUser(records, domain.SessionGlobal)
	assert.Equal(t, map[string]int64{"a@x.io": 120, "b@x.io": 30}, byUser)
}

func TestTotalLoginTime_OpenLoginCountsZero(t *testing.T) {
	closed := &domain.Login{ID: "L-1", UserEmail: "a@x.io", LoginAt: t0}
	require.NoError(t, closed.Close(t0.Add(90*time.Minute)))
	open := &domain.Login{ID: "L-2", UserEmail: "a@x.io", LoginAt: t0.Add(2 * time.Hour)}
	other := &domain.Login{ID: "L-3", UserEmail: "b@x.io", LoginAt: t0}
	require.NoError(t, other.Close(t0.Add(time.Minute)))

	logins := []*domain.Login{closed, open, other}
	assert.Equal(t, int64(5400), TotalLoginTime(logins, "a@x.io"))
	assert.Equal(t, map[string]int64{"a@x.io": 5400, "b@x.io": 60}, LoginTimeByUser(logins))
}

func TestSorted(t *testing.T) {
	got := Sorted(map[string]int64{"b": 10, "a": 10, "c": 99})
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].Key)
	assert.Equal(t, "a", got[1].Key)
	assert.Equal(t, "b", got[2].Key)
}

// TestTotalMissionTime_Invariants_MatchesWorkedWallClock builds random
// start/pause sequences and checks the finalized total equals the sum of the
// worked spans, and the live total adds exactly the open span.
func TestTotalMissionTime_Invariants_MatchesWorkedWallClock(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		now := t0
		var records []*domain.SessionRecord
		var worked int64

		spans := rng.Intn(10) + 1
		for i := 0; i < spans; i++ {
			now = now.Add(time.Duration(rng.Intn(600)) * time.Second)
			secs := int64(rng.Intn(3600))
			r := domain.NewMissionRecord("T-1", "a@x.io", now, i > 0)
			now = now.Add(time.Duration(secs) * time.Second)
			require.NoError(t, r.Pause(now))
			records = append(records, r)
			worked += secs
		}

		assert.Equal(t, worked, TotalMissionTime(records, "T-1"), "trial %d", trial)

		openSecs := int64(rng.Intn(300))
		open := domain.NewMissionRecord("T-1", "a@x.io", now, true)
		records = append(records, open)
		live := LiveMissionTime(records, "T-1", now.Add(time.Duration(openSecs)*time.Second))

		assert.Equal(t, worked, TotalMissionTime(records, "T-1"), "trial %d: open record must not count", trial)
		assert.Equal(t, worked+openSecs, live, "trial %d", trial)
		assert.GreaterOrEqual(t, live, int64(0))
	}
}
