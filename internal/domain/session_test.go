package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMissionRecord(t *testing.T) {
	r := NewMissionRecord("T-1", "a@x.io", testNow, false)
	assert.True(t, strings.HasPrefix(r.ID, "S-"))
	assert.Equal(t, SessionMission, r.Kind)
	assert.Nil(t, r.ResumeAt)
	assert.False(t, r.IsFinalized())

	resumed := NewMissionRecord("T-1", "a@x.io", testNow, true)
	require.NotNil(t, resumed.ResumeAt)
	assert.Equal(t, resumed.StartAt, *resumed.ResumeAt)
}

func TestNewGlobalRecord(t *testing.T) {
	r := NewGlobalRecord("a@x.io", testNow)
	assert.True(t, strings.HasPrefix(r.ID, "P-"))
	assert.Equal(t, GlobalPauseTaskID, r.TaskID)
	assert.True(t, r.IsGlobal())
}

func TestSessionRecord_Pause(t *testing.T) {
	r := NewMissionRecord("T-1", "a@x.io", testNow, false)
	require.NoError(t, r.Pause(testNow.Add(100*time.Second+900*time.Millisecond)))
	assert.True(t, r.IsFinalized())
	assert.Equal(t, int64(100), r.DurationSeconds)

	require.ErrorIs(t, r.Pause(testNow.Add(time.Hour)), ErrInvalidTransition)
	require.ErrorIs(t, r.End(testNow.Add(time.Hour)), ErrInvalidTransition)
	assert.Equal(t, int64(100), r.DurationSeconds, "duration is computed once")
}

func TestSessionRecord_EndBeforeStartClampsToZero(t *testing.T) {
	r := NewGlobalRecord("a@x.io", testNow)
	require.NoError(t, r.End(testNow.Add(-time.Minute)))
	assert.Equal(t, int64(0), r.DurationSeconds)
}

func TestSessionRecord_ElapsedAt(t *testing.T) {
	r := NewMissionRecord("T-1", "a@x.io", testNow, false)
	assert.Equal(t, int64(42), r.ElapsedAt(testNow.Add(42*time.Second)))

	require.NoError(t, r.End(testNow.Add(10*time.Second)))
	assert.Equal(t, int64(10), r.ElapsedAt(testNow.Add(time.Hour)))
}

func TestLogin_Close(t *testing.T) {
	l := &Login{ID: "L-1", UserEmail: "a@x.io", LoginAt: testNow}
	assert.True(t, l.IsOpen())
	require.NoError(t, l.Close(testNow.Add(2*time.Hour)))
	assert.False(t, l.IsOpen())
	assert.Equal(t, int64(7200), l.TotalLoggedSeconds)
	require.ErrorIs(t, l.Close(testNow.Add(3*time.Hour)), ErrInvalidTransition)
}

func TestUserSession_State(t *testing.T) {
	s := NewUserSession(&User{Email: "a@x.io", Role: RoleAdmin}, "L-1")
	assert.Equal(t, StateIdle, s.State())
	assert.True(t, s.IsAdmin())

	s.ActivateTask("T-1", "S-1", testNow)
	assert.Equal(t, StateTaskActive, s.State())

	s.ClearTask()
	s.EnterGlobalPause("P-1", testNow)
	assert.Equal(t, StateGloballyPaused, s.State())
	assert.Equal(t, "globally_paused", s.State().String())

	s.LeaveGlobalPause()
	assert.Equal(t, StateIdle, s.State())
	assert.True(t, s.GlobalPauseStart.IsZero())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ann@x.io", NormalizeEmail("  Ann@X.io "))
}
