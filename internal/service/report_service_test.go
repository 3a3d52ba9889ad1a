package service

import (
	"context"
	"testing"
	"time"

	"github.com/andihoo/chrono/internal/app"
	"github.com/andihoo/chrono/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_Totals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.addTask(t, "A", testutil.WithAssignee(aliceEmail))

	alice, err := f.auth.Login(ctx, app.LoginRequest{Email: aliceEmail})
	require.NoError(t, err)
	require.NoError(t, f.timer.Start(ctx, alice, task.ID))
	f.clock.Advance(100 * time.Second)
	require.NoError(t, f.timer.Pause(ctx, alice, task.ID))
	require.NoError(t, f.timer.StartGlobalPause(ctx, alice))
	f.clock.Advance(300 * time.Second)
	require.NoError(t, f.timer.EndGlobalPause(ctx, alice))
	require.NoError(t, f.timer.Resume(ctx, alice, task.ID))
	f.clock.Advance(20 * time.Second)
	require.NoError(t, f.timer.Complete(ctx, alice, task.ID))
	require.NoError(t, f.auth.Logout(ctx, alice))

	bob, err := f.auth.Login(ctx, app.LoginRequest{Email: bobEmail})
	require.NoError(t, err)
	f.clock.Advance(2 * time.Hour)
	require.NoError(t, f.auth.Logout(ctx, bob))

	report, err := f.report.Build(ctx)
	require.NoError(t, err)

	require.Len(t, report.CompletedTasks, 1)
	assert.Equal(t, task.ID, report.CompletedTasks[0].TaskID)
	assert.Equal(t, int64(120), report.CompletedTasks[0].TotalSeconds)
	assert.Equal(t, aliceEmail, report.CompletedTasks[0].ClosedBy)

	assert.Equal(t, []app.UserTotalView{
		{Email: bobEmail, Name: "Bob", Seconds: 7200},
		{Email: aliceEmail, Name: "Alice", Seconds: 420},
	}, report.LoginTotals)

	assert.Equal(t, []app.PauseTotalView{
		{Email: aliceEmail, Name: "Alice", Kind: "mission", Seconds: 120},
		{Email: aliceEmail, Name: "Alice", Kind: "global", Seconds: 300},
	}, report.PauseTotals)
}

func TestReport_EmptyStore(t *testing.T) {
	f := newFixture(t)
	report, err := f.report.Build(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.CompletedTasks)
	assert.NotNil(t, report.LoginTotals)
	assert.Empty(t, report.PauseTotals)
}
