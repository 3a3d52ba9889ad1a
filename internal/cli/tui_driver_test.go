package cli

import (
	"context"
	"testing"

	"github.com/andihoo/chrono/internal/app"
	"github.com/andihoo/chrono/internal/domain"
	"github.com/andihoo/chrono/internal/teatest"
	"github.com/stretchr/testify/require"
)

// TestDriver wraps teatest.Driver with access to appModel internals.
type TestDriver struct {
	*teatest.Driver
}

// NewTestDriver logs email in and drains the dashboard's first load.
func NewTestDriver(t *testing.T, h *testHarness, email string) *TestDriver {
	t.Helper()

	sess, err := h.app.Auth.Login(context.Background(), app.LoginRequest{Email: email, Name: "Tester"})
	require.NoError(t, err)

	d := teatest.New(t, newAppModel(h.app, sess), teatest.WithSize(120, 40))
	d.DrainInit()
	return &TestDriver{Driver: d}
}

func (d *TestDriver) appModel() appModel {
	return d.Model.(appModel)
}

func (d *TestDriver) ActiveViewID() ViewID {
	m := d.appModel()
	v := m.activeView()
	if v == nil {
		return ViewID(-1)
	}
	return v.ID()
}

func (d *TestDriver) ViewStackLen() int {
	return len(d.appModel().viewStack)
}

// Status returns the status line text and whether it is an error.
func (d *TestDriver) Status() (string, bool) {
	m := d.appModel()
	return m.status, m.statusIsErr
}

func (d *TestDriver) Session() *domain.UserSession {
	return d.appModel().state.Session
}

func (d *TestDriver) IsQuitting() bool {
	return d.Quitting || d.appModel().quitting
}

// PlainView renders the model without color codes.
func (d *TestDriver) PlainView() string {
	return stripANSI(d.View())
}
