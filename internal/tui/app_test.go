// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pockwidgets/widgetctl/internal/application"
	"github.com/pockwidgets/widgetctl/internal/domain"
	"github.com/pockwidgets/widgetctl/internal/lifecycle"
	"github.com/pockwidgets/widgetctl/internal/testutil"
	"github.com/pockwidgets/widgetctl/internal/tui/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*App, *testutil.MockInstaller) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	loader := &testutil.MockLoader{}
	loader.On("Installed", mock.Anything).Return([]domain.WidgetRef{testutil.SampleWidget()}, nil)

	installer := &testutil.MockInstaller{}

	service := application.NewWidgetService(application.Dependencies{
		Loader:    loader,
		Parser:    &testutil.MockParser{},
		Installer: installer,
	})
	require.NoError(t, service.Reload(ctx, false))

	app := NewApp(ctx, Dependencies{Service: service, StartDir: t.TempDir()})
	t.Cleanup(app.Close)

	return app, installer
}

// pump feeds subscription messages into app until match accepts one.
func pump(t *testing.T, app *App, match func(tea.Msg) bool) {
	t.Helper()

	timeout := time.After(2 * time.Second)

	for {
		select {
		case msg := <-app.Events():
			app.Update(msg)

			if match(msg) {
				return
			}
		case <-timeout:
			t.Fatal("timed out waiting for message")
		}
	}
}

func viewOf(kind lifecycle.Kind) func(tea.Msg) bool {
	return func(msg tea.Msg) bool {
		view, ok := msg.(viewMsg)

		return ok && view.state.Kind() == kind
	}
}

func TestAppRemoveFlowRelaunches(t *testing.T) {
	t.Parallel()

	app, installer := newTestApp(t)
	installer.On("Uninstall", mock.Anything, testutil.SampleWidget()).Return(nil)

	app.Update(models.OpenWizardMsg{State: lifecycle.Remove(testutil.SampleWidget())})
	require.NotNil(t, app.Wizard())
	pump(t, app, viewOf(lifecycle.KindRemove))

	app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	pump(t, app, viewOf(lifecycle.KindRemoved))
	assert.Equal(t, lifecycle.KindRemoved, app.Wizard().State().Kind())

	app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	pump(t, app, func(msg tea.Msg) bool {
		_, ok := msg.(hostClosedMsg)

		return ok
	})
	assert.Nil(t, app.Session())

	deadline := time.After(2 * time.Second)
	for !app.Relaunch() {
		select {
		case msg := <-app.Events():
			app.Update(msg)
		case <-deadline:
			t.Fatal("relaunch was not requested")
		}
	}

	installer.AssertExpectations(t)
}

func TestAppCancelReturnsToManager(t *testing.T) {
	t.Parallel()

	app, installer := newTestApp(t)

	app.Update(models.OpenWizardMsg{State: lifecycle.Remove(testutil.SampleWidget())})
	pump(t, app, viewOf(lifecycle.KindRemove))

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	pump(t, app, func(msg tea.Msg) bool {
		_, ok := msg.(hostClosedMsg)

		return ok
	})

	assert.Nil(t, app.Wizard())
	assert.False(t, app.Relaunch())
	installer.AssertNotCalled(t, "Uninstall", mock.Anything, mock.Anything)
}

func TestAppChooseOpensPicker(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t)

	app.Update(models.OpenWizardMsg{State: lifecycle.DragDrop()})
	pump(t, app, viewOf(lifecycle.KindDragDrop))

	app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	pump(t, app, func(msg tea.Msg) bool {
		_, ok := msg.(pathRequestedMsg)

		return ok
	})

	assert.True(t, app.Wizard().Picking())
}

func TestAppIgnoresStaleSession(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t)

	app.Update(models.OpenWizardMsg{State: lifecycle.Remove(testutil.SampleWidget())})
	stale := app.Session()

	app.Update(models.OpenWizardMsg{State: lifecycle.DragDrop()})
	require.NotSame(t, stale, app.Session())
	assert.False(t, stale.Alive())

	removed := lifecycle.Removed(testutil.SampleWidget())
	app.Update(viewMsg{session: stale, state: removed, view: lifecycle.Render(removed)})
	app.Update(hostClosedMsg{session: stale})

	require.NotNil(t, app.Wizard())
	assert.Equal(t, lifecycle.KindDragDrop, app.Wizard().State().Kind())
}

func TestAppReloadError(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t)

	app.Update(reloadDoneMsg{err: errors.New("failed to load widgets: permission denied")})
	assert.Contains(t, app.View(), "permission denied")
}

func TestAppQuit(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, app.View())

	app.Close()
	app.send(serviceChangedMsg{})
}
