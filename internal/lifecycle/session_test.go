// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

package lifecycle_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pockwidgets/widgetctl/internal/lifecycle"
	"github.com/pockwidgets/widgetctl/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

type recorder struct {
	mu     sync.Mutex
	states []lifecycle.State
	views  []lifecycle.ViewModel
}

func (r *recorder) observe(state lifecycle.State, view lifecycle.ViewModel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.states = append(r.states, state)
	r.views = append(r.views, view)
}

func (r *recorder) kinds() []lifecycle.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()

	kinds := make([]lifecycle.Kind, 0, len(r.states))
	for _, state := range r.states {
		kinds = append(kinds, state.Kind())
	}

	return kinds
}

func (r *recorder) snapshot() []lifecycle.State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]lifecycle.State(nil), r.states...)
}

func startSession(t *testing.T, session *lifecycle.Session) <-chan error {
	t.Helper()

	result := make(chan error, 1)

	go func() {
		result <- session.Run(context.Background())
	}()

	return result
}

func waitForKind(t *testing.T, session *lifecycle.Session, kind lifecycle.Kind) {
	t.Helper()

	require.Eventually(t, func() bool {
		return session.State().Kind() == kind
	}, waitFor, 5*time.Millisecond, "session never reached %s, last %s", kind, session.State())
}

func TestSessionUpdateScenario(t *testing.T) {
	t.Parallel()

	widget := testutil.SampleWidget()
	version := testutil.SampleVersion()

	installer := &testutil.MockInstaller{Progress: []float64{0.5}}
	installer.On("Update", mock.Anything, widget, version).Return(nil).Once()

	app := &testutil.MockAppController{}
	app.On("Relaunch", mock.Anything).Return(nil).Once()

	host := &testutil.RecordingHost{}
	rec := &recorder{}

	session := lifecycle.NewSession(
		lifecycle.Update(widget, version),
		&lifecycle.Effects{Installer: installer, App: app, Host: host},
		lifecycle.WithObserver(rec.observe),
	)
	done := startSession(t, session)

	require.True(t, session.Post(lifecycle.Confirmed{}))
	waitForKind(t, session, lifecycle.KindUpdated)

	require.True(t, session.Activate())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("session did not end after acknowledgment")
	}

	session.Wait()

	states := rec.snapshot()
	require.Len(t, states, 4)
	assert.True(t, states[0].Equal(lifecycle.Update(widget, version)))
	assert.True(t, states[1].Equal(lifecycle.Downloading(widget, 0)))
	assert.True(t, states[2].Equal(lifecycle.Downloading(widget, 0.5)))
	assert.True(t, states[3].Equal(lifecycle.Updated(widget)))

	app.AssertNumberOfCalls(t, "Relaunch", 1)
	app.AssertNotCalled(t, "Reload", mock.Anything, mock.Anything)
	installer.AssertExpectations(t)
	assert.Equal(t, 1, host.Closes())
	assert.False(t, session.Alive())
}

func TestSessionInvalidPathScenario(t *testing.T) {
	t.Parallel()

	parser := &testutil.MockParser{}
	parser.On("Parse", mock.Anything, "/tmp/broken.pock").Return(nil, errors.New("bad format")).Once()

	rec := &recorder{}
	host := &testutil.RecordingHost{}

	session := lifecycle.NewSession(
		lifecycle.DragDrop(),
		&lifecycle.Effects{Parser: parser, Host: host},
		lifecycle.WithObserver(rec.observe),
	)
	done := startSession(t, session)

	session.Choose(context.Background(), "/tmp/broken.pock")
	waitForKind(t, session, lifecycle.KindError)

	view := session.View()
	assert.Equal(t, "error", strings.ToLower(view.Title))
	assert.Contains(t, view.Body, "bad format")
	assert.False(t, view.SecondaryButtonVisible)
	assert.Equal(t, "Close", view.PrimaryButtonLabel)

	require.True(t, session.Activate())
	require.NoError(t, <-done)

	assert.Equal(t, []lifecycle.Kind{lifecycle.KindDragDrop, lifecycle.KindError}, rec.kinds())
	assert.Equal(t, 1, host.Closes())
	parser.AssertExpectations(t)
}

func TestSessionChooseFileRequestsPath(t *testing.T) {
	t.Parallel()

	widget := testutil.SampleWidget()

	parser := &testutil.MockParser{}
	parser.On("Parse", mock.Anything, "/widgets/weather.pock").Return(widget, nil).Once()

	installer := &testutil.MockInstaller{}
	installer.On("Install", mock.Anything, widget).Return(nil).Once()

	app := &testutil.MockAppController{}
	app.On("Reload", mock.Anything, true).Return(nil).Once()

	host := &testutil.RecordingHost{}
	session := lifecycle.NewSession(lifecycle.DragDrop(), &lifecycle.Effects{
		Parser: parser, Installer: installer, App: app, Host: host,
	})
	done := startSession(t, session)

	require.True(t, session.Activate())
	require.Eventually(t, func() bool { return host.Requests() == 1 }, waitFor, 5*time.Millisecond)

	session.Choose(context.Background(), "/widgets/weather.pock")
	waitForKind(t, session, lifecycle.KindInstall)

	require.True(t, session.Activate())
	waitForKind(t, session, lifecycle.KindInstalled)

	require.True(t, session.Activate())
	require.NoError(t, <-done)

	app.AssertExpectations(t)
	app.AssertNotCalled(t, "Relaunch", mock.Anything)
	assert.Equal(t, 1, host.Closes())
}

func TestSessionEmptyChoiceIsUnknownError(t *testing.T) {
	t.Parallel()

	session := lifecycle.NewSession(lifecycle.DragDrop(), &lifecycle.Effects{Parser: &testutil.MockParser{}})
	done := startSession(t, session)

	session.Choose(context.Background(), "")
	waitForKind(t, session, lifecycle.KindError)

	assert.Equal(t, "invalid bundle: unknown error", session.State().Err().Description())

	session.Dismiss()
	require.NoError(t, <-done)
}

func TestSessionLateCallbackIsIgnored(t *testing.T) {
	t.Parallel()

	widget := testutil.SampleWidget()
	release := make(chan struct{})

	installer := &testutil.MockInstaller{}
	installer.On("Install", mock.Anything, widget).
		Run(func(mock.Arguments) { <-release }).
		Return(errors.New("too late")).
		Once()

	host := &testutil.RecordingHost{}
	rec := &recorder{}

	session := lifecycle.NewSession(
		lifecycle.Install(widget),
		&lifecycle.Effects{Installer: installer, Host: host},
		lifecycle.WithObserver(rec.observe),
	)
	done := startSession(t, session)

	require.True(t, session.Activate())
	waitForKind(t, session, lifecycle.KindInstalling)

	require.True(t, session.Cancel())
	require.NoError(t, <-done)
	assert.Equal(t, 1, host.Closes())

	close(release)

	require.NotPanics(t, session.Wait)

	assert.False(t, session.Alive())
	assert.Equal(t, lifecycle.KindInstalling, session.State().Kind())
	assert.Equal(t, []lifecycle.Kind{lifecycle.KindInstall, lifecycle.KindInstalling}, rec.kinds())
	assert.False(t, session.Post(lifecycle.Completed{}), "posting after dismissal must be a no-op")
}

func TestSessionIgnoresInvalidEvents(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	session := lifecycle.NewSession(lifecycle.Remove(testutil.SampleWidget()), nil, lifecycle.WithObserver(rec.observe))
	done := startSession(t, session)

	require.Eventually(t, func() bool { return len(rec.kinds()) == 1 }, waitFor, 5*time.Millisecond)

	require.True(t, session.Post(lifecycle.ProgressReported{Value: 0.3}))
	require.True(t, session.Post(lifecycle.Acknowledged{}))
	require.True(t, session.Post(lifecycle.Completed{}))
	require.True(t, session.Cancel())
	require.NoError(t, <-done)

	assert.Equal(t, []lifecycle.Kind{lifecycle.KindRemove}, rec.kinds())
}

func TestSessionRunStopsWithContext(t *testing.T) {
	t.Parallel()

	session := lifecycle.NewSession(lifecycle.DragDrop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, session.Run(ctx), context.Canceled)
	assert.False(t, session.Alive())
	require.ErrorIs(t, session.Run(context.Background()), lifecycle.ErrSessionDismissed)
}
