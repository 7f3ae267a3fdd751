// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

package models

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pockwidgets/widgetctl/internal/domain"
	"github.com/pockwidgets/widgetctl/internal/i18n"
	"github.com/pockwidgets/widgetctl/internal/lifecycle"
	"github.com/pockwidgets/widgetctl/internal/testutil"
	"github.com/pockwidgets/widgetctl/internal/tui/styles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	activations int
	cancels     int
	chosen      []string
}

func (s *fakeSession) Activate() bool {
	s.activations++

	return true
}

func (s *fakeSession) Cancel() bool {
	s.cancels++

	return true
}

func (s *fakeSession) Choose(_ context.Context, path string) {
	s.chosen = append(s.chosen, path)
}

func newTestWizard(t *testing.T, state lifecycle.State) (*WizardModel, *fakeSession) {
	t.Helper()

	session := &fakeSession{}
	wizard := NewWizard(context.Background(), styles.New(), i18n.Default(), session)
	wizard.SetStartDir(t.TempDir())
	wizard.SetView(state, lifecycle.Render(state))

	return wizard, session
}

func TestWizardKeysPostEvents(t *testing.T) {
	t.Parallel()

	widget := testutil.SampleWidget()

	type testCase struct {
		name            string
		state           lifecycle.State
		key             tea.KeyMsg
		wantActivations int
		wantCancels     int
	}

	tests := []testCase{
		{name: "enter confirms removal", state: lifecycle.Remove(widget), key: tea.KeyMsg{Type: tea.KeyEnter}, wantActivations: 1},
		{name: "esc cancels removal", state: lifecycle.Remove(widget), key: tea.KeyMsg{Type: tea.KeyEsc}, wantCancels: 1},
		{name: "enter ignored while busy", state: lifecycle.Removing(widget), key: tea.KeyMsg{Type: tea.KeyEnter}},
		{name: "esc ignored on terminal state", state: lifecycle.Removed(widget), key: tea.KeyMsg{Type: tea.KeyEsc}},
		{name: "enter relaunches after update", state: lifecycle.Updated(widget), key: tea.KeyMsg{Type: tea.KeyEnter}, wantActivations: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			wizard, session := newTestWizard(t, tt.state)
			wizard.Update(tt.key)

			assert.Equal(t, tt.wantActivations, session.activations)
			assert.Equal(t, tt.wantCancels, session.cancels)
		})
	}
}

func TestWizardSetViewCommands(t *testing.T) {
	t.Parallel()

	widget := testutil.SampleWidget()

	type testCase struct {
		name    string
		state   lifecycle.State
		wantCmd bool
	}

	tests := []testCase{
		{name: "determinate progress animates", state: lifecycle.Downloading(widget, 0.4), wantCmd: true},
		{name: "indeterminate progress spins", state: lifecycle.Installing(widget), wantCmd: true},
		{name: "confirmation is static", state: lifecycle.Install(widget)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			wizard := NewWizard(context.Background(), styles.New(), nil, &fakeSession{})
			cmd := wizard.SetView(tt.state, lifecycle.Render(tt.state))

			assert.Equal(t, tt.wantCmd, cmd != nil)
			assert.Equal(t, tt.state.Kind(), wizard.State().Kind())
		})
	}
}

func TestWizardViewShowsChangelog(t *testing.T) {
	t.Parallel()

	state := lifecycle.Update(testutil.SampleWidget(), domain.VersionInfo{Name: "1.3.0", Changelog: "Faster refresh"})
	wizard, _ := newTestWizard(t, state)

	view := wizard.View()
	assert.Contains(t, view, wizard.ViewModel().Title)
	assert.Contains(t, view, i18n.Default().T(i18n.ChangelogTitle))
	assert.Contains(t, view, "Faster")
}

func TestWizardViewShowsPlaceholderForEmptyChangelog(t *testing.T) {
	t.Parallel()

	state := lifecycle.Update(testutil.SampleWidget(), domain.VersionInfo{Name: "1.3.0"})
	wizard, _ := newTestWizard(t, state)

	assert.Contains(t, wizard.View(), wizard.ViewModel().PrimaryButtonLabel)
}

func TestWizardPicker(t *testing.T) {
	t.Parallel()

	wizard, session := newTestWizard(t, lifecycle.DragDrop())

	cmd := wizard.StartPicker()
	assert.NotNil(t, cmd)
	require.True(t, wizard.Picking())
	assert.NotEmpty(t, wizard.View())

	wizard.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, wizard.Picking())
	assert.Empty(t, session.chosen)
	assert.Zero(t, session.cancels, "closing the picker keeps the session open")
}

func TestWizardDropChoosesPath(t *testing.T) {
	t.Parallel()

	widget := testutil.SampleWidget()

	type testCase struct {
		name       string
		state      lifecycle.State
		pasted     string
		wantChosen []string
	}

	tests := []testCase{
		{name: "plain path", state: lifecycle.DragDrop(), pasted: "/home/u/Weather.pock", wantChosen: []string{"/home/u/Weather.pock"}},
		{name: "quoted path", state: lifecycle.DragDrop(), pasted: "'/home/u/My Weather.pock' ", wantChosen: []string{"/home/u/My Weather.pock"}},
		{name: "escaped spaces", state: lifecycle.DragDrop(), pasted: `/home/u/My\ Weather.pock`, wantChosen: []string{"/home/u/My Weather.pock"}},
		{name: "blank paste", state: lifecycle.DragDrop(), pasted: "  \n"},
		{name: "ignored outside drop state", state: lifecycle.Install(widget), pasted: "/home/u/Weather.pock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			wizard, session := newTestWizard(t, tt.state)
			wizard.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(tt.pasted), Paste: true})

			assert.Equal(t, tt.wantChosen, session.chosen)
			assert.Zero(t, session.activations)
			assert.Zero(t, session.cancels)
		})
	}
}
