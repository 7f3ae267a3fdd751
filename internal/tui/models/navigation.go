// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

// Package models holds the bubbletea screens of the widget manager and the
// messages they exchange with the root application model.
package models

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pockwidgets/widgetctl/internal/lifecycle"
)

// OpenWizardMsg asks the application to start a lifecycle session.
type OpenWizardMsg struct {
	State lifecycle.State
}

// ReloadRequestMsg asks the application to rescan widgets.
type ReloadRequestMsg struct {
	FetchLatestVersions bool
}

// openWizard returns a command emitting OpenWizardMsg.
func openWizard(state lifecycle.State) tea.Cmd {
	return func() tea.Msg {
		return OpenWizardMsg{State: state}
	}
}

// requestReload returns a command emitting ReloadRequestMsg.
func requestReload(fetch bool) tea.Cmd {
	return func() tea.Msg {
		return ReloadRequestMsg{FetchLatestVersions: fetch}
	}
}
