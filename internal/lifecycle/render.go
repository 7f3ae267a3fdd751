// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

package lifecycle

import (
	"github.com/pockwidgets/widgetctl/internal/i18n"
)

// ViewModel is every field a host UI needs to draw a session.
type ViewModel struct {
	Title string `json:"title"`
	Body  string `json:"body"`

	ProgressVisible       bool    `json:"progress_visible"`
	ProgressIndeterminate bool    `json:"progress_indeterminate"`
	ProgressValue         float64 `json:"progress_value"`

	ChangelogVisible     bool   `json:"changelog_visible"`
	ChangelogTitle       string `json:"changelog_title,omitempty"`
	ChangelogText        string `json:"changelog_text,omitempty"`
	ChangelogPlaceholder string `json:"changelog_placeholder,omitempty"`

	PrimaryButtonLabel     string `json:"primary_button_label"`
	PrimaryButtonEnabled   bool   `json:"primary_button_enabled"`
	SecondaryButtonLabel   string `json:"secondary_button_label,omitempty"`
	SecondaryButtonVisible bool   `json:"secondary_button_visible"`

	// AcceptsDrop is true while a dropped path would be taken as input.
	AcceptsDrop bool `json:"accepts_drop"`
}

// Render maps state to its view model using the English catalog.
func Render(state State) ViewModel {
	return RenderWith(i18n.Default(), state)
}

// RenderWith maps state to its view model using loc for every string.
func RenderWith(loc *i18n.Localizer, state State) ViewModel {
	view := ViewModel{
		PrimaryButtonEnabled:   !state.Busy(),
		SecondaryButtonVisible: !state.Terminal(),
		SecondaryButtonLabel:   loc.T(i18n.ActionCancel),
	}

	if state.Terminal() {
		view.SecondaryButtonLabel = ""
	}

	name := state.widget.Name

	switch state.kind {
	case KindDragDrop:
		view.Title = loc.T(i18n.DragDropTitle)
		view.Body = loc.T(i18n.DragDropBody)
		view.ChangelogPlaceholder = loc.T(i18n.DragDropFormats)
		view.PrimaryButtonLabel = loc.T(i18n.ActionChoose)
		view.AcceptsDrop = true
	case KindRemove:
		view.Title = loc.T(i18n.RemoveTitle, name)
		view.Body = loc.T(i18n.RemoveBody, name)
		view.ChangelogPlaceholder = loc.T(i18n.RemoveHint)
		view.PrimaryButtonLabel = loc.T(i18n.ActionRemove)
	case KindInstall:
		view.Title = loc.T(i18n.InstallTitle, name)
		view.Body = loc.T(i18n.InstallBody, name)
		view.ChangelogPlaceholder = loc.T(i18n.InstallHint)
		view.PrimaryButtonLabel = loc.T(i18n.ActionInstall)
	case KindUpdate:
		view.Title = loc.T(i18n.UpdateTitle, name)
		view.Body = loc.T(i18n.UpdateBody, state.widget.FullVersion(), state.version.Name)
		view.ChangelogVisible = true
		view.ChangelogTitle = loc.T(i18n.ChangelogTitle)
		view.ChangelogText = state.version.Changelog
		view.PrimaryButtonLabel = loc.T(i18n.ActionUpdate)
		view.SecondaryButtonLabel = loc.T(i18n.ActionLater)
	case KindRemoving:
		view.Title = loc.T(i18n.RemovingTitle, name)
		view.Body = loc.T(i18n.RemovingBody)
		view.ProgressVisible = true
		view.ProgressIndeterminate = true
		view.PrimaryButtonLabel = loc.T(i18n.ActionRemoving)
	case KindInstalling:
		view.Title = loc.T(i18n.InstallingTitle, name)
		view.Body = loc.T(i18n.InstallingBody)
		view.ProgressVisible = true
		view.ProgressIndeterminate = true
		view.PrimaryButtonLabel = loc.T(i18n.ActionInstalling)
	case KindDownloading:
		view.Title = loc.T(i18n.DownloadingTitle, name)
		view.Body = loc.T(i18n.DownloadingBody)
		view.ProgressVisible = true
		view.ProgressValue = ClampProgress(state.progress)
		view.PrimaryButtonLabel = loc.T(i18n.ActionDownloading)
	case KindError:
		view.Title = loc.T(i18n.ErrorTitle)
		view.Body = loc.T(i18n.ErrorBody, state.err.Description())
		view.PrimaryButtonLabel = loc.T(i18n.ActionClose)
	case KindRemoved:
		view.Title = loc.T(i18n.RemovedTitle)
		view.Body = loc.T(i18n.RemovedBody, name)
		view.PrimaryButtonLabel = loc.T(i18n.ActionRelaunch)
	case KindInstalled:
		view.Title = loc.T(i18n.InstalledTitle)
		view.Body = loc.T(i18n.InstalledBody, name)
		view.PrimaryButtonLabel = loc.T(i18n.ActionReload)
	case KindUpdated:
		view.Title = loc.T(i18n.UpdatedTitle)
		view.Body = loc.T(i18n.UpdatedBody, name)
		view.PrimaryButtonLabel = loc.T(i18n.ActionRelaunch)
	}

	return view
}
