// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

// Package manager is the master-detail view model of installed widgets:
// one row per widget, a detail pane for the selection, and the lifecycle
// state the install wizard opens with.
package manager

import (
	"errors"
	"fmt"

	"github.com/pockwidgets/widgetctl/internal/domain"
	"github.com/pockwidgets/widgetctl/internal/i18n"
	"github.com/pockwidgets/widgetctl/internal/lifecycle"
	"github.com/sahilm/fuzzy"
)

// Errors returned by WizardState.
var (
	ErrNoSelection = errors.New("no widget selected")
	ErrNoUpdate    = errors.New("no update available")
)

// WizardAction is what the user asked the wizard to do for the selection.
type WizardAction int

// Wizard actions.
const (
	WizardUpdate WizardAction = iota
	WizardRemove
)

// Row is one line of the widget list.
type Row struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Loaded bool   `json:"loaded"`
	Dimmed bool   `json:"dimmed"`
	Badge  string `json:"badge,omitempty"`
}

// Detail is the pane describing the selected widget.
type Detail struct {
	Selected            bool                `json:"selected"`
	Name                string              `json:"name"`
	Author              string              `json:"author"`
	Version             string              `json:"version"`
	UninstallEnabled    bool                `json:"uninstall_enabled"`
	UpdateEnabled       bool                `json:"update_enabled"`
	UpdateHighlighted   bool                `json:"update_highlighted"`
	UpdateStatusVisible bool                `json:"update_status_visible"`
	UpdateStatus        string              `json:"update_status,omitempty"`
	PreferencesStatus   string              `json:"preferences_status,omitempty"`
	Preferences         []domain.Preference `json:"preferences,omitempty"`
}

// Manager holds the widget list and the current selection.
type Manager struct {
	widgets  []domain.WidgetRef
	checks   map[string]domain.VersionCheck
	disabled map[string]bool
	loc      *i18n.Localizer
	selected int
}

// New creates a manager over widgets. checks are keyed by bundle id and
// disabled holds widgets updated in this run that wait for a relaunch.
func New(widgets []domain.WidgetRef, checks map[string]domain.VersionCheck, disabled map[string]bool, loc *i18n.Localizer) *Manager {
	if loc == nil {
		loc = i18n.Default()
	}

	if checks == nil {
		checks = map[string]domain.VersionCheck{}
	}

	if disabled == nil {
		disabled = map[string]bool{}
	}

	return &Manager{widgets: widgets, checks: checks, disabled: disabled, loc: loc, selected: -1}
}

// Len returns the number of widgets.
func (m *Manager) Len() int {
	return len(m.widgets)
}

// Widgets returns the listed widgets.
func (m *Manager) Widgets() []domain.WidgetRef {
	return m.widgets
}

// Check returns the version check for id.
func (m *Manager) Check(id string) domain.VersionCheck {
	return m.checks[id]
}

// Rows returns one row per widget.
func (m *Manager) Rows() []Row {
	rows := make([]Row, 0, len(m.widgets))
	for _, widget := range m.widgets {
		rows = append(rows, m.row(widget))
	}

	return rows
}

func (m *Manager) row(widget domain.WidgetRef) Row {
	id := widget.BundleIdentifier
	row := Row{
		ID:     id,
		Name:   widget.Name,
		Loaded: widget.Loaded,
		Dimmed: m.disabled[id],
	}

	if check := m.checks[id]; check.HasUpdate() && !row.Dimmed {
		row.Badge = m.loc.T(i18n.ManagerUpdateAvailable, check.Version.Name)
	}

	return row
}

// Select selects the widget at index. An out of range index clears the
// selection and returns false.
func (m *Manager) Select(index int) bool {
	if index < 0 || index >= len(m.widgets) {
		m.selected = -1

		return false
	}

	m.selected = index

	return true
}

// SelectByID selects the widget with bundle identifier id.
func (m *Manager) SelectByID(id string) bool {
	for index, widget := range m.widgets {
		if widget.BundleIdentifier == id {
			m.selected = index

			return true
		}
	}

	m.selected = -1

	return false
}

// Selected returns the selected widget.
func (m *Manager) Selected() (domain.WidgetRef, bool) {
	if m.selected < 0 {
		return domain.WidgetRef{}, false
	}

	return m.widgets[m.selected], true
}

// SelectedIndex returns the selected index, or -1.
func (m *Manager) SelectedIndex() int {
	return m.selected
}

// Detail describes the selection.
func (m *Manager) Detail() Detail {
	widget, ok := m.Selected()
	if !ok {
		placeholder := m.loc.T(i18n.ManagerPlaceholder)

		return Detail{
			Name:    m.loc.T(i18n.ManagerSelectWidget),
			Author:  placeholder,
			Version: placeholder,
		}
	}

	id := widget.BundleIdentifier
	check := m.checks[id]
	disabled := m.disabled[id]
	hasUpdate := check.HasUpdate() && !disabled

	detail := Detail{
		Selected:          true,
		Name:              widget.Name,
		Author:            widget.Author,
		Version:           widget.FullVersion(),
		UninstallEnabled:  true,
		UpdateEnabled:     hasUpdate,
		UpdateHighlighted: hasUpdate,
		Preferences:       widget.Preferences,
	}

	if check.Err != nil && !disabled {
		detail.UpdateStatusVisible = true
		detail.UpdateStatus = check.Err.Error()
	}

	switch {
	case disabled:
		detail.PreferencesStatus = m.loc.T(i18n.ManagerDidUpdate)
	case !widget.HasPreferences():
		detail.PreferencesStatus = m.loc.T(i18n.ManagerNoPreferences)
	}

	return detail
}

// WizardState returns the lifecycle state the wizard opens with for action
// on the selection.
func (m *Manager) WizardState(action WizardAction) (lifecycle.State, error) {
	widget, ok := m.Selected()
	if !ok {
		return lifecycle.State{}, ErrNoSelection
	}

	switch action {
	case WizardRemove:
		return lifecycle.Remove(widget), nil
	case WizardUpdate:
		check := m.checks[widget.BundleIdentifier]
		if !check.HasUpdate() || m.disabled[widget.BundleIdentifier] {
			return lifecycle.State{}, fmt.Errorf("%w: %s", ErrNoUpdate, widget.Name)
		}

		return lifecycle.Update(widget, *check.Version), nil
	default:
		return lifecycle.State{}, fmt.Errorf("unknown wizard action %d", action)
	}
}

// rowNames adapts the widget list to fuzzy.Source.
type rowNames []domain.WidgetRef

func (r rowNames) String(i int) string { return r[i].Name }

func (r rowNames) Len() int { return len(r) }

// Filter returns the indexes of widgets whose names fuzzy-match query, best
// match first. An empty query matches every widget in list order.
func (m *Manager) Filter(query string) []int {
	if query == "" {
		indexes := make([]int, len(m.widgets))
		for i := range indexes {
			indexes[i] = i
		}

		return indexes
	}

	matches := fuzzy.FindFrom(query, rowNames(m.widgets))

	indexes := make([]int, 0, len(matches))
	for _, match := range matches {
		indexes = append(indexes, match.Index)
	}

	return indexes
}
