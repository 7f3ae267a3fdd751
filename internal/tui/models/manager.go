// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

package models

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/pockwidgets/widgetctl/internal/i18n"
	"github.com/pockwidgets/widgetctl/internal/lifecycle"
	"github.com/pockwidgets/widgetctl/internal/manager"
	"github.com/pockwidgets/widgetctl/internal/tui/styles"
)

// Layout constants.
const (
	listWidth    = 34
	minListWidth = 16
	nameWidth    = 24
)

// ManagerKeyMap defines the manager screen bindings.
type ManagerKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Update  key.Binding
	Remove  key.Binding
	Install key.Binding
	Reload  key.Binding
	Filter  key.Binding
	Back    key.Binding
	Accept  key.Binding
	Quit    key.Binding
}

// DefaultManagerKeyMap returns the default key bindings.
func DefaultManagerKeyMap() ManagerKeyMap {
	return ManagerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Update: key.NewBinding(
			key.WithKeys("u", "enter"),
			key.WithHelp("u", "update"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "remove"),
		),
		Install: key.NewBinding(
			key.WithKeys("i", "a"),
			key.WithHelp("i", "install"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "check updates"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear"),
		),
		Accept: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ManagerModel lists installed widgets next to the detail of the selection.
type ManagerModel struct {
	styles *styles.Styles
	loc    *i18n.Localizer
	keys   ManagerKeyMap

	vm      *manager.Manager
	visible []int
	cursor  int

	filter    textinput.Model
	filtering bool

	status string
	width  int
	height int
}

// NewManager creates the manager screen over vm.
func NewManager(styleConfig *styles.Styles, loc *i18n.Localizer, vm *manager.Manager) *ManagerModel {
	if loc == nil {
		loc = i18n.Default()
	}

	input := textinput.New()
	input.Prompt = "/ "
	input.Placeholder = "filter widgets"
	input.CharLimit = 64

	model := &ManagerModel{
		styles: styleConfig,
		loc:    loc,
		keys:   DefaultManagerKeyMap(),
		filter: input,
		width:  100,
		height: 30,
	}
	model.SetManager(vm)

	return model
}

// SetManager swaps in a fresh view model and keeps the selected widget
// selected when it is still listed.
func (m *ManagerModel) SetManager(vm *manager.Manager) {
	if vm == nil {
		vm = manager.New(nil, nil, nil, m.loc)
	}

	selectedID := ""
	if m.vm != nil {
		if widget, ok := m.vm.Selected(); ok {
			selectedID = widget.BundleIdentifier
		}
	}

	m.vm = vm
	m.applyFilter()

	if selectedID != "" {
		for position, index := range m.visible {
			if vm.Widgets()[index].BundleIdentifier == selectedID {
				m.cursor = position
			}
		}
	}

	m.syncSelection()
}

// Manager returns the current view model.
func (m *ManagerModel) Manager() *manager.Manager {
	return m.vm
}

// Filtering reports whether the filter input has focus.
func (m *ManagerModel) Filtering() bool {
	return m.filtering
}

// Visible returns the indexes of the widgets passing the filter.
func (m *ManagerModel) Visible() []int {
	return m.visible
}

// Status returns the transient status line.
func (m *ManagerModel) Status() string {
	return m.status
}

// Init implements tea.Model.
func (m *ManagerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *ManagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		return m, nil
	case tea.KeyMsg:
		if m.filtering {
			return m.handleFilterKey(msg)
		}

		return m.handleKey(msg)
	}

	return m, nil
}

func (m *ManagerModel) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter()
		m.syncSelection()

		return m, nil
	case key.Matches(msg, m.keys.Accept):
		m.filtering = false
		m.filter.Blur()

		return m, nil
	}

	var cmd tea.Cmd

	m.filter, cmd = m.filter.Update(msg)
	m.cursor = 0
	m.applyFilter()
	m.syncSelection()

	return m, cmd
}

func (m *ManagerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

		m.syncSelection()
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}

		m.syncSelection()
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true

		return m, m.filter.Focus()
	case key.Matches(msg, m.keys.Back):
		if m.filter.Value() != "" {
			m.filter.SetValue("")
			m.applyFilter()
			m.syncSelection()
		}
	case key.Matches(msg, m.keys.Install):
		return m, openWizard(lifecycle.DragDrop())
	case key.Matches(msg, m.keys.Reload):
		return m, requestReload(true)
	case key.Matches(msg, m.keys.Update):
		return m, m.wizard(manager.WizardUpdate)
	case key.Matches(msg, m.keys.Remove):
		return m, m.wizard(manager.WizardRemove)
	}

	return m, nil
}

func (m *ManagerModel) wizard(action manager.WizardAction) tea.Cmd {
	state, err := m.vm.WizardState(action)
	if err != nil {
		m.status = err.Error()

		return nil
	}

	return openWizard(state)
}

func (m *ManagerModel) applyFilter() {
	m.visible = m.vm.Filter(strings.TrimSpace(m.filter.Value()))

	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}

	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *ManagerModel) syncSelection() {
	if len(m.visible) == 0 {
		m.vm.Select(-1)

		return
	}

	m.vm.Select(m.visible[m.cursor])
}

// View implements tea.Model.
func (m *ManagerModel) View() string {
	list := m.renderList()
	detail := m.renderDetail()

	body := lipgloss.JoinHorizontal(lipgloss.Top, list, detail)

	parts := []string{m.styles.Title.Render("Widgets")}

	if m.filtering || m.filter.Value() != "" {
		parts = append(parts, m.filter.View())
	}

	parts = append(parts, body)

	if m.status != "" {
		parts = append(parts, m.styles.ErrorText.Render(m.status))
	}

	parts = append(parts, m.renderFooter())

	return m.styles.Container.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m *ManagerModel) renderList() string {
	width := listWidth
	if m.width > 0 && m.width/3 < width {
		width = max(m.width/3, minListWidth)
	}

	if len(m.visible) == 0 {
		return m.styles.Sidebar.Width(width).Render(m.styles.MutedText.Render(m.loc.T(i18n.ManagerNoWidgets)))
	}

	rows := m.vm.Rows()
	lines := make([]string, 0, len(m.visible))

	for position, index := range m.visible {
		row := rows[index]
		name := runewidth.Truncate(row.Name, min(nameWidth, width-6), "…")
		line := fmt.Sprintf("%s %s", m.styles.StatusIcon(rowIcon(row)), name)

		switch {
		case position == m.cursor:
			line = m.styles.Selected.Render(line)
		case row.Dimmed:
			line = m.styles.Dimmed.Render(line)
		default:
			line = m.styles.Unselected.Render(line)
		}

		lines = append(lines, line)
	}

	return m.styles.Sidebar.Width(width).Render(strings.Join(lines, "\n"))
}

func rowIcon(row manager.Row) string {
	switch {
	case !row.Loaded:
		return "broken"
	case row.Dimmed:
		return "pending"
	case row.Badge != "":
		return "update"
	default:
		return "loaded"
	}
}

func (m *ManagerModel) renderDetail() string {
	detail := m.vm.Detail()

	lines := []string{
		m.styles.Title.Render(detail.Name),
		m.styles.MutedText.Render(detail.Author),
		detail.Version,
		"",
	}

	if detail.UpdateHighlighted {
		widget, _ := m.vm.Selected()
		if check := m.vm.Check(widget.BundleIdentifier); check.HasUpdate() {
			lines = append(lines, m.styles.Badge.Render(m.loc.T(i18n.ManagerUpdateAvailable, check.Version.Name)))
		}
	}

	if detail.UpdateStatusVisible {
		lines = append(lines, m.styles.ErrorText.Render(detail.UpdateStatus))
	}

	if detail.PreferencesStatus != "" {
		lines = append(lines, m.styles.MutedText.Render(detail.PreferencesStatus))
	}

	for _, pref := range detail.Preferences {
		title := pref.Title
		if title == "" {
			title = pref.Key
		}

		lines = append(lines, fmt.Sprintf("• %s (%s)", title, pref.Type))
	}

	lines = append(lines, "", m.renderButtons(detail))

	return m.styles.Detail.Render(strings.Join(lines, "\n"))
}

func (m *ManagerModel) renderButtons(detail manager.Detail) string {
	button := func(label string, enabled bool) string {
		if enabled {
			return m.styles.Button.Render(label)
		}

		return m.styles.ButtonDisabled.Render(label)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		button(m.loc.T(i18n.ActionUpdate), detail.UpdateEnabled),
		button(m.loc.T(i18n.ActionRemove), detail.UninstallEnabled),
	)
}

func (m *ManagerModel) renderFooter() string {
	bindings := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Update, m.keys.Remove, m.keys.Install, m.keys.Reload, m.keys.Filter, m.keys.Quit}

	hints := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		hints = append(hints, m.styles.Keybinding(help.Key, help.Desc))
	}

	return strings.Join(hints, "  ")
}
