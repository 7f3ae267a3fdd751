// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

package models

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/pockwidgets/widgetctl/internal/domain"
	"github.com/pockwidgets/widgetctl/internal/i18n"
	"github.com/pockwidgets/widgetctl/internal/lifecycle"
	"github.com/pockwidgets/widgetctl/internal/tui/styles"
)

const (
	wizardWidth     = 64
	changelogHeight = 10
	pickerHeight    = 12
)

// WizardKeyMap defines the wizard bindings.
type WizardKeyMap struct {
	Primary   key.Binding
	Secondary key.Binding
	ScrollUp  key.Binding
	ScrollDn  key.Binding
}

// DefaultWizardKeyMap returns the default key bindings.
func DefaultWizardKeyMap() WizardKeyMap {
	return WizardKeyMap{
		Primary: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "continue"),
		),
		Secondary: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup", "k", "up"),
			key.WithHelp("pgup", "scroll up"),
		),
		ScrollDn: key.NewBinding(
			key.WithKeys("pgdown", "j", "down"),
			key.WithHelp("pgdn", "scroll down"),
		),
	}
}

// Session is the part of lifecycle.Session the wizard drives.
type Session interface {
	Activate() bool
	Cancel() bool
	Choose(ctx context.Context, path string)
}

// WizardModel draws one lifecycle session. It never changes state itself;
// key presses become session events and SetView applies what the session
// publishes.
type WizardModel struct {
	ctx     context.Context //nolint:containedctx // Picker results are parsed under the program context.
	styles  *styles.Styles
	loc     *i18n.Localizer
	keys    WizardKeyMap
	session Session

	state lifecycle.State
	view  lifecycle.ViewModel

	progress progress.Model
	spinner  spinner.Model
	viewport viewport.Model
	renderer *glamour.TermRenderer

	picker     *huh.Form
	pickedPath string
	startDir   string

	width int
}

// NewWizard creates a wizard bound to session.
func NewWizard(ctx context.Context, styleConfig *styles.Styles, loc *i18n.Localizer, session Session) *WizardModel {
	if loc == nil {
		loc = i18n.Default()
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(styleConfig.Primary)

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = wizardWidth - 4

	changelog := viewport.New(wizardWidth, changelogHeight)
	changelog.Style = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styleConfig.Muted)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wizardWidth-4),
	)
	if err != nil {
		renderer = nil
	}

	startDir, err := os.UserHomeDir()
	if err != nil {
		startDir = "."
	}

	return &WizardModel{
		ctx:      ctx,
		styles:   styleConfig,
		loc:      loc,
		keys:     DefaultWizardKeyMap(),
		session:  session,
		progress: bar,
		spinner:  spin,
		viewport: changelog,
		renderer: renderer,
		startDir: startDir,
		width:    wizardWidth,
	}
}

// SetStartDir sets the directory the bundle picker opens in.
func (m *WizardModel) SetStartDir(dir string) {
	m.startDir = dir
}

// State returns the last applied state.
func (m *WizardModel) State() lifecycle.State {
	return m.state
}

// ViewModel returns the last applied view model.
func (m *WizardModel) ViewModel() lifecycle.ViewModel {
	return m.view
}

// Picking reports whether the bundle picker is open.
func (m *WizardModel) Picking() bool {
	return m.picker != nil
}

// SetView applies a published state and its view model.
func (m *WizardModel) SetView(state lifecycle.State, view lifecycle.ViewModel) tea.Cmd {
	changelogChanged := view.ChangelogText != m.view.ChangelogText || view.ChangelogVisible != m.view.ChangelogVisible

	m.state = state
	m.view = view

	if changelogChanged && view.ChangelogVisible {
		m.viewport.SetContent(m.renderChangelog(view))
		m.viewport.GotoTop()
	}

	switch {
	case view.ProgressVisible && view.ProgressIndeterminate:
		return m.spinner.Tick
	case view.ProgressVisible:
		return m.progress.SetPercent(view.ProgressValue)
	default:
		return nil
	}
}

func (m *WizardModel) renderChangelog(view lifecycle.ViewModel) string {
	text := view.ChangelogText
	if strings.TrimSpace(text) == "" {
		return m.styles.MutedText.Render(view.ChangelogPlaceholder)
	}

	if m.renderer == nil {
		return text
	}

	rendered, err := m.renderer.Render(text)
	if err != nil {
		return text
	}

	return rendered
}

// StartPicker opens the bundle picker. The chosen path goes to the session.
func (m *WizardModel) StartPicker() tea.Cmd {
	m.pickedPath = ""

	picker := huh.NewFilePicker().
		Title(m.view.Title).
		Description(m.loc.T(i18n.DragDropFormats)).
		CurrentDirectory(m.startDir).
		AllowedTypes([]string{domain.BundleExtension}).
		DirAllowed(true).
		FileAllowed(true).
		Picking(true).
		Height(pickerHeight).
		Value(&m.pickedPath)

	m.picker = huh.NewForm(huh.NewGroup(picker)).
		WithTheme(huh.ThemeCharm()).
		WithShowHelp(true)

	return m.picker.Init()
}

// Init implements tea.Model.
func (m *WizardModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.picker != nil {
		return m.updatePicker(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = min(msg.Width, wizardWidth)
		m.viewport.Width = m.width
		m.progress.Width = m.width - 4

		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case spinner.TickMsg:
		if !m.view.ProgressIndeterminate {
			return m, nil
		}

		var cmd tea.Cmd

		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	case progress.FrameMsg:
		updated, cmd := m.progress.Update(msg)
		if bar, ok := updated.(progress.Model); ok {
			m.progress = bar
		}

		return m, cmd
	}

	return m, nil
}

func (m *WizardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Paste {
		if m.view.AcceptsDrop {
			if path := droppedPath(string(msg.Runes)); path != "" {
				m.session.Choose(m.ctx, path)
			}
		}

		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Primary):
		if m.view.PrimaryButtonEnabled {
			m.session.Activate()
		}
	case key.Matches(msg, m.keys.Secondary):
		if m.view.SecondaryButtonVisible {
			m.session.Cancel()
		}
	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDn):
		if m.view.ChangelogVisible {
			var cmd tea.Cmd

			m.viewport, cmd = m.viewport.Update(msg)

			return m, cmd
		}
	}

	return m, nil
}

// droppedPath turns a terminal drop, which arrives as a bracketed paste,
// into a plain path. Terminals quote the path or escape its spaces.
func droppedPath(pasted string) string {
	path := strings.TrimSpace(pasted)
	if len(path) >= 2 {
		first, last := path[0], path[len(path)-1]
		if (first == '"' || first == '\'') && first == last {
			return path[1 : len(path)-1]
		}
	}

	return strings.ReplaceAll(path, `\ `, " ")
}

func (m *WizardModel) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, m.keys.Secondary) {
		m.picker = nil

		return m, nil
	}

	form, cmd := m.picker.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.picker = f
	}

	switch m.picker.State {
	case huh.StateCompleted:
		m.picker = nil
		if m.pickedPath != "" {
			m.session.Choose(m.ctx, m.pickedPath)
		}

		return m, nil
	case huh.StateAborted:
		m.picker = nil

		return m, nil
	case huh.StateNormal:
		return m, cmd
	default:
		return m, cmd
	}
}

// View implements tea.Model.
func (m *WizardModel) View() string {
	if m.picker != nil {
		return m.styles.Card.Render(m.picker.View())
	}

	parts := []string{
		m.styles.Title.Render(m.view.Title),
		lipgloss.NewStyle().Width(m.width).Render(m.view.Body),
	}

	if m.view.ProgressVisible {
		if m.view.ProgressIndeterminate {
			parts = append(parts, m.spinner.View())
		} else {
			parts = append(parts, m.progress.View())
		}
	}

	if m.view.ChangelogVisible {
		parts = append(parts, m.styles.Subtitle.Render(m.view.ChangelogTitle), m.viewport.View())
	}

	parts = append(parts, "", m.renderButtons())

	return m.styles.Card.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m *WizardModel) renderButtons() string {
	primary := m.styles.ButtonDisabled
	if m.view.PrimaryButtonEnabled {
		primary = m.styles.Button
	}

	buttons := []string{}
	if m.view.SecondaryButtonVisible {
		buttons = append(buttons, m.styles.ButtonSecondary.Render(fmt.Sprintf("esc %s", m.view.SecondaryButtonLabel)))
	}

	buttons = append(buttons, primary.Render(fmt.Sprintf("⏎ %s", m.view.PrimaryButtonLabel)))

	return lipgloss.JoinHorizontal(lipgloss.Top, buttons...)
}
