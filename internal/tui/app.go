// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

// Package tui runs the interactive widget manager.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/pockwidgets/widgetctl/internal/application"
	"github.com/pockwidgets/widgetctl/internal/i18n"
	"github.com/pockwidgets/widgetctl/internal/lifecycle"
	"github.com/pockwidgets/widgetctl/internal/logging"
	"github.com/pockwidgets/widgetctl/internal/tui/models"
	"github.com/pockwidgets/widgetctl/internal/tui/styles"
	"golang.org/x/term"
)

const eventBuffer = 64

// ErrNoTerminal is returned when the TUI is launched in a non-terminal environment.
var ErrNoTerminal = errors.New("TUI requires a terminal environment")

// Dependencies configure the application model.
type Dependencies struct {
	Service   *application.WidgetService
	Localizer *i18n.Localizer
	Logger    *log.Logger

	// StartDir is where the bundle picker opens. Empty means the home directory.
	StartDir string
}

type serviceChangedMsg struct{}

type viewMsg struct {
	session *lifecycle.Session
	state   lifecycle.State
	view    lifecycle.ViewModel
}

type pathRequestedMsg struct {
	session *lifecycle.Session
}

type hostClosedMsg struct {
	session *lifecycle.Session
}

type reloadDoneMsg struct {
	err error
}

// App is the root model. It shows the manager screen and, while a session
// runs, the wizard on top of it.
//
//nolint:containedctx // TUI models require context for proper cancellation propagation
type App struct {
	ctx    context.Context
	deps   Dependencies
	styles *styles.Styles

	manager *models.ManagerModel
	wizard  *models.WizardModel
	session *lifecycle.Session
	cancel  context.CancelFunc

	events    chan tea.Msg
	quit      chan struct{}
	closeOnce bool

	status   string
	relaunch bool
	quitting bool
	width    int
	height   int
}

// NewApp creates the root model and subscribes it to service changes.
func NewApp(ctx context.Context, deps Dependencies) *App {
	if deps.Localizer == nil {
		deps.Localizer = i18n.Default()
	}

	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}

	styleConfig := styles.New()

	app := &App{
		ctx:     ctx,
		deps:    deps,
		styles:  styleConfig,
		manager: models.NewManager(styleConfig, deps.Localizer, deps.Service.Manager()),
		events:  make(chan tea.Msg, eventBuffer),
		quit:    make(chan struct{}),
	}

	deps.Service.Watch(func() {
		app.send(serviceChangedMsg{})
	})

	return app
}

// Relaunch reports whether the program ended to restart the application.
func (a *App) Relaunch() bool {
	return a.relaunch
}

// Manager returns the manager screen.
func (a *App) Manager() *models.ManagerModel {
	return a.manager
}

// Wizard returns the wizard of the running session, or nil.
func (a *App) Wizard() *models.WizardModel {
	return a.wizard
}

// Session returns the running session, or nil.
func (a *App) Session() *lifecycle.Session {
	return a.session
}

// Events exposes the subscription channel for tests.
func (a *App) Events() <-chan tea.Msg {
	return a.events
}

// Close dismisses the running session and stops event delivery.
func (a *App) Close() {
	a.endSession()

	if !a.closeOnce {
		a.closeOnce = true
		close(a.quit)
	}
}

// send delivers msg to the program. Once the app is closed it returns
// without blocking.
func (a *App) send(msg tea.Msg) {
	select {
	case a.events <- msg:
	case <-a.quit:
	}
}

func (a *App) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-a.events:
			return msg
		case <-a.quit:
			return nil
		}
	}
}

func (a *App) reload(fetch bool) tea.Cmd {
	return func() tea.Msg {
		return reloadDoneMsg{err: a.deps.Service.Reload(a.ctx, fetch)}
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.listen(), a.reload(false))
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.manager.Update(msg)

		if a.wizard != nil {
			a.wizard.Update(msg)
		}

		return a, nil
	case tea.KeyMsg:
		return a.handleKey(msg)
	case models.OpenWizardMsg:
		return a, a.openSession(msg.State)
	case models.ReloadRequestMsg:
		a.status = ""

		return a, a.reload(msg.FetchLatestVersions)
	case reloadDoneMsg:
		if msg.err != nil {
			a.status = msg.err.Error()
			a.deps.Logger.Error("reload failed", "err", msg.err)
		}

		return a, nil
	case serviceChangedMsg:
		a.manager.SetManager(a.deps.Service.Manager())

		return a, tea.Batch(a.listen(), a.quitForRelaunch())
	case viewMsg:
		var cmd tea.Cmd
		if msg.session == a.session && a.wizard != nil {
			cmd = a.wizard.SetView(msg.state, msg.view)
		}

		return a, tea.Batch(a.listen(), cmd)
	case pathRequestedMsg:
		var cmd tea.Cmd
		if msg.session == a.session && a.wizard != nil {
			cmd = a.wizard.StartPicker()
		}

		return a, tea.Batch(a.listen(), cmd)
	case hostClosedMsg:
		if msg.session == a.session {
			a.endSession()
		}

		return a, tea.Batch(a.listen(), a.quitForRelaunch())
	}

	if a.wizard != nil {
		_, cmd := a.wizard.Update(msg)

		return a, cmd
	}

	_, cmd := a.manager.Update(msg)

	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, a.exit()
	}

	if a.wizard != nil {
		_, cmd := a.wizard.Update(msg)

		return a, cmd
	}

	if msg.String() == "q" && !a.manager.Filtering() {
		return a, a.exit()
	}

	_, cmd := a.manager.Update(msg)

	return a, cmd
}

func (a *App) exit() tea.Cmd {
	a.quitting = true
	a.Close()

	return tea.Quit
}

// quitForRelaunch ends the program once a relaunch was requested and no
// session is on screen.
func (a *App) quitForRelaunch() tea.Cmd {
	if a.session != nil || !a.deps.Service.RelaunchPending() {
		return nil
	}

	a.relaunch = true

	return a.exit()
}

func (a *App) openSession(initial lifecycle.State) tea.Cmd {
	a.endSession()

	host := &host{app: a}

	session := a.deps.Service.NewSession(initial, host, lifecycle.WithObserver(func(state lifecycle.State, view lifecycle.ViewModel) {
		a.send(viewMsg{session: host.session, state: state, view: view})
	}))
	host.session = session

	wizard := models.NewWizard(a.ctx, a.styles, a.deps.Localizer, session)
	if a.deps.StartDir != "" {
		wizard.SetStartDir(a.deps.StartDir)
	}

	if a.width > 0 {
		wizard.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
	}

	ctx, cancel := context.WithCancel(a.ctx)

	a.session = session
	a.wizard = wizard
	a.cancel = cancel

	go func() {
		if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.deps.Logger.Debug("session ended", "err", err)
		}
	}()

	return wizard.SetView(initial, lifecycle.RenderWith(a.deps.Localizer, initial))
}

func (a *App) endSession() {
	if a.session != nil {
		a.session.Dismiss()
	}

	if a.cancel != nil {
		a.cancel()
	}

	a.session = nil
	a.wizard = nil
	a.cancel = nil
}

// View implements tea.Model.
func (a *App) View() string {
	if a.quitting {
		return ""
	}

	content := a.manager.View()
	if a.wizard != nil {
		content = a.wizard.View()
		if a.width > 0 && a.height > 0 {
			content = lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, content)
		}
	}

	if a.status != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, a.styles.ErrorText.Render(a.status))
	}

	return content
}

// host shows one session in the TUI. Calls arrive from session goroutines
// and are forwarded as messages.
type host struct {
	app     *App
	session *lifecycle.Session
}

func (h *host) RequestPath() {
	h.app.send(pathRequestedMsg{session: h.session})
}

func (h *host) Close() {
	h.app.send(hostClosedMsg{session: h.session})
}

// Run starts the manager and blocks until the user quits. It reports
// whether the application should relaunch.
func Run(ctx context.Context, deps Dependencies) (bool, error) {
	if !isTerminal() {
		return false, fmt.Errorf("terminal check failed: %w", ErrNoTerminal)
	}

	app := NewApp(ctx, deps)
	defer app.Close()

	program := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := program.Run(); err != nil {
		return false, fmt.Errorf("TUI application failed: %w", err)
	}

	return app.Relaunch(), nil
}

// isTerminal checks if stdin and stdout are connected to a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
