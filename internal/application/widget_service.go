// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

// Package application wires the widget collaborators together and plays the
// host application shell lifecycle sessions hand control back to.
package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/pockwidgets/widgetctl/internal/domain"
	"github.com/pockwidgets/widgetctl/internal/i18n"
	"github.com/pockwidgets/widgetctl/internal/lifecycle"
	"github.com/pockwidgets/widgetctl/internal/logging"
	"github.com/pockwidgets/widgetctl/internal/manager"
)

// Purger is implemented by version checkers that cache answers.
type Purger interface {
	Purge()
}

// Dependencies are the collaborators a WidgetService drives.
type Dependencies struct {
	Loader    domain.WidgetLoader
	Checker   domain.VersionChecker
	Parser    domain.BundleParser
	Installer domain.Installer
	Localizer *i18n.Localizer
	Logger    *log.Logger
}

// WidgetService implements domain.AppController. It owns the scanned widget
// list, the latest version checks and the widgets disabled pending relaunch.
type WidgetService struct {
	deps Dependencies

	mu       sync.Mutex
	widgets  []domain.WidgetRef
	checks   map[string]domain.VersionCheck
	disabled map[string]bool
	relaunch bool
	watchers []func()
}

// NewWidgetService creates a service. Call Reload before reading widgets.
func NewWidgetService(deps Dependencies) *WidgetService {
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}

	if deps.Localizer == nil {
		deps.Localizer = i18n.Default()
	}

	return &WidgetService{
		deps:     deps,
		checks:   map[string]domain.VersionCheck{},
		disabled: map[string]bool{},
	}
}

// Reload rescans the widgets directory. With fetchLatestVersions the version
// cache is dropped first so the index is fetched again.
func (s *WidgetService) Reload(ctx context.Context, fetchLatestVersions bool) error {
	if fetchLatestVersions {
		if purger, ok := s.deps.Checker.(Purger); ok {
			purger.Purge()
		}
	}

	widgets, err := s.load(ctx)
	if err != nil {
		return err
	}

	checks := make(map[string]domain.VersionCheck, len(widgets))

	if s.deps.Checker != nil {
		for _, widget := range widgets {
			if !widget.Loaded {
				continue
			}

			checks[widget.BundleIdentifier] = s.deps.Checker.CheckForNewVersion(ctx, widget)
		}
	}

	s.mu.Lock()
	s.widgets = widgets
	s.checks = checks
	s.mu.Unlock()

	s.deps.Logger.Debug("widgets reloaded", "count", len(widgets), "fetch", fetchLatestVersions)
	s.notify()

	return nil
}

// Rescan reloads the widget list and keeps the last version checks.
func (s *WidgetService) Rescan(ctx context.Context) error {
	widgets, err := s.load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.widgets = widgets
	s.mu.Unlock()

	s.notify()

	return nil
}

func (s *WidgetService) load(ctx context.Context) ([]domain.WidgetRef, error) {
	widgets, err := s.deps.Loader.Installed(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load widgets: %w", err)
	}

	return widgets, nil
}

// Relaunch records that the application should restart.
func (s *WidgetService) Relaunch(_ context.Context) error {
	s.mu.Lock()
	s.relaunch = true
	s.mu.Unlock()

	s.deps.Logger.Debug("relaunch requested")
	s.notify()

	return nil
}

// RelaunchPending reports a pending relaunch request without clearing it.
func (s *WidgetService) RelaunchPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.relaunch
}

// MarkDisabled records a widget updated in this run. Its row is dimmed and
// it cannot be updated again until the application relaunches.
func (s *WidgetService) MarkDisabled(id string) {
	s.mu.Lock()
	s.disabled[id] = true
	s.mu.Unlock()

	s.notify()
}

// Watch registers fn to run after every reload, relaunch request or
// disabled widget.
func (s *WidgetService) Watch(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.watchers = append(s.watchers, fn)
}

// Widgets returns the last scanned widgets.
func (s *WidgetService) Widgets() []domain.WidgetRef {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]domain.WidgetRef(nil), s.widgets...)
}

// Find returns the installed widget with bundle identifier id.
func (s *WidgetService) Find(id string) (domain.WidgetRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, widget := range s.widgets {
		if widget.BundleIdentifier == id {
			return widget, nil
		}
	}

	return domain.WidgetRef{}, fmt.Errorf("%w: %s", domain.ErrWidgetNotFound, id)
}

// Check returns the last version check for id.
func (s *WidgetService) Check(id string) domain.VersionCheck {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.checks[id]
}

// Manager builds a manager view model over the current snapshot.
func (s *WidgetService) Manager() *manager.Manager {
	s.mu.Lock()
	defer s.mu.Unlock()

	checks := make(map[string]domain.VersionCheck, len(s.checks))
	for id, check := range s.checks {
		checks[id] = check
	}

	disabled := make(map[string]bool, len(s.disabled))
	for id := range s.disabled {
		disabled[id] = true
	}

	return manager.New(append([]domain.WidgetRef(nil), s.widgets...), checks, disabled, s.deps.Localizer)
}

// NewSession opens a lifecycle session shown in host. Widgets that reach
// the updated state are marked disabled.
func (s *WidgetService) NewSession(initial lifecycle.State, host lifecycle.Host, opts ...lifecycle.Option) *lifecycle.Session {
	effects := &lifecycle.Effects{
		Parser:    s.deps.Parser,
		Installer: s.deps.Installer,
		App:       s,
		Host:      host,
		Logger:    s.deps.Logger,
	}

	opts = append([]lifecycle.Option{
		lifecycle.WithLocalizer(s.deps.Localizer),
		lifecycle.WithLogger(s.deps.Logger),
		lifecycle.WithObserver(func(state lifecycle.State, _ lifecycle.ViewModel) {
			if state.Kind() == lifecycle.KindUpdated {
				s.MarkDisabled(state.Widget().BundleIdentifier)
			}
		}),
	}, opts...)

	return lifecycle.NewSession(initial, effects, opts...)
}

func (s *WidgetService) notify() {
	s.mu.Lock()
	watchers := append([]func(){}, s.watchers...)
	s.mu.Unlock()

	for _, fn := range watchers {
		fn()
	}
}
