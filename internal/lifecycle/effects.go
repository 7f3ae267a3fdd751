// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

package lifecycle

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/pockwidgets/widgetctl/internal/domain"
	"github.com/pockwidgets/widgetctl/internal/logging"
)

// Host is the surface a session is shown in.
type Host interface {
	// RequestPath asks the user to choose a bundle. The host reports the
	// answer through Session.Choose.
	RequestPath()

	// Close dismisses the session surface.
	Close()
}

// PostFunc marshals an event onto the session owner. It returns false when
// the session is gone and the event was dropped.
type PostFunc func(Event) bool

// Effects interprets the actions transitions return by calling the
// collaborators.
type Effects struct {
	Parser    domain.BundleParser
	Installer domain.Installer
	App       domain.AppController
	Host      Host
	Logger    *log.Logger

	workers sync.WaitGroup
}

func (e *Effects) logger() *log.Logger {
	if e.Logger == nil {
		return logging.Discard()
	}

	return e.Logger
}

// Perform runs action. from is the state the transition left. Long-running
// operations run on a worker goroutine and report back through post.
func (e *Effects) Perform(ctx context.Context, action Action, from State, post PostFunc) {
	widget := from.Widget()

	switch action {
	case ActionNone:
		return
	case ActionChooseFile:
		if e.Host != nil {
			e.Host.RequestPath()
		}
	case ActionUninstall:
		e.spawn(func() {
			post(Completed{Err: e.Installer.Uninstall(ctx, widget)})
		})
	case ActionInstall:
		e.spawn(func() {
			post(Completed{Err: e.Installer.Install(ctx, widget)})
		})
	case ActionUpdate:
		version := from.Version()

		e.spawn(func() {
			err := e.Installer.Update(ctx, widget, version, func(fraction float64) {
				post(ProgressReported{Value: ClampProgress(fraction)})
			})
			post(Completed{Err: err})
		})
	case ActionReloadAndClose:
		if e.App != nil {
			if err := e.App.Reload(ctx, true); err != nil {
				e.logger().Error("reload failed", "widget", widget.BundleIdentifier, "err", err)
			}
		}

		e.close()
	case ActionRelaunchAndClose:
		e.close()

		if e.App != nil {
			if err := e.App.Relaunch(ctx); err != nil {
				e.logger().Error("relaunch failed", "err", err)
			}
		}
	case ActionClose:
		e.close()
	}
}

// Choose parses path and returns the event the session should apply.
func (e *Effects) Choose(ctx context.Context, path string) Event {
	if strings.TrimSpace(path) == "" || e.Parser == nil {
		return ChoiceFailed{Reason: domain.UnknownErrorDescription}
	}

	widget, err := e.Parser.Parse(ctx, path)
	if err != nil {
		e.logger().Error("could not parse widget", "path", path, "err", err)

		reason := err.Error()
		if strings.TrimSpace(reason) == "" {
			reason = domain.UnknownErrorDescription
		}

		return ChoiceFailed{Reason: reason}
	}

	return WidgetChosen{Widget: widget}
}

// Wait blocks until every worker goroutine has returned.
func (e *Effects) Wait() {
	e.workers.Wait()
}

func (e *Effects) spawn(work func()) {
	e.workers.Add(1)

	go func() {
		defer e.workers.Done()

		work()
	}()
}

func (e *Effects) close() {
	if e.Host != nil {
		e.Host.Close()
	}
}
