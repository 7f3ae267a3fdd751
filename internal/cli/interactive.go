// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/huh"
	"github.com/pockwidgets/widgetctl/internal/lifecycle"
)

const (
	stateBuffer = 64
	// progressStep is the smallest download progress change printed.
	progressStep = 0.1
)

// Prompt is a confirmation the user must accept before a session proceeds.
type Prompt struct {
	Title       string
	Description string
	Accept      string
	Decline     string
}

func promptFor(view lifecycle.ViewModel) Prompt {
	description := view.Body
	if view.ChangelogVisible {
		changelog := strings.TrimSpace(view.ChangelogText)
		if changelog == "" {
			changelog = view.ChangelogPlaceholder
		}

		description = fmt.Sprintf("%s\n\n%s\n%s", view.Body, view.ChangelogTitle, changelog)
	}

	return Prompt{
		Title:       view.Title,
		Description: description,
		Accept:      view.PrimaryButtonLabel,
		Decline:     view.SecondaryButtonLabel,
	}
}

// promptConfirm asks with a huh confirm on the terminal. It never prompts
// in JSON or plain mode or when stdout is not a terminal.
func (app *CLI) promptConfirm(ctx context.Context, prompt Prompt) (bool, error) {
	if app.yes {
		return true, nil
	}

	if app.json || app.plain || !app.isTerminal() {
		return false, ErrConfirmationRequired
	}

	accepted := false

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(prompt.Title).
				Description(prompt.Description).
				Affirmative(prompt.Accept).
				Negative(prompt.Decline).
				Value(&accepted),
		),
	).WithTheme(huh.ThemeCharm())

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}

		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}

	return accepted, nil
}

// headlessHost ends the drive loop when the session closes. The CLI never
// asks for a path because install passes it up front.
type headlessHost struct {
	closed chan struct{}
	once   sync.Once
}

func newHeadlessHost() *headlessHost {
	return &headlessHost{closed: make(chan struct{})}
}

func (h *headlessHost) RequestPath() {}

func (h *headlessHost) Close() {
	h.once.Do(func() {
		close(h.closed)
	})
}

// drive runs a session without a UI. Prompt states go through the confirm
// function, every published view is printed, and terminal states are
// acknowledged. It returns the terminal state reached, or the zero state
// when the user declined, and the session error if it failed.
func (app *CLI) drive(ctx context.Context, initial lifecycle.State, start func(*lifecycle.Session)) (lifecycle.State, error) {
	type published struct {
		state lifecycle.State
		view  lifecycle.ViewModel
	}

	states := make(chan published, stateBuffer)
	stop := make(chan struct{})
	host := newHeadlessHost()

	session := app.service.NewSession(initial, host, lifecycle.WithObserver(func(state lifecycle.State, view lifecycle.ViewModel) {
		select {
		case states <- published{state: state, view: view}:
		case <-stop:
		case <-ctx.Done():
		}
	}))

	runErr := make(chan error, 1)

	go func() {
		runErr <- session.Run(ctx)
	}()

	defer func() {
		session.Dismiss()
		close(stop)
		session.Wait()
	}()

	if start != nil {
		start(session)
	}

	var (
		final    lifecycle.State
		failure  error
		printed  = -1.0
		finished bool
	)

	for !finished {
		select {
		case next := <-states:
			app.printView(next.state, next.view, &printed)

			done, err := app.step(ctx, session, next.state, next.view)
			if err != nil {
				return lifecycle.State{}, err
			}

			if next.state.Terminal() {
				final = next.state
			}

			if err := next.state.Err(); err != nil {
				failure = err
			}

			finished = done
		case <-host.closed:
			finished = true
		case err := <-runErr:
			if err != nil {
				return lifecycle.State{}, err
			}

			finished = true
		}
	}

	if failure != nil {
		return final, failure
	}

	return final, nil
}

// step reacts to one published state. It reports whether driving is over.
func (app *CLI) step(ctx context.Context, session *lifecycle.Session, state lifecycle.State, view lifecycle.ViewModel) (bool, error) {
	switch state.Kind() {
	case lifecycle.KindRemove, lifecycle.KindInstall, lifecycle.KindUpdate:
		accepted, err := app.confirm(ctx, promptFor(view))
		if err != nil {
			return true, err
		}

		if !accepted {
			session.Cancel()

			return false, nil
		}

		session.Activate()
	case lifecycle.KindError, lifecycle.KindRemoved, lifecycle.KindInstalled, lifecycle.KindUpdated:
		session.Activate()
	case lifecycle.KindDragDrop, lifecycle.KindRemoving, lifecycle.KindInstalling, lifecycle.KindDownloading:
	}

	return false, nil
}

// printView prints a view unless it is a download step smaller than
// progressStep or a prompt the confirm dialog shows anyway.
func (app *CLI) printView(state lifecycle.State, view lifecycle.ViewModel, printed *float64) {
	switch state.Kind() {
	case lifecycle.KindDragDrop, lifecycle.KindError:
		return
	case lifecycle.KindRemove, lifecycle.KindInstall, lifecycle.KindUpdate:
		if !app.yes {
			return
		}
	case lifecycle.KindDownloading:
		if *printed >= 0 && view.ProgressValue < 1 && view.ProgressValue-*printed < progressStep {
			return
		}

		*printed = view.ProgressValue
	case lifecycle.KindRemoving, lifecycle.KindInstalling, lifecycle.KindRemoved, lifecycle.KindInstalled, lifecycle.KindUpdated:
	}

	if app.json || app.verbose || app.plain || app.isTerminal() {
		app.out.View(view)
	}
}
