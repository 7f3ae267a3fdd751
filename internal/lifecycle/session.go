// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

package lifecycle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/pockwidgets/widgetctl/internal/i18n"
	"github.com/pockwidgets/widgetctl/internal/logging"
)

// ErrSessionDismissed is returned by Run on a session that was already dismissed.
var ErrSessionDismissed = errors.New("session dismissed")

const inboxSize = 64

// Observer receives every state the session enters together with its view
// model. It runs on the session goroutine and must not block for long.
type Observer func(State, ViewModel)

// Option configures a Session.
type Option func(*Session)

// WithLocalizer renders view models with loc.
func WithLocalizer(loc *i18n.Localizer) Option {
	return func(s *Session) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver subscribes observer to state changes.
func WithObserver(observer Observer) Option {
	return func(s *Session) {
		if observer != nil {
			s.observers = append(s.observers, observer)
		}
	}
}

// Session owns the state of one wizard run. Only the goroutine running Run
// mutates the state; every other goroutine talks to it through Post.
type Session struct {
	state     State
	effects   *Effects
	loc       *i18n.Localizer
	logger    *log.Logger
	observers []Observer

	inbox     chan Event
	done      chan struct{}
	closeOnce sync.Once
	postMu    sync.RWMutex
	alive     atomic.Bool
	started   atomic.Bool

	snapshotMu sync.RWMutex
	snapshot   State
}

// NewSession returns a session starting in initial.
func NewSession(initial State, effects *Effects, opts ...Option) *Session {
	if effects == nil {
		effects = &Effects{}
	}

	session := &Session{
		state:    initial,
		snapshot: initial,
		effects:  effects,
		loc:      i18n.Default(),
		logger:   logging.Discard(),
		inbox:    make(chan Event, inboxSize),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(session)
	}

	session.alive.Store(true)

	return session
}

// Run is the owner loop. It publishes the initial state and applies posted
// events until the session is dismissed, a closing action runs, or ctx ends.
func (s *Session) Run(ctx context.Context) error {
	if !s.alive.Load() || !s.started.CompareAndSwap(false, true) {
		return ErrSessionDismissed
	}

	defer s.Dismiss()

	s.publish()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case event := <-s.inbox:
			if s.apply(ctx, event) {
				return nil
			}
		}
	}
}

// Post queues event for the owner loop. It is safe from any goroutine and
// returns false without effect once the session is dismissed. An event
// queued before Dismiss but not yet applied is dropped by the loop.
func (s *Session) Post(event Event) bool {
	s.postMu.RLock()
	defer s.postMu.RUnlock()

	if !s.alive.Load() {
		s.logger.Debug("dropping event for dismissed session", "event", describeEvent(event))

		return false
	}

	select {
	case s.inbox <- event:
		return true
	case <-s.done:
		s.logger.Debug("dropping event for dismissed session", "event", describeEvent(event))

		return false
	}
}

// Choose parses path on a worker goroutine and posts the outcome.
func (s *Session) Choose(ctx context.Context, path string) {
	s.effects.spawn(func() {
		s.Post(s.effects.Choose(ctx, path))
	})
}

// Activate posts the primary button event for the current state.
func (s *Session) Activate() bool {
	return s.Post(Activate(s.State()))
}

// Cancel posts a cancel event.
func (s *Session) Cancel() bool {
	return s.Post(Cancelled{})
}

// Dismiss ends the session. It returns once no Post is in flight, so every
// later Post reports false. It is safe to call more than once.
func (s *Session) Dismiss() {
	s.closeOnce.Do(func() {
		s.alive.Store(false)
		close(s.done)

		s.postMu.Lock()
		s.postMu.Unlock() //nolint:staticcheck // waits out in-flight posts
	})
}

// Alive reports whether the session still accepts events.
func (s *Session) Alive() bool {
	return s.alive.Load()
}

// Done is closed when the session is dismissed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// State returns the most recently published state.
func (s *Session) State() State {
	s.snapshotMu.RLock()
	defer s.snapshotMu.RUnlock()

	return s.snapshot
}

// View returns the view model of the most recently published state.
func (s *Session) View() ViewModel {
	return RenderWith(s.loc, s.State())
}

// Wait blocks until collaborator calls started by this session have returned.
func (s *Session) Wait() {
	s.effects.Wait()
}

// apply runs one transition and its effect. It reports whether the session
// ended.
func (s *Session) apply(ctx context.Context, event Event) bool {
	if !s.alive.Load() {
		return true
	}

	from := s.state

	next, action, err := Transition(from, event)
	if err != nil {
		s.logger.Debug("ignoring event", "state", from.String(), "event", describeEvent(event), "err", err)

		return false
	}

	s.state = next
	if !next.Equal(from) {
		s.logger.Debug("transition", "from", from.String(), "to", next.String(), "event", describeEvent(event))
		s.publish()
	}

	if next.Kind() == KindError {
		s.logger.Error("session failed", "err", next.Err().Description())
	}

	s.effects.Perform(ctx, action, from, s.Post)

	switch action {
	case ActionClose, ActionReloadAndClose, ActionRelaunchAndClose:
		s.Dismiss()

		return true
	case ActionNone, ActionChooseFile, ActionUninstall, ActionInstall, ActionUpdate:
		return false
	default:
		return false
	}
}

func (s *Session) publish() {
	s.snapshotMu.Lock()
	s.snapshot = s.state
	s.snapshotMu.Unlock()

	view := RenderWith(s.loc, s.state)
	for _, observer := range s.observers {
		observer(s.state, view)
	}
}
