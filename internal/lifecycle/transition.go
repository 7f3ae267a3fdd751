// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

package lifecycle

import (
	"errors"
	"fmt"

	"github.com/pockwidgets/widgetctl/internal/domain"
)

// ErrInvalidTransition is returned for an event the current state does not accept.
var ErrInvalidTransition = errors.New("invalid transition")

// Action is the side effect a transition asks the effect layer to perform.
type Action int

// Actions.
const (
	ActionNone Action = iota
	ActionChooseFile
	ActionUninstall
	ActionInstall
	ActionUpdate
	ActionReloadAndClose
	ActionRelaunchAndClose
	ActionClose
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionChooseFile:
		return "choose_file"
	case ActionUninstall:
		return "uninstall"
	case ActionInstall:
		return "install"
	case ActionUpdate:
		return "update"
	case ActionReloadAndClose:
		return "reload_and_close"
	case ActionRelaunchAndClose:
		return "relaunch_and_close"
	case ActionClose:
		return "close"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Transition applies event to state. It is pure: on error the returned state
// is the input state and the action is ActionNone.
func Transition(state State, event Event) (State, Action, error) {
	switch event := event.(type) {
	case Cancelled:
		if state.Terminal() {
			return invalid(state, event)
		}

		return state, ActionClose, nil
	case Acknowledged:
		return acknowledge(state, event)
	case Confirmed:
		return confirm(state, event)
	case WidgetChosen:
		if state.kind != KindDragDrop {
			return invalid(state, event)
		}

		return Install(event.Widget), ActionNone, nil
	case ChoiceFailed:
		if state.kind != KindDragDrop {
			return invalid(state, event)
		}

		return Failed(domain.InvalidBundle(event.Reason)), ActionNone, nil
	case ProgressReported:
		if state.kind != KindDownloading {
			return invalid(state, event)
		}

		return Downloading(state.widget, event.Value), ActionNone, nil
	case Completed:
		return complete(state, event)
	default:
		return invalid(state, event)
	}
}

func confirm(state State, event Event) (State, Action, error) {
	switch state.kind {
	case KindDragDrop:
		return state, ActionChooseFile, nil
	case KindRemove:
		return Removing(state.widget), ActionUninstall, nil
	case KindInstall:
		return Installing(state.widget), ActionInstall, nil
	case KindUpdate:
		return Downloading(state.widget, 0), ActionUpdate, nil
	case KindRemoving, KindInstalling, KindDownloading,
		KindError, KindRemoved, KindInstalled, KindUpdated:
		return invalid(state, event)
	default:
		return invalid(state, event)
	}
}

func acknowledge(state State, event Event) (State, Action, error) {
	switch state.kind {
	case KindInstalled:
		return state, ActionReloadAndClose, nil
	case KindRemoved, KindUpdated:
		return state, ActionRelaunchAndClose, nil
	case KindError:
		return state, ActionClose, nil
	case KindDragDrop, KindRemove, KindInstall, KindUpdate,
		KindRemoving, KindInstalling, KindDownloading:
		return invalid(state, event)
	default:
		return invalid(state, event)
	}
}

func complete(state State, event Completed) (State, Action, error) {
	if !state.Busy() {
		return invalid(state, event)
	}

	if event.Err != nil {
		return Failed(domain.AsInstallError(event.Err)), ActionNone, nil
	}

	switch state.kind {
	case KindRemoving:
		return Removed(state.widget), ActionNone, nil
	case KindInstalling:
		return Installed(state.widget), ActionNone, nil
	case KindDownloading:
		return Updated(state.widget), ActionNone, nil
	default:
		return invalid(state, event)
	}
}

func invalid(state State, event Event) (State, Action, error) {
	return state, ActionNone, fmt.Errorf("%w: %s in %s", ErrInvalidTransition, EventName(event), state.kind)
}
