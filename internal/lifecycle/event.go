// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

package lifecycle

import (
	"fmt"

	"github.com/pockwidgets/widgetctl/internal/domain"
)

// Event drives a transition. User input and collaborator callbacks are both
// events.
type Event interface {
	eventName() string
}

// WidgetChosen reports that a dropped or chosen path parsed as a widget.
type WidgetChosen struct {
	Widget domain.WidgetRef
}

// ChoiceFailed reports that a dropped or chosen path did not parse.
type ChoiceFailed struct {
	Reason string
}

// Confirmed is the user activating the primary button of a prompt state.
type Confirmed struct{}

// ProgressReported carries a download progress callback.
type ProgressReported struct {
	Value float64
}

// Completed carries the completion callback of a collaborator operation.
// A nil Err means success.
type Completed struct {
	Err error
}

// Acknowledged is the user activating the primary button of a terminal state.
type Acknowledged struct{}

// Cancelled is the user dismissing a non-terminal session.
type Cancelled struct{}

func (WidgetChosen) eventName() string     { return "widget_chosen" }
func (ChoiceFailed) eventName() string     { return "choice_failed" }
func (Confirmed) eventName() string        { return "confirmed" }
func (ProgressReported) eventName() string { return "progress" }
func (Completed) eventName() string        { return "completed" }
func (Acknowledged) eventName() string     { return "acknowledged" }
func (Cancelled) eventName() string        { return "cancelled" }

// EventName returns a stable name for logging.
func EventName(event Event) string {
	if event == nil {
		return "nil"
	}

	return event.eventName()
}

// Activate returns the event the primary button sends in state: Acknowledged
// for terminal states, Confirmed otherwise.
func Activate(state State) Event {
	if state.Terminal() {
		return Acknowledged{}
	}

	return Confirmed{}
}

func describeEvent(event Event) string {
	switch e := event.(type) {
	case ProgressReported:
		return fmt.Sprintf("progress(%.2f)", e.Value)
	case Completed:
		if e.Err != nil {
			return "completed(" + e.Err.Error() + ")"
		}

		return "completed(ok)"
	default:
		return EventName(event)
	}
}
