// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

// Package lifecycle models the install, remove and update journey of a
// single widget as a finite state machine, renders each state to the fields
// a host UI displays, and runs the collaborator calls each confirmation
// triggers.
package lifecycle

import (
	"fmt"
	"math"

	"github.com/pockwidgets/widgetctl/internal/domain"
)

// Kind is the active variant of a State.
type Kind int

// State kinds.
const (
	KindDragDrop Kind = iota
	KindRemove
	KindInstall
	KindUpdate
	KindRemoving
	KindInstalling
	KindDownloading
	KindError
	KindRemoved
	KindInstalled
	KindUpdated
)

// Kinds lists every state kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindDragDrop, KindRemove, KindInstall, KindUpdate,
		KindRemoving, KindInstalling, KindDownloading,
		KindError, KindRemoved, KindInstalled, KindUpdated,
	}
}

var kindNames = map[Kind]string{ //nolint:gochecknoglobals
	KindDragDrop:    "dragdrop",
	KindRemove:      "remove",
	KindInstall:     "install",
	KindUpdate:      "update",
	KindRemoving:    "removing",
	KindInstalling:  "installing",
	KindDownloading: "downloading",
	KindError:       "error",
	KindRemoved:     "removed",
	KindInstalled:   "installed",
	KindUpdated:     "updated",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// State is the single source of truth for what a session renders. Exactly
// one kind is active; the payload fields that kind does not use stay zero.
// Build states with the constructors below.
type State struct {
	kind     Kind
	widget   domain.WidgetRef
	version  domain.VersionInfo
	progress float64
	err      *domain.InstallError
}

// DragDrop waits for the user to drop or choose a bundle.
func DragDrop() State { return State{kind: KindDragDrop} }

// Remove asks the user to confirm removing widget.
func Remove(widget domain.WidgetRef) State { return State{kind: KindRemove, widget: widget} }

// Install asks the user to confirm installing widget.
func Install(widget domain.WidgetRef) State { return State{kind: KindInstall, widget: widget} }

// Update offers version of widget along with its changelog.
func Update(widget domain.WidgetRef, version domain.VersionInfo) State {
	return State{kind: KindUpdate, widget: widget, version: version}
}

// Removing is shown while the installer removes widget.
func Removing(widget domain.WidgetRef) State { return State{kind: KindRemoving, widget: widget} }

// Installing is shown while the installer installs widget.
func Installing(widget domain.WidgetRef) State {
	return State{kind: KindInstalling, widget: widget}
}

// Downloading is shown while an update downloads. Progress is clamped to
// [0,1] and NaN is treated as 0.
func Downloading(widget domain.WidgetRef, progress float64) State {
	return State{kind: KindDownloading, widget: widget, progress: ClampProgress(progress)}
}

// Failed ends a session with err. A nil err becomes an unknown error.
func Failed(err *domain.InstallError) State {
	if err == nil {
		err = domain.UnknownError()
	}

	return State{kind: KindError, err: err}
}

// Removed ends a successful removal.
func Removed(widget domain.WidgetRef) State { return State{kind: KindRemoved, widget: widget} }

// Installed ends a successful install.
func Installed(widget domain.WidgetRef) State {
	return State{kind: KindInstalled, widget: widget}
}

// Updated ends a successful update.
func Updated(widget domain.WidgetRef) State { return State{kind: KindUpdated, widget: widget} }

// ClampProgress limits p to [0,1].
func ClampProgress(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

// Kind returns the active variant.
func (s State) Kind() Kind { return s.kind }

// Widget returns the widget payload. It is zero for DragDrop and Error.
func (s State) Widget() domain.WidgetRef { return s.widget }

// Version returns the offered version. It is only set for Update.
func (s State) Version() domain.VersionInfo { return s.version }

// Progress returns the download fraction. It is only set for Downloading.
func (s State) Progress() float64 { return s.progress }

// Err returns the failure payload. It is only set for Error.
func (s State) Err() *domain.InstallError { return s.err }

// Busy reports whether a collaborator call is in flight.
func (s State) Busy() bool {
	switch s.kind {
	case KindRemoving, KindInstalling, KindDownloading:
		return true
	default:
		return false
	}
}

// Terminal reports whether the session ends in this state.
func (s State) Terminal() bool {
	switch s.kind {
	case KindError, KindRemoved, KindInstalled, KindUpdated:
		return true
	default:
		return false
	}
}

// Equal compares kind and payload.
func (s State) Equal(other State) bool {
	if s.kind != other.kind || s.progress != other.progress || s.version != other.version {
		return false
	}

	if s.widget.BundleIdentifier != other.widget.BundleIdentifier ||
		s.widget.Name != other.widget.Name ||
		s.widget.FullVersion() != other.widget.FullVersion() {
		return false
	}

	switch {
	case s.err == nil && other.err == nil:
		return true
	case s.err == nil || other.err == nil:
		return false
	default:
		return s.err.Kind == other.err.Kind && s.err.Description() == other.err.Description()
	}
}

func (s State) String() string {
	switch s.kind {
	case KindDragDrop:
		return s.kind.String()
	case KindUpdate:
		return fmt.Sprintf("%s(%s, %s)", s.kind, s.widget.BundleIdentifier, s.version.Name)
	case KindDownloading:
		return fmt.Sprintf("%s(%s, %.2f)", s.kind, s.widget.BundleIdentifier, s.progress)
	case KindError:
		return fmt.Sprintf("%s(%s)", s.kind, s.err.Description())
	default:
		return fmt.Sprintf("%s(%s)", s.kind, s.widget.BundleIdentifier)
	}
}
