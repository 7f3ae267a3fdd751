// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import (
	"errors"
	"strings"
)

// UnknownErrorDescription is shown when no better description exists.
const UnknownErrorDescription = "unknown error"

// ErrorKind classifies an InstallError.
type ErrorKind int

// Error kinds.
const (
	KindUnknown ErrorKind = iota
	KindInvalidBundle
	KindOperationFailed
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidBundle:
		return "invalid_bundle"
	case KindOperationFailed:
		return "operation_failed"
	case KindUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// InstallError is the terminal payload of a failed install, remove or update
// session. Its description is shown to the user verbatim.
type InstallError struct {
	Kind   ErrorKind
	Reason string
	cause  error
}

// InvalidBundle returns an error for a path that could not be parsed as a widget.
func InvalidBundle(reason string) *InstallError {
	return &InstallError{Kind: KindInvalidBundle, Reason: reason}
}

// OperationFailed returns an error for a failed install, uninstall or update.
func OperationFailed(description string) *InstallError {
	return &InstallError{Kind: KindOperationFailed, Reason: description}
}

// UnknownError returns an error without a known cause.
func UnknownError() *InstallError {
	return &InstallError{Kind: KindUnknown}
}

// AsInstallError converts a collaborator error. An *InstallError anywhere in
// the chain is returned as is; anything else becomes OperationFailed with the
// original message kept verbatim.
func AsInstallError(err error) *InstallError {
	if err == nil {
		return nil
	}

	var installErr *InstallError
	if errors.As(err, &installErr) {
		return installErr
	}

	if strings.TrimSpace(err.Error()) == "" {
		return &InstallError{Kind: KindUnknown, cause: err}
	}

	return &InstallError{Kind: KindOperationFailed, Reason: err.Error(), cause: err}
}

// Description returns the text shown to the user.
func (e *InstallError) Description() string {
	if e == nil {
		return UnknownErrorDescription
	}

	switch e.Kind {
	case KindInvalidBundle:
		if e.Reason == "" {
			return "invalid bundle"
		}

		return "invalid bundle: " + e.Reason
	case KindOperationFailed:
		if e.Reason == "" {
			return UnknownErrorDescription
		}

		return e.Reason
	case KindUnknown:
		return UnknownErrorDescription
	default:
		return UnknownErrorDescription
	}
}

func (e *InstallError) Error() string {
	return e.Description()
}

// Unwrap returns the collaborator error this one was built from, if any.
func (e *InstallError) Unwrap() error {
	return e.cause
}

// Is matches two install errors of the same kind and reason.
func (e *InstallError) Is(target error) bool {
	other, ok := target.(*InstallError)
	if !ok || other == nil {
		return false
	}

	return e.Kind == other.Kind && e.Reason == other.Reason
}
