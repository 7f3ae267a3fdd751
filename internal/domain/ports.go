// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import (
	"context"
	"errors"
)

// Common domain errors.
var (
	ErrWidgetNotFound   = errors.New("widget not found")
	ErrAlreadyInstalled = errors.New("already installed")
	ErrNotInstalled     = errors.New("not installed")
	ErrIdentifierChange = errors.New("bundle identifier does not match installed widget")
	ErrNoDownloadURL    = errors.New("version has no download url")
)

// ProgressFunc receives download progress as a fraction in [0,1].
// It may be called from a worker goroutine.
type ProgressFunc func(fraction float64)

// BundleParser turns a user supplied path into a widget reference.
type BundleParser interface {
	// Parse reads the bundle at path. The error text is suitable for display.
	Parse(ctx context.Context, path string) (WidgetRef, error)
}

// Installer performs the long-running widget operations. Implementations
// block until done; callers run them on a worker goroutine.
type Installer interface {
	// Install copies a parsed bundle into the widgets directory.
	Install(ctx context.Context, widget WidgetRef) error

	// Uninstall removes an installed widget.
	Uninstall(ctx context.Context, widget WidgetRef) error

	// Update downloads version and replaces the installed widget with it.
	Update(ctx context.Context, widget WidgetRef, version VersionInfo, onProgress ProgressFunc) error
}

// VersionChecker answers whether a newer version of a widget exists.
type VersionChecker interface {
	CheckForNewVersion(ctx context.Context, widget WidgetRef) VersionCheck
}

// WidgetLoader lists installed widgets.
type WidgetLoader interface {
	// Installed returns the installed widgets sorted by name.
	Installed(ctx context.Context) ([]WidgetRef, error)
}

// AppController is the host application shell a session hands control back to.
type AppController interface {
	// Reload rescans widgets, optionally refreshing known latest versions.
	Reload(ctx context.Context, fetchLatestVersions bool) error

	// Relaunch restarts the application so updated widgets are loaded.
	Relaunch(ctx context.Context) error
}

// NetworkClient downloads files.
type NetworkClient interface {
	// DownloadFile downloads url to destPath, reporting byte progress.
	DownloadFile(ctx context.Context, url, destPath string, onProgress ProgressFunc) error

	// Fetch returns the body of url.
	Fetch(ctx context.Context, url string) ([]byte, error)
}
