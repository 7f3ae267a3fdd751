// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

// Package installer installs, removes and updates widget bundles in the
// widgets directory. Every mutation holds an advisory lock on the directory
// and lands with a rename, so readers never see a half-copied bundle.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"
	"github.com/pockwidgets/widgetctl/internal/adapters/system"
	"github.com/pockwidgets/widgetctl/internal/bundle"
	"github.com/pockwidgets/widgetctl/internal/domain"
	"github.com/pockwidgets/widgetctl/internal/logging"
)

// LockName is the lock file inside the widgets directory.
const LockName = ".lock"

const lockRetryDelay = 50 * time.Millisecond

// ErrLocked is returned when another process holds the widgets directory.
var ErrLocked = errors.New("widgets directory is locked by another process")

// FileInstaller implements domain.Installer on a local widgets directory.
type FileInstaller struct {
	widgetsDir string
	network    domain.NetworkClient
	logger     *log.Logger
}

// New creates an installer for widgetsDir. network is only needed for updates.
func New(widgetsDir string, network domain.NetworkClient, logger *log.Logger) *FileInstaller {
	if logger == nil {
		logger = logging.Discard()
	}

	return &FileInstaller{widgetsDir: widgetsDir, network: network, logger: logger}
}

// WidgetsDir returns the directory widgets are installed into.
func (i *FileInstaller) WidgetsDir() string {
	return i.widgetsDir
}

// PathFor returns where the widget with id is installed.
func (i *FileInstaller) PathFor(id string) string {
	return filepath.Join(i.widgetsDir, id+domain.BundleExtension)
}

// Install copies a parsed bundle into the widgets directory.
func (i *FileInstaller) Install(ctx context.Context, widget domain.WidgetRef) error {
	if err := checkIdentifier(widget); err != nil {
		return err
	}

	unlock, err := i.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	target := i.PathFor(widget.BundleIdentifier)
	if system.FileExists(target) {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyInstalled, widget.Name)
	}

	staging, cleanup, err := i.stage()
	if err != nil {
		return err
	}
	defer cleanup()

	copied := filepath.Join(staging, "bundle")
	if err := system.CopyTree(widget.Path, copied); err != nil {
		return fmt.Errorf("failed to copy %s: %w", widget.Name, err)
	}

	if err := os.Rename(copied, target); err != nil {
		return fmt.Errorf("failed to install %s: %w", widget.Name, err)
	}

	i.logger.Info("installed widget", "widget", widget.BundleIdentifier, "version", widget.FullVersion())

	return nil
}

// Uninstall removes an installed widget.
func (i *FileInstaller) Uninstall(ctx context.Context, widget domain.WidgetRef) error {
	if err := checkIdentifier(widget); err != nil {
		return err
	}

	unlock, err := i.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	target := i.PathFor(widget.BundleIdentifier)
	if !system.FileExists(target) {
		return fmt.Errorf("%w: %s", domain.ErrNotInstalled, widget.Name)
	}

	staging, cleanup, err := i.stage()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := os.Rename(target, filepath.Join(staging, "removed")); err != nil {
		return fmt.Errorf("failed to remove %s: %w", widget.Name, err)
	}

	i.logger.Info("removed widget", "widget", widget.BundleIdentifier)

	return nil
}

// Update downloads version and replaces the installed widget with it. The
// downloaded bundle must carry the same identifier as the installed one.
func (i *FileInstaller) Update(ctx context.Context, widget domain.WidgetRef, version domain.VersionInfo, onProgress domain.ProgressFunc) error {
	if err := checkIdentifier(widget); err != nil {
		return err
	}

	if version.DownloadURL == "" {
		return fmt.Errorf("%w: %s %s", domain.ErrNoDownloadURL, widget.Name, version.Name)
	}

	if i.network == nil {
		return errors.New("no network client configured")
	}

	if err := system.EnsureDir(i.widgetsDir); err != nil {
		return fmt.Errorf("failed to create widgets directory: %w", err)
	}

	staging, cleanup, err := i.stage()
	if err != nil {
		return err
	}
	defer cleanup()

	archive := filepath.Join(staging, widget.BundleIdentifier+domain.BundleExtension)

	i.logger.Debug("downloading widget", "widget", widget.BundleIdentifier, "url", version.DownloadURL)

	if err := i.network.DownloadFile(ctx, version.DownloadURL, archive, onProgress); err != nil {
		return err
	}

	downloaded, err := bundle.NewParser(staging).Parse(ctx, archive)
	if err != nil {
		return domain.InvalidBundle(err.Error())
	}

	if downloaded.BundleIdentifier != widget.BundleIdentifier {
		return fmt.Errorf("%w: got %s", domain.ErrIdentifierChange, downloaded.BundleIdentifier)
	}

	unlock, err := i.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	return i.replace(staging, downloaded)
}

// replace swaps the installed bundle for downloaded, restoring the old one
// if the swap fails.
func (i *FileInstaller) replace(staging string, downloaded domain.WidgetRef) error {
	target := i.PathFor(downloaded.BundleIdentifier)
	previous := filepath.Join(staging, "previous")

	if !system.FileExists(target) {
		return fmt.Errorf("%w: %s", domain.ErrNotInstalled, downloaded.Name)
	}

	if err := os.Rename(target, previous); err != nil {
		return fmt.Errorf("failed to replace %s: %w", downloaded.Name, err)
	}

	if err := os.Rename(downloaded.Path, target); err != nil {
		if restoreErr := os.Rename(previous, target); restoreErr != nil {
			i.logger.Error("could not restore widget", "widget", downloaded.BundleIdentifier, "err", restoreErr)
		}

		return fmt.Errorf("failed to replace %s: %w", downloaded.Name, err)
	}

	i.logger.Info("updated widget", "widget", downloaded.BundleIdentifier, "version", downloaded.FullVersion())

	return nil
}

// stage creates a scratch directory inside the widgets directory so the
// final rename never crosses filesystems.
func (i *FileInstaller) stage() (string, func(), error) {
	if err := system.EnsureDir(i.widgetsDir); err != nil {
		return "", nil, fmt.Errorf("failed to create widgets directory: %w", err)
	}

	staging, err := os.MkdirTemp(i.widgetsDir, ".staging-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	return staging, func() {
		if err := os.RemoveAll(staging); err != nil && !errors.Is(err, fs.ErrNotExist) {
			i.logger.Warn("could not clean staging directory", "path", staging, "err", err)
		}
	}, nil
}

// Lock takes the widgets directory lock, waiting until ctx is done. The
// returned func releases it.
func (i *FileInstaller) Lock(ctx context.Context) (func(), error) {
	if err := system.EnsureDir(i.widgetsDir); err != nil {
		return nil, fmt.Errorf("failed to create widgets directory: %w", err)
	}

	lock := flock.New(filepath.Join(i.widgetsDir, LockName))

	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrLocked, ctx.Err())
		}

		return nil, fmt.Errorf("failed to lock widgets directory: %w", err)
	}

	if !locked {
		return nil, ErrLocked
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			i.logger.Warn("failed to release widgets lock", "err", err)
		}
	}, nil
}

func checkIdentifier(widget domain.WidgetRef) error {
	if !domain.ValidBundleIdentifier(widget.BundleIdentifier) {
		return domain.InvalidBundle(fmt.Sprintf("invalid bundle_identifier %q", widget.BundleIdentifier))
	}

	return nil
}
