// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

// Package bundle reads .pock widget bundles from directories and archives.
package bundle

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pockwidgets/widgetctl/internal/domain"
)

// ErrUnsupportedFormat is returned for paths that are not .pock bundles.
var ErrUnsupportedFormat = errors.New("unsupported format: expected a .pock bundle")

// ParseError carries a reason suitable for display next to the bundle path.
type ParseError struct {
	Path   string
	Reason string
	cause  error
}

// Error returns the display reason.
func (e *ParseError) Error() string {
	return e.Reason
}

// Unwrap exposes the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.cause
}

func newParseError(path string, err error) *ParseError {
	return &ParseError{Path: path, Reason: err.Error(), cause: err}
}

// Parser reads bundle directories directly and extracts archives into a
// staging area first. Staged extractions live until Cleanup.
type Parser struct {
	// StagingDir is where archives are extracted. Empty uses the system temp dir.
	StagingDir string

	mu     sync.Mutex
	staged []string
}

// NewParser creates a parser staging archives under stagingDir.
func NewParser(stagingDir string) *Parser {
	return &Parser{StagingDir: stagingDir}
}

// Parse reads the bundle at path.
func (p *Parser) Parse(ctx context.Context, path string) (domain.WidgetRef, error) {
	if err := ctx.Err(); err != nil {
		return domain.WidgetRef{}, err
	}

	path = strings.TrimSpace(path)
	if path == "" {
		return domain.WidgetRef{}, &ParseError{Reason: domain.UnknownErrorDescription}
	}

	if !strings.EqualFold(filepath.Ext(path), domain.BundleExtension) {
		return domain.WidgetRef{}, newParseError(path, ErrUnsupportedFormat)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.WidgetRef{}, newParseError(path, fmt.Errorf("no such bundle: %s", filepath.Base(path)))
		}

		return domain.WidgetRef{}, newParseError(path, err)
	}

	if info.IsDir() {
		return p.parseDir(path)
	}

	root, err := p.extract(ctx, path)
	if err != nil {
		return domain.WidgetRef{}, newParseError(path, err)
	}

	return p.parseDir(root)
}

// Cleanup removes every staged extraction.
func (p *Parser) Cleanup() error {
	p.mu.Lock()
	staged := p.staged
	p.staged = nil
	p.mu.Unlock()

	var errs []error

	for _, dir := range staged {
		if err := os.RemoveAll(dir); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (p *Parser) parseDir(dir string) (domain.WidgetRef, error) {
	// #nosec G304 -- reading the manifest of a user selected bundle
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.WidgetRef{}, newParseError(dir, fmt.Errorf("missing %s", ManifestName))
		}

		return domain.WidgetRef{}, newParseError(dir, err)
	}

	manifest, err := DecodeManifest(data)
	if err != nil {
		return domain.WidgetRef{}, newParseError(dir, err)
	}

	if err := manifest.Validate(); err != nil {
		return domain.WidgetRef{}, newParseError(dir, err)
	}

	contents, err := os.Stat(filepath.Join(dir, ContentsDir))
	if err != nil || !contents.IsDir() {
		return domain.WidgetRef{}, newParseError(dir, fmt.Errorf("missing %s directory", ContentsDir))
	}

	return manifest.Widget(dir), nil
}

func (p *Parser) extract(ctx context.Context, archive string) (string, error) {
	staging, err := os.MkdirTemp(p.StagingDir, "bundle-*")
	if err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	p.mu.Lock()
	p.staged = append(p.staged, staging)
	p.mu.Unlock()

	if err := Extract(ctx, archive, staging); err != nil {
		return "", err
	}

	return bundleRoot(staging)
}

// bundleRoot finds the directory holding the manifest: either the staging
// directory itself or its single top-level child.
func bundleRoot(staging string) (string, error) {
	if _, err := os.Stat(filepath.Join(staging, ManifestName)); err == nil {
		return staging, nil
	}

	entries, err := os.ReadDir(staging)
	if err != nil {
		return "", err
	}

	var dirs []string

	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), "__MACOSX") {
			dirs = append(dirs, entry.Name())
		}
	}

	if len(dirs) != 1 {
		return "", fmt.Errorf("missing %s", ManifestName)
	}

	return filepath.Join(staging, dirs[0]), nil
}
