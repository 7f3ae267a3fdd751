// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

package bundle

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Extraction limits.
const (
	maxArchiveEntries = 10000
	maxEntrySize      = 256 << 20
)

// ErrUnsafeArchive is returned when an entry would escape the destination.
var ErrUnsafeArchive = errors.New("archive entry escapes bundle")

// Extract unpacks the zip archive at src into dest.
func Extract(ctx context.Context, src, dest string) error {
	reader, err := zip.OpenReader(src)
	if errors.Is(err, zip.ErrInsecurePath) {
		_ = reader.Close()

		return fmt.Errorf("%w: %w", ErrUnsafeArchive, err)
	}

	if err != nil {
		return fmt.Errorf("not a widget archive: %w", err)
	}
	defer func() { _ = reader.Close() }()

	if len(reader.File) > maxArchiveEntries {
		return fmt.Errorf("archive has too many entries (%d)", len(reader.File))
	}

	for _, file := range reader.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := extractEntry(file, dest); err != nil {
			return err
		}
	}

	return nil
}

func extractEntry(file *zip.File, dest string) error {
	target, err := safeJoin(dest, file.Name)
	if err != nil {
		return err
	}

	mode := file.Mode()

	switch {
	case mode.IsDir():
		return os.MkdirAll(target, 0o750)
	case mode&os.ModeSymlink != 0:
		return fmt.Errorf("%w: symlink %s", ErrUnsafeArchive, file.Name)
	}

	if file.UncompressedSize64 > maxEntrySize {
		return fmt.Errorf("archive entry %s is too large", file.Name)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return err
	}

	in, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file.Name, err)
	}
	defer func() { _ = in.Close() }()

	// #nosec G304 -- target is checked by safeJoin
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm()|0o600)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, io.LimitReader(in, maxEntrySize)); err != nil {
		_ = out.Close()

		return fmt.Errorf("failed to extract %s: %w", file.Name, err)
	}

	return out.Close()
}

func safeJoin(dest, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafeArchive, name)
	}

	target := filepath.Join(dest, cleaned)

	rel, err := filepath.Rel(dest, target)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %s", ErrUnsafeArchive, name)
	}

	return target, nil
}
