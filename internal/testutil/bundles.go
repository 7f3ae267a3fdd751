// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

package testutil

import (
	"archive/zip"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/pockwidgets/widgetctl/internal/domain"
	"github.com/stretchr/testify/require"
)

// ManifestFor renders a widget.toml for widget.
func ManifestFor(widget domain.WidgetRef) string {
	manifest := fmt.Sprintf("name = %q\nauthor = %q\nversion = %q\nbundle_identifier = %q\n",
		widget.Name, widget.Author, widget.Version, widget.BundleIdentifier)

	if widget.Build != "" {
		manifest += fmt.Sprintf("build = %q\n", widget.Build)
	}

	for _, pref := range widget.Preferences {
		manifest += fmt.Sprintf("\n[[preferences]]\nkey = %q\ntitle = %q\ntype = %q\n", pref.Key, pref.Title, pref.Type)
	}

	return manifest
}

// WriteBundle creates <dir>/<name>.pock with the given manifest and a
// Contents directory, returning its path.
func WriteBundle(t *testing.T, dir, name, manifest string) string {
	t.Helper()

	root := filepath.Join(dir, name+domain.BundleExtension)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Contents"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "widget.toml"), []byte(manifest), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Contents", "main.js"), []byte("render()\n"), 0o600))

	return root
}

// WriteWidgetBundle writes a bundle for widget named after its identifier.
func WriteWidgetBundle(t *testing.T, dir string, widget domain.WidgetRef) string {
	t.Helper()

	return WriteBundle(t, dir, widget.BundleIdentifier, ManifestFor(widget))
}

// ZipBundle writes the bundle directory src as a zip archive at dest with
// entries rooted at the bundle directory name.
func ZipBundle(t *testing.T, src, dest string) {
	t.Helper()

	out, err := os.Create(dest) // #nosec G304 -- test temp dir
	require.NoError(t, err)

	writer := zip.NewWriter(out)
	base := filepath.Base(src)

	err = filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		name := filepath.ToSlash(filepath.Join(base, rel))
		if entry.IsDir() {
			_, err = writer.Create(name + "/")

			return err
		}

		data, err := os.ReadFile(path) // #nosec G304 -- test temp dir
		if err != nil {
			return err
		}

		file, err := writer.Create(name)
		if err != nil {
			return err
		}

		_, err = file.Write(data)

		return err
	})
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	require.NoError(t, out.Close())
}
