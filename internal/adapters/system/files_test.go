// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFile(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()

	tests := []struct {
		name        string
		srcContent  string
		srcPath     string
		dstPath     string
		wantErr     bool
		errContains string
	}{
		{
			name:       "successful file copy",
			srcContent: "render()",
			srcPath:    filepath.Join(tmpDir, "main.js"),
			dstPath:    filepath.Join(tmpDir, "copy.js"),
		},
		{
			name:       "copy to nested directory",
			srcContent: "name = \"Clock\"",
			srcPath:    filepath.Join(tmpDir, "widget.toml"),
			dstPath:    filepath.Join(tmpDir, "Clock.pock", "Contents", "widget.toml"),
		},
		{
			name:        "source file does not exist",
			srcPath:     filepath.Join(tmpDir, "missing.js"),
			dstPath:     filepath.Join(tmpDir, "never.js"),
			wantErr:     true,
			errContains: "failed to read source",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			if testCase.srcContent != "" {
				require.NoError(t, os.WriteFile(testCase.srcPath, []byte(testCase.srcContent), FilePermUserRW))
			}

			err := CopyFile(testCase.srcPath, testCase.dstPath)
			if testCase.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), testCase.errContains)
				assert.False(t, FileExists(testCase.dstPath))

				return
			}

			require.NoError(t, err)

			content, err := os.ReadFile(testCase.dstPath)
			require.NoError(t, err)
			assert.Equal(t, testCase.srcContent, string(content))
		})
	}
}

func TestCopyTree(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "Weather.pock")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "Contents", "Resources"), DirPermDefault))
	require.NoError(t, os.WriteFile(filepath.Join(src, "widget.toml"), []byte("name = \"Weather\""), FilePermUserRW))
	require.NoError(t, os.WriteFile(filepath.Join(src, "Contents", "Resources", "icon.txt"), []byte("icon"), FilePermUserRW))
	require.NoError(t, os.Symlink("/etc/passwd", filepath.Join(src, "Contents", "link")))

	dst := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, CopyTree(src, dst))

	assert.FileExists(t, filepath.Join(dst, "widget.toml"))
	assert.FileExists(t, filepath.Join(dst, "Contents", "Resources", "icon.txt"))
	assert.NoFileExists(t, filepath.Join(dst, "Contents", "link"))
}

func TestCopyTreeMissingSource(t *testing.T) {
	t.Parallel()

	err := CopyTree(filepath.Join(t.TempDir(), "missing"), filepath.Join(t.TempDir(), "copy"))
	require.Error(t, err)
}

func TestEnsureDirAndFileExists(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "a", "b")

	assert.False(t, FileExists(dir))
	require.NoError(t, EnsureDir(dir))
	assert.True(t, FileExists(dir))
	require.NoError(t, EnsureDir(dir))
}
