// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPathUtils_XDGHomes(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name     string
		resolve  func(string) string
		envValue string
		want     string
	}{
		{
			name:     "config home uses XDG_CONFIG_HOME when set",
			resolve:  GetXDGConfigHomeWithEnv,
			envValue: "/custom/config",
			want:     "/custom/config",
		},
		{
			name:    "config home falls back to ~/.config",
			resolve: GetXDGConfigHomeWithEnv,
			want:    filepath.Join(home, ".config"),
		},
		{
			name:     "data home uses XDG_DATA_HOME when set",
			resolve:  GetXDGDataHomeWithEnv,
			envValue: "/custom/data",
			want:     "/custom/data",
		},
		{
			name:    "data home falls back to ~/.local/share",
			resolve: GetXDGDataHomeWithEnv,
			want:    filepath.Join(home, ".local", "share"),
		},
		{
			name:     "state home uses XDG_STATE_HOME when set",
			resolve:  GetXDGStateHomeWithEnv,
			envValue: "/custom/state",
			want:     "/custom/state",
		},
		{
			name:    "state home falls back to ~/.local/state",
			resolve: GetXDGStateHomeWithEnv,
			want:    filepath.Join(home, ".local", "state"),
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, testCase.want, testCase.resolve(testCase.envValue))
		})
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Parallel()

	t.Run("missing file yields defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadWithEnv(filepath.Join(t.TempDir(), "absent.toml"), func(string) string { return "" })
		require.NoError(t, err)
		require.Equal(t, DefaultIndexURL, cfg.IndexURL)
		require.Equal(t, DefaultTimeout, cfg.Timeout.Std())
		require.Equal(t, DefaultCacheTTL, cfg.CacheTTL.Std())
	})

	t.Run("file values override defaults", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.toml")
		content := "widgets_dir = \"/srv/widgets\"\nindex_url = \"http://localhost/index.toml\"\ntimeout = \"90s\"\ncache_ttl = \"5m\"\nlanguage = \"it\"\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := LoadWithEnv(path, func(string) string { return "" })
		require.NoError(t, err)
		require.Equal(t, "/srv/widgets", cfg.WidgetsDir)
		require.Equal(t, "http://localhost/index.toml", cfg.IndexURL)
		require.Equal(t, "1m30s", cfg.Timeout.Std().String())
		require.Equal(t, "5m0s", cfg.CacheTTL.Std().String())
		require.Equal(t, "it", cfg.Language)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("widgets_dir = \"/srv/widgets\"\n"), 0o600))

		env := map[string]string{EnvWidgetsDir: "/env/widgets", EnvIndexURL: "http://env/index.toml"}

		cfg, err := LoadWithEnv(path, func(key string) string { return env[key] })
		require.NoError(t, err)
		require.Equal(t, "/env/widgets", cfg.WidgetsDir)
		require.Equal(t, "http://env/index.toml", cfg.IndexURL)
	})

	t.Run("bad duration is rejected", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("timeout = \"soon\"\n"), 0o600))

		_, err := LoadWithEnv(path, func(string) string { return "" })
		require.Error(t, err)
	})

	t.Run("non-positive cache ttl is rejected", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("cache_ttl = \"0s\"\n"), 0o600))

		_, err := LoadWithEnv(path, func(string) string { return "" })
		require.ErrorIs(t, err, ErrInvalidConfig)
	})
}
