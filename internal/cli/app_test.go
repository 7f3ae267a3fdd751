// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pockwidgets/widgetctl/internal/adapters/network"
	"github.com/pockwidgets/widgetctl/internal/bundle"
	"github.com/pockwidgets/widgetctl/internal/config"
	"github.com/pockwidgets/widgetctl/internal/console"
	"github.com/pockwidgets/widgetctl/internal/domain"
	"github.com/pockwidgets/widgetctl/internal/installer"
	"github.com/pockwidgets/widgetctl/internal/testutil"
	"github.com/pockwidgets/widgetctl/internal/tui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const weatherIndex = `[widgets."com.pock.widget.weather"]
version = "1.3.0"
changelog = "- Faster refresh"
download_url = "https://example.com/weather-1.3.0.pock"
`

func clockWidget() domain.WidgetRef {
	return domain.WidgetRef{
		Name:             "Clock",
		Author:           "Pock Team",
		Version:          "2.0.0",
		BundleIdentifier: "com.pock.widget.clock",
	}
}

type harness struct {
	t          *testing.T
	widgetsDir string
	configPath string
	indexURL   string
	terminal   bool
	answer     bool
	launched   bool
	relaunch   bool

	mu      sync.Mutex
	prompts []Prompt
	stdout  bytes.Buffer
	stderr  bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, weatherIndex)
	}))
	t.Cleanup(server.Close)

	root := t.TempDir()
	h := &harness{
		t:          t,
		widgetsDir: filepath.Join(root, "widgets"),
		configPath: filepath.Join(root, "config.toml"),
		indexURL:   server.URL + "/index.toml",
		answer:     true,
	}

	require.NoError(t, os.MkdirAll(h.widgetsDir, 0o750))
	require.NoError(t, os.WriteFile(h.configPath,
		[]byte(fmt.Sprintf("state_dir = %q\n", filepath.Join(root, "state"))), 0o600))

	return h
}

func (h *harness) install(widget domain.WidgetRef) string {
	h.t.Helper()

	return testutil.WriteWidgetBundle(h.t, h.widgetsDir, widget)
}

func (h *harness) env(key string) string {
	switch key {
	case config.EnvWidgetsDir:
		return h.widgetsDir
	case config.EnvIndexURL:
		return h.indexURL
	default:
		return ""
	}
}

func (h *harness) confirm(_ context.Context, prompt Prompt) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.prompts = append(h.prompts, prompt)

	return h.answer, nil
}

func (h *harness) launch(_ context.Context, deps tui.Dependencies) (bool, error) {
	h.launched = deps.Service != nil && deps.Localizer != nil

	return h.relaunch, nil
}

func (h *harness) build(opts ...Option) *CLI {
	base := []Option{
		WithOutput(&console.OutputState{Out: &h.stdout, Err: &h.stderr}),
		WithTerminal(func() bool { return h.terminal }),
		WithEnv(h.env),
		WithConfirm(h.confirm),
		WithTUILauncher(h.launch),
	}

	return NewCLI(append(base, opts...)...)
}

func (h *harness) run(args ...string) error {
	h.t.Helper()

	app := h.build()

	return app.Run(context.Background(), append([]string{"widgetctl", "--config", h.configPath}, args...))
}

func (h *harness) lastJSON() map[string]any {
	h.t.Helper()

	lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
	require.NotEmpty(h.t, lines)

	var result map[string]any
	require.NoError(h.t, json.Unmarshal([]byte(lines[len(lines)-1]), &result))

	return result
}

func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()

	var exitErr *domain.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, code, exitErr.Code, exitErr.Message)
}

func TestNewCLI(t *testing.T) {
	t.Parallel()

	app := NewCLI()

	require.NotNil(t, app.Command())
	assert.Equal(t, config.AppName, app.Command().Name)
	assert.NotEmpty(t, app.Command().Usage)
	assert.NotEmpty(t, app.Command().Description)

	names := map[string]bool{}
	for _, cmd := range app.Command().Commands {
		names[cmd.Name] = true
	}

	for _, expected := range []string{"list", "info", "install", "remove", "update", "check", "tui", "version"} {
		assert.True(t, names[expected], "command %s should exist", expected)
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"exit error keeps code", domain.NewExitError(ExitConfigError, "bad", nil), ExitConfigError},
		{"cancelled", context.Canceled, ExitInterruptError},
		{"deadline", fmt.Errorf("fetch: %w", context.DeadlineExceeded), ExitTimeoutError},
		{"confirmation", ErrConfirmationRequired, ExitUsageError},
		{"missing argument", fmt.Errorf("%w: path", ErrMissingArgument), ExitUsageError},
		{"invalid config", fmt.Errorf("%w: timeout", config.ErrInvalidConfig), ExitConfigError},
		{"permission", os.ErrPermission, ExitPermissionError},
		{"not found", fmt.Errorf("%w: x", domain.ErrWidgetNotFound), ExitNotFoundError},
		{"not installed", domain.ErrNotInstalled, ExitNotFoundError},
		{"request failed", fmt.Errorf("%w: dial", network.ErrRequestFailed), ExitNetworkError},
		{"bad status", fmt.Errorf("%w with status 404", network.ErrBadStatus), ExitNetworkError},
		{"locked", installer.ErrLocked, ExitSystemError},
		{"invalid bundle", domain.InvalidBundle("no manifest"), ExitBundleError},
		{"unsupported format", bundle.ErrUnsupportedFormat, ExitBundleError},
		{"unsafe archive", fmt.Errorf("%w: ../x", bundle.ErrUnsafeArchive), ExitBundleError},
		{"already installed", domain.AsInstallError(fmt.Errorf("%w: Weather", domain.ErrAlreadyInstalled)), ExitWidgetError},
		{"identifier change", domain.ErrIdentifierChange, ExitWidgetError},
		{"no download url", domain.ErrNoDownloadURL, ExitWidgetError},
		{"other install error", domain.OperationFailed("disk full"), ExitWidgetError},
		{"anything else", errors.New("boom"), ExitGeneralError},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, exitCode(testCase.err))
		})
	}
}

func TestGlobalFlagErrors(t *testing.T) {
	t.Parallel()

	t.Run("json and plain", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		requireExitCode(t, h.run("--json", "--plain", "list"), ExitUsageError)
	})

	t.Run("invalid config", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		require.NoError(t, os.WriteFile(h.configPath, []byte("cache_ttl = \"-1s\"\n"), 0o600))

		err := h.run("list")
		requireExitCode(t, err, ExitConfigError)
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("unknown default argument", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		requireExitCode(t, h.run("frobnicate"), ExitUsageError)
	})
}

func TestListCommand(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.install(testutil.SampleWidget())
	h.install(clockWidget())
	testutil.WriteBundle(t, h.widgetsDir, "broken", "not = [toml")

	require.NoError(t, h.run("--plain", "list"))

	out := h.stdout.String()
	assert.Contains(t, out, "com.pock.widget.clock:ok\n")
	assert.Contains(t, out, "broken:not loaded\n")
	assert.Contains(t, out, "com.pock.widget.weather:")
	assert.NotContains(t, out, "com.pock.widget.weather:ok")
}

func TestListCommandJSONFilter(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.install(testutil.SampleWidget())
	h.install(clockWidget())

	require.NoError(t, h.run("--json", "list", "--filter", "wea"))

	result := h.lastJSON()
	assert.Equal(t, "success", result["status"])

	widgets, ok := result["widgets"].([]any)
	require.True(t, ok)
	require.Len(t, widgets, 1)

	widget, ok := widgets[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "com.pock.widget.weather", widget["id"])
	assert.Equal(t, "1.2.0 (12)", widget["version"])
}

func TestDefaultActionWithoutTerminalLists(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.install(clockWidget())

	require.NoError(t, h.run("--plain"))

	assert.False(t, h.launched)
	assert.Contains(t, h.stdout.String(), "com.pock.widget.clock:ok")
}

func TestDefaultActionOnTerminalLaunchesTUI(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.terminal = true
	h.relaunch = true

	app := h.build()
	require.NoError(t, app.Run(context.Background(), []string{"widgetctl", "--config", h.configPath}))

	assert.True(t, h.launched)
	assert.True(t, app.Relaunch())
}

func TestInfoCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  []string
	}{
		{
			name:    "installed widget",
			args:    []string{"--plain", "info", "com.pock.widget.weather"},
			wantOut: []string{"name:Weather\n", "author:Pock Team\n", "version:1.2.0 (12)\n"},
		},
		{
			name:     "unknown widget",
			args:     []string{"info", "com.pock.widget.missing"},
			wantCode: ExitNotFoundError,
		},
		{
			name:     "missing argument",
			args:     []string{"info"},
			wantCode: ExitUsageError,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			h.install(testutil.SampleWidget())

			err := h.run(testCase.args...)
			if testCase.wantCode != 0 {
				requireExitCode(t, err, testCase.wantCode)

				return
			}

			require.NoError(t, err)

			for _, want := range testCase.wantOut {
				assert.Contains(t, h.stdout.String(), want)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	require.NoError(t, h.run("--plain", "version"))
	assert.Equal(t, "version:"+Version+"\n", h.stdout.String())
}

func TestCheckCommand(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.install(testutil.SampleWidget())
	h.install(clockWidget())

	require.NoError(t, h.run("--plain", "check"))

	out := h.stdout.String()
	assert.Contains(t, out, "com.pock.widget.weather:1.3.0\n")
	assert.Contains(t, out, "com.pock.widget.clock:current\n")
}
