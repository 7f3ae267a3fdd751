// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

// Package cli provides the widgetctl command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pockwidgets/widgetctl/internal/adapters/network"
	"github.com/pockwidgets/widgetctl/internal/application"
	"github.com/pockwidgets/widgetctl/internal/bundle"
	"github.com/pockwidgets/widgetctl/internal/config"
	"github.com/pockwidgets/widgetctl/internal/console"
	"github.com/pockwidgets/widgetctl/internal/domain"
	"github.com/pockwidgets/widgetctl/internal/i18n"
	"github.com/pockwidgets/widgetctl/internal/installer"
	"github.com/pockwidgets/widgetctl/internal/loader"
	"github.com/pockwidgets/widgetctl/internal/logging"
	"github.com/pockwidgets/widgetctl/internal/tui"
	"github.com/pockwidgets/widgetctl/internal/updater"
	"github.com/urfave/cli/v3"
)

// Exit codes follow standard Unix conventions for better scripting support.
// Range 0-125 are safe to use (126+ have special meaning in shells).
const (
	// Standard Unix exit codes (0-10).
	ExitSuccess         = 0 // Operation completed successfully
	ExitGeneralError    = 1 // Generic failure (catch-all)
	ExitUsageError      = 2 // Invalid command line usage
	ExitConfigError     = 3 // Configuration file error
	ExitPermissionError = 4 // Permission denied
	ExitNotFoundError   = 5 // Requested widget or bundle not found

	// Network and system errors (10-19).
	ExitNetworkError   = 11 // Network operation failed
	ExitSystemError    = 12 // Widgets directory locked or unusable
	ExitTimeoutError   = 13 // Operation timed out
	ExitInterruptError = 14 // User interrupted (Ctrl+C)

	// Application-specific errors (20-29).
	ExitBundleError = 20 // Chosen path is not a widget bundle
	ExitWidgetError = 22 // Widget install, removal or update failed
)

var (
	// ErrConfirmationRequired is returned when a prompt cannot be shown and --yes was not given.
	ErrConfirmationRequired = errors.New("confirmation required: rerun with --yes")
	// ErrMissingArgument is returned when a command argument is missing.
	ErrMissingArgument = errors.New("missing argument")
)

// ConfirmFunc asks the user to accept a prompt.
type ConfirmFunc func(ctx context.Context, prompt Prompt) (bool, error)

// TUILauncher runs the interactive manager and reports whether it asked to relaunch.
type TUILauncher func(ctx context.Context, deps tui.Dependencies) (bool, error)

// Option configures a CLI.
type Option func(*CLI)

// WithOutput replaces the console output.
func WithOutput(out *console.OutputState) Option {
	return func(c *CLI) {
		c.out = out
	}
}

// WithConfirm replaces the interactive confirmation prompt.
func WithConfirm(confirm ConfirmFunc) Option {
	return func(c *CLI) {
		c.confirm = confirm
	}
}

// WithTUILauncher replaces the TUI entry point.
func WithTUILauncher(launch TUILauncher) Option {
	return func(c *CLI) {
		c.launchTUI = launch
	}
}

// WithTerminal overrides terminal detection.
func WithTerminal(isTerminal func() bool) Option {
	return func(c *CLI) {
		c.isTerminal = isTerminal
	}
}

// WithEnv replaces the environment lookup used for config overrides.
func WithEnv(getenv func(string) string) Option {
	return func(c *CLI) {
		c.getenv = getenv
	}
}

// CLI holds global flags and the lazily wired collaborators.
type CLI struct {
	app *cli.Command

	verbose    bool
	json       bool
	plain      bool
	yes        bool
	timeout    time.Duration
	configPath string
	lang       string

	out        *console.OutputState
	confirm    ConfirmFunc
	launchTUI  TUILauncher
	isTerminal func() bool
	getenv     func(string) string

	cfg       *config.Config
	loc       *i18n.Localizer
	logger    *log.Logger
	logCloser io.Closer
	parser    *bundle.Parser
	service   *application.WidgetService
	relaunch  bool
}

// NewCLI creates the widgetctl command tree.
func NewCLI(opts ...Option) *CLI {
	app := &CLI{
		out:        console.DefaultOutput,
		launchTUI:  tui.Run,
		isTerminal: console.DefaultOutput.IsTTY,
		getenv:     os.Getenv,
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.confirm == nil {
		app.confirm = app.promptConfirm
	}

	app.app = &cli.Command{
		Name:        config.AppName,
		Usage:       "Install, update and remove Pock widgets",
		Version:     Version,
		HideVersion: true,
		Suggest:     true,
		Description: `Manages the widget bundles in your widgets directory.

QUICK START:
  widgetctl                       Open the interactive manager
  widgetctl list                  Show installed widgets
  widgetctl install Weather.pock  Install a widget bundle
  widgetctl update <id>           Update a widget to the latest version`,
		Writer:    app.out.Out,
		ErrWriter: app.out.Err,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "verbose",
				Usage:       "show progress messages and debug logs on stderr",
				Aliases:     []string{"v"},
				Destination: &app.verbose,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output structured JSON results",
				Aliases:     []string{"j"},
				Destination: &app.json,
			},
			&cli.BoolFlag{
				Name:        "plain",
				Usage:       "output plain text without formatting for scripts",
				Destination: &app.plain,
			},
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "automatically answer yes to all prompts",
				Destination: &app.yes,
			},
			&cli.DurationFlag{
				Name:        "timeout",
				Usage:       "timeout for network operations (0 = no timeout)",
				Value:       config.DefaultTimeout,
				Destination: &app.timeout,
			},
			&cli.StringFlag{
				Name:        "config",
				Usage:       "path to config.toml",
				Destination: &app.configPath,
			},
			&cli.StringFlag{
				Name:        "lang",
				Usage:       "language for widget messages (en, it)",
				Destination: &app.lang,
			},
		},
		Before:   app.initConfig,
		After:    app.cleanup,
		Action:   app.defaultAction,
		Commands: app.createAllCommands(),
	}

	return app
}

// Run executes the CLI application.
func (app *CLI) Run(ctx context.Context, args []string) error {
	return app.app.Run(ctx, args)
}

// Relaunch reports whether the interactive manager asked to restart.
func (app *CLI) Relaunch() bool {
	return app.relaunch
}

// Command returns the root command.
func (app *CLI) Command() *cli.Command {
	return app.app
}

func (app *CLI) createAllCommands() []*cli.Command {
	return []*cli.Command{
		app.createListCommand(),
		app.createInfoCommand(),
		app.createInstallCommand(),
		app.createRemoveCommand(),
		app.createUpdateCommand(),
		app.createCheckCommand(),
		app.createTUICommand(),
		app.createVersionCommand(),
	}
}

// initConfig validates global flags and loads the config file.
func (app *CLI) initConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if app.json && app.plain {
		return ctx, domain.NewExitError(ExitUsageError, "cannot use both --json and --plain flags simultaneously", nil)
	}

	app.out.SetMode(app.verbose, app.json, app.plain)

	cfg, err := config.LoadWithEnv(app.configPath, app.getenv)
	if err != nil {
		return ctx, domain.NewExitError(ExitConfigError, fmt.Sprintf("failed to load configuration: %v", err), err)
	}

	if cmd.IsSet("timeout") {
		cfg.Timeout = config.Duration(app.timeout)
	}

	if app.lang != "" {
		cfg.Language = app.lang
	}

	app.cfg = cfg
	app.loc = i18n.New(cfg.Language)

	return ctx, nil
}

func (app *CLI) cleanup(_ context.Context, _ *cli.Command) error {
	if app.parser != nil {
		if err := app.parser.Cleanup(); err != nil {
			app.logger.Warn("failed to remove staged bundles", "err", err)
		}
	}

	if app.logCloser != nil {
		_ = app.logCloser.Close()
	}

	return nil
}

// wire builds the collaborators once. In TUI mode logs go to a file so the
// terminal stays clean.
func (app *CLI) wire(tuiMode bool) error {
	if app.service != nil {
		return nil
	}

	switch {
	case tuiMode:
		logger, closer, err := logging.OpenFile(app.cfg.StateDir, app.verbose)
		if err != nil {
			return domain.NewExitError(ExitPermissionError, "failed to open log file", err)
		}

		app.logger = logger
		app.logCloser = closer
	case app.verbose:
		app.logger = logging.New(app.out.Err, true)
	default:
		app.logger = logging.Discard()
	}

	client := network.NewHTTPClient(app.cfg.Timeout.Std())

	app.parser = bundle.NewParser(filepath.Join(os.TempDir(), config.AppName))
	checker := updater.New(client, app.cfg.IndexURL, app.cfg.CacheTTL.Std(), app.logger)

	app.service = application.NewWidgetService(application.Dependencies{
		Loader:    loader.New(app.cfg.WidgetsDir, app.parser, app.loc.Tag(), app.logger),
		Checker:   checker,
		Parser:    app.parser,
		Installer: installer.New(app.cfg.WidgetsDir, client, app.logger),
		Localizer: app.loc,
		Logger:    app.logger,
	})

	app.logger.Debug("wired", "widgets_dir", app.cfg.WidgetsDir, "index", app.cfg.IndexURL, "lang", app.loc.Tag().String())

	return nil
}

// withTimeout applies the configured timeout to ctx.
func (app *CLI) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if timeout := app.cfg.Timeout.Std(); timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}

	return ctx, func() {}
}

// defaultAction opens the manager on a terminal and lists widgets otherwise.
func (app *CLI) defaultAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() > 0 {
		return domain.NewExitError(ExitUsageError, fmt.Sprintf("'%s' is not a command, run 'widgetctl --help'", cmd.Args().First()), nil)
	}

	if app.json || app.plain || !app.isTerminal() {
		return app.runList(ctx, cmd)
	}

	return app.runTUI(ctx)
}

// fail converts err to an ExitError carrying a user-friendly message. In
// JSON mode the error is also written to stdout.
func (app *CLI) fail(err error, widget string) error {
	var exitErr *domain.ExitError
	if !errors.As(err, &exitErr) {
		exitErr = domain.NewExitError(exitCode(err), domain.FormatErrorMessage(err, widget, app.verbose), err)
	}

	if app.json {
		app.out.JSONResult("error", map[string]any{
			"error": err.Error(),
			"code":  exitErr.Code,
		})
	}

	return exitErr
}

// exitCode classifies err.
func exitCode(err error) int {
	var exitErr *domain.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var installErr *domain.InstallError
	if errors.As(err, &installErr) && installErr.Kind == domain.KindInvalidBundle {
		return ExitBundleError
	}

	switch {
	case errors.Is(err, context.Canceled):
		return ExitInterruptError
	case errors.Is(err, context.DeadlineExceeded):
		return ExitTimeoutError
	case errors.Is(err, ErrConfirmationRequired), errors.Is(err, ErrMissingArgument):
		return ExitUsageError
	case errors.Is(err, config.ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, fs.ErrPermission):
		return ExitPermissionError
	case errors.Is(err, domain.ErrWidgetNotFound), errors.Is(err, domain.ErrNotInstalled):
		return ExitNotFoundError
	case errors.Is(err, network.ErrRequestFailed), errors.Is(err, network.ErrBadStatus):
		return ExitNetworkError
	case errors.Is(err, installer.ErrLocked):
		return ExitSystemError
	case errors.Is(err, domain.ErrAlreadyInstalled), errors.Is(err, domain.ErrIdentifierChange), errors.Is(err, domain.ErrNoDownloadURL):
		return ExitWidgetError
	case errors.Is(err, bundle.ErrUnsupportedFormat), errors.Is(err, bundle.ErrUnsafeArchive):
		return ExitBundleError
	}

	if installErr != nil {
		return ExitWidgetError
	}

	return ExitGeneralError
}
