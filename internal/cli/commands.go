// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pockwidgets/widgetctl/internal/domain"
	"github.com/pockwidgets/widgetctl/internal/lifecycle"
	"github.com/pockwidgets/widgetctl/internal/manager"
	"github.com/pockwidgets/widgetctl/internal/tui"
	"github.com/urfave/cli/v3"
)

// Version is set at build time with -ldflags.
var Version = "dev" //nolint:gochecknoglobals

func (app *CLI) createListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List installed widgets",
		Description: `Lists every bundle in the widgets directory with its version and
whether a newer version is available.

EXAMPLES:
  widgetctl list
  widgetctl list --filter wea
  widgetctl list --json`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "filter",
				Aliases: []string{"f"},
				Usage:   "fuzzy filter on widget names",
			},
		},
		Action: app.runList,
	}
}

func (app *CLI) runList(ctx context.Context, cmd *cli.Command) error {
	if err := app.wire(false); err != nil {
		return err
	}

	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	if err := app.service.Reload(ctx, false); err != nil {
		return app.fail(err, "")
	}

	vm := app.service.Manager()
	rows := vm.Rows()

	filtered := make([]manager.Row, 0, len(rows))
	for _, index := range vm.Filter(strings.TrimSpace(cmd.String("filter"))) {
		filtered = append(filtered, rows[index])
	}

	app.out.WidgetTable(filtered, versions(vm.Widgets()))

	return nil
}

func versions(widgets []domain.WidgetRef) map[string]string {
	result := make(map[string]string, len(widgets))
	for _, widget := range widgets {
		result[widget.BundleIdentifier] = widget.FullVersion()
	}

	return result
}

func (app *CLI) createInfoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Show details of an installed widget",
		ArgsUsage: "<bundle-identifier>",
		Action:    app.runInfo,
	}
}

func (app *CLI) runInfo(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "bundle identifier")
	if err != nil {
		return app.fail(err, "")
	}

	if err := app.wire(false); err != nil {
		return err
	}

	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	if err := app.service.Reload(ctx, false); err != nil {
		return app.fail(err, "")
	}

	vm := app.service.Manager()
	if !vm.SelectByID(id) {
		return app.fail(fmt.Errorf("%w: %s", domain.ErrWidgetNotFound, id), id)
	}

	app.out.Detail(id, vm.Detail())

	return nil
}

func (app *CLI) createCheckCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Check for newer widget versions",
		ArgsUsage: "[bundle-identifier]",
		Description: `Fetches the version index and reports widgets with a newer version.
The cached index is ignored.`,
		Action: app.runCheck,
	}
}

func (app *CLI) runCheck(ctx context.Context, cmd *cli.Command) error {
	if err := app.wire(false); err != nil {
		return err
	}

	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	if err := app.service.Reload(ctx, true); err != nil {
		return app.fail(err, "")
	}

	widgets := app.service.Widgets()

	if id := strings.TrimSpace(cmd.Args().First()); id != "" {
		widget, err := app.service.Find(id)
		if err != nil {
			return app.fail(err, id)
		}

		widgets = []domain.WidgetRef{widget}
	}

	results := make([]map[string]any, 0, len(widgets))

	for _, widget := range widgets {
		if !widget.Loaded {
			continue
		}

		check := app.service.Check(widget.BundleIdentifier)
		results = append(results, app.reportCheck(widget, check))
	}

	if app.json {
		app.out.JSONResult("success", map[string]any{"checks": results})
	}

	return nil
}

func (app *CLI) reportCheck(widget domain.WidgetRef, check domain.VersionCheck) map[string]any {
	result := map[string]any{
		"id":      widget.BundleIdentifier,
		"current": widget.FullVersion(),
	}

	switch {
	case check.Err != nil:
		result["error"] = check.Err.Error()

		if app.plain {
			app.out.PlainKeyValue(widget.BundleIdentifier, "error: "+check.Err.Error())
		} else if !app.json {
			app.out.Warningf("%s: %s", widget.Name, check.Err.Error())
		}
	case check.HasUpdate():
		result["latest"] = check.Version.Name
		result["changelog"] = check.Version.Changelog

		if app.plain {
			app.out.PlainKeyValue(widget.BundleIdentifier, check.Version.Name)
		} else if !app.json {
			app.out.Printf("%s %s → %s\n", app.out.Bold(widget.Name), widget.FullVersion(), check.Version.Name)
		}
	default:
		if app.plain {
			app.out.PlainKeyValue(widget.BundleIdentifier, "current")
		} else if !app.json {
			app.out.Printf("%s %s is up to date\n", app.out.Bold(widget.Name), widget.FullVersion())
		}
	}

	return result
}

func (app *CLI) createInstallCommand() *cli.Command {
	return &cli.Command{
		Name:      "install",
		Usage:     "Install a widget bundle",
		ArgsUsage: "<path.pock>",
		Description: `Installs a .pock bundle directory or archive into the widgets directory.

EXAMPLES:
  widgetctl install ~/Downloads/Weather.pock
  widgetctl --yes install Weather.pock`,
		Action: app.runInstall,
	}
}

func (app *CLI) runInstall(ctx context.Context, cmd *cli.Command) error {
	path, err := requireArg(cmd, "bundle path")
	if err != nil {
		return app.fail(err, "")
	}

	if abs, absErr := filepath.Abs(path); absErr == nil {
		path = abs
	}

	if err := app.wire(false); err != nil {
		return err
	}

	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	final, err := app.drive(ctx, lifecycle.DragDrop(), func(session *lifecycle.Session) {
		session.Choose(ctx, path)
	})
	if err != nil {
		return app.fail(err, final.Widget().Name)
	}

	return app.succeed("installed", final)
}

func (app *CLI) createRemoveCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Aliases:   []string{"uninstall", "rm"},
		Usage:     "Remove an installed widget",
		ArgsUsage: "<bundle-identifier>",
		Action:    app.runRemove,
	}
}

func (app *CLI) runRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "bundle identifier")
	if err != nil {
		return app.fail(err, "")
	}

	if err := app.wire(false); err != nil {
		return err
	}

	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	if err := app.service.Rescan(ctx); err != nil {
		return app.fail(err, "")
	}

	widget, err := app.service.Find(id)
	if err != nil {
		return app.fail(err, id)
	}

	final, err := app.drive(ctx, lifecycle.Remove(widget), nil)
	if err != nil {
		return app.fail(err, widget.Name)
	}

	return app.succeed("removed", final)
}

func (app *CLI) createUpdateCommand() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update a widget to the latest version",
		ArgsUsage: "<bundle-identifier>",
		Description: `Downloads the newest version listed in the version index and replaces
the installed bundle. The changelog is shown before confirming.`,
		Action: app.runUpdate,
	}
}

func (app *CLI) runUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "bundle identifier")
	if err != nil {
		return app.fail(err, "")
	}

	if err := app.wire(false); err != nil {
		return err
	}

	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	if err := app.service.Reload(ctx, true); err != nil {
		return app.fail(err, "")
	}

	widget, err := app.service.Find(id)
	if err != nil {
		return app.fail(err, id)
	}

	check := app.service.Check(id)

	switch {
	case check.Err != nil:
		return app.fail(check.Err, widget.Name)
	case !check.HasUpdate():
		if app.json {
			app.out.JSONResult("success", map[string]any{"id": id, "version": widget.FullVersion(), "updated": false})
		} else {
			app.out.Successf("%s %s is up to date", widget.Name, widget.FullVersion())
		}

		return nil
	}

	final, err := app.drive(ctx, lifecycle.Update(widget, *check.Version), nil)
	if err != nil {
		return app.fail(err, widget.Name)
	}

	return app.succeed("updated", final)
}

// succeed reports the outcome of a driven session. A zero final state
// means the user declined the prompt.
func (app *CLI) succeed(verb string, final lifecycle.State) error {
	if !final.Terminal() {
		if app.json {
			app.out.JSONResult("cancelled", nil)
		} else {
			app.out.Warningf("cancelled")
		}

		return nil
	}

	widget := final.Widget()

	if app.json {
		app.out.JSONResult("success", map[string]any{verb: widget})

		return nil
	}

	app.out.Successf("%s %s %s", verb, widget.Name, widget.FullVersion())

	return nil
}

func (app *CLI) createTUICommand() *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive widget manager",
		Description: `Opens the widget manager.

Navigation:
- Use arrow keys or j/k to move between widgets
- Press / to filter, u to update, x to remove, i to install
- Press r to check for updates
- Press q or Ctrl+C to quit`,
		Action: func(ctx context.Context, _ *cli.Command) error {
			return app.runTUI(ctx)
		},
	}
}

func (app *CLI) runTUI(ctx context.Context) error {
	if err := app.wire(true); err != nil {
		return err
	}

	startDir, _ := os.Getwd()

	relaunch, err := app.launchTUI(ctx, tui.Dependencies{
		Service:   app.service,
		Localizer: app.loc,
		Logger:    app.logger,
		StartDir:  startDir,
	})
	if err != nil {
		if app.verbose {
			return domain.NewExitError(ExitGeneralError, fmt.Sprintf("Failed to launch TUI: %v", err), err)
		}

		return domain.NewExitError(ExitGeneralError, "Failed to launch interactive interface (terminal required)", err)
	}

	app.relaunch = relaunch

	return nil
}

func (app *CLI) createVersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(_ context.Context, _ *cli.Command) error {
			if app.json {
				app.out.JSONResult("success", map[string]any{
					"version": Version,
					"go":      runtime.Version(),
				})

				return nil
			}

			if app.plain {
				app.out.PlainKeyValue("version", Version)

				return nil
			}

			app.out.Printf("widgetctl %s (%s)\n", Version, runtime.Version())

			return nil
		},
	}
}

func requireArg(cmd *cli.Command, name string) (string, error) {
	value := strings.TrimSpace(cmd.Args().First())
	if value == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingArgument, name)
	}

	return value, nil
}
