// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

// Package console writes user-facing CLI output in human, plain and JSON
// modes.
package console

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/pockwidgets/widgetctl/internal/lifecycle"
	"github.com/pockwidgets/widgetctl/internal/manager"
	"golang.org/x/term"
)

// maxNameWidth bounds widget names in tables.
const maxNameWidth = 32

// OutputState holds global output configuration.
type OutputState struct {
	Verbose bool
	JSON    bool
	Plain   bool

	// Out and Err default to os.Stdout and os.Stderr.
	Out io.Writer
	Err io.Writer
}

// DefaultOutput provides output formatting utilities.
var DefaultOutput = &OutputState{} //nolint:gochecknoglobals

var boldStyle = lipgloss.NewStyle().Bold(true) //nolint:gochecknoglobals

// SetMode configures output mode.
func (o *OutputState) SetMode(verbose, json, plain bool) {
	o.Verbose = verbose
	o.JSON = json
	o.Plain = plain
}

func (o *OutputState) stdout() io.Writer {
	if o.Out != nil {
		return o.Out
	}

	return os.Stdout
}

func (o *OutputState) stderr() io.Writer {
	if o.Err != nil {
		return o.Err
	}

	return os.Stderr
}

// IsTTY checks if output is going to a terminal (not piped/redirected).
func (o *OutputState) IsTTY() bool {
	file, ok := o.stdout().(*os.File)

	return ok && term.IsTerminal(int(file.Fd()))
}

// Bold formats text with bold when in TTY, uppercase when piped.
func (o *OutputState) Bold(text string) string {
	if o.JSON || o.Plain {
		return text
	}

	// no-color.org
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return text
	}

	if o.IsTTY() {
		return boldStyle.Render(text)
	}

	return strings.ToUpper(text)
}

// Header formats section headers consistently.
func (o *OutputState) Header(text string) string {
	return o.Bold(text)
}

// Progressf writes progress messages to stderr (only if verbose and not JSON/Plain).
func (o *OutputState) Progressf(format string, args ...any) {
	if o.Verbose && !o.JSON && !o.Plain {
		_, _ = fmt.Fprintf(o.stderr(), format+"\n", args...)
	}
}

// Successf writes success messages to stderr (only if not JSON/Plain).
func (o *OutputState) Successf(format string, args ...any) {
	if !o.JSON && !o.Plain {
		_, _ = fmt.Fprintf(o.stderr(), "✓ "+format+"\n", args...)
	}
}

// Warningf writes warning messages to stderr.
func (o *OutputState) Warningf(format string, args ...any) {
	if o.Plain {
		_, _ = fmt.Fprintf(o.stderr(), "warning: "+format+"\n", args...)
	} else {
		_, _ = fmt.Fprintf(o.stderr(), "⚠ "+format+"\n", args...)
	}
}

// Errorf writes error messages to stderr (always visible).
func (o *OutputState) Errorf(format string, args ...any) {
	if o.Plain {
		_, _ = fmt.Fprintf(o.stderr(), "error: "+format+"\n", args...)
	} else {
		_, _ = fmt.Fprintf(o.stderr(), "✗ "+format+"\n", args...)
	}
}

// JSONResult writes structured JSON results to stdout.
func (o *OutputState) JSONResult(status string, data map[string]any) {
	result := map[string]any{
		"status": status,
	}
	maps.Copy(result, data)

	if err := json.NewEncoder(o.stdout()).Encode(result); err != nil {
		_, _ = fmt.Fprintf(o.stderr(), "error encoding JSON: %v\n", err)
	}
}

// ErrorResult reports err, as JSON on stdout too when in JSON mode.
func (o *OutputState) ErrorResult(err error, code int) {
	if o.JSON {
		o.JSONResult("error", map[string]any{
			"error": err.Error(),
			"code":  code,
		})
	}

	o.Errorf("%s", err.Error())
}

// Printf writes formatted text to stdout.
func (o *OutputState) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.stdout(), format, args...)
}

// PlainKeyValue outputs key:value pairs for machine parsing.
func (o *OutputState) PlainKeyValue(key, value string) {
	_, _ = fmt.Fprintf(o.stdout(), "%s:%s\n", key, value)
}

// View prints one session view. Human mode shows the title, the body and
// a percentage for determinate progress. Plain mode prints title:body.
func (o *OutputState) View(view lifecycle.ViewModel) {
	switch {
	case o.JSON:
		o.JSONResult("progress", map[string]any{"view": view})
	case o.Plain:
		o.PlainKeyValue(view.Title, view.Body)
	default:
		line := o.Bold(view.Title)
		if view.ProgressVisible && !view.ProgressIndeterminate {
			line += fmt.Sprintf(" %3.0f%%", view.ProgressValue*100)
		}

		_, _ = fmt.Fprintf(o.stderr(), "%s\n  %s\n", line, view.Body)
	}
}

// WidgetTable lists rows with their version and status.
func (o *OutputState) WidgetTable(rows []manager.Row, versions map[string]string) {
	if o.JSON {
		items := make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			items = append(items, map[string]any{
				"id":      row.ID,
				"name":    row.Name,
				"version": versions[row.ID],
				"loaded":  row.Loaded,
				"update":  row.Badge,
			})
		}

		o.JSONResult("success", map[string]any{"widgets": items})

		return
	}

	if o.Plain {
		for _, row := range rows {
			o.PlainKeyValue(row.ID, rowStatus(row))
		}

		return
	}

	writer := tabwriter.NewWriter(o.stdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", o.Header("NAME"), o.Header("ID"), o.Header("VERSION"), o.Header("STATUS"))

	for _, row := range rows {
		_, _ = fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
			runewidth.Truncate(row.Name, maxNameWidth, "…"), row.ID, versions[row.ID], rowStatus(row))
	}

	_ = writer.Flush()
}

// Detail prints the detail pane of one widget.
func (o *OutputState) Detail(id string, detail manager.Detail) {
	if o.JSON {
		o.JSONResult("success", map[string]any{"id": id, "widget": detail})

		return
	}

	pairs := [][2]string{
		{"name", detail.Name},
		{"id", id},
		{"author", detail.Author},
		{"version", detail.Version},
	}

	if detail.UpdateEnabled {
		pairs = append(pairs, [2]string{"update", "available"})
	}

	if detail.UpdateStatusVisible {
		pairs = append(pairs, [2]string{"update", detail.UpdateStatus})
	}

	if detail.PreferencesStatus != "" {
		pairs = append(pairs, [2]string{"preferences", detail.PreferencesStatus})
	}

	for _, pref := range detail.Preferences {
		pairs = append(pairs, [2]string{"preference", fmt.Sprintf("%s (%s)", pref.Key, pref.Type)})
	}

	if o.Plain {
		for _, pair := range pairs {
			o.PlainKeyValue(pair[0], pair[1])
		}

		return
	}

	writer := tabwriter.NewWriter(o.stdout(), 0, 0, 2, ' ', 0)
	for _, pair := range pairs {
		_, _ = fmt.Fprintf(writer, "%s\t%s\n", o.Bold(pair[0]), pair[1])
	}

	_ = writer.Flush()
}

func rowStatus(row manager.Row) string {
	switch {
	case !row.Loaded:
		return "not loaded"
	case row.Dimmed:
		return "relaunch pending"
	case row.Badge != "":
		return row.Badge
	default:
		return "ok"
	}
}
