// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

// Package main provides the CLI entry point for widgetctl.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/pockwidgets/widgetctl/internal/cli"
	"github.com/pockwidgets/widgetctl/internal/domain"
)

// maxRelaunches bounds how often the interactive manager restarts itself.
const maxRelaunches = 2

func main() {
	os.Exit(run())
}

func run() int {
	// Only one widgetctl runs at a time.
	lock := flock.New(filepath.Join(os.TempDir(), "widgetctl.lock"))

	locked, err := lock.TryLock()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to acquire process lock: %v\n", err)

		return cli.ExitSystemError
	}

	if !locked {
		fmt.Fprintf(os.Stderr, "Another widgetctl instance is already running\n")

		return cli.ExitGeneralError
	}

	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to release process lock: %v\n", unlockErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for attempt := 0; ; attempt++ {
		app := cli.NewCLI()

		if err := app.Run(ctx, os.Args); err != nil {
			return report(err)
		}

		if !app.Relaunch() || attempt >= maxRelaunches {
			return cli.ExitSuccess
		}
	}
}

func report(err error) int {
	exitErr := &domain.ExitError{}
	if errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "%s\n", exitErr.Message)

		return exitErr.Code
	}

	// Commands return ExitErrors, anything else comes from flag parsing.
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	return cli.ExitUsageError
}
