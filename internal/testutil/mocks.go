// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

// Package testutil provides testify mocks for the domain ports.
package testutil

import (
	"context"
	"sync"

	"github.com/pockwidgets/widgetctl/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockInstaller mocks the Installer port. For Update, the progress values
// stored in Progress are fed to the callback before the mocked result is
// returned.
type MockInstaller struct {
	mock.Mock

	Progress []float64
}

// Install mocks widget installation.
func (m *MockInstaller) Install(ctx context.Context, widget domain.WidgetRef) error {
	args := m.Called(ctx, widget)

	return args.Error(0)
}

// Uninstall mocks widget removal.
func (m *MockInstaller) Uninstall(ctx context.Context, widget domain.WidgetRef) error {
	args := m.Called(ctx, widget)

	return args.Error(0)
}

// Update mocks a widget update.
func (m *MockInstaller) Update(ctx context.Context, widget domain.WidgetRef, version domain.VersionInfo, onProgress domain.ProgressFunc) error {
	for _, value := range m.Progress {
		onProgress(value)
	}

	args := m.Called(ctx, widget, version)

	return args.Error(0)
}

// MockParser mocks the BundleParser port.
type MockParser struct {
	mock.Mock
}

// Parse mocks bundle parsing.
func (m *MockParser) Parse(ctx context.Context, path string) (domain.WidgetRef, error) {
	args := m.Called(ctx, path)

	widget, ok := args.Get(0).(domain.WidgetRef)
	if !ok {
		return domain.WidgetRef{}, args.Error(1)
	}

	return widget, args.Error(1)
}

// MockAppController mocks the AppController port.
type MockAppController struct {
	mock.Mock
}

// Reload mocks an application reload.
func (m *MockAppController) Reload(ctx context.Context, fetchLatestVersions bool) error {
	args := m.Called(ctx, fetchLatestVersions)

	return args.Error(0)
}

// Relaunch mocks an application relaunch.
func (m *MockAppController) Relaunch(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

// MockVersionChecker mocks the VersionChecker port.
type MockVersionChecker struct {
	mock.Mock
}

// CheckForNewVersion mocks a version lookup.
func (m *MockVersionChecker) CheckForNewVersion(ctx context.Context, widget domain.WidgetRef) domain.VersionCheck {
	args := m.Called(ctx, widget)

	check, ok := args.Get(0).(domain.VersionCheck)
	if !ok {
		return domain.VersionCheck{}
	}

	return check
}

// MockLoader mocks the WidgetLoader port.
type MockLoader struct {
	mock.Mock
}

// Installed mocks listing installed widgets.
func (m *MockLoader) Installed(ctx context.Context) ([]domain.WidgetRef, error) {
	args := m.Called(ctx)

	widgets, ok := args.Get(0).([]domain.WidgetRef)
	if !ok {
		return nil, args.Error(1)
	}

	return widgets, args.Error(1)
}

// RecordingHost records host calls. It satisfies lifecycle.Host.
type RecordingHost struct {
	mu       sync.Mutex
	requests int
	closes   int
}

// RequestPath records a path request.
func (h *RecordingHost) RequestPath() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.requests++
}

// Close records a close.
func (h *RecordingHost) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closes++
}

// Requests returns how many times a path was requested.
func (h *RecordingHost) Requests() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.requests
}

// Closes returns how many times the host was closed.
func (h *RecordingHost) Closes() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.closes
}

// SampleWidget returns a widget reference for tests.
func SampleWidget() domain.WidgetRef {
	return domain.WidgetRef{
		Name:             "Weather",
		Author:           "Pock Team",
		Version:          "1.2.0",
		Build:            "12",
		BundleIdentifier: "com.pock.widget.weather",
		Loaded:           true,
	}
}

// SampleVersion returns a version offer for tests.
func SampleVersion() domain.VersionInfo {
	return domain.VersionInfo{
		Name:        "1.3.0",
		Changelog:   "- Faster refresh\n- New icons",
		DownloadURL: "https://example.com/weather-1.3.0.pock",
	}
}
