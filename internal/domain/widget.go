// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

// Package domain holds the widget types and collaborator ports shared by
// the lifecycle, installer, updater and presentation layers.
package domain

import (
	"regexp"
	"strings"
)

// BundleExtension is the file extension of widget bundles and archives.
const BundleExtension = ".pock"

var bundleIdentifierPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]*(\.[A-Za-z0-9][A-Za-z0-9-]*)+$`)

// PreferenceType is the kind of value a widget preference holds.
type PreferenceType string

// Preference types a manifest may declare.
const (
	PreferenceString PreferenceType = "string"
	PreferenceBool   PreferenceType = "bool"
	PreferenceSelect PreferenceType = "select"
)

// Preference describes one setting a widget exposes in its preference pane.
type Preference struct {
	Key     string         `json:"key"               toml:"key"`
	Title   string         `json:"title"             toml:"title"`
	Type    PreferenceType `json:"type"              toml:"type"`
	Default string         `json:"default,omitempty" toml:"default"`
	Options []string       `json:"options,omitempty" toml:"options"`
}

// WidgetRef identifies a widget bundle. It is an immutable snapshot and is
// passed by value.
type WidgetRef struct {
	Name             string       `json:"name"`
	Author           string       `json:"author"`
	Version          string       `json:"version"`
	Build            string       `json:"build,omitempty"`
	BundleIdentifier string       `json:"bundle_identifier"`
	Path             string       `json:"path,omitempty"`
	Loaded           bool         `json:"loaded"`
	Preferences      []Preference `json:"preferences,omitempty"`
}

// FullVersion returns the version with the build number appended when known.
func (w WidgetRef) FullVersion() string {
	if w.Build == "" {
		return w.Version
	}

	return w.Version + " (" + w.Build + ")"
}

// HasPreferences reports whether the widget declares a preference pane.
func (w WidgetRef) HasPreferences() bool {
	return len(w.Preferences) > 0
}

// ValidBundleIdentifier reports whether id looks like a reverse-DNS identifier.
func ValidBundleIdentifier(id string) bool {
	return bundleIdentifierPattern.MatchString(strings.TrimSpace(id))
}

// VersionInfo is a candidate version offered for a widget.
type VersionInfo struct {
	Name        string `json:"name"                   toml:"version"`
	Changelog   string `json:"changelog,omitempty"    toml:"changelog"`
	DownloadURL string `json:"download_url,omitempty" toml:"download_url"`
}

// VersionCheck is the outcome of asking the updater about a widget.
// Version is nil when the installed version is current.
type VersionCheck struct {
	Version *VersionInfo
	Err     error
}

// HasUpdate reports whether a newer version is available.
func (c VersionCheck) HasUpdate() bool {
	return c.Version != nil
}
