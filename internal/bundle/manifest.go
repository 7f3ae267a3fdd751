// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

package bundle

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pockwidgets/widgetctl/internal/domain"
)

// ManifestName is the manifest file at the root of every bundle.
const ManifestName = "widget.toml"

// ContentsDir holds the widget payload inside a bundle.
const ContentsDir = "Contents"

// Manifest is the decoded widget.toml.
type Manifest struct {
	Name             string              `toml:"name"`
	Author           string              `toml:"author"`
	Version          string              `toml:"version"`
	Build            string              `toml:"build"`
	BundleIdentifier string              `toml:"bundle_identifier"`
	Preferences      []domain.Preference `toml:"preferences"`
}

// DecodeManifest strictly decodes data. Unknown keys are rejected.
func DecodeManifest(data []byte) (Manifest, error) {
	var manifest Manifest

	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&manifest); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Manifest{}, fmt.Errorf("unknown key in %s: %s", ManifestName, strings.TrimSpace(strict.String()))
		}

		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, column := decodeErr.Position()

			return Manifest{}, fmt.Errorf("malformed %s at line %d, column %d: %s", ManifestName, row, column, decodeErr.Error())
		}

		return Manifest{}, fmt.Errorf("malformed %s: %w", ManifestName, err)
	}

	return manifest, nil
}

// Validate checks required fields and preference declarations.
func (m Manifest) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"name", m.Name},
		{"author", m.Author},
		{"version", m.Version},
		{"bundle_identifier", m.BundleIdentifier},
	}

	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("missing %s in %s", field.key, ManifestName)
		}
	}

	if !domain.ValidBundleIdentifier(m.BundleIdentifier) {
		return fmt.Errorf("invalid bundle_identifier %q", m.BundleIdentifier)
	}

	seen := make(map[string]bool, len(m.Preferences))

	for index, pref := range m.Preferences {
		if strings.TrimSpace(pref.Key) == "" {
			return fmt.Errorf("preference %d has no key", index+1)
		}

		if seen[pref.Key] {
			return fmt.Errorf("duplicate preference %q", pref.Key)
		}

		seen[pref.Key] = true

		switch pref.Type {
		case domain.PreferenceString, domain.PreferenceBool:
		case domain.PreferenceSelect:
			if len(pref.Options) == 0 {
				return fmt.Errorf("preference %q is a select without options", pref.Key)
			}
		default:
			return fmt.Errorf("preference %q has unsupported type %q", pref.Key, pref.Type)
		}
	}

	return nil
}

// Widget converts the manifest into a widget reference rooted at path.
func (m Manifest) Widget(path string) domain.WidgetRef {
	return domain.WidgetRef{
		Name:             strings.TrimSpace(m.Name),
		Author:           strings.TrimSpace(m.Author),
		Version:          strings.TrimSpace(m.Version),
		Build:            strings.TrimSpace(m.Build),
		BundleIdentifier: strings.TrimSpace(m.BundleIdentifier),
		Path:             path,
		Loaded:           true,
		Preferences:      m.Preferences,
	}
}

// Encode renders the manifest as TOML.
func (m Manifest) Encode() ([]byte, error) {
	data, err := toml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", ManifestName, err)
	}

	return data, nil
}
