// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

package models

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pockwidgets/widgetctl/internal/domain"
	"github.com/pockwidgets/widgetctl/internal/i18n"
	"github.com/pockwidgets/widgetctl/internal/manager"
	"github.com/pockwidgets/widgetctl/internal/tui/styles"
)

// NewTestManagerModel creates a manager screen over fixed widgets: Clock is
// current, Weather has 1.3.0 available and "broken" failed to load.
func NewTestManagerModel(styleConfig *styles.Styles, width, height int) *ManagerModel {
	widgets := []domain.WidgetRef{
		{Name: "Clock", Author: "Pock Team", Version: "2.0.0", Build: "20", BundleIdentifier: "com.pock.widget.clock", Loaded: true},
		{Name: "Weather", Author: "Pock Team", Version: "1.2.0", Build: "12", BundleIdentifier: "com.pock.widget.weather", Loaded: true},
		{Name: "broken", BundleIdentifier: "broken"},
	}

	checks := map[string]domain.VersionCheck{
		"com.pock.widget.weather": {Version: &domain.VersionInfo{Name: "1.3.0", Changelog: "- Faster refresh", DownloadURL: "https://example.com/weather.pock"}},
	}

	model := NewManager(styleConfig, i18n.Default(), manager.New(widgets, checks, nil, i18n.Default()))
	model.Update(tea.WindowSizeMsg{Width: width, Height: height})

	return model
}
