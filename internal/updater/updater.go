// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

// Package updater answers whether newer widget versions exist by reading a
// TOML version index.
package updater

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pelletier/go-toml/v2"
	"github.com/pockwidgets/widgetctl/internal/domain"
	"github.com/pockwidgets/widgetctl/internal/logging"
)

const cacheSize = 256

// ErrNoIndex is returned when no index URL is configured.
var ErrNoIndex = errors.New("no version index configured")

// Index is the decoded version index:
//
//	[widgets."com.pock.weather"]
//	version = "1.3.0"
//	changelog = "..."
//	download_url = "https://..."
type Index struct {
	Widgets map[string]domain.VersionInfo `toml:"widgets"`
}

// ParseIndex decodes a version index.
func ParseIndex(data []byte) (*Index, error) {
	var index Index
	if err := toml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse version index: %w", err)
	}

	if index.Widgets == nil {
		index.Widgets = map[string]domain.VersionInfo{}
	}

	return &index, nil
}

// Checker implements domain.VersionChecker. Index fetches and per-widget
// answers are cached until the TTL lapses or Purge is called.
type Checker struct {
	client   domain.NetworkClient
	indexURL string
	logger   *log.Logger

	indexes *expirable.LRU[string, *Index]
	checks  *expirable.LRU[string, domain.VersionCheck]
}

// New creates a checker reading indexURL through client.
func New(client domain.NetworkClient, indexURL string, ttl time.Duration, logger *log.Logger) *Checker {
	if logger == nil {
		logger = logging.Discard()
	}

	return &Checker{
		client:   client,
		indexURL: indexURL,
		logger:   logger,
		indexes:  expirable.NewLRU[string, *Index](1, nil, ttl),
		checks:   expirable.NewLRU[string, domain.VersionCheck](cacheSize, nil, ttl),
	}
}

// CheckForNewVersion reports the index version when it is newer than the
// installed one.
func (c *Checker) CheckForNewVersion(ctx context.Context, widget domain.WidgetRef) domain.VersionCheck {
	key := widget.BundleIdentifier + "@" + widget.Version
	if check, ok := c.checks.Get(key); ok {
		return check
	}

	index, err := c.index(ctx)
	if err != nil {
		return domain.VersionCheck{Err: err}
	}

	check := Compare(widget, index)
	c.checks.Add(key, check)

	return check
}

// Purge drops every cached index and answer.
func (c *Checker) Purge() {
	c.indexes.Purge()
	c.checks.Purge()
	c.logger.Debug("version cache purged")
}

func (c *Checker) index(ctx context.Context) (*Index, error) {
	if strings.TrimSpace(c.indexURL) == "" {
		return nil, ErrNoIndex
	}

	if index, ok := c.indexes.Get(c.indexURL); ok {
		return index, nil
	}

	if c.client == nil {
		return nil, ErrNoIndex
	}

	c.logger.Debug("fetching version index", "url", c.indexURL)

	data, err := c.client.Fetch(ctx, c.indexURL)
	if err != nil {
		c.logger.Error("version index unavailable", "url", c.indexURL, "err", err)

		return nil, fmt.Errorf("could not check for updates: %w", err)
	}

	index, err := ParseIndex(data)
	if err != nil {
		return nil, err
	}

	c.indexes.Add(c.indexURL, index)

	return index, nil
}

// Compare looks widget up in index. The result carries a version only when
// the index version is strictly newer.
func Compare(widget domain.WidgetRef, index *Index) domain.VersionCheck {
	if index == nil {
		return domain.VersionCheck{}
	}

	candidate, ok := index.Widgets[widget.BundleIdentifier]
	if !ok {
		return domain.VersionCheck{}
	}

	installed, err := semver.NewVersion(widget.Version)
	if err != nil {
		return domain.VersionCheck{Err: fmt.Errorf("installed version %q is not a semantic version", widget.Version)}
	}

	offered, err := semver.NewVersion(candidate.Name)
	if err != nil {
		return domain.VersionCheck{Err: fmt.Errorf("offered version %q is not a semantic version", candidate.Name)}
	}

	if !offered.GreaterThan(installed) {
		return domain.VersionCheck{}
	}

	return domain.VersionCheck{Version: &candidate}
}
