// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

// Package loader lists the widgets installed in the widgets directory.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pockwidgets/widgetctl/internal/domain"
	"github.com/pockwidgets/widgetctl/internal/logging"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DirLoader implements domain.WidgetLoader over a widgets directory.
type DirLoader struct {
	dir    string
	parser domain.BundleParser
	logger *log.Logger
	tag    language.Tag
}

// New creates a loader for dir. Names are ordered by the collation rules
// of tag.
func New(dir string, parser domain.BundleParser, tag language.Tag, logger *log.Logger) *DirLoader {
	if logger == nil {
		logger = logging.Discard()
	}

	return &DirLoader{dir: dir, parser: parser, logger: logger, tag: tag}
}

// Installed returns every bundle in the directory sorted by name. Bundles
// that fail to parse are listed as not loaded.
func (l *DirLoader) Installed(ctx context.Context) ([]domain.WidgetRef, error) {
	entries, err := os.ReadDir(l.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.WidgetRef{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read widgets directory: %w", err)
	}

	widgets := make([]domain.WidgetRef, 0, len(entries))

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") || !entry.IsDir() || !strings.EqualFold(filepath.Ext(name), domain.BundleExtension) {
			continue
		}

		widgets = append(widgets, l.load(ctx, filepath.Join(l.dir, name)))
	}

	l.sort(widgets)

	return widgets, nil
}

func (l *DirLoader) load(ctx context.Context, path string) domain.WidgetRef {
	widget, err := l.parser.Parse(ctx, path)
	if err == nil {
		return widget
	}

	l.logger.Warn("widget could not be loaded", "path", path, "err", err)

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	return domain.WidgetRef{
		Name:             stem,
		BundleIdentifier: stem,
		Path:             path,
		Loaded:           false,
	}
}

func (l *DirLoader) sort(widgets []domain.WidgetRef) {
	collator := collate.New(l.tag, collate.IgnoreCase)

	sort.SliceStable(widgets, func(i, j int) bool {
		if order := collator.CompareString(widgets[i].Name, widgets[j].Name); order != 0 {
			return order < 0
		}

		return widgets[i].BundleIdentifier < widgets[j].BundleIdentifier
	})
}
