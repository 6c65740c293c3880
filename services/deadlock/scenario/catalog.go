// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scenario

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

//go:embed defaults/*.yaml
var defaultScenarioFS embed.FS

// Catalog holds the loaded presets, keyed by scenario name.
//
// Embedded defaults load first; files from the overlay directory are applied
// on top, so a file scenario with the same name replaces the built-in one.
//
// Thread Safety: safe for concurrent use. Reload swaps the whole map under
// a write lock.
type Catalog struct {
	dir string

	mu        sync.RWMutex
	scenarios map[string]*Scenario
}

// NewCatalog loads the embedded presets and overlays dir when non-empty.
//
// A missing or unreadable overlay directory is logged and ignored so the
// service still starts with the built-in presets. An error is returned only
// when the embedded defaults themselves fail to parse.
func NewCatalog(dir string) (*Catalog, error) {
	c := &Catalog{dir: dir}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload rebuilds the catalog from the embedded defaults plus the overlay
// directory. Individual bad overlay files are skipped with a warning; the
// rest of the directory still loads.
func (c *Catalog) Reload() error {
	scenarios, err := loadEmbedded()
	if err != nil {
		return err
	}

	if c.dir != "" {
		overlayDir(c.dir, scenarios)
	}

	c.mu.Lock()
	c.scenarios = scenarios
	c.mu.Unlock()

	slog.Info("Scenario catalog loaded",
		"scenarios", len(scenarios),
		"overlay_dir", c.dir,
	)
	return nil
}

// Get returns the named preset.
func (c *Catalog) Get(name string) (*Scenario, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.scenarios[name]
	return s, ok
}

// List returns all presets sorted by name.
func (c *Catalog) List() []*Scenario {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Scenario, 0, len(c.scenarios))
	for _, s := range c.scenarios {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of loaded presets.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.scenarios)
}

// loadEmbedded parses the compiled-in defaults. Failure here is a build
// defect, not an operator error.
func loadEmbedded() (map[string]*Scenario, error) {
	scenarios := make(map[string]*Scenario)

	entries, err := fs.ReadDir(defaultScenarioFS, "defaults")
	if err != nil {
		return nil, fmt.Errorf("reading embedded scenarios: %w", err)
	}

	for _, entry := range entries {
		data, err := fs.ReadFile(defaultScenarioFS, "defaults/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading embedded scenario %s: %w", entry.Name(), err)
		}
		s, err := parseScenario(data)
		if err != nil {
			return nil, fmt.Errorf("embedded scenario %s: %w", entry.Name(), err)
		}
		scenarios[s.Name] = s
	}

	return scenarios, nil
}

// overlayDir loads *.yaml / *.yml files from dir over the given map. Bad
// files are logged and skipped.
func overlayDir(dir string, scenarios map[string]*Scenario) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Warn("Scenario overlay directory not available, using embedded defaults",
			"dir", dir,
			"error", err,
		)
		return
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isScenarioFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names) // Later file names win on a name clash

	for _, name := range names {
		path := filepath.Join(dir, name)

		info, err := os.Stat(path)
		if err != nil {
			slog.Warn("Skipping unreadable scenario file", "path", path, "error", err)
			continue
		}
		if info.Size() > MaxScenarioFileSize {
			slog.Warn("Skipping oversized scenario file",
				"path", path,
				"size", info.Size(),
				"max", MaxScenarioFileSize,
			)
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("Skipping unreadable scenario file", "path", path, "error", err)
			continue
		}

		s, err := parseScenario(data)
		if err != nil {
			slog.Warn("Skipping invalid scenario file", "path", path, "error", err)
			continue
		}

		if _, exists := scenarios[s.Name]; exists {
			slog.Debug("Overlay scenario replaces existing preset", "name", s.Name, "path", path)
		}
		scenarios[s.Name] = s
	}
}

// isScenarioFile reports whether name looks like a scenario document.
func isScenarioFile(name string) bool {
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
