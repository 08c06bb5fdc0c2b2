// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package content

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/goccy/go-json"
	"github.com/tomtom215/quizcore/internal/validation"
)

// ManifestFile is the file name reserved for the cross-table manifest.
const ManifestFile = "manifest.json"

//go:embed data/*.json
var embedded embed.FS

// LoadEmbedded loads the built-in content set.
func LoadEmbedded() (*Registry, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, fmt.Errorf("open embedded content: %w", err)
	}
	return Load(sub)
}

// LoadDir loads every *.json table in dir, plus manifest.json if present.
func LoadDir(dir string) (*Registry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("content dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content dir %s: not a directory", dir)
	}
	return Load(os.DirFS(dir))
}

// Load reads tables from the root of fsys. Files are loaded in lexical
// order, which becomes the registry's declaration order.
func Load(fsys fs.FS) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read content dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var (
		tables   []*Table
		manifest Manifest
	)

	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}

		if name == ManifestFile {
			m, err := ParseManifest(data)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			manifest = *m
			continue
		}

		t, err := ParseTable(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		tables = append(tables, t)
	}

	return NewRegistry(tables, manifest)
}

// ParseTable decodes and structurally validates a single table.
func ParseTable(data []byte) (*Table, error) {
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode table: %w", err)
	}

	if verr := validation.ValidateStruct(&t); verr != nil {
		return nil, fmt.Errorf("invalid table %q: %w", t.Key, verr)
	}

	t.prepare()
	return &t, nil
}

// ParseManifest decodes and validates the manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	if verr := validation.ValidateStruct(&m); verr != nil {
		return nil, fmt.Errorf("invalid manifest: %w", verr)
	}

	return &m, nil
}
