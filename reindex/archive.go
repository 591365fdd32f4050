// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reindex

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/poiesic/docvault/etl"
)

// Inventory is what a walk of the archive found.
type Inventory struct {
	// Sidecars are the JSON records to replay, sorted by path.
	Sidecars []string

	// Orphans are archived originals without a sibling sidecar, sorted by path.
	Orphans []string
}

// Survey walks the archive under root. Hidden entries and leftover temporary
// files are ignored. A .json file is an original, not a sidecar, when its
// ".sidecar.json" sibling exists.
func Survey(ctx context.Context, root string) (*Inventory, error) {
	var inv Inventory
	files := make(map[string]struct{})
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !d.Type().IsRegular() {
			return nil
		}
		files[path] = struct{}{}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &inv, nil
		}
		return nil, fmt.Errorf("walk archive: %w", err)
	}

	for path := range files {
		dir, name := filepath.Split(path)
		sidecar := filepath.Join(dir, etl.SidecarName(name))
		_, hasSidecar := files[sidecar]
		switch {
		case isSidecarCandidate(name) && !hasSidecar:
			inv.Sidecars = append(inv.Sidecars, path)
		case !isSidecarCandidate(name) && !hasSidecar:
			inv.Orphans = append(inv.Orphans, path)
		}
	}
	sort.Strings(inv.Sidecars)
	sort.Strings(inv.Orphans)
	return &inv, nil
}

// isSidecarCandidate reports whether name could be a sidecar record.
func isSidecarCandidate(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".json")
}

// sidecarPathFor returns where the sidecar of an archived original lives.
func sidecarPathFor(original string) string {
	dir, name := filepath.Split(original)
	return filepath.Join(dir, etl.SidecarName(name))
}

// itemTypeOf derives the item type of an archived original from its
// directory relative to the archive root.
func itemTypeOf(root, original string) string {
	rel, err := filepath.Rel(root, filepath.Dir(original))
	if err != nil || strings.HasPrefix(rel, "..") {
		return etl.ItemType("")
	}
	return etl.ItemType(rel)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
