// Cardbay Core
// Copyright (c) 2026 The Cardbay Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Cardbay Core.
//
// Cardbay Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Cardbay Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Cardbay Core.  If not, see <http://www.gnu.org/licenses/>.

// Package helpers provides shared fixture builders for tests across the
// repository.
package helpers

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// NewVolume creates an in-memory volume pre-populated from tree. Keys are
// absolute paths; a value is the file's contents, and a key ending in "/"
// creates an empty directory. Parents are created implicitly.
func NewVolume(tree map[string]string) (afero.Fs, error) {
	vol := afero.NewMemMapFs()
	for p, contents := range tree {
		if strings.HasSuffix(p, "/") {
			if err := vol.MkdirAll(strings.TrimSuffix(p, "/"), 0o755); err != nil {
				return nil, fmt.Errorf("create dir %q: %w", p, err)
			}
			continue
		}
		if dir := path.Dir(p); dir != "/" {
			if err := vol.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create parent of %q: %w", p, err)
			}
		}
		if err := afero.WriteFile(vol, p, []byte(contents), 0o644); err != nil {
			return nil, fmt.Errorf("write %q: %w", p, err)
		}
	}
	return vol, nil
}

// TreePaths lists every file and directory under root (excluding root
// itself), sorted, for structural assertions after tree operations.
func TreePaths(vol afero.Fs, root string) ([]string, error) {
	var paths []string
	err := afero.Walk(vol, root, func(p string, _ os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p != root {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}
