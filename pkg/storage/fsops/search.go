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

package fsops

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/CardbayProject/cardbay-core/pkg/helpers"
	"github.com/CardbayProject/cardbay-core/pkg/storage/errs"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// SearchOptions control a recursive name search.
type SearchOptions struct {
	Recursive     bool
	IncludeDirs   bool
	CaseSensitive bool
	// MaxResults stops the traversal early; zero means unlimited.
	MaxResults int
}

// errSearchDone unwinds the traversal once MaxResults is reached.
var errSearchDone = errors.New("search limit reached")

// Search walks root depth-first collecting entries whose name matches
// pattern. Matches carry their path relative to root in the Name field.
// Pattern "*" matches everything; any other pattern is an exact name match,
// optionally case-insensitive. Partial globs are not supported.
func (f *FS) Search(ctx context.Context, root, pattern string, opts SearchOptions) ([]FileInfo, error) {
	if err := helpers.ValidatePath(root); err != nil {
		return nil, err
	}
	if pattern == "" {
		return nil, fmt.Errorf("empty search pattern: %w", errs.ErrInvalidArg)
	}
	root = helpers.NormalizePath(root)

	fi, err := f.stat(root)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%q is not a directory: %w", root, errs.ErrInvalidArg)
	}

	var results []FileInfo
	err = f.searchDir(ctx, root, "", pattern, opts, &results)
	if errors.Is(err, errSearchDone) {
		err = nil
	}
	return results, err
}

func (f *FS) searchDir(
	ctx context.Context, dir, rel, pattern string, opts SearchOptions, results *[]FileInfo,
) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("search interrupted: %w", err)
	}

	entries, err := afero.ReadDir(f.vol, dir)
	if err != nil {
		// Unreadable subdirectories are skipped, matching the other
		// best-effort tree operations.
		log.Warn().Err(err).Msgf("search: skipping unreadable %q", dir)
		return nil
	}

	for _, e := range entries {
		relName := e.Name()
		if rel != "" {
			relName = rel + "/" + e.Name()
		}

		if matchName(e.Name(), pattern, opts.CaseSensitive) &&
			(!e.IsDir() || opts.IncludeDirs) {
			info := snapshot(e)
			info.Name = relName
			*results = append(*results, info)
			if opts.MaxResults > 0 && len(*results) >= opts.MaxResults {
				return errSearchDone
			}
		}

		if e.IsDir() && opts.Recursive {
			if err := f.searchDir(ctx, join(dir, e.Name()), relName, pattern, opts, results); err != nil {
				return err
			}
		}
	}
	return nil
}

func matchName(name, pattern string, caseSensitive bool) bool {
	if pattern == "*" {
		return true
	}
	if caseSensitive {
		return name == pattern
	}
	return strings.EqualFold(name, pattern)
}

// SizeInfo aggregates a directory tree. Directories counts the root itself.
type SizeInfo struct {
	TotalBytes  uint64
	Files       int
	Directories int
}

// DirectorySize walks the tree under p summing file sizes and counting
// entries. Unreadable subtrees are skipped.
func (f *FS) DirectorySize(ctx context.Context, p string) (SizeInfo, error) {
	if err := helpers.ValidatePath(p); err != nil {
		return SizeInfo{}, err
	}
	p = helpers.NormalizePath(p)

	fi, err := f.stat(p)
	if err != nil {
		return SizeInfo{}, err
	}
	if !fi.IsDir() {
		return SizeInfo{}, fmt.Errorf("%q is not a directory: %w", p, errs.ErrInvalidArg)
	}

	info := SizeInfo{Directories: 1}
	if err := f.sizeDir(ctx, p, &info); err != nil {
		return info, err
	}
	return info, nil
}

func (f *FS) sizeDir(ctx context.Context, dir string, info *SizeInfo) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("size walk interrupted: %w", err)
	}

	entries, err := afero.ReadDir(f.vol, dir)
	if err != nil {
		log.Warn().Err(err).Msgf("du: skipping unreadable %q", dir)
		return nil
	}

	for _, e := range entries {
		if e.IsDir() {
			info.Directories++
			if err := f.sizeDir(ctx, join(dir, e.Name()), info); err != nil {
				return err
			}
			continue
		}
		info.Files++
		info.TotalBytes += uint64(e.Size()) //nolint:gosec // sizes are non-negative
	}
	return nil
}
