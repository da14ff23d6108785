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
	"fmt"
	"strings"

	"github.com/CardbayProject/cardbay-core/pkg/helpers"
	"github.com/CardbayProject/cardbay-core/pkg/storage/errs"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// ChildError records one entry a best-effort tree operation could not
// process.
type ChildError struct {
	Err  error
	Path string
}

// CopyStats reports what a directory copy actually did. A non-empty Failed
// list with a nil error means the copy was partial: tree operations continue
// past child failures the way cp -r does.
type CopyStats struct {
	Failed []ChildError
	Copied int
}

// RemoveStats is the removal counterpart of CopyStats.
type RemoveStats struct {
	Failed  []ChildError
	Removed int
}

// CopyDirectory creates dst (with parents) and, when recursive, copies every
// child of src into it. Child failures are logged, recorded and skipped; the
// call only fails when the root operation itself fails or the context ends.
func (f *FS) CopyDirectory(ctx context.Context, src, dst string, recursive bool) (CopyStats, error) {
	var stats CopyStats

	if err := helpers.ValidatePath(src); err != nil {
		return stats, err
	}
	if err := helpers.ValidatePath(dst); err != nil {
		return stats, err
	}
	src = helpers.NormalizePath(src)
	dst = helpers.NormalizePath(dst)

	fi, err := f.stat(src)
	if err != nil {
		return stats, err
	}
	if !fi.IsDir() {
		return stats, fmt.Errorf("%q is not a directory: %w", src, errs.ErrInvalidArg)
	}

	// a destination inside the source would be found by the traversal it
	// just created, descending into itself without end
	prefix := src
	if prefix != "/" {
		prefix += "/"
	}
	if dst == src || strings.HasPrefix(dst, prefix) {
		return stats, fmt.Errorf("cannot copy %q into itself: %w", src, errs.ErrInvalidArg)
	}

	if err := f.vol.MkdirAll(dst, fi.Mode().Perm()); err != nil {
		return stats, fmt.Errorf("create %q: %w", dst, errs.ErrFail)
	}

	if !recursive {
		return stats, nil
	}
	err = f.copyChildren(ctx, src, dst, &stats)
	return stats, err
}

func (f *FS) copyChildren(ctx context.Context, src, dst string, stats *CopyStats) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("copy interrupted: %w", err)
	}

	entries, err := afero.ReadDir(f.vol, src)
	if err != nil {
		return fmt.Errorf("list %q: %w", src, errs.ErrFail)
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("copy interrupted: %w", err)
		}

		childSrc := join(src, e.Name())
		childDst := join(dst, e.Name())

		if e.IsDir() {
			if err := f.vol.MkdirAll(childDst, e.Mode().Perm()); err != nil {
				log.Warn().Err(err).Msgf("copy: skipping directory %q", childSrc)
				stats.Failed = append(stats.Failed, ChildError{Path: childSrc, Err: err})
				continue
			}
			if err := f.copyChildren(ctx, childSrc, childDst, stats); err != nil {
				if ctx.Err() != nil {
					return err
				}
				log.Warn().Err(err).Msgf("copy: skipping subtree %q", childSrc)
				stats.Failed = append(stats.Failed, ChildError{Path: childSrc, Err: err})
			}
			continue
		}

		if err := f.CopyFile(childSrc, childDst, true); err != nil {
			log.Warn().Err(err).Msgf("copy: skipping file %q", childSrc)
			stats.Failed = append(stats.Failed, ChildError{Path: childSrc, Err: err})
			continue
		}
		stats.Copied++
	}
	return nil
}

// RemoveDirectory deletes a directory. Non-recursive removal of a non-empty
// directory is rejected; recursive removal descends depth-first, deleting
// files before their parent, continuing past child failures.
func (f *FS) RemoveDirectory(ctx context.Context, p string, recursive bool) (RemoveStats, error) {
	var stats RemoveStats

	if err := helpers.ValidatePath(p); err != nil {
		return stats, err
	}
	p = helpers.NormalizePath(p)

	fi, err := f.stat(p)
	if err != nil {
		return stats, err
	}
	if !fi.IsDir() {
		return stats, fmt.Errorf("%q is not a directory: %w", p, errs.ErrInvalidArg)
	}

	if !recursive {
		entries, err := afero.ReadDir(f.vol, p)
		if err != nil {
			return stats, fmt.Errorf("list %q: %w", p, errs.ErrFail)
		}
		if len(entries) > 0 {
			return stats, fmt.Errorf("%q is not empty: %w", p, errs.ErrInvalidArg)
		}
		if err := f.vol.Remove(p); err != nil {
			return stats, fmt.Errorf("remove %q: %w", p, errs.ErrFail)
		}
		stats.Removed = 1
		return stats, nil
	}

	err = f.removeTree(ctx, p, &stats)
	return stats, err
}

func (f *FS) removeTree(ctx context.Context, dir string, stats *RemoveStats) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("remove interrupted: %w", err)
	}

	entries, err := afero.ReadDir(f.vol, dir)
	if err != nil {
		return fmt.Errorf("list %q: %w", dir, errs.ErrFail)
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("remove interrupted: %w", err)
		}

		child := join(dir, e.Name())
		if e.IsDir() {
			if err := f.removeTree(ctx, child, stats); err != nil {
				if ctx.Err() != nil {
					return err
				}
				log.Warn().Err(err).Msgf("remove: skipping subtree %q", child)
				stats.Failed = append(stats.Failed, ChildError{Path: child, Err: err})
			}
			continue
		}
		if err := f.vol.Remove(child); err != nil {
			log.Warn().Err(err).Msgf("remove: skipping file %q", child)
			stats.Failed = append(stats.Failed, ChildError{Path: child, Err: err})
			continue
		}
		stats.Removed++
	}

	if err := f.vol.Remove(dir); err != nil {
		return fmt.Errorf("remove %q: %w", dir, errs.ErrFail)
	}
	stats.Removed++
	return nil
}
