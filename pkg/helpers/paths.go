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

package helpers

import (
	"fmt"
	"strings"

	"github.com/CardbayProject/cardbay-core/pkg/storage/errs"
)

// MaxPathLen bounds volume paths. Anything longer is rejected up front
// instead of being silently truncated somewhere deeper in the stack.
const MaxPathLen = 512

// ValidatePath rejects paths no layer below should ever see: empty strings,
// over-long paths and embedded NUL bytes.
func ValidatePath(path string) error {
	switch {
	case path == "":
		return fmt.Errorf("empty path: %w", errs.ErrInvalidArg)
	case len(path) > MaxPathLen:
		return fmt.Errorf("path exceeds %d bytes: %w", MaxPathLen, errs.ErrInvalidArg)
	case strings.ContainsRune(path, 0):
		return fmt.Errorf("path contains NUL byte: %w", errs.ErrInvalidArg)
	}
	return nil
}

// NormalizePath strips a single trailing slash from a volume path. The root
// path "/" is left intact. Volume paths always use forward slashes regardless
// of host platform.
func NormalizePath(path string) string {
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		return path[:len(path)-1]
	}
	return path
}

// PathFilename returns everything after the last slash. A path with no
// separator is already a filename and is returned unchanged.
func PathFilename(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

// PathDirectory returns everything before the last slash, "." when the path
// has no separator, and "/" for entries directly under the root.
func PathDirectory(path string) string {
	idx := strings.LastIndexByte(path, '/')
	switch {
	case idx < 0:
		return "."
	case idx == 0:
		return "/"
	default:
		return path[:idx]
	}
}

// PathExtension returns the extension of the final path element without the
// dot. A dot in the first position does not start an extension, so hidden
// files like ".bashrc" report no extension at all.
func PathExtension(path string) (string, bool) {
	base := PathFilename(path)
	idx := strings.LastIndexByte(base, '.')
	if idx <= 0 {
		return "", false
	}
	return base[idx+1:], true
}

// HiddenName reports whether a directory entry name is hidden by the Unix
// dotfile convention.
func HiddenName(name string) bool {
	return strings.HasPrefix(name, ".")
}
