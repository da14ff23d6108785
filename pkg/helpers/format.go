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
	"io/fs"
	"time"
)

var sizeUnits = []string{"KB", "MB", "GB", "TB", "PB"}

// FormatBytes renders a byte count using 1024-based units. Plain bytes keep
// an integer form, everything above gets two decimals.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit && exp < len(sizeUnits)-1; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %s", float64(n)/float64(div), sizeUnits[exp])
}

// PermString renders a file mode as the 10-character string long listings
// use, e.g. "drwxr-xr-x".
func PermString(mode fs.FileMode) string {
	var b [10]byte
	if mode.IsDir() {
		b[0] = 'd'
	} else {
		b[0] = '-'
	}
	const rwx = "rwxrwxrwx"
	perm := mode.Perm()
	for i := range 9 {
		if perm&(1<<uint(8-i)) != 0 {
			b[i+1] = rwx[i]
		} else {
			b[i+1] = '-'
		}
	}
	return string(b[:])
}

const listTimeRecent = 182 * 24 * time.Hour

// FormatListTime renders a modification time the way ls does: month, day and
// clock time for files touched within roughly six months of now, month, day
// and year for anything else.
func FormatListTime(t, now time.Time) string {
	d := now.Sub(t)
	if d > listTimeRecent || d < -listTimeRecent {
		return t.Format("Jan _2  2006")
	}
	return t.Format("Jan _2 15:04")
}
