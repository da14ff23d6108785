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
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
		in   uint64
	}{
		{name: "zero", in: 0, want: "0 B"},
		{name: "bytes", in: 512, want: "512 B"},
		{name: "boundary", in: 1023, want: "1023 B"},
		{name: "one KB", in: 1024, want: "1.00 KB"},
		{name: "fractional KB", in: 1536, want: "1.50 KB"},
		{name: "MB", in: 2 * 1024 * 1024, want: "2.00 MB"},
		{name: "GB", in: 3 * 1024 * 1024 * 1024, want: "3.00 GB"},
		{name: "TB", in: 1024 * 1024 * 1024 * 1024, want: "1.00 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatBytes(tt.in))
		})
	}
}

func TestPermString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
		mode fs.FileMode
	}{
		{name: "regular 644", mode: 0o644, want: "-rw-r--r--"},
		{name: "regular 755", mode: 0o755, want: "-rwxr-xr-x"},
		{name: "dir 750", mode: fs.ModeDir | 0o750, want: "drwxr-x---"},
		{name: "no perms", mode: 0, want: "----------"},
		{name: "full", mode: fs.ModeDir | 0o777, want: "drwxrwxrwx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := PermString(tt.mode)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, 10)
		})
	}
}

func TestFormatListTime(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 20, 12, 0, 0, 0, time.UTC)

	recent := time.Date(2026, time.August, 1, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "Aug  1 09:30", FormatListTime(recent, now))

	old := time.Date(2024, time.March, 5, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "Mar  5  2024", FormatListTime(old, now))

	future := time.Date(2027, time.June, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Jun  1  2027", FormatListTime(future, now))
}
