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

package hostdir

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/CardbayProject/cardbay-core/pkg/storage/errs"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMountHostDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "card0")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hi"), 0o644))

	drv := New(dir)
	require.NoError(t, drv.Open())
	assert.True(t, drv.Present())

	vol, info, err := drv.Mount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "card0", info.VolumeName)
	assert.NotEmpty(t, info.Serial)
	assert.Positive(t, info.CapacityBytes)

	// the volume is rooted at the card directory
	data, err := afero.ReadFile(vol, "/hello.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))

	require.NoError(t, drv.Unmount(context.Background()))
}

func TestAbsentDirectoryIsNoCard(t *testing.T) {
	t.Parallel()

	drv := New(filepath.Join(t.TempDir(), "never-created"))
	require.NoError(t, drv.Open())
	assert.False(t, drv.Present())

	_, _, err := drv.Mount(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrTimeout)
}

func TestFileTargetIsUnrecognizedFormat(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	drv := New(file)
	require.NoError(t, drv.Open())

	_, _, err := drv.Mount(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrNotSupported)
}

func TestFormatNotSupported(t *testing.T) {
	t.Parallel()

	drv := New(t.TempDir())
	require.NoError(t, drv.Open())
	assert.ErrorIs(t, drv.Format(context.Background()), errs.ErrNotSupported)
}

func TestSerialStableAcrossMounts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	drv := New(dir)
	require.NoError(t, drv.Open())

	_, first, err := drv.Mount(context.Background())
	require.NoError(t, err)
	require.NoError(t, drv.Unmount(context.Background()))

	_, second, err := drv.Mount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Serial, second.Serial)
}

func TestWatchReportsPresenceChanges(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	dir := filepath.Join(parent, "card0")

	drv := New(dir)
	require.NoError(t, drv.Open())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := drv.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, os.Mkdir(dir, 0o755))
	select {
	case ev := <-events:
		assert.True(t, ev.Present)
	case <-time.After(2 * time.Second):
		t.Fatal("no insert event")
	}

	require.NoError(t, os.Remove(dir))
	select {
	case ev := <-events:
		assert.False(t, ev.Present)
	case <-time.After(2 * time.Second):
		t.Fatal("no removal event")
	}

	cancel()
	select {
	case _, open := <-events:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("event channel not closed after cancel")
	}
}

func TestCapacityMatchesHost(t *testing.T) {
	t.Parallel()

	drv := New(t.TempDir())
	require.NoError(t, drv.Open())

	capacity, err := drv.Capacity(context.Background())
	require.NoError(t, err)
	assert.Positive(t, capacity.TotalBytes)
	assert.LessOrEqual(t, capacity.UsedBytes, capacity.TotalBytes)
}
