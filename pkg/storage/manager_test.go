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

package storage

import (
	"context"
	"testing"

	"github.com/CardbayProject/cardbay-core/pkg/api/models"
	"github.com/CardbayProject/cardbay-core/pkg/storage/blockdev/memcard"
	"github.com/CardbayProject/cardbay-core/pkg/storage/errs"
	"github.com/CardbayProject/cardbay-core/pkg/storage/fsops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *memcard.MemCard, chan models.Notification) {
	t.Helper()
	card := memcard.New(memcard.Options{
		VolumeName:    "TESTCARD",
		CapacityBytes: 1024 * 1024,
	})
	ns := make(chan models.Notification, 64)
	mgr := NewManager(card, ns, Options{MountPoint: "/mnt/test"})
	return mgr, card, ns
}

func drainMethods(ns chan models.Notification) []string {
	var methods []string
	for {
		select {
		case n := <-ns:
			methods = append(methods, n.Method)
		default:
			return methods
		}
	}
}

func TestLifecycleTransitions(t *testing.T) {
	t.Parallel()
	mgr, _, ns := newTestManager(t)
	ctx := context.Background()

	assert.Equal(t, Uninitialized, mgr.State())
	require.NoError(t, mgr.Init())
	assert.Equal(t, Initialized, mgr.State())

	require.NoError(t, mgr.Mount(ctx, MountOptions{}))
	assert.Equal(t, Mounted, mgr.State())
	assert.True(t, mgr.Present())

	info := mgr.Info()
	assert.Equal(t, "TESTCARD", info.VolumeName)
	assert.NotEmpty(t, info.Serial)
	assert.Equal(t, uint64(1024*1024), info.CapacityBytes)

	assert.Equal(t, []string{
		models.NotificationCardInserted,
		models.NotificationMounted,
	}, drainMethods(ns))

	require.NoError(t, mgr.Unmount(ctx))
	assert.Equal(t, Unmounted, mgr.State())
	assert.False(t, mgr.Present())
	assert.Equal(t, []string{models.NotificationUnmounted}, drainMethods(ns))

	// remount from Unmounted
	require.NoError(t, mgr.Mount(ctx, MountOptions{}))
	assert.Equal(t, Mounted, mgr.State())
}

func TestMountStateInvariant(t *testing.T) {
	t.Parallel()
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()

	// every filesystem-facing call fails InvalidState until mounted
	_, err := mgr.Filesystem()
	assert.ErrorIs(t, err, errs.ErrInvalidState)

	_, err = mgr.Capacity(ctx)
	assert.ErrorIs(t, err, errs.ErrInvalidState)

	_, err = mgr.Stats(ctx)
	assert.ErrorIs(t, err, errs.ErrInvalidState)

	err = mgr.Unmount(ctx)
	assert.ErrorIs(t, err, errs.ErrInvalidState)

	// mount before init is also out of order
	err = mgr.Mount(ctx, MountOptions{})
	assert.ErrorIs(t, err, errs.ErrInvalidState)
}

func TestMountNoCardLandsUnmounted(t *testing.T) {
	t.Parallel()
	mgr, card, ns := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, mgr.Init())
	card.SetPresent(false)

	err := mgr.Mount(ctx, MountOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrTimeout)
	// absence is not a malfunction: Unmounted, not an error state
	assert.Equal(t, Unmounted, mgr.State())
	assert.Empty(t, drainMethods(ns))

	// inserting a card makes the next attempt succeed
	card.SetPresent(true)
	require.NoError(t, mgr.Mount(ctx, MountOptions{}))
	assert.Equal(t, Mounted, mgr.State())
}

func TestDoubleMountRejected(t *testing.T) {
	t.Parallel()
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, mgr.Init())
	require.NoError(t, mgr.Mount(ctx, MountOptions{}))

	err := mgr.Mount(ctx, MountOptions{})
	assert.ErrorIs(t, err, errs.ErrInvalidState)
	assert.Equal(t, Mounted, mgr.State())
}

func TestFormatRequiresUnmounted(t *testing.T) {
	t.Parallel()
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, mgr.Init())
	require.NoError(t, mgr.Mount(ctx, MountOptions{}))

	err := mgr.Format(ctx)
	assert.ErrorIs(t, err, errs.ErrInvalidState)

	require.NoError(t, mgr.Unmount(ctx))
	require.NoError(t, mgr.Format(ctx))

	// formatting wipes the volume
	require.NoError(t, mgr.Mount(ctx, MountOptions{}))
	vol, err := mgr.Filesystem()
	require.NoError(t, err)
	infos, err := fsops.New(vol).List("/")
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestStats(t *testing.T) {
	t.Parallel()
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, mgr.Init())
	require.NoError(t, mgr.Mount(ctx, MountOptions{}))

	vol, err := mgr.Filesystem()
	require.NoError(t, err)
	f := fsops.New(vol)
	require.NoError(t, f.Mkdir("/docs", true))
	require.NoError(t, f.WriteFile("/docs/a.txt", []byte("12345"), fsops.DefaultWriteOptions()))
	require.NoError(t, f.WriteFile("/b.txt", []byte("123"), fsops.DefaultWriteOptions()))

	stats, err := mgr.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1024*1024), stats.TotalBytes)
	assert.Equal(t, uint64(8), stats.UsedBytes)
	assert.Equal(t, stats.TotalBytes-stats.UsedBytes, stats.FreeBytes)
	assert.Equal(t, 2, stats.TotalFiles)
	// root plus /docs
	assert.Equal(t, 2, stats.TotalDirectories)
}

func TestHandleCardRemoval(t *testing.T) {
	t.Parallel()
	mgr, _, ns := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, mgr.Init())
	require.NoError(t, mgr.Mount(ctx, MountOptions{}))
	drainMethods(ns)

	mgr.HandleCardRemoval()
	assert.Equal(t, Unmounted, mgr.State())
	assert.False(t, mgr.Info().Present)
	assert.Equal(t, []string{
		models.NotificationCardRemoved,
		models.NotificationUnmounted,
	}, drainMethods(ns))

	// idempotent outside Mounted
	mgr.HandleCardRemoval()
	assert.Empty(t, drainMethods(ns))
}

func TestStateString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "uninitialized", Uninitialized.String())
	assert.Equal(t, "mounted", Mounted.String())
	assert.Equal(t, "error", StateError.String())
}
