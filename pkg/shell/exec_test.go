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

package shell

import (
	"context"
	"testing"

	"github.com/CardbayProject/cardbay-core/pkg/storage"
	"github.com/CardbayProject/cardbay-core/pkg/storage/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecMountUnmountRoundTrip(t *testing.T) {
	t.Parallel()
	sh := newUnmountedShell(t)
	ctx := context.Background()

	res := sh.Exec(ctx, "mount")
	require.NoError(t, res.Err)
	assert.Contains(t, res.Output, "/mnt/test")
	assert.Equal(t, storage.Mounted, sh.mgr.State())

	res = sh.Exec(ctx, "unmount")
	require.NoError(t, res.Err)
	assert.Equal(t, storage.Unmounted, sh.mgr.State())
}

func TestExecFormatRequiresForce(t *testing.T) {
	t.Parallel()
	sh, f := newMountedShell(t)
	ctx := context.Background()

	writeFile(t, f, "/keep.txt", "x")

	res := sh.Exec(ctx, "format")
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, errs.ErrInvalidArg)
	assert.True(t, exists(t, f, "/keep.txt"))

	// formatting is an unmounted-only operation
	res = sh.Exec(ctx, "format --force")
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, errs.ErrInvalidState)

	require.NoError(t, sh.Exec(ctx, "unmount").Err)
	require.NoError(t, sh.Exec(ctx, "format --force").Err)
}

func TestExecRunsFilesystemCommands(t *testing.T) {
	t.Parallel()
	sh, f := newMountedShell(t)
	ctx := context.Background()

	require.NoError(t, sh.Exec(ctx, "mkdir -p /a/b").Err)
	require.NoError(t, sh.Exec(ctx, "touch /a/b/file.txt").Err)

	res := sh.Exec(ctx, "ls /a/b")
	require.NoError(t, res.Err)
	assert.Contains(t, res.Output, "file.txt")

	require.NoError(t, sh.Exec(ctx, "rm -r /a").Err)
	assert.False(t, exists(t, f, "/a"))
}

func TestExecRelativePathsResolveFromRoot(t *testing.T) {
	t.Parallel()
	sh, f := newMountedShell(t)

	require.NoError(t, sh.Exec(context.Background(), "touch rootfile.txt").Err)
	assert.True(t, exists(t, f, "/rootfile.txt"))
}

func TestExecHeadFlagOrderInsensitive(t *testing.T) {
	t.Parallel()
	sh, f := newMountedShell(t)
	ctx := context.Background()

	writeFile(t, f, "/log.txt", "one\ntwo\nthree\n")

	res := sh.Exec(ctx, "head -n 2 /log.txt")
	require.NoError(t, res.Err)
	assert.Equal(t, "one\ntwo", res.Output)

	res = sh.Exec(ctx, "head /log.txt -n 2")
	require.NoError(t, res.Err)
	assert.Equal(t, "one\ntwo", res.Output)
}

func TestExecFindWithFilters(t *testing.T) {
	t.Parallel()
	sh, f := newMountedShell(t)
	ctx := context.Background()

	require.NoError(t, f.Mkdir("/music", false))
	writeFile(t, f, "/music/track.mp3", "x")

	res := sh.Exec(ctx, "find / -name track.mp3")
	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.ItemsProcessed)

	res = sh.Exec(ctx, "find / -type d")
	require.NoError(t, res.Err)
	assert.Contains(t, res.Output, "music")
}

func TestExecCdValidatesTarget(t *testing.T) {
	t.Parallel()
	sh, f := newMountedShell(t)
	ctx := context.Background()

	require.NoError(t, f.Mkdir("/dir", false))
	writeFile(t, f, "/file.txt", "x")

	// a valid directory is accepted silently; the directory change itself
	// cannot outlive a one-shot invocation
	res := sh.Exec(ctx, "cd /dir")
	require.NoError(t, res.Err)
	assert.Empty(t, res.Output)

	res = sh.Exec(ctx, "cd")
	require.NoError(t, res.Err)

	res = sh.Exec(ctx, "cd /file.txt")
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, errs.ErrInvalidArg)
	assert.Equal(t, "cd: not a directory: /file.txt", res.Output)

	res = sh.Exec(ctx, "cd /missing")
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, errs.ErrNotFound)
}

func TestExecStorageStatusWorksUnmounted(t *testing.T) {
	t.Parallel()
	sh := newUnmountedShell(t)

	res := sh.Exec(context.Background(), "storage-status")
	require.NoError(t, res.Err)
	assert.Contains(t, res.Output, "State:")
}

func TestExecUnknownCommand(t *testing.T) {
	t.Parallel()
	sh, _ := newMountedShell(t)

	res := sh.Exec(context.Background(), "frobnicate /x")
	require.Error(t, res.Err)
	assert.Equal(t, 2, errs.ExitCode(res.Err))
}

func TestExecEmptyLine(t *testing.T) {
	t.Parallel()
	sh, _ := newMountedShell(t)

	res := sh.Exec(context.Background(), "   ")
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, errs.ErrInvalidArg)
}
