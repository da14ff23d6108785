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

package mocks

import (
	"context"
	"testing"

	"github.com/CardbayProject/cardbay-core/pkg/storage/blockdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// the mocks must satisfy the interfaces they stand in for
var (
	_ blockdev.Device  = (*MockDevice)(nil)
	_ blockdev.Device  = (*MockWatcherDevice)(nil)
	_ blockdev.Watcher = (*MockWatcherDevice)(nil)
)

func TestMockDeviceDefaults(t *testing.T) {
	t.Parallel()

	device := NewMockDevice()
	ctx := context.Background()

	require.NoError(t, device.Open())
	assert.True(t, device.Present())

	vol, info, err := device.Mount(ctx)
	require.NoError(t, err)
	require.NotNil(t, vol)
	assert.Equal(t, "MOCKCARD", info.VolumeName)

	capacity, err := device.Capacity(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<20), capacity.TotalBytes)

	require.NoError(t, device.Unmount(ctx))
	require.NoError(t, device.Close())
}

func TestMockDeviceOverrides(t *testing.T) {
	t.Parallel()

	device := &MockDevice{}
	device.On("Present").Return(false).Once()

	assert.False(t, device.Present())
	device.AssertExpectations(t)
}

func TestMockWatcherDeviceDeliversEvents(t *testing.T) {
	t.Parallel()

	device := NewMockWatcherDevice()
	events, err := device.Watch(context.Background())
	require.NoError(t, err)

	device.Events <- blockdev.PresenceEvent{Present: true}
	ev := <-events
	assert.True(t, ev.Present)
}
