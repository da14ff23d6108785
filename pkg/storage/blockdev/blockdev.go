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

// Package blockdev defines the narrow boundary between the storage core and
// whatever actually holds the removable volume. The physical transport, the
// on-card filesystem format and HTTP serving of files all live on the far
// side of this interface.
package blockdev

import (
	"context"

	"github.com/spf13/afero"
)

// DriverMetadata identifies a driver implementation.
type DriverMetadata struct {
	ID          string
	Description string
}

// Info describes a card after a successful mount. It goes stale the moment
// the card is unmounted or pulled and is refreshed on the next mount.
type Info struct {
	VolumeName    string
	Serial        string
	CapacityBytes uint64
	SectorSize    uint32
	Present       bool
}

// Capacity is a point-in-time space accounting of the mounted volume.
type Capacity struct {
	TotalBytes uint64
	UsedBytes  uint64
	FreeBytes  uint64
}

// PresenceEvent reports a card appearing or disappearing, for drivers that
// can watch for it rather than being polled.
type PresenceEvent struct {
	Present bool
}

// Device is a removable block device. Implementations must be safe for use
// from the dispatcher worker and the hot-swap monitor concurrently.
type Device interface {
	Metadata() DriverMetadata
	// Open prepares the transport. It must not touch the card itself.
	Open() error
	Close() error
	// Present reports whether a card is in the slot without side effects on
	// the bus.
	Present() bool
	// Mount attaches the volume and returns a filesystem rooted at the card
	// root. Absence of a card reports errs.ErrTimeout.
	Mount(ctx context.Context) (afero.Fs, Info, error)
	Unmount(ctx context.Context) error
	// Format reinitializes the card. Drivers that cannot format return
	// errs.ErrNotSupported rather than silently succeeding.
	Format(ctx context.Context) error
	Capacity(ctx context.Context) (Capacity, error)
}

// Watcher is an optional Device extension for event-driven insert/remove
// detection. Drivers without it are covered by the monitor's polling.
type Watcher interface {
	Watch(ctx context.Context) (<-chan PresenceEvent, error)
}
