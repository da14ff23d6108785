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

// Package models defines the lifecycle notification types published by the
// storage core. It deliberately imports nothing from the rest of the module
// so every layer can produce and consume notifications.
package models

// Notification methods. Dotted names group related events for publisher
// filters like "storage.*".
const (
	NotificationMounted           = "storage.mounted"
	NotificationUnmounted         = "storage.unmounted"
	NotificationLowSpace          = "storage.lowSpace"
	NotificationFilesystemError   = "storage.error"
	NotificationCardInserted      = "card.inserted"
	NotificationCardRemoved       = "card.removed"
	NotificationOperationComplete = "operations.completed"
	NotificationOperationFailed   = "operations.failed"
)

// Notification is a single lifecycle event. Params is the method-specific
// payload and may be nil.
type Notification struct {
	Params any
	Method string
}

// DeviceInfoParams describes the mounted card.
type DeviceInfoParams struct {
	VolumeName    string `json:"volumeName"`
	Serial        string `json:"serial"`
	CapacityBytes uint64 `json:"capacityBytes"`
	SectorSize    uint32 `json:"sectorSize"`
}

type MountedParams struct {
	MountPoint string           `json:"mountPoint"`
	Device     DeviceInfoParams `json:"device"`
}

type UnmountedParams struct {
	MountPoint string `json:"mountPoint"`
}

type CardInsertedParams struct {
	Device DeviceInfoParams `json:"device"`
}

type CardRemovedParams struct {
	MountPoint string `json:"mountPoint"`
}

// OperationParams reports a dispatcher request that ran to completion.
type OperationParams struct {
	Op         string `json:"op"`
	Path       string `json:"path,omitempty"`
	Dest       string `json:"dest,omitempty"`
	ID         uint64 `json:"id"`
	DurationMs int64  `json:"durationMs"`
}

// OperationFailedParams is OperationParams plus the failure description.
type OperationFailedParams struct {
	Op         string `json:"op"`
	Path       string `json:"path,omitempty"`
	Dest       string `json:"dest,omitempty"`
	Error      string `json:"error"`
	ID         uint64 `json:"id"`
	DurationMs int64  `json:"durationMs"`
}

type LowSpaceParams struct {
	TotalBytes  uint64  `json:"totalBytes"`
	FreeBytes   uint64  `json:"freeBytes"`
	PercentFree float64 `json:"percentFree"`
}

type FilesystemErrorParams struct {
	Op    string `json:"op"`
	Path  string `json:"path,omitempty"`
	Error string `json:"error"`
}
