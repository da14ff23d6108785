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

// Package notifications provides one send helper per lifecycle event so
// callers never spell out method names by hand. Senders must not hold any
// lock while calling these.
package notifications

import "github.com/CardbayProject/cardbay-core/pkg/api/models"

func Mounted(ns chan<- models.Notification, payload models.MountedParams) {
	ns <- models.Notification{
		Method: models.NotificationMounted,
		Params: payload,
	}
}

func Unmounted(ns chan<- models.Notification, mountPoint string) {
	ns <- models.Notification{
		Method: models.NotificationUnmounted,
		Params: models.UnmountedParams{MountPoint: mountPoint},
	}
}

func CardInserted(ns chan<- models.Notification, device models.DeviceInfoParams) {
	ns <- models.Notification{
		Method: models.NotificationCardInserted,
		Params: models.CardInsertedParams{Device: device},
	}
}

func CardRemoved(ns chan<- models.Notification, mountPoint string) {
	ns <- models.Notification{
		Method: models.NotificationCardRemoved,
		Params: models.CardRemovedParams{MountPoint: mountPoint},
	}
}

func OperationComplete(ns chan<- models.Notification, payload models.OperationParams) {
	ns <- models.Notification{
		Method: models.NotificationOperationComplete,
		Params: payload,
	}
}

func OperationFailed(ns chan<- models.Notification, payload models.OperationFailedParams) {
	ns <- models.Notification{
		Method: models.NotificationOperationFailed,
		Params: payload,
	}
}

func LowSpace(ns chan<- models.Notification, payload models.LowSpaceParams) {
	ns <- models.Notification{
		Method: models.NotificationLowSpace,
		Params: payload,
	}
}

func FilesystemError(ns chan<- models.Notification, payload models.FilesystemErrorParams) {
	ns <- models.Notification{
		Method: models.NotificationFilesystemError,
		Params: payload,
	}
}
