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

package config

import "time"

const (
	DriverHostDir = "hostdir"
	DriverMemCard = "memcard"

	DefaultQueueSize       = 16
	DefaultLowSpacePercent = 10
	defaultMonitorInterval = 2 * time.Second
	defaultMemCardMB       = 64
	defaultMemCardVolume   = "CARDBAY"
)

type Storage struct {
	AutoMount       *bool   `toml:"auto_mount,omitempty"`
	QueueSize       *int    `toml:"queue_size,omitempty"`
	LowSpacePercent *int    `toml:"low_space_percent,omitempty"`
	Driver          string  `toml:"driver"`
	MountPoint      string  `toml:"mount_point"`
	HostDir         string  `toml:"host_dir"`
	MemCard         MemCard `toml:"memcard,omitempty"`
	Monitor         Monitor `toml:"monitor,omitempty"`
	FormatIfFailed  bool    `toml:"format_if_failed"`
}

type MemCard struct {
	CapacityMB *int   `toml:"capacity_mb,omitempty"`
	VolumeName string `toml:"volume_name,omitempty"`
}

type Monitor struct {
	Enabled  *bool `toml:"enabled,omitempty"`
	Interval *int  `toml:"interval,omitempty"`
}

func (c *Instance) StorageDriver() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Storage.Driver == "" {
		return DriverHostDir
	}
	return c.vals.Storage.Driver
}

func (c *Instance) MountPoint() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Storage.MountPoint == "" {
		return "/mnt/card"
	}
	return c.vals.Storage.MountPoint
}

func (c *Instance) HostDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Storage.HostDir
}

func (c *Instance) AutoMount() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Storage.AutoMount == nil {
		return true
	}
	return *c.vals.Storage.AutoMount
}

func (c *Instance) FormatIfFailed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Storage.FormatIfFailed
}

func (c *Instance) QueueSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Storage.QueueSize == nil || *c.vals.Storage.QueueSize <= 0 {
		return DefaultQueueSize
	}
	return *c.vals.Storage.QueueSize
}

// LowSpacePercent is the free-space threshold, in percent of total capacity,
// below which the monitor raises a low space warning.
func (c *Instance) LowSpacePercent() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Storage.LowSpacePercent == nil || *c.vals.Storage.LowSpacePercent <= 0 {
		return DefaultLowSpacePercent
	}
	return *c.vals.Storage.LowSpacePercent
}

func (c *Instance) MonitorEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Storage.Monitor.Enabled == nil {
		return true
	}
	return *c.vals.Storage.Monitor.Enabled
}

func (c *Instance) MonitorInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Storage.Monitor.Interval == nil || *c.vals.Storage.Monitor.Interval <= 0 {
		return defaultMonitorInterval
	}
	return time.Duration(*c.vals.Storage.Monitor.Interval) * time.Second
}

func (c *Instance) MemCardCapacityBytes() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	mb := defaultMemCardMB
	if c.vals.Storage.MemCard.CapacityMB != nil && *c.vals.Storage.MemCard.CapacityMB > 0 {
		mb = *c.vals.Storage.MemCard.CapacityMB
	}
	return uint64(mb) * 1024 * 1024
}

func (c *Instance) MemCardVolumeName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Storage.MemCard.VolumeName == "" {
		return defaultMemCardVolume
	}
	return c.vals.Storage.MemCard.VolumeName
}
