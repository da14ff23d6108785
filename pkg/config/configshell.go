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

const defaultShellIdleTimeout = 5 * time.Minute

type Shell struct {
	IdleTimeout *int `toml:"idle_timeout,omitempty"`
}

// ShellIdleTimeout is how long an interactive shell session waits for input
// before force-exiting.
func (c *Instance) ShellIdleTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Shell.IdleTimeout == nil || *c.vals.Shell.IdleTimeout <= 0 {
		return defaultShellIdleTimeout
	}
	return time.Duration(*c.vals.Shell.IdleTimeout) * time.Second
}
