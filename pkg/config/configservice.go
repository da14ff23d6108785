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

import "strings"

type Service struct {
	DeviceID       string     `toml:"device_id"`
	Publishers     Publishers `toml:"publishers,omitempty"`
	ErrorReporting bool       `toml:"error_reporting"`
}

type Publishers struct {
	MQTT []MQTTPublisher `toml:"mqtt,omitempty"`
}

type MQTTPublisher struct {
	Enabled *bool  `toml:"enabled,omitempty"`
	Broker  string `toml:"broker"`
	Topic   string `toml:"topic"`
	// Filter is a comma-separated list of notification methods, with ".*"
	// suffix wildcards, e.g. "storage.*,card.inserted". Empty publishes
	// everything.
	Filter string `toml:"filter,omitempty"`
}

// FilterList splits the publisher's filter into its method patterns.
func (p MQTTPublisher) FilterList() []string {
	if p.Filter == "" {
		return nil
	}
	parts := strings.Split(p.Filter, ",")
	patterns := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			patterns = append(patterns, trimmed)
		}
	}
	return patterns
}

func (c *Instance) DeviceID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Service.DeviceID
}

// ErrorReporting returns whether opt-in telemetry is enabled.
func (c *Instance) ErrorReporting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Service.ErrorReporting
}

func (c *Instance) GetMQTTPublishers() []MQTTPublisher {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Service.Publishers.MQTT
}
