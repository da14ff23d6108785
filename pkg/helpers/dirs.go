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

package helpers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/CardbayProject/cardbay-core/pkg/config"
	"github.com/adrg/xdg"
)

// ConfigDir is where the config file lives unless overridden through the
// environment.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, config.AppName)
}

// DataDir holds state the service writes during normal operation.
func DataDir() string {
	return filepath.Join(xdg.DataHome, config.AppName)
}

// LogDir is where rotated log files are written.
func LogDir() string {
	return filepath.Join(DataDir(), config.LogsDir)
}

// TempDir holds the PID file and the daemon's working copies.
func TempDir() string {
	return filepath.Join(os.TempDir(), config.AppName)
}

// EnsureDirectories creates the config, data and log directories so logging
// and config loading never race against first use.
func EnsureDirectories() error {
	for _, dir := range []string{ConfigDir(), DataDir(), LogDir(), TempDir()} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}
