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

// Package cli holds the flag handling and environment setup shared by the
// cardbay binary's modes of operation.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/CardbayProject/cardbay-core/internal/telemetry"
	"github.com/CardbayProject/cardbay-core/pkg/config"
	"github.com/CardbayProject/cardbay-core/pkg/helpers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Flags struct {
	Config  *string
	Exec    *string
	Service *string
	Version *bool
	Daemon  *bool
	Shell   *bool
}

// SetupFlags defines the common CLI flags. Add any custom flags before
// calling Pre.
func SetupFlags() *Flags {
	return &Flags{
		Config: flag.String(
			"config",
			"",
			"path to config file",
		),
		Exec: flag.String(
			"exec",
			"",
			"run a single shell command against the card and exit",
		),
		Service: flag.String(
			"service",
			"",
			"manage the background daemon (start|stop|restart|status|exec)",
		),
		Version: flag.Bool(
			"version",
			false,
			"print version and exit",
		),
		Daemon: flag.Bool(
			"daemon",
			false,
			"run the service in the foreground",
		),
		Shell: flag.Bool(
			"shell",
			false,
			"open an interactive shell on the mounted card",
		),
	}
}

// Pre runs flag parsing and actions any immediate flags that don't require
// environment setup.
func (f *Flags) Pre() {
	flag.Parse()

	if *f.Version {
		_, _ = fmt.Printf("Cardbay v%s\n", config.AppVersion)
		os.Exit(0)
	}

	if *f.Config != "" {
		if err := os.Setenv(config.CfgEnv, *f.Config); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error setting config path: %v\n", err)
			os.Exit(1)
		}
	}
}

// Setup initializes directories, logging, the user config and telemetry.
//
//nolint:gocritic // config struct copied for immutability
func Setup(defaultConfig config.Values, writers []io.Writer) *config.Instance {
	// Ensure directories exist before logging initialization
	err := helpers.EnsureDirectories()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error creating directories: %v\n", err)
		os.Exit(1)
	}

	err = helpers.InitLogging(helpers.LogDir(), writers)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewConfig(helpers.ConfigDir(), defaultConfig)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Initialize error reporting (opt-in)
	if err := telemetry.Init(
		cfg.ErrorReporting(),
		cfg.DeviceID(),
		config.AppVersion,
		cfg.StorageDriver(),
	); err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}

	return cfg
}
