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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/CardbayProject/cardbay-core/internal/telemetry"
	"github.com/CardbayProject/cardbay-core/pkg/cli"
	"github.com/CardbayProject/cardbay-core/pkg/config"
	"github.com/CardbayProject/cardbay-core/pkg/helpers"
	"github.com/CardbayProject/cardbay-core/pkg/service"
	"github.com/CardbayProject/cardbay-core/pkg/service/state"
	"github.com/CardbayProject/cardbay-core/pkg/shell"
	"github.com/CardbayProject/cardbay-core/pkg/storage"
	"github.com/CardbayProject/cardbay-core/pkg/storage/errs"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		telemetry.Flush()
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(errs.ExitCode(err))
	}
	telemetry.Close()
}

func run() error {
	flags := cli.SetupFlags()
	flags.Pre()

	var logWriters []io.Writer
	if *flags.Daemon {
		logWriters = []io.Writer{os.Stderr}
	}

	cfg := cli.Setup(config.BaseDefaults, logWriters)
	defer telemetry.Close()

	switch {
	case *flags.Service != "":
		return runServiceCommand(cfg, flags.Service)
	case *flags.Shell:
		return runShell(cfg)
	case *flags.Exec != "":
		return runExec(cfg, *flags.Exec)
	default:
		return runDaemon(cfg)
	}
}

// runDaemon runs the full service in the foreground until a signal arrives.
func runDaemon(cfg *config.Instance) error {
	stop, done, err := service.Start(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	select {
	case <-ctx.Done():
		log.Info().Msg("signal received, shutting down")
		return stop()
	case <-done:
		// service stopped on its own
		return nil
	}
}

// runServiceCommand manages the background daemon through its PID file.
func runServiceCommand(cfg *config.Instance, cmd *string) error {
	svc, err := helpers.NewService(helpers.ServiceArgs{
		Entry: func() (func() error, error) {
			stop, _, startErr := service.Start(cfg)
			return stop, startErr
		},
		TempDir:   helpers.TempDir(),
		ConfigDir: helpers.ConfigDir(),
	})
	if err != nil {
		return err
	}
	//nolint:wrapcheck // handler errors are already user-facing
	return svc.ServiceHandler(cmd)
}

// newShell builds a manager over the configured driver for attended use,
// bypassing the daemon.
func newShell(cfg *config.Instance) (*shell.Shell, *state.State, error) {
	device, err := service.MakeDevice(cfg)
	if err != nil {
		return nil, nil, err
	}

	st, notifs := state.NewState()
	// attended modes run no broker; discard lifecycle events so storage
	// operations never block on the notification buffer
	go func() {
		for {
			select {
			case <-st.Ctx().Done():
				return
			case <-notifs:
			}
		}
	}()
	mgr := storage.NewManager(device, st.Notifications, storage.Options{
		MountPoint: cfg.MountPoint(),
	})
	if err := mgr.Init(); err != nil {
		st.StopService()
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	return shell.New(mgr, st), st, nil
}

func runShell(cfg *config.Instance) error {
	sh, st, err := newShell(cfg)
	if err != nil {
		return err
	}
	defer st.StopService()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if res := sh.Exec(ctx, "mount"); res.Err != nil {
		return res.Err
	}
	defer func() {
		if res := sh.Exec(context.Background(), "unmount"); res.Err != nil {
			log.Warn().Err(res.Err).Msg("unmount on shell exit")
		}
	}()

	sess := shell.NewSession(sh, os.Stdin, os.Stdout, shell.SessionOptions{
		IdleTimeout: cfg.ShellIdleTimeout(),
	})
	return sess.Run(ctx)
}

// commands that manage the device themselves and must not be preceded by an
// implicit mount
var selfMountedCommands = map[string]bool{
	"mount":          true,
	"unmount":        true,
	"format":         true,
	"storage-status": true,
}

func runExec(cfg *config.Instance, line string) error {
	fields := strings.Fields(line)
	if len(fields) > 0 && fields[0] == "sdcard" {
		return runShell(cfg)
	}

	sh, st, err := newShell(cfg)
	if err != nil {
		return err
	}
	defer st.StopService()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if len(fields) > 0 && !selfMountedCommands[fields[0]] {
		if res := sh.Exec(ctx, "mount"); res.Err != nil {
			return res.Err
		}
		defer func() {
			if res := sh.Exec(context.Background(), "unmount"); res.Err != nil {
				log.Warn().Err(res.Err).Msg("unmount after exec")
			}
		}()
	}

	res := sh.Exec(ctx, line)
	if res.Output != "" {
		_, _ = fmt.Println(res.Output)
	}
	return res.Err
}
