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

// Package hostdir treats a directory on the host filesystem as the card.
// This is the production driver on devices where the OS auto-mounts the
// physical medium and hands us the mount path.
package hostdir

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"

	"github.com/CardbayProject/cardbay-core/pkg/helpers/syncutil"
	"github.com/CardbayProject/cardbay-core/pkg/storage/blockdev"
	"github.com/CardbayProject/cardbay-core/pkg/storage/errs"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/spf13/afero"
)

const sectorSize = 512

// HostDir is a blockdev.Device backed by a directory on the host.
type HostDir struct {
	base afero.Fs
	dir  string
	mu   syncutil.RWMutex
}

func New(dir string) *HostDir {
	return &HostDir{dir: dir}
}

func (*HostDir) Metadata() blockdev.DriverMetadata {
	return blockdev.DriverMetadata{
		ID:          "hostdir",
		Description: "Host directory volume",
	}
}

// Open resolves the configured path. The directory itself is not required to
// exist yet; an absent directory is simply "no card".
func (h *HostDir) Open() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	abs, err := filepath.Abs(h.dir)
	if err != nil {
		return fmt.Errorf("resolve host dir %q: %w", h.dir, errs.ErrInvalidArg)
	}
	h.dir = abs
	return nil
}

func (h *HostDir) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.base = nil
	return nil
}

func (h *HostDir) Present() bool {
	h.mu.RLock()
	dir := h.dir
	h.mu.RUnlock()

	fi, err := os.Stat(dir)
	return err == nil && fi.IsDir()
}

func (h *HostDir) Mount(_ context.Context) (afero.Fs, blockdev.Info, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.base != nil {
		return nil, blockdev.Info{}, fmt.Errorf("already mounted: %w", errs.ErrInvalidState)
	}

	fi, err := os.Stat(h.dir)
	switch {
	case os.IsNotExist(err):
		return nil, blockdev.Info{}, fmt.Errorf("host dir %q absent: %w", h.dir, errs.ErrTimeout)
	case err != nil:
		return nil, blockdev.Info{}, fmt.Errorf("host dir %q unreadable: %w", h.dir, errs.ErrNotFound)
	case !fi.IsDir():
		return nil, blockdev.Info{}, fmt.Errorf("host path %q is not a directory: %w",
			h.dir, errs.ErrNotSupported)
	}

	usage, err := disk.Usage(h.dir)
	if err != nil {
		return nil, blockdev.Info{}, fmt.Errorf("read usage of %q: %w", h.dir, errs.ErrFail)
	}

	h.base = afero.NewBasePathFs(afero.NewOsFs(), h.dir)
	info := blockdev.Info{
		Present:       true,
		CapacityBytes: usage.Total,
		SectorSize:    sectorSize,
		VolumeName:    filepath.Base(h.dir),
		Serial:        pathSerial(h.dir),
	}
	return h.base, info, nil
}

func (h *HostDir) Unmount(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.base == nil {
		return fmt.Errorf("not mounted: %w", errs.ErrInvalidState)
	}
	h.base = nil
	return nil
}

// Format is not implemented: destroying the contents of a host-managed
// directory belongs to the host, not to us.
func (h *HostDir) Format(_ context.Context) error {
	return fmt.Errorf("hostdir driver cannot format %q: %w", h.dir, errs.ErrNotSupported)
}

func (h *HostDir) Capacity(_ context.Context) (blockdev.Capacity, error) {
	h.mu.RLock()
	dir := h.dir
	h.mu.RUnlock()

	usage, err := disk.Usage(dir)
	if err != nil {
		return blockdev.Capacity{}, fmt.Errorf("read usage of %q: %w", dir, errs.ErrFail)
	}
	return blockdev.Capacity{
		TotalBytes: usage.Total,
		UsedBytes:  usage.Used,
		FreeBytes:  usage.Free,
	}, nil
}

// Watch emits presence events when the host directory appears or disappears,
// watching its parent through fsnotify. The channel closes when ctx ends.
func (h *HostDir) Watch(ctx context.Context) (<-chan blockdev.PresenceEvent, error) {
	h.mu.RLock()
	dir := h.dir
	h.mu.RUnlock()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}

	parent := filepath.Dir(dir)
	if err := watcher.Add(parent); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %q: %w", parent, err)
	}

	events := make(chan blockdev.PresenceEvent, 4)
	go func() {
		defer close(events)
		defer func() {
			if err := watcher.Close(); err != nil {
				log.Warn().Err(err).Msg("hostdir: closing fs watcher")
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name != dir {
					continue
				}
				switch {
				case ev.Op.Has(fsnotify.Create):
					log.Debug().Msgf("hostdir: %q appeared", dir)
					events <- blockdev.PresenceEvent{Present: true}
				case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
					log.Debug().Msgf("hostdir: %q disappeared", dir)
					events <- blockdev.PresenceEvent{Present: false}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("hostdir: fs watcher error")
			}
		}
	}()

	return events, nil
}

// pathSerial derives a stable serial from the backing path so the same host
// directory always reports the same card identity.
func pathSerial(dir string) string {
	hash := fnv.New64a()
	_, _ = hash.Write([]byte(dir))
	return fmt.Sprintf("%016x", hash.Sum64())
}
