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

// Package memcard implements an in-memory virtual card. It exists for
// hardware-less development and for tests that need to fake card pulls.
package memcard

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/CardbayProject/cardbay-core/pkg/helpers/syncutil"
	"github.com/CardbayProject/cardbay-core/pkg/storage/blockdev"
	"github.com/CardbayProject/cardbay-core/pkg/storage/errs"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const sectorSize = 512

type Options struct {
	VolumeName    string
	CapacityBytes uint64
}

// MemCard is a blockdev.Device backed by an afero MemMapFs.
type MemCard struct {
	vol      afero.Fs
	volume   string
	serial   string
	capacity uint64
	mu       syncutil.RWMutex
	present  bool
	mounted  bool
}

func New(opts Options) *MemCard {
	capacity := opts.CapacityBytes
	if capacity == 0 {
		capacity = 64 * 1024 * 1024
	}
	volume := opts.VolumeName
	if volume == "" {
		volume = "MEMCARD"
	}
	return &MemCard{
		vol:      afero.NewMemMapFs(),
		volume:   volume,
		serial:   uuid.New().String(),
		capacity: capacity,
		present:  true,
	}
}

func (m *MemCard) Metadata() blockdev.DriverMetadata {
	return blockdev.DriverMetadata{
		ID:          "memcard",
		Description: "In-memory virtual card",
	}
}

func (*MemCard) Open() error {
	return nil
}

func (*MemCard) Close() error {
	return nil
}

func (m *MemCard) Present() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.present
}

// SetPresent simulates inserting or pulling the card.
func (m *MemCard) SetPresent(present bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.present = present
	log.Debug().Msgf("memcard: presence set to %v", present)
}

func (m *MemCard) Mount(_ context.Context) (afero.Fs, blockdev.Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.present {
		return nil, blockdev.Info{}, fmt.Errorf("no card in slot: %w", errs.ErrTimeout)
	}
	if m.mounted {
		return nil, blockdev.Info{}, fmt.Errorf("already mounted: %w", errs.ErrInvalidState)
	}

	m.mounted = true
	info := blockdev.Info{
		Present:       true,
		CapacityBytes: m.capacity,
		SectorSize:    sectorSize,
		VolumeName:    m.volume,
		Serial:        m.serial,
	}
	return m.vol, info, nil
}

func (m *MemCard) Unmount(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.mounted {
		return fmt.Errorf("not mounted: %w", errs.ErrInvalidState)
	}
	m.mounted = false
	return nil
}

// Format discards the whole tree and starts over with an empty filesystem.
func (m *MemCard) Format(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.present {
		return fmt.Errorf("no card in slot: %w", errs.ErrTimeout)
	}
	if m.mounted {
		return fmt.Errorf("cannot format while mounted: %w", errs.ErrInvalidState)
	}

	m.vol = afero.NewMemMapFs()
	m.serial = uuid.New().String()
	log.Info().Msgf("memcard: formatted, new serial %s", m.serial)
	return nil
}

func (m *MemCard) Capacity(_ context.Context) (blockdev.Capacity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.present {
		return blockdev.Capacity{}, fmt.Errorf("no card in slot: %w", errs.ErrTimeout)
	}

	var used uint64
	err := afero.Walk(m.vol, "/", func(_ string, fi fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			used += uint64(fi.Size()) //nolint:gosec // sizes are non-negative
		}
		return nil
	})
	if err != nil {
		return blockdev.Capacity{}, fmt.Errorf("walk volume: %w", err)
	}

	free := uint64(0)
	if used < m.capacity {
		free = m.capacity - used
	}
	return blockdev.Capacity{
		TotalBytes: m.capacity,
		UsedBytes:  used,
		FreeBytes:  free,
	}, nil
}
