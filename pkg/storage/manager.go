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

// Package storage owns the card mount lifecycle: the device state machine,
// capacity and stats queries, and the hot-swap monitor.
package storage

import (
	"context"
	"fmt"

	"github.com/CardbayProject/cardbay-core/pkg/api/models"
	"github.com/CardbayProject/cardbay-core/pkg/api/notifications"
	"github.com/CardbayProject/cardbay-core/pkg/helpers/syncutil"
	"github.com/CardbayProject/cardbay-core/pkg/storage/blockdev"
	"github.com/CardbayProject/cardbay-core/pkg/storage/errs"
	"github.com/CardbayProject/cardbay-core/pkg/storage/fsops"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// DeviceState is the mount lifecycle state. There is no terminal state; the
// machine cycles for as long as the service runs.
type DeviceState int

const (
	Uninitialized DeviceState = iota
	Initialized
	Mounted
	Unmounted
	StateError
)

func (s DeviceState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Mounted:
		return "mounted"
	case Unmounted:
		return "unmounted"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// MountOptions tune a single mount attempt.
type MountOptions struct {
	// FormatIfFailed formats the card and retries once when the first mount
	// attempt reports an unrecognized format.
	FormatIfFailed bool
}

// Stats are filesystem-wide totals, derived from the driver's capacity
// accounting plus a tree walk.
type Stats struct {
	TotalBytes       uint64
	UsedBytes        uint64
	FreeBytes        uint64
	TotalFiles       int
	TotalDirectories int
}

// Options configure a Manager.
type Options struct {
	MountPoint string
}

// Manager owns the device state machine and the volume handle.
//
// LOCKING RULES: mu protects state, info, vol and mountPoint. To prevent
// deadlocks, never send notifications or call driver methods that can block
// while holding the lock. Pattern: lock → mutate → copy payload → unlock →
// notify.
type Manager struct {
	device     blockdev.Device
	vol        afero.Fs
	ns         chan<- models.Notification
	mountPoint string
	info       blockdev.Info
	mu         syncutil.RWMutex
	state      DeviceState
}

func NewManager(device blockdev.Device, ns chan<- models.Notification, opts Options) *Manager {
	mountPoint := opts.MountPoint
	if mountPoint == "" {
		mountPoint = "/mnt/card"
	}
	return &Manager{
		device:     device,
		ns:         ns,
		mountPoint: mountPoint,
		state:      Uninitialized,
	}
}

// Init prepares the driver transport. It never touches the card itself.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Uninitialized {
		return fmt.Errorf("already initialized (%s): %w", m.state, errs.ErrInvalidState)
	}
	if err := m.device.Open(); err != nil {
		return fmt.Errorf("open device: %w", err)
	}

	m.state = Initialized
	log.Info().Msgf("storage: %s driver initialized", m.device.Metadata().ID)
	return nil
}

// Mount attaches the volume. A "no card" failure leaves the manager
// Unmounted rather than in an error state: an empty slot is a normal
// condition, not a malfunction.
func (m *Manager) Mount(ctx context.Context, opts MountOptions) error {
	m.mu.Lock()
	switch m.state {
	case Initialized, Unmounted:
		// mountable
	case Mounted:
		m.mu.Unlock()
		return fmt.Errorf("already mounted: %w", errs.ErrInvalidState)
	default:
		m.mu.Unlock()
		return fmt.Errorf("mount from %s: %w", m.state, errs.ErrInvalidState)
	}
	m.mu.Unlock()

	vol, info, err := m.device.Mount(ctx)
	if err != nil && opts.FormatIfFailed && errs.KindOf(err) == errs.KindNotSupported {
		log.Warn().Err(err).Msg("storage: mount failed, formatting and retrying")
		if formatErr := m.device.Format(ctx); formatErr != nil {
			log.Error().Err(formatErr).Msg("storage: format after failed mount")
		} else {
			vol, info, err = m.device.Mount(ctx)
		}
	}
	if err != nil {
		return m.mountFailed(err)
	}

	m.mu.Lock()
	m.state = Mounted
	m.vol = vol
	m.info = info
	mountPoint := m.mountPoint
	device := deviceParams(info)
	m.mu.Unlock()

	log.Info().Msgf("storage: mounted %q (%s) at %s",
		info.VolumeName, info.Serial, mountPoint)
	notifications.CardInserted(m.ns, device)
	notifications.Mounted(m.ns, models.MountedParams{
		MountPoint: mountPoint,
		Device:     device,
	})
	return nil
}

// mountFailed classifies the failure, logs it at a severity matching how
// expected it is, and settles the state machine on Unmounted.
func (m *Manager) mountFailed(err error) error {
	m.mu.Lock()
	m.state = Unmounted
	m.vol = nil
	m.mu.Unlock()

	switch errs.KindOf(err) {
	case errs.KindTimeout:
		// no card in the slot; not an error for the system as a whole
		log.Info().Msg("storage: no card present")
	case errs.KindNotFound:
		log.Warn().Err(err).Msg("storage: card present but unresponsive")
	case errs.KindNotSupported:
		log.Warn().Err(err).Msg("storage: unrecognized card format")
	case errs.KindInvalidState:
		log.Warn().Err(err).Msg("storage: slot busy")
	default:
		log.Error().Err(err).Msg("storage: filesystem error during mount")
		notifications.FilesystemError(m.ns, models.FilesystemErrorParams{
			Op:    "mount",
			Error: err.Error(),
		})
	}
	return err
}

// Unmount detaches the volume.
func (m *Manager) Unmount(ctx context.Context) error {
	m.mu.Lock()
	if m.state != Mounted {
		state := m.state
		m.mu.Unlock()
		return fmt.Errorf("unmount from %s: %w", state, errs.ErrInvalidState)
	}
	m.mu.Unlock()

	if err := m.device.Unmount(ctx); err != nil {
		return fmt.Errorf("unmount device: %w", err)
	}

	m.mu.Lock()
	m.state = Unmounted
	m.vol = nil
	mountPoint := m.mountPoint
	m.mu.Unlock()

	log.Info().Msgf("storage: unmounted %s", mountPoint)
	notifications.Unmounted(m.ns, mountPoint)
	return nil
}

// Format delegates to the driver. The card must not be mounted. Drivers that
// cannot format surface ErrNotSupported unchanged.
func (m *Manager) Format(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case Initialized, Unmounted:
		// formattable
	default:
		state := m.state
		m.mu.Unlock()
		return fmt.Errorf("format from %s: %w", state, errs.ErrInvalidState)
	}
	m.mu.Unlock()

	if err := m.device.Format(ctx); err != nil {
		return fmt.Errorf("format device: %w", err)
	}
	log.Info().Msg("storage: card formatted")
	return nil
}

// Present reports whether a card is currently usable. It only probes the
// driver while mounted; an unmounted slot is never disturbed.
func (m *Manager) Present() bool {
	m.mu.RLock()
	mounted := m.state == Mounted && m.vol != nil
	m.mu.RUnlock()

	if !mounted {
		return false
	}
	return m.device.Present()
}

// Capacity returns the driver's space accounting. Requires Mounted.
func (m *Manager) Capacity(ctx context.Context) (blockdev.Capacity, error) {
	m.mu.RLock()
	if m.state != Mounted {
		state := m.state
		m.mu.RUnlock()
		return blockdev.Capacity{}, fmt.Errorf("capacity from %s: %w", state, errs.ErrInvalidState)
	}
	m.mu.RUnlock()

	capacity, err := m.device.Capacity(ctx)
	if err != nil {
		return blockdev.Capacity{}, fmt.Errorf("device capacity: %w", err)
	}
	return capacity, nil
}

// Stats combines capacity with a full tree walk. Requires Mounted.
func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	capacity, err := m.Capacity(ctx)
	if err != nil {
		return Stats{}, err
	}

	vol, err := m.Filesystem()
	if err != nil {
		return Stats{}, err
	}

	size, err := fsops.New(vol).DirectorySize(ctx, "/")
	if err != nil {
		return Stats{}, fmt.Errorf("walk volume: %w", err)
	}

	return Stats{
		TotalBytes:       capacity.TotalBytes,
		UsedBytes:        capacity.UsedBytes,
		FreeBytes:        capacity.FreeBytes,
		TotalFiles:       size.Files,
		TotalDirectories: size.Directories,
	}, nil
}

// Filesystem returns the live volume handle. Requires Mounted.
func (m *Manager) Filesystem() (afero.Fs, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state != Mounted || m.vol == nil {
		return nil, fmt.Errorf("volume not mounted (%s): %w", m.state, errs.ErrInvalidState)
	}
	return m.vol, nil
}

func (m *Manager) State() DeviceState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Info returns the card description captured at the last successful mount.
// It is stale once the card is unmounted or pulled.
func (m *Manager) Info() blockdev.Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.info
}

func (m *Manager) MountPoint() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mountPoint
}

// HandleCardRemoval transitions Mounted → Unmounted after the monitor
// detects the card is gone. Calling it in any other state is a no-op.
func (m *Manager) HandleCardRemoval() {
	m.mu.Lock()
	if m.state != Mounted {
		m.mu.Unlock()
		return
	}
	m.state = Unmounted
	m.vol = nil
	m.info.Present = false
	mountPoint := m.mountPoint
	m.mu.Unlock()

	log.Warn().Msgf("storage: card removed while mounted at %s", mountPoint)
	notifications.CardRemoved(m.ns, mountPoint)
	notifications.Unmounted(m.ns, mountPoint)
}

func deviceParams(info blockdev.Info) models.DeviceInfoParams {
	return models.DeviceInfoParams{
		CapacityBytes: info.CapacityBytes,
		SectorSize:    info.SectorSize,
		VolumeName:    info.VolumeName,
		Serial:        info.Serial,
	}
}
