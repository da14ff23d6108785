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

// Package mocks provides testify mocks for the storage core's interfaces.
package mocks

import (
	"context"
	"fmt"

	"github.com/CardbayProject/cardbay-core/pkg/storage/blockdev"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/mock"
)

// MockDevice is a mock implementation of blockdev.Device using testify/mock.
type MockDevice struct {
	mock.Mock
}

// NewMockDevice creates a MockDevice with happy-path defaults: open/close
// succeed, a card is present and mounts to a fresh MemMapFs. Tests override
// individual expectations as needed.
func NewMockDevice() *MockDevice {
	m := &MockDevice{}
	setDefaults(m)
	return m
}

func setDefaults(m *MockDevice) {
	m.On("Metadata").Return(blockdev.DriverMetadata{
		ID:          "mock",
		Description: "Mock device",
	}).Maybe()
	m.On("Open").Return(nil).Maybe()
	m.On("Close").Return(nil).Maybe()
	m.On("Present").Return(true).Maybe()
	m.On("Mount", mock.Anything).Return(afero.NewMemMapFs(), blockdev.Info{
		VolumeName:    "MOCKCARD",
		Serial:        "mock-0001",
		CapacityBytes: 1 << 20,
		SectorSize:    512,
		Present:       true,
	}, nil).Maybe()
	m.On("Unmount", mock.Anything).Return(nil).Maybe()
	m.On("Format", mock.Anything).Return(nil).Maybe()
	m.On("Capacity", mock.Anything).Return(blockdev.Capacity{
		TotalBytes: 1 << 20,
		FreeBytes:  1 << 20,
	}, nil).Maybe()
}

func (m *MockDevice) Metadata() blockdev.DriverMetadata {
	args := m.Called()
	if metadata, ok := args.Get(0).(blockdev.DriverMetadata); ok {
		return metadata
	}
	return blockdev.DriverMetadata{}
}

func (m *MockDevice) Open() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock open failed: %w", err)
	}
	return nil
}

func (m *MockDevice) Close() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock close failed: %w", err)
	}
	return nil
}

func (m *MockDevice) Present() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockDevice) Mount(ctx context.Context) (afero.Fs, blockdev.Info, error) {
	args := m.Called(ctx)
	var vol afero.Fs
	if fs, ok := args.Get(0).(afero.Fs); ok {
		vol = fs
	}
	var info blockdev.Info
	if i, ok := args.Get(1).(blockdev.Info); ok {
		info = i
	}
	//nolint:wrapcheck // tests assert on configured sentinel errors directly
	return vol, info, args.Error(2)
}

func (m *MockDevice) Unmount(ctx context.Context) error {
	args := m.Called(ctx)
	//nolint:wrapcheck // tests assert on configured sentinel errors directly
	return args.Error(0)
}

func (m *MockDevice) Format(ctx context.Context) error {
	args := m.Called(ctx)
	//nolint:wrapcheck // tests assert on configured sentinel errors directly
	return args.Error(0)
}

func (m *MockDevice) Capacity(ctx context.Context) (blockdev.Capacity, error) {
	args := m.Called(ctx)
	var capacity blockdev.Capacity
	if c, ok := args.Get(0).(blockdev.Capacity); ok {
		capacity = c
	}
	//nolint:wrapcheck // tests assert on configured sentinel errors directly
	return capacity, args.Error(1)
}

// MockWatcherDevice is a MockDevice that also implements blockdev.Watcher,
// feeding presence events from a channel the test controls.
type MockWatcherDevice struct {
	MockDevice
	Events chan blockdev.PresenceEvent
}

func NewMockWatcherDevice() *MockWatcherDevice {
	m := &MockWatcherDevice{
		Events: make(chan blockdev.PresenceEvent, 8),
	}
	setDefaults(&m.MockDevice)
	return m
}

func (m *MockWatcherDevice) Watch(_ context.Context) (<-chan blockdev.PresenceEvent, error) {
	return m.Events, nil
}
