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

// Package service assembles the running daemon: the storage manager, the
// request dispatcher, the hot-swap monitor and the notification plumbing.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/CardbayProject/cardbay-core/pkg/config"
	"github.com/CardbayProject/cardbay-core/pkg/service/broker"
	"github.com/CardbayProject/cardbay-core/pkg/service/publishers"
	"github.com/CardbayProject/cardbay-core/pkg/service/state"
	"github.com/CardbayProject/cardbay-core/pkg/storage"
	"github.com/CardbayProject/cardbay-core/pkg/storage/blockdev"
	"github.com/CardbayProject/cardbay-core/pkg/storage/blockdev/hostdir"
	"github.com/CardbayProject/cardbay-core/pkg/storage/blockdev/memcard"
	"github.com/CardbayProject/cardbay-core/pkg/storage/errs"
	"github.com/rs/zerolog/log"
)

// MakeDevice builds the configured block device driver.
func MakeDevice(cfg *config.Instance) (blockdev.Device, error) {
	switch cfg.StorageDriver() {
	case config.DriverMemCard:
		return memcard.New(memcard.Options{
			VolumeName:    cfg.MemCardVolumeName(),
			CapacityBytes: cfg.MemCardCapacityBytes(),
		}), nil
	case config.DriverHostDir:
		dir := cfg.HostDir()
		if dir == "" {
			return nil, fmt.Errorf("storage.host_dir is not set: %w", errs.ErrInvalidArg)
		}
		return hostdir.New(dir), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q: %w",
			cfg.StorageDriver(), errs.ErrInvalidArg)
	}
}

func startPublishers(cfg *config.Instance, brk *broker.Broker) []*publishers.MQTTPublisher {
	var started []*publishers.MQTTPublisher
	for _, pc := range cfg.GetMQTTPublishers() {
		if pc.Enabled != nil && !*pc.Enabled {
			continue
		}
		if pc.Broker == "" || pc.Topic == "" {
			log.Warn().Msg("service: skipping MQTT publisher with missing broker or topic")
			continue
		}

		sub, id := brk.Subscribe(32)
		pub := publishers.NewMQTTPublisher(pc.Broker, pc.Topic, pc.FilterList())
		if err := pub.Start(sub); err != nil {
			log.Error().Err(err).Msgf("service: MQTT publisher for %s failed to start", pc.Broker)
			brk.Unsubscribe(id)
			continue
		}
		started = append(started, pub)
	}
	return started
}

// watchPresence reacts to driver presence events: auto-mount on insert,
// immediate teardown on removal. The polling monitor covers drivers without
// watch support; for the rest this path is faster.
func watchPresence(
	ctx context.Context,
	events <-chan blockdev.PresenceEvent,
	mgr *storage.Manager,
	disp *Dispatcher,
	autoMount bool,
) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !ev.Present {
				mgr.HandleCardRemoval()
				continue
			}

			log.Info().Msg("service: card inserted")
			if autoMount && mgr.State() != storage.Mounted {
				if _, err := disp.MountAsync(config.DefaultMountTimeout, nil, nil); err != nil {
					log.Warn().Err(err).Msg("service: mount after insert not queued")
				}
			}
		}
	}
}

// Start brings up the full service from configuration. The returned stop
// function shuts everything down and blocks until cleanup finishes; done
// closes once the service has fully stopped, however that came about.
func Start(cfg *config.Instance) (stop func() error, done <-chan struct{}, err error) {
	st, ns := state.NewState()

	device, err := MakeDevice(cfg)
	if err != nil {
		return nil, nil, err
	}

	mgr := storage.NewManager(device, st.Notifications, storage.Options{
		MountPoint: cfg.MountPoint(),
	})
	if err := mgr.Init(); err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}

	brk := broker.NewBroker(st.Ctx(), ns)
	brk.Start()
	pubs := startPublishers(cfg, brk)

	disp := NewDispatcher(mgr, st, DispatcherOptions{
		QueueSize:      cfg.QueueSize(),
		FormatIfFailed: cfg.FormatIfFailed(),
	})
	disp.Start(st.Ctx())

	var wg sync.WaitGroup
	if cfg.MonitorEnabled() {
		mon := storage.NewMonitor(mgr, st.Notifications, storage.MonitorOptions{
			Interval:        cfg.MonitorInterval(),
			LowSpacePercent: cfg.LowSpacePercent(),
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			mon.Run(st.Ctx())
		}()
	}

	if watcher, ok := device.(blockdev.Watcher); ok {
		events, watchErr := watcher.Watch(st.Ctx())
		if watchErr != nil {
			log.Warn().Err(watchErr).Msg("service: presence watch unavailable")
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				watchPresence(st.Ctx(), events, mgr, disp, cfg.AutoMount())
			}()
		}
	}

	if cfg.AutoMount() {
		if _, mountErr := disp.MountAsync(config.DefaultMountTimeout, nil, nil); mountErr != nil {
			log.Warn().Err(mountErr).Msg("service: initial mount not queued")
		}
	}

	doneCh := make(chan struct{})
	go func() {
		<-st.Ctx().Done()
		<-disp.Done()
		wg.Wait()

		for _, pub := range pubs {
			pub.Stop()
		}
		if mgr.State() == storage.Mounted {
			if unmountErr := mgr.Unmount(context.Background()); unmountErr != nil {
				log.Error().Err(unmountErr).Msg("service: unmount on shutdown")
			}
		}

		counters := st.Counters()
		log.Info().Msgf("service: stopped (%d operations, %d failed)",
			counters.Total, counters.Failed)
		close(doneCh)
	}()

	log.Info().Msgf("service: started (driver %s, mount point %s)",
		cfg.StorageDriver(), cfg.MountPoint())

	return func() error {
		st.StopService()
		<-doneCh
		return nil
	}, doneCh, nil
}
