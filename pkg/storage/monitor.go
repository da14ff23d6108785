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

package storage

import (
	"context"
	"time"

	"github.com/CardbayProject/cardbay-core/pkg/api/models"
	"github.com/CardbayProject/cardbay-core/pkg/api/notifications"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	defaultMonitorInterval = 2 * time.Second
	defaultLowSpacePercent = 10
	// lowSpaceWindow spaces out repeated low-space warnings while the
	// condition persists.
	lowSpaceWindow = 10 * time.Minute
)

// MonitorOptions configure the hot-swap monitor.
type MonitorOptions struct {
	Clock           clockwork.Clock
	Interval        time.Duration
	LowSpacePercent int
}

// Monitor periodically checks that a mounted card is still present and that
// it has free space left. It only ever reads device state; the one
// transition it triggers is the removal path on the Manager. It never
// initiates a mount.
type Monitor struct {
	mgr      *Manager
	ns       chan<- models.Notification
	clock    clockwork.Clock
	limiter  *rate.Limiter
	interval time.Duration
	lowPct   int
}

func NewMonitor(mgr *Manager, ns chan<- models.Notification, opts MonitorOptions) *Monitor {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultMonitorInterval
	}
	lowPct := opts.LowSpacePercent
	if lowPct <= 0 {
		lowPct = defaultLowSpacePercent
	}
	return &Monitor{
		mgr:      mgr,
		ns:       ns,
		clock:    clock,
		interval: interval,
		lowPct:   lowPct,
		limiter:  rate.NewLimiter(rate.Every(lowSpaceWindow), 1),
	}
}

// Run blocks until ctx ends, ticking at the configured interval.
func (m *Monitor) Run(ctx context.Context) {
	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	log.Debug().Msgf("monitor: started, interval %s", m.interval)
	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("monitor: stopped")
			return
		case <-ticker.Chan():
			m.tick(ctx)
		}
	}
}

func (m *Monitor) tick(ctx context.Context) {
	if m.mgr.State() != Mounted {
		return
	}

	if !m.mgr.Present() {
		m.mgr.HandleCardRemoval()
		return
	}

	capacity, err := m.mgr.Capacity(ctx)
	if err != nil {
		// racing an unmount between the state check and the query is fine
		log.Debug().Err(err).Msg("monitor: capacity check skipped")
		return
	}
	if capacity.TotalBytes == 0 {
		return
	}

	percentFree := float64(capacity.FreeBytes) / float64(capacity.TotalBytes) * 100
	if percentFree >= float64(m.lowPct) {
		return
	}
	if !m.limiter.AllowN(m.clock.Now(), 1) {
		return
	}

	log.Warn().Msgf("monitor: low space, %.1f%% free", percentFree)
	notifications.LowSpace(m.ns, models.LowSpaceParams{
		TotalBytes:  capacity.TotalBytes,
		FreeBytes:   capacity.FreeBytes,
		PercentFree: percentFree,
	})
}
