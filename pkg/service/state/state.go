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

package state

import (
	"context"

	"github.com/CardbayProject/cardbay-core/pkg/api/models"
	"github.com/CardbayProject/cardbay-core/pkg/helpers/syncutil"
)

// notificationBuffer gives lifecycle events headroom during bursts (a bulk
// copy completing while the monitor warns about space) without ever letting
// a producer block on a slow consumer.
const notificationBuffer = 128

// Counters are running totals of dispatcher operations.
type Counters struct {
	Total     uint64
	Succeeded uint64
	Failed    uint64
}

// State holds the runtime state shared by the service's goroutines.
//
// LOCKING RULES: mu protects the counters. Never send to the Notifications
// channel while holding the lock; pattern is lock → modify → copy → unlock →
// send.
type State struct {
	ctx           context.Context
	ctxCancelFunc context.CancelFunc
	Notifications chan<- models.Notification
	counters      Counters
	mu            syncutil.RWMutex
}

// NewState builds the shared state and the notification channel the broker
// reads from.
func NewState() (st *State, notificationCh <-chan models.Notification) {
	ns := make(chan models.Notification, notificationBuffer)
	ctx, cancel := context.WithCancel(context.Background())
	return &State{
		ctx:           ctx,
		ctxCancelFunc: cancel,
		Notifications: ns,
	}, ns
}

// Ctx is the service-lifetime context; it ends when StopService is called.
func (s *State) Ctx() context.Context {
	return s.ctx
}

// StopService begins shutdown of everything watching the state context.
func (s *State) StopService() {
	s.ctxCancelFunc()
}

// RecordResult increments the operation totals.
func (s *State) RecordResult(succeeded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.Total++
	if succeeded {
		s.counters.Succeeded++
	} else {
		s.counters.Failed++
	}
}

func (s *State) Counters() Counters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters
}
