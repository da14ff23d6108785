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
	"sync"
	"testing"

	"github.com/CardbayProject/cardbay-core/pkg/api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopServiceCancelsContext(t *testing.T) {
	t.Parallel()

	st, _ := NewState()
	require.NoError(t, st.Ctx().Err())

	st.StopService()
	assert.Error(t, st.Ctx().Err())
}

func TestNotificationChannelIsBuffered(t *testing.T) {
	t.Parallel()

	st, ch := NewState()

	// sends must not block with no consumer attached
	for range notificationBuffer {
		st.Notifications <- models.Notification{Method: models.NotificationOperationComplete}
	}
	assert.Len(t, ch, notificationBuffer)
}

func TestCountersAccumulate(t *testing.T) {
	t.Parallel()

	st, _ := NewState()
	st.RecordResult(true)
	st.RecordResult(true)
	st.RecordResult(false)

	counters := st.Counters()
	assert.Equal(t, uint64(3), counters.Total)
	assert.Equal(t, uint64(2), counters.Succeeded)
	assert.Equal(t, uint64(1), counters.Failed)
}

func TestCountersConcurrentRecording(t *testing.T) {
	t.Parallel()

	st, _ := NewState()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				st.RecordResult(true)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(1000), st.Counters().Total)
}
