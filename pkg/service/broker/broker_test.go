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

package broker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/CardbayProject/cardbay-core/pkg/api/models"
	"github.com/stretchr/testify/assert"
)

func TestSubscribeAssignsIncrementingIDs(t *testing.T) {
	t.Parallel()

	b := NewBroker(context.Background(), make(chan models.Notification))

	ch, id := b.Subscribe(10)
	assert.NotNil(t, ch)
	assert.Equal(t, 0, id)

	ch2, id2 := b.Subscribe(20)
	assert.NotNil(t, ch2)
	assert.Equal(t, 1, id2)
	assert.Len(t, b.subscribers, 2)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	t.Parallel()

	b := NewBroker(context.Background(), make(chan models.Notification))
	ch, id := b.Subscribe(10)

	b.Unsubscribe(id)
	assert.Empty(t, b.subscribers)

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed")

	// unsubscribing the same ID twice is a no-op
	b.Unsubscribe(id)
}

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	t.Parallel()

	source := make(chan models.Notification, 10)
	b := NewBroker(context.Background(), source)
	b.Start()

	sub1, _ := b.Subscribe(10)
	sub2, _ := b.Subscribe(10)
	sub3, _ := b.Subscribe(10)

	notif := models.Notification{
		Method: models.NotificationMounted,
		Params: models.MountedParams{MountPoint: "/mnt/card"},
	}
	source <- notif

	assert.Equal(t, notif.Method, (<-sub1).Method)
	assert.Equal(t, notif.Method, (<-sub2).Method)
	assert.Equal(t, notif.Method, (<-sub3).Method)
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	t.Parallel()

	source := make(chan models.Notification, 100)
	b := NewBroker(context.Background(), source)
	b.Start()

	// tiny buffer that is never drained
	subscriber, _ := b.Subscribe(2)

	for range 10 {
		source <- models.Notification{Method: models.NotificationLowSpace}
	}

	time.Sleep(100 * time.Millisecond)

	received := 0
	timeout := time.After(50 * time.Millisecond)
drainLoop:
	for {
		select {
		case <-subscriber:
			received++
		case <-timeout:
			break drainLoop
		}
	}

	assert.LessOrEqual(t, received, 3, "excess notifications should be dropped")
}

func TestContextCancellationClosesSubscribers(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	b := NewBroker(ctx, make(chan models.Notification, 10))
	b.Start()

	subscriber, _ := b.Subscribe(10)
	cancel()

	select {
	case _, ok := <-subscriber:
		assert.False(t, ok, "subscriber channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("subscriber channel not closed after cancel")
	}
}

func TestSourceClosureClosesSubscribers(t *testing.T) {
	t.Parallel()

	source := make(chan models.Notification, 10)
	b := NewBroker(context.Background(), source)
	b.Start()

	subscriber, _ := b.Subscribe(10)
	close(source)

	select {
	case _, ok := <-subscriber:
		assert.False(t, ok, "subscriber channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("subscriber channel not closed after source close")
	}
}

func TestConcurrentSubscribeUnsubscribe(t *testing.T) {
	t.Parallel()

	source := make(chan models.Notification, 100)
	b := NewBroker(context.Background(), source)
	b.Start()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, id := b.Subscribe(5)
			time.Sleep(10 * time.Millisecond)
			b.Unsubscribe(id)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 20 {
			source <- models.Notification{Method: models.NotificationOperationComplete}
			time.Sleep(5 * time.Millisecond)
		}
	}()

	wg.Wait()
}

func TestSubscriberReceivesInOrder(t *testing.T) {
	t.Parallel()

	source := make(chan models.Notification, 100)
	b := NewBroker(context.Background(), source)
	b.Start()

	subscriber, _ := b.Subscribe(100)

	methods := []string{
		models.NotificationCardInserted,
		models.NotificationMounted,
		models.NotificationOperationComplete,
		models.NotificationCardRemoved,
		models.NotificationUnmounted,
	}
	for _, method := range methods {
		source <- models.Notification{Method: method}
	}

	for i, expected := range methods {
		notif := <-subscriber
		assert.Equal(t, expected, notif.Method, "notification %d out of order", i)
	}
}
