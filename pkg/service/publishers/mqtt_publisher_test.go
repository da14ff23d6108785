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

package publishers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/CardbayProject/cardbay-core/pkg/api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMQTTPublisher(t *testing.T) {
	t.Parallel()

	publisher := NewMQTTPublisher("tcp://localhost:1883", "cardbay/events",
		[]string{"storage.mounted"})

	assert.NotNil(t, publisher)
	assert.Equal(t, "tcp://localhost:1883", publisher.broker)
	assert.Equal(t, "cardbay/events", publisher.topic)
	assert.Equal(t, []string{"storage.mounted"}, publisher.filter)
	assert.NotNil(t, publisher.stopCh)
}

func TestMatchesFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		filter []string
		want   bool
	}{
		{
			name:   "empty filter matches all",
			filter: []string{},
			method: models.NotificationMounted,
			want:   true,
		},
		{
			name:   "nil filter matches all",
			filter: nil,
			method: models.NotificationCardInserted,
			want:   true,
		},
		{
			name:   "method in filter",
			filter: []string{"storage.mounted", "storage.unmounted"},
			method: "storage.mounted",
			want:   true,
		},
		{
			name:   "method not in filter",
			filter: []string{"storage.mounted", "storage.unmounted"},
			method: "card.inserted",
			want:   false,
		},
		{
			name:   "group wildcard matches member",
			filter: []string{"storage.*"},
			method: "storage.lowSpace",
			want:   true,
		},
		{
			name:   "group wildcard rejects other group",
			filter: []string{"storage.*"},
			method: "card.removed",
			want:   false,
		},
		{
			name:   "wildcard needs the group separator",
			filter: []string{"storage.*"},
			method: "storage",
			want:   false,
		},
		{
			name:   "mixed exact and wildcard",
			filter: []string{"storage.*", "card.inserted"},
			method: "card.inserted",
			want:   true,
		},
		{
			name:   "case sensitive",
			filter: []string{"storage.mounted"},
			method: "Storage.Mounted",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			publisher := &MQTTPublisher{filter: tt.filter}
			assert.Equal(t, tt.want, publisher.matchesFilter(tt.method))
		})
	}
}

func TestStop(t *testing.T) {
	t.Parallel()

	publisher := NewMQTTPublisher("tcp://localhost:1883", "test", nil)
	publisher.Stop()

	_, ok := <-publisher.stopCh
	assert.False(t, ok, "stopCh should be closed after Stop()")
}

func TestPublishesEnvelope(t *testing.T) {
	t.Parallel()

	mockClient := newMockMQTTClient()
	mockClient.connected = true
	publisher := NewMQTTPublisher("tcp://localhost:1883", "cardbay/events", nil)
	publisher.client = mockClient

	notifChan := make(chan models.Notification, 10)
	go publisher.publishNotifications(notifChan)

	notifChan <- models.Notification{
		Method: models.NotificationMounted,
		Params: models.MountedParams{MountPoint: "/mnt/card"},
	}

	assert.Eventually(t, func() bool {
		return mockClient.getPublishedCount() == 1
	}, time.Second, 5*time.Millisecond)

	msg, ok := mockClient.lastPublished()
	require.True(t, ok)
	assert.Equal(t, "cardbay/events", msg.topic)

	payload, ok := msg.payload.([]byte)
	require.True(t, ok)
	var env envelope
	require.NoError(t, json.Unmarshal(payload, &env))
	assert.Equal(t, models.NotificationMounted, env.Method)

	publisher.Stop()
}

func TestPublishNotificationsFilteredOut(t *testing.T) {
	t.Parallel()

	mockClient := newMockMQTTClient()
	mockClient.connected = true
	publisher := NewMQTTPublisher("tcp://localhost:1883", "cardbay/events",
		[]string{"card.*"})
	publisher.client = mockClient

	notifChan := make(chan models.Notification, 10)
	go publisher.publishNotifications(notifChan)

	// filtered out
	notifChan <- models.Notification{Method: models.NotificationMounted}
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, mockClient.getPublishedCount())

	// matches the card.* group
	notifChan <- models.Notification{Method: models.NotificationCardRemoved}
	assert.Eventually(t, func() bool {
		return mockClient.getPublishedCount() == 1
	}, time.Second, 5*time.Millisecond)

	publisher.Stop()
}

func TestPublishNotificationsPublishError(t *testing.T) {
	t.Parallel()

	mockClient := newMockMQTTClient()
	mockClient.connected = true
	mockClient.publishError = assert.AnError

	publisher := NewMQTTPublisher("tcp://localhost:1883", "cardbay/events", nil)
	publisher.client = mockClient

	notifChan := make(chan models.Notification, 10)
	go publisher.publishNotifications(notifChan)

	// a failing publish must not kill the forwarding loop
	notifChan <- models.Notification{Method: models.NotificationUnmounted}
	time.Sleep(50 * time.Millisecond)

	publisher.Stop()
}

func TestPublishNotificationsChannelClosed(t *testing.T) {
	t.Parallel()

	mockClient := newMockMQTTClient()
	mockClient.connected = true

	publisher := NewMQTTPublisher("tcp://localhost:1883", "cardbay/events", nil)
	publisher.client = mockClient

	notifChan := make(chan models.Notification, 10)
	done := make(chan struct{})
	go func() {
		publisher.publishNotifications(notifChan)
		close(done)
	}()

	close(notifChan)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher did not exit on channel close")
	}
}

func TestStopWithConnectedClient(t *testing.T) {
	t.Parallel()

	mockClient := newMockMQTTClient()
	mockClient.connected = true

	publisher := NewMQTTPublisher("tcp://localhost:1883", "test", nil)
	publisher.client = mockClient

	publisher.Stop()

	assert.Equal(t, 1, mockClient.disconnectCall)
	assert.False(t, mockClient.IsConnected())
}
