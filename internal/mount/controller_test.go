// Copyright 2015 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mount

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusebridge/macfs/events"
	"github.com/fusebridge/macfs/internal/clock"
)

// recordingSink is a minimal events.Sink that records every posted
// (topic, payload) pair and signals a buffered channel per Post call,
// letting tests wait on a background poller goroutine without a real
// sleep.
type recordingSink struct {
	mu       sync.Mutex
	posted   []string
	payloads []any
	ch       chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{ch: make(chan struct{}, 16)}
}

func (s *recordingSink) Post(topic string, payload any) {
	s.mu.Lock()
	s.posted = append(s.posted, topic)
	s.payloads = append(s.payloads, payload)
	s.mu.Unlock()
	s.ch <- struct{}{}
}

func (s *recordingSink) wait(t *testing.T) {
	t.Helper()
	select {
	case <-s.ch:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for posted event")
	}
}

func TestPollUntilMounted_SucceedsOnFirstPoll(t *testing.T) {
	sc := clock.NewSimulatedClock(time.Unix(0, 0))
	sink := newRecordingSink()
	c := NewController(sc, sink, "/mnt/test")
	c.pollInterval = 0

	c.poller = func(fd int) (bool, error) { return true, nil }
	c.status.set(Mounting)
	attemptID := uuid.New()

	c.pollUntilMounted(7, attemptID)

	assert.Equal(t, Mounted, c.Status())
	require.Len(t, sink.posted, 1)
	assert.Equal(t, events.TopicDidMount, sink.posted[0])

	payload, ok := sink.payloads[0].(events.DidMountPayload)
	require.True(t, ok)
	assert.Equal(t, "/mnt/test", payload.MountPath)
	assert.Equal(t, attemptID, payload.AttemptID)
}

func TestPollUntilMounted_GivesUpAfterMaxPolls(t *testing.T) {
	sc := clock.NewSimulatedClock(time.Unix(0, 0))
	sink := newRecordingSink()
	c := NewController(sc, sink, "/mnt/test")
	c.pollInterval = 0
	c.maxPolls = 5

	var calls int
	c.poller = func(fd int) (bool, error) { calls++; return false, nil }
	c.status.set(Initializing)

	c.pollUntilMounted(7, uuid.New())

	assert.Equal(t, 5, calls)
	assert.Equal(t, Initializing, c.Status())
	assert.Empty(t, sink.posted)
}

func TestHandleInit_TransitionsAndStartsPoller(t *testing.T) {
	sc := clock.NewSimulatedClock(time.Unix(0, 0))
	sink := newRecordingSink()
	c := NewController(sc, sink, "/mnt/test")
	c.pollInterval = 0
	c.poller = func(fd int) (bool, error) { return true, nil }

	c.status.set(Mounting)
	c.mu.Lock()
	c.attemptID = uuid.New()
	c.deviceFD = 9
	c.mu.Unlock()

	c.HandleInit()
	assert.Equal(t, Initializing, c.Status())

	sink.wait(t)
	assert.Equal(t, Mounted, c.Status())
	assert.Equal(t, []string{events.TopicDidMount}, sink.posted)
}

func TestHandleDestroy_TransitionsAndPostsDidUnmount(t *testing.T) {
	sink := newRecordingSink()
	c := NewController(nil, sink, "/mnt/test")

	c.status.set(Mounted)
	c.mu.Lock()
	c.attemptID = uuid.New()
	c.mu.Unlock()

	c.HandleDestroy()

	assert.Equal(t, Unmounting, c.Status())
	require.Len(t, sink.posted, 1)
	assert.Equal(t, events.TopicDidUnmount, sink.posted[0])

	payload, ok := sink.payloads[0].(events.DidUnmountPayload)
	require.True(t, ok)
	assert.Equal(t, "/mnt/test", payload.MountPath)
}

func TestUnmount_RequiresMountedStatus(t *testing.T) {
	c := NewController(nil, nil, "/mnt/test")

	err := c.Unmount()

	assert.Error(t, err)
}

func TestNewController_DefaultsClockAndSink(t *testing.T) {
	c := NewController(nil, nil, "/mnt/test")

	assert.NotNil(t, c.clock)
	assert.NotNil(t, c.sink)
	assert.Equal(t, NotMounted, c.Status())
}
