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

// Package events posts the mount controller's lifecycle notifications:
// mount-failed, did-mount, did-unmount. The core has no process-wide
// notification bus of its own; a Sink is configured explicitly at
// filesystem construction instead.
package events

import (
	"sync"

	"github.com/google/uuid"
)

const (
	// TopicMountFailed is posted when the FUSE event loop returns while
	// the controller is still in the "mounting" state.
	TopicMountFailed = "mount-failed"

	// TopicDidMount is posted once the kernel handshake completes.
	TopicDidMount = "did-mount"

	// TopicDidUnmount is posted once the destroy callback fires.
	TopicDidUnmount = "did-unmount"
)

// MountFailedPayload is the payload for TopicMountFailed.
type MountFailedPayload struct {
	MountPath string
	Error     error
	AttemptID uuid.UUID
}

// DidMountPayload is the payload for TopicDidMount.
type DidMountPayload struct {
	MountPath string
	AttemptID uuid.UUID
}

// DidUnmountPayload is the payload for TopicDidUnmount.
type DidUnmountPayload struct {
	MountPath string
	AttemptID uuid.UUID
}

// Sink receives lifecycle events posted by the mount controller.
type Sink interface {
	Post(topic string, payload any)
}

// Subscriber is a callback invoked for every event posted to a Bus.
type Subscriber func(topic string, payload any)

// Bus is a minimal in-process Sink: every posted event is fanned out,
// synchronously and in posting order, to every subscriber registered at
// the time of the call.
type Bus struct {
	mu          sync.Mutex
	subscribers []Subscriber
}

// NewBus returns an empty event Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers sub to receive every future Post call.
func (b *Bus) Subscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, sub)
}

// Post fans out (topic, payload) to every subscriber.
func (b *Bus) Post(topic string, payload any) {
	b.mu.Lock()
	subs := make([]Subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.Unlock()

	for _, sub := range subs {
		sub(topic, payload)
	}
}

// NopSink discards every posted event. Useful as a Controller default
// when the host process has not configured a Sink.
type NopSink struct{}

func (NopSink) Post(string, any) {}
