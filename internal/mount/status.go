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

// Package mount drives a single mount's lifecycle: constructing the
// mount argv, invoking the blocking FUSE event loop, tracking status
// through the not-mounted/mounting/initializing/mounted/unmounting/
// failure state machine, polling the kernel handshake, and posting
// lifecycle events, generalized away from GCS-bucket mounting to an
// arbitrary delegate.
package mount

import "sync/atomic"

// Status is the mount controller's lifecycle state.
type Status int32

const (
	// NotMounted is the initial and final state: no mount is active.
	NotMounted Status = iota

	// Mounting covers the window between invoking the FUSE event loop
	// and the kernel's init callback firing.
	Mounting

	// Initializing covers the window between the init callback and the
	// handshake poller's first success.
	Initializing

	// Mounted means the handshake completed; the filesystem is live.
	Mounted

	// Unmounting covers the window between the destroy callback and the
	// event loop returning.
	Unmounting

	// Failure means the event loop returned while still Mounting.
	Failure
)

func (s Status) String() string {
	switch s {
	case NotMounted:
		return "not-mounted"
	case Mounting:
		return "mounting"
	case Initializing:
		return "initializing"
	case Mounted:
		return "mounted"
	case Unmounting:
		return "unmounting"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// statusBox is an atomically-guarded Status, written from the mount
// goroutine, the FUSE init/destroy callbacks, and the handshake
// poller, per the concurrency model's "three sources" note.
type statusBox struct {
	v atomic.Int32
}

func (b *statusBox) get() Status {
	return Status(b.v.Load())
}

func (b *statusBox) set(s Status) {
	b.v.Store(int32(s))
}
