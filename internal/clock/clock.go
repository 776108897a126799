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

// Package clock supplies the current time to the rest of the module
// through a small interface, so the request translator's
// modification-date/creation-date timestamps and the mount controller's
// handshake poller can be driven by a deterministic fake in tests instead
// of the wall clock.
package clock

import "time"

// Clock knows the current time and can produce a channel that fires
// after some duration — the same two primitives jacobsa/timeutil.Clock
// offers, reimplemented in this module so tests can swap in a
// SimulatedClock without taking on that package's dependency.
type Clock interface {
	// Now returns the current time per the clock.
	Now() time.Time

	// After returns a channel that receives the time once d has passed.
	After(d time.Duration) <-chan time.Time
}
