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
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/google/uuid"
	"github.com/jacobsa/fuse"
	"github.com/jacobsa/syncutil"

	"github.com/fusebridge/macfs/events"
	"github.com/fusebridge/macfs/internal/clock"
)

// MountConfig carries the per-attempt settings the controller needs to
// build the mount argv and drive the handshake poll. It does not carry
// the fuse.Server itself; that is supplied directly to Mount so callers
// stay free to build it with fs.NewServer however they like.
type MountConfig struct {
	// ExecutablePath is argv[0] for the constructed mount argv.
	// Informational: jacobsa/fuse does not itself re-exec, but the
	// controller still builds and can log the argv a libfuse-style
	// invocation would have used.
	ExecutablePath string

	// SingleThreaded adds "-s" to the constructed argv (see Argv). Mount
	// does not pass it on to fuse.MountConfig, so it does not change how
	// the event loop dispatches requests.
	SingleThreaded bool

	// Foreground adds "-f" to the constructed argv.
	Foreground bool

	// Options are opaque "-o" strings, passed through verbatim; empty
	// entries are skipped.
	Options []string

	// DeviceFD is the open FUSE channel file descriptor the handshake
	// poller ioctls against. Left zero in environments (or tests) where
	// no real kernel handshake is available; HandleInit then starts a
	// poller that will simply error out rather than ever reporting
	// mounted.
	DeviceFD int
}

// Controller drives one mount's state machine. It owns no
// filesystem logic of its own: HandleInit/HandleDestroy are meant to be
// wired as a fs.ServerConfig's OnInit/OnDestroy hooks, and Mount/Unmount
// drive the FUSE event loop and the out-of-band umount call.
type Controller struct {
	mu     syncutil.InvariantMutex
	status statusBox

	clock clock.Clock
	sink  events.Sink

	mountPath string

	pollInterval time.Duration
	maxPolls     int
	poller       func(fd int) (bool, error)

	// GUARDED_BY(mu)
	attemptID uuid.UUID
	// GUARDED_BY(mu)
	deviceFD int
}

// NewController returns a Controller for mountPath. A nil clk defaults
// to clock.RealClock{}; a nil sink defaults to events.NopSink{}.
func NewController(clk clock.Clock, sink events.Sink, mountPath string) *Controller {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if sink == nil {
		sink = events.NopSink{}
	}

	c := &Controller{
		clock:        clk,
		sink:         sink,
		mountPath:    mountPath,
		pollInterval: 100 * time.Millisecond,
		maxPolls:     50,
		poller:       pollHandshake,
	}
	c.mu = syncutil.NewInvariantMutex(c.checkInvariants)
	return c
}

func (c *Controller) checkInvariants() {
	// No cross-field invariant beyond what the Go type system already
	// enforces; the mutex exists to serialize attemptID/deviceFD
	// read-modify-write pairs across the three driving goroutines (the
	// mount thread, the init/destroy callbacks, and the handshake poller).
}

// Status returns the controller's current lifecycle state.
func (c *Controller) Status() Status {
	return c.status.get()
}

// Argv returns the argv this mount attempt would use: executable path,
// optional "-s", optional "-f", one "-o<opt>" per option, then the
// mount path.
func (c *Controller) Argv(cfg MountConfig) []string {
	return BuildArgv(cfg.ExecutablePath, cfg.SingleThreaded, cfg.Foreground, cfg.Options, c.mountPath)
}

// Mount transitions NotMounted -> Mounting, invokes the blocking FUSE
// event loop against server, and blocks until the event loop returns.
// Returns the event loop's error, if any. The kernel's init/destroy
// callbacks (wired via HandleInit/HandleDestroy) drive the remaining
// transitions while Mount is blocked inside mfs.Join.
func (c *Controller) Mount(ctx context.Context, server fuse.Server, cfg MountConfig) error {
	if got := c.status.get(); got != NotMounted {
		return fmt.Errorf("mount: controller busy (status=%s)", got)
	}

	c.mu.Lock()
	c.attemptID = uuid.New()
	c.deviceFD = cfg.DeviceFD
	attemptID := c.attemptID
	c.mu.Unlock()

	c.status.set(Mounting)

	mountCfg := &fuse.MountConfig{
		Options: optionsMap(cfg.Options),
	}

	mfs, err := fuse.Mount(c.mountPath, server, mountCfg)
	if err != nil {
		c.status.set(Failure)
		c.sink.Post(events.TopicMountFailed, events.MountFailedPayload{
			MountPath: c.mountPath,
			Error:     err,
			AttemptID: attemptID,
		})
		return err
	}

	joinErr := mfs.Join(ctx)

	if c.status.get() == Mounting {
		c.status.set(Failure)
		c.sink.Post(events.TopicMountFailed, events.MountFailedPayload{
			MountPath: c.mountPath,
			Error:     joinErr,
			AttemptID: attemptID,
		})
		return joinErr
	}

	c.status.set(NotMounted)
	return joinErr
}

// HandleInit is wired as the request translator's OnInit hook. It moves
// the controller to Initializing and starts the background handshake
// poller.
func (c *Controller) HandleInit() {
	c.status.set(Initializing)

	c.mu.Lock()
	fd := c.deviceFD
	attemptID := c.attemptID
	c.mu.Unlock()

	go c.pollUntilMounted(fd, attemptID)
}

// HandleDestroy is wired as the request translator's OnDestroy hook. By
// the time it runs, the delegate's willUnmount hook has already fired
// (fs.fileSystem.Destroy calls it first); HandleDestroy then makes the
// status transition and posts did-unmount.
func (c *Controller) HandleDestroy() {
	c.status.set(Unmounting)

	c.mu.Lock()
	attemptID := c.attemptID
	c.mu.Unlock()

	c.sink.Post(events.TopicDidUnmount, events.DidUnmountPayload{
		MountPath: c.mountPath,
		AttemptID: attemptID,
	})
}

// pollUntilMounted polls fd up to maxPolls times at pollInterval,
// transitioning to Mounted and posting did-mount on first success.
func (c *Controller) pollUntilMounted(fd int, attemptID uuid.UUID) {
	for i := 0; i < c.maxPolls; i++ {
		done, err := c.poller(fd)
		if err == nil && done {
			c.status.set(Mounted)
			c.sink.Post(events.TopicDidMount, events.DidMountPayload{
				MountPath: c.mountPath,
				AttemptID: attemptID,
			})
			return
		}
		<-c.clock.After(c.pollInterval)
	}
}

// Unmount invokes the platform umount utility on the mount path. Only
// valid while Mounted; the resulting destroy callback (observed via
// HandleDestroy) completes the transition back to NotMounted once the
// blocked Mount call's event loop returns.
func (c *Controller) Unmount() error {
	if got := c.status.get(); got != Mounted {
		return fmt.Errorf("mount: cannot unmount from status %s", got)
	}
	return exec.Command("umount", c.mountPath).Run()
}

// optionsMap expands a slice of "-o"-style opaque option strings into
// the map[string]string form fuse.MountConfig.Options expects.
func optionsMap(options []string) map[string]string {
	m := make(map[string]string, len(options))
	for _, opt := range options {
		if opt == "" {
			continue
		}
		ParseOptions(m, opt)
	}
	return m
}
