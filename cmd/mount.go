// Copyright 2024 Google Inc. All Rights Reserved.
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

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacobsa/daemonize"
	"github.com/kardianos/osext"
	"golang.org/x/net/context"

	"github.com/fusebridge/macfs/events"
	"github.com/fusebridge/macfs/examples/localdelegate"
	"github.com/fusebridge/macfs/fs"
	"github.com/fusebridge/macfs/internal/clock"
	"github.com/fusebridge/macfs/internal/logger"
	"github.com/fusebridge/macfs/internal/mount"
)

// envInBackgroundMode distinguishes the daemonized child process from
// the parent CLI invocation that spawned it.
const envInBackgroundMode = "MACFS_IN_BACKGROUND_MODE"

// runMount builds the delegate, the request translator, and the mount
// controller, then blocks inside the FUSE event loop until it returns
// (normally via an out-of-band umount, or a mount failure).
//
// Unless --foreground was passed, the first invocation re-execs itself
// detached via daemonize.Run and returns as soon as the child signals
// its mount outcome; the child itself takes the branch below with
// envInBackgroundMode set and blocks for real.
func runMount(mountPoint string) error {
	inBackground := os.Getenv(envInBackgroundMode) == "true"

	if !flags.foreground && !inBackground {
		return daemonizeMount(mountPoint)
	}

	if err := logger.Configure(logger.Config{
		FilePath: flags.logFile,
		Format:   flags.logFormat,
		Severity: flags.logSeverity,
	}); err != nil {
		return fmt.Errorf("configuring logger: %w", err)
	}

	executablePath, err := osext.Executable()
	if err != nil {
		return fmt.Errorf("osext.Executable: %w", err)
	}

	clk := clock.RealClock{}
	bus := events.NewBus()
	bus.Subscribe(logEvent)
	if inBackground {
		bus.Subscribe(signalDaemonizeOutcome)
	}

	ctrl := mount.NewController(clk, bus, mountPoint)

	delegate := localdelegate.New(flags.source)

	serverCfg := &fs.ServerConfig{
		Clock:           clk,
		Delegate:        delegate,
		Uid:             uint32(os.Getuid()),
		Gid:             uint32(os.Getgid()),
		ListDoubleFiles: mount.DefaultListDoubleFiles(),
		OnInit:          ctrl.HandleInit,
		OnDestroy:       ctrl.HandleDestroy,
	}

	logger.Infof("creating request translator for %q", flags.source)
	server, err := fs.NewServer(serverCfg)
	if err != nil {
		return fmt.Errorf("fs.NewServer: %w", err)
	}

	go unmountOnSignal(ctrl)

	logger.Infof("mounting %q at %q", flags.source, mountPoint)
	mountCfg := mount.MountConfig{
		ExecutablePath: executablePath,
		SingleThreaded: flags.singleThreaded,
		Foreground:     flags.foreground,
		Options:        flags.fuseOptions,
	}

	if err := ctrl.Mount(context.Background(), server, mountCfg); err != nil {
		return fmt.Errorf("mount: %w", err)
	}

	return nil
}

// daemonizeMount re-execs the current executable with --foreground
// forced on and envInBackgroundMode set, then blocks until the child
// signals the outcome of its mount attempt (not until the child's FUSE
// loop eventually exits).
func daemonizeMount(mountPoint string) error {
	executablePath, err := osext.Executable()
	if err != nil {
		return fmt.Errorf("osext.Executable: %w", err)
	}

	args := append([]string{"--foreground"}, os.Args[1:]...)
	env := append(os.Environ(), fmt.Sprintf("%s=true", envInBackgroundMode))

	if err := daemonize.Run(executablePath, args, env, os.Stdout); err != nil {
		return fmt.Errorf("daemonize.Run: %w", err)
	}

	fmt.Fprintf(os.Stdout, "successfully mounted %q at %q\n", flags.source, mountPoint)
	return nil
}

// signalDaemonizeOutcome reports the mount attempt's outcome back to the
// parent process through daemonize's signal pipe, exactly once: on
// did-mount it signals success, on mount-failed it forwards the error.
func signalDaemonizeOutcome(topic string, payload any) {
	var outcome error
	switch p := payload.(type) {
	case events.DidMountPayload:
		outcome = nil
	case events.MountFailedPayload:
		outcome = p.Error
	default:
		return
	}

	if err := daemonize.SignalOutcome(outcome); err != nil {
		logger.Errorf("daemonize.SignalOutcome: %v", err)
	}
}

// unmountOnSignal asks the controller to unmount the moment the process
// receives an interrupt, instead of leaving the mount point behind when
// the user hits Ctrl-C.
func unmountOnSignal(ctrl *mount.Controller) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	if err := ctrl.Unmount(); err != nil {
		logger.Warnf("unmount on signal: %v", err)
	}
}

func logEvent(topic string, payload any) {
	switch p := payload.(type) {
	case events.MountFailedPayload:
		logger.Errorf("%s: %s: %v", topic, p.MountPath, p.Error)
	case events.DidMountPayload:
		logger.Infof("%s: %s", topic, p.MountPath)
	case events.DidUnmountPayload:
		logger.Infof("%s: %s", topic, p.MountPath)
	default:
		logger.Infof("%s", topic)
	}
}
