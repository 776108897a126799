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

package delegate

import "syscall"

// The facade surfaces exactly one error kind to its caller: a POSIX
// errno. Delegate errors with a POSIX domain pass through unchanged;
// everything else collapses to the operation's default below.
var (
	ErrNotSupported  = syscall.ENOTSUP
	ErrAccessDenied  = syscall.EACCES
	ErrNoEntry       = syscall.ENOENT
	ErrNoSuchDevice  = syscall.ENODEV
	ErrNoAttribute   = syscall.ENOATTR
	ErrIO            = syscall.EIO
	ErrNotPermitted  = syscall.EPERM
	ErrWrongFileType = syscall.EFTYPE
)

// Default returns op's default negative-errno fallback.
func Default(op Operation) error {
	if e, ok := defaults[op]; ok {
		return e
	}
	return ErrNoEntry
}

// Operation names a FUSE-visible operation for the purpose of looking up
// its default error.
type Operation int

const (
	OpStatFS Operation = iota
	OpGetAttr
	OpReadDir
	OpCreate
	OpOpen
	OpTruncate
	OpWrite
	OpRead
	OpReadlink
	OpGetXattr
	OpSetXattr
	OpListXattr
	OpRename
	OpMkdir
	OpUnlink
	OpRmdir
	OpSetAttributes
	OpLink
	OpCreateSymlink
	OpRemoveXattr
)

var defaults = map[Operation]error{
	OpStatFS:        ErrNoEntry,
	OpGetAttr:       ErrNoEntry,
	OpReadDir:       ErrNoEntry,
	OpCreate:        ErrAccessDenied,
	OpOpen:          ErrNoEntry,
	OpTruncate:      ErrNotSupported,
	OpWrite:         ErrIO,
	OpRead:          ErrIO,
	OpReadlink:      ErrNoEntry,
	OpGetXattr:      ErrNoAttribute,
	OpSetXattr:      ErrNotPermitted,
	OpListXattr:     ErrNotSupported,
	OpRename:        ErrAccessDenied,
	OpMkdir:         ErrAccessDenied,
	OpUnlink:        ErrAccessDenied,
	OpRmdir:         ErrAccessDenied,
	OpSetAttributes: ErrNoSuchDevice,
	OpLink:          ErrNotSupported,
	OpCreateSymlink: ErrNotSupported,
}

// Errno extracts the POSIX errno domain code from err, returning 0 and
// false if err is nil or outside the POSIX domain. Used by the request
// translator to implement the "pass through unchanged" vs. "replace with
// default" propagation policy.
func Errno(err error) (syscall.Errno, bool) {
	if err == nil {
		return 0, false
	}
	errno, ok := err.(syscall.Errno)
	if !ok || errno == 0 {
		return 0, false
	}
	return errno, true
}
