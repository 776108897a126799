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

//go:build darwin

package mount

import "golang.org/x/sys/unix"

// Darwin ioctl encoding constants (sys/ioctl.h), used to derive
// FUSEDEVIOCGETHANDSHAKECOMPLETE = _IOR('F', 2, uint32) at init time
// rather than hardcoding the resulting magic number.
const (
	iocOut       = 0x40000000
	iocParamMask = 0x1fff
)

func ior(group byte, num, size uintptr) uintptr {
	return iocOut | ((size & iocParamMask) << 16) | (uintptr(group) << 8) | num
}

// handshakeCompleteIoctl is FUSEDEVIOCGETHANDSHAKECOMPLETE, the request
// code used to poll the macOS FUSE channel file descriptor for mount
// completion.
var handshakeCompleteIoctl = ior('F', 2, 4)

// pollHandshake issues the handshake-complete ioctl against fd. A
// non-zero result means the kernel has finished the mount handshake.
func pollHandshake(fd int) (bool, error) {
	v, err := unix.IoctlGetInt(fd, handshakeCompleteIoctl)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}
