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

package mount

import (
	"os"
	"strconv"
)

// fuseMajorVersionEnv lets a host declare the installed FUSE library's
// major version when it can't be introspected from Go (there is no
// portable API for reading a macFUSE bundle's version short of parsing
// its Info.plist, which this module does not carry a dependency for).
const fuseMajorVersionEnv = "MACFS_FUSE_MAJOR_VERSION"

// DefaultListDoubleFiles decides spec §6's "list double files"
// compatibility toggle: enabled when the host's installed FUSE major
// version is below 9, the legacy osxfuse generation that relied on
// synthetic "._name" directory entries instead of the FinderInfo/
// ResourceFork xattrs modern macFUSE exposes directly. Absent a
// reported version, it defaults to false (modern behavior).
func DefaultListDoubleFiles() bool {
	major, ok := fuseMajorVersion()
	if !ok {
		return false
	}
	return major < 9
}

func fuseMajorVersion() (int, bool) {
	v := os.Getenv(fuseMajorVersionEnv)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
