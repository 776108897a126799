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

import "strings"

// ParseOptions parses a comma-separated mount -o argument (e.g.
// "rw,noatime,volname=Stuff") into m, splitting each comma-separated
// entry on the first "=". An entry with no "=" is stored with an empty
// value. Later entries for the same key overwrite earlier ones.
func ParseOptions(m map[string]string, s string) {
	for _, entry := range strings.Split(s, ",") {
		if entry == "" {
			continue
		}

		key := entry
		value := ""
		if i := strings.IndexByte(entry, '='); i >= 0 {
			key = entry[:i]
			value = entry[i+1:]
		}

		m[key] = value
	}
}

// BuildArgv constructs the mount argv per spec: executable path,
// optional "-s" (forced when the delegate is not declared thread-safe),
// optional "-f" (foreground), one "-o<opt>" per non-empty user-supplied
// option, then the mount path. jacobsa/fuse does not itself accept an
// argv — it takes a *fuse.MountConfig — but constructs an equivalent
// argv internally when invoking the kernel extension; BuildArgv exists
// so the controller can log and test that construction directly.
func BuildArgv(executablePath string, singleThreaded, foreground bool, options []string, mountPath string) []string {
	argv := []string{executablePath}

	if singleThreaded {
		argv = append(argv, "-s")
	}
	if foreground {
		argv = append(argv, "-f")
	}

	for _, opt := range options {
		if opt == "" {
			continue
		}
		argv = append(argv, "-o"+opt)
	}

	argv = append(argv, mountPath)
	return argv
}
