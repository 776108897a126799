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

package attrs

import (
	"syscall"

	"github.com/fusebridge/macfs/resolve"
	"github.com/fusebridge/macfs/synthetic"
)

// AttributeSource is the subset of the delegate facade the assembler
// needs: an optional per-item attribute override. Defined here, at the
// point of use, so this package need not import the delegate package.
type AttributeSource interface {
	AttributesOfItemAtPath(path string) (Map, bool, error)
}

// ContentSource is the subset of the delegate facade needed for step 7
// (deriving size from contents when nothing else supplied it).
type ContentSource interface {
	ContentsAtPath(path string) ([]byte, bool)
}

// Assemble implements attributesOfItemAtPath: it merges
// defaults, delegate overrides, and synthetic overrides for path p,
// given its pre-computed resolution r.
func Assemble(p string, r resolve.Result, src AttributeSource, synth *synthetic.Provider, contents ContentSource) (Map, error) {
	// Step 1: seed defaults.
	m := NewDefaults(p)

	// Steps 2-3: r.Real is P after apple-double resolution (P'); resolve
	// it one further directory-icon step to reach P''.
	real, wasDirectoryIcon := resolve.ResolveReal(r.Real)

	// Step 4: delegate overrides at P''.
	if src != nil {
		override, implemented, err := src.AttributesOfItemAtPath(real)
		if implemented {
			if err != nil {
				return Map{}, err
			}
			m = m.Merge(override)
		}
	}

	// Step 5: directory-icon (and not apple-double) path.
	if r.Kind == resolve.DirectoryIcon {
		if synth != nil && synth.HasCustomIcon(r.Real) {
			return m.WithFileType(Regular).WithSize(0), nil
		}
		return Map{}, syscall.ENOENT
	}

	// Step 6: apple-double path.
	if r.Kind == resolve.AppleDouble {
		if synth == nil {
			return Map{}, syscall.ENOENT
		}
		opts := synthetic.Options{WasDirectoryIcon: wasDirectoryIcon}
		data, ok := synth.AppleDoubleAt(real, opts)
		if !ok {
			return Map{}, syscall.ENOENT
		}
		return m.WithFileType(Regular).WithSize(uint64(len(data))), nil
	}

	// Step 7: derive size from contents if still unset and not a directory.
	if _, ok := m.EffectiveSize(); !ok && m.FileType != Directory {
		if contents == nil {
			return m, nil
		}
		data, ok := contents.ContentsAtPath(r.Real)
		if !ok {
			return Map{}, syscall.ENOENT
		}
		m = m.WithSize(uint64(len(data)))
	}

	// Step 8.
	return m, nil
}

