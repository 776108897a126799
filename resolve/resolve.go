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

// Package resolve classifies a kernel-visible path as an ordinary entry
// or one of the two synthetic macOS-compatibility entries (a directory
// icon slot, or an AppleDouble sidecar) and computes the real underlying
// path the delegate should be asked about.
package resolve

import "strings"

// Kind is the classification of a path.
type Kind int

const (
	// Ordinary is a path that is not synthetic.
	Ordinary Kind = iota

	// DirectoryIcon is the "Icon\r" entry inside a directory.
	DirectoryIcon

	// AppleDouble is a "._name" sidecar entry.
	AppleDouble
)

func (k Kind) String() string {
	switch k {
	case Ordinary:
		return "ordinary"
	case DirectoryIcon:
		return "directory-icon"
	case AppleDouble:
		return "apple-double"
	default:
		return "unknown"
	}
}

// directoryIconName is the last path component used for a directory's
// synthetic icon slot.
const directoryIconName = "Icon\r"

// appleDoublePrefix marks an AppleDouble sidecar's last component.
const appleDoublePrefix = "._"

// Result is the outcome of resolving a path.
type Result struct {
	// Kind is the path's classification.
	Kind Kind

	// Real is the path the delegate should be asked about. For an
	// ordinary path this is the input path unchanged.
	Real string
}

// Resolve classifies p and computes its real path. Classification is
// applied at most once per level, apple-double before directory-icon: a
// path like "/a/._Icon\r" classifies as AppleDouble with real path
// "/a/Icon\r" (which is itself a directory-icon path, left for a caller
// to resolve again if it needs the fully-real path).
//
// Resolve never touches a delegate or the filesystem; it is a pure
// function of its input string.
func Resolve(p string) Result {
	dir, last := split(p)

	if strings.HasPrefix(last, appleDoublePrefix) && last != appleDoublePrefix {
		return Result{Kind: AppleDouble, Real: join(dir, last[len(appleDoublePrefix):])}
	}

	if last == directoryIconName {
		return Result{Kind: DirectoryIcon, Real: dir}
	}

	return Result{Kind: Ordinary, Real: p}
}

// ResolveReal takes p' -- a path already resolved one level (spec.md
// §4.3's P', e.g. a Result.Real) -- and applies the one further
// directory-icon resolution step spec.md §4.3 calls P'': if p' is
// itself a directory-icon path, its real (enclosing-directory) path is
// returned with wasDirectoryIcon set; otherwise p' is returned
// unchanged. Both the attribute assembler and the delegate facade's
// Open synthetic-content lookup need this same second-level
// resolution, so it lives here rather than being computed twice.
func ResolveReal(pPrime string) (real string, wasDirectoryIcon bool) {
	if r := Resolve(pPrime); r.Kind == DirectoryIcon {
		return r.Real, true
	}
	return pPrime, false
}

// split separates p into its enclosing directory and last component.
// The root path "/" has last component "" and directory "/".
func split(p string) (dir, last string) {
	if p == "/" {
		return "/", ""
	}

	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return "/", p
	}

	dir = p[:idx]
	if dir == "" {
		dir = "/"
	}
	last = p[idx+1:]
	return dir, last
}

// join appends name to dir, producing a well-formed absolute path.
func join(dir, name string) string {
	if dir == "/" {
		return "/" + name
	}
	return dir + "/" + name
}
