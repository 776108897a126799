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

// Package synthetic computes the macOS-compatibility content that has no
// delegate-backed file of its own: Finder flags, resource-fork bytes, and
// AppleDouble bytes for a real path, given whatever capabilities the
// delegate happens to implement.
package synthetic

import (
	"strings"

	"github.com/fusebridge/macfs/appledouble"
	"github.com/fusebridge/macfs/finderflags"
)

// flagsCapability is the optional "finderFlagsAtPath" delegate method.
type flagsCapability interface {
	FinderFlagsAtPath(path string) (finderflags.Flags, bool)
}

// iconDataCapability is the optional "iconDataAtPath" delegate method.
type iconDataCapability interface {
	IconDataAtPath(path string) ([]byte, bool)
}

// weblocCapability is the optional "URLContentOfWeblocAtPath" delegate
// method.
type weblocCapability interface {
	URLContentOfWeblocAtPath(path string) (string, bool)
}

// resourceTypeURL and resourceTypeIcon are the four-character resource
// types assigned to webloc and icon resources.
const (
	resourceTypeURL  = "url "
	resourceTypeIcon = "icns"

	resourceIDURL  = 256
	resourceIDIcon = -16455
)

// Provider computes synthetic content on demand from a delegate value
// that may optionally implement flagsCapability, iconDataCapability,
// and/or weblocCapability.
type Provider struct {
	delegate any
	encoder  appledouble.Encoder
}

// NewProvider returns a Provider that probes delegate for the optional
// capabilities it needs and serializes via encoder.
func NewProvider(delegate any, encoder appledouble.Encoder) *Provider {
	return &Provider{delegate: delegate, encoder: encoder}
}

// Options records whether the path being asked about was itself
// classified as a directory-icon path, so FinderFlagsAt can set
// kIsInvisible.
type Options struct {
	// WasDirectoryIcon is true when the path under consideration resolved
	// through a directory-icon classification.
	WasDirectoryIcon bool
}

// FinderFlagsAt computes the Finder flags for real path p.
func (pr *Provider) FinderFlagsAt(p string, opts Options) finderflags.Flags {
	var flags finderflags.Flags

	if opts.WasDirectoryIcon {
		flags = flags.Set(finderflags.KIsInvisible)
	}

	if fc, ok := pr.delegate.(flagsCapability); ok {
		if f, present := fc.FinderFlagsAtPath(p); present {
			flags = flags.Set(f)
		}
	} else if ic, ok := pr.delegate.(iconDataCapability); ok {
		if data, present := ic.IconDataAtPath(p); present && len(data) > 0 {
			flags = flags.Set(finderflags.KHasCustomIcon)
		}
	}

	return flags
}

// HasCustomIcon reports whether p has a delegate-supplied custom icon,
// used by the directory-listing and attribute-assembly logic.
func (pr *Provider) HasCustomIcon(p string) bool {
	ic, ok := pr.delegate.(iconDataCapability)
	if !ok {
		return false
	}
	data, present := ic.IconDataAtPath(p)
	return present && len(data) > 0
}

// ResourceForkAt builds the serialized resource fork for real path p, or
// returns ok=false if no resource applies.
func (pr *Provider) ResourceForkAt(p string) (data []byte, ok bool) {
	var resources []appledouble.Resource

	if strings.HasSuffix(p, ".webloc") {
		if wc, has := pr.delegate.(weblocCapability); has {
			if url, present := wc.URLContentOfWeblocAtPath(p); present {
				resources = append(resources, appledouble.Resource{
					Type: resourceTypeURL,
					ID:   resourceIDURL,
					Data: []byte(url),
				})
			}
		}
	}

	if ic, has := pr.delegate.(iconDataCapability); has {
		if iconData, present := ic.IconDataAtPath(p); present && len(iconData) > 0 {
			resources = append(resources, appledouble.Resource{
				Type: resourceTypeIcon,
				ID:   resourceIDIcon,
				Data: iconData,
			})
		}
	}

	if len(resources) == 0 {
		return nil, false
	}

	return pr.encoder.EncodeResourceFork(resources), true
}

// AppleDoubleAt builds the serialized AppleDouble bytes for real path p,
// or returns ok=false if there is nothing to synthesize (zero Finder
// flags and no resource fork).
func (pr *Provider) AppleDoubleAt(p string, opts Options) (data []byte, ok bool) {
	flags := pr.FinderFlagsAt(p, opts)
	forkData, hasFork := pr.ResourceForkAt(p)

	if flags == 0 && !hasFork {
		return nil, false
	}

	entries := []appledouble.Entry{
		{Kind: appledouble.FinderInfo, Data: appledouble.EncodeFinderInfo(flags)},
	}
	if hasFork {
		entries = append(entries, appledouble.Entry{Kind: appledouble.ResourceFork, Data: forkData})
	}

	return pr.encoder.EncodeAppleDouble(entries), true
}
