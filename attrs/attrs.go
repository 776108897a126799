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

// Package attrs holds the per-item and per-filesystem attribute maps the
// request translator assembles from defaults, synthetic overrides, and
// delegate-supplied values, and the assembler that builds them.
package attrs

import "time"

// FileType is the type of a filesystem entry.
type FileType int

const (
	// Regular is an ordinary file.
	Regular FileType = iota

	// Directory is a directory entry.
	Directory

	// Symlink is a symbolic link.
	Symlink
)

// Map is an attribute map keyed by well-known attribute names.
// Zero value is an empty map; use NewDefaults to start from defaults.
type Map struct {
	Permissions      uint32
	FileType         FileType
	OwnerID          *uint32
	GroupID          *uint32
	ReferenceCount   uint32
	ModificationDate time.Time
	CreationDate     time.Time
	Size             *uint64
}

// DefaultPermissions is the permission bits used when nothing overrides
// them: 0o555, read+execute for everyone, a read-only-by-default
// posture for synthesized entries.
const DefaultPermissions = 0o555

// NewDefaults returns the seed attribute map for path p (step 1 of the
// assembler algorithm): permissions 0o555, reference-count 1, and
// file-type directory iff p is the filesystem root.
func NewDefaults(p string) Map {
	ft := Regular
	if p == "/" {
		ft = Directory
	}
	return Map{
		Permissions:    DefaultPermissions,
		FileType:       ft,
		ReferenceCount: 1,
	}
}

// Merge returns a copy of m with every non-zero-valued field of override
// applied on top. Pointer fields (OwnerID, GroupID, Size) are applied
// only when override sets them; ModificationDate/CreationDate apply only
// when override's values are non-zero times.
func (m Map) Merge(override Map) Map {
	out := m

	if override.Permissions != 0 {
		out.Permissions = override.Permissions
	}
	// FileType has a valid zero value (Regular), so only overwrite when
	// the override was constructed with an explicit non-zero type or the
	// caller otherwise intends a change; callers that want to force
	// Regular should set it explicitly via WithFileType.
	if override.FileType != Regular {
		out.FileType = override.FileType
	}
	if override.OwnerID != nil {
		out.OwnerID = override.OwnerID
	}
	if override.GroupID != nil {
		out.GroupID = override.GroupID
	}
	if override.ReferenceCount != 0 {
		out.ReferenceCount = override.ReferenceCount
	}
	if !override.ModificationDate.IsZero() {
		out.ModificationDate = override.ModificationDate
	}
	if !override.CreationDate.IsZero() {
		out.CreationDate = override.CreationDate
	}
	if override.Size != nil {
		out.Size = override.Size
	}

	return out
}

// WithFileType returns a copy of m with its file type forced to ft, even
// when ft is Regular (the zero value Merge otherwise treats as "unset").
func (m Map) WithFileType(ft FileType) Map {
	m.FileType = ft
	return m
}

// WithTimestamps returns a copy of m with both its modification-date and
// creation-date set to t, the clock reading at the moment a new entry is
// created.
func (m Map) WithTimestamps(t time.Time) Map {
	m.ModificationDate = t
	m.CreationDate = t
	return m
}

// WithSize returns a copy of m with its size forced to n.
func (m Map) WithSize(n uint64) Map {
	m.Size = &n
	return m
}

// EffectiveOwnerID returns m.OwnerID if set, else fallback.
func (m Map) EffectiveOwnerID(fallback uint32) uint32 {
	if m.OwnerID != nil {
		return *m.OwnerID
	}
	return fallback
}

// EffectiveGroupID returns m.GroupID if set, else fallback.
func (m Map) EffectiveGroupID(fallback uint32) uint32 {
	if m.GroupID != nil {
		return *m.GroupID
	}
	return fallback
}

// EffectiveSize returns m.Size if set, else 0 and false.
func (m Map) EffectiveSize() (uint64, bool) {
	if m.Size != nil {
		return *m.Size, true
	}
	return 0, false
}

// FilesystemMap is the filesystem-wide statvfs-style attribute set.
type FilesystemMap struct {
	Size          uint64
	FreeSize      uint64
	NodeCount     uint64
	FreeNodeCount uint64
}

// DefaultFilesystemSize is the fallback filesystem size used when the
// delegate doesn't implement filesystem-stats: 2 GiB.
const DefaultFilesystemSize = 2 << 30

// DefaultFilesystemMap is the fallback filesystem-attribute map.
func DefaultFilesystemMap() FilesystemMap {
	return FilesystemMap{
		Size:          DefaultFilesystemSize,
		FreeSize:      DefaultFilesystemSize,
		NodeCount:     DefaultFilesystemSize,
		FreeNodeCount: DefaultFilesystemSize,
	}
}
