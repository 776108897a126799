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

package fs

import (
	"strings"

	"github.com/jacobsa/fuse/fuseops"
)

// pathTable maps between the path-based world the delegate lives in and
// the inode-ID-based world jacobsa/fuse requires. The teacher's
// fileSystem keeps a map of live inodes keyed by fuseops.InodeID; this is
// the same structure, generalized so values are plain paths instead of
// GCS-backed inode objects.
//
// GUARDED_BY(fs.mu).
type pathTable struct {
	nextID       fuseops.InodeID
	pathsByID    map[fuseops.InodeID]string
	idsByPath    map[string]fuseops.InodeID
	lookupCounts map[fuseops.InodeID]uint64
}

func newPathTable() *pathTable {
	t := &pathTable{
		nextID:       fuseops.RootInodeID + 1,
		pathsByID:    make(map[fuseops.InodeID]string),
		idsByPath:    make(map[string]fuseops.InodeID),
		lookupCounts: make(map[fuseops.InodeID]uint64),
	}
	t.pathsByID[fuseops.RootInodeID] = "/"
	t.idsByPath["/"] = fuseops.RootInodeID
	t.lookupCounts[fuseops.RootInodeID] = 1
	return t
}

// path returns the path registered for id, or "" if none is known.
func (t *pathTable) path(id fuseops.InodeID) string {
	return t.pathsByID[id]
}

// idFor returns the existing inode id for p, minting a fresh one and
// recording a single lookup-count reference if none exists yet.
func (t *pathTable) idFor(p string) fuseops.InodeID {
	if id, ok := t.idsByPath[p]; ok {
		t.lookupCounts[id]++
		return id
	}

	id := t.nextID
	t.nextID++
	t.pathsByID[id] = p
	t.idsByPath[p] = id
	t.lookupCounts[id] = 1
	return id
}

// forget decrements id's lookup count by n, removing it from the table
// once it reaches zero. The root inode is never forgotten.
func (t *pathTable) forget(id fuseops.InodeID, n uint64) {
	if id == fuseops.RootInodeID {
		return
	}

	count, ok := t.lookupCounts[id]
	if !ok {
		return
	}
	if n >= count {
		p := t.pathsByID[id]
		delete(t.pathsByID, id)
		delete(t.idsByPath, p)
		delete(t.lookupCounts, id)
		return
	}
	t.lookupCounts[id] = count - n
}

// rename updates every cached path equal to oldPath, or nested beneath
// it, to its newPath equivalent. The request translator leaves recursive
// bookkeeping
// to the delegate; this only keeps our own inode-id cache from pointing
// at a name the delegate no longer recognizes.
func (t *pathTable) rename(oldPath, newPath string) {
	for id, p := range t.pathsByID {
		var updated string
		switch {
		case p == oldPath:
			updated = newPath
		case strings.HasPrefix(p, oldPath+"/"):
			updated = newPath + strings.TrimPrefix(p, oldPath)
		default:
			continue
		}

		delete(t.idsByPath, p)
		t.pathsByID[id] = updated
		t.idsByPath[updated] = id
	}
}

// childPath joins a parent path and a child name into a well-formed
// absolute path.
func childPath(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}
