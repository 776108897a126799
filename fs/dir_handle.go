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
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"
)

// dirHandle buffers the resolved listing for one open directory handle.
// There is no continuation token: the facade's
// ContentsOfDirectoryAtPath returns a full listing in one call, so this
// just turns that listing plus "." and ".." into a stable,
// offset-addressable slice of fuseutil.Dirent.
//
// GUARDED_BY(fs.mu) for creation; read access afterwards is confined to
// the single goroutine servicing sequential ReadDir calls for this
// handle.
type dirHandle struct {
	entries []fuseutil.Dirent
}

// newDirHandle builds a dirHandle from names, prefixing "." and ".."
// ahead of them.
func newDirHandle(inode fuseops.InodeID, names []string) *dirHandle {
	entries := make([]fuseutil.Dirent, 0, len(names)+2)
	entries = append(entries,
		fuseutil.Dirent{Offset: 1, Inode: inode, Name: ".", Type: fuseutil.DT_Directory},
		fuseutil.Dirent{Offset: 2, Inode: inode, Name: "..", Type: fuseutil.DT_Directory},
	)
	for i, name := range names {
		entries = append(entries, fuseutil.Dirent{
			Offset: fuseops.DirOffset(i + 3),
			// The real inode ID for a not-yet-looked-up child is unknown to
			// the kernel until a subsequent LookUpInode call; any stable
			// placeholder is acceptable here since the kernel treats Inode
			// as an opaque hint for getdents and re-resolves by name.
			Inode: fuseops.InodeID(0xFFFFFFFF),
			Name:  name,
			Type:  fuseutil.DT_Unknown,
		})
	}
	return &dirHandle{entries: entries}
}

// ReadDir serves op by writing as many buffered entries as fit into
// op.Dst, starting at op.Offset.
func (dh *dirHandle) ReadDir(op *fuseops.ReadDirOp) error {
	index := int(op.Offset)
	if index < 0 || index > len(dh.entries) {
		return nil
	}

	for _, e := range dh.entries[index:] {
		n := fuseutil.WriteDirent(op.Dst[op.BytesRead:], e)
		if n == 0 {
			break
		}
		op.BytesRead += n
	}

	return nil
}
