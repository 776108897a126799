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
	"os"

	"github.com/jacobsa/fuse/fuseops"

	"github.com/fusebridge/macfs/attrs"
)

// toInodeAttributes fills out the stat buffer: zero first,
// mode is permissions OR'd with the type bit (expressed as Go's
// os.FileMode type bits, which is how jacobsa/fuse wants it rather than
// raw S_IFDIR/S_IFREG/S_IFLNK constants), uid/gid default to the
// filesystem's effective uid/gid, nlink from reference-count, mtime and
// atime both from modification-date, ctime from creation-date (the
// known-quirky mapping), and size only for
// non-directories.
func toInodeAttributes(m attrs.Map, uid, gid uint32) (fuseops.InodeAttributes, error) {
	var modeBit os.FileMode
	switch m.FileType {
	case attrs.Directory:
		modeBit = os.ModeDir
	case attrs.Regular:
		modeBit = 0
	case attrs.Symlink:
		modeBit = os.ModeSymlink
	default:
		return fuseops.InodeAttributes{}, errUnknownFileType
	}

	out := fuseops.InodeAttributes{
		Mode:  modeBit | os.FileMode(m.Permissions),
		Nlink: m.ReferenceCount,
		Uid:   m.EffectiveOwnerID(uid),
		Gid:   m.EffectiveGroupID(gid),
	}
	if out.Nlink == 0 {
		out.Nlink = 1
	}

	out.Mtime = m.ModificationDate
	out.Atime = m.ModificationDate
	out.Ctime = m.CreationDate

	if m.FileType != attrs.Directory {
		if size, ok := m.EffectiveSize(); ok {
			out.Size = size
		}
	}

	return out, nil
}

// toStatFSOp fills op per the statvfs rules: BlockSize (frsize) and
// IoSize (bsize) both 4096, block/file counts derived from the filesystem
// attribute map in units of frsize. It sets no name-length (namemax)
// value.
func toStatFSOp(fsMap attrs.FilesystemMap, op *fuseops.StatFSOp) {
	const blockSize = 4096

	op.BlockSize = blockSize
	op.IoSize = blockSize
	op.Blocks = fsMap.Size / blockSize
	op.BlocksFree = fsMap.FreeSize / blockSize
	op.BlocksAvailable = fsMap.FreeSize / blockSize
	op.Inodes = fsMap.NodeCount
	op.InodesFree = fsMap.FreeNodeCount
}
