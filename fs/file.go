// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package fs

import "github.com/fusebridge/macfs/delegate"

// fileHandle is what the core stores for an open file: the path it was
// opened against (the delegate facade is path-based, not inode-based)
// and the opaque delegate.Handle transferred to us at open time:
// "ownership transfers to the core at open/create and back to the
// delegate at release"; this struct is that one owning reference, and
// fileSystem.fileHandles (fs.go) is the registry keyed by the
// fuseops.HandleID installed into the kernel's fi->fh slot.
type fileHandle struct {
	path   string
	handle delegate.Handle
}
