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

package delegate

import "github.com/fusebridge/macfs/attrs"

// Handle is an opaque, delegate-owned value produced by Create/Open and
// consumed by Read/Write/Truncate/Release. The core never interprets
// its contents; it is a registry key's payload.
type Handle any

// Reader, Writer, and Truncator are the optional per-handle capabilities
// a file-handle object may additionally provide ("readToBuffer",
// "writeFromBuffer", "truncateToOffset"). A Handle that implements none
// of these can still be released; read/write/truncate then fall back to
// the delegate's path-based methods.
type Reader interface {
	ReadToBuffer(p []byte, offset int64) (n int, err error)
}

type Writer interface {
	WriteFromBuffer(p []byte, offset int64) (n int, err error)
}

type Truncator interface {
	TruncateToOffset(size int64) error
}

// The following interfaces are the optional capabilities a delegate may
// compose. Each is deliberately a single method so a delegate opts in
// one capability at a time; Facade probes for each with a type assertion
// rather than requiring a delegate to implement one large interface.

type willMounter interface {
	WillMount() error
}

type willUnmounter interface {
	WillUnmount()
}

type directoryLister interface {
	ContentsOfDirectoryAtPath(path string) ([]string, error)
}

type itemAttributer interface {
	AttributesOfItemAtPath(path string) (attrs.Map, error)
}

type filesystemAttributer interface {
	AttributesOfFileSystemForPath(path string) (attrs.FilesystemMap, error)
}

type attributeSetter interface {
	SetAttributes(path string, a attrs.Map) error
}

type contentser interface {
	ContentsAtPath(path string) ([]byte, bool)
}

type opener interface {
	OpenFileAtPath(path string, flags int) (Handle, error)
}

type releaser interface {
	ReleaseFileAtPath(path string, h Handle)
}

type pathReader interface {
	ReadFileAtPath(path string, h Handle, p []byte, offset int64) (int, error)
}

type pathWriter interface {
	WriteFileAtPath(path string, h Handle, p []byte, offset int64) (int, error)
}

type pathTruncator interface {
	TruncateFileAtPath(path string, size int64) error
}

type fileCreator interface {
	CreateFileAtPath(path string, a attrs.Map) (Handle, error)
}

type dirCreator interface {
	CreateDirectoryAtPath(path string, a attrs.Map) error
}

type mover interface {
	MoveItemAtPath(src, dst string) error
}

type remover interface {
	RemoveItemAtPath(path string) error
}

type linker interface {
	LinkItemAtPath(src, dst string) error
}

type symlinkCreator interface {
	CreateSymbolicLinkAtPath(path string, target string) error
}

type symlinkReader interface {
	DestinationOfSymbolicLinkAtPath(path string) (string, error)
}

type xattrLister interface {
	ExtendedAttributesOfItemAtPath(path string) ([]string, error)
}

type xattrGetter interface {
	ValueOfExtendedAttribute(name, path string) ([]byte, error)
}

type xattrSetter interface {
	SetExtendedAttribute(name, path string, data []byte) error
}

type xattrRemover interface {
	RemoveExtendedAttribute(name, path string) error
}
