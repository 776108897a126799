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

// Package delegate wraps a user-supplied filesystem implementation (the
// delegate) in a capability-probing facade: one method per high-level
// operation, each of which checks whether the delegate implements the
// corresponding capability and otherwise returns the operation's default
// POSIX error.
package delegate

import (
	"github.com/fusebridge/macfs/appledouble"
	"github.com/fusebridge/macfs/attrs"
	"github.com/fusebridge/macfs/resolve"
	"github.com/fusebridge/macfs/synthetic"
)

// Facade is the capability-probing wrapper around a delegate value. The
// delegate may implement any subset of the optional capability
// interfaces declared in this package; Facade never requires a static
// interface from its caller.
type Facade struct {
	delegate any
	synth    *synthetic.Provider
}

// New returns a Facade wrapping d, using synth to produce any synthetic
// content d's open/read calls may need (directory-icon and apple-double
// paths).
func New(d any, synth *synthetic.Provider) *Facade {
	return &Facade{delegate: d, synth: synth}
}

// WillMount invokes the delegate's optional willMount hook.
func (f *Facade) WillMount() error {
	if w, ok := f.delegate.(willMounter); ok {
		return w.WillMount()
	}
	return nil
}

// WillUnmount invokes the delegate's optional willUnmount hook.
func (f *Facade) WillUnmount() {
	if w, ok := f.delegate.(willUnmounter); ok {
		w.WillUnmount()
	}
}

// ContentsOfDirectoryAtPath returns the delegate's listing for path, or
// an empty list for the root when the delegate implements no listing
// capability at all.
func (f *Facade) ContentsOfDirectoryAtPath(path string) ([]string, error) {
	dl, ok := f.delegate.(directoryLister)
	if !ok {
		if path == "/" {
			return nil, nil
		}
		return nil, Default(OpReadDir)
	}
	return dl.ContentsOfDirectoryAtPath(path)
}

// AttributesOfItemAtPath returns the delegate's override attribute map
// for path, and whether the delegate implements the capability at all.
func (f *Facade) AttributesOfItemAtPath(path string) (attrs.Map, bool, error) {
	a, ok := f.delegate.(itemAttributer)
	if !ok {
		return attrs.Map{}, false, nil
	}
	m, err := a.AttributesOfItemAtPath(path)
	return m, true, err
}

// AttributesOfFileSystemForPath returns the delegate's filesystem-stats
// override, falling back to the 2 GiB default.
func (f *Facade) AttributesOfFileSystemForPath(path string) (attrs.FilesystemMap, error) {
	a, ok := f.delegate.(filesystemAttributer)
	if !ok {
		return attrs.DefaultFilesystemMap(), nil
	}
	return a.AttributesOfFileSystemForPath(path)
}

// SetAttributes applies a to path. When the delegate lacks the
// capability this reports success (nil) rather than an error, so that
// chown/chmod/utimens remain POSIX-tool compatible.
func (f *Facade) SetAttributes(path string, a attrs.Map) error {
	s, ok := f.delegate.(attributeSetter)
	if !ok {
		return nil
	}
	return s.SetAttributes(path, a)
}

// Open resolves path per r and returns the handle to install into the
// kernel's fi->fh slot, implementing this precedence order:
// directory-icon, then apple-double, then the delegate's contentsAtPath,
// then its openFileAtPath.
func (f *Facade) Open(path string, r resolve.Result) (Handle, error) {
	switch r.Kind {
	case resolve.DirectoryIcon:
		return Handle([]byte{}), nil

	case resolve.AppleDouble:
		real, wasDirectoryIcon := resolve.ResolveReal(r.Real)
		data, ok := f.synth.AppleDoubleAt(real, synthetic.Options{WasDirectoryIcon: wasDirectoryIcon})
		if !ok {
			return nil, Default(OpOpen)
		}
		return Handle(data), nil
	}

	if c, ok := f.delegate.(contentser); ok {
		if data, present := c.ContentsAtPath(path); present {
			return Handle(data), nil
		}
		return nil, Default(OpOpen)
	}

	if o, ok := f.delegate.(opener); ok {
		return o.OpenFileAtPath(path, 0)
	}

	return nil, Default(OpOpen)
}

// ContentsAtPath exposes the delegate's optional contentsAtPath
// capability directly, for callers (such as the attribute assembler)
// that need file contents outside of an open handle.
func (f *Facade) ContentsAtPath(path string) ([]byte, bool) {
	c, ok := f.delegate.(contentser)
	if !ok {
		return nil, false
	}
	return c.ContentsAtPath(path)
}

// Release returns h to the delegate exactly once.
func (f *Facade) Release(path string, h Handle) {
	if r, ok := f.delegate.(releaser); ok {
		r.ReleaseFileAtPath(path, h)
	}
}

// ReadHandle reads from h (or, lacking a Reader handle, from the
// delegate's path-based read capability) at offset into p.
func (f *Facade) ReadHandle(path string, h Handle, p []byte, offset int64) (int, error) {
	if rd, ok := h.(Reader); ok {
		return rd.ReadToBuffer(p, offset)
	}
	if b, ok := h.([]byte); ok {
		return copyAt(p, b, offset), nil
	}
	if pr, ok := f.delegate.(pathReader); ok {
		return pr.ReadFileAtPath(path, h, p, offset)
	}
	return 0, Default(OpRead)
}

// WriteHandle writes p into h (or via the delegate's path-based write
// capability) at offset.
func (f *Facade) WriteHandle(path string, h Handle, p []byte, offset int64) (int, error) {
	if w, ok := h.(Writer); ok {
		return w.WriteFromBuffer(p, offset)
	}
	if w, ok := f.delegate.(pathWriter); ok {
		return w.WriteFileAtPath(path, h, p, offset)
	}
	return 0, Default(OpWrite)
}

// TruncateHandle truncates h (or the delegate's path-based target) to
// size.
func (f *Facade) TruncateHandle(path string, h Handle, size int64) error {
	if t, ok := h.(Truncator); ok {
		return t.TruncateToOffset(size)
	}
	if t, ok := f.delegate.(pathTruncator); ok {
		return t.TruncateFileAtPath(path, size)
	}
	return Default(OpTruncate)
}

// CreateFile creates a regular file at path with initial attributes a.
func (f *Facade) CreateFile(path string, a attrs.Map) (Handle, error) {
	c, ok := f.delegate.(fileCreator)
	if !ok {
		return nil, Default(OpCreate)
	}
	return c.CreateFileAtPath(path, a)
}

// CreateDirectory creates a directory at path with initial attributes a.
func (f *Facade) CreateDirectory(path string, a attrs.Map) error {
	c, ok := f.delegate.(dirCreator)
	if !ok {
		return Default(OpMkdir)
	}
	return c.CreateDirectoryAtPath(path, a)
}

// Move renames src to dst.
func (f *Facade) Move(src, dst string) error {
	m, ok := f.delegate.(mover)
	if !ok {
		return Default(OpRename)
	}
	return m.MoveItemAtPath(src, dst)
}

// Remove deletes path (file or directory).
func (f *Facade) Remove(path string, op Operation) error {
	r, ok := f.delegate.(remover)
	if !ok {
		return Default(op)
	}
	return r.RemoveItemAtPath(path)
}

// Link creates a hard link at dst pointing to src.
func (f *Facade) Link(src, dst string) error {
	l, ok := f.delegate.(linker)
	if !ok {
		return Default(OpLink)
	}
	return l.LinkItemAtPath(src, dst)
}

// CreateSymlink creates a symbolic link at path pointing to target.
func (f *Facade) CreateSymlink(path, target string) error {
	s, ok := f.delegate.(symlinkCreator)
	if !ok {
		return Default(OpCreateSymlink)
	}
	return s.CreateSymbolicLinkAtPath(path, target)
}

// ReadSymlink returns the destination of the symlink at path.
func (f *Facade) ReadSymlink(path string) (string, error) {
	s, ok := f.delegate.(symlinkReader)
	if !ok {
		return "", Default(OpReadlink)
	}
	return s.DestinationOfSymbolicLinkAtPath(path)
}

// ListXattr returns the delegate's extended-attribute names for path.
func (f *Facade) ListXattr(path string) ([]string, error) {
	l, ok := f.delegate.(xattrLister)
	if !ok {
		return nil, Default(OpListXattr)
	}
	return l.ExtendedAttributesOfItemAtPath(path)
}

// GetXattr tries the delegate first, then the two
// synthesized attributes, then ENOTSUP.
func (f *Facade) GetXattr(name, path string, r resolve.Result) ([]byte, error) {
	if g, ok := f.delegate.(xattrGetter); ok {
		data, err := g.ValueOfExtendedAttribute(name, path)
		if err == nil && data != nil {
			return data, nil
		}
		if err != nil {
			return nil, err
		}
	}

	switch name {
	case "com.apple.FinderInfo":
		flags := f.synth.FinderFlagsAt(r.Real, synthetic.Options{WasDirectoryIcon: r.Kind == resolve.DirectoryIcon})
		return appledouble.EncodeFinderInfo(flags), nil
	case "com.apple.ResourceFork":
		data, ok := f.synth.ResourceForkAt(r.Real)
		if !ok {
			return nil, ErrNoAttribute
		}
		return data, nil
	default:
		return nil, ErrNotSupported
	}
}

// SetXattr sets an extended attribute via the delegate, or ENOTSUP.
func (f *Facade) SetXattr(name, path string, data []byte) error {
	s, ok := f.delegate.(xattrSetter)
	if !ok {
		return Default(OpListXattr) // ENOTSUP, same as listxattr's default
	}
	return s.SetExtendedAttribute(name, path, data)
}

func copyAt(dst, src []byte, offset int64) int {
	if offset < 0 || offset >= int64(len(src)) {
		return 0
	}
	return copy(dst, src[offset:])
}
