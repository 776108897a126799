// Copyright 2024 Google Inc. All Rights Reserved.
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

package synthetic

import (
	"testing"

	"github.com/fusebridge/macfs/appledouble"
	"github.com/fusebridge/macfs/finderflags"
)

type fakeDelegate struct {
	flags     map[string]finderflags.Flags
	icons     map[string][]byte
	weblocURL map[string]string
}

func (d fakeDelegate) FinderFlagsAtPath(p string) (finderflags.Flags, bool) {
	f, ok := d.flags[p]
	return f, ok
}

func (d fakeDelegate) IconDataAtPath(p string) ([]byte, bool) {
	b, ok := d.icons[p]
	return b, ok
}

func (d fakeDelegate) URLContentOfWeblocAtPath(p string) (string, bool) {
	u, ok := d.weblocURL[p]
	return u, ok
}

// iconOnlyDelegate implements the icon-data capability but not the
// flags capability, so FinderFlagsAt consults its icon data.
type iconOnlyDelegate struct {
	icons map[string][]byte
}

func (d iconOnlyDelegate) IconDataAtPath(p string) ([]byte, bool) {
	b, ok := d.icons[p]
	return b, ok
}

func TestFinderFlagsAt_DirectoryIconSetsInvisible(t *testing.T) {
	pr := NewProvider(fakeDelegate{}, appledouble.NewDefaultEncoder())

	flags := pr.FinderFlagsAt("/sub", Options{WasDirectoryIcon: true})
	if !flags.Has(finderflags.KIsInvisible) {
		t.Fatalf("expected kIsInvisible set for a directory-icon path")
	}
}

func TestFinderFlagsAt_IconCapabilitySetsCustomIcon(t *testing.T) {
	d := iconOnlyDelegate{icons: map[string][]byte{"/hello": []byte("ICON")}}
	pr := NewProvider(d, appledouble.NewDefaultEncoder())

	flags := pr.FinderFlagsAt("/hello", Options{})
	if !flags.Has(finderflags.KHasCustomIcon) {
		t.Fatalf("expected kHasCustomIcon set when delegate has icon data")
	}
}

func TestFinderFlagsAt_FlagsCapabilityTakesPrecedenceOverIconData(t *testing.T) {
	d := fakeDelegate{
		flags: map[string]finderflags.Flags{"/hello": finderflags.KIsInvisible},
		icons: map[string][]byte{"/hello": []byte("ICON")},
	}
	pr := NewProvider(d, appledouble.NewDefaultEncoder())

	flags := pr.FinderFlagsAt("/hello", Options{})
	if !flags.Has(finderflags.KIsInvisible) {
		t.Fatalf("expected kIsInvisible from flagsCapability")
	}
	if flags.Has(finderflags.KHasCustomIcon) {
		t.Fatalf("kHasCustomIcon should not be set when flagsCapability is present ('OR'-then-'else-if' precedence)")
	}
}

func TestHasCustomIcon(t *testing.T) {
	d := fakeDelegate{icons: map[string][]byte{"/hello": []byte("ICON")}}
	pr := NewProvider(d, appledouble.NewDefaultEncoder())

	if !pr.HasCustomIcon("/hello") {
		t.Fatalf("expected custom icon for /hello")
	}
	if pr.HasCustomIcon("/other") {
		t.Fatalf("expected no custom icon for /other")
	}
}

func TestResourceForkAt_WeblocAndIcon(t *testing.T) {
	d := fakeDelegate{
		icons:     map[string][]byte{"/x.webloc": []byte("ICON")},
		weblocURL: map[string]string{"/x.webloc": "https://example.com"},
	}
	pr := NewProvider(d, appledouble.NewDefaultEncoder())

	data, ok := pr.ResourceForkAt("/x.webloc")
	if !ok || len(data) == 0 {
		t.Fatalf("expected non-empty resource fork")
	}
}

func TestResourceForkAt_WeblocIgnoredForNonWeblocSuffix(t *testing.T) {
	d := fakeDelegate{weblocURL: map[string]string{"/x.txt": "https://example.com"}}
	pr := NewProvider(d, appledouble.NewDefaultEncoder())

	_, ok := pr.ResourceForkAt("/x.txt")
	if ok {
		t.Fatalf("expected no resource fork for a non-.webloc path with no icon")
	}
}

func TestResourceForkAt_NoCapabilitiesReturnsAbsent(t *testing.T) {
	pr := NewProvider(fakeDelegate{}, appledouble.NewDefaultEncoder())

	_, ok := pr.ResourceForkAt("/hello")
	if ok {
		t.Fatalf("expected absent resource fork when nothing applies")
	}
}

func TestAppleDoubleAt_AbsentWhenNoFlagsAndNoFork(t *testing.T) {
	pr := NewProvider(fakeDelegate{}, appledouble.NewDefaultEncoder())

	_, ok := pr.AppleDoubleAt("/hello", Options{})
	if ok {
		t.Fatalf("expected absent AppleDouble bytes when nothing applies")
	}
}

func TestAppleDoubleAt_PresentWhenIconSet(t *testing.T) {
	d := fakeDelegate{icons: map[string][]byte{"/hello": []byte("ICON")}}
	pr := NewProvider(d, appledouble.NewDefaultEncoder())

	data, ok := pr.AppleDoubleAt("/hello", Options{})
	if !ok || len(data) == 0 {
		t.Fatalf("expected non-empty AppleDouble bytes")
	}
}

func TestAppleDoubleAt_PresentWhenDirectoryIconEvenWithoutResource(t *testing.T) {
	pr := NewProvider(fakeDelegate{}, appledouble.NewDefaultEncoder())

	// A directory-icon path always carries kIsInvisible, so AppleDoubleAt
	// must be present (non-absent) even with no resource fork content.
	_, ok := pr.AppleDoubleAt("/", Options{WasDirectoryIcon: true})
	if !ok {
		t.Fatalf("expected present AppleDouble bytes for a directory-icon path")
	}
}
