package attrs

import (
	"testing"

	"github.com/fusebridge/macfs/appledouble"
	"github.com/fusebridge/macfs/resolve"
	"github.com/fusebridge/macfs/synthetic"
)

type fakeAttrSource struct {
	m           Map
	implemented bool
	err         error
}

func (f fakeAttrSource) AttributesOfItemAtPath(path string) (Map, bool, error) {
	return f.m, f.implemented, f.err
}

type fakeContentSource struct {
	data map[string][]byte
}

func (f fakeContentSource) ContentsAtPath(path string) ([]byte, bool) {
	d, ok := f.data[path]
	return d, ok
}

type fakeIconDelegate struct {
	icons map[string][]byte
}

func (d fakeIconDelegate) IconDataAtPath(path string) ([]byte, bool) {
	v, ok := d.icons[path]
	return v, ok
}

func TestAssemble_Root(t *testing.T) {
	r := resolve.Resolve("/")
	m, err := Assemble("/", r, fakeAttrSource{}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.FileType != Directory {
		t.Fatalf("expected directory, got %v", m.FileType)
	}
	if m.Permissions != DefaultPermissions {
		t.Fatalf("expected default permissions, got %o", m.Permissions)
	}
}

func TestAssemble_RegularFileWithContents(t *testing.T) {
	r := resolve.Resolve("/hello")
	cs := fakeContentSource{data: map[string][]byte{"/hello": []byte("Hi")}}
	m, err := Assemble("/hello", r, fakeAttrSource{}, nil, cs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	size, ok := m.EffectiveSize()
	if !ok || size != 2 {
		t.Fatalf("expected size 2, got %v ok=%v", size, ok)
	}
}

func TestAssemble_DirectoryIconWithoutCustomIcon(t *testing.T) {
	r := resolve.Resolve("/Icon\r")
	synth := synthetic.NewProvider(fakeIconDelegate{}, appledouble.NewDefaultEncoder())
	_, err := Assemble("/Icon\r", r, fakeAttrSource{}, synth, nil)
	if err == nil {
		t.Fatalf("expected ENOENT")
	}
}

func TestAssemble_DirectoryIconWithCustomIcon(t *testing.T) {
	r := resolve.Resolve("/Icon\r")
	synth := synthetic.NewProvider(fakeIconDelegate{icons: map[string][]byte{"/": []byte("ICON")}}, appledouble.NewDefaultEncoder())
	m, err := Assemble("/Icon\r", r, fakeAttrSource{}, synth, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	size, _ := m.EffectiveSize()
	if size != 0 || m.FileType != Regular {
		t.Fatalf("got %+v", m)
	}
}

func TestAssemble_AppleDouble(t *testing.T) {
	r := resolve.Resolve("/._hello")
	synth := synthetic.NewProvider(fakeIconDelegate{icons: map[string][]byte{"/hello": []byte("ICON")}}, appledouble.NewDefaultEncoder())
	m, err := Assemble("/._hello", r, fakeAttrSource{}, synth, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	size, ok := m.EffectiveSize()
	if !ok || size == 0 {
		t.Fatalf("expected non-zero appledouble size, got %v", size)
	}
	if m.FileType != Regular {
		t.Fatalf("expected regular file type, got %v", m.FileType)
	}
}
