package delegate

import (
	"testing"

	"github.com/fusebridge/macfs/appledouble"
	"github.com/fusebridge/macfs/attrs"
	"github.com/fusebridge/macfs/resolve"
	"github.com/fusebridge/macfs/synthetic"
)

type emptyDelegate struct{}

func TestFacade_MissingCapabilitiesReturnDefaults(t *testing.T) {
	synth := synthetic.NewProvider(emptyDelegate{}, appledouble.NewDefaultEncoder())
	f := New(emptyDelegate{}, synth)

	if err := f.Move("/a", "/b"); err != ErrAccessDenied {
		t.Fatalf("Move: got %v, want EACCES", err)
	}
	if err := f.Link("/a", "/b"); err != ErrNotSupported {
		t.Fatalf("Link: got %v, want ENOTSUP", err)
	}
	if err := f.CreateSymlink("/a", "/b"); err != ErrNotSupported {
		t.Fatalf("CreateSymlink: got %v, want ENOTSUP", err)
	}
	if _, err := f.ReadSymlink("/a"); err != ErrNoEntry {
		t.Fatalf("ReadSymlink: got %v, want ENOENT", err)
	}
	if err := f.SetAttributes("/a", attrs.Map{}); err != nil {
		t.Fatalf("SetAttributes without capability should succeed, got %v", err)
	}
}

func TestFacade_ContentsOfDirectory_RootEmptyWithoutCapability(t *testing.T) {
	synth := synthetic.NewProvider(emptyDelegate{}, appledouble.NewDefaultEncoder())
	f := New(emptyDelegate{}, synth)

	names, err := f.ContentsOfDirectoryAtPath("/")
	if err != nil || len(names) != 0 {
		t.Fatalf("got %v, %v", names, err)
	}

	if _, err := f.ContentsOfDirectoryAtPath("/sub"); err == nil {
		t.Fatalf("expected error for non-root without capability")
	}
}

func TestFacade_OpenPrecedence_DirectoryIcon(t *testing.T) {
	synth := synthetic.NewProvider(emptyDelegate{}, appledouble.NewDefaultEncoder())
	f := New(emptyDelegate{}, synth)

	r := resolve.Resolve("/Icon\r")
	h, err := f.Open("/Icon\r", r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := h.([]byte)
	if !ok || len(b) != 0 {
		t.Fatalf("expected empty byte handle, got %v", h)
	}
}

func TestFacade_OpenPrecedence_MissingCapability(t *testing.T) {
	synth := synthetic.NewProvider(emptyDelegate{}, appledouble.NewDefaultEncoder())
	f := New(emptyDelegate{}, synth)

	r := resolve.Resolve("/hello")
	if _, err := f.Open("/hello", r); err != ErrNoEntry {
		t.Fatalf("got %v, want ENOENT", err)
	}
}
