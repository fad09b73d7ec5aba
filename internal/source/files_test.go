package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSet_AddAndResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a/./b.cairo", []byte("fn a() {}\nfn b() {}\n"))

	if got := fs.FilePath(id); got != "a/b.cairo" {
		t.Fatalf("FilePath() = %q", got)
	}
	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{9, LineCol{1, 10}},
		{10, LineCol{2, 1}},
		{12, LineCol{2, 3}},
		{20, LineCol{3, 1}},
	}
	f, _ := fs.Get(id)
	for _, tt := range tests {
		if got := f.Position(tt.off); got != tt.want {
			t.Errorf("Position(%d) = %+v, want %+v", tt.off, got, tt.want)
		}
	}
	start, end := fs.Resolve(Span{File: id, Start: 10, End: 12})
	if start != (LineCol{2, 1}) || end != (LineCol{2, 3}) {
		t.Fatalf("Resolve() = %+v %+v", start, end)
	}
	if fs.FilePath(42) != "" {
		t.Fatalf("unknown file must have empty path")
	}
	if start, _ := fs.Resolve(Span{File: 42}); start != (LineCol{}) {
		t.Fatalf("unknown file resolved to %+v", start)
	}
}

func TestFileSet_LoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.cairo")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFa\r\nb\rc"), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f, ok := fs.Get(id)
	if !ok {
		t.Fatalf("file not found")
	}
	if string(f.Content) != "a\nb\rc" {
		t.Fatalf("content = %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 || f.Flags&FileVirtual != 0 {
		t.Fatalf("flags = %b", f.Flags)
	}

	again := fs.AddVirtual(path, []byte("new"))
	if latest, ok := fs.Lookup(path); !ok || latest != again {
		t.Fatalf("Lookup() = %d, %v; want %d", latest, ok, again)
	}
	if _, err := fs.Load(filepath.Join(dir, "missing.cairo")); err == nil {
		t.Fatalf("Load of a missing file succeeded")
	}
}
