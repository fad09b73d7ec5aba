package source

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"fortio.org/safecast"
)

// FileID indexes a FileSet.
type FileID uint32

// FileFlags records how a file entered the set.
type FileFlags uint8

const (
	// FileVirtual marks text added from memory rather than read from disk.
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// File is one source text and its line table.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	Flags   FileFlags

	newlines []uint32 // offsets of '\n'
}

// LineCol is 1-based.
type LineCol struct {
	Line uint32
	Col  uint32
}

// Position converts a byte offset into a line and column.
func (f *File) Position(off uint32) LineCol {
	// столько '\n' до off, столько и строк выше
	line, _ := slices.BinarySearch(f.newlines, off)
	var lineStart uint32
	if line > 0 {
		lineStart = f.newlines[line-1] + 1
	}
	return LineCol{Line: toU32(line) + 1, Col: off - lineStart + 1}
}

// FileSet owns the text macros are expanded against.
// The driver adds files while plugins resolve paths, so access is locked.
type FileSet struct {
	mu     sync.RWMutex
	files  []*File
	byPath map[string]FileID
}

func NewFileSet() *FileSet {
	return &FileSet{byPath: make(map[string]FileID)}
}

// Add always allocates a new id; the path then refers to the newest one.
func (s *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	path = filepath.ToSlash(filepath.Clean(path))
	f := &File{Path: path, Content: content, Flags: flags}
	for i, b := range content {
		if b == '\n' {
			f.newlines = append(f.newlines, toU32(i))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f.ID = FileID(toU32(len(s.files)))
	s.files = append(s.files, f)
	s.byPath[path] = f.ID
	return f.ID
}

// AddVirtual adds in-memory text.
func (s *FileSet) AddVirtual(name string, content []byte) FileID {
	return s.Add(name, content, FileVirtual)
}

// Load reads path, strips a UTF-8 BOM and turns CRLF into LF.
func (s *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path comes from the command line
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var flags FileFlags
	if trimmed, ok := bytes.CutPrefix(content, bom); ok {
		content = trimmed
		flags |= FileHadBOM
	}
	if bytes.Contains(content, []byte("\r\n")) {
		content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
		flags |= FileNormalizedCRLF
	}
	return s.Add(path, content, flags), nil
}

func (s *FileSet) Get(id FileID) (*File, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(id) >= len(s.files) {
		return nil, false
	}
	return s.files[id], true
}

// Lookup returns the newest file added under path.
func (s *FileSet) Lookup(path string) (FileID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPath[filepath.ToSlash(filepath.Clean(path))]
	return id, ok
}

// FilePath implements syntax.DB; unknown ids map to "".
func (s *FileSet) FilePath(id FileID) string {
	if f, ok := s.Get(id); ok {
		return f.Path
	}
	return ""
}

// Resolve returns the line and column of both ends of span.
func (s *FileSet) Resolve(span Span) (start, end LineCol) {
	f, ok := s.Get(span.File)
	if !ok {
		return LineCol{}, LineCol{}
	}
	return f.Position(span.Start), f.Position(span.End)
}

func toU32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("source offset overflow: %w", err))
	}
	return v
}
