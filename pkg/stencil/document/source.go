package document

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Source provides read access to documents.
type Source interface {
	// Join joins path elements using the source's separator.
	Join(elem ...string) string
	// IsAbs reports whether name is rooted and should not be joined to a directory.
	IsAbs(name string) bool
	// Exists reports whether name is a readable regular document.
	Exists(name string) bool
	// ReadFile returns the contents of name.
	ReadFile(name string) ([]byte, error)
}

// OSSource reads documents from the local filesystem.
type OSSource struct{}

// Join implements Source.
func (OSSource) Join(elem ...string) string { return filepath.Join(elem...) }

// IsAbs implements Source.
func (OSSource) IsAbs(name string) bool { return filepath.IsAbs(name) }

// Exists implements Source.
func (OSSource) Exists(name string) bool {
	info, err := os.Stat(name)
	return err == nil && info.Mode().IsRegular()
}

// ReadFile implements Source.
func (OSSource) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

// FSSource reads documents from an fs.FS, such as an embed.FS or fstest.MapFS.
// Names use forward slashes. A leading slash is ignored.
type FSSource struct {
	fsys fs.FS
}

// NewFSSource returns a Source backed by fsys.
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

func (s *FSSource) clean(name string) (string, error) {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if name == "" {
		name = "."
	}
	if !fs.ValidPath(name) {
		return "", &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	return name, nil
}

// Join implements Source.
func (s *FSSource) Join(elem ...string) string { return path.Join(elem...) }

// IsAbs implements Source.
func (s *FSSource) IsAbs(name string) bool { return strings.HasPrefix(name, "/") }

// Exists implements Source.
func (s *FSSource) Exists(name string) bool {
	name, err := s.clean(name)
	if err != nil {
		return false
	}
	info, err := fs.Stat(s.fsys, name)
	return err == nil && info.Mode().IsRegular()
}

// ReadFile implements Source.
func (s *FSSource) ReadFile(name string) ([]byte, error) {
	name, err := s.clean(name)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(s.fsys, name)
}

// ErrNotFound indicates a document does not exist in its Source.
var ErrNotFound = errors.New("document not found")

// ErrEmptyPath indicates a document path was empty.
var ErrEmptyPath = errors.New("document path is empty")
