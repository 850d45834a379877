package document

import (
	"fmt"
	"strings"
)

// Resolver maps template paths to document names.
type Resolver struct {
	// Source holds the documents. Nil means OSSource.
	Source Source
	// Directory is joined in front of relative paths.
	Directory string
	// Extension is appended to paths that do not already end with it.
	Extension string
}

// Name builds the document name for p without checking that it exists.
func (r Resolver) Name(p string) string {
	src := r.source()
	if r.Extension != "" && !strings.HasSuffix(p, r.Extension) {
		p += r.Extension
	}
	if r.Directory != "" && !src.IsAbs(p) {
		p = src.Join(r.Directory, p)
	}
	return p
}

// Resolve returns the document name for p. It fails with ErrEmptyPath
// for an empty path and ErrNotFound when the document does not exist.
func (r Resolver) Resolve(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", ErrEmptyPath
	}
	name := r.Name(p)
	if !r.source().Exists(name) {
		return name, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return name, nil
}

func (r Resolver) source() Source {
	if r.Source == nil {
		return OSSource{}
	}
	return r.Source
}
