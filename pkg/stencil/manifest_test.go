package stencil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageManifest = `
identifier: page
config:
  directory: views
  path: page.html
filters: [escape]
variables:
  title: Home
children:
  - identifier: header
    config:
      path: header.html
    variables:
      title: <Head>
  - identifier: body
    config:
      path: body.html
      inherit: true
    variables:
      text: body text
`

func TestParseManifest(t *testing.T) {
	page, err := ParseManifest([]byte(pageManifest), WithSource(testSource()), WithLogger(nil))
	require.NoError(t, err)

	assert.Equal(t, "page", page.Identifier())
	assert.Equal(t, []string{"title", "header", "body"}, page.Variables().Keys())

	out, err := page.Render(context.Background())
	require.NoError(t, err)
	assertRendered(t, "<main><header>&lt;Head&gt;</header>|<section>Home:body text</section></main>", out)
}

func TestParseManifest_Errors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		is       error
	}{
		{
			name:     "missing identifier",
			manifest: "config: {path: value.html, directory: views}",
			is:       ErrInvalidManifest,
		},
		{
			name:     "unknown filter",
			manifest: "identifier: v\nconfig: {path: value.html, directory: views}\nfilters: [nope]",
			is:       ErrInvalidManifest,
		},
		{
			name:     "child filters",
			manifest: "identifier: v\nconfig: {path: value.html, directory: views}\nchildren:\n  - identifier: c\n    filters: [escape]",
			is:       ErrInvalidManifest,
		},
		{
			name:     "missing document",
			manifest: "identifier: v\nconfig: {path: nope.html, directory: views}",
			is:       ErrDocumentNotFound,
		},
		{
			name:     "missing child document",
			manifest: "identifier: v\nconfig: {path: value.html, directory: views}\nchildren:\n  - identifier: c\n    config: {path: nope.html}",
			is:       ErrChildExtend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.manifest), WithSource(testSource()))
			assert.ErrorIs(t, err, tt.is)
		})
	}

	_, err := ParseManifest([]byte("identifier: [unclosed"))
	assert.ErrorContains(t, err, "parse manifest")
}

func TestLoadManifest_RelativeDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "value.html"), []byte("{{ value }}!"), 0o644))
	manifest := filepath.Join(dir, "site.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte("identifier: v\nconfig: {path: value.html}\nvariables: {value: hi}\n"), 0o644))

	tpl, err := LoadManifest(manifest, WithLogger(nil))
	require.NoError(t, err)

	out, err := tpl.Render(context.Background())
	require.NoError(t, err)
	assertRendered(t, "hi!", out)
}

func TestLoadManifest_MissingFile(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorContains(t, err, "read manifest")
}
