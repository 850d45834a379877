package stencil

import (
	"testing"
	"testing/fstest"

	"github.com/andreyvit/diff"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/stencil/pkg/stencil/config"
	"github.com/randalmurphal/stencil/pkg/stencil/document"
)

// testDocs is the document set most tests render from.
func testDocs() fstest.MapFS {
	return fstest.MapFS{
		"views/hello.html":   {Data: []byte(`<h1>{{testvar}}</h1><br/><p>{{testvar2}}</p>`)},
		"views/page.html":    {Data: []byte(`<main>{{ header }}|{{ body }}</main>`)},
		"views/header.html":  {Data: []byte(`<header>{{ title }}</header>`)},
		"views/body.html":    {Data: []byte(`<section>{{ title }}:{{ text }}</section>`)},
		"views/self.html":    {Data: []byte(`[{{ self }}]`)},
		"views/value.html":   {Data: []byte(`{{ value }}`)},
		"views/list.html":    {Data: []byte(`{% for item in items %}{{ item }};{% endfor %}`)},
		"views/broken.html":  {Data: []byte(`{% if %}`)},
		"views/spaced.html":  {Data: []byte("<p>\n    {{ value }}\n</p>")},
		"views/greeting.txt": {Data: []byte("Hi ${name}, ${missing}")},
	}
}

// testSource returns a Source over testDocs.
func testSource() document.Source {
	return document.NewFSSource(testDocs())
}

// newTemplate builds a template over testDocs rooted at views/.
func newTemplate(t *testing.T, identifier, path string, opts ...Option) *Template {
	t.Helper()
	cfg := config.New(map[string]any{
		OptionDirectory: "views",
		OptionPath:      path,
	})
	opts = append([]Option{WithSource(testSource()), WithLogger(nil)}, opts...)
	tpl, err := New(identifier, cfg, opts...)
	require.NoError(t, err)
	return tpl
}

// assertRendered fails with a line diff when got differs from want.
func assertRendered(t *testing.T, want, got string) {
	t.Helper()
	if want != got {
		t.Errorf("rendered output mismatch (-want +got):\n%s", diff.LineDiff(want, got))
	}
}
