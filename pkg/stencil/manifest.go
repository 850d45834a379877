package stencil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/stencil/pkg/stencil/config"
	"github.com/randalmurphal/stencil/pkg/stencil/filter"
)

// ErrInvalidManifest indicates a manifest could not be turned into a template tree.
var ErrInvalidManifest = errors.New("invalid manifest")

// Manifest describes a template tree in YAML.
//
//	identifier: page
//	config:
//	  directory: views
//	  path: page.html
//	filters: [escape, minify]
//	variables:
//	  title: Home
//	children:
//	  - identifier: nav
//	    config:
//	      path: nav.html
//	    variables:
//	      active: home
//
// Children are built with Extend, so they inherit the parent's
// configuration and share its dispatcher. Filters may only be listed on
// the root manifest.
type Manifest struct {
	Identifier string                              `yaml:"identifier"`
	Config     *orderedmap.OrderedMap[string, any] `yaml:"config"`
	Variables  *orderedmap.OrderedMap[string, any] `yaml:"variables"`
	Filters    []string                            `yaml:"filters"`
	Children   []Manifest                          `yaml:"children"`
}

// LoadManifest reads a manifest file and builds its template tree.
// When the root config has no directory, documents are resolved relative
// to the manifest file.
func LoadManifest(path string, opts ...Option) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := DecodeManifest(data)
	if err != nil {
		return nil, err
	}
	if m.Config == nil {
		m.Config = orderedmap.New[string, any]()
	}
	if _, ok := m.Config.Get(OptionDirectory); !ok {
		m.Config.Set(OptionDirectory, filepath.Dir(path))
	}
	return m.Build(opts...)
}

// ParseManifest builds a template tree from manifest YAML.
func ParseManifest(data []byte, opts ...Option) (*Template, error) {
	m, err := DecodeManifest(data)
	if err != nil {
		return nil, err
	}
	return m.Build(opts...)
}

// DecodeManifest parses manifest YAML without building templates.
func DecodeManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// Build creates the template tree described by m.
func (m *Manifest) Build(opts ...Option) (*Template, error) {
	if m.Identifier == "" {
		return nil, fmt.Errorf("%w: root identifier is required", ErrInvalidManifest)
	}
	t, err := New(m.Identifier, config.FromOrdered(m.Config), opts...)
	if err != nil {
		return nil, err
	}
	if err := t.Use(m.Filters...); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidManifest, m.Identifier, err)
	}
	if err := m.populate(t); err != nil {
		return nil, err
	}
	return t, nil
}

// populate binds m's variables on t and extends t with m's children.
func (m *Manifest) populate(t *Template) error {
	t.SetVariables(variablesFromOrdered(m.Variables), false)

	for i := range m.Children {
		cm := &m.Children[i]
		if len(cm.Filters) > 0 {
			return fmt.Errorf("%w: %s: filters are only allowed on the root", ErrInvalidManifest, cm.Identifier)
		}
		child, err := t.Extend(cm.Identifier, config.FromOrdered(cm.Config))
		if err != nil {
			return err
		}
		if err := cm.populate(child); err != nil {
			return err
		}
	}
	return nil
}

// variablesFromOrdered binds decoded YAML values in document order.
func variablesFromOrdered(om *orderedmap.OrderedMap[string, any]) *filter.Variables {
	vars := filter.NewVariables()
	if om == nil {
		return vars
	}
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		vars.Set(pair.Key, pair.Value)
	}
	return vars
}
