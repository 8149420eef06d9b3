package persona

import (
	"fmt"
	"path/filepath"
)

// Registry holds the enumerated persona set, validated eagerly at startup.
// It is immutable after construction and therefore safe for concurrent
// reads without locking.
type Registry struct {
	order []string
	defs  map[string]*Definition
}

// NewRegistry builds a registry from definitions, rejecting duplicate ids.
func NewRegistry(defs ...*Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]*Definition, len(defs))}
	for _, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("persona %q: empty id", d.Name)
		}
		if _, exists := r.defs[d.ID]; exists {
			return nil, fmt.Errorf("persona %q: duplicate id", d.ID)
		}
		r.defs[d.ID] = d
		r.order = append(r.order, d.ID)
	}
	return r, nil
}

// Get returns the definition registered under id.
func (r *Registry) Get(id string) (*Definition, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns definitions in registration order.
func (r *Registry) All() []*Definition {
	defs := make([]*Definition, 0, len(r.order))
	for _, id := range r.order {
		defs = append(defs, r.defs[id])
	}
	return defs
}

// IDs returns persona ids in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Len returns the number of registered personas.
func (r *Registry) Len() int { return len(r.order) }

// Spec is the YAML shape of one persona in a catalog file.
type Spec struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Style    string `yaml:"style"`
	Document string `yaml:"document,omitempty"` // Path relative to the catalog file
}

// Build constructs a validated Registry from catalog specs. Document paths
// are resolved relative to baseDir; any missing file fails the whole build
// so the process never starts with a partially grounded persona set.
func Build(specs []Spec, baseDir string) (*Registry, error) {
	defs := make([]*Definition, 0, len(specs))
	for _, s := range specs {
		if s.Document == "" {
			defs = append(defs, New(s.ID, s.Name, s.Style))
			continue
		}
		path := s.Document
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		d, err := NewFromFile(s.ID, s.Name, s.Style, path)
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	return NewRegistry(defs...)
}
