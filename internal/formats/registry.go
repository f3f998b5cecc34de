package formats

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/catalog.yaml
var configFiles embed.FS

// Registry indexes the embedded format catalog
type Registry struct {
	formats []Format
	byName  map[string]int
	mu      sync.RWMutex
}

// New creates a registry from the embedded catalog
func New() (*Registry, error) {
	data, err := configFiles.ReadFile("config/catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from catalog YAML
func Parse(data []byte) (*Registry, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}

	r := &Registry{
		formats: catalog.Formats,
		byName:  make(map[string]int, len(catalog.Formats)),
	}
	for i, f := range catalog.Formats {
		key := strings.ToLower(f.Name)
		if _, dup := r.byName[key]; dup {
			return nil, fmt.Errorf("duplicate format in catalog: %s", f.Name)
		}
		r.byName[key] = i
	}
	return r, nil
}

// Lookup returns the catalog entry for a format name, ignoring case and any
// ":filter" suffix.
func (r *Registry) Lookup(name string) (Format, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	base, _, _ := strings.Cut(name, ":")
	i, ok := r.byName[strings.ToLower(strings.TrimSpace(base))]
	if !ok {
		return Format{}, false
	}
	return r.formats[i], true
}

// All returns every catalog entry in catalog order.
func (r *Registry) All() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Format, len(r.formats))
	copy(out, r.formats)
	return out
}

// Allowed describes the configured names in configuration order. Names the
// catalog does not know get a bare entry so operators can allow any target.
func (r *Registry) Allowed(names []string) []Format {
	out := make([]Format, 0, len(names))
	for _, name := range names {
		if f, ok := r.Lookup(name); ok {
			if !strings.EqualFold(f.Name, name) {
				// keep the configured spelling, e.g. "txt:Text"
				f.Name = name
			}
			out = append(out, f)
			continue
		}
		out = append(out, Format{Name: name})
	}
	return out
}
