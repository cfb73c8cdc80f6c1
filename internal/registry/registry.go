package registry

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Registry is an immutable mapping from program id to DEX display name.
// It is built once at startup and safe for concurrent reads.
type Registry struct {
	names map[string]string
}

// New builds a Registry from an id->name mapping. Ids and names are
// trimmed; empty ids or names, and ids that collide after trimming,
// are construction errors.
func New(programs map[string]string) (*Registry, error) {
	names := make(map[string]string, len(programs))
	for id, name := range programs {
		id = strings.TrimSpace(id)
		name = strings.TrimSpace(name)
		if id == "" {
			return nil, fmt.Errorf("empty program id")
		}
		if name == "" {
			return nil, fmt.Errorf("empty name for program %s", id)
		}
		if _, ok := names[id]; ok {
			return nil, fmt.Errorf("duplicate program id: %s", id)
		}
		names[id] = name
	}
	return &Registry{names: names}, nil
}

// LoadFile reads a YAML file with a single top-level id->name mapping.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read programs file: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse programs file: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("programs file is empty")
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("programs file must be a mapping of id to name")
	}

	programs := make(map[string]string, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key := strings.TrimSpace(doc.Content[i].Value)
		if _, ok := programs[key]; ok {
			return nil, fmt.Errorf("duplicate program id: %s", key)
		}
		programs[key] = doc.Content[i+1].Value
	}

	return New(programs)
}

// Lookup returns the display name for a program id.
func (r *Registry) Lookup(id string) (string, bool) {
	name, ok := r.names[id]
	return name, ok
}

// Len returns the number of registered programs.
func (r *Registry) Len() int {
	return len(r.names)
}

// IDs returns the registered program ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.names))
	for id := range r.names {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
