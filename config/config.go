// Package config provides the tree-structured configuration document used
// by workers and execution contexts. A Document is copyable and
// default-constructible, addressed by dotted paths, and marshals to and
// from YAML.
package config

import (
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Document is a tree of configuration values. The zero value is an empty
// document ready for use.
type Document struct {
	root map[string]any
}

// New creates an empty document.
func New() Document {
	return Document{root: make(map[string]any)}
}

// ParseYAML builds a document from YAML bytes.
func ParseYAML(data []byte) (Document, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Document{}, fmt.Errorf("config: parsing yaml: %w", err)
	}
	if root == nil {
		root = make(map[string]any)
	}
	return Document{root: root}, nil
}

// YAML renders the document as YAML bytes.
func (d Document) YAML() ([]byte, error) {
	data, err := yaml.Marshal(d.rootOrEmpty())
	if err != nil {
		return nil, fmt.Errorf("config: rendering yaml: %w", err)
	}
	return data, nil
}

// Get returns the value at the dotted path and whether it exists.
// Intermediate path segments must be maps.
func (d Document) Get(path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	var current any = d.rootOrEmpty()
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// String returns the string at path, or def when absent or not a string.
func (d Document) String(path, def string) string {
	v, ok := d.Get(path)
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

// Int returns the integer at path, or def when absent or not an integer.
func (d Document) Int(path string, def int) int {
	v, ok := d.Get(path)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return def
	}
}

// Bool returns the boolean at path, or def when absent or not a boolean.
func (d Document) Bool(path string, def bool) bool {
	v, ok := d.Get(path)
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// Set stores a value at the dotted path, creating intermediate maps as
// needed. Setting through a non-map intermediate replaces it.
func (d *Document) Set(path string, value any) {
	if path == "" {
		return
	}
	if d.root == nil {
		d.root = make(map[string]any)
	}

	segments := strings.Split(path, ".")
	node := d.root
	for _, segment := range segments[:len(segments)-1] {
		child, ok := node[segment].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[segment] = child
		}
		node = child
	}
	node[segments[len(segments)-1]] = value
}

// Clone creates a deep copy of the document.
func (d Document) Clone() Document {
	if len(d.root) == 0 {
		return New()
	}

	// YAML round trip keeps the copy honest for nested maps and slices.
	data, err := yaml.Marshal(d.root)
	if err != nil {
		return Document{root: shallowCopy(d.root)}
	}
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Document{root: shallowCopy(d.root)}
	}
	return Document{root: root}
}

// IsZero reports whether the document holds no values.
func (d Document) IsZero() bool {
	return len(d.root) == 0
}

func (d Document) rootOrEmpty() map[string]any {
	if d.root == nil {
		return map[string]any{}
	}
	return d.root
}

func shallowCopy(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Safe provides mutex-guarded access to a shared document for callers
// outside the worker deferred-configuration protocol.
type Safe struct {
	mu  sync.RWMutex
	doc Document
}

// NewSafe wraps a document for shared access.
func NewSafe(doc Document) *Safe {
	return &Safe{doc: doc}
}

// Get returns a deep copy of the current document.
func (s *Safe) Get() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Update atomically replaces the document.
func (s *Safe) Update(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
}
