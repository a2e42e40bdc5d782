// Package schema wraps JSON Schema documents used for request validation,
// model output validation and introspection.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"
)

// Schema is a resolved JSON Schema document. It is immutable and safe for concurrent use.
type Schema struct {
	doc      *jsonschema.Schema
	resolved *jsonschema.Resolved
}

// Parse decodes and resolves a JSON Schema document.
func Parse(raw []byte) (*Schema, error) {
	doc := new(jsonschema.Schema)
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}
	return New(doc)
}

// MustParse is Parse for schemas that are compiled into the binary.
func MustParse(raw string) *Schema {
	s, err := Parse([]byte(raw))
	if err != nil {
		panic(err)
	}
	return s
}

// New resolves doc. The schema must describe an object.
func New(doc *jsonschema.Schema) (*Schema, error) {
	if doc == nil {
		return nil, fmt.Errorf("schema must not be nil")
	}
	if doc.Type != "object" {
		return nil, fmt.Errorf("schema root must be of type object, got %q", doc.Type)
	}
	resolved, err := doc.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve schema: %w", err)
	}
	return &Schema{doc: doc, resolved: resolved}, nil
}

// Validate checks instance against the schema and returns the first violation.
// Instances must be decoded with encoding/json into generic values.
func (s *Schema) Validate(instance any) error {
	return s.resolved.Validate(instance)
}

// Document returns the underlying JSON Schema. Callers must not modify it.
func (s *Schema) Document() *jsonschema.Schema {
	return s.doc
}

// Properties returns the declared top-level property names, sorted.
func (s *Schema) Properties() []string {
	names := make([]string, 0, len(s.doc.Properties))
	for name := range s.doc.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Flatten copies record and adds every declared property it lacks with a nil value.
func (s *Schema) Flatten(record map[string]any) map[string]any {
	out := make(map[string]any, len(s.doc.Properties))
	for _, name := range s.Properties() {
		out[name] = nil
	}
	for k, v := range record {
		out[k] = v
	}
	return out
}

func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.doc)
}
