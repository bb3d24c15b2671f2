// Package actfilter matches inventory activities against include/exclude
// filter definitions loaded from the variable-definition config files.
package actfilter

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// defaultField receives bare string and list patterns.
const defaultField = "name"

// Spec is one side of a filter definition: field names mapped to the
// patterns accepted for that field. The config files write specs in three
// shapes - a bare string, a list of strings, or a field mapping whose
// values are again strings or lists - all normalized here at the YAML
// boundary so the matching engine only ever sees field -> patterns.
type Spec struct {
	fields map[string][]string
}

// ByName builds a spec matching the given patterns against the name field.
func ByName(patterns ...string) Spec {
	return ByField(defaultField, patterns...)
}

// ByField builds a single-field spec.
func ByField(field string, patterns ...string) Spec {
	if len(patterns) == 0 {
		return Spec{}
	}
	return Spec{fields: map[string][]string{field: patterns}}
}

// Merge returns a spec carrying the fields of both operands. Patterns for
// fields present on both sides are appended.
func (s Spec) Merge(other Spec) Spec {
	if s.Empty() {
		return other
	}
	merged := Spec{fields: make(map[string][]string, len(s.fields))}
	for field, patterns := range s.fields {
		merged.fields[field] = append([]string(nil), patterns...)
	}
	for field, patterns := range other.fields {
		merged.fields[field] = append(merged.fields[field], patterns...)
	}
	return merged
}

// Empty reports whether the spec carries no patterns at all.
func (s Spec) Empty() bool {
	for _, patterns := range s.fields {
		if len(patterns) > 0 {
			return false
		}
	}
	return true
}

// Fields returns the spec's field names, sorted.
func (s Spec) Fields() []string {
	fields := make([]string, 0, len(s.fields))
	for field := range s.fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Patterns returns the patterns registered for a field.
func (s Spec) Patterns(field string) []string {
	return s.fields[field]
}

// UnmarshalYAML resolves the config files' polymorphic spec shapes.
func (s *Spec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var value string
		if err := node.Decode(&value); err != nil {
			return fmt.Errorf("failed to decode filter pattern: %w", err)
		}
		s.fields = map[string][]string{defaultField: {value}}
		return nil

	case yaml.SequenceNode:
		var values []string
		if err := node.Decode(&values); err != nil {
			return fmt.Errorf("failed to decode filter pattern list: %w", err)
		}
		s.fields = map[string][]string{defaultField: values}
		return nil

	case yaml.MappingNode:
		s.fields = make(map[string][]string, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			var field string
			if err := node.Content[i].Decode(&field); err != nil {
				return fmt.Errorf("failed to decode filter field name: %w", err)
			}
			value := node.Content[i+1]
			switch value.Kind {
			case yaml.ScalarNode:
				var pattern string
				if err := value.Decode(&pattern); err != nil {
					return fmt.Errorf("failed to decode pattern for field %q: %w", field, err)
				}
				s.fields[field] = []string{pattern}
			case yaml.SequenceNode:
				var patterns []string
				if err := value.Decode(&patterns); err != nil {
					return fmt.Errorf("failed to decode pattern list for field %q: %w", field, err)
				}
				s.fields[field] = patterns
			default:
				return fmt.Errorf("unsupported pattern shape for field %q", field)
			}
		}
		return nil
	}

	return fmt.Errorf("unsupported filter spec shape (line %d)", node.Line)
}

// Definition pairs an include spec with an optional exclude spec, keyed in
// the config files as fltr and mask.
type Definition struct {
	Include Spec `yaml:"fltr"`
	Exclude Spec `yaml:"mask"`
}
