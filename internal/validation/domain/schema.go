package domain

import (
	"fmt"
)

// Field binds an ordered list of rules to one field name. All rules apply, and the
// sanitized value of each rule feeds the next.
type Field struct {
	Name  string
	Rules []Rule
}

// NewField creates a Field with the given rules.
func NewField(name string, rules ...Rule) Field {
	return Field{Name: name, Rules: rules}
}

// Schema is an ordered, immutable mapping from field names to rules.
// Iteration order is declaration order.
type Schema struct {
	Name   string
	fields []Field
	index  map[string]int
}

// NewSchema builds a Schema, validating every rule and rejecting duplicate names.
func NewSchema(name string, fields ...Field) (*Schema, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: schema %q has no fields", ErrInvalidSchema, name)
	}

	s := &Schema{
		Name:   name,
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}

	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: field name must not be empty", ErrInvalidSchema)
		}
		if _, exists := s.index[f.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrInvalidSchema, f.Name)
		}
		if len(f.Rules) == 0 {
			return nil, fmt.Errorf("%w: field %q has no rules", ErrInvalidSchema, f.Name)
		}
		for i := range f.Rules {
			if err := f.Rules[i].Validate(); err != nil {
				return nil, fmt.Errorf("field %q rule %d: %w", f.Name, i, err)
			}
		}

		rules := make([]Rule, len(f.Rules))
		copy(rules, f.Rules)
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, Field{Name: f.Name, Rules: rules})
	}

	return s, nil
}

// MustSchema is like NewSchema but panics on error. Intended for static factories.
func MustSchema(name string, fields ...Field) *Schema {
	s, err := NewSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns a copy of the schema fields in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// FieldNames returns the field names in declaration order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Rules returns the rules declared for a field.
func (s *Schema) Rules(field string) ([]Rule, bool) {
	i, ok := s.index[field]
	if !ok {
		return nil, false
	}
	return s.fields[i].Rules, true
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	return len(s.fields)
}
