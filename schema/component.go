package schema

import (
	"fmt"
	"slices"
)

// Component is an ordered group of fields embedded inside one token and
// separated by the component delimiter. Position equals the field index.
type Component struct {
	name   string
	fields []Field
	index  map[string]int
}

// NewComponent builds an immutable component schema.
func NewComponent(name string, fields ...Field) (*Component, error) {
	c := &Component{
		name:   name,
		fields: slices.Clone(fields),
		index:  make(map[string]int, len(fields)),
	}

	if len(c.fields) == 0 {
		return nil, fmt.Errorf("component %s: %w: no fields", name, ErrInvalidField)
	}

	for i, f := range c.fields {
		if f.Kind.IsNested() {
			return nil, fmt.Errorf("component %s: field %q: %w", name, f.Name, ErrNestedComponent)
		}

		if f.Slot != 0 {
			return nil, fmt.Errorf("component %s: %w: %s: slots apply to record overrides only", name, ErrInvalidField, f.Name)
		}

		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("component %s: %w", name, err)
		}

		if _, ok := c.index[f.Name]; ok {
			return nil, fmt.Errorf("component %s: field %q: %w", name, f.Name, ErrDuplicateField)
		}

		c.index[f.Name] = i
	}

	return c, nil
}

// MustComponent is like NewComponent but panics on error.
func MustComponent(name string, fields ...Field) *Component {
	return Must(NewComponent(name, fields...))
}

func (c *Component) Name() string {
	return c.name
}

// Len returns the number of positions.
func (c *Component) Len() int {
	return len(c.fields)
}

// Field returns the descriptor at 0-based index i.
func (c *Component) Field(i int) Field {
	return c.fields[i]
}

// Fields returns a copy of the ordered descriptors.
func (c *Component) Fields() []Field {
	return slices.Clone(c.fields)
}

// Lookup returns the descriptor named name and its 0-based index.
func (c *Component) Lookup(name string) (Field, int, bool) {
	i, ok := c.index[name]
	if !ok {
		return Field{}, -1, false
	}

	return c.fields[i], i, true
}

// Names returns the field names in positional order.
func (c *Component) Names() []string {
	return fieldNames(c.fields)
}

func fieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}

	return names
}
