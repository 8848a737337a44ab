package schema

import (
	"errors"
	"fmt"
	"slices"
	"unicode/utf8"

	"astm-mapper/primitive"
	"astm-mapper/utils"
)

// Field describes one position of a record or a component.
// Values are plain data; the With*/As* helpers return modified copies.
type Field struct {
	// Name is unique within the owning schema.
	Name string
	// Kind selects coercion and validation.
	Kind primitive.KindEnum
	// MaxLength bounds encoded Text, Integer, Decimal and Enum values. Zero means unbounded.
	MaxLength int
	// Required fields must be present (or defaulted) on decode and encode.
	Required bool
	// Default is the textual value used when the token is present but empty.
	Default *string
	// Values is the permitted set of an Enum field.
	Values []string
	// Literal is the value of a Constant field.
	Literal string
	// Component is the nested schema of Component and Repeated fields.
	Component *Component
	// Slot is a 1-based position used when extending a base record to replace
	// the field at that position under a different name. Zero means "by name".
	Slot int
}

func Text(name string, maxLength int) Field {
	return Field{Name: name, Kind: primitive.KindText, MaxLength: maxLength}
}

func Integer(name string) Field {
	return Field{Name: name, Kind: primitive.KindInteger}
}

func Decimal(name string) Field {
	return Field{Name: name, Kind: primitive.KindDecimal}
}

func Date(name string) Field {
	return Field{Name: name, Kind: primitive.KindDate}
}

func DateTime(name string) Field {
	return Field{Name: name, Kind: primitive.KindDateTime}
}

// Constant declares a field that always carries literal.
func Constant(name, literal string) Field {
	return Field{Name: name, Kind: primitive.KindConstant, Literal: literal}
}

// Enum declares an enumerated text field restricted to values.
func Enum(name string, values ...string) Field {
	return Field{Name: name, Kind: primitive.KindEnumerated, Values: slices.Clone(values)}
}

func ComponentOf(name string, c *Component) Field {
	return Field{Name: name, Kind: primitive.KindComponent, Component: c}
}

func RepeatedOf(name string, c *Component) Field {
	return Field{Name: name, Kind: primitive.KindRepeated, Component: c}
}

func NotUsed(name string) Field {
	return Field{Name: name, Kind: primitive.KindNotUsed}
}

// Delimiters declares the header field carrying the delimiter definition.
func Delimiters(name string) Field {
	return Field{Name: name, Kind: primitive.KindDelimiters}
}

// AsRequired returns a copy of f marked as required.
func (f Field) AsRequired() Field {
	f.Required = true
	return f
}

// WithDefault returns a copy of f with the given textual default.
func (f Field) WithDefault(v string) Field {
	f.Default = &v
	return f
}

// WithLength returns a copy of f with the given maximum length.
func (f Field) WithLength(n int) Field {
	f.MaxLength = n
	return f
}

// AtSlot returns a copy of f that replaces the base field at 1-based position n.
func (f Field) AtSlot(n int) Field {
	f.Slot = n
	return f
}

// HasDefault reports whether a default is declared.
func (f Field) HasDefault() bool {
	return f.Default != nil
}

// DefaultValue returns the declared default or "".
func (f Field) DefaultValue() string {
	if f.Default == nil {
		return ""
	}

	return *f.Default
}

// Allows reports whether v belongs to the permitted set of an Enum field.
func (f Field) Allows(v string) bool {
	return slices.Contains(f.Values, v)
}

// Validate checks the descriptor invariants: the populated constraints must
// match the kind.
func (f Field) Validate() error {
	if !isValidIdent(f.Name) {
		return fmt.Errorf("%w: invalid name %q", ErrInvalidField, f.Name)
	}

	if !f.Kind.IsValid() {
		return fmt.Errorf("%w: %s: unknown kind %d", ErrInvalidField, f.Name, f.Kind)
	}

	if f.Kind.IsNested() != (f.Component != nil) {
		return fmt.Errorf("%w: %s: nested component must be set exactly for component kinds, got %s", ErrInvalidField, f.Name, f.Kind)
	}

	if f.MaxLength < 0 || (f.MaxLength > 0 && !f.Kind.HasLength()) {
		return fmt.Errorf("%w: %s: length %d not applicable to %s", ErrInvalidField, f.Name, f.MaxLength, f.Kind)
	}

	if len(f.Values) > 0 && f.Kind != primitive.KindEnumerated {
		return fmt.Errorf("%w: %s: values are only allowed on enum fields", ErrInvalidField, f.Name)
	}

	if f.Literal != "" && f.Kind != primitive.KindConstant {
		return fmt.Errorf("%w: %s: literal is only allowed on constant fields", ErrInvalidField, f.Name)
	}

	if f.Slot < 0 {
		return fmt.Errorf("%w: %s: negative slot", ErrInvalidField, f.Name)
	}

	switch f.Kind {
	case primitive.KindConstant:
		if f.Literal == "" {
			return fmt.Errorf("%w: %s: constant without literal", ErrInvalidField, f.Name)
		}
	case primitive.KindEnumerated:
		if len(f.Values) == 0 {
			return fmt.Errorf("%w: %s: enum without values", ErrInvalidField, f.Name)
		}

		for i, v := range f.Values {
			if v == "" || slices.Contains(f.Values[:i], v) {
				return fmt.Errorf("%w: %s: empty or repeated enum value %q", ErrInvalidField, f.Name, v)
			}
		}
	case primitive.KindNotUsed, primitive.KindDelimiters:
		if f.Required || f.Default != nil {
			return fmt.Errorf("%w: %s: %s cannot be required or defaulted", ErrInvalidField, f.Name, f.Kind)
		}
	}

	if f.Default != nil {
		return f.validateDefault(*f.Default)
	}

	return nil
}

func (f Field) validateDefault(v string) error {
	var err error

	switch f.Kind {
	case primitive.KindInteger:
		_, err = primitive.ParseInteger(v)
	case primitive.KindDecimal:
		_, err = primitive.ParseDecimal(v)
	case primitive.KindDate:
		_, err = primitive.ParseDate(v)
	case primitive.KindDateTime:
		_, err = primitive.ParseDateTime(v)
	case primitive.KindEnumerated:
		if !f.Allows(v) {
			err = fmt.Errorf("default %q not in %v", v, f.Values)
		}
	case primitive.KindConstant:
		if v != f.Literal {
			err = fmt.Errorf("default %q differs from literal %q", v, f.Literal)
		}
	case primitive.KindComponent, primitive.KindRepeated:
		err = errors.New("defaults are declared on component members")
	}

	if err == nil && f.MaxLength > 0 && utf8.RuneCountInString(v) > f.MaxLength {
		err = fmt.Errorf("default %q longer than %d", v, f.MaxLength)
	}

	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidField, f.Name, err)
	}

	return nil
}

// isValidIdent checks that a field name is a lowercase-friendly identifier.
func isValidIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !isLetter(r) && r != '_' {
				return false
			}
		} else if !isLetter(r) && !utils.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
