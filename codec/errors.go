package codec

import (
	"errors"
	"fmt"
	"strings"

	"astm-mapper/primitive"
)

// Decode and encode failures. They are always wrapped in a *FieldError that
// names the record, position and field.
var (
	ErrMissingRequiredField    = errors.New("missing required field")
	ErrInvalidEnumValue        = errors.New("value not in permitted set")
	ErrLengthExceeded          = errors.New("value exceeds maximum length")
	ErrMalformedLiteral        = primitive.ErrMalformed
	ErrConstantMismatch        = errors.New("constant mismatch")
	ErrUnexpectedTrailingToken = errors.New("unexpected trailing token")
	ErrUnknownField            = errors.New("unknown field")
	ErrUnsupportedValue        = errors.New("unsupported value type")
)

// FieldError reports a failure at one field of one record.
type FieldError struct {
	// Record is the type code of the record schema.
	Record string
	// Position is the 1-based field number within the record (ASTM numbering).
	// Zero when the failure is not tied to a position, e.g. an unknown key.
	Position int
	// Component is the 1-based component number within the field, or zero.
	Component int
	// Field is the field path, e.g. "test[1].assay_code".
	Field string
	// Value is the offending raw token or value.
	Value string
	// Err is one of the package sentinels, possibly wrapping a detail.
	Err error
}

func (e *FieldError) Error() string {
	var sb strings.Builder

	sb.WriteString(e.Record)

	if e.Position > 0 {
		fmt.Fprintf(&sb, ".%d", e.Position)
	}

	if e.Component > 0 {
		fmt.Fprintf(&sb, ".%d", e.Component)
	}

	if e.Field != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Field)
	}

	sb.WriteString(": ")
	sb.WriteString(e.Err.Error())

	if e.Value != "" {
		fmt.Fprintf(&sb, " (%q)", e.Value)
	}

	return sb.String()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// FieldErrors extracts every *FieldError from err, including joined errors.
func FieldErrors(err error) []*FieldError {
	if err == nil {
		return nil
	}

	var fe *FieldError
	if errors.As(err, &fe) {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			var out []*FieldError
			for _, e := range joined.Unwrap() {
				out = append(out, FieldErrors(e)...)
			}

			return out
		}

		return []*FieldError{fe}
	}

	return nil
}

// location tracks where in a record a value is being processed.
type location struct {
	record    string
	position  int
	component int
	path      string
}

func (l location) member(name string, component int) location {
	l.component = component
	l.path = l.path + "." + name

	return l
}

func (l location) item(i int) location {
	l.path = fmt.Sprintf("%s[%d]", l.path, i)
	return l
}

func (l location) fail(value string, err error) *FieldError {
	return &FieldError{
		Record:    l.record,
		Position:  l.position,
		Component: l.component,
		Field:     l.path,
		Value:     value,
		Err:       err,
	}
}
