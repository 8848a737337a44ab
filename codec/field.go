package codec

import (
	"errors"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"astm-mapper/options"
	"astm-mapper/primitive"
	"astm-mapper/schema"
)

func (c *Codec) decodeField(loc location, f schema.Field, raw string) (any, bool, error) {
	switch f.Kind {
	case primitive.KindComponent:
		return c.decodeComponent(loc, f, raw)
	case primitive.KindRepeated:
		return c.decodeRepeated(loc, f, raw)
	default:
		return c.decodeScalar(loc, f, raw)
	}
}

// decodeScalar resolves one token of a non-nested field. The boolean result is
// false when the field carries no value.
func (c *Codec) decodeScalar(loc location, f schema.Field, raw string) (any, bool, error) {
	switch f.Kind {
	case primitive.KindNotUsed:
		return nil, false, nil
	case primitive.KindDelimiters:
		if raw == "" {
			return nil, false, nil
		}

		if raw != c.delims.Definition() {
			return nil, false, loc.fail(raw, fmt.Errorf("%w: want delimiter definition %q", ErrConstantMismatch, c.delims.Definition()))
		}

		return raw, true, nil
	}

	text := raw

	if text == "" {
		switch {
		case f.HasDefault():
			text = f.DefaultValue()
		case f.Kind == primitive.KindConstant && !f.Required:
			text = f.Literal
		case f.Required:
			return nil, false, loc.fail("", ErrMissingRequiredField)
		default:
			return nil, false, nil
		}
	} else if f.Kind.IsEscaped() {
		text = c.delims.UnescapeText(text)
	}

	v, err := parseScalar(f, text)
	if err != nil {
		return nil, false, loc.fail(raw, err)
	}

	return v, true, nil
}

// parseScalar converts the unescaped text of a scalar field into its value.
func parseScalar(f schema.Field, text string) (any, error) {
	switch f.Kind {
	case primitive.KindText, primitive.KindDelimiters:
		return text, nil
	case primitive.KindEnumerated:
		if !f.Allows(text) {
			return nil, fmt.Errorf("%w: want one of %v", ErrInvalidEnumValue, f.Values)
		}

		return text, nil
	case primitive.KindConstant:
		if text != f.Literal {
			return nil, fmt.Errorf("%w: want %q", ErrConstantMismatch, f.Literal)
		}

		return text, nil
	case primitive.KindInteger:
		return primitive.ParseInteger(text)
	case primitive.KindDecimal:
		return primitive.ParseDecimal(text)
	case primitive.KindDate:
		return primitive.ParseDate(text)
	case primitive.KindDateTime:
		return primitive.ParseDateTime(text)
	default:
		return nil, fmt.Errorf("%w: %s is not a scalar kind", ErrUnsupportedValue, f.Kind)
	}
}

func (c *Codec) encodeField(loc location, f schema.Field, v any, present bool) (string, error) {
	switch f.Kind {
	case primitive.KindComponent:
		return c.encodeComponent(loc, f, v, present)
	case primitive.KindRepeated:
		return c.encodeRepeated(loc, f, v, present)
	default:
		return c.encodeScalar(loc, f, v, present)
	}
}

func (c *Codec) encodeScalar(loc location, f schema.Field, v any, present bool) (string, error) {
	switch f.Kind {
	case primitive.KindNotUsed:
		return "", nil
	case primitive.KindConstant:
		return f.Literal, nil
	case primitive.KindDelimiters:
		return c.delims.Definition(), nil
	}

	text := ""

	if present && v != nil {
		s, err := formatScalar(f, v)
		if err != nil {
			return "", loc.fail(fmt.Sprint(v), err)
		}

		text = s
	}

	if text == "" {
		switch {
		case f.HasDefault() && c.policy.Has(options.EncodeDefaults):
			text = f.DefaultValue()
		case f.Required:
			return "", loc.fail("", ErrMissingRequiredField)
		default:
			return "", nil
		}
	}

	if f.Kind == primitive.KindEnumerated && !f.Allows(text) {
		return "", loc.fail(text, fmt.Errorf("%w: want one of %v", ErrInvalidEnumValue, f.Values))
	}

	if f.MaxLength > 0 && utf8.RuneCountInString(text) > f.MaxLength {
		return "", loc.fail(text, fmt.Errorf("%w: %d > %d", ErrLengthExceeded, utf8.RuneCountInString(text), f.MaxLength))
	}

	if f.Kind.IsEscaped() {
		text = c.delims.EscapeText(text)
	}

	return text, nil
}

// formatScalar renders a caller supplied value as the unescaped canonical text
// of f. Strings are accepted for every kind and canonicalised.
func formatScalar(f schema.Field, v any) (string, error) {
	switch f.Kind {
	case primitive.KindText, primitive.KindEnumerated:
		switch v := v.(type) {
		case string:
			return v, nil
		case fmt.Stringer:
			return v.String(), nil
		}
	case primitive.KindInteger:
		n, err := toInt64(v)
		if err != nil {
			return "", err
		}

		return primitive.FormatInteger(n), nil
	case primitive.KindDecimal:
		d, err := toDecimal(v)
		if err != nil {
			return "", err
		}

		return primitive.FormatDecimal(d), nil
	case primitive.KindDate:
		t, err := toDate(v)
		if err != nil {
			return "", err
		}

		return primitive.FormatDate(t), nil
	case primitive.KindDateTime:
		dt, err := toDateTime(v)
		if err != nil {
			return "", err
		}

		return primitive.FormatDateTime(dt), nil
	}

	return "", unsupported(f, v)
}

var errIntegerRange = errors.New("integer out of range")

func toInt64(v any) (int64, error) {
	switch v := v.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return uintToInt64(uint64(v))
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return uintToInt64(v)
	case string:
		if v == "" {
			return 0, fmt.Errorf("%w: empty integer", ErrMalformedLiteral)
		}

		return primitive.ParseInteger(v)
	default:
		return 0, fmt.Errorf("%w: %T for integer", ErrUnsupportedValue, v)
	}
}

func uintToInt64(n uint64) (int64, error) {
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %w: %d", ErrMalformedLiteral, errIntegerRange, n)
	}

	return int64(n), nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch v := v.(type) {
	case decimal.Decimal:
		return v, nil
	case *decimal.Decimal:
		if v == nil {
			return decimal.Decimal{}, fmt.Errorf("%w: nil decimal", ErrUnsupportedValue)
		}

		return *v, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Decimal{}, fmt.Errorf("%w: decimal %v", ErrMalformedLiteral, v)
		}

		return decimal.NewFromFloat(v), nil
	case float32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return decimal.Decimal{}, fmt.Errorf("%w: decimal %v", ErrMalformedLiteral, v)
		}

		return decimal.NewFromFloat32(v), nil
	case string:
		return primitive.ParseDecimal(v)
	default:
		n, err := toInt64(v)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("%w: %T for decimal", ErrUnsupportedValue, v)
		}

		return decimal.NewFromInt(n), nil
	}
}

func toDate(v any) (time.Time, error) {
	switch v := v.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return time.Time{}, fmt.Errorf("%w: nil time", ErrUnsupportedValue)
		}

		return *v, nil
	case string:
		return primitive.ParseDate(v)
	default:
		return time.Time{}, fmt.Errorf("%w: %T for %s", ErrUnsupportedValue, v, primitive.KindDate)
	}
}

// toDateTime accepts a primitive.DateTime, a time.Time (written with seconds)
// or a literal of either width.
func toDateTime(v any) (primitive.DateTime, error) {
	switch v := v.(type) {
	case primitive.DateTime:
		return v, nil
	case *primitive.DateTime:
		if v == nil {
			return primitive.DateTime{}, fmt.Errorf("%w: nil datetime", ErrUnsupportedValue)
		}

		return *v, nil
	case time.Time:
		return primitive.DateTime{Time: v}, nil
	case *time.Time:
		if v == nil {
			return primitive.DateTime{}, fmt.Errorf("%w: nil time", ErrUnsupportedValue)
		}

		return primitive.DateTime{Time: *v}, nil
	case string:
		return primitive.ParseDateTime(v)
	default:
		return primitive.DateTime{}, fmt.Errorf("%w: %T for %s", ErrUnsupportedValue, v, primitive.KindDateTime)
	}
}

func unsupported(f schema.Field, v any) error {
	return fmt.Errorf("%w: %T for %s", ErrUnsupportedValue, v, f.Kind)
}
