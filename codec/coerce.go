package codec

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"astm-mapper/primitive"
	"astm-mapper/schema"
)

// Coerce builds an instance of s from loosely typed values, such as those
// produced by a YAML or JSON decoder: numbers may arrive as int or float64,
// dates as strings, time.Time or primitive.DateTime, components as map[string]any and repeated
// components as []any. Values are converted to the canonical Go types listed
// on Fields and validated against their descriptors. Required fields are not
// enforced here; Encode does that.
func Coerce(s *schema.Record, in map[string]any) (*Record, error) {
	rec := NewRecord(s, make(Fields, len(in)))

	var errs []error

	for _, name := range sortedKeys(in) {
		f, pos, ok := s.Lookup(name)
		if !ok {
			errs = append(errs, &FieldError{Record: s.Code(), Field: name, Err: ErrUnknownField})
			continue
		}

		loc := location{record: s.Code(), position: pos + 1, path: name}

		v, ok, err := coerceField(loc, f, in[name])
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if ok {
			rec.Fields[name] = v
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return rec, nil
}

func coerceField(loc location, f schema.Field, v any) (any, bool, error) {
	if v == nil || f.Kind == primitive.KindNotUsed {
		return nil, false, nil
	}

	switch f.Kind {
	case primitive.KindComponent:
		m, ok := asFields(v)
		if !ok {
			return nil, false, loc.fail(fmt.Sprint(v), unsupported(f, v))
		}

		group, err := coerceGroup(loc, f.Component, m)
		if err != nil {
			return nil, false, err
		}

		return group, true, nil
	case primitive.KindRepeated:
		list, ok := asFieldsList(v)
		if !ok {
			return nil, false, loc.fail(fmt.Sprint(v), unsupported(f, v))
		}

		items := make([]Fields, 0, len(list))

		var errs []error

		for i, m := range list {
			group, err := coerceGroup(loc.item(i), f.Component, m)
			if err != nil {
				errs = append(errs, err)
				continue
			}

			items = append(items, group)
		}

		if len(errs) > 0 {
			return nil, false, errors.Join(errs...)
		}

		return items, true, nil
	}

	text, err := coerceText(f, v)
	if err != nil {
		return nil, false, loc.fail(fmt.Sprint(v), err)
	}

	if text == "" {
		return nil, false, nil
	}

	out, err := parseScalar(f, text)
	if err != nil {
		return nil, false, loc.fail(text, err)
	}

	return out, true, nil
}

func coerceGroup(loc location, comp *schema.Component, m Fields) (Fields, error) {
	group := make(Fields, len(m))

	var errs []error

	for _, name := range sortedKeys(m) {
		mf, i, ok := comp.Lookup(name)
		if !ok {
			errs = append(errs, loc.member(name, 0).fail("", ErrUnknownField))
			continue
		}

		v, ok, err := coerceField(loc.member(name, i+1), mf, m[name])
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if ok {
			group[name] = v
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return group, nil
}

// coerceText renders a loosely typed scalar as the textual literal of f.
func coerceText(f schema.Field, v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case time.Time:
		if f.Kind == primitive.KindDate {
			return primitive.FormatDate(v), nil
		}

		return primitive.FormatDateTime(primitive.DateTime{Time: v}), nil
	case primitive.DateTime:
		return primitive.FormatDateTime(v), nil
	case decimal.Decimal:
		return primitive.FormatDecimal(v), nil
	case float64:
		if f.Kind == primitive.KindDecimal {
			return formatScalar(f, v)
		}

		return fmt.Sprint(v), nil
	case bool:
		return "", unsupported(f, v)
	default:
		if _, err := toInt64(v); err == nil {
			return fmt.Sprint(v), nil
		}

		return "", unsupported(f, v)
	}
}
