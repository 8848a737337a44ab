package codec

import (
	"errors"
	"fmt"
	"strings"

	"astm-mapper/options"
	"astm-mapper/schema"
)

// decodeComponent decodes a single component token. An empty token, or one
// whose members all come out empty ("^"), is an absent component.
func (c *Codec) decodeComponent(loc location, f schema.Field, raw string) (any, bool, error) {
	if raw == "" {
		if f.Required {
			return nil, false, loc.fail("", ErrMissingRequiredField)
		}

		return nil, false, nil
	}

	group, err := c.decodeGroup(loc, f.Component, raw)
	if err != nil {
		return nil, false, err
	}

	if len(group) == 0 {
		if f.Required {
			return nil, false, loc.fail(raw, ErrMissingRequiredField)
		}

		return nil, false, nil
	}

	return group, true, nil
}

// decodeRepeated decodes a token holding zero or more repetition separated
// components. An empty token is an empty sequence; every other token yields
// one instance per group, empty groups included.
func (c *Codec) decodeRepeated(loc location, f schema.Field, raw string) (any, bool, error) {
	if raw == "" {
		if f.Required {
			return nil, false, loc.fail("", ErrMissingRequiredField)
		}

		return []Fields{}, true, nil
	}

	groups := strings.Split(raw, string(c.delims.Repeat))
	items := make([]Fields, 0, len(groups))

	var errs []error

	for i, g := range groups {
		group, err := c.decodeGroup(loc.item(i), f.Component, g)
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

func (c *Codec) decodeGroup(loc location, comp *schema.Component, raw string) (Fields, error) {
	parts := strings.Split(raw, string(c.delims.Component))
	if len(parts) > comp.Len() {
		extra := loc
		extra.component = comp.Len() + 1

		return nil, extra.fail(parts[comp.Len()], ErrUnexpectedTrailingToken)
	}

	group := make(Fields, comp.Len())

	var errs []error

	for i := range comp.Len() {
		mf := comp.Field(i)

		part := ""
		if i < len(parts) {
			part = parts[i]
		}

		v, ok, err := c.decodeScalar(loc.member(mf.Name, i+1), mf, part)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if ok {
			group[mf.Name] = v
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return group, nil
}

func (c *Codec) encodeComponent(loc location, f schema.Field, v any, present bool) (string, error) {
	if !present || v == nil {
		if f.Required {
			return "", loc.fail("", ErrMissingRequiredField)
		}

		return "", nil
	}

	group, ok := asFields(v)
	if !ok {
		return "", loc.fail(fmt.Sprint(v), unsupported(f, v))
	}

	tok, err := c.encodeGroup(loc, f.Component, group)
	if err != nil {
		return "", err
	}

	if tok == "" && f.Required {
		return "", loc.fail("", ErrMissingRequiredField)
	}

	return tok, nil
}

func (c *Codec) encodeRepeated(loc location, f schema.Field, v any, present bool) (string, error) {
	var items []Fields

	if present && v != nil {
		var ok bool

		items, ok = asFieldsList(v)
		if !ok {
			return "", loc.fail(fmt.Sprint(v), unsupported(f, v))
		}
	}

	if len(items) == 0 {
		if f.Required {
			return "", loc.fail("", ErrMissingRequiredField)
		}

		return "", nil
	}

	groups := make([]string, len(items))

	var errs []error

	for i, item := range items {
		tok, err := c.encodeGroup(loc.item(i), f.Component, item)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		groups[i] = tok
	}

	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}

	// a lone empty instance must not collapse into the empty sequence
	if len(groups) == 1 && groups[0] == "" {
		if f.Component.Len() < 2 {
			return "", loc.item(0).fail("", fmt.Errorf("%w: lone empty instance of one-member component %s", ErrUnsupportedValue, f.Component.Name()))
		}

		groups[0] = string(c.delims.Component)
	}

	return strings.Join(groups, string(c.delims.Repeat)), nil
}

func (c *Codec) encodeGroup(loc location, comp *schema.Component, group Fields) (string, error) {
	var errs []error

	for _, name := range sortedKeys(group) {
		if _, _, ok := comp.Lookup(name); !ok {
			errs = append(errs, loc.member(name, 0).fail("", ErrUnknownField))
		}
	}

	parts := make([]string, comp.Len())

	for i := range comp.Len() {
		mf := comp.Field(i)
		v, present := group[mf.Name]

		tok, err := c.encodeScalar(loc.member(mf.Name, i+1), mf, v, present)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		parts[i] = tok
	}

	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}

	if c.policy.Has(options.EncodeTrimComponents) {
		parts = trimTrailing(parts, 0)
	}

	return strings.Join(parts, string(c.delims.Component)), nil
}

func asFields(v any) (Fields, bool) {
	switch v := v.(type) {
	case Fields:
		return v, true
	case map[string]any:
		return Fields(v), true
	default:
		return nil, false
	}
}

func asFieldsList(v any) ([]Fields, bool) {
	switch v := v.(type) {
	case []Fields:
		return v, true
	case []map[string]any:
		out := make([]Fields, len(v))
		for i, m := range v {
			out[i] = m
		}

		return out, true
	case []any:
		out := make([]Fields, len(v))
		for i, item := range v {
			f, ok := asFields(item)
			if !ok {
				return nil, false
			}

			out[i] = f
		}

		return out, true
	default:
		return nil, false
	}
}
