package codec

import (
	"errors"
	"fmt"
	"slices"

	"astm-mapper/options"
	"astm-mapper/schema"
)

// Codec converts between positional tokens and record instances. A Codec is
// immutable and safe for concurrent use.
type Codec struct {
	delims Delimiters
	policy options.EncodeEnum
}

// New returns a codec for the given delimiters and encoding policy.
func New(d Delimiters, policy options.EncodeEnum) (*Codec, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	return &Codec{delims: d, policy: policy}, nil
}

// Default returns a codec with DefaultDelimiters and options.EncodeDefault.
func Default() *Codec {
	return &Codec{delims: DefaultDelimiters, policy: options.EncodeDefault}
}

// Delimiters returns the codec delimiter set.
func (c *Codec) Delimiters() Delimiters {
	return c.delims
}

// Policy returns the encoding policy.
func (c *Codec) Policy() options.EncodeEnum {
	return c.policy
}

// Decode converts the tokens of one record, token 0 being the type code, into
// an instance of s. Every field failure is reported; the returned error joins
// one *FieldError per failing field.
func (c *Codec) Decode(s *schema.Record, tokens []string) (*Record, error) {
	if len(tokens) > s.Len() && !s.OpenTail() {
		extra := tokens[s.Len()]
		return nil, &FieldError{Record: s.Code(), Position: s.Len() + 1, Value: extra, Err: ErrUnexpectedTrailingToken}
	}

	rec := &Record{Schema: s, Fields: make(Fields, s.Len())}

	var errs []error

	for i := range s.Len() {
		f := s.Field(i)

		raw := ""
		if i < len(tokens) {
			raw = tokens[i]
		}

		loc := location{record: s.Code(), position: i + 1, path: f.Name}

		v, ok, err := c.decodeField(loc, f, raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if ok {
			rec.Fields[f.Name] = v
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if len(tokens) > s.Len() {
		rec.Tail = slices.Clone(tokens[s.Len():])
	}

	return rec, nil
}

// DecodeLine splits line and decodes it against s.
func (c *Codec) DecodeLine(s *schema.Record, line string) (*Record, error) {
	return c.Decode(s, c.delims.Split(line))
}

// Encode converts r into positional tokens in schema order.
func (c *Codec) Encode(r *Record) ([]string, error) {
	if r == nil || r.Schema == nil {
		return nil, fmt.Errorf("%w: record without schema", ErrUnsupportedValue)
	}

	s := r.Schema

	var errs []error

	for _, name := range sortedKeys(r.Fields) {
		if _, _, ok := s.Lookup(name); !ok {
			errs = append(errs, &FieldError{Record: s.Code(), Field: name, Err: ErrUnknownField})
		}
	}

	tokens := make([]string, s.Len(), s.Len()+len(r.Tail))

	for i := range s.Len() {
		f := s.Field(i)
		v, present := r.Fields[f.Name]

		loc := location{record: s.Code(), position: i + 1, path: f.Name}

		tok, err := c.encodeField(loc, f, v, present)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		tokens[i] = tok
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if len(r.Tail) > 0 {
		if !s.OpenTail() {
			return nil, &FieldError{Record: s.Code(), Position: s.Len() + 1, Value: r.Tail[0], Err: ErrUnexpectedTrailingToken}
		}

		tokens = append(tokens, r.Tail...)
	}

	if c.policy.Has(options.EncodeTrimFields) {
		tokens = trimTrailing(tokens, 1)
	}

	return tokens, nil
}

// EncodeLine encodes r and joins the tokens with the field delimiter.
func (c *Codec) EncodeLine(r *Record) (string, error) {
	tokens, err := c.Encode(r)
	if err != nil {
		return "", err
	}

	return c.delims.Join(tokens), nil
}

// trimTrailing drops trailing empty strings, keeping at least keep items.
func trimTrailing(parts []string, keep int) []string {
	n := len(parts)
	for n > keep && parts[n-1] == "" {
		n--
	}

	return parts[:n]
}

func sortedKeys(f Fields) []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}
