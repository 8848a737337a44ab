// Package dispatch routes raw records to their record schema by the leading
// type code and runs the codec on them.
//
// A Table is built once at start-up with Register and is read-only afterwards;
// Dispatch, DecodeLine and Encode may then be called from any number of
// goroutines.
package dispatch

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"astm-mapper/codec"
	"astm-mapper/schema"
)

var (
	ErrUnknownTypeCode             = errors.New("unknown type code")
	ErrDuplicateSchemaRegistration = errors.New("duplicate schema registration")
	errNilSchema                   = errors.New("nil record schema")
)

// Dispatcher decodes the tokens of one record selected by its type code.
type Dispatcher interface {
	Dispatch(code string, tokens []string) (*codec.Record, error)
}

// Table maps type codes to record schemas.
type Table struct {
	codec   *codec.Codec
	schemas map[string]*schema.Record
	codes   []string
}

var _ Dispatcher = (*Table)(nil)

// NewTable returns a table using c and registers records in order.
// A nil codec selects codec.Default().
func NewTable(c *codec.Codec, records ...*schema.Record) (*Table, error) {
	if c == nil {
		c = codec.Default()
	}

	t := &Table{codec: c, schemas: make(map[string]*schema.Record, len(records))}

	for _, r := range records {
		if err := t.Register(r); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Register adds r under its type code. Registration is not safe for concurrent
// use with dispatching.
func (t *Table) Register(r *schema.Record) error {
	if r == nil {
		return errNilSchema
	}

	if prev, ok := t.schemas[r.Code()]; ok {
		return fmt.Errorf("%w: %q already maps to %s, cannot add %s",
			ErrDuplicateSchemaRegistration, r.Code(), prev.Name(), r.Name())
	}

	t.schemas[r.Code()] = r
	t.codes = append(t.codes, r.Code())

	return nil
}

// Lookup returns the schema registered under code.
func (t *Table) Lookup(code string) (*schema.Record, bool) {
	r, ok := t.schemas[code]
	return r, ok
}

// Codes returns the registered type codes in registration order.
func (t *Table) Codes() []string {
	return slices.Clone(t.codes)
}

// Len returns the number of registered schemas.
func (t *Table) Len() int {
	return len(t.codes)
}

// Codec returns the codec used by the table.
func (t *Table) Codec() *codec.Codec {
	return t.codec
}

// WithCodec returns a copy of t that uses c, e.g. for a message whose header
// declared its own delimiters. Later registrations on either table do not
// affect the other.
func (t *Table) WithCodec(c *codec.Codec) *Table {
	return &Table{codec: c, schemas: maps.Clone(t.schemas), codes: slices.Clone(t.codes)}
}

// Dispatch decodes tokens, token 0 being the type code, with the schema
// registered under code.
func (t *Table) Dispatch(code string, tokens []string) (*codec.Record, error) {
	s, ok := t.schemas[code]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTypeCode, code)
	}

	return t.codec.Decode(s, tokens)
}

// DecodeLine splits a raw record line and dispatches it on its first token.
func (t *Table) DecodeLine(line string) (*codec.Record, error) {
	tokens := t.codec.Delimiters().Split(line)
	return t.Dispatch(tokens[0], tokens)
}

// Encode encodes r, which must be an instance of a registered schema.
func (t *Table) Encode(r *codec.Record) ([]string, error) {
	if r == nil || r.Schema == nil {
		return nil, errNilSchema
	}

	s, ok := t.schemas[r.Code()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTypeCode, r.Code())
	}

	if s != r.Schema {
		return nil, fmt.Errorf("%w: %q is registered as %s, record uses %s",
			ErrUnknownTypeCode, r.Code(), s.Name(), r.Schema.Name())
	}

	return t.codec.Encode(r)
}

// EncodeLine encodes r and joins the tokens with the field delimiter.
func (t *Table) EncodeLine(r *codec.Record) (string, error) {
	tokens, err := t.Encode(r)
	if err != nil {
		return "", err
	}

	return t.codec.Delimiters().Join(tokens), nil
}
