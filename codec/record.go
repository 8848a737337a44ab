package codec

import (
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"astm-mapper/primitive"
	"astm-mapper/schema"
)

// Fields maps field names to decoded values. Value types per kind:
//
//	Text, Enum, Constant, Delimiters  string
//	Integer                           int64
//	Decimal                           decimal.Decimal
//	Date                              time.Time (UTC)
//	DateTime                          primitive.DateTime (UTC, literal width kept)
//	Component                         Fields
//	Repeated                          []Fields
//
// Absent optional values have no key. Not-used fields never appear.
type Fields map[string]any

// Record is a record instance tagged with the schema it was decoded against
// (or is to be encoded with).
type Record struct {
	Schema *schema.Record
	Fields Fields
	// Tail holds raw tokens beyond the declared positions of an open-tail schema.
	Tail []string
}

// NewRecord returns an instance of s carrying fields.
func NewRecord(s *schema.Record, fields Fields) *Record {
	if fields == nil {
		fields = Fields{}
	}

	return &Record{Schema: s, Fields: fields}
}

// Code returns the type code of the record schema.
func (r *Record) Code() string {
	if r.Schema == nil {
		return ""
	}

	return r.Schema.Code()
}

// Clone returns a deep copy of r; the schema is shared.
func (r *Record) Clone() *Record {
	return &Record{Schema: r.Schema, Fields: r.Fields.Clone(), Tail: slices.Clone(r.Tail)}
}

// Clone returns a deep copy of f.
func (f Fields) Clone() Fields {
	out := maps.Clone(f)

	for k, v := range out {
		switch v := v.(type) {
		case Fields:
			out[k] = v.Clone()
		case []Fields:
			items := make([]Fields, len(v))
			for i, item := range v {
				items[i] = item.Clone()
			}

			out[k] = items
		}
	}

	return out
}

// Has reports whether name carries a value.
func (f Fields) Has(name string) bool {
	_, ok := f[name]
	return ok
}

// Text returns the string value of name, or "".
func (f Fields) Text(name string) string {
	s, _ := f[name].(string)
	return s
}

func (f Fields) Int(name string) (int64, bool) {
	n, ok := f[name].(int64)
	return n, ok
}

func (f Fields) Decimal(name string) (decimal.Decimal, bool) {
	d, ok := f[name].(decimal.Decimal)
	return d, ok
}

// Time returns the instant of a date or datetime value.
func (f Fields) Time(name string) (time.Time, bool) {
	switch v := f[name].(type) {
	case time.Time:
		return v, true
	case primitive.DateTime:
		return v.Time, true
	default:
		return time.Time{}, false
	}
}

// Component returns the component value of name, or nil.
func (f Fields) Component(name string) Fields {
	c, _ := f[name].(Fields)
	return c
}

// Repeated returns the repeated component value of name; absent values read as
// an empty sequence.
func (f Fields) Repeated(name string) []Fields {
	r, _ := f[name].([]Fields)
	return r
}
