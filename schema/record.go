package schema

import (
	"fmt"
	"slices"

	"astm-mapper/internal/common"
	"astm-mapper/primitive"
)

// Origin tells where the descriptor at a record position came from.
type Origin int

const (
	OriginDeclared   Origin = iota // declared by a record without base
	OriginInherited                // copied unchanged from the base
	OriginOverridden               // base position with a replaced descriptor
	OriginAdded                    // appended after the base positions
)

// String returns a human-readable origin name.
func (o Origin) String() string {
	switch o {
	case OriginDeclared:
		return "declared"
	case OriginInherited:
		return "inherited"
	case OriginOverridden:
		return "overridden"
	case OriginAdded:
		return "added"
	default:
		return common.UnknownStr
	}
}

// RecordSpec is the input of BuildRecord.
type RecordSpec struct {
	// Code is the type discriminator. Inherited from Base when empty.
	Code string
	// Name is a human-readable schema name. Inherited from Base when empty.
	Name string
	// Base is the record to extend, or nil.
	Base *Record
	// Fields is the full field list (no base) or the override list (with base).
	// Overrides replace base positions by name, or by Slot when set; unknown
	// names are appended.
	Fields []Field
	// OpenTail accepts tokens beyond the declared positions.
	OpenTail bool
}

// Record is an immutable record schema: a type code plus ordered fields.
type Record struct {
	code     string
	name     string
	base     *Record
	fields   []Field
	origins  []Origin
	index    map[string]int
	openTail bool
}

// BuildRecord resolves inheritance and validates the result. Resolution happens
// here once; decode and encode only read the resolved positions.
func BuildRecord(spec RecordSpec) (*Record, error) {
	r := &Record{
		code:     spec.Code,
		name:     spec.Name,
		base:     spec.Base,
		openTail: spec.OpenTail,
	}

	if spec.Base != nil {
		if r.code == "" {
			r.code = spec.Base.code
		}

		if r.name == "" {
			r.name = spec.Base.name
		}

		if !spec.OpenTail {
			r.openTail = spec.Base.openTail
		}
	}

	if r.name == "" {
		r.name = r.code
	}

	if r.code == "" {
		return nil, fmt.Errorf("record %s: %w: empty type code", r.name, ErrTypeCodeMismatch)
	}

	var err error
	if spec.Base == nil {
		err = r.declare(spec.Fields)
	} else {
		err = r.override(spec.Base, spec.Fields)
	}

	if err != nil {
		return nil, fmt.Errorf("record %s: %w", r.name, err)
	}

	if err := r.check(); err != nil {
		return nil, fmt.Errorf("record %s: %w", r.name, err)
	}

	return r, nil
}

// NewRecord builds a record schema without base.
func NewRecord(code string, fields ...Field) (*Record, error) {
	return BuildRecord(RecordSpec{Code: code, Fields: fields})
}

// Extend builds a record schema from base with the given overrides.
func Extend(base *Record, overrides ...Field) (*Record, error) {
	return BuildRecord(RecordSpec{Base: base, Fields: overrides})
}

// MustRecord panics when err is non-nil.
func MustRecord(r *Record, err error) *Record {
	return Must(r, err)
}

func (r *Record) declare(fields []Field) error {
	r.fields = make([]Field, len(fields))
	r.origins = make([]Origin, len(fields))

	for i, f := range fields {
		if f.Slot != 0 && f.Slot != i+1 {
			return fmt.Errorf("%w: %s: slot %d declared at position %d", ErrInvalidField, f.Name, f.Slot, i+1)
		}

		f.Slot = 0
		r.fields[i] = f
		r.origins[i] = OriginDeclared
	}

	return nil
}

func (r *Record) override(base *Record, overrides []Field) error {
	r.fields = slices.Clone(base.fields)
	r.origins = make([]Origin, len(r.fields))

	for i := range r.origins {
		r.origins[i] = OriginInherited
	}

	claimed := make(map[int]string, len(overrides))
	named := make(map[string]struct{}, len(overrides))

	for _, f := range overrides {
		if _, dup := named[f.Name]; dup {
			return fmt.Errorf("%w: %s overridden twice", ErrAmbiguousOverride, f.Name)
		}

		named[f.Name] = struct{}{}

		var (
			pos int
			ok  bool
		)

		switch {
		case f.Slot > 0:
			pos, ok = f.Slot-1, true
			if pos > len(base.fields) {
				return fmt.Errorf("%w: %s: slot %d beyond %d inherited positions", ErrInvalidField, f.Name, f.Slot, len(base.fields))
			}
		default:
			pos, ok = base.index[f.Name]
		}

		f.Slot = 0

		if !ok || pos == len(base.fields) {
			r.fields = append(r.fields, f)
			r.origins = append(r.origins, OriginAdded)

			continue
		}

		if prev, taken := claimed[pos]; taken {
			return fmt.Errorf("%w: position %d claimed by %s and %s", ErrAmbiguousOverride, pos+1, prev, f.Name)
		}

		claimed[pos] = f.Name
		r.fields[pos] = f
		r.origins[pos] = OriginOverridden
	}

	return nil
}

func (r *Record) check() error {
	if len(r.fields) == 0 {
		return fmt.Errorf("%w: no fields", ErrInvalidField)
	}

	r.index = make(map[string]int, len(r.fields))

	for i, f := range r.fields {
		if err := f.Validate(); err != nil {
			return err
		}

		if _, dup := r.index[f.Name]; dup {
			return fmt.Errorf("field %q at position %d: %w", f.Name, i+1, ErrDuplicateField)
		}

		r.index[f.Name] = i
	}

	first := r.fields[0]
	if first.Kind != primitive.KindConstant || first.Literal != r.code {
		return fmt.Errorf("%w: position 1 is %s %q, want constant %q", ErrTypeCodeMismatch, first.Kind, first.Name, r.code)
	}

	return nil
}

// Code returns the type discriminator.
func (r *Record) Code() string {
	return r.code
}

func (r *Record) Name() string {
	return r.name
}

// Base returns the record this schema extends, or nil.
func (r *Record) Base() *Record {
	return r.base
}

// OpenTail reports whether tokens beyond the declared positions are accepted.
func (r *Record) OpenTail() bool {
	return r.openTail
}

// Len returns the number of declared positions.
func (r *Record) Len() int {
	return len(r.fields)
}

// Field returns the descriptor at 0-based index i.
func (r *Record) Field(i int) Field {
	return r.fields[i]
}

// Origin returns where the descriptor at 0-based index i came from.
func (r *Record) Origin(i int) Origin {
	return r.origins[i]
}

// Fields returns a copy of the ordered descriptors.
func (r *Record) Fields() []Field {
	return slices.Clone(r.fields)
}

// Names returns the field names in positional order.
func (r *Record) Names() []string {
	return fieldNames(r.fields)
}

// Lookup returns the descriptor named name and its 0-based index.
func (r *Record) Lookup(name string) (Field, int, bool) {
	i, ok := r.index[name]
	if !ok {
		return Field{}, -1, false
	}

	return r.fields[i], i, true
}
