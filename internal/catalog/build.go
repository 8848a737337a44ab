package catalog

import (
	"fmt"
	"io/fs"
	"slices"

	"astm-mapper/codec"
	"astm-mapper/dispatch"
	"astm-mapper/internal/diagnostic"
	"astm-mapper/primitive"
	"astm-mapper/schema"
)

// Catalog holds the resolved schemas of a validated catalog source.
type Catalog struct {
	name       string
	components map[string]*schema.Component
	compOrder  []string
	records    map[string]*schema.Record
	order      []string
	dispatch   []*schema.Record
}

// Open loads name from fsys with its includes and builds it. The returned
// error is non-nil when loading fails or the diagnostics contain errors.
func Open(fsys fs.FS, name string) (*Catalog, *diagnostic.Diagnostics, error) {
	src, err := Load(fsys, name)
	if err != nil {
		return nil, nil, err
	}

	cat, res := Build(src)
	if res.HasErrors() {
		return nil, res, fmt.Errorf("catalog %s: %w", name, res.Error())
	}

	return cat, res, nil
}

// Build validates src and resolves every component and record into immutable
// schemas. The catalog is nil when the diagnostics contain errors.
func Build(src *Source) (*Catalog, *diagnostic.Diagnostics) {
	res := &diagnostic.Diagnostics{}
	if src == nil || src.Root == nil {
		res.AddError("catalog_is_nil", "catalog source is nil", "", "")
		return nil, res
	}

	idx := newIndex(src, res)
	validate(src, idx, res)

	if res.HasErrors() {
		return nil, res
	}

	b := &builder{
		idx: idx,
		res: res,
		cat: &Catalog{
			name:       src.Name(),
			components: make(map[string]*schema.Component, len(idx.componentNames)),
			records:    make(map[string]*schema.Record, len(idx.recordNames)),
		},
		building: map[string]bool{},
	}

	for _, name := range idx.componentNames {
		b.component(name)
	}

	if res.HasErrors() {
		return nil, res
	}

	for _, name := range idx.recordNames {
		b.record(name)
	}

	if res.HasErrors() {
		return nil, res
	}

	b.dispatch(src.Dispatch())

	if res.HasErrors() {
		return nil, res
	}

	return b.cat, res
}

type builder struct {
	idx      *index
	res      *diagnostic.Diagnostics
	cat      *Catalog
	building map[string]bool
}

func (b *builder) component(name string) {
	def := b.idx.components[name]

	fields := make([]schema.Field, 0, len(def.Fields))
	for _, fd := range def.Fields {
		f, err := b.field(fd)
		if err != nil {
			b.res.AddError("invalid_schema", err.Error(), name, fd.Name)
			return
		}

		fields = append(fields, f)
	}

	c, err := schema.NewComponent(name, fields...)
	if err != nil {
		b.res.AddError("invalid_schema", err.Error(), name, "")
		return
	}

	b.cat.components[name] = c
	b.cat.compOrder = append(b.cat.compOrder, name)
}

// record builds name after its base. It returns nil when the record or one of
// its ancestors failed; the failure is reported once, on the failing record.
func (b *builder) record(name string) *schema.Record {
	if r, ok := b.cat.records[name]; ok {
		return r
	}

	if b.building[name] {
		return nil
	}

	b.building[name] = true
	defer delete(b.building, name)

	def := b.idx.records[name]

	var base *schema.Record
	if def.Extends != "" {
		if base = b.record(def.Extends); base == nil {
			return nil
		}
	}

	fields := make([]schema.Field, 0, len(def.Fields))
	for _, fd := range def.Fields {
		f, err := b.field(fd)
		if err != nil {
			b.res.AddError("invalid_schema", err.Error(), name, fd.Name)
			return nil
		}

		fields = append(fields, f)
	}

	r, err := schema.BuildRecord(schema.RecordSpec{
		Code:     def.Code,
		Name:     def.Name,
		Base:     base,
		Fields:   fields,
		OpenTail: def.OpenTail,
	})
	if err != nil {
		b.res.AddError("invalid_schema", err.Error(), name, "")
		return nil
	}

	if base != nil {
		b.narrowed(r, base)
	}

	b.cat.records[name] = r
	b.cat.order = append(b.cat.order, name)

	return r
}

// narrowed reports overrides that drop a base requirement.
func (b *builder) narrowed(r, base *schema.Record) {
	for i := range base.Len() {
		if r.Origin(i) != schema.OriginOverridden {
			continue
		}

		was, now := base.Field(i), r.Field(i)
		if was.Required && !now.Required {
			b.res.AddInfo("narrowed_required",
				fmt.Sprintf("position %d: required %s %q overridden by optional %s %q", i+1, was.Kind.Name(), was.Name, now.Kind.Name(), now.Name),
				r.Name(), now.Name)
		}
	}
}

func (b *builder) field(fd FieldDef) (schema.Field, error) {
	kind, ok := primitive.ParseKind(fd.Kind)
	if !ok {
		return schema.Field{}, fmt.Errorf("unknown kind %q", fd.Kind)
	}

	f := schema.Field{
		Name:      fd.Name,
		Kind:      kind,
		MaxLength: fd.Length,
		Required:  fd.Required,
		Values:    slices.Clone([]string(fd.Values)),
		Literal:   fd.Value,
		Slot:      fd.Slot,
	}

	if fd.Default != nil {
		f = f.WithDefault(*fd.Default)
	}

	if kind.IsNested() {
		c, ok := b.cat.components[fd.Component]
		if !ok {
			return schema.Field{}, fmt.Errorf("component %q is not available", fd.Component)
		}

		f.Component = c
	}

	return f, nil
}

func (b *builder) dispatch(names []string) {
	codes := map[string]string{}

	for _, name := range names {
		r := b.cat.records[name]

		if prev, ok := codes[r.Code()]; ok {
			b.res.AddError("duplicate_type_code",
				fmt.Sprintf("type code %q dispatched to both %s and %s", r.Code(), prev, name), name, "")

			continue
		}

		codes[r.Code()] = name
		b.cat.dispatch = append(b.cat.dispatch, r)
	}
}

// Name returns the dialect name.
func (c *Catalog) Name() string {
	return c.name
}

// Record returns the record schema declared under name.
func (c *Catalog) Record(name string) (*schema.Record, bool) {
	r, ok := c.records[name]
	return r, ok
}

// Component returns the component schema declared under name.
func (c *Catalog) Component(name string) (*schema.Component, bool) {
	comp, ok := c.components[name]
	return comp, ok
}

// RecordNames returns the record names in build order (bases first).
func (c *Catalog) RecordNames() []string {
	return slices.Clone(c.order)
}

// ComponentNames returns the component names in declaration order.
func (c *Catalog) ComponentNames() []string {
	return slices.Clone(c.compOrder)
}

// Dispatch returns the records of the dispatch list.
func (c *Catalog) Dispatch() []*schema.Record {
	return slices.Clone(c.dispatch)
}

// Table builds a dispatch table over the dispatch list. A nil codec selects
// codec.Default.
func (c *Catalog) Table(cd *codec.Codec) (*dispatch.Table, error) {
	return dispatch.NewTable(cd, c.dispatch...)
}
