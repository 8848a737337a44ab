package catalog

import (
	"fmt"
	"slices"

	"astm-mapper/internal/diagnostic"
	"astm-mapper/internal/match"
	"astm-mapper/primitive"
)

const (
	suggestMinScore = 0.5
	suggestLimit    = 3
)

// index is the merged namespace of a Source: every component and record of
// every loaded file, first declaration wins.
type index struct {
	components     map[string]*ComponentDef
	componentNames []string
	records        map[string]*RecordDef
	recordNames    []string
}

func newIndex(src *Source, res *diagnostic.Diagnostics) *index {
	idx := &index{
		components: map[string]*ComponentDef{},
		records:    map[string]*RecordDef{},
	}

	for _, f := range src.Files {
		for i := range f.Components {
			c := &f.Components[i]
			if c.Name == "" {
				res.AddError("missing_name", fmt.Sprintf("%s: component #%d has no name", f.Path, i+1), "", "")
				continue
			}

			if _, ok := idx.components[c.Name]; ok {
				res.AddError("duplicate_component", fmt.Sprintf("%s: duplicate component %q", f.Path, c.Name), c.Name, "")
				continue
			}

			idx.components[c.Name] = c
			idx.componentNames = append(idx.componentNames, c.Name)
		}

		for i := range f.Records {
			r := &f.Records[i]
			if r.Name == "" {
				res.AddError("missing_name", fmt.Sprintf("%s: record #%d has no name", f.Path, i+1), "", "")
				continue
			}

			if _, ok := idx.records[r.Name]; ok {
				res.AddError("duplicate_record", fmt.Sprintf("%s: duplicate record %q", f.Path, r.Name), r.Name, "")
				continue
			}

			idx.records[r.Name] = r
			idx.recordNames = append(idx.recordNames, r.Name)
		}
	}

	return idx
}

// Validate checks the structure of a catalog source: names, kinds, component
// and base references, inheritance cycles and the dispatch list. It does not
// build schemas, so descriptor invariants such as enum defaults are left to
// Build.
func Validate(src *Source) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if src == nil || src.Root == nil {
		res.AddError("catalog_is_nil", "catalog source is nil", "", "")
		return res
	}

	validate(src, newIndex(src, res), res)

	return res
}

func validate(src *Source, idx *index, res *diagnostic.Diagnostics) {
	used := map[string]bool{}

	for _, name := range idx.componentNames {
		for i, fd := range idx.components[name].Fields {
			kind, ok := validateField(res, idx, name, i, fd)
			if ok && kind.IsNested() {
				res.AddError("nested_component",
					fmt.Sprintf("component field %q cannot be a %s", fd.Name, kind.Name()), name, fd.Name)
			}
		}
	}

	for _, name := range idx.recordNames {
		r := idx.records[name]

		switch {
		case r.Extends == "":
			if r.Code == "" {
				res.AddError("missing_code", "record without base must declare a code", name, "")
			}
		case idx.records[r.Extends] == nil:
			res.AddError("unknown_base", fmt.Sprintf("unknown base record %q", r.Extends), name, "",
				match.Suggest(r.Extends, idx.recordNames, suggestMinScore, suggestLimit)...)
		}

		for i, fd := range r.Fields {
			kind, ok := validateField(res, idx, name, i, fd)
			if ok && kind.IsNested() {
				used[fd.Component] = true
			}
		}
	}

	for _, name := range idx.recordNames {
		if cycle := extendsCycle(idx, name); cycle != nil {
			res.AddError("extends_cycle", fmt.Sprintf("inheritance cycle %v", cycle), name, "")
		}
	}

	for _, name := range src.Dispatch() {
		if idx.records[name] == nil {
			res.AddError("unknown_dispatch_record", fmt.Sprintf("dispatch names unknown record %q", name), "", "",
				match.Suggest(name, idx.recordNames, suggestMinScore, suggestLimit)...)
		}
	}

	if len(src.Dispatch()) == 0 {
		res.AddWarning("empty_dispatch", "catalog declares no dispatch list", "", "")
	}

	for _, name := range idx.componentNames {
		if !used[name] {
			res.AddWarning("unused_component", fmt.Sprintf("component %q is not referenced by any record", name), name, "")
		}
	}
}

// validateField checks one field definition. It returns the parsed kind and
// whether the kind is known.
func validateField(res *diagnostic.Diagnostics, idx *index, owner string, i int, fd FieldDef) (primitive.KindEnum, bool) {
	if fd.Name == "" {
		res.AddError("missing_name", fmt.Sprintf("field #%d has no name", i+1), owner, "")
	}

	kind, ok := primitive.ParseKind(fd.Kind)
	if !ok {
		res.AddError("unknown_kind", fmt.Sprintf("unknown kind %q", fd.Kind), owner, fd.Name,
			match.Suggest(fd.Kind, primitive.KindNames(), suggestMinScore, suggestLimit)...)

		return kind, false
	}

	switch {
	case kind.IsNested() && fd.Component == "":
		res.AddError("missing_component", fmt.Sprintf("%s field must name a component", kind.Name()), owner, fd.Name)
	case kind.IsNested() && idx.components[fd.Component] == nil:
		res.AddError("unknown_component", fmt.Sprintf("unknown component %q", fd.Component), owner, fd.Name,
			match.Suggest(fd.Component, idx.componentNames, suggestMinScore, suggestLimit)...)
	case !kind.IsNested() && fd.Component != "":
		res.AddError("unexpected_component", fmt.Sprintf("%s field cannot reference component %q", kind.Name(), fd.Component), owner, fd.Name)
	}

	return kind, true
}

// extendsCycle returns the names on the inheritance loop starting at name, or
// nil when the chain terminates.
func extendsCycle(idx *index, name string) []string {
	var chain []string

	for cur := name; cur != ""; {
		if slices.Contains(chain, cur) {
			if cur != name {
				// loop does not pass through name; reported on its members
				return nil
			}

			return append(chain, cur)
		}

		chain = append(chain, cur)

		r := idx.records[cur]
		if r == nil {
			return nil
		}

		cur = r.Extends
	}

	return nil
}
