// Package catalog provides the YAML schema catalog format: parsing, include
// resolution, structural validation into diagnostics, and building of
// immutable record schemas and dispatch tables.
//
// Catalogs turn vendor field lists into data: a dialect is a YAML file that
// declares components and records, optionally extending the records of an
// included base catalog.
//
// # Schema Overview
//
//	version: "1"
//	name: mindray
//	include: astm.yaml
//	components:
//	  - name: Sample
//	    fields:
//	      - {name: sample_id, kind: text, length: 10}
//	      - {name: tray_no, kind: not_used}
//	records:
//	  - name: MindrayOrder
//	    extends: Order
//	    fields:
//	      - {name: sample_id, kind: component, component: Sample}
//	      - {name: test, kind: repeated, component: Test}
//	      - {name: report_type, kind: enum, values: [O, Q, F, X], default: F}
//	dispatch: [Header, MindrayOrder, Terminator]
//
// Field kinds are the catalog names of primitive.KindEnum: text, integer,
// decimal, date, datetime, constant (with value), enum (with values),
// component and repeated (with component), not_used and delimiters.
//
// A record without extends declares its full positional layout and needs a
// code. A record with extends lists overrides: an override replaces the base
// field of the same name, or the base field at slot when slot is set, and
// keeps its position. Unknown names are appended.
//
// The dispatch list names the records routed by type code. The root file's
// list wins; without one, the list of the nearest include that has one is
// used.
//
// # Validation
//
// Validate collects every structural problem (unknown kinds, dangling
// component or base references, inheritance cycles, duplicate names) into
// diagnostic.Diagnostics, with "did you mean" suggestions for misspelt names.
// Build runs the validation and then resolves schemas; descriptor violations
// reported by package schema surface as invalid_schema diagnostics.
package catalog
