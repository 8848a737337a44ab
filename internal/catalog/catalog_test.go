package catalog

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astm-mapper/codec"
	"astm-mapper/dispatch"
	"astm-mapper/primitive"
	"astm-mapper/schema"
)

const baseYAML = `
version: "1"
name: base
records:
  - name: Order
    code: O
    fields:
      - {name: type, kind: constant, value: O}
      - {name: seq, kind: integer, required: true}
      - {name: sample_id, kind: text, length: 12, required: true}
      - {name: priority, kind: enum, values: [S, R], default: S}
  - name: Terminator
    code: L
    fields:
      - {name: type, kind: constant, value: L}
      - {name: seq, kind: integer}
      - {name: code, kind: enum, values: N, default: N}
dispatch: [Order, Terminator]
`

const dialectYAML = `
name: dialect
include: base.yaml
components:
  - name: Sample
    fields:
      - {name: sample_id, kind: text, length: 10}
      - {name: tray_no, kind: not_used}
records:
  - name: DialectOrder
    extends: Order
    fields:
      - {name: sample_id, kind: component, component: Sample}
      - {name: report_type, kind: enum, values: [O, F], default: F}
`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"base.yaml":         {Data: []byte(baseYAML)},
		"sub/dialect.yaml":  {Data: []byte(dialectYAML)},
		"sub/base.yaml":     {Data: []byte(baseYAML)},
		"cycle/a.yaml":      {Data: []byte("include: b.yaml\n")},
		"cycle/b.yaml":      {Data: []byte("include: a.yaml\n")},
		"broken/root.yaml":  {Data: []byte("records: {nope\n")},
		"unknown/root.yaml": {Data: []byte("recordz: []\n")},
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "1", f.Version)
	assert.Equal(t, "base", f.Name)
	require.Len(t, f.Records, 2)

	order := f.Records[0]
	assert.Equal(t, "O", order.Code)
	require.Len(t, order.Fields, 4)
	assert.True(t, order.Fields[1].Required)
	assert.Equal(t, StringOrArray{"S", "R"}, order.Fields[3].Values)
	require.NotNil(t, order.Fields[3].Default)
	assert.Equal(t, "S", *order.Fields[3].Default)

	// single scalar values
	assert.Equal(t, StringOrArray{"N"}, f.Records[1].Fields[2].Values)
	assert.True(t, f.Records[1].Fields[2].Values.IsSingle())

	f, err = Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, "1", f.Version)

	_, err = Parse([]byte("records: [}"))
	require.Error(t, err)

	_, err = Parse([]byte("bogus: 1\n"))
	require.Error(t, err)
}

func TestMarshal_RoundTrip(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(dialectYAML))
	require.NoError(t, err)

	data, err := Marshal(f)
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, f, back)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	src, err := Load(testFS(), "sub/dialect.yaml")
	require.NoError(t, err)

	require.Len(t, src.Files, 2)
	assert.Equal(t, "sub/base.yaml", src.Files[0].Path)
	assert.Equal(t, "sub/dialect.yaml", src.Files[1].Path)
	assert.Same(t, src.Root, src.Files[1])
	assert.Equal(t, "dialect", src.Name())

	// inherited from the include
	assert.Equal(t, []string{"Order", "Terminator"}, src.Dispatch())

	_, err = Load(testFS(), "cycle/a.yaml")
	require.ErrorIs(t, err, ErrIncludeCycle)

	_, err = Load(testFS(), "broken/root.yaml")
	require.Error(t, err)

	_, err = Load(testFS(), "unknown/root.yaml")
	require.Error(t, err)

	_, err = Load(testFS(), "missing.yaml")
	require.Error(t, err)
}

func TestBuild(t *testing.T) {
	t.Parallel()

	fsys := testFS()
	fsys["sub/dialect.yaml"] = &fstest.MapFile{Data: []byte(dialectYAML + "dispatch: [DialectOrder, Terminator]\n")}

	cat, res, err := Open(fsys, "sub/dialect.yaml")
	require.NoError(t, err)
	require.True(t, res.IsValid(), res.Error())

	assert.Equal(t, "dialect", cat.Name())
	assert.Equal(t, []string{"Order", "Terminator", "DialectOrder"}, cat.RecordNames())
	assert.Equal(t, []string{"Sample"}, cat.ComponentNames())

	order, ok := cat.Record("DialectOrder")
	require.True(t, ok)

	base, _ := cat.Record("Order")
	assert.Same(t, base, order.Base())
	assert.Equal(t, "O", order.Code())
	assert.Equal(t, []string{"type", "seq", "sample_id", "priority", "report_type"}, order.Names())
	assert.Equal(t, primitive.KindComponent, order.Field(2).Kind)
	assert.Equal(t, schema.OriginOverridden, order.Origin(2))
	assert.Equal(t, schema.OriginAdded, order.Origin(4))

	// sample_id was required text in the base
	require.Len(t, res.Infos, 1)
	assert.Equal(t, "narrowed_required", res.Infos[0].Code)
	assert.Equal(t, "sample_id", res.Infos[0].FieldPath)

	sample, ok := cat.Component("Sample")
	require.True(t, ok)
	assert.Same(t, sample, order.Field(2).Component)

	tbl, err := cat.Table(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"O", "L"}, tbl.Codes())

	rec, err := tbl.DecodeLine("O|1|12345||")
	require.NoError(t, err)
	assert.Equal(t, codec.Fields{
		"type":        "O",
		"seq":         int64(1),
		"sample_id":   codec.Fields{"sample_id": "12345"},
		"priority":    "S",
		"report_type": "F",
	}, rec.Fields)

	_, err = tbl.DecodeLine("Z|1")
	require.ErrorIs(t, err, dispatch.ErrUnknownTypeCode)
}

func TestBuild_InvalidSchema(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(`
records:
  - name: Order
    code: O
    fields:
      - {name: type, kind: constant, value: O}
      - {name: priority, kind: enum, values: [S, R], default: X}
dispatch: [Order]
`))
	require.NoError(t, err)

	cat, res := Build(Single(f))
	assert.Nil(t, cat)
	assert.Equal(t, []string{"invalid_schema"}, res.Codes())
	assert.Equal(t, "Order", res.Errors[0].Record)
}

func TestBuild_DuplicateTypeCode(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(`
records:
  - name: Order
    code: O
    fields: [{name: type, kind: constant, value: O}]
  - name: OtherOrder
    extends: Order
    fields: [{name: note, kind: text}]
dispatch: [Order, OtherOrder]
`))
	require.NoError(t, err)

	cat, res := Build(Single(f))
	assert.Nil(t, cat)
	assert.Equal(t, []string{"duplicate_type_code"}, res.Codes())
}

func TestBuild_Nil(t *testing.T) {
	t.Parallel()

	cat, res := Build(nil)
	assert.Nil(t, cat)
	assert.Equal(t, []string{"catalog_is_nil"}, res.Codes())
	assert.Equal(t, []string{"catalog_is_nil"}, Validate(nil).Codes())
}
