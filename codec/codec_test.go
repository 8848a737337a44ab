package codec

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astm-mapper/options"
	"astm-mapper/primitive"
	"astm-mapper/schema"
)

func orderSchema() *schema.Record {
	sample := schema.MustComponent("SampleID", schema.Text("sample_id", 10))

	return schema.MustRecord(schema.NewRecord("O",
		schema.Constant("type", "O"),
		schema.Integer("seq").AsRequired(),
		schema.ComponentOf("sample_id", sample),
		schema.Enum("priority", "S", "R").WithDefault("S"),
	))
}

func resultSchema() *schema.Record {
	test := schema.MustComponent("Test",
		schema.NotUsed("universal_id"),
		schema.NotUsed("universal_name"),
		schema.NotUsed("universal_type"),
		schema.Text("assay_code", 10).AsRequired(),
		schema.Text("assay_name", 20),
	)

	return schema.MustRecord(schema.NewRecord("R",
		schema.Constant("type", "R"),
		schema.Integer("seq").AsRequired(),
		schema.RepeatedOf("test", test),
		schema.Decimal("value"),
		schema.Text("units", 10),
		schema.DateTime("completed_at"),
		schema.Date("date"),
		schema.Enum("status", "F", "C").AsRequired(),
	))
}

func headerSchema() *schema.Record {
	return schema.MustRecord(schema.NewRecord("H",
		schema.Constant("type", "H"),
		schema.Delimiters("delimiter"),
		schema.NotUsed("message_id"),
		schema.NotUsed("password"),
		schema.Text("sender", 0),
	))
}

func noteSchema() *schema.Record {
	note := schema.MustComponent("Note", schema.Text("source", 0), schema.Text("text", 0))

	return schema.MustRecord(schema.NewRecord("C",
		schema.Constant("type", "C"),
		schema.Integer("seq"),
		schema.RepeatedOf("notes", note),
		schema.ComponentOf("author", note).AsRequired(),
		schema.ComponentOf("reviewer", note),
	))
}

func TestDecode_OrderScenario(t *testing.T) {
	t.Parallel()

	c := Default()

	rec, err := c.Decode(orderSchema(), []string{"O", "1", "12345", ""})
	require.NoError(t, err)

	assert.Equal(t, "O", rec.Code())
	assert.Equal(t, Fields{
		"type":      "O",
		"seq":       int64(1),
		"sample_id": Fields{"sample_id": "12345"},
		"priority":  "S",
	}, rec.Fields)
	assert.Empty(t, rec.Tail)

	tokens, err := c.Encode(rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"O", "1", "12345", "S"}, tokens)
}

func TestEncode_DefaultsPolicy(t *testing.T) {
	t.Parallel()

	rec := NewRecord(orderSchema(), Fields{"seq": int64(1), "sample_id": Fields{"sample_id": "12345"}})

	tokens, err := Default().Encode(rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"O", "1", "12345", "S"}, tokens)

	bare, err := New(DefaultDelimiters, options.EncodeNone)
	require.NoError(t, err)

	tokens, err = bare.Encode(rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"O", "1", "12345", ""}, tokens)

	trimmed, err := New(DefaultDelimiters, options.EncodeTrimFields)
	require.NoError(t, err)

	line, err := trimmed.EncodeLine(rec)
	require.NoError(t, err)
	assert.Equal(t, "O|1|12345", line)
}

func TestRoundTrip_CanonicalLines(t *testing.T) {
	t.Parallel()

	c := Default()

	tests := []struct {
		name   string
		schema *schema.Record
		line   string
	}{
		{"order", orderSchema(), "O|1|12345|R"},
		{"order without sample", orderSchema(), "O|2||S"},
		{"result", resultSchema(), `R|1|^^^GLU^Glucose\^^^K|5.4|mmol/L|20240102030405|20240102|F`},
		{"result escaped", resultSchema(), `R|3|^^^A&S&B|-0.25|a&F&b&E&|||C`},
		{"result empty repeat", resultSchema(), "R|4||||||F"},
		{"header", headerSchema(), `H|\^&|||LIS`},
		{"decimal scale", resultSchema(), "R|5||1.50||||F"},
		{"decimal zero scale", resultSchema(), "R|5||0.00||||F"},
		{"minute datetime", resultSchema(), "R|6||||202401021230||F"},
		{"second datetime ending in zero", resultSchema(), "R|6||||20240102123000||F"},
		{"lone empty note", noteSchema(), "C|1|^|a|"},
		{"empty notes around one", noteSchema(), `C|1|\x^y\|a^b|`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := c.DecodeLine(tt.schema, tt.line)
			require.NoError(t, err)

			line, err := c.EncodeLine(rec)
			require.NoError(t, err)
			assert.Equal(t, tt.line, line)
		})
	}
}

func TestRoundTrip_Instance(t *testing.T) {
	t.Parallel()

	c := Default()

	rec := NewRecord(resultSchema(), Fields{
		"type": "R",
		"seq":  int64(7),
		"test": []Fields{
			{"assay_code": "GLU", "assay_name": "Glu^cose"},
			{"assay_code": "K"},
		},
		"value":        decimal.RequireFromString("12.5"),
		"units":        `mg\dL`,
		"completed_at": primitive.DateTime{Time: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		"date":         time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		"status":       "F",
	})

	line, err := c.EncodeLine(rec)
	require.NoError(t, err)
	assert.Equal(t, `R|7|^^^GLU^Glu&S&cose\^^^K|12.5|mg&R&dL|20240102030405|20240102|F`, line)

	back, err := c.DecodeLine(rec.Schema, line)
	require.NoError(t, err)
	assert.Equal(t, rec.Fields, back.Fields)
}

func TestDecode_Values(t *testing.T) {
	t.Parallel()

	rec, err := Default().DecodeLine(resultSchema(), "R|1||5.40||201301020304|19991231|F")
	require.NoError(t, err)

	d, ok := rec.Fields.Decimal("value")
	require.True(t, ok)
	assert.True(t, d.Equal(decimal.RequireFromString("5.4")))

	at, ok := rec.Fields.Time("completed_at")
	require.True(t, ok)
	assert.Equal(t, time.Date(2013, 1, 2, 3, 4, 0, 0, time.UTC), at)

	day, ok := rec.Fields.Time("date")
	require.True(t, ok)
	assert.Equal(t, time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC), day)

	n, ok := rec.Fields.Int("seq")
	require.True(t, ok)
	assert.Equal(t, int64(1), n)

	assert.False(t, rec.Fields.Has("units"))
	assert.Empty(t, rec.Fields.Repeated("test"))
	assert.Equal(t, "F", rec.Fields.Text("status"))
}

func TestDecode_RequiredField(t *testing.T) {
	t.Parallel()

	_, err := Default().Decode(orderSchema(), []string{"O", "", "12345"})
	require.ErrorIs(t, err, ErrMissingRequiredField)

	fes := FieldErrors(err)
	require.Len(t, fes, 1)
	assert.Equal(t, "O", fes[0].Record)
	assert.Equal(t, 2, fes[0].Position)
	assert.Equal(t, "seq", fes[0].Field)
	assert.Contains(t, err.Error(), "O.2 seq: missing required field")
}

func TestDecode_ShortTokens(t *testing.T) {
	t.Parallel()

	rec, err := Default().Decode(orderSchema(), []string{"O", "9"})
	require.NoError(t, err)
	assert.Equal(t, Fields{"type": "O", "seq": int64(9), "priority": "S"}, rec.Fields)
}

func TestDecode_EnumMembership(t *testing.T) {
	t.Parallel()

	c := Default()

	_, err := c.Decode(orderSchema(), []string{"O", "1", "", "X"})
	require.ErrorIs(t, err, ErrInvalidEnumValue)

	rec, err := c.Decode(orderSchema(), []string{"O", "1", "", ""})
	require.NoError(t, err)
	assert.Equal(t, "S", rec.Fields.Text("priority"))

	_, err = c.Encode(NewRecord(orderSchema(), Fields{"seq": 1, "priority": "X"}))
	require.ErrorIs(t, err, ErrInvalidEnumValue)
}

func TestDecode_RepeatedCardinality(t *testing.T) {
	t.Parallel()

	c := Default()

	rec, err := c.DecodeLine(resultSchema(), "R|1||||||F")
	require.NoError(t, err)
	assert.Equal(t, []Fields{}, rec.Fields["test"])

	rec, err = c.DecodeLine(resultSchema(), `R|1|^^^A\^^^B\^^^C|||||F`)
	require.NoError(t, err)

	tests := rec.Fields.Repeated("test")
	require.Len(t, tests, 3)

	for i, code := range []string{"A", "B", "C"} {
		assert.Equal(t, code, tests[i].Text("assay_code"))
	}
}

func TestRoundTrip_EmptyGroups(t *testing.T) {
	t.Parallel()

	c := Default()

	rec, err := c.DecodeLine(noteSchema(), "C|1|^|a|^")
	require.NoError(t, err)
	assert.Equal(t, []Fields{{}}, rec.Fields["notes"])
	assert.False(t, rec.Fields.Has("reviewer"))

	line, err := c.EncodeLine(rec)
	require.NoError(t, err)
	assert.Equal(t, "C|1|^|a|", line)

	back, err := c.DecodeLine(noteSchema(), line)
	require.NoError(t, err)
	assert.Equal(t, rec.Fields, back.Fields)

	// an empty instance written by the caller keeps the cardinality too
	line, err = c.EncodeLine(NewRecord(noteSchema(), Fields{
		"notes":  []Fields{{}},
		"author": Fields{"text": "a"},
	}))
	require.NoError(t, err)
	assert.Equal(t, "C||^|^a|", line)

	single := schema.MustRecord(schema.NewRecord("C",
		schema.Constant("type", "C"),
		schema.RepeatedOf("codes", schema.MustComponent("Code", schema.Text("code", 0))),
	))

	_, err = c.Encode(NewRecord(single, Fields{"codes": []Fields{{}}}))
	require.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		schema *schema.Record
		line   string
		want   error
		field  string
	}{
		{"constant mismatch", orderSchema(), "X|1", ErrConstantMismatch, "type"},
		{"malformed integer", orderSchema(), "O|1a", ErrMalformedLiteral, "seq"},
		{"trailing token", orderSchema(), "O|1||S|extra", ErrUnexpectedTrailingToken, ""},
		{"component overflow", orderSchema(), "O|1|A^B", ErrUnexpectedTrailingToken, "sample_id"},
		{"malformed decimal", resultSchema(), "R|1||1e3||||F", ErrMalformedLiteral, "value"},
		{"malformed datetime", resultSchema(), "R|1||||2024010203||F", ErrMalformedLiteral, "completed_at"},
		{"malformed date", resultSchema(), "R|1|||||202401|F", ErrMalformedLiteral, "date"},
		{"missing member", resultSchema(), `R|1|^^^A\^^^|||||F`, ErrMissingRequiredField, "test[1].assay_code"},
		{"delimiter mismatch", headerSchema(), "H|~^&", ErrConstantMismatch, "delimiter"},
		{"padded integer", resultSchema(), "R|01||||||F", ErrMalformedLiteral, "seq"},
		{"signed decimal", resultSchema(), "R|1||+1.5||||F", ErrMalformedLiteral, "value"},
		{"bare point decimal", resultSchema(), "R|1||.5||||F", ErrMalformedLiteral, "value"},
		{"empty required component", noteSchema(), "C|1||^", ErrMissingRequiredField, "author"},
		{"absent required component", noteSchema(), "C|1||", ErrMissingRequiredField, "author"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Default().DecodeLine(tt.schema, tt.line)
			require.ErrorIs(t, err, tt.want)

			fes := FieldErrors(err)
			require.NotEmpty(t, fes)
			assert.Equal(t, tt.field, fes[0].Field)
		})
	}
}

func TestDecode_CollectsAllErrors(t *testing.T) {
	t.Parallel()

	_, err := Default().DecodeLine(resultSchema(), "R|x||y||||")
	require.Error(t, err)

	fes := FieldErrors(err)
	require.Len(t, fes, 3)
	assert.Equal(t, []string{"seq", "value", "status"}, []string{fes[0].Field, fes[1].Field, fes[2].Field})
	assert.Equal(t, []int{2, 4, 8}, []int{fes[0].Position, fes[1].Position, fes[2].Position})
}

func TestDecode_NotUsedIgnored(t *testing.T) {
	t.Parallel()

	c := Default()

	rec, err := c.DecodeLine(resultSchema(), `R|1|zz^yy^xx^GLU|||||F`)
	require.NoError(t, err)
	assert.Equal(t, []Fields{{"assay_code": "GLU"}}, rec.Fields["test"])

	line, err := c.EncodeLine(rec)
	require.NoError(t, err)
	assert.Equal(t, `R|1|^^^GLU|||||F`, line)
}

func TestDecode_OpenTail(t *testing.T) {
	t.Parallel()

	open := schema.MustRecord(schema.BuildRecord(schema.RecordSpec{
		Code:     "M",
		OpenTail: true,
		Fields:   []schema.Field{schema.Constant("type", "M"), schema.Integer("seq")},
	}))

	c := Default()

	rec, err := c.DecodeLine(open, "M|1|a|b^c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b^c"}, rec.Tail)

	line, err := c.EncodeLine(rec)
	require.NoError(t, err)
	assert.Equal(t, "M|1|a|b^c", line)

	closed := NewRecord(orderSchema(), Fields{"seq": 1})
	closed.Tail = []string{"x"}

	_, err = c.Encode(closed)
	require.ErrorIs(t, err, ErrUnexpectedTrailingToken)
}

func TestEncode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		fields Fields
		want   error
	}{
		{"missing required", Fields{"status": "F"}, ErrMissingRequiredField},
		{"unknown field", Fields{"seq": 1, "status": "F", "bogus": 1}, ErrUnknownField},
		{"unsupported type", Fields{"seq": true, "status": "F"}, ErrUnsupportedValue},
		{"length exceeded", Fields{"seq": 1, "status": "F", "units": "millimoles/l"}, ErrLengthExceeded},
		{"bad integer text", Fields{"seq": "01x", "status": "F"}, ErrMalformedLiteral},
		{"integer overflow", Fields{"seq": uint64(1 << 63), "status": "F"}, ErrMalformedLiteral},
		{"unknown member", Fields{"seq": 1, "status": "F", "test": []Fields{{"assay_code": "A", "x": 1}}}, ErrUnknownField},
		{"required member", Fields{"seq": 1, "status": "F", "test": []Fields{{"assay_name": "A"}}}, ErrMissingRequiredField},
		{"repeated wrong type", Fields{"seq": 1, "status": "F", "test": "A"}, ErrUnsupportedValue},
		{"member too long", Fields{"seq": 1, "status": "F", "test": []Fields{{"assay_code": strings.Repeat("x", 11)}}}, ErrLengthExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Default().Encode(NewRecord(resultSchema(), tt.fields))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEncode_AcceptsLooseTypes(t *testing.T) {
	t.Parallel()

	rec := NewRecord(resultSchema(), Fields{
		"type":         "ignored, constants always emit their literal",
		"seq":          uint8(3),
		"test":         []any{map[string]any{"assay_code": "GLU"}},
		"value":        2.5,
		"completed_at": "201301020304",
		"date":         time.Date(2020, 2, 29, 23, 0, 0, 0, time.UTC),
		"status":       "C",
	})

	line, err := Default().EncodeLine(rec)
	require.NoError(t, err)
	assert.Equal(t, "R|3|^^^GLU|2.5||201301020304|20200229|C", line)
}

func TestEncode_DecodeAcceptsLongText(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("u", 40)

	rec, err := Default().DecodeLine(resultSchema(), "R|1|||"+long+"|||F")
	require.NoError(t, err)
	assert.Equal(t, long, rec.Fields.Text("units"))

	_, err = Default().Encode(rec)
	require.ErrorIs(t, err, ErrLengthExceeded)
}

func TestCodec_CustomDelimiters(t *testing.T) {
	t.Parallel()

	c, err := New(Delimiters{Field: '!', Repeat: '~', Component: '@', Escape: '%'}, options.EncodeDefault)
	require.NoError(t, err)

	rec, err := c.DecodeLine(resultSchema(), `R!1!@@@A~@@@B!!a|b%F%c!!!F`)
	require.NoError(t, err)
	assert.Len(t, rec.Fields.Repeated("test"), 2)
	assert.Equal(t, "a|b!c", rec.Fields.Text("units"))

	_, err = New(Delimiters{Field: '|', Repeat: '|', Component: '^', Escape: '&'}, options.EncodeDefault)
	require.ErrorIs(t, err, ErrInvalidDelimiters)
}

func TestRecord_CloneIsDeep(t *testing.T) {
	t.Parallel()

	rec, err := Default().DecodeLine(resultSchema(), `R|1|^^^A\^^^B|||||F`)
	require.NoError(t, err)

	cp := rec.Clone()
	cp.Fields.Repeated("test")[0]["assay_code"] = "Z"
	cp.Fields["seq"] = int64(2)

	assert.Equal(t, "A", rec.Fields.Repeated("test")[0].Text("assay_code"))
	assert.Equal(t, int64(1), rec.Fields["seq"])
	assert.Same(t, rec.Schema, cp.Schema)
}
