package codec

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astm-mapper/primitive"
)

func TestCoerce(t *testing.T) {
	t.Parallel()

	rec, err := Coerce(resultSchema(), map[string]any{
		"seq": 2,
		"test": []any{
			map[string]any{"assay_code": "GLU", "universal_id": "ignored"},
			map[string]any{"assay_code": "K", "assay_name": "Potassium"},
		},
		"value":        1.25,
		"units":        "mmol/L",
		"completed_at": "20240102030405",
		"date":         time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		"status":       "F",
	})
	require.NoError(t, err)

	assert.Equal(t, Fields{
		"seq": int64(2),
		"test": []Fields{
			{"assay_code": "GLU"},
			{"assay_code": "K", "assay_name": "Potassium"},
		},
		"value":        decimal.RequireFromString("1.25"),
		"units":        "mmol/L",
		"completed_at": primitive.DateTime{Time: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		"date":         time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		"status":       "F",
	}, rec.Fields)

	line, err := Default().EncodeLine(rec)
	require.NoError(t, err)
	assert.Equal(t, `R|2|^^^GLU\^^^K^Potassium|1.25|mmol/L|20240102030405|20240102|F`, line)
}

func TestCoerce_Component(t *testing.T) {
	t.Parallel()

	rec, err := Coerce(orderSchema(), map[string]any{
		"type":      "O",
		"seq":       "1",
		"sample_id": map[string]any{"sample_id": 12345},
		"priority":  nil,
	})
	require.NoError(t, err)
	assert.Equal(t, Fields{"type": "O", "seq": int64(1), "sample_id": Fields{"sample_id": "12345"}}, rec.Fields)
}

func TestCoerce_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   map[string]any
		want error
	}{
		{"unknown field", map[string]any{"bogus": 1}, ErrUnknownField},
		{"bad integer", map[string]any{"seq": 1.5}, ErrMalformedLiteral},
		{"bool", map[string]any{"seq": true}, ErrUnsupportedValue},
		{"enum", map[string]any{"status": "X"}, ErrInvalidEnumValue},
		{"constant", map[string]any{"type": "O"}, ErrConstantMismatch},
		{"date", map[string]any{"date": "2024-01-02"}, ErrMalformedLiteral},
		{"repeated shape", map[string]any{"test": map[string]any{"assay_code": "A"}}, ErrUnsupportedValue},
		{"member", map[string]any{"test": []any{map[string]any{"nope": "A"}}}, ErrUnknownField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Coerce(resultSchema(), tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}
}
