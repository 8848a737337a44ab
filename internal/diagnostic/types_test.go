package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostics(t *testing.T) {
	t.Parallel()

	var d Diagnostics

	assert.True(t, d.IsValid())
	require.NoError(t, d.Error())

	d.AddInfo("narrowed_required", "required base field is not used", "Patient", "practice_id")
	d.AddWarning("unused_component", "component is never referenced", "Spare", "")
	d.AddError("unknown_component", `unknown component "PatinetName"`, "Patient", "name", "PatientName")

	assert.True(t, d.HasErrors())
	assert.Len(t, d.All(), 3)
	assert.Equal(t, []string{"unknown_component"}, d.Codes())

	err := d.Error()
	require.Error(t, err)
	assert.Equal(t,
		`[Patient] name: [unknown_component] unknown component "PatinetName" (did you mean PatientName?)`,
		err.Error())

	var other Diagnostics
	other.AddError("duplicate_record", "duplicate record", "Order", "")
	d.Merge(other)

	assert.Equal(t, []string{"unknown_component", "duplicate_record"}, d.Codes())
	assert.Contains(t, d.Error().Error(), "; [Order]: [duplicate_record] duplicate record")
}

func TestDiagnostic_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "plain", Diagnostic{Message: "plain"}.String())
	assert.Equal(t, "f: [c] m", Diagnostic{Code: "c", Message: "m", FieldPath: "f"}.String())
	assert.Equal(t, "warning", DiagnosticWarning.String())
	assert.Equal(t, "unknown", DiagnosticSeverity(7).String())
}
