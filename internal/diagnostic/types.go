package diagnostic

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"astm-mapper/internal/common"
)

// Diagnostics holds every problem found while checking a schema catalog.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Record names the record or component definition concerned (if any).
	Record string
	// FieldPath identifies which field this relates to (if any).
	FieldPath string
	// Suggestions are likely intended names for a misspelt reference.
	Suggestions []string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// Add files d under its severity.
func (d *Diagnostics) Add(diag Diagnostic) {
	switch diag.Severity {
	case DiagnosticError:
		d.Errors = append(d.Errors, diag)
	case DiagnosticWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, record, fieldPath string, suggestions ...string) {
	d.Add(Diagnostic{
		Severity:    DiagnosticError,
		Code:        code,
		Message:     message,
		Record:      record,
		FieldPath:   fieldPath,
		Suggestions: suggestions,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, record, fieldPath string) {
	d.Add(Diagnostic{Severity: DiagnosticWarning, Code: code, Message: message, Record: record, FieldPath: fieldPath})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, record, fieldPath string) {
	d.Add(Diagnostic{Severity: DiagnosticInfo, Code: code, Message: message, Record: record, FieldPath: fieldPath})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// All returns errors, warnings and infos in that order.
func (d *Diagnostics) All() []Diagnostic {
	return slices.Concat(d.Errors, d.Warnings, d.Infos)
}

// Codes returns the codes of the error diagnostics, in order.
func (d *Diagnostics) Codes() []string {
	codes := make([]string, len(d.Errors))
	for i, e := range d.Errors {
		codes[i] = e.Code
	}

	return codes
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	parts := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string, e.g.
// `[Patient] name: [unknown_component] unknown component "PatinetName" (did you mean PatientName?)`.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Record != "" {
		prefix = append(prefix, "["+d.Record+"]")
	}

	if d.FieldPath != "" {
		prefix = append(prefix, d.FieldPath)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(d.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(d.Suggestions, ", ") + "?)"
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
