package schema

import "errors"

// Schema construction errors. They indicate a programming error in a dialect
// and are expected to stop start-up.
var (
	ErrInvalidField      = errors.New("invalid field descriptor")
	ErrDuplicateField    = errors.New("duplicate field name")
	ErrAmbiguousOverride = errors.New("ambiguous override")
	ErrNestedComponent   = errors.New("component fields cannot nest components")
	ErrTypeCodeMismatch  = errors.New("first field must be the type code constant")
)

// Must panics if err is non-nil. It is meant for package-level schema values.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}

	return v
}
