package options

// EncodeEnum selects the encoding policies applied when a record instance is
// written back to tokens.
type EncodeEnum int

const (
	EncodeTrimFields     EncodeEnum = 1 << iota // drop trailing empty field tokens
	EncodeTrimComponents                        // drop trailing empty components inside a token
	EncodeDefaults                              // write the declared default for absent values

	EncodeAll     EncodeEnum = (1 << iota) - 1                      // all policies combined
	EncodeNone    EncodeEnum = 0                                    // emit every position verbatim
	EncodeDefault            = EncodeTrimComponents | EncodeDefaults // policy used by codec.Default
)

// Has reports whether every policy in flag is selected.
func (e EncodeEnum) Has(flag EncodeEnum) bool {
	return e&flag == flag
}

// With returns e with flag selected.
func (e EncodeEnum) With(flag EncodeEnum) EncodeEnum {
	return e | flag
}

// Without returns e with flag cleared.
func (e EncodeEnum) Without(flag EncodeEnum) EncodeEnum {
	return e &^ flag
}
