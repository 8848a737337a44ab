package codec

import (
	"errors"
	"fmt"
	"strings"

	"astm-mapper/utils"
)

// ErrInvalidDelimiters is returned for unusable delimiter sets.
var ErrInvalidDelimiters = errors.New("invalid delimiters")

// Delimiters are the wire-level separator characters of one dialect.
// The transport layer supplies them; the engine never hardcodes them.
type Delimiters struct {
	Field     byte
	Repeat    byte
	Component byte
	Escape    byte
}

// DefaultDelimiters is the E1394-97 recommended set `| \ ^ &`.
var DefaultDelimiters = Delimiters{Field: '|', Repeat: '\\', Component: '^', Escape: '&'}

// Validate checks that the four characters are distinct printable ASCII
// punctuation.
func (d Delimiters) Validate() error {
	all := []byte{d.Field, d.Repeat, d.Component, d.Escape}

	for i, c := range all {
		if !utils.IsInRange(byte('!'), c, byte('~')) || isAlnum(c) {
			return fmt.Errorf("%w: %q is not printable punctuation", ErrInvalidDelimiters, c)
		}

		for _, other := range all[:i] {
			if c == other {
				return fmt.Errorf("%w: %q used twice", ErrInvalidDelimiters, c)
			}
		}
	}

	return nil
}

// Definition returns the header delimiter definition: repeat, component and
// escape characters, e.g. `\^&`.
func (d Delimiters) Definition() string {
	return string([]byte{d.Repeat, d.Component, d.Escape})
}

// DelimitersFromHeader reads the delimiter set declared by a header record line
// such as `H|\^&|||...`.
func DelimitersFromHeader(line string) (Delimiters, error) {
	if len(line) < 5 || line[0] != 'H' {
		return Delimiters{}, fmt.Errorf("%w: not a header record: %q", ErrInvalidDelimiters, truncate(line, 8))
	}

	d := Delimiters{Field: line[1], Repeat: line[2], Component: line[3], Escape: line[4]}
	if err := d.Validate(); err != nil {
		return Delimiters{}, err
	}

	if len(line) > 5 && line[5] != d.Field {
		return Delimiters{}, fmt.Errorf("%w: delimiter definition not followed by field delimiter", ErrInvalidDelimiters)
	}

	return d, nil
}

// Split breaks a record line into positional tokens.
func (d Delimiters) Split(line string) []string {
	return strings.Split(line, string(d.Field))
}

// Join is the inverse of Split.
func (d Delimiters) Join(tokens []string) string {
	return strings.Join(tokens, string(d.Field))
}

// EscapeText replaces delimiter characters in a text value by escape sequences
// (&F&, &S&, &R&, &E& for the default set).
func (d Delimiters) EscapeText(s string) string {
	if !strings.ContainsAny(s, string([]byte{d.Field, d.Repeat, d.Component, d.Escape})) {
		return s
	}

	var sb strings.Builder

	sb.Grow(len(s) + 8)

	for i := range len(s) {
		if code := d.escapeCode(s[i]); code != 0 {
			sb.WriteByte(d.Escape)
			sb.WriteByte(code)
			sb.WriteByte(d.Escape)

			continue
		}

		sb.WriteByte(s[i])
	}

	return sb.String()
}

// UnescapeText reverses EscapeText. Unknown sequences are kept verbatim.
func (d Delimiters) UnescapeText(s string) string {
	if strings.IndexByte(s, d.Escape) < 0 {
		return s
	}

	var sb strings.Builder

	sb.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] == d.Escape && i+2 < len(s) && s[i+2] == d.Escape {
			if c, ok := d.unescapeCode(s[i+1]); ok {
				sb.WriteByte(c)

				i += 2

				continue
			}
		}

		sb.WriteByte(s[i])
	}

	return sb.String()
}

func (d Delimiters) escapeCode(c byte) byte {
	switch c {
	case d.Field:
		return 'F'
	case d.Component:
		return 'S'
	case d.Repeat:
		return 'R'
	case d.Escape:
		return 'E'
	default:
		return 0
	}
}

func (d Delimiters) unescapeCode(code byte) (byte, bool) {
	switch code {
	case 'F':
		return d.Field, true
	case 'S':
		return d.Component, true
	case 'R':
		return d.Repeat, true
	case 'E':
		return d.Escape, true
	default:
		return 0, false
	}
}

func isAlnum(c byte) bool {
	return utils.IsInRange(byte('0'), c, byte('9')) ||
		utils.IsInRange(byte('a'), c, byte('z')) ||
		utils.IsInRange(byte('A'), c, byte('Z'))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n]
}
