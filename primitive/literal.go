package primitive

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"astm-mapper/utils"
)

// ErrMalformed is returned for numeric and calendar literals that do not match
// the expected pattern.
var ErrMalformed = errors.New("malformed literal")

const (
	DateLayout          = "20060102"
	DateTimeLayout      = "20060102150405"
	shortDateTimeLayout = "200601021504"
)

// ParseInteger parses a canonical base-10 integer literal: an optional minus
// sign and digits without leading zeros. Other spellings such as "007" or "+1"
// are rejected, so FormatInteger always gives back the literal that was read.
func ParseInteger(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: integer %q", ErrMalformed, s)
	}

	if FormatInteger(n) != s {
		return 0, fmt.Errorf("%w: integer %q is not canonical, want %q", ErrMalformed, s, FormatInteger(n))
	}

	return n, nil
}

// FormatInteger returns the canonical literal of n.
func FormatInteger(n int64) string {
	return strconv.FormatInt(n, 10)
}

// ParseDecimal parses a plain decimal literal: optional minus sign, digits and
// at most one decimal point. The scale is kept, so "1.50" stays two places.
// Exponents, a leading "+", leading zeros and a bare point (".5", "1.") are
// rejected: FormatDecimal must give back the literal that was read.
func ParseDecimal(s string) (decimal.Decimal, error) {
	if !isDecimalLiteral(s) {
		return decimal.Decimal{}, fmt.Errorf("%w: decimal %q", ErrMalformed, s)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: decimal %q", ErrMalformed, s)
	}

	if FormatDecimal(d) != s {
		return decimal.Decimal{}, fmt.Errorf("%w: decimal %q is not canonical, want %q", ErrMalformed, s, FormatDecimal(d))
	}

	return d, nil
}

// FormatDecimal returns the literal of d without exponent, with as many
// fractional digits as its scale.
func FormatDecimal(d decimal.Decimal) string {
	if d.Exponent() < 0 {
		return d.StringFixed(-d.Exponent())
	}

	return d.String()
}

// ParseDate parses an eight digit YYYYMMDD literal.
func ParseDate(s string) (time.Time, error) {
	if len(s) != len(DateLayout) || !utils.IsDigits(s) {
		return time.Time{}, fmt.Errorf("%w: date %q, want YYYYMMDD", ErrMalformed, s)
	}

	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrMalformed, s)
	}

	return t, nil
}

// FormatDate returns the YYYYMMDD literal of t.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// DateTime is the value of a datetime field. Short marks a literal read in the
// minute precision YYYYMMDDHHMM form; it is written back in that form.
type DateTime struct {
	time.Time
	Short bool
}

// ParseDateTime parses YYYYMMDDHHMMSS or the minute precision YYYYMMDDHHMM form
// and records which one was read.
func ParseDateTime(s string) (DateTime, error) {
	if !utils.IsDigits(s) {
		return DateTime{}, fmt.Errorf("%w: datetime %q, want YYYYMMDDHHMM[SS]", ErrMalformed, s)
	}

	var layout string

	switch len(s) {
	case len(DateTimeLayout):
		layout = DateTimeLayout
	case len(shortDateTimeLayout):
		layout = shortDateTimeLayout
	default:
		return DateTime{}, fmt.Errorf("%w: datetime %q, want YYYYMMDDHHMM[SS]", ErrMalformed, s)
	}

	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return DateTime{}, fmt.Errorf("%w: datetime %q", ErrMalformed, s)
	}

	return DateTime{Time: t, Short: layout == shortDateTimeLayout}, nil
}

// FormatDateTime returns the YYYYMMDDHHMMSS literal of dt, or YYYYMMDDHHMM when
// dt is Short and has no seconds.
func FormatDateTime(dt DateTime) string {
	t := dt.UTC()
	if dt.Short && t.Second() == 0 {
		return t.Format(shortDateTimeLayout)
	}

	return t.Format(DateTimeLayout)
}

func isDecimalLiteral(s string) bool {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}

	digits, points := 0, 0

	for _, r := range s {
		switch {
		case utils.IsDigit(r):
			digits++
		case r == '.':
			points++
		default:
			return false
		}
	}

	return digits > 0 && points <= 1
}
