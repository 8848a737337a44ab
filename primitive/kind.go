package primitive

import (
	"sort"
	"strings"
)

//go:generate go tool stringer -type=KindEnum -output=kind_string.go

// KindEnum identifies how a single field position is coerced between its raw
// token and its typed value.
type KindEnum int

const (
	_ KindEnum = iota // skip zero value, use it as a default (invalid) value for KindEnum

	KindText
	KindInteger
	KindDecimal
	KindDate
	KindDateTime
	KindConstant
	KindEnumerated
	KindComponent
	KindRepeated
	KindNotUsed
	KindDelimiters // header delimiter definition, e.g. `\^&`

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

var kindNames = map[string]KindEnum{
	"text":       KindText,
	"integer":    KindInteger,
	"decimal":    KindDecimal,
	"date":       KindDate,
	"datetime":   KindDateTime,
	"constant":   KindConstant,
	"enum":       KindEnumerated,
	"component":  KindComponent,
	"repeated":   KindRepeated,
	"not_used":   KindNotUsed,
	"delimiters": KindDelimiters,
}

// ParseKind resolves a catalog kind name ("text", "not_used", ...).
// Returns zero KindEnum and false for unknown names.
func ParseKind(name string) (KindEnum, bool) {
	k, ok := kindNames[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}

// KindNames lists every catalog kind name in sorted order.
func KindNames() []string {
	names := make([]string, 0, len(kindNames))
	for name := range kindNames {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Name returns the catalog name of the kind.
func (k KindEnum) Name() string {
	for name, kind := range kindNames {
		if kind == k {
			return name
		}
	}

	return ""
}

// IsValid reports whether k is one of the declared kinds.
func (k KindEnum) IsValid() bool {
	return k > 0 && int(k) < KindTotal
}

func (k KindEnum) IsNested() bool {
	switch k {
	default:
		return false
	case KindComponent, KindRepeated:
		return true
	}
}

func (k KindEnum) IsNumber() bool {
	switch k {
	default:
		return false
	case KindInteger, KindDecimal:
		return true
	}
}

func (k KindEnum) IsTemporal() bool {
	switch k {
	default:
		return false
	case KindDate, KindDateTime:
		return true
	}
}

// HasLength reports whether a maximum width constrains values of this kind.
func (k KindEnum) HasLength() bool {
	switch k {
	default:
		return false
	case KindText, KindInteger, KindDecimal, KindEnumerated:
		return true
	}
}

// IsEscaped reports whether values of this kind go through escape sequences.
func (k KindEnum) IsEscaped() bool {
	switch k {
	default:
		return false
	case KindText, KindEnumerated:
		return true
	}
}
