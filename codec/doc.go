// Package codec converts between the positional text tokens of an ASTM
// E1394-97 record and typed record instances, validating every field against
// its schema descriptor in both directions.
//
// # Wire layout
//
// A record line is split on the field delimiter into tokens; token 1 (index 0)
// is the type code. A component field carries sub-fields joined by the
// component delimiter, and a repeated component field carries groups joined by
// the repetition delimiter:
//
//	O|1|12345^LAB||^^^GLU^Glucose\^^^K^Potassium|R
//	  |  `--+----'  `------------+-------------'
//	  |     component            repeated component
//	  sequence
//
// Text and enum values use escape sequences for embedded delimiters:
// &F& (field), &S& (component), &R& (repetition) and &E& (escape).
//
// # Decoding rules
//
//   - An empty token resolves to the field default, then to absence; required
//     fields without a default fail with ErrMissingRequiredField.
//   - Tokens beyond the schema length fail with ErrUnexpectedTrailingToken
//     unless the schema declares an open tail.
//   - Missing trailing tokens are treated as empty.
//   - Not-used positions are discarded.
//   - Every failing field is reported; the error joins one *FieldError each.
//
// # Encoding policy
//
// options.EncodeDefaults writes declared defaults for absent fields,
// options.EncodeTrimComponents drops trailing empty components and
// options.EncodeTrimFields drops trailing empty fields. Constants always emit
// their literal and not-used positions always emit an empty token.
//
// # Round trip
//
// decode(encode(r)) equals r for any valid instance that sets its defaulted
// and repeated fields (decoding materialises both), and encode(decode(t))
// equals t for canonical tokens: integers without leading zeros, decimals
// without trailing fractional zeros, 14-digit datetimes, escaped text, and
// trailing empties per the policy in use.
package codec
