// Package diagnostic provides structured errors, warnings and notes produced
// while checking schema catalogs.
//
// Key capabilities:
//   - Unknown kind, component and base record references, with suggestions
//   - Duplicate names and type codes
//   - Inheritance notes, such as a required base field narrowed to not used
package diagnostic
