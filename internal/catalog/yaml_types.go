package catalog

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"astm-mapper/internal/common"
)

// File is the root structure of a catalog YAML file.
type File struct {
	// Version of the catalog schema format.
	Version string `yaml:"version,omitempty"`
	// Name identifies the dialect.
	Name string `yaml:"name,omitempty"`
	// Include lists catalogs whose components and records become visible here.
	// Paths are relative to this file.
	Include StringOrArray `yaml:"include,omitempty"`
	// Components declares the component schemas.
	Components []ComponentDef `yaml:"components,omitempty"`
	// Records declares the record schemas.
	Records []RecordDef `yaml:"records,omitempty"`
	// Dispatch names the records registered in the dispatch table.
	Dispatch []string `yaml:"dispatch,omitempty"`

	// Path is the location the file was loaded from.
	Path string `yaml:"-"`
}

// ComponentDef declares a component schema.
type ComponentDef struct {
	Name   string     `yaml:"name"`
	Fields []FieldDef `yaml:"fields"`
}

// RecordDef declares a record schema, either complete or extending a base.
type RecordDef struct {
	// Name is unique across the catalog and its includes.
	Name string `yaml:"name"`
	// Code is the type discriminator; inherited from the base when empty.
	Code string `yaml:"code,omitempty"`
	// Extends names the base record.
	Extends string `yaml:"extends,omitempty"`
	// OpenTail accepts tokens beyond the declared positions.
	OpenTail bool `yaml:"open_tail,omitempty"`
	// Fields is the full layout (no base) or the override list.
	Fields []FieldDef `yaml:"fields"`
}

// FieldDef declares a field descriptor.
type FieldDef struct {
	Name     string        `yaml:"name"`
	Kind     string        `yaml:"kind"`
	Length   int           `yaml:"length,omitempty"`
	Required bool          `yaml:"required,omitempty"`
	Default  *string       `yaml:"default,omitempty"`
	Values   StringOrArray `yaml:"values,omitempty"`
	// Value is the literal of a constant field.
	Value string `yaml:"value,omitempty"`
	// Component names the nested schema of component and repeated fields.
	Component string `yaml:"component,omitempty"`
	// Slot replaces the base field at this 1-based position.
	Slot int `yaml:"slot,omitempty"`
}

// StringOrArray represents a value that can be either a single string or an array of strings.
type StringOrArray []string

// UnmarshalYAML implements custom YAML unmarshaling for StringOrArray.
// Accepts either a single string or an array of strings.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string

		err := node.Decode(&str)
		if err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string

		err := node.Decode(&arr)
		if err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("line %d: expected string or array, got %v", node.Line, node.Kind)
	}
}

// MarshalYAML implements custom YAML marshaling for StringOrArray.
// Outputs a single string if length is 1, otherwise an array.
func (s StringOrArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// First returns the first element or empty string if empty.
func (s StringOrArray) First() string {
	if v, ok := common.First(s); ok {
		return v
	}

	return ""
}

// IsEmpty returns true if the array is empty.
func (s StringOrArray) IsEmpty() bool {
	return common.IsEmpty(s)
}

// IsSingle returns true if the array has exactly one element.
func (s StringOrArray) IsSingle() bool {
	return common.IsSingle(s)
}

// Contains returns true if the array contains the given string.
func (s StringOrArray) Contains(str string) bool {
	return slices.Contains(s, str)
}
