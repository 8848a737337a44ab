package main

import (
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"astm-mapper/codec"
	"astm-mapper/primitive"
	"astm-mapper/schema"
)

// document is the YAML form of one record instance.
type document struct {
	Record string    `yaml:"record"`
	Code   string    `yaml:"code,omitempty"`
	Fields yaml.Node `yaml:"fields"`
	Tail   []string  `yaml:"tail,omitempty"`
}

// inputDocument is document as read back by encode.
type inputDocument struct {
	Record string         `yaml:"record"`
	Code   string         `yaml:"code"`
	Fields map[string]any `yaml:"fields"`
	Tail   []string       `yaml:"tail"`
}

func newDocument(rec *codec.Record) (*document, error) {
	fields, err := fieldsNode(rec.Fields, rec.Schema.Fields())
	if err != nil {
		return nil, err
	}

	return &document{
		Record: rec.Schema.Name(),
		Code:   rec.Code(),
		Fields: *fields,
		Tail:   rec.Tail,
	}, nil
}

// fieldsNode renders values as a mapping in positional order.
func fieldsNode(values codec.Fields, descs []schema.Field) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}

	for _, f := range descs {
		v, ok := values[f.Name]
		if !ok {
			continue
		}

		value, err := valueNode(f, v)
		if err != nil {
			return nil, err
		}

		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: f.Name}, value)
	}

	return n, nil
}

func valueNode(f schema.Field, v any) (*yaml.Node, error) {
	switch f.Kind {
	case primitive.KindComponent:
		group, _ := v.(codec.Fields)
		return fieldsNode(group, f.Component.Fields())
	case primitive.KindRepeated:
		groups, _ := v.([]codec.Fields)

		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, g := range groups {
			item, err := fieldsNode(g, f.Component.Fields())
			if err != nil {
				return nil, err
			}

			seq.Content = append(seq.Content, item)
		}

		return seq, nil
	}

	n := &yaml.Node{}
	if err := n.Encode(plain(v)); err != nil {
		return nil, err
	}

	return n, nil
}

// plain converts a scalar value to a form that survives a YAML round trip
// and that codec.Coerce accepts: temporal values and decimals become their
// ASTM literals.
func plain(v any) any {
	switch v := v.(type) {
	case time.Time:
		return primitive.FormatDate(v)
	case primitive.DateTime:
		return primitive.FormatDateTime(v)
	case decimal.Decimal:
		return primitive.FormatDecimal(v)
	default:
		return v
	}
}
