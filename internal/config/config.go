// Package config holds the command line tool configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"astm-mapper/codec"
	"astm-mapper/internal/charset"
	"astm-mapper/internal/logging"
	"astm-mapper/options"
)

// Config represents the astm-mapper configuration.
type Config struct {
	// Dialect names an embedded catalog. Ignored when Catalog is set.
	Dialect string `yaml:"dialect"`
	// Catalog is the path of a catalog YAML file.
	Catalog string `yaml:"catalog,omitempty"`
	// Encoding is the wire charset of record text.
	Encoding string `yaml:"encoding"`
	// Delimiters is the definition `<field><repeat><component><escape>`, or
	// "auto" to read it from the header record.
	Delimiters string  `yaml:"delimiters"`
	Encode     Encode  `yaml:"encode"`
	Logging    Logging `yaml:"logging"`
	Metrics    Metrics `yaml:"metrics"`
}

// Encode selects the encoding policy.
type Encode struct {
	TrimTrailingFields     bool `yaml:"trim_trailing_fields"`
	TrimTrailingComponents bool `yaml:"trim_trailing_components"`
	MaterializeDefaults    bool `yaml:"materialize_defaults"`
}

// Logging contains logging configuration.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Metrics contains Prometheus exposition settings.
type Metrics struct {
	// Enabled prints the collected metrics after a run.
	Enabled bool `yaml:"enabled"`
}

// DelimitersAuto asks for delimiter detection from the header record.
const DelimitersAuto = "auto"

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Dialect:    "mindray",
		Encoding:   "latin1",
		Delimiters: DelimitersAuto,
		Encode: Encode{
			TrimTrailingComponents: true,
			MaterializeDefaults:    true,
		},
		Logging: Logging{
			Level:  "info",
			Format: logging.FormatText,
		},
	}
}

// Load reads the configuration at path on top of Default and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	var errs []error

	if c.Dialect == "" && c.Catalog == "" {
		errs = append(errs, errors.New("either dialect or catalog is required"))
	}

	if _, err := charset.Lookup(c.Encoding); err != nil {
		errs = append(errs, err)
	}

	if c.Delimiters != DelimitersAuto {
		if _, err := c.FixedDelimiters(); err != nil {
			errs = append(errs, err)
		}
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}

	switch c.Logging.Format {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// FixedDelimiters parses the configured delimiter definition. The field
// delimiter is the first rune, followed by the header definition.
func (c *Config) FixedDelimiters() (codec.Delimiters, error) {
	if c.Delimiters == DelimitersAuto {
		return codec.DefaultDelimiters, nil
	}

	return codec.DelimitersFromHeader("H" + c.Delimiters)
}

// Policy returns the encoding policy selected by Encode.
func (c *Config) Policy() options.EncodeEnum {
	p := options.EncodeNone

	if c.Encode.TrimTrailingFields {
		p = p.With(options.EncodeTrimFields)
	}

	if c.Encode.TrimTrailingComponents {
		p = p.With(options.EncodeTrimComponents)
	}

	if c.Encode.MaterializeDefaults {
		p = p.With(options.EncodeDefaults)
	}

	return p
}
