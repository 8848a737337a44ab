package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astm-mapper/codec"
	"astm-mapper/options"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, options.EncodeDefault, cfg.Policy())

	d, err := cfg.FixedDelimiters()
	require.NoError(t, err)
	assert.Equal(t, codec.DefaultDelimiters, d)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "astm-mapper.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dialect: astm
encoding: gbk
delimiters: "!~@%"
encode:
  trim_trailing_fields: true
logging:
  level: debug
  format: json
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "astm", cfg.Dialect)
	assert.Equal(t, "gbk", cfg.Encoding)
	assert.Equal(t, "json", cfg.Logging.Format)

	// unspecified keys keep their defaults
	assert.Equal(t, options.EncodeAll, cfg.Policy())

	d, err := cfg.FixedDelimiters()
	require.NoError(t, err)
	assert.Equal(t, codec.Delimiters{Field: '!', Repeat: '~', Component: '@', Escape: '%'}, d)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := map[string]func(c *Config){
		"no catalog":     func(c *Config) { c.Dialect = "" },
		"charset":        func(c *Config) { c.Encoding = "klingon" },
		"delimiters":     func(c *Config) { c.Delimiters = "||||" },
		"log level":      func(c *Config) { c.Logging.Level = "loud" },
		"log format":     func(c *Config) { c.Logging.Format = "xml" },
		"short delimits": func(c *Config) { c.Delimiters = "|" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	cfg.Dialect = ""
	cfg.Catalog = "catalog.yaml"
	require.NoError(t, cfg.Validate())
}
