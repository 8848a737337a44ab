// Package dialect embeds the bundled schema catalogs: "astm" with the
// E1394-97 base records and "mindray" with the Mindray LIS records built on
// top of them.
package dialect

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"astm-mapper/codec"
	"astm-mapper/dispatch"
	"astm-mapper/internal/catalog"
)

// ErrUnknownDialect is returned for names without an embedded catalog.
var ErrUnknownDialect = errors.New("unknown dialect")

//go:embed *.yaml
var files embed.FS

// FS exposes the embedded catalog files.
func FS() fs.FS {
	return files
}

// Names lists the embedded dialects in sorted order.
func Names() []string {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil
	}

	var names []string

	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			names = append(names, name)
		}
	}

	slices.Sort(names)

	return names
}

// Load builds the named embedded catalog.
func Load(name string) (*catalog.Catalog, error) {
	if !slices.Contains(Names(), name) {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownDialect, name, strings.Join(Names(), ", "))
	}

	cat, _, err := catalog.Open(files, name+".yaml")
	if err != nil {
		return nil, fmt.Errorf("dialect %s: %w", name, err)
	}

	return cat, nil
}

// Table builds the dispatch table of the named dialect. A nil codec selects
// codec.Default.
func Table(name string, c *codec.Codec) (*dispatch.Table, error) {
	cat, err := Load(name)
	if err != nil {
		return nil, err
	}

	return cat.Table(c)
}
