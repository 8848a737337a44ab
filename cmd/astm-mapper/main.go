// Package main provides the CLI entrypoint for astm-mapper.
//
// astm-mapper decodes ASTM E1394-97 record streams against a schema catalog,
// encodes records back to the wire form, checks catalogs and prints record
// layouts:
//
//	astm-mapper decode  [file]      records to YAML documents
//	astm-mapper encode  [file]      YAML documents to records
//	astm-mapper check   [catalog]   catalog diagnostics
//	astm-mapper schema  [record...] positional layouts
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
