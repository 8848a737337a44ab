package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"astm-mapper/codec"
	"astm-mapper/internal/metrics"
	"astm-mapper/schema"
)

func newEncodeCmd(a *app) *cobra.Command {
	var cr bool

	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Encode YAML documents into records",
		Long: `Encode reads YAML documents as printed by decode (record, code, fields, tail)
and writes one record per document in the wire charset. The record name
selects the schema; without it the code is looked up in the dispatch table.
In auto mode the default delimiters are used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("metrics") {
				a.cfg.Metrics.Enabled, _ = cmd.Flags().GetBool("metrics")
			}

			return a.encode(cmd, args, cr)
		},
	}

	cmd.Flags().BoolVar(&cr, "cr", false, "terminate records with CR instead of LF")
	cmd.Flags().Bool("metrics", false, "print Prometheus metrics to stderr when done")

	return cmd
}

func (a *app) encode(cmd *cobra.Command, args []string, cr bool) error {
	in, err := open(cmd, args)
	if err != nil {
		return err
	}
	defer in.Close()

	cs, err := a.charset()
	if err != nil {
		return err
	}

	cat, _, err := a.catalog()
	if err != nil {
		return err
	}

	d, err := a.cfg.FixedDelimiters()
	if err != nil {
		return err
	}

	tbl, err := a.table(cat, d)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	if err := m.Register(); err != nil {
		return err
	}

	terminator := "\n"
	if cr {
		terminator = "\r"
	}

	out := cs.NewWriter(cmd.OutOrStdout())
	defer out.Close()

	dec := yaml.NewDecoder(in)

	for n := 1; ; n++ {
		var doc inputDocument

		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return fmt.Errorf("document %d: %w", n, err)
		}

		var s *schema.Record

		switch {
		case doc.Record != "":
			s, _ = cat.Record(doc.Record)
		case doc.Code != "":
			s, _ = tbl.Lookup(doc.Code)
		}

		if s == nil {
			return fmt.Errorf("document %d: no schema for record %q code %q", n, doc.Record, doc.Code)
		}

		rec, err := codec.Coerce(s, doc.Fields)
		if err == nil {
			rec.Tail = doc.Tail

			var line string

			line, err = tbl.Codec().EncodeLine(rec)
			if err == nil {
				_, err = io.WriteString(out, line+terminator)
			}
		}

		m.ObserveEncode(s.Code(), err)

		if err != nil {
			a.reject(n, err)
			return fmt.Errorf("document %d: %w", n, err)
		}
	}

	if err := out.Close(); err != nil {
		return err
	}

	if a.cfg.Metrics.Enabled {
		return writeMetrics(cmd.ErrOrStderr(), reg)
	}

	return nil
}
