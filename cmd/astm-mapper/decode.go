package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"astm-mapper/codec"
	"astm-mapper/dispatch"
	"astm-mapper/internal/config"
	"astm-mapper/internal/logging"
	"astm-mapper/internal/metrics"
)

var dumper = spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}

func newDecodeCmd(a *app) *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode a record stream into YAML documents",
		Long: `Decode reads records separated by CR or LF from file (or stdin), routes each
by its type code and prints one YAML document per record. Rejected records are
logged with their field errors; the command fails if any record was rejected.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("metrics") {
				a.cfg.Metrics.Enabled, _ = cmd.Flags().GetBool("metrics")
			}

			return a.decode(cmd, args, dump)
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "print records with go-spew instead of YAML")
	cmd.Flags().Bool("metrics", false, "print Prometheus metrics to stderr when done")

	return cmd
}

func (a *app) decode(cmd *cobra.Command, args []string, dump bool) error {
	in, err := open(cmd, args)
	if err != nil {
		return err
	}
	defer in.Close()

	cs, err := a.charset()
	if err != nil {
		return err
	}

	lines, err := readRecords(cs.NewReader(in))
	if err != nil {
		return fmt.Errorf("read records: %w", err)
	}

	cat, _, err := a.catalog()
	if err != nil {
		return err
	}

	d, err := a.delimiters(lines)
	if err != nil {
		return err
	}

	tbl, err := a.table(cat, d)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()

	var dispatcher dispatch.Dispatcher = tbl

	if a.cfg.Metrics.Enabled {
		m := metrics.New(reg)
		if err := m.Register(); err != nil {
			return err
		}

		dispatcher = m.Dispatcher(tbl)
	}

	out := cmd.OutOrStdout()

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)

	rejected := 0

	for i, line := range lines {
		tokens := d.Split(line)

		rec, err := dispatcher.Dispatch(tokens[0], tokens)
		if err != nil {
			rejected++

			a.reject(i+1, err)

			continue
		}

		a.log.Debug("decoded record", slog.Int("line", i+1), slog.String("record", rec.Schema.Name()))

		if dump {
			dumper.Fdump(out, rec.Code(), rec.Fields)
			continue
		}

		doc, err := newDocument(rec)
		if err != nil {
			return err
		}

		if err := enc.Encode(doc); err != nil {
			return err
		}
	}

	if err := enc.Close(); err != nil {
		return err
	}

	if a.cfg.Metrics.Enabled {
		if err := writeMetrics(cmd.ErrOrStderr(), reg); err != nil {
			return err
		}
	}

	if rejected > 0 {
		return fmt.Errorf("%d of %d records rejected", rejected, len(lines))
	}

	return nil
}

// delimiters returns the configured delimiters, reading them from the first
// header record in auto mode.
func (a *app) delimiters(lines []string) (codec.Delimiters, error) {
	if a.cfg.Delimiters != config.DelimitersAuto {
		return a.cfg.FixedDelimiters()
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "H") {
			return codec.DelimitersFromHeader(line)
		}
	}

	return codec.DefaultDelimiters, nil
}

// reject logs every field failure of a rejected record.
func (a *app) reject(line int, err error) {
	fes := codec.FieldErrors(err)
	if len(fes) == 0 {
		a.log.Warn("rejected record", slog.Int("line", line), slog.Any("error", err))
		return
	}

	for _, fe := range fes {
		attrs := append(logging.FieldAttrs(fe.Record, fe.Field, fe.Position, fe.Err), slog.Int("line", line))
		if fe.Value != "" {
			attrs = append(attrs, slog.String("value", fe.Value))
		}

		a.log.Warn("rejected field", attrs...)
	}
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return err
	}

	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}

	return nil
}
