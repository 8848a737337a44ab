package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"astm-mapper/schema"
)

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema [record...]",
		Short: "Print record layouts",
		Long: `Schema prints the resolved positional layout of the named records, or of
every dispatched record, including component members and where each position
came from.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, _, err := a.catalog()
			if err != nil {
				return err
			}

			records := cat.Dispatch()

			if len(args) > 0 {
				records = records[:0]

				for _, name := range args {
					r, ok := cat.Record(name)
					if !ok {
						return fmt.Errorf("unknown record %q (known: %s)", name, strings.Join(cat.RecordNames(), ", "))
					}

					records = append(records, r)
				}
			}

			out := cmd.OutOrStdout()
			for i, r := range records {
				if i > 0 {
					fmt.Fprintln(out)
				}

				if err := writeLayout(out, r); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

func writeLayout(w io.Writer, r *schema.Record) error {
	title := fmt.Sprintf("%s (%s)", r.Name(), r.Code())
	if base := r.Base(); base != nil {
		title += " extends " + base.Name()
	}

	if r.OpenTail() {
		title += ", open tail"
	}

	fmt.Fprintln(w, title)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POS\tNAME\tKIND\tLEN\tREQ\tDETAIL\tORIGIN")

	for i, f := range r.Fields() {
		writeField(tw, strconv.Itoa(i+1), f, r.Origin(i).String())

		if f.Component != nil {
			for j, m := range f.Component.Fields() {
				writeField(tw, fmt.Sprintf("%d.%d", i+1, j+1), m, "")
			}
		}
	}

	return tw.Flush()
}

func writeField(w io.Writer, pos string, f schema.Field, origin string) {
	length := ""
	if f.MaxLength > 0 {
		length = strconv.Itoa(f.MaxLength)
	}

	req := ""
	if f.Required {
		req = "yes"
	}

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", pos, f.Name, f.Kind.Name(), length, req, detail(f), origin)
}

func detail(f schema.Field) string {
	var parts []string

	switch {
	case f.Literal != "":
		parts = append(parts, strconv.Quote(f.Literal))
	case len(f.Values) > 0:
		parts = append(parts, "{"+strings.Join(f.Values, ",")+"}")
	case f.Component != nil:
		parts = append(parts, f.Component.Name())
	}

	if f.HasDefault() {
		parts = append(parts, "default "+strconv.Quote(f.DefaultValue()))
	}

	return strings.Join(parts, " ")
}
