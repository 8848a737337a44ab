package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"astm-mapper/dialect"
	"astm-mapper/internal/catalog"
	"astm-mapper/internal/diagnostic"
)

func newCheckCmd(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check [catalog]",
		Short: "Validate a schema catalog",
		Long: `Check loads a catalog file (or the configured catalog or dialect), resolves
every record and prints all diagnostics. It fails on errors, and on warnings
with --strict.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cat *catalog.Catalog
				res *diagnostic.Diagnostics
				err error
			)

			switch {
			case len(args) == 1:
				cat, res, err = openCatalog(args[0])
			case a.cfg.Catalog != "":
				cat, res, err = openCatalog(a.cfg.Catalog)
			default:
				cat, res, err = catalog.Open(dialect.FS(), a.cfg.Dialect+".yaml")
			}

			if res == nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, d := range res.All() {
				fmt.Fprintf(out, "%s: %s\n", d.Severity, d)
			}

			if err != nil {
				return fmt.Errorf("%d errors", len(res.Errors))
			}

			if strict && len(res.Warnings) > 0 {
				return errors.New("warnings reported in strict mode")
			}

			codes := make([]string, 0, len(cat.Dispatch()))
			for _, r := range cat.Dispatch() {
				codes = append(codes, r.Code()+"="+r.Name())
			}

			fmt.Fprintf(out, "ok: %s: %d records, %d components, dispatch %s\n",
				cat.Name(), len(cat.RecordNames()), len(cat.ComponentNames()), strings.Join(codes, " "))

			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")

	return cmd
}
