package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"astm-mapper/codec"
	"astm-mapper/dialect"
	"astm-mapper/dispatch"
	"astm-mapper/internal/catalog"
	"astm-mapper/internal/charset"
	"astm-mapper/internal/config"
	"astm-mapper/internal/diagnostic"
	"astm-mapper/internal/logging"
)

// app carries the resolved configuration shared by the subcommands.
type app struct {
	configPath string
	cfg        *config.Config
	log        *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Default()}

	root := &cobra.Command{
		Use:   "astm-mapper",
		Short: "ASTM E1394-97 record mapper",
		Long: `astm-mapper decodes and encodes ASTM E1394-97 records against
declarative schema catalogs (embedded dialects or YAML files).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "configuration file")
	flags.StringP("dialect", "d", a.cfg.Dialect, fmt.Sprintf("embedded dialect %v", dialect.Names()))
	flags.String("catalog", "", "catalog YAML file (overrides --dialect)")
	flags.StringP("encoding", "e", a.cfg.Encoding, fmt.Sprintf("wire charset %v", charset.Names()))
	flags.String("delimiters", a.cfg.Delimiters, `delimiter definition such as "|\^&", or "auto"`)
	flags.Bool("trim-fields", a.cfg.Encode.TrimTrailingFields, "drop trailing empty fields when encoding")
	flags.Bool("no-defaults", !a.cfg.Encode.MaterializeDefaults, "do not write declared defaults for absent values")
	flags.String("log-level", a.cfg.Logging.Level, "log level (debug, info, warn, error)")
	flags.String("log-format", a.cfg.Logging.Format, "log format (text, json)")

	root.AddCommand(
		newDecodeCmd(a),
		newEncodeCmd(a),
		newCheckCmd(a),
		newSchemaCmd(a),
	)

	return root
}

// setup loads the configuration file, applies flag overrides and builds the
// logger.
func (a *app) setup(cmd *cobra.Command) error {
	if a.configPath != "" {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}

		a.cfg = cfg
	}

	flags := cmd.Flags()

	if flags.Changed("dialect") {
		a.cfg.Dialect, _ = flags.GetString("dialect")
		a.cfg.Catalog = ""
	}

	if flags.Changed("catalog") {
		a.cfg.Catalog, _ = flags.GetString("catalog")
	}

	if flags.Changed("encoding") {
		a.cfg.Encoding, _ = flags.GetString("encoding")
	}

	if flags.Changed("delimiters") {
		a.cfg.Delimiters, _ = flags.GetString("delimiters")
	}

	if flags.Changed("trim-fields") {
		a.cfg.Encode.TrimTrailingFields, _ = flags.GetBool("trim-fields")
	}

	if flags.Changed("no-defaults") {
		noDefaults, _ := flags.GetBool("no-defaults")
		a.cfg.Encode.MaterializeDefaults = !noDefaults
	}

	if flags.Changed("log-level") {
		a.cfg.Logging.Level, _ = flags.GetString("log-level")
	}

	if flags.Changed("log-format") {
		a.cfg.Logging.Format, _ = flags.GetString("log-format")
	}

	if err := a.cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cmd.ErrOrStderr(), a.cfg.Logging.Level, a.cfg.Logging.Format)
	if err != nil {
		return err
	}

	a.log = log

	return nil
}

// catalog builds the configured catalog: a file when set, else the embedded
// dialect.
func (a *app) catalog() (*catalog.Catalog, *diagnostic.Diagnostics, error) {
	if a.cfg.Catalog == "" {
		cat, err := dialect.Load(a.cfg.Dialect)
		return cat, &diagnostic.Diagnostics{}, err
	}

	return openCatalog(a.cfg.Catalog)
}

func openCatalog(path string) (*catalog.Catalog, *diagnostic.Diagnostics, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid catalog path: %w", err)
	}

	return catalog.Open(os.DirFS(filepath.Dir(abs)), filepath.Base(abs))
}

func (a *app) charset() (charset.Charset, error) {
	return charset.Lookup(a.cfg.Encoding)
}

// codec returns a codec for d with the configured policy.
func (a *app) codec(d codec.Delimiters) (*codec.Codec, error) {
	return codec.New(d, a.cfg.Policy())
}

// table builds the dispatch table of the configured catalog.
func (a *app) table(cat *catalog.Catalog, d codec.Delimiters) (*dispatch.Table, error) {
	c, err := a.codec(d)
	if err != nil {
		return nil, err
	}

	return cat.Table(c)
}

// open returns the named input file, or stdin when args is empty or "-".
func open(cmd *cobra.Command, args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}

	return os.Open(args[0])
}
