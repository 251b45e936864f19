package commands

import (
	"fmt"

	"github.com/ajdepersio/ConfigUsageReport/cmd/configusage/app"
	"github.com/ajdepersio/ConfigUsageReport/internal/config"
	"github.com/spf13/cobra"
)

type reportOptions struct {
	*Options
	codesFile      string
	codesColumn    string
	noHeader       bool
	comma          string
	extensions     []string
	ignore         []string
	outputFormat   string
	outputFile     string
	rowOrder       string
	workers        int
	rateLimit      int
	bufferSize     int
	strictEncoding bool
}

func newReportCommand(opts *Options) *cobra.Command {
	ro := &reportOptions{
		Options: opts,
	}

	cmd := &cobra.Command{
		Use:   "report [flags] <root>",
		Short: "Scan a source tree and write the usage report",
		Long: `Scan every file under <root> whose extension is selected with --ext, find
references to the configuration codes listed in --codes, and write one row per
used code with the matching files grouped by extension.

Any unreadable file aborts the run and no report is written.`,
		Example: `  configusage report -c codes.csv -e .cs -e .aspx -e .cshtml ./src
  configusage report -c codes.tsv --comma tab -o json -f usage.json ./src
  configusage report -c codes.csv -i bin -i obj -i "**/*.Designer.cs" ./src`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ro.apply(cmd, args); err != nil {
				return err
			}
			return runReport(cmd, ro)
		},
	}

	cmd.Flags().StringVarP(&ro.codesFile, "codes", "c", "",
		"CSV/TSV file listing configuration codes")
	cmd.Flags().StringVar(&ro.codesColumn, "column", config.DefaultCodesColumn,
		"header name or 0-based index of the code column")
	cmd.Flags().BoolVar(&ro.noHeader, "no-header", false,
		"the code file has no header record")
	cmd.Flags().StringVar(&ro.comma, "comma", ",",
		`field delimiter for the code file and CSV report ("tab" for TSV)`)
	cmd.Flags().StringSliceVarP(&ro.extensions, "ext", "e", nil,
		"file extensions to scan, e.g. .cs (can be specified multiple times)")
	cmd.Flags().StringSliceVarP(&ro.ignore, "ignore", "i", nil,
		"doublestar patterns to ignore (can be specified multiple times)")
	cmd.Flags().StringVarP(&ro.outputFormat, "output", "o", string(config.OutputFormatCSV),
		"report format: csv|json|yaml|table")
	cmd.Flags().StringVarP(&ro.outputFile, "file", "f", "",
		"write the report to file instead of stdout")
	cmd.Flags().StringVar(&ro.rowOrder, "order", string(config.RowOrderCode),
		"row order: code|input")
	cmd.Flags().IntVarP(&ro.workers, "workers", "w", 0,
		"number of concurrent file readers (default: number of CPUs)")
	cmd.Flags().IntVarP(&ro.rateLimit, "rate-limit", "r", 0,
		"maximum files opened per second (0 for unlimited)")
	cmd.Flags().IntVarP(&ro.bufferSize, "buffer-size", "b", config.DefaultBufferSize,
		"buffer size for file reading")
	cmd.Flags().BoolVar(&ro.strictEncoding, "strict-encoding", false,
		"fail on files that are not valid UTF-8")

	return cmd
}

// apply copies explicitly set flags over the loaded configuration and validates it
func (ro *reportOptions) apply(cmd *cobra.Command, args []string) error {
	cfg := ro.Config
	flags := cmd.Flags()

	if len(args) == 1 {
		cfg.Root = args[0]
	}
	if flags.Changed("codes") {
		cfg.CodesFile = ro.codesFile
	}
	if flags.Changed("column") {
		cfg.CodesColumn = ro.codesColumn
	}
	if flags.Changed("no-header") {
		cfg.CodesHeader = !ro.noHeader
		// a header name cannot address a headerless file
		if !cfg.CodesHeader && !flags.Changed("column") && cfg.CodesColumn == config.DefaultCodesColumn {
			cfg.CodesColumn = "0"
		}
	}
	if flags.Changed("comma") {
		comma, err := config.ParseComma(ro.comma)
		if err != nil {
			return err
		}
		cfg.Comma = comma
	}
	if flags.Changed("ext") {
		cfg.Extensions = ro.extensions
	}
	if flags.Changed("ignore") {
		cfg.Ignore = ro.ignore
	}
	if flags.Changed("output") {
		cfg.Format = config.OutputFormat(ro.outputFormat)
	}
	if flags.Changed("file") {
		cfg.OutputFile = ro.outputFile
	}
	if flags.Changed("order") {
		cfg.RowOrder = config.RowOrder(ro.rowOrder)
	}
	if flags.Changed("workers") && ro.workers > 0 {
		cfg.Workers = ro.workers
	}
	if flags.Changed("rate-limit") {
		cfg.RateLimit = ro.rateLimit
	}
	if flags.Changed("buffer-size") {
		cfg.BufferSize = ro.bufferSize
	}
	if flags.Changed("strict-encoding") {
		cfg.StrictEncoding = ro.strictEncoding
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func runReport(cmd *cobra.Command, ro *reportOptions) error {
	application := app.New(ro.Config, ro.Log,
		app.WithFs(ro.Fs),
		app.WithStdout(cmd.OutOrStdout()),
	)
	defer application.Shutdown()

	return application.Run(cmd.Context())
}
