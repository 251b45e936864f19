/*
Package output renders a usage report table as CSV, JSON, YAML or a colored
console table, and writes the rendered report to its destination.

Basic usage:

	formatter := output.NewFormatter(output.Config{
		Format:  output.FormatCSV,
		Columns: []string{".cs", ".aspx", ".cshtml"},
	}, log)

	result, err := formatter.Format(table)
	if err != nil {
		return err
	}
	return output.WriteFile(fs, "report.csv", result, os.Stdout)

Columns are the configured extensions. When Columns is empty the extensions
present in the table are used instead, in sorted order.
*/
package output

import (
	"fmt"
	"sort"

	"github.com/ajdepersio/ConfigUsageReport/pkg/logger"
	"github.com/ajdepersio/ConfigUsageReport/pkg/report"
)

// Format represents the output format type
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// CodeHeader is the title of the first column in tabular formats
const CodeHeader = "ConfigCode"

// Config holds formatter configuration
type Config struct {
	Format     Format
	Columns    []string
	Comma      rune
	WithStats  bool
	WithColors bool
}

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(*report.Table) (string, error)
}

type formatter struct {
	config Config
	log    logger.Logger
}

// NewFormatter creates a new formatter instance
func NewFormatter(config Config, log logger.Logger) Formatter {
	if config.Comma == 0 {
		config.Comma = ','
	}
	return &formatter{
		config: config,
		log:    log,
	}
}

// Format renders the table according to the configured format
func (f *formatter) Format(table *report.Table) (string, error) {
	if table == nil {
		msg := "nil report table provided for formatting"
		f.log.Error(msg)
		return "", fmt.Errorf("%s", msg)
	}

	f.log.WithFields(logger.Fields{
		"format":     f.config.Format,
		"rows":       table.Len(),
		"withStats":  f.config.WithStats,
		"withColors": f.config.WithColors,
	}).Debug("Starting format operation")

	switch f.config.Format {
	case FormatCSV, "":
		return f.formatCSV(table)
	case FormatJSON:
		return f.formatJSON(table)
	case FormatYAML:
		return f.formatYAML(table)
	case FormatTable:
		return f.formatTable(table)
	default:
		msg := fmt.Sprintf("unsupported format: %s", f.config.Format)
		f.log.Error(msg)
		return "", fmt.Errorf("%s", msg)
	}
}

// columns returns the extension columns to render
func (f *formatter) columns(table *report.Table) []string {
	if len(f.config.Columns) > 0 {
		return f.config.Columns
	}

	seen := make(map[string]struct{})
	var cols []string
	for _, row := range table.Rows {
		for _, ext := range row.Extensions() {
			if _, ok := seen[ext]; !ok {
				seen[ext] = struct{}{}
				cols = append(cols, ext)
			}
		}
	}
	sort.Strings(cols)

	f.log.WithFields(logger.Fields{
		"columns": cols,
	}).Debug("No columns configured, using extensions found in report")

	return cols
}
