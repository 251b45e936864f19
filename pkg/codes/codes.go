/*
Package codes loads the list of configuration codes from a delimited
tabular file (CSV or TSV).

The column is picked by header name, or by 0-based index when Column is a
number. Values are trimmed; blank cells and repeated codes are dropped, so
the result is an ordered list of distinct, non-empty codes.
*/
package codes

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ajdepersio/ConfigUsageReport/pkg/logger"
	"github.com/ajdepersio/ConfigUsageReport/pkg/usage"
	"github.com/spf13/afero"
)

// DefaultColumn is the header looked up when Options.Column is empty
const DefaultColumn = "ConfigCode"

// Options controls how the code list is read
type Options struct {
	// Column is a header name, or a 0-based index
	Column string

	// Header reports whether the first record is a header row
	Header bool

	// Comma is the field delimiter. Defaults to ','
	Comma rune
}

// Load reads the code column from path.
func Load(fs afero.Fs, path string, opts Options, log logger.Logger) ([]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, &usage.ConfigSourceError{Path: path, Err: err}
	}
	defer f.Close()

	codes, err := Read(f, opts)
	if err != nil {
		var srcErr *usage.ConfigSourceError
		if errors.As(err, &srcErr) {
			srcErr.Path = path
			return nil, srcErr
		}
		return nil, &usage.ConfigSourceError{Path: path, Err: err}
	}

	log.WithFields(logger.Fields{
		"path":   path,
		"column": opts.Column,
		"codes":  len(codes),
	}).Info("Configuration codes loaded")

	return codes, nil
}

// Read parses codes from r. Errors are *usage.ConfigSourceError without a path.
func Read(r io.Reader, opts Options) ([]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = ','
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	column := opts.Column
	if column == "" {
		column = DefaultColumn
	}

	index := -1
	if n, err := strconv.Atoi(column); err == nil {
		if n < 0 {
			return nil, &usage.ConfigSourceError{Err: fmt.Errorf("column index %d is negative", n)}
		}
		index = n
	} else if !opts.Header {
		return nil, &usage.ConfigSourceError{Err: fmt.Errorf("column %q requires a header row", column)}
	}

	var (
		codes []string
		seen  = make(map[string]struct{})
		line  int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, &usage.ConfigSourceError{Line: parseErr.StartLine, Err: parseErr.Err}
			}
			return nil, &usage.ConfigSourceError{Line: line, Err: err}
		}

		if line == 1 && opts.Header {
			if index < 0 {
				index = findColumn(record, column)
				if index < 0 {
					return nil, &usage.ConfigSourceError{Line: 1, Err: fmt.Errorf("column %q not found in header", column)}
				}
			}
			continue
		}

		if index >= len(record) {
			continue
		}
		code := strings.TrimSpace(record[index])
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}

	if len(codes) == 0 {
		return nil, &usage.ConfigSourceError{Err: fmt.Errorf("no configuration codes found in column %q", column)}
	}

	return codes, nil
}

func findColumn(header []string, name string) int {
	for i, h := range header {
		// a UTF-8 BOM is common in spreadsheet exports
		h = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}
