package output

import (
	"encoding/json"
	"time"

	"github.com/ajdepersio/ConfigUsageReport/pkg/logger"
	"github.com/ajdepersio/ConfigUsageReport/pkg/report"
)

// jsonRow represents one configuration code in structured output
type jsonRow struct {
	Code       string              `json:"code" yaml:"code"`
	Files      []string            `json:"files" yaml:"files"`
	Extensions map[string][]string `json:"extensions" yaml:"extensions"`
}

// jsonOutput represents the complete structured report
type jsonOutput struct {
	Columns    []string   `json:"columns" yaml:"columns"`
	Rows       []*jsonRow `json:"rows" yaml:"rows"`
	Statistics *stats     `json:"statistics,omitempty" yaml:"statistics,omitempty"`
	Generated  time.Time  `json:"generated" yaml:"generated"`
}

func (f *formatter) buildDocument(table *report.Table) *jsonOutput {
	cols := f.columns(table)

	doc := &jsonOutput{
		Columns:   cols,
		Rows:      make([]*jsonRow, 0, table.Len()),
		Generated: time.Now(),
	}

	for _, row := range table.Rows {
		f.log.WithFields(logger.Fields{
			"code": row.Code,
		}).Trace("Converting row to document format")

		jr := &jsonRow{
			Code:       row.Code,
			Files:      row.Files,
			Extensions: make(map[string][]string, len(cols)),
		}
		for _, ext := range cols {
			if paths := row.Extension(ext); len(paths) > 0 {
				jr.Extensions[ext] = paths
			}
		}
		doc.Rows = append(doc.Rows, jr)
	}

	if f.config.WithStats {
		f.log.Debug("Adding statistics to document")
		doc.Statistics = f.calculateStats(table)
	}

	return doc
}

func (f *formatter) formatJSON(table *report.Table) (string, error) {
	f.log.Debug("Formatting JSON output")

	bytes, err := json.MarshalIndent(f.buildDocument(table), "", "  ")
	if err != nil {
		f.log.WithFields(logger.Fields{
			"error": err,
		}).Error("Failed to marshal JSON")
		return "", err
	}

	return string(bytes), nil
}
