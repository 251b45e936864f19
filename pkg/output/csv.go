package output

import (
	"strings"

	"github.com/ajdepersio/ConfigUsageReport/pkg/report"
)

// formatCSV writes one record per row. Every field is double-quoted so that
// newline-joined path lists stay inside a single cell.
func (f *formatter) formatCSV(table *report.Table) (string, error) {
	f.log.Debug("Formatting CSV output")

	cols := f.columns(table)

	var b strings.Builder
	record := make([]string, 0, len(cols)+1)

	record = append(record, CodeHeader)
	record = append(record, cols...)
	f.writeRecord(&b, record)

	for _, row := range table.Rows {
		record = record[:0]
		record = append(record, row.Code)
		for _, ext := range cols {
			record = append(record, strings.Join(row.Extension(ext), "\n"))
		}
		f.writeRecord(&b, record)
	}

	return b.String(), nil
}

func (f *formatter) writeRecord(b *strings.Builder, record []string) {
	for i, field := range record {
		if i > 0 {
			b.WriteRune(f.config.Comma)
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(field, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteString("\r\n")
}
