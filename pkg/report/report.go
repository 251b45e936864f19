/*
Package report regroups a set of usages into one row per configuration code,
with each row's files further partitioned by file extension.

Ordering is deterministic: rows are sorted by code and paths are sorted inside
every bucket. OrderBy re-sorts rows to follow an input code list instead.
*/
package report

import (
	"path/filepath"
	"sort"

	"github.com/ajdepersio/ConfigUsageReport/pkg/usage"
)

// NoExtension is the bucket for paths whose base name has no dot suffix
const NoExtension = "(none)"

// Row is the aggregated view of one configuration code
type Row struct {
	Code        string
	Files       []string
	ByExtension map[string][]string
}

// Extension returns the row's paths for ext, or nil.
func (r Row) Extension(ext string) []string {
	return r.ByExtension[ext]
}

// Extensions returns the row's extension keys in sorted order.
func (r Row) Extensions() []string {
	keys := make([]string, 0, len(r.ByExtension))
	for ext := range r.ByExtension {
		keys = append(keys, ext)
	}
	sort.Strings(keys)
	return keys
}

// Table is the ordered sequence of rows, one per code with at least one usage
type Table struct {
	Rows []Row
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Codes returns the row codes in table order
func (t *Table) Codes() []string {
	codes := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		codes[i] = r.Code
	}
	return codes
}

// Extension returns the bucket key for path: its final dot-suffix including
// the dot, case preserved, or NoExtension.
func Extension(path string) string {
	ext := filepath.Ext(path)
	if ext == "" || ext == "." {
		return NoExtension
	}
	return ext
}

// Aggregate partitions usages by code and each code's files by extension.
func Aggregate(set *usage.Set) *Table {
	if set == nil {
		return &Table{}
	}

	rows := make(map[string]*Row)
	for _, in := range set.Instances() {
		row, ok := rows[in.Code]
		if !ok {
			row = &Row{
				Code:        in.Code,
				ByExtension: make(map[string][]string),
			}
			rows[in.Code] = row
		}
		// the set guarantees (code, path) is unique, so no per-row dedup is needed
		row.Files = append(row.Files, in.Path)
		ext := Extension(in.Path)
		row.ByExtension[ext] = append(row.ByExtension[ext], in.Path)
	}

	table := &Table{Rows: make([]Row, 0, len(rows))}
	for _, row := range rows {
		sort.Strings(row.Files)
		for _, paths := range row.ByExtension {
			sort.Strings(paths)
		}
		table.Rows = append(table.Rows, *row)
	}
	sort.Slice(table.Rows, func(i, j int) bool {
		return table.Rows[i].Code < table.Rows[j].Code
	})

	return table
}

// OrderBy reorders rows to follow codes. Rows whose code is not listed keep
// their relative order after the listed ones.
func (t *Table) OrderBy(codes []string) {
	rank := make(map[string]int, len(codes))
	for i, c := range codes {
		if _, ok := rank[c]; !ok {
			rank[c] = i
		}
	}

	sort.SliceStable(t.Rows, func(i, j int) bool {
		ri, iok := rank[t.Rows[i].Code]
		rj, jok := rank[t.Rows[j].Code]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return false
		}
	})
}
