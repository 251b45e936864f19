package output

import (
	"github.com/ajdepersio/ConfigUsageReport/pkg/logger"
	"github.com/ajdepersio/ConfigUsageReport/pkg/report"
)

// stats holds totals about a report table
type stats struct {
	Codes       int            `json:"totalCodes" yaml:"totalCodes"`
	Files       int            `json:"totalFiles" yaml:"totalFiles"`
	Usages      int            `json:"totalUsages" yaml:"totalUsages"`
	ByExtension map[string]int `json:"usagesByExtension" yaml:"usagesByExtension"`
}

func (f *formatter) calculateStats(table *report.Table) *stats {
	f.log.Debug("Calculating report statistics")

	s := &stats{ByExtension: make(map[string]int)}
	files := make(map[string]struct{})

	for _, row := range table.Rows {
		s.Codes++
		s.Usages += len(row.Files)
		for _, p := range row.Files {
			files[p] = struct{}{}
		}
		for ext, paths := range row.ByExtension {
			s.ByExtension[ext] += len(paths)
		}
	}
	s.Files = len(files)

	f.log.WithFields(logger.Fields{
		"codes":  s.Codes,
		"files":  s.Files,
		"usages": s.Usages,
	}).Debug("Statistics calculated")

	return s
}
