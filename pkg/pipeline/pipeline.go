/*
Package pipeline wires the usage report stages together: build a matcher from
the configuration codes, scan the source files, and aggregate the usages into
a report table.

All inputs arrive through an explicit Config; nothing is read from globals.

	table, err := pipeline.Run(ctx, pipeline.Config{
		Codes:   []string{"foo", "bar"},
		Files:   []string{"src/a.cs", "web/b.aspx"},
		Workers: 4,
	}, afero.NewOsFs(), log)

Any failure aborts the run and no table is returned.
*/
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ajdepersio/ConfigUsageReport/pkg/logger"
	"github.com/ajdepersio/ConfigUsageReport/pkg/matcher"
	"github.com/ajdepersio/ConfigUsageReport/pkg/report"
	"github.com/ajdepersio/ConfigUsageReport/pkg/scanner"
	"github.com/spf13/afero"
)

// Config holds the inputs of a single run
type Config struct {
	Codes []string
	Files []string

	Workers        int
	RateLimit      int
	BufferSize     int
	StrictEncoding bool
}

// Runner executes the pipeline and exposes scan progress while it runs
type Runner struct {
	config  Config
	log     logger.Logger
	scanner scanner.Scanner
}

// New creates a Runner reading files through fs
func New(config Config, fs afero.Fs, log logger.Logger) *Runner {
	return &Runner{
		config: config,
		log:    log.Named("pipeline"),
		scanner: scanner.NewScanner(scanner.Config{
			Workers:        config.Workers,
			RateLimit:      config.RateLimit,
			BufferSize:     config.BufferSize,
			StrictEncoding: config.StrictEncoding,
		}, fs, log),
	}
}

// Run is shorthand for New(config, fs, log).Run(ctx)
func Run(ctx context.Context, config Config, fs afero.Fs, log logger.Logger) (*report.Table, error) {
	return New(config, fs, log).Run(ctx)
}

// Run builds the matcher, scans every file and aggregates the result.
func (r *Runner) Run(ctx context.Context) (*report.Table, error) {
	start := time.Now()

	m, err := matcher.Build(r.config.Codes)
	if err != nil {
		r.log.WithFields(logger.Fields{
			"error": err,
		}).Error("Failed to build matcher")
		return nil, fmt.Errorf("build matcher: %w", err)
	}

	r.log.WithFields(logger.Fields{
		"codes":   len(r.config.Codes),
		"pattern": m.Pattern(),
	}).Trace("Matcher built")

	set, err := r.scanner.Scan(ctx, r.config.Files, m)
	if err != nil {
		return nil, err
	}

	table := report.Aggregate(set)

	r.log.WithFields(logger.Fields{
		"codes":    len(r.config.Codes),
		"files":    len(r.config.Files),
		"rows":     table.Len(),
		"usages":   set.Len(),
		"duration": time.Since(start),
	}).Info("Usage report built")

	return table, nil
}

// Progress returns the scan progress of the current or last run
func (r *Runner) Progress() scanner.Progress {
	return r.scanner.Progress()
}
