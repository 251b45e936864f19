/*
Package app provides the application container for a report run. It wires
the code source, file enumerator, scan pipeline, formatter and progress line
together, and handles interruption.

Usage:

	a := app.New(cfg, log)
	defer a.Shutdown()
	if err := a.Run(ctx); err != nil {
	    return err
	}
*/
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/ajdepersio/ConfigUsageReport/internal/config"
	"github.com/ajdepersio/ConfigUsageReport/pkg/codes"
	"github.com/ajdepersio/ConfigUsageReport/pkg/files"
	"github.com/ajdepersio/ConfigUsageReport/pkg/logger"
	"github.com/ajdepersio/ConfigUsageReport/pkg/output"
	"github.com/ajdepersio/ConfigUsageReport/pkg/pipeline"
	"github.com/ajdepersio/ConfigUsageReport/pkg/progress"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// App represents the main application container
type App struct {
	config *config.Config
	log    logger.Logger

	fs       afero.Fs
	stdout   io.Writer
	progress progress.Progress

	ctx     context.Context
	cancel  context.CancelFunc
	signals chan os.Signal
	exit    func(int)
	done    chan struct{}
	once    sync.Once
}

// Option customizes an App
type Option func(*App)

// WithFs sets the filesystem used for every read and the report write
func WithFs(fs afero.Fs) Option {
	return func(a *App) { a.fs = fs }
}

// WithStdout sets where the report goes when no output file is configured
func WithStdout(w io.Writer) Option {
	return func(a *App) { a.stdout = w }
}

// WithProgress replaces the terminal progress line
func WithProgress(p progress.Progress) Option {
	return func(a *App) { a.progress = p }
}

// New creates a new application instance
func New(cfg *config.Config, log logger.Logger, opts ...Option) *App {
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		config:  cfg,
		log:     log.Named("app"),
		fs:      afero.NewOsFs(),
		stdout:  os.Stdout,
		ctx:     ctx,
		cancel:  cancel,
		signals: make(chan os.Signal, 1),
		exit:    os.Exit,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.progress == nil {
		a.progress = a.newProgress()
	}

	a.setupSignalHandling()

	a.log.WithFields(logger.Fields{
		"workers": cfg.Workers,
		"verbose": cfg.Verbose,
		"format":  cfg.Format,
	}).Debug("Application initialized")

	return a
}

// Run produces the usage report. Nothing is written unless every stage succeeds.
func (a *App) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			a.log.WithFields(logger.Fields{
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("Recovered from panic")
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(a.ctx, cancel)
	defer stop()
	if a.ctx.Err() != nil {
		cancel()
	}

	start := time.Now()
	cfg := a.config

	a.log.WithFields(logger.Fields{
		"codes":      cfg.CodesFile,
		"root":       cfg.Root,
		"extensions": cfg.Extensions,
		"format":     cfg.Format,
	}).Info("Starting usage report")

	codeList, sourceFiles, err := a.loadInputs(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	runner := pipeline.New(pipeline.Config{
		Codes:          codeList,
		Files:          sourceFiles,
		Workers:        cfg.Workers,
		RateLimit:      cfg.RateLimit,
		BufferSize:     cfg.BufferSize,
		StrictEncoding: cfg.StrictEncoding,
	}, a.fs, a.log)

	a.progress.Start("Scanning files", func() progress.Status {
		p := runner.Progress()
		return progress.Status{
			Total:     p.TotalFiles,
			Scanned:   p.ScannedFiles,
			BytesRead: p.BytesRead,
			Matches:   p.Matches,
		}
	})

	table, err := runner.Run(ctx)
	if err != nil {
		a.progress.Error("Scan failed")
		return fmt.Errorf("usage scan failed: %w", err)
	}
	a.progress.Complete("Scan complete")

	a.log.WithFields(logger.Fields{
		"used": table.Codes(),
	}).Debug("Codes with usages")

	if cfg.RowOrder == config.RowOrderInput {
		table.OrderBy(codeList)
	}

	formatter := output.NewFormatter(output.Config{
		Format:     output.Format(cfg.Format),
		Columns:    cfg.Extensions,
		Comma:      cfg.Comma,
		WithStats:  cfg.Format == config.OutputFormatTable,
		WithColors: !cfg.NoColor && cfg.OutputFile == "" && !color.NoColor,
	}, a.log)

	content, err := formatter.Format(table)
	if err != nil {
		return fmt.Errorf("output formatting failed: %w", err)
	}

	if err := output.WriteFile(a.fs, cfg.OutputFile, content, a.stdout); err != nil {
		a.log.WithFields(logger.Fields{
			"error": err,
			"path":  cfg.OutputFile,
		}).Error("Failed to write report")
		return fmt.Errorf("failed to write report: %w", err)
	}

	a.log.WithFields(logger.Fields{
		"codes":    len(codeList),
		"files":    len(sourceFiles),
		"rows":     table.Len(),
		"outputTo": cfg.OutputFile,
		"duration": time.Since(start),
	}).Info("Usage report completed")

	return nil
}

// loadInputs reads the code list and enumerates source files concurrently
func (a *App) loadInputs(ctx context.Context) ([]string, []string, error) {
	g, gctx := errgroup.WithContext(ctx)
	var (
		codeList    []string
		sourceFiles []string
	)

	g.Go(func() error {
		list, err := codes.Load(a.fs, a.config.CodesFile, codes.Options{
			Column: a.config.CodesColumn,
			Header: a.config.CodesHeader,
			Comma:  a.config.Comma,
		}, a.log)
		if err != nil {
			return fmt.Errorf("failed to load configuration codes: %w", err)
		}
		codeList = list
		return nil
	})

	g.Go(func() error {
		list, err := files.Enumerate(gctx, a.fs, a.config.Root, files.Options{
			Extensions: a.config.Extensions,
			Ignore:     a.config.Ignore,
		}, a.log)
		if err != nil {
			return fmt.Errorf("failed to enumerate source files: %w", err)
		}
		sourceFiles = list
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return codeList, sourceFiles, nil
}

// Shutdown releases signal handlers and stops the progress line. Safe to call twice.
func (a *App) Shutdown() {
	a.once.Do(func() {
		a.log.Debug("Shutting down")

		a.cancel()
		a.stopSignalHandling()
		a.progress.Stop()
		close(a.done)

		_ = a.log.Sync()
	})
}

// newProgress returns a terminal progress line, or a no-op when stderr is not a terminal
func (a *App) newProgress() progress.Progress {
	if a.config.NoProgress {
		return progress.NewNop()
	}

	p := progress.New(progress.Config{
		Style:       progress.StyleBar,
		ShowStats:   true,
		NoColor:     a.config.NoColor,
		RefreshRate: 100 * time.Millisecond,
		Writer:      os.Stderr,
	}, a.log)

	if !p.IsSupportedTerminal() {
		a.log.Debug("Stderr is not a terminal, progress disabled")
		return progress.NewNop()
	}
	return p
}
