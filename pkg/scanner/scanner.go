/*
Package scanner applies a combined code matcher to a list of files in
parallel and collects the distinct (code, file) usages.

Each file is one worker-pool task: the task reads the whole file, runs the
matcher and returns the codes it found. Results are merged into a single
usage.Set after every task has finished, in the order the files were given,
so the outcome does not depend on scheduling.

The scan is all-or-nothing. The first file that cannot be read cancels the
remaining tasks and Scan returns a *usage.IOError naming that file.

Basic usage:

	s := scanner.NewScanner(scanner.Config{Workers: 4}, afero.NewOsFs(), log)
	set, err := s.Scan(ctx, paths, m)
*/
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/ajdepersio/ConfigUsageReport/pkg/logger"
	"github.com/ajdepersio/ConfigUsageReport/pkg/matcher"
	"github.com/ajdepersio/ConfigUsageReport/pkg/usage"
	"github.com/ajdepersio/ConfigUsageReport/pkg/worker"
	"github.com/spf13/afero"
)

// DefaultBufferSize is used when Config.BufferSize is not positive
const DefaultBufferSize = 4096

// Scanner defines the interface for usage scanning
type Scanner interface {
	// Scan reads every file and returns the distinct usages found
	Scan(ctx context.Context, files []string, m *matcher.Matcher) (*usage.Set, error)

	// Progress returns the current scanning progress
	Progress() Progress
}

type scanner struct {
	config Config
	fs     afero.Fs
	log    logger.Logger

	stats     atomic.Pointer[counters]
	startTime atomic.Int64
}

// NewScanner creates a scanner reading files through fs
func NewScanner(config Config, fs afero.Fs, log logger.Logger) Scanner {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultBufferSize
	}
	return &scanner{
		config: config,
		fs:     fs,
		log:    log.Named("scanner"),
	}
}

func (s *scanner) Scan(ctx context.Context, files []string, m *matcher.Matcher) (*usage.Set, error) {
	if s.config.Workers <= 0 {
		return nil, fmt.Errorf("invalid configuration: workers count must be positive")
	}
	if m == nil {
		return nil, fmt.Errorf("invalid configuration: matcher is required")
	}

	stats := newCounters(len(files))
	s.stats.Store(stats)
	start := time.Now()
	s.startTime.Store(start.UnixNano())

	s.log.WithFields(logger.Fields{
		"files":   len(files),
		"codes":   len(m.Codes()),
		"workers": s.config.Workers,
	}).Info("Starting usage scan")

	pool, err := worker.NewPool(worker.Config{
		Workers:   s.config.Workers,
		RateLimit: s.config.RateLimit,
		FailFast:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	if err := pool.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start worker pool: %w", err)
	}
	defer func() {
		if err := pool.Stop(); err != nil {
			s.log.WithFields(logger.Fields{
				"error": err,
			}).Warn("Error stopping worker pool")
		}
	}()

	for i, path := range files {
		if err := pool.Submit(s.fileTask(i, path, m, stats)); err != nil {
			// the pool refuses work once a task failed; Wait reports the cause
			s.log.WithFields(logger.Fields{
				"error": err,
				"path":  path,
			}).Debug("Stopped submitting files")
			break
		}
	}

	results, err := pool.Wait()
	poolStats := pool.GetStats()
	if err != nil {
		var ioErr *usage.IOError
		if errors.As(err, &ioErr) {
			s.log.WithFields(logger.Fields{
				"error":     ioErr.Err,
				"path":      ioErr.Path,
				"completed": poolStats.CompletedTasks,
				"failed":    poolStats.FailedTasks,
			}).Error("Usage scan aborted")
			return nil, ioErr
		}
		s.log.WithFields(logger.Fields{
			"error":     err,
			"completed": poolStats.CompletedTasks,
			"failed":    poolStats.FailedTasks,
		}).Error("Usage scan aborted")
		return nil, fmt.Errorf("usage scan failed: %w", err)
	}

	set := usage.NewSet()
	for _, r := range results {
		fr, ok := r.Data.(fileResult)
		if !ok {
			continue
		}
		for _, code := range fr.codes {
			set.Add(usage.Instance{Code: code, Path: fr.path})
		}
	}

	s.log.WithFields(logger.Fields{
		"files":    stats.scannedFiles.Load(),
		"bytes":    stats.bytesRead.Load(),
		"usages":   set.Len(),
		"tasks":    poolStats.CompletedTasks,
		"pool":     poolStats.Status,
		"duration": time.Since(start),
	}).Info("Usage scan completed")

	return set, nil
}

func (s *scanner) fileTask(id int, path string, m *matcher.Matcher, stats *counters) worker.Task {
	return worker.Task{
		ID: id,
		Execute: func(ctx context.Context) (worker.Result, error) {
			content, err := s.readFileContent(ctx, path, stats)
			if err != nil {
				return worker.Result{}, err
			}

			codes := m.Match(content)
			stats.scannedFiles.Add(1)
			stats.matches.Add(int64(len(codes)))

			if len(codes) > 0 {
				s.log.WithFields(logger.Fields{
					"path":  path,
					"codes": codes,
				}).Debug("Usages found")
			}

			return worker.Result{
				ID:   id,
				Data: fileResult{path: path, codes: codes},
			}, nil
		},
	}
}

// readFileContent reads the whole file in BufferSize chunks, checking ctx between reads
func (s *scanner) readFileContent(ctx context.Context, path string, stats *counters) ([]byte, error) {
	info, err := s.fs.Stat(path)
	if err != nil {
		return nil, &usage.IOError{Op: "stat", Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &usage.IOError{Op: "read", Path: path, Err: fmt.Errorf("is a directory")}
	}

	file, err := s.fs.Open(path)
	if err != nil {
		return nil, &usage.IOError{Op: "open", Path: path, Err: err}
	}
	defer file.Close()

	buf := make([]byte, s.config.BufferSize)
	content := make([]byte, 0, info.Size())

	for {
		if err := ctx.Err(); err != nil {
			s.log.WithFields(logger.Fields{
				"path":   path,
				"reason": err,
			}).Trace("File read cancelled")
			return nil, err
		}

		n, err := file.Read(buf)
		if n > 0 {
			content = append(content, buf[:n]...)
			stats.bytesRead.Add(int64(n))
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &usage.IOError{Op: "read", Path: path, Err: err}
		}
	}

	if s.config.StrictEncoding && !utf8.Valid(content) {
		return nil, &usage.IOError{Op: "decode", Path: path, Err: fmt.Errorf("content is not valid UTF-8")}
	}

	s.log.WithFields(logger.Fields{
		"path": path,
		"size": len(content),
	}).Trace("File read completed")

	return content, nil
}

func (s *scanner) Progress() Progress {
	p := s.stats.Load().snapshot()
	if ns := s.startTime.Load(); ns != 0 {
		p.StartTime = time.Unix(0, ns)
	}
	return p
}
