// Package files enumerates the source files a usage scan should read.
//
// A file is selected when its extension (case-sensitive, leading dot included)
// is one of Options.Extensions and neither its path relative to the root nor
// its base name matches an Ignore pattern. Ignore patterns use doublestar glob
// syntax, so "bin", "**/obj/**" and "*.Designer.cs" all work. An ignored
// directory is not descended into.
package files

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/ajdepersio/ConfigUsageReport/pkg/logger"
	"github.com/ajdepersio/ConfigUsageReport/pkg/usage"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// Options holds the file filters
type Options struct {
	Extensions []string
	Ignore     []string
}

// Enumerate walks root and returns matching file paths in lexical order.
// The walk stops with ctx's error once ctx is done.
func Enumerate(ctx context.Context, fs afero.Fs, root string, opts Options, log logger.Logger) ([]string, error) {
	if len(opts.Extensions) == 0 {
		return nil, fmt.Errorf("at least one file extension is required")
	}
	for _, pattern := range opts.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid ignore pattern %q", pattern)
		}
	}

	info, err := fs.Stat(root)
	if err != nil {
		return nil, &usage.IOError{Op: "stat", Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &usage.IOError{Op: "walk", Path: root, Err: fmt.Errorf("not a directory")}
	}

	wanted := make(map[string]struct{}, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		wanted[ext] = struct{}{}
	}

	var (
		found   []string
		skipped int
	)
	err = afero.Walk(fs, root, func(p string, info os.FileInfo, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			return &usage.IOError{Op: "walk", Path: p, Err: walkErr}
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return &usage.IOError{Op: "walk", Path: p, Err: err}
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if ignored(rel, opts.Ignore) {
			log.WithFields(logger.Fields{
				"path": p,
			}).Trace("Ignoring path")
			skipped++
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			return nil
		}
		if _, ok := wanted[filepath.Ext(p)]; ok {
			found = append(found, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(found)

	log.WithFields(logger.Fields{
		"root":       root,
		"extensions": opts.Extensions,
		"files":      len(found),
		"ignored":    skipped,
	}).Info("Source files enumerated")

	return found, nil
}

func ignored(rel string, patterns []string) bool {
	base := path.Base(rel)
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
