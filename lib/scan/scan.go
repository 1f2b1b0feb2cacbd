// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package scan

import (
	"cmp"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/bureau-foundation/gbx/lib/classid"
	"github.com/bureau-foundation/gbx/lib/engines"
	"github.com/bureau-foundation/gbx/lib/gbx"
	"github.com/bureau-foundation/gbx/lib/registry"
)

// Options configures a scan.
type Options struct {
	// Workers bounds concurrent parses. Defaults to the number of
	// CPUs.
	Workers int

	// Match selects the files to parse. Defaults to a case-insensitive
	// ".gbx" suffix.
	Match func(path string) bool

	// Registry is shared by every parse. Defaults to the built-in
	// catalogue.
	Registry registry.Resolver

	// Remap fixes the identifier policy. Nil detects it per file.
	Remap *classid.Policy

	// Logger receives per-file diagnostics. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Result is the outcome of parsing one file.
type Result struct {
	Path    string
	Version uint16
	Class   classid.ID
	Remap   classid.Policy

	// HeaderChunks counts every header chunk, Opaque the ones no
	// routine exists for.
	HeaderChunks int
	Opaque       int

	ExternalNodes int

	Err error
}

// Run parses every matching file under root and returns one result per
// file, sorted by path. The returned error is non-nil only when the
// walk itself fails or ctx is cancelled; per-file failures are in the
// results.
func Run(ctx context.Context, root string, options Options) ([]Result, error) {
	if options.Workers < 1 {
		options.Workers = runtime.NumCPU()
	}
	if options.Match == nil {
		options.Match = func(path string) bool {
			return strings.HasSuffix(strings.ToLower(path), ".gbx")
		}
	}
	if options.Registry == nil {
		options.Registry = engines.Registry()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.Type().IsRegular() && options.Match(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	pool, err := ants.NewPool(options.Workers)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	readOptions := []gbx.Option{
		gbx.WithRegistry(options.Registry),
		gbx.WithLogger(options.Logger),
	}
	if options.Remap != nil {
		readOptions = append(readOptions, gbx.WithRemap(*options.Remap))
	}

	// Each task writes only its own element.
	results := make([]Result, len(paths))
	var waitGroup sync.WaitGroup
	for i, path := range paths {
		results[i].Path = path
		waitGroup.Add(1)
		submitErr := pool.Submit(func() {
			defer waitGroup.Done()
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return
			}
			results[i] = parse(path, readOptions)
			if results[i].Err != nil {
				options.Logger.Debug("scan: parse failed", "path", path, "error", results[i].Err)
			}
		})
		if submitErr != nil {
			waitGroup.Done()
			results[i].Err = fmt.Errorf("submitting parse: %w", submitErr)
		}
	}
	waitGroup.Wait()

	slices.SortFunc(results, func(a, b Result) int {
		return cmp.Compare(a.Path, b.Path)
	})
	return results, ctx.Err()
}

func parse(path string, readOptions []gbx.Option) Result {
	result := Result{Path: path}
	container, err := gbx.ReadFile(path, readOptions...)
	if err != nil {
		result.Err = err
		return result
	}

	header := container.Header
	result.Version = header.Version
	result.Class = header.Class
	result.Remap = header.Remap
	result.ExternalNodes = len(container.RefTable.External)
	for slot := range header.Chunks().All() {
		result.HeaderChunks++
		if slot.Opaque() {
			result.Opaque++
		}
	}
	return result
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if result.Err != nil {
			failed = append(failed, result)
		}
	}
	return failed
}
