package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"

	"gqlbundle/internal/diff"
	"gqlbundle/internal/document"
	"gqlbundle/internal/emit"
	"gqlbundle/internal/failure"
	"gqlbundle/internal/packager"
	"gqlbundle/internal/textutil"
)

// Drift is a published source that no longer matches the queries.
type Drift struct {
	File string
	Diff string
}

// Check regenerates the identifier-dependent sources from opts.Queries and
// diffs them against the copies kept in <opts.Out>/src. A nil result means
// the published library is current.
func Check(ctx context.Context, opts Options) ([]Drift, error) {
	m, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}
	compiled, err := document.Compile(ctx, m, document.Options{Concurrency: opts.Concurrency})
	if err != nil {
		return nil, err
	}
	want, err := emit.Sources(compiled)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(want))
	for name := range want {
		names = append(names, name)
	}
	sort.Strings(names)

	var drift []Drift
	for _, name := range names {
		published := filepath.Join(opts.Out, packager.SourcesDir, name)
		have, err := os.ReadFile(published)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, failure.Wrap(failure.IO, err, "read published source").WithPath(published)
		}
		body, _ := diff.Unified(
			filepath.ToSlash(filepath.Join(packager.SourcesDir, name))+" (published)",
			filepath.ToSlash(filepath.Join(packager.SourcesDir, name))+" (regenerated)",
			textutil.NormalizeLF(have), want[name], diff.Options{},
		)
		if body != "" {
			drift = append(drift, Drift{File: name, Diff: body})
		}
	}
	return drift, nil
}
