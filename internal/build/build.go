// Package build runs the whole pipeline: manifest, compile, type synthesis,
// packaging and publishing.
package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"gqlbundle/internal/bundle"
	"gqlbundle/internal/codegen"
	"gqlbundle/internal/document"
	"gqlbundle/internal/failure"
	"gqlbundle/internal/ident"
	"gqlbundle/internal/logging"
	"gqlbundle/internal/manifest"
	"gqlbundle/internal/packager"
	"gqlbundle/internal/persisted"
	"gqlbundle/internal/walkwalk"
	"gqlbundle/internal/workspace"
)

// Options are the inputs of one build.
type Options struct {
	Schema        string
	Queries       string
	Out           string
	WorkDir       string // parent of the per-build working directory
	Deriver       ident.Deriver
	Walk          walkwalk.Options
	Concurrency   int
	ScalarAliases map[string]string
	Persisted     bool
	Archive       string
}

// Pipeline holds the external collaborators.
type Pipeline struct {
	Generator codegen.Generator
	Checker   packager.TypeChecker
	Bundler   packager.Bundler
	Log       logrus.FieldLogger
}

// Result describes a published library.
type Result struct {
	Out      string
	Archive  string
	Manifest manifest.Manifest
}

// Run builds and publishes the library. Nothing is written to opts.Out
// unless every stage succeeds, and the working directory is removed on
// every path.
func (p Pipeline) Run(ctx context.Context, opts Options) (Result, error) {
	schemaText, err := ReadSchema(opts.Schema)
	if err != nil {
		return Result{}, err
	}
	m, err := Discover(ctx, opts)
	if err != nil {
		return Result{}, err
	}
	logging.Stage(p.Log, "manifest").WithField("operations", len(m.Entries)).Info("operations discovered")

	dir, release, err := workspace.Acquire(opts.WorkDir)
	if err != nil {
		return Result{}, failure.Wrap(failure.IO, err, "acquire working directory")
	}
	defer release()
	logging.Stage(p.Log, "workspace").WithField("dir", dir).Debug("working directory acquired")

	start := time.Now()
	compiled, err := document.Compile(ctx, m, document.Options{Concurrency: opts.Concurrency})
	if err != nil {
		return Result{}, err
	}
	logging.Stage(p.Log, "compile").WithField("duration", since(start)).Debug("documents compiled")

	staged, err := packager.StageOperations(dir, m)
	if err != nil {
		return Result{}, err
	}

	start = time.Now()
	types, err := codegen.Synthesize(ctx, p.Generator, codegen.Input{
		WorkDir:       dir,
		SchemaName:    opts.Schema,
		Schema:        schemaText,
		StagedDir:     staged,
		Compiled:      compiled,
		ScalarAliases: opts.ScalarAliases,
	})
	if err != nil {
		return Result{}, err
	}
	logging.Stage(p.Log, "codegen").WithFields(logrus.Fields{
		"duration": since(start),
		"scalars":  len(types.Scalars),
	}).Debug("types synthesized")

	pk := packager.Packager{Checker: p.Checker, Bundler: p.Bundler, Log: p.Log}
	lib, err := pk.Package(ctx, packager.Input{WorkDir: dir, Manifest: m, Compiled: compiled, Types: types})
	if err != nil {
		return Result{}, err
	}

	if opts.Persisted {
		body, err := persisted.Marshal(persisted.Build(compiled))
		if err != nil {
			return Result{}, failure.Wrap(failure.IO, err, "encode persisted operations")
		}
		if err := os.WriteFile(filepath.Join(lib, persisted.File), body, 0o644); err != nil {
			return Result{}, failure.Wrap(failure.IO, err, "write persisted operations")
		}
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := workspace.Publish(lib, opts.Out); err != nil {
		return Result{}, failure.Wrap(failure.IO, err, "publish library").WithPath(opts.Out)
	}
	logging.Stage(p.Log, "publish").WithField("out", opts.Out).Info("library published")

	res := Result{Out: opts.Out, Manifest: m}
	if opts.Archive != "" {
		err := bundle.WriteArchive(opts.Archive, opts.Out, m, bundle.ReadmeOptions{
			Name:      filepath.Base(opts.Out),
			Persisted: opts.Persisted,
			Bundler:   bundlerName(p.Bundler),
		})
		if err != nil {
			return res, failure.Wrap(failure.IO, err, "write archive").WithPath(opts.Archive)
		}
		res.Archive = opts.Archive
	}
	return res, nil
}

// ReadSchema loads the schema file, reporting absence as MissingInput.
func ReadSchema(path string) ([]byte, error) {
	if path == "" {
		return nil, failure.New(failure.MissingInput, "schema file location must be set (-s, --schema)")
	}
	st, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && st.IsDir()) {
		return nil, failure.New(failure.MissingInput, "schema file doesn't exist").WithPath(path)
	}
	if err != nil {
		return nil, failure.Wrap(failure.IO, err, "stat schema").WithPath(path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, failure.Wrap(failure.IO, err, "read schema").WithPath(path)
	}
	return b, nil
}

// Discover builds the manifest for opts.Queries.
func Discover(ctx context.Context, opts Options) (manifest.Manifest, error) {
	if opts.Queries == "" {
		return manifest.Manifest{}, failure.New(failure.MissingInput, "queries folder location must be set (-q, --queries)")
	}
	return manifest.Build(ctx, manifest.Options{Root: opts.Queries, Deriver: opts.Deriver, Walk: opts.Walk})
}

func bundlerName(b packager.Bundler) string {
	switch b.(type) {
	case packager.Esbuild, *packager.Esbuild:
		return "esbuild"
	default:
		return "inline"
	}
}

func since(t time.Time) time.Duration {
	return time.Since(t).Round(time.Millisecond)
}
