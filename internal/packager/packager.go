// Package packager turns the compiled documents and synthesized types into
// the staged library: it checks key-set agreement, writes the TypeScript
// project, type-checks it, bundles the static index and lays out the
// output tree. Publishing is left to the caller.
package packager

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"gqlbundle/internal/codegen"
	"gqlbundle/internal/document"
	"gqlbundle/internal/emit"
	"gqlbundle/internal/failure"
	"gqlbundle/internal/logging"
	"gqlbundle/internal/manifest"
	"gqlbundle/internal/validate"
	"gqlbundle/internal/workspace"
)

// Layout inside the working directory.
const (
	SrcDir = "src"
	LibDir = "lib"
)

// Output names inside the library.
const (
	BundleIDFile = "BUNDLE.ID"
	SourcesDir   = "src"
)

// Packager holds the external collaborators.
type Packager struct {
	Checker TypeChecker
	Bundler Bundler
	Log     logrus.FieldLogger
}

// Input is everything the packager consumes.
type Input struct {
	WorkDir  string
	Manifest manifest.Manifest
	Compiled []document.Compiled
	Types    codegen.Types
}

// StageOperations copies every manifest file to
// <work>/src/operations/<id>.graphql and returns that directory. The type
// generator and the lazy index both read from here.
func StageOperations(workDir string, m manifest.Manifest) (string, error) {
	src := filepath.Join(workDir, SrcDir)
	for _, e := range m.Entries {
		dst := filepath.Join(src, filepath.FromSlash(emit.OperationPath(e.ID)))
		if err := workspace.CopyFile(e.AbsPath, dst); err != nil {
			return "", failure.Wrap(failure.IO, err, "stage operation").WithPath(e.RelPath)
		}
	}
	return filepath.Join(src, emit.OperationsDir), nil
}

// Package builds <work>/lib and returns its path.
func (p Packager) Package(ctx context.Context, in Input) (string, error) {
	log := logging.Stage(p.Log, "package")

	if err := validate.Manifest(in.Manifest); err != nil {
		return "", failure.Wrap(failure.TypeCheck, err, "manifest check failed")
	}
	entries := emit.Entries(in.Compiled)
	indexIDs := make([]string, len(entries))
	for i, e := range entries {
		indexIDs[i] = e.ID
	}
	if err := validate.KeySets(in.Manifest.IDs(), indexIDs, in.Types.IDs()); err != nil {
		return "", err
	}

	src := filepath.Join(in.WorkDir, SrcDir)
	lib := filepath.Join(in.WorkDir, LibDir)
	project, err := emit.Full(in.Compiled, in.Types.Source, "../"+LibDir)
	if err != nil {
		return "", err
	}
	if err := workspace.WriteFiles(src, project); err != nil {
		return "", failure.Wrap(failure.IO, err, "write project").WithPath(src)
	}

	start := time.Now()
	if err := p.Checker.Check(ctx, src); err != nil {
		if failure.KindOf(err) == "" {
			err = failure.Wrap(failure.TypeCheck, err, "type check failed")
		}
		return "", err
	}
	log.WithField("duration", time.Since(start).Round(time.Millisecond)).Debug("type check passed")

	start = time.Now()
	bundle, err := p.Bundler.Bundle(ctx, BundleRequest{
		Dir:       src,
		Entry:     filepath.Join(src, emit.IndexFile),
		Documents: DocumentMap(src, in.Compiled),
		Compiled:  in.Compiled,
	})
	if err != nil {
		if failure.KindOf(err) == "" {
			err = failure.Wrap(failure.Bundle, err, "bundle failed")
		}
		return "", err
	}
	log.WithField("duration", time.Since(start).Round(time.Millisecond)).Debug("bundle written")

	if err := p.layout(src, lib, project, bundle, in.Manifest.BundleID); err != nil {
		return "", failure.Wrap(failure.IO, err, "stage library").WithPath(lib)
	}
	return lib, nil
}

func (p Packager) layout(src, lib string, project emit.Project, bundle []byte, bundleID string) error {
	if err := os.MkdirAll(lib, 0o755); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(lib, emit.BundleFile), bundle); err != nil {
		return err
	}
	if err := workspace.CopyTree(filepath.Join(src, emit.OperationsDir), filepath.Join(lib, emit.OperationsDir)); err != nil {
		return err
	}
	if err := workspace.WriteFiles(filepath.Join(lib, SourcesDir), project); err != nil {
		return err
	}
	return writeFile(filepath.Join(lib, BundleIDFile), []byte(bundleID+"\n"))
}
