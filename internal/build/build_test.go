package build

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gqlbundle/internal/codegen"
	"gqlbundle/internal/emit"
	"gqlbundle/internal/failure"
	"gqlbundle/internal/ident"
	"gqlbundle/internal/logging"
	"gqlbundle/internal/packager"
	"gqlbundle/internal/persisted"
)

const generatedTypes = `export interface getUser_user { __typename: "User"; id: string; }
export interface getUser { user: getUser_user | null; }
export interface userFields { __typename: "User"; id: string; }
`

type project struct {
	root    string
	schema  string
	queries string
	out     string
	work    string
}

func newProject(t *testing.T) project {
	t.Helper()
	root := t.TempDir()
	p := project{
		root:    root,
		schema:  filepath.Join(root, "schema.graphql"),
		queries: filepath.Join(root, "queries"),
		out:     filepath.Join(root, "lib"),
		work:    filepath.Join(root, "work"),
	}
	require.NoError(t, os.WriteFile(p.schema, []byte("type Query { user(id: ID): User }\ntype User { id: ID! }\n"), 0o644))
	p.write(t, "getUser.graphql", "query getUser { user { ...userFields } }")
	p.write(t, "fragments/userFields.graphql", "fragment userFields on User { id }")
	return p
}

func (p project) write(t *testing.T, rel, body string) {
	t.Helper()
	f := filepath.Join(p.queries, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(f), 0o755))
	require.NoError(t, os.WriteFile(f, []byte(body), 0o644))
}

func (p project) options() Options {
	return Options{Schema: p.schema, Queries: p.queries, Out: p.out, WorkDir: p.work, Deriver: ident.Default()}
}

type nopChecker struct{ err error }

func (c nopChecker) Check(context.Context, string) error { return c.err }

func fakeGenerator(body string) codegen.Generator {
	return codegen.GeneratorFunc(func(_ context.Context, req codegen.Request) error {
		return os.WriteFile(req.OutputPath, []byte(body), 0o644)
	})
}

func pipeline() Pipeline {
	return Pipeline{
		Generator: fakeGenerator(generatedTypes),
		Checker:   nopChecker{},
		Bundler:   packager.Inline{},
		Log:       logging.Discard(),
	}
}

func assertWorkDirEmpty(t *testing.T, parent string) {
	t.Helper()
	entries, err := os.ReadDir(parent)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	require.NoError(t, err)
	assert.Empty(t, entries, "working directory must be removed")
}

func TestRunExample(t *testing.T) {
	p := newProject(t)
	opts := p.options()
	opts.Persisted = true
	opts.Archive = filepath.Join(p.root, "lib.zip")

	res, err := pipeline().Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"getUser", "userFields"}, res.Manifest.IDs())

	man, err := os.ReadFile(filepath.Join(p.out, packager.SourcesDir, emit.ManifestFile))
	require.NoError(t, err)
	assert.Contains(t, string(man), "  \"getUser\",\n  \"userFields\",\n] as const;")

	idx, err := os.ReadFile(filepath.Join(p.out, packager.SourcesDir, emit.IndexFile))
	require.NoError(t, err)
	assert.Contains(t, string(idx), `"getUser": d0,`)

	types, err := os.ReadFile(filepath.Join(p.out, packager.SourcesDir, emit.TypesFile))
	require.NoError(t, err)
	assert.Contains(t, string(types), `"userFields": userFields;`)

	assert.FileExists(t, filepath.Join(p.out, emit.BundleFile))
	assert.FileExists(t, filepath.Join(p.out, persisted.File))
	assert.FileExists(t, filepath.Join(p.out, packager.BundleIDFile))

	zr, err := zip.OpenReader(res.Archive)
	require.NoError(t, err)
	zr.Close()

	assertWorkDirEmpty(t, p.work)
}

func TestRunDeterministic(t *testing.T) {
	p := newProject(t)
	_, err := pipeline().Run(context.Background(), p.options())
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(p.out, emit.BundleFile))
	require.NoError(t, err)

	_, err = pipeline().Run(context.Background(), p.options())
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(p.out, emit.BundleFile))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestRunMissingInputs(t *testing.T) {
	p := newProject(t)
	opts := p.options()
	opts.Schema = filepath.Join(p.root, "nope.graphql")
	_, err := pipeline().Run(context.Background(), opts)
	assert.True(t, failure.Is(err, failure.MissingInput), "got %v", err)

	opts = p.options()
	opts.Queries = filepath.Join(p.root, "nope")
	_, err = pipeline().Run(context.Background(), opts)
	assert.True(t, failure.Is(err, failure.MissingInput), "got %v", err)

	opts = p.options()
	opts.Schema = ""
	_, err = pipeline().Run(context.Background(), opts)
	assert.True(t, failure.Is(err, failure.MissingInput), "got %v", err)

	assert.NoDirExists(t, p.out)
}

func TestRunEmptyQueriesCreatesNothing(t *testing.T) {
	p := newProject(t)
	require.NoError(t, os.RemoveAll(p.queries))
	require.NoError(t, os.MkdirAll(p.queries, 0o755))

	_, err := pipeline().Run(context.Background(), p.options())
	assert.True(t, failure.Is(err, failure.EmptyManifest), "got %v", err)
	assert.NoDirExists(t, p.out)
	assertWorkDirEmpty(t, p.work)
}

func TestRunCollision(t *testing.T) {
	p := newProject(t)
	p.write(t, "queries/getUser.graphql", "query getUser2 { user { id } }")
	_, err := pipeline().Run(context.Background(), p.options())
	assert.True(t, failure.Is(err, failure.IdentifierCollision), "got %v", err)
}

type failingBundler struct{}

func (failingBundler) Bundle(context.Context, packager.BundleRequest) ([]byte, error) {
	return nil, failure.New(failure.Bundle, "bundling failed").WithDiagnostics("unexpected token")
}

func TestRunFailuresLeaveNoOutput(t *testing.T) {
	cases := map[string]struct {
		mutate func(t *testing.T, p project, pl *Pipeline)
		kind   failure.Kind
	}{
		"parse": {
			mutate: func(t *testing.T, p project, _ *Pipeline) { p.write(t, "broken.graphql", "query broken {") },
			kind:   failure.Parse,
		},
		"codegen": {
			mutate: func(_ *testing.T, _ project, pl *Pipeline) {
				pl.Generator = codegen.GeneratorFunc(func(context.Context, codegen.Request) error { return errors.New("apollo exploded") })
			},
			kind: failure.Codegen,
		},
		"missing type": {
			mutate: func(_ *testing.T, _ project, pl *Pipeline) { pl.Generator = fakeGenerator("export interface getUser {}\n") },
			kind:   failure.Codegen,
		},
		"type check": {
			mutate: func(_ *testing.T, _ project, pl *Pipeline) { pl.Checker = nopChecker{err: errors.New("TS2322")} },
			kind:   failure.TypeCheck,
		},
		"bundle": {
			mutate: func(_ *testing.T, _ project, pl *Pipeline) { pl.Bundler = failingBundler{} },
			kind:   failure.Bundle,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			p := newProject(t)
			pl := pipeline()
			tc.mutate(t, p, &pl)
			_, err := pl.Run(context.Background(), p.options())
			assert.True(t, failure.Is(err, tc.kind), "got %v", err)
			assert.NoDirExists(t, p.out)
			assertWorkDirEmpty(t, p.work)
		})
	}
}

func TestRunFailureKeepsPreviousOutput(t *testing.T) {
	p := newProject(t)
	_, err := pipeline().Run(context.Background(), p.options())
	require.NoError(t, err)

	p.write(t, "broken.graphql", "query broken {")
	_, err = pipeline().Run(context.Background(), p.options())
	require.Error(t, err)
	assert.FileExists(t, filepath.Join(p.out, emit.BundleFile))
}

// projectChecker asserts the project it is handed is complete.
type projectChecker struct{ t *testing.T }

func (c projectChecker) Check(_ context.Context, dir string) error {
	assert.True(c.t, filepath.IsAbs(dir), dir)
	assert.FileExists(c.t, filepath.Join(dir, emit.TSConfigFile))
	return nil
}

func TestRunRelativeWorkDir(t *testing.T) {
	p := newProject(t)
	if wd, err := os.Getwd(); err != nil {
		t.Fatal(err)
	} else {
		t.Cleanup(func() { _ = os.Chdir(wd) })
	}
	if err := os.Chdir(p.root); err != nil {
		t.Fatal(err)
	}
	opts := p.options()
	opts.WorkDir = "work"

	pl := pipeline()
	pl.Checker = projectChecker{t: t}
	pl.Bundler = packager.Esbuild{}
	_, err := pl.Run(context.Background(), opts)
	require.NoError(t, err, failure.DiagnosticsOf(err))
	assert.FileExists(t, filepath.Join(p.out, emit.BundleFile))
	assertWorkDirEmpty(t, p.work)
}

func TestCheck(t *testing.T) {
	p := newProject(t)
	_, err := pipeline().Run(context.Background(), p.options())
	require.NoError(t, err)

	drift, err := Check(context.Background(), p.options())
	require.NoError(t, err)
	assert.Empty(t, drift)

	p.write(t, "listUsers.graphql", "query listUsers { user { id } }")
	drift, err = Check(context.Background(), p.options())
	require.NoError(t, err)
	require.Len(t, drift, 2)
	assert.Equal(t, emit.IndexFile, drift[0].File)
	assert.Equal(t, emit.ManifestFile, drift[1].File)
	assert.Contains(t, drift[1].Diff, `+  "listUsers",`)
}

func TestCheckUnpublished(t *testing.T) {
	p := newProject(t)
	drift, err := Check(context.Background(), p.options())
	require.NoError(t, err)
	assert.Len(t, drift, 2)
}
