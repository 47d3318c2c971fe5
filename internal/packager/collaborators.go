package packager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"gqlbundle/internal/document"
	"gqlbundle/internal/emit"
	"gqlbundle/internal/failure"
	"gqlbundle/internal/xexec"
)

// TypeChecker compiles the TypeScript project in dir.
type TypeChecker interface {
	Check(ctx context.Context, dir string) error
}

// DefaultTscCommand is the TypeScript compiler entry point.
const DefaultTscCommand = "tsc"

// Tsc runs `tsc --build tsconfig.json` inside the project directory.
type Tsc struct {
	Runner  xexec.Runner
	Command string // e.g. "npx tsc"; empty means DefaultTscCommand
}

func (t Tsc) Check(ctx context.Context, dir string) error {
	line := t.Command
	if line == "" {
		line = DefaultTscCommand
	}
	name, lead := xexec.Split(line)
	args := append(append([]string(nil), lead...), "--build", emit.TSConfigFile)
	runner := t.Runner
	if runner == nil {
		runner = xexec.OS{}
	}
	res, err := runner.Run(ctx, xexec.Command{Name: name, Args: args, Dir: dir})
	if err != nil {
		return failure.Wrap(failure.TypeCheck, err, "type check failed").
			WithPath(dir).
			WithDiagnostics(res.Combined())
	}
	return nil
}

// BundleRequest is one bundler invocation.
type BundleRequest struct {
	Dir       string // project directory
	Entry     string // entry module, absolute
	Documents map[string][]byte
	Compiled  []document.Compiled
}

// Bundler produces the static index module.
type Bundler interface {
	Bundle(ctx context.Context, req BundleRequest) ([]byte, error)
}

// Inline renders the static index directly from the compiled documents.
type Inline struct{}

func (Inline) Bundle(_ context.Context, req BundleRequest) ([]byte, error) {
	b, err := emit.EmbeddedModule(req.Compiled)
	if err != nil {
		return nil, failure.Wrap(failure.Bundle, err, "embed documents")
	}
	return b, nil
}

// Esbuild bundles the lazy index with esbuild, resolving every .graphql
// import to its compiled document.
type Esbuild struct {
	Minify bool
}

func (e Esbuild) Bundle(ctx context.Context, req BundleRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := filepath.Abs(req.Dir)
	if err != nil {
		return nil, failure.Wrap(failure.Bundle, err, "resolve project directory").WithPath(req.Dir)
	}
	entry, err := filepath.Abs(req.Entry)
	if err != nil {
		return nil, failure.Wrap(failure.Bundle, err, "resolve entry").WithPath(req.Entry)
	}
	res := api.Build(api.BuildOptions{
		AbsWorkingDir:     dir,
		EntryPoints:       []string{entry},
		Bundle:            true,
		Write:             false,
		Outfile:           filepath.Join(dir, emit.BundleFile),
		Format:            api.FormatCommonJS,
		Platform:          api.PlatformNode,
		Target:            api.ES2017,
		External:          []string{"graphql"},
		MinifyWhitespace:  e.Minify,
		MinifySyntax:      e.Minify,
		MinifyIdentifiers: e.Minify,
		LogLevel:          api.LogLevelSilent,
		Plugins:           []api.Plugin{documentsPlugin(req.Documents)},
	})
	if len(res.Errors) > 0 {
		msgs := api.FormatMessages(res.Errors, api.FormatMessagesOptions{Kind: api.ErrorMessage})
		return nil, failure.New(failure.Bundle, "bundling failed with %d error(s)", len(res.Errors)).
			WithPath(req.Entry).
			WithDiagnostics(strings.Join(msgs, ""))
	}
	for _, f := range res.OutputFiles {
		if strings.HasSuffix(f.Path, ".js") {
			return f.Contents, nil
		}
	}
	return nil, failure.New(failure.Bundle, "bundler produced no output").WithPath(req.Entry)
}

// documentsPlugin loads .graphql files as their compiled JSON document.
func documentsPlugin(docs map[string][]byte) api.Plugin {
	return api.Plugin{
		Name: "graphql-documents",
		Setup: func(build api.PluginBuild) {
			// esbuild reports real paths; the staged dir may sit behind a symlink.
			byPath := make(map[string][]byte, 2*len(docs))
			for p, doc := range docs {
				if abs, err := filepath.Abs(p); err == nil {
					p = abs
				}
				byPath[p] = doc
				if real, err := filepath.EvalSymlinks(p); err == nil {
					byPath[real] = doc
				}
			}
			build.OnLoad(api.OnLoadOptions{Filter: `\.graphql$`}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
				doc, ok := byPath[filepath.Clean(args.Path)]
				if !ok {
					return api.OnLoadResult{}, fmt.Errorf("no compiled document for %s", args.Path)
				}
				contents := string(doc)
				return api.OnLoadResult{Contents: &contents, Loader: api.LoaderJSON}, nil
			})
		},
	}
}

// DocumentMap keys each compiled document by its staged file path.
func DocumentMap(srcDir string, compiled []document.Compiled) map[string][]byte {
	out := make(map[string][]byte, len(compiled))
	for _, c := range compiled {
		out[filepath.Join(srcDir, filepath.FromSlash(emit.OperationPath(c.ID)))] = c.JSON
	}
	return out
}

func writeFile(path string, body []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, body, 0o644)
}
