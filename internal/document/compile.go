package document

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
	"golang.org/x/sync/errgroup"

	"gqlbundle/internal/failure"
	"gqlbundle/internal/manifest"
)

// OperationFragment marks documents holding only fragment definitions.
const OperationFragment = "fragment"

// Compiled is the compiled form of one manifest entry.
type Compiled struct {
	ID        string
	RelPath   string
	Root      string // first named operation, else first fragment
	Operation string // query|mutation|subscription|fragment
	Doc       *Document
	JSON      []byte // canonical encoding of Doc, shared by every emitter
	AST       *ast.QueryDocument
}

// Options tunes Compile.
type Options struct {
	Concurrency int // parallel parses; <=0 means GOMAXPROCS
}

// Compile reads and parses every manifest entry. The result is in manifest
// order regardless of concurrency; the first parse error aborts the build.
func Compile(ctx context.Context, m manifest.Manifest, opts Options) ([]Compiled, error) {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	out := make([]Compiled, len(m.Entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, e := range m.Entries {
		if gctx.Err() != nil {
			break
		}
		i, e := i, e
		g.Go(func() error {
			src, err := os.ReadFile(e.AbsPath)
			if err != nil {
				return failure.Wrap(failure.IO, err, "read operation").WithPath(e.RelPath)
			}
			c, err := CompileSource(e.RelPath, src)
			if err != nil {
				return err
			}
			c.ID = e.ID
			out[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// CompileSource parses one operation source. name is used in errors.
func CompileSource(name string, src []byte) (Compiled, error) {
	doc, err := Parse(name, src)
	if err != nil {
		return Compiled{}, err
	}
	d := FromAST(doc)
	b, err := Marshal(d)
	if err != nil {
		return Compiled{}, failure.Wrap(failure.Parse, err, "encode document").WithPath(name)
	}
	root, op := rootOf(doc)
	return Compiled{RelPath: name, Root: root, Operation: op, Doc: d, JSON: b, AST: doc}, nil
}

// Parse parses src into a query document. Syntax errors and documents
// without any definition are reported as failure.Parse.
func Parse(name string, src []byte) (*ast.QueryDocument, error) {
	doc, perr := parser.ParseQuery(&ast.Source{Name: name, Input: string(src)})
	if perr != nil {
		return nil, parseFailure(name, perr)
	}
	if len(doc.Operations) == 0 && len(doc.Fragments) == 0 {
		return nil, failure.New(failure.Parse, "%s: document has no definitions", name).WithPath(name)
	}
	return doc, nil
}

func parseFailure(name string, err error) error {
	var ge *gqlerror.Error
	if errors.As(err, &ge) && ge != nil {
		loc := ""
		if len(ge.Locations) > 0 {
			loc = fmt.Sprintf(":%d:%d", ge.Locations[0].Line, ge.Locations[0].Column)
		}
		return failure.New(failure.Parse, "%s%s: %s", name, loc, ge.Message).WithPath(name)
	}
	return failure.Wrap(failure.Parse, err, "parse operation").WithPath(name)
}

func rootOf(doc *ast.QueryDocument) (string, string) {
	d := FromAST(doc)
	for _, def := range d.Definitions {
		if op, ok := def.(*OperationDefinition); ok && op.Name != nil {
			return op.Name.Value, op.Operation
		}
	}
	op := OperationFragment
	for _, def := range d.Definitions {
		if o, ok := def.(*OperationDefinition); ok {
			op = o.Operation
			break
		}
	}
	for _, def := range d.Definitions {
		if fr, ok := def.(*FragmentDefinition); ok {
			return fr.Name.Value, op
		}
	}
	return "", op
}

// Marshal encodes a document deterministically without HTML escaping.
func Marshal(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Print renders a parsed document as normalized GraphQL text.
func Print(doc *ast.QueryDocument) string {
	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatQueryDocument(doc)
	return buf.String()
}
