package codegen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gqlbundle/internal/document"
	"gqlbundle/internal/failure"
	"gqlbundle/internal/schema"
	"gqlbundle/internal/textutil"
)

// File names inside the working directory.
const (
	SchemaFile    = "schema.graphql"
	GeneratedFile = "generated-types.ts"
)

// FallbackScalarType is used for user scalars without a configured alias.
const FallbackScalarType = "unknown"

// Binding maps an identifier to the name of its generated result type.
type Binding struct {
	ID       string
	TypeName string
}

// Types is the synthesized query-types module.
type Types struct {
	Source   []byte
	Bindings []Binding
	Scalars  []string // aliased scalar names, sorted
}

// IDs returns the bound identifiers in binding order.
func (t Types) IDs() []string {
	out := make([]string, len(t.Bindings))
	for i, b := range t.Bindings {
		out[i] = b.ID
	}
	return out
}

// Input collects what Synthesize needs.
type Input struct {
	WorkDir       string
	SchemaName    string // for error messages
	Schema        []byte // user schema text
	StagedDir     string
	Compiled      []document.Compiled
	ScalarAliases map[string]string
}

var reDeclared = regexp.MustCompile(`(?m)^export\s+(?:declare\s+)?(?:interface|type|enum|const\s+enum)\s+([A-Za-z_$][\w$]*)`)

// Synthesize writes the prepared schema, runs gen over the staged operations
// and assembles the final module: generated types, scalar aliases and the
// OperationResults interface keyed by identifier.
func Synthesize(ctx context.Context, gen Generator, in Input) (Types, error) {
	userScalars, err := schema.UserScalars(in.SchemaName, in.Schema)
	if err != nil {
		return Types{}, err
	}

	schemaPath := filepath.Join(in.WorkDir, SchemaFile)
	if err := os.WriteFile(schemaPath, schema.Prepare(in.Schema), 0o644); err != nil {
		return Types{}, failure.Wrap(failure.IO, err, "write prepared schema").WithPath(schemaPath)
	}

	out := filepath.Join(in.WorkDir, GeneratedFile)
	req := Request{
		SchemaPath:    schemaPath,
		OperationsDir: in.StagedDir,
		Includes:      filepath.ToSlash(filepath.Join(in.StagedDir, "**", "*.graphql")),
		OutputPath:    out,
	}
	if err := gen.Generate(ctx, req); err != nil {
		if failure.KindOf(err) == "" {
			err = failure.Wrap(failure.Codegen, err, "type generation failed")
		}
		return Types{}, err
	}

	generated, err := os.ReadFile(out)
	if err != nil {
		return Types{}, failure.Wrap(failure.Codegen, err, "generator produced no output").WithPath(out)
	}
	generated = textutil.NormalizeLF(generated)

	declared := map[string]struct{}{}
	for _, m := range reDeclared.FindAllSubmatch(generated, -1) {
		declared[string(m[1])] = struct{}{}
	}

	bindings, err := bind(in.Compiled, declared)
	if err != nil {
		return Types{}, err
	}
	scalarBlock, scalars := aliases(userScalars, in.ScalarAliases, declared)

	src := textutil.JoinWithSingleNL(
		generated,
		[]byte("\n"+scalarBlock),
		[]byte("\n"+ResultsInterface(bindings)),
	)
	return Types{Source: textutil.EnsureTrailingLF(src), Bindings: bindings, Scalars: scalars}, nil
}

func bind(compiled []document.Compiled, declared map[string]struct{}) ([]Binding, error) {
	out := make([]Binding, 0, len(compiled))
	var missing []string
	for _, c := range compiled {
		if c.Root == "" {
			return nil, failure.New(failure.Codegen, "operation %q has no named definition to type", c.ID).WithPath(c.RelPath)
		}
		if _, ok := declared[c.Root]; !ok {
			missing = append(missing, fmt.Sprintf("%s (%s)", c.Root, c.RelPath))
			continue
		}
		out = append(out, Binding{ID: c.ID, TypeName: c.Root})
	}
	if len(missing) > 0 {
		return nil, failure.New(failure.Codegen, "generated types missing for %d operation(s)", len(missing)).
			WithDiagnostics(strings.Join(missing, "\n"))
	}
	return out, nil
}

func aliases(user []string, configured map[string]string, declared map[string]struct{}) (string, []string) {
	all := make(map[string]string, len(schema.AWSScalars)+len(user))
	for name, ts := range schema.AWSScalars {
		all[name] = ts
	}
	for _, name := range user {
		ts := configured[name]
		if ts == "" {
			ts = FallbackScalarType
		}
		all[name] = ts
	}
	names := make([]string, 0, len(all))
	for name := range all {
		if _, taken := declared[name]; taken {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("// Custom scalars.\n")
	for _, name := range names {
		fmt.Fprintf(&b, "export type %s = %s;\n", name, all[name])
	}
	return b.String(), names
}

// ResultsInterface renders the identifier-to-result-type interface.
func ResultsInterface(bindings []Binding) string {
	var b strings.Builder
	b.WriteString("export interface OperationResults {\n")
	for _, bd := range bindings {
		fmt.Fprintf(&b, "  %s: %s;\n", strconv.Quote(bd.ID), bd.TypeName)
	}
	b.WriteString("}\n")
	return b.String()
}
