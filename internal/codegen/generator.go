// Package codegen turns the prepared schema and the staged operations into
// the TypeScript result types and the identifier-to-type bindings.
package codegen

import (
	"context"

	"gqlbundle/internal/failure"
	"gqlbundle/internal/xexec"
)

// Request is one generator invocation.
type Request struct {
	SchemaPath    string // prepared schema
	OperationsDir string // staged operation files, one per identifier
	Includes      string // glob of operation files under OperationsDir
	OutputPath    string // single flat TypeScript file
}

// Generator produces TypeScript result types for a set of operations.
type Generator interface {
	Generate(ctx context.Context, req Request) error
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) error

func (f GeneratorFunc) Generate(ctx context.Context, req Request) error { return f(ctx, req) }

// DefaultApolloCommand is the apollo CLI entry point.
const DefaultApolloCommand = "apollo"

// Apollo runs `apollo client:codegen` with flat TypeScript output.
type Apollo struct {
	Runner  xexec.Runner
	Command string // e.g. "npx apollo"; empty means DefaultApolloCommand
	Dir     string
}

func (a Apollo) Generate(ctx context.Context, req Request) error {
	line := a.Command
	if line == "" {
		line = DefaultApolloCommand
	}
	name, lead := xexec.Split(line)
	args := append(append([]string(nil), lead...), Args(req)...)
	runner := a.Runner
	if runner == nil {
		runner = xexec.OS{}
	}

	cmd := xexec.Command{Name: name, Args: args, Dir: a.Dir}
	res, err := runner.Run(ctx, cmd)
	if err != nil {
		return failure.Wrap(failure.Codegen, err, "type generation failed").
			WithPath(req.SchemaPath).
			WithDiagnostics(res.Combined())
	}
	return nil
}

// Args returns the client:codegen arguments for req.
func Args(req Request) []string {
	return []string{
		"client:codegen",
		"--localSchemaFile", req.SchemaPath,
		"--includes", req.Includes,
		"--target", "typescript",
		"--addTypename",
		"--passthroughCustomScalars",
		"--outputFlat", req.OutputPath,
	}
}
