// Package main provides the gqlbundle CLI. It compiles a folder of GraphQL
// operation files against a schema into a typed TypeScript library.
//
// Commands:
//   - build    : gqlbundle build -s schema.graphql -q queries/ [-o lib]
//   - manifest : print the discovered operations as JSON
//   - check    : diff the published library sources against the queries
//   - version  : print the build version
//
// Settings come from gqlbundle.yaml, GQLBUNDLE_* variables (optionally
// seeded from .env) and flags, in increasing precedence.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// version is stamped at link time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := newApp(os.Stdout, os.Stderr).run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
