package bundle

import (
	"bytes"
	"strings"
	"text/template"
)

// ReadmeOptions configures the archive README.
// All fields are rendered deterministically; no timestamps or environment data.
type ReadmeOptions struct {
	Name       string
	BundleID   string
	Operations []string
	Persisted  bool
	Bundler    string
}

const readmeTemplate = `
# {{.Name}}

This archive is a **GraphQL operations library** produced by *gqlbundle*. It exposes, for every operation, its result type and its parsed document under one identifier.

## Layout
- **index.js / index.d.ts**: lazy index: ` + "`documents`" + ` table importing each ` + "`operations/<id>.graphql`" + `.
- **index.bundle.js**: static index with every document inlined ({{.Bundler}}).
- **manifest.js / manifest.d.ts**: the identifier list and the ` + "`OperationId`" + ` type.
- **query-types.js / query-types.d.ts**: generated result types and ` + "`OperationResults`" + `.
- **operations/**: the operation sources, one file per identifier.
- **src/**: the TypeScript sources the library was compiled from.
- **BUNDLE.ID**: content hash of the operation set.
{{- if .Persisted}}
- **persisted-operations.json**: Apollo persisted query manifest.
{{- end}}

## Conventions
- Encoding: **UTF-8**; newlines: **\n** only.
- Bundle id: **{{.BundleID}}**.

## Operations ({{len .Operations}})
{{- range .Operations}}
- ` + "`{{.}}`" + `
{{- end}}
`

var readmeTpl = template.Must(template.New("readme").Parse(readmeTemplate))

// GenerateReadme renders the archive README.
func GenerateReadme(opts ReadmeOptions) []byte {
	if strings.TrimSpace(opts.Name) == "" {
		opts.Name = "gqlbundle library"
	}
	if opts.Bundler == "" {
		opts.Bundler = "inline"
	}

	var buf bytes.Buffer
	_ = readmeTpl.Execute(&buf, opts)
	// Normalize lines: strip trailing spaces and ensure only \n newlines.
	lines := strings.Split(strings.TrimLeft(buf.String(), "\n"), "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRight(ln, " \t")
	}
	out := strings.Join(lines, "\n")
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return []byte(out)
}
