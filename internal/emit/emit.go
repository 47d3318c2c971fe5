// Package emit renders the TypeScript sources of the library: the manifest
// module, the index in its lazy (import per operation) and embedded (JSON
// literal) forms, the .graphql module shim and the compiler project.
//
// All emitters are pure and byte-stable for identical inputs.
package emit

import (
	"bytes"
	"encoding/json"
	"text/template"

	"gqlbundle/internal/document"
	"gqlbundle/internal/failure"
	"gqlbundle/internal/sortutil"
	"gqlbundle/internal/textutil"
)

// Source file names inside the TypeScript project.
const (
	ManifestFile  = "manifest.ts"
	IndexFile     = "index.ts"
	TypesFile     = "query-types.ts"
	ShimFile      = "graphql.d.ts"
	TSConfigFile  = "tsconfig.json"
	BundleFile    = "index.bundle.js"
	OperationsDir = "operations"
)

const header = "// Code generated by gqlbundle. DO NOT EDIT.\n"

// Entry is one index table row.
type Entry struct {
	ID     string
	Import string // module specifier of the operation file
}

// Entries lists the index rows for compiled documents, importing each from
// OperationsDir/<id>.graphql.
func Entries(compiled []document.Compiled) []Entry {
	out := make([]Entry, len(compiled))
	for i, c := range compiled {
		out[i] = Entry{ID: c.ID, Import: "./" + OperationsDir + "/" + c.ID + ".graphql"}
	}
	return out
}

// OperationPath returns the slash-separated path of a staged operation file
// relative to the project root.
func OperationPath(id string) string {
	return OperationsDir + "/" + id + ".graphql"
}

var funcs = template.FuncMap{
	"quote": quote,
	"raw":   func(b []byte) string { return string(b) },
}

// quote renders s as a string literal valid in both JSON and TypeScript.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

const manifestTemplate = header + `
export const manifest = [
{{- range .}}
  {{quote .}},
{{- end}}
] as const;

export type OperationId = typeof manifest[number];
`

const indexTemplate = header + `
import type { DocumentNode } from "graphql";
import type { OperationId } from "./manifest";
import type { OperationResults } from "./query-types";
{{- range $i, $e := .}}
import d{{$i}} from {{quote $e.Import}};
{{- end}}

export type { DocumentNode } from "graphql";
export { manifest } from "./manifest";
export type { OperationId } from "./manifest";
export * from "./query-types";

export type IDocumentNodes = { [K in OperationId]: DocumentNode };

export const documents: IDocumentNodes = {
{{- range $i, $e := .}}
  {{quote $e.ID}}: d{{$i}},
{{- end}}
};

type Exact<A, B> = [A] extends [B] ? ([B] extends [A] ? true : false) : false;

// Fails to compile unless every operation has exactly one result type.
export const keySetsMatch: Exact<keyof OperationResults, OperationId> = true;

export default documents;
`

const embeddedTemplate = header + `"use strict";
Object.defineProperty(exports, "__esModule", { value: true });

const manifest = [
{{- range .}}
  {{quote .ID}},
{{- end}}
];

const documents = {
{{- range .}}
  {{quote .ID}}: {{raw .JSON}},
{{- end}}
};

exports.manifest = manifest;
exports.documents = documents;
exports.keySetsMatch = true;
exports.default = documents;
`

const shimTemplate = header + `
declare module "*.graphql" {
  import type { DocumentNode } from "graphql";
  const document: DocumentNode;
  export default document;
}
`

var (
	manifestTpl = template.Must(template.New("manifest").Funcs(funcs).Parse(manifestTemplate))
	indexTpl    = template.Must(template.New("index").Funcs(funcs).Parse(indexTemplate))
	embeddedTpl = template.Must(template.New("embedded").Funcs(funcs).Parse(embeddedTemplate))
	shimTpl     = template.Must(template.New("shim").Funcs(funcs).Parse(shimTemplate))
)

// ManifestModule renders manifest.ts for ids in the given order.
func ManifestModule(ids []string) ([]byte, error) {
	if err := checkIDs(ids); err != nil {
		return nil, err
	}
	return render(manifestTpl, ids)
}

// IndexModule renders the lazy index.ts: one default import per operation
// file and an explicit identifier table.
func IndexModule(entries []Entry) ([]byte, error) {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	if err := checkIDs(ids); err != nil {
		return nil, err
	}
	return render(indexTpl, entries)
}

// EmbeddedModule renders the static CommonJS index with every document
// inlined as a JSON literal.
func EmbeddedModule(compiled []document.Compiled) ([]byte, error) {
	ids := make([]string, len(compiled))
	for i, c := range compiled {
		ids[i] = c.ID
	}
	if err := checkIDs(ids); err != nil {
		return nil, err
	}
	return render(embeddedTpl, compiled)
}

// Shim renders the ambient module declaration for .graphql imports.
func Shim() []byte {
	b, _ := render(shimTpl, nil)
	return b
}

func checkIDs(ids []string) error {
	if len(ids) == 0 {
		return failure.New(failure.TypeCheck, "index has no operations")
	}
	if d := sortutil.Duplicates(ids); len(d) > 0 {
		return failure.New(failure.TypeCheck, "duplicate identifiers in index: %v", d)
	}
	return nil
}

func render(t *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, failure.Wrap(failure.IO, err, "render %s", t.Name())
	}
	return textutil.EnsureTrailingLF(buf.Bytes()), nil
}
