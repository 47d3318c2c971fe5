// Package schema prepares the schema text handed to the type generator.
package schema

import (
	"fmt"
	"sort"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"gqlbundle/internal/failure"
)

// ExtensionsVersion identifies the built-in extension block. It is written
// into the block's first line; bump it when the declarations change.
const ExtensionsVersion = 1

// AWSScalars are the AppSync scalars declared by Extensions, mapped to the
// TypeScript type their wire value decodes to.
var AWSScalars = map[string]string{
	"AWSDate":      "string",
	"AWSTime":      "string",
	"AWSDateTime":  "string",
	"AWSTimestamp": "number",
	"AWSEmail":     "string",
	"AWSJSON":      "string",
	"AWSURL":       "string",
	"AWSPhone":     "string",
	"AWSIPAddress": "string",
}

// Extensions is the fixed block appended to every user schema.
var Extensions = fmt.Sprintf("# gqlbundle schema extensions v%d\n", ExtensionsVersion) + extensionDefs

const extensionDefs = `directive @aws_subscribe(mutations: [String]) on FIELD_DEFINITION

scalar AWSDate
scalar AWSTime
scalar AWSDateTime
scalar AWSTimestamp
scalar AWSEmail
scalar AWSJSON
scalar AWSURL
scalar AWSPhone
scalar AWSIPAddress
`

// Prepare returns user followed by a newline and Extensions. The text is
// not validated.
func Prepare(user []byte) []byte {
	out := make([]byte, 0, len(user)+1+len(Extensions))
	out = append(out, user...)
	out = append(out, '\n')
	return append(out, Extensions...)
}

// UserScalars returns the custom scalars declared in the user schema, sorted.
// Built-in extension scalars are excluded. Only syntax is checked.
func UserScalars(name string, user []byte) ([]string, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: name, Input: string(user)})
	if err != nil {
		return nil, failure.Wrap(failure.Codegen, err, "parse schema").WithPath(name)
	}
	seen := map[string]struct{}{}
	var out []string
	collect := func(defs ast.DefinitionList) {
		for _, d := range defs {
			if d.Kind != ast.Scalar {
				continue
			}
			if _, aws := AWSScalars[d.Name]; aws {
				continue
			}
			if _, dup := seen[d.Name]; dup {
				continue
			}
			seen[d.Name] = struct{}{}
			out = append(out, d.Name)
		}
	}
	collect(doc.Definitions)
	collect(doc.Extensions)
	sort.Strings(out)
	return out, nil
}
