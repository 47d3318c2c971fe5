// Package persisted builds an Apollo persisted-query manifest from the
// compiled operations.
package persisted

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"gqlbundle/internal/document"
)

// Format and Version identify the manifest layout.
const (
	Format  = "apollo-persisted-query-manifest"
	Version = 1
	File    = "persisted-operations.json"
)

// Operation is one persisted operation.
type Operation struct {
	ID   string `json:"id"`
	Body string `json:"body"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Manifest is the persisted-operations.json document.
type Manifest struct {
	Format     string      `json:"format"`
	Version    int         `json:"version"`
	Operations []Operation `json:"operations"`
}

// Build lists every executable operation in manifest order. Fragment-only
// documents are skipped; the body of an operation is its whole printed
// document, so fragments declared in the same file travel with it.
func Build(compiled []document.Compiled) Manifest {
	m := Manifest{Format: Format, Version: Version, Operations: []Operation{}}
	for _, c := range compiled {
		if c.AST == nil || c.Operation == document.OperationFragment || len(c.AST.Operations) == 0 {
			continue
		}
		body := document.Print(c.AST)
		sum := sha256.Sum256([]byte(body))
		m.Operations = append(m.Operations, Operation{
			ID:   hex.EncodeToString(sum[:]),
			Body: body,
			Name: c.Root,
			Type: c.Operation,
		})
	}
	return m
}

// Marshal encodes m as indented JSON with a trailing newline.
func Marshal(m Manifest) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
