package persisted

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gqlbundle/internal/document"
)

func compile(t *testing.T, id, src string) document.Compiled {
	t.Helper()
	c, err := document.CompileSource(id+".graphql", []byte(src))
	require.NoError(t, err)
	c.ID = id
	return c
}

func TestBuild(t *testing.T) {
	m := Build([]document.Compiled{
		compile(t, "getUser", "query getUser { user { ...f } }\nfragment f on User { id }"),
		compile(t, "userFields", "fragment userFields on User { id }"),
		compile(t, "rename", "mutation rename($n: String!) { rename(name: $n) }"),
	})
	assert.Equal(t, Format, m.Format)
	assert.Equal(t, Version, m.Version)
	require.Len(t, m.Operations, 2)

	op := m.Operations[0]
	assert.Equal(t, "getUser", op.Name)
	assert.Equal(t, "query", op.Type)
	assert.Contains(t, op.Body, "fragment f on User")
	sum := sha256.Sum256([]byte(op.Body))
	assert.Equal(t, hex.EncodeToString(sum[:]), op.ID)

	assert.Equal(t, "mutation", m.Operations[1].Type)
}

func TestBuildIDIgnoresFormatting(t *testing.T) {
	a := Build([]document.Compiled{compile(t, "q", "query q { a b }")})
	b := Build([]document.Compiled{compile(t, "q", "query q {\n  a\n\n  b\n}\n")})
	assert.Equal(t, a.Operations[0].ID, b.Operations[0].ID)
}

func TestMarshal(t *testing.T) {
	b, err := Marshal(Build(nil))
	require.NoError(t, err)
	var back map[string]any
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, []any{}, back["operations"])
	assert.Equal(t, byte('\n'), b[len(b)-1])
}
