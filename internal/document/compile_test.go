package document

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gqlbundle/internal/failure"
	"gqlbundle/internal/ident"
	"gqlbundle/internal/manifest"
)

const richQuery = `
query getUser($id: ID!, $first: Int = 10, $tags: [String!]) @live {
  user(id: $id) {
    id
    handle: name
    ... on Admin @include(if: true) { level }
    ...userFields
    posts(first: $first, filter: {status: PUBLISHED, score: 1.5, labels: ["a", "b\"c"], owner: null}) {
      title
    }
  }
}

fragment userFields on User {
  email
}
`

func TestCompileSourceShape(t *testing.T) {
	c, err := CompileSource("getUser.graphql", []byte(richQuery))
	require.NoError(t, err)
	assert.Equal(t, "getUser", c.Root)
	assert.Equal(t, "query", c.Operation)
	require.Len(t, c.Doc.Definitions, 2)

	op, ok := c.Doc.Definitions[0].(*OperationDefinition)
	require.True(t, ok)
	assert.Equal(t, "getUser", op.Name.Value)
	require.Len(t, op.VariableDefinitions, 3)
	_, nonNull := op.VariableDefinitions[0].Type.(*NonNullType)
	assert.True(t, nonNull)
	assert.NotNil(t, op.VariableDefinitions[1].DefaultValue)

	user := op.SelectionSet.Selections[0].(*Field)
	handle := user.SelectionSet.Selections[1].(*Field)
	require.NotNil(t, handle.Alias)
	assert.Equal(t, "handle", handle.Alias.Value)
	assert.Equal(t, "name", handle.Name.Value)
	assert.Nil(t, user.SelectionSet.Selections[0].(*Field).Alias, "unaliased fields carry no alias")

	var generic map[string]any
	require.NoError(t, json.Unmarshal(c.JSON, &generic))
	assert.Equal(t, "Document", generic["kind"])
	assert.NotContains(t, string(c.JSON), `"loc"`)
}

func TestFragmentOnlyDocument(t *testing.T) {
	c, err := CompileSource("userFields.graphql", []byte("fragment userFields on User { id }"))
	require.NoError(t, err)
	assert.Equal(t, "userFields", c.Root)
	assert.Equal(t, OperationFragment, c.Operation)
}

func TestEmptyListsEncodedAsArrays(t *testing.T) {
	c, err := CompileSource("q.graphql", []byte("{ a }"))
	require.NoError(t, err)
	s := string(c.JSON)
	assert.Contains(t, s, `"variableDefinitions":[]`)
	assert.Contains(t, s, `"directives":[]`)
	assert.Contains(t, s, `"arguments":[]`)
	assert.NotContains(t, s, `"name":{"kind":"Name","value":""}`)
}

func TestParseErrorNamesFile(t *testing.T) {
	_, err := CompileSource("broken.graphql", []byte("query { user { id }"))
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.Parse))
	assert.Contains(t, err.Error(), "broken.graphql:")
}

func TestEmptyDocumentRejected(t *testing.T) {
	_, err := CompileSource("empty.graphql", []byte("  # only a comment\n"))
	assert.True(t, failure.Is(err, failure.Parse), "got %v", err)
}

// definitionsByName keys top-level definitions by kind and name; the
// printer groups operations before fragments, so round trips compare
// documents without regard to definition order.
func definitionsByName(d *Document) map[string]Node {
	out := make(map[string]Node, len(d.Definitions))
	for _, def := range d.Definitions {
		key := def.NodeKind() + ":"
		switch n := def.(type) {
		case *OperationDefinition:
			if n.Name != nil {
				key += n.Name.Value
			}
		case *FragmentDefinition:
			key += n.Name.Value
		}
		out[key] = def
	}
	return out
}

func TestRoundTripStable(t *testing.T) {
	first, err := Parse("a.graphql", []byte(richQuery))
	require.NoError(t, err)
	printed := Print(first)

	second, err := Parse("printed.graphql", []byte(printed))
	require.NoError(t, err, "printed text:\n%s", printed)

	if !reflect.DeepEqual(FromAST(first), FromAST(second)) {
		a, _ := Marshal(FromAST(first))
		b, _ := Marshal(FromAST(second))
		t.Fatalf("round trip changed the document\nbefore: %s\nafter:  %s", a, b)
	}
}

func TestFragmentFirstSourceKeepsOrder(t *testing.T) {
	src := "fragment f on T { a }\nquery q { ...f }\n"
	first, err := Parse("a.graphql", []byte(src))
	require.NoError(t, err)
	doc := FromAST(first)
	require.Len(t, doc.Definitions, 2)
	assert.IsType(t, &FragmentDefinition{}, doc.Definitions[0])
	assert.IsType(t, &OperationDefinition{}, doc.Definitions[1])

	second, err := Parse("b.graphql", []byte(Print(first)))
	require.NoError(t, err)
	assert.Equal(t, definitionsByName(doc), definitionsByName(FromAST(second)))

	c, err := CompileSource("a.graphql", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, "q", c.Root)
	assert.Equal(t, "query", c.Operation)
}

func TestCompilePreservesManifestOrder(t *testing.T) {
	root := t.TempDir()
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, n := range names {
		p := filepath.Join(root, n+".graphql")
		require.NoError(t, os.WriteFile(p, []byte("query "+n+" { x }"), 0o644))
	}
	m, err := manifest.Build(context.Background(), manifest.Options{Root: root, Deriver: ident.Default()})
	require.NoError(t, err)

	got, err := Compile(context.Background(), m, Options{Concurrency: 3})
	require.NoError(t, err)
	require.Len(t, got, len(names))
	for i, n := range names {
		assert.Equal(t, n, got[i].ID)
		assert.Equal(t, n, got[i].Root)
	}

	seq, err := Compile(context.Background(), m, Options{Concurrency: 1})
	require.NoError(t, err)
	for i := range seq {
		assert.Equal(t, string(seq[i].JSON), string(got[i].JSON))
	}
}

func TestCompileFailsWholeBuild(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "good.graphql"), []byte("query good { x }"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "bad.graphql"), []byte("query bad { x"), 0o644))
	m, err := manifest.Build(context.Background(), manifest.Options{Root: root})
	require.NoError(t, err)

	out, err := Compile(context.Background(), m, Options{})
	assert.Nil(t, out)
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.Parse))
	assert.True(t, strings.Contains(err.Error(), "bad.graphql"))
}
