package schema

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"gqlbundle/internal/failure"
)

const userSchema = `scalar Cursor
scalar AWSJSON
type Query { user(id: ID!): User }
type User { id: ID! created: AWSDateTime cursor: Cursor }
scalar Money
`

func TestPrepareIsConcatenation(t *testing.T) {
	got := Prepare([]byte("type Query { a: Int }"))
	assert.True(t, bytes.HasPrefix(got, []byte("type Query { a: Int }\n")))
	assert.True(t, bytes.HasSuffix(got, []byte(Extensions)))
	assert.Equal(t, len("type Query { a: Int }")+1+len(Extensions), len(got))
}

func TestPrepareEmptyUserSchema(t *testing.T) {
	assert.Equal(t, "\n"+Extensions, string(Prepare(nil)))
}

func TestExtensionsCarryVersion(t *testing.T) {
	first, _, _ := strings.Cut(string(Prepare(nil))[1:], "\n")
	assert.Equal(t, "# gqlbundle schema extensions v1", first)
}

func TestExtensionsDeclareEveryAWSScalar(t *testing.T) {
	doc, err := parser.ParseSchema(&ast.Source{Name: "ext", Input: Extensions})
	require.NoError(t, err)
	declared := map[string]bool{}
	for _, d := range doc.Definitions {
		if d.Kind == ast.Scalar {
			declared[d.Name] = true
		}
	}
	for name := range AWSScalars {
		assert.True(t, declared[name], name)
	}
	require.Len(t, doc.Directives, 1)
	assert.Equal(t, "aws_subscribe", doc.Directives[0].Name)
}

func TestUserScalars(t *testing.T) {
	got, err := UserScalars("schema.graphql", []byte(userSchema))
	require.NoError(t, err)
	assert.Equal(t, []string{"Cursor", "Money"}, got)
}

func TestUserScalarsSyntaxError(t *testing.T) {
	_, err := UserScalars("schema.graphql", []byte("type Query {"))
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.Codegen))
	assert.True(t, strings.Contains(err.Error(), "schema.graphql"))
}
