package validate

import (
	"strings"
	"testing"

	"gqlbundle/internal/failure"
	"gqlbundle/internal/manifest"
)

const sha = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestKeySetsEqual(t *testing.T) {
	ids := []string{"getUser", "userFields"}
	if err := KeySets(ids, []string{"userFields", "getUser"}, ids); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestKeySetsSingleSidedDifferences(t *testing.T) {
	base := []string{"a", "b"}
	cases := map[string][3][]string{
		"index missing":  {base, {"a"}, base},
		"index extra":    {base, {"a", "b", "c"}, base},
		"types missing":  {base, base, {"b"}},
		"types extra":    {base, base, {"a", "b", "z"}},
		"manifest extra": {{"a", "b", "c"}, base, base},
		"index dup":      {base, {"a", "b", "b"}, base},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			err := KeySets(c[0], c[1], c[2])
			if err == nil {
				t.Fatal("expected mismatch")
			}
			if !failure.Is(err, failure.TypeCheck) {
				t.Fatalf("kind = %v, want TypeCheck", failure.KindOf(err))
			}
		})
	}
}

func TestKeySetsDiagnosticsNameKey(t *testing.T) {
	err := KeySets([]string{"a", "b"}, []string{"a"}, []string{"a", "b"})
	diag := failure.DiagnosticsOf(err)
	if !strings.Contains(diag, "-b") || !strings.Contains(diag, "+++ index") {
		t.Fatalf("diagnostics missing key diff:\n%s", diag)
	}
}

func TestManifestOK(t *testing.T) {
	m := manifest.Manifest{Entries: []manifest.Entry{
		{ID: "getUser", RelPath: "getUser.graphql", SHA256: sha},
		{ID: "userFields", RelPath: "fragments/userFields.graphql", SHA256: sha},
	}}
	if err := Manifest(m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestManifestAggregatesIssues(t *testing.T) {
	m := manifest.Manifest{Entries: []manifest.Entry{
		{ID: "x", RelPath: "z.graphql", SHA256: sha},
		{ID: "x", RelPath: "../a.graphql", SHA256: "nope"},
		{ID: "", RelPath: `dir\b.graphql`, SHA256: sha},
	}}
	err := Manifest(m)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"already used", "'..'", "sha256", "id must be non-empty", "forward slashes", "sorted"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("missing %q in:\n%v", want, err)
		}
	}
	if Manifest(manifest.Manifest{}) == nil {
		t.Fatal("empty manifest must fail")
	}
}
