package diff

import (
	"strings"
	"testing"
)

func TestUnifiedIdenticalIsEmpty(t *testing.T) {
	body, over := Unified("a", "b", []byte("x\n"), []byte("x\n"), Options{})
	if body != "" || over {
		t.Fatalf("expected empty diff, got %q (oversize=%v)", body, over)
	}
}

func TestUnifiedShowsChange(t *testing.T) {
	body, _ := Unified("old/index.ts", "new/index.ts", []byte("a\nb\nc\n"), []byte("a\nB\nc\n"), Options{})
	for _, want := range []string{"--- old/index.ts", "+++ new/index.ts", "-b\n", "+B\n"} {
		if !strings.Contains(body, want) {
			t.Errorf("diff missing %q:\n%s", want, body)
		}
	}
}

func TestUnifiedOversize(t *testing.T) {
	body, over := Unified("a", "b", []byte("aaaa"), []byte("bbbb"), Options{MaxBytes: 4})
	if !over || !strings.Contains(body, "omitted") {
		t.Fatalf("expected oversize placeholder, got %q", body)
	}
}

func TestLists(t *testing.T) {
	if Lists("a", "b", []string{"x"}, []string{"x"}) != "" {
		t.Fatal("equal lists must not diff")
	}
	body := Lists("manifest", "index", []string{"a", "b"}, []string{"a", "c"})
	if !strings.Contains(body, "-b\n") || !strings.Contains(body, "+c\n") {
		t.Fatalf("unexpected diff:\n%s", body)
	}
}
