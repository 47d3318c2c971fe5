package textutil

import "testing"

func TestNormalizeLF(t *testing.T) {
	got := string(NormalizeLF([]byte("a\r\nb\rc\n")))
	if got != "a\nb\nc\n" {
		t.Fatalf("got %q", got)
	}
}

func TestEnsureTrailingLF(t *testing.T) {
	for in, want := range map[string]string{"": "", "a": "a\n", "a\n": "a\n"} {
		if got := string(EnsureTrailingLF([]byte(in))); got != want {
			t.Errorf("EnsureTrailingLF(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestJoinWithSingleNL(t *testing.T) {
	got := string(JoinWithSingleNL([]byte("a"), []byte("b\n"), []byte("c")))
	if got != "a\nb\nc" {
		t.Fatalf("got %q", got)
	}
}
