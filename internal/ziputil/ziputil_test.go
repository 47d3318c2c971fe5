package ziputil

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestSanitizePath(t *testing.T) {
	cases := map[string]string{
		"a/b.txt":          "a/b.txt",
		"/abs/x":           "abs/x",
		"../../etc/passwd": "etc/passwd",
		"a/./b/../c":       "a/c",
		"C:/win/file":      "win/file",
		"":                 "entry",
	}
	for in, want := range cases {
		if got := SanitizePath(in); got != want {
			t.Errorf("SanitizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEntriesUseFixedTime(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if err := WriteText(zw, "a.txt", []byte("a")); err != nil {
		t.Fatal(err)
	}
	if err := WriteJSON(zw, "b.json", map[string]string{"k": "<v>"}); err != nil {
		t.Fatal(err)
	}
	if err := CopyFromReader(zw, "/c.txt", strings.NewReader("c")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	names := []string{}
	for _, f := range zr.File {
		names = append(names, f.Name)
		if !f.Modified.Equal(FixedZipTime) {
			t.Errorf("%s: modified %v", f.Name, f.Modified)
		}
		if f.Name == "b.json" {
			rc, _ := f.Open()
			body, _ := io.ReadAll(rc)
			rc.Close()
			if !strings.Contains(string(body), "<v>") {
				t.Errorf("json escaped HTML: %s", body)
			}
		}
	}
	if strings.Join(names, ",") != "a.txt,b.json,c.txt" {
		t.Fatalf("names = %v", names)
	}
}
