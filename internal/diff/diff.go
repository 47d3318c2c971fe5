// Package diff renders unified diffs for diagnostics. It uses
// github.com/pmezard/go-difflib/difflib to produce classic unified patches
// (---/+++ headers, @@ hunks, lines prefixed with ' ', '-', '+').
package diff

import (
	"bytes"
	"fmt"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// Options controls patch generation behavior.
type Options struct {
	// MaxBytes is a guardrail on input size (old+new). When exceeded,
	// a minimal placeholder patch is returned and oversize=true.
	// 0 means "no limit".
	MaxBytes int

	// Context controls the number of context lines in unified hunks.
	// If 0, default to 3.
	Context int
}

// Unified produces a unified patch for a↦b. Identical inputs yield "".
func Unified(aName, bName string, a, b []byte, opt Options) (body string, oversize bool) {
	if bytes.Equal(a, b) {
		return "", false
	}
	if opt.MaxBytes > 0 && (len(a)+len(b)) > opt.MaxBytes {
		return omitted(aName, bName), true
	}
	return render(aName, bName, splitLinesKeepNL(string(a)), splitLinesKeepNL(string(b)), opt.Context), false
}

// Lists diffs two string lists, one item per line. Callers sort the lists
// first when order is not significant.
func Lists(aName, bName string, a, b []string) string {
	if equal(a, b) {
		return ""
	}
	return render(aName, bName, asLines(a), asLines(b), 0)
}

func render(aName, bName string, a, b []string, ctx int) string {
	if ctx <= 0 {
		ctx = 3
	}
	u := difflib.UnifiedDiff{
		A:        a,
		B:        b,
		FromFile: aName,
		ToFile:   bName,
		Context:  ctx,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil || s == "" {
		return omitted(aName, bName)
	}
	return s
}

func asLines(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s + "\n"
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// splitLinesKeepNL splits into lines and keeps newline characters,
// which produces better unified hunks.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.SplitAfter(s, "\n")
}

func omitted(aName, bName string) string {
	return fmt.Sprintf("--- %s\n+++ %s\n@@\n# diff omitted\n", aName, bName)
}
