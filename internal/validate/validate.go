// Package validate checks the consistency of build artifacts before they are
// published. Multiple issues are aggregated into a single error.
package validate

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"gqlbundle/internal/diff"
	"gqlbundle/internal/failure"
	"gqlbundle/internal/manifest"
	"gqlbundle/internal/sortutil"
)

// KeySets requires the manifest, index and type-binding identifier sets to
// be identical. On mismatch it returns a failure.TypeCheck error whose
// diagnostics hold a unified diff of each disagreeing pair.
func KeySets(manifestIDs, indexIDs, bindingIDs []string) error {
	var errs errlist
	var diags []string

	m := sortutil.Sorted(manifestIDs)
	check := func(name string, ids []string) {
		if d := sortutil.Duplicates(ids); len(d) > 0 {
			errs.add("%s: duplicate identifiers %s", name, strings.Join(d, ", "))
		}
		s := sortutil.Sorted(ids)
		if body := diff.Lists("manifest", name, m, s); body != "" {
			errs.add("%s keys differ from manifest", name)
			diags = append(diags, body)
		}
	}
	if d := sortutil.Duplicates(manifestIDs); len(d) > 0 {
		errs.add("manifest: duplicate identifiers %s", strings.Join(d, ", "))
	}
	check("index", indexIDs)
	check("types", bindingIDs)

	if err := errs.err(); err != nil {
		return failure.Wrap(failure.TypeCheck, err, "key sets disagree").
			WithDiagnostics(strings.Join(diags, "\n"))
	}
	return nil
}

// Manifest validates structural constraints on a built manifest:
//
//   - at least one entry
//   - identifiers non-empty and unique
//   - paths relative, slash-separated, without ".." segments
//   - sha256 as 64 lowercase hex chars
//   - entries sorted by identifier
func Manifest(m manifest.Manifest) error {
	var errs errlist

	if len(m.Entries) == 0 {
		errs.add("manifest has no entries")
	}
	seen := make(map[string]string, len(m.Entries))
	for i, e := range m.Entries {
		prefix := fmt.Sprintf("entries[%d] (%s)", i, e.RelPath)
		if e.ID == "" {
			errs.add("%s: id must be non-empty", prefix)
		} else if prev, dup := seen[e.ID]; dup {
			errs.add("%s: id %q already used by %s", prefix, e.ID, prev)
		} else {
			seen[e.ID] = e.RelPath
		}

		switch {
		case e.RelPath == "":
			errs.add("%s: path must be non-empty", prefix)
		case path.IsAbs(e.RelPath) || strings.HasPrefix(e.RelPath, `\`):
			errs.add("%s: path must be relative", prefix)
		case strings.Contains(e.RelPath, `\`):
			errs.add("%s: path must use forward slashes", prefix)
		case hasDotDot(e.RelPath):
			errs.add("%s: path must not contain '..' segments", prefix)
		}

		if !reHex64.MatchString(e.SHA256) {
			errs.add("%s: sha256 must be 64 lowercase hex chars, got %q", prefix, e.SHA256)
		}
	}
	if !sort.SliceIsSorted(m.Entries, func(i, j int) bool { return m.Entries[i].ID < m.Entries[j].ID }) {
		errs.add("manifest entries should be sorted by identifier for deterministic output")
	}
	return errs.err()
}

var reHex64 = regexp.MustCompile(`^[0-9a-f]{64}$`)

func hasDotDot(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

// errlist aggregates multiple validation issues into a single error.
type errlist struct {
	msgs []string
}

func (e *errlist) add(format string, args ...any) {
	if e == nil {
		return
	}
	e.msgs = append(e.msgs, fmt.Sprintf(format, args...))
}

func (e *errlist) err() error {
	if e == nil || len(e.msgs) == 0 {
		return nil
	}
	return errors.New(strings.Join(e.msgs, "\n"))
}
