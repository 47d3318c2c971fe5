// Package manifest builds the ordered, collision-free list of operation
// identifiers for a queries directory.
package manifest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"sort"

	"gqlbundle/internal/failure"
	"gqlbundle/internal/ident"
	"gqlbundle/internal/walkwalk"
)

// Entry pairs an identifier with the operation file it was derived from.
type Entry struct {
	ID      string `json:"id"`
	RelPath string `json:"path"`
	AbsPath string `json:"-"`
	SHA256  string `json:"sha256"`
}

// Manifest is the ordered identifier list of one build. Entries are sorted
// by identifier, so output does not depend on directory layout or platform.
type Manifest struct {
	Root     string  `json:"root,omitempty"`
	Entries  []Entry `json:"entries"`
	BundleID string  `json:"bundleId"`
}

// Options configures Build.
type Options struct {
	Root    string
	Deriver ident.Deriver
	Walk    walkwalk.Options
}

// Build discovers operation files under opts.Root and derives one
// identifier per file.
func Build(ctx context.Context, opts Options) (Manifest, error) {
	info, err := os.Stat(opts.Root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Manifest{}, failure.New(failure.MissingInput, "queries folder doesn't exist").WithPath(opts.Root)
		}
		return Manifest{}, failure.Wrap(failure.IO, err, "stat queries folder").WithPath(opts.Root)
	}
	if !info.IsDir() {
		return Manifest{}, failure.New(failure.MissingInput, "queries path is not a directory").WithPath(opts.Root)
	}
	if err := ctx.Err(); err != nil {
		return Manifest{}, err
	}

	d := opts.Deriver
	if d.Ext == "" {
		d = ident.Default()
	}
	walk := opts.Walk
	walk.Exts = []string{d.Ext}

	files, err := walkwalk.Collect(opts.Root, walk)
	if err != nil {
		return Manifest{}, failure.Wrap(failure.IO, err, "scan queries folder").WithPath(opts.Root)
	}
	if len(files) == 0 {
		return Manifest{}, failure.New(failure.EmptyManifest, "no %s files found", d.Ext).WithPath(opts.Root)
	}
	return assemble(opts.Root, d, files)
}

func assemble(root string, d ident.Deriver, files []walkwalk.FileInfo) (Manifest, error) {
	byID := make(map[string]string, len(files))
	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		id, err := d.Derive(f.RelPath)
		if err != nil {
			return Manifest{}, failure.Wrap(failure.Config, err, "derive identifier").WithPath(f.RelPath)
		}
		if prev, dup := byID[id]; dup {
			return Manifest{}, failure.New(failure.IdentifierCollision,
				"identifier %q derived from both %s and %s", id, prev, f.RelPath).WithPath(f.RelPath)
		}
		byID[id] = f.RelPath
		entries = append(entries, Entry{ID: id, RelPath: f.RelPath, AbsPath: f.AbsPath, SHA256: f.SHA256Hex})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	m := Manifest{Root: root, Entries: entries}
	m.BundleID = ComputeBundleID(m)
	return m, nil
}

// IDs returns the identifiers in manifest order.
func (m Manifest) IDs() []string {
	out := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = e.ID
	}
	return out
}

// ComputeBundleID hashes the sorted "<id>:<sha256>\n" lines of the
// manifest. Identical inputs give identical IDs across platforms.
func ComputeBundleID(m Manifest) string {
	lines := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		lines = append(lines, e.ID+":"+e.SHA256)
	}
	sort.Strings(lines)
	var buf bytes.Buffer
	for _, ln := range lines {
		buf.WriteString(ln)
		buf.WriteByte('\n')
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}
