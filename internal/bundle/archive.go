// Package bundle writes a reproducible ZIP archive of a published library.
//
// Layout:
//
//	README.md           # stable (no wall-clock timestamps)
//	manifest.json       # identifiers, paths and hashes of the operation set
//	<library files>     # every file of the library, sorted by path
//
// Design goals:
//   - Deterministic output (fixed timestamps, sorted entries)
//   - Safe ZIP paths (no absolute paths, no traversal)
package bundle

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"

	"gqlbundle/internal/manifest"
	"gqlbundle/internal/walkwalk"
	"gqlbundle/internal/workspace"
	"gqlbundle/internal/ziputil"
)

// Reserved archive entries written ahead of the library files.
const (
	ReadmeEntry   = "README.md"
	ManifestEntry = "manifest.json"
)

// WriteArchive zips libDir into zipPath. The archive is assembled in memory
// and written atomically.
func WriteArchive(zipPath, libDir string, m manifest.Manifest, readme ReadmeOptions) error {
	files, err := walkwalk.Collect(libDir, walkwalk.Options{})
	if err != nil {
		return fmt.Errorf("scan library: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if readme.BundleID == "" {
		readme.BundleID = m.BundleID
	}
	if len(readme.Operations) == 0 {
		readme.Operations = m.IDs()
	}
	if err := ziputil.WriteText(zw, ReadmeEntry, GenerateReadme(readme)); err != nil {
		return err
	}
	m.Root = "" // machine specific
	if err := ziputil.WriteJSON(zw, ManifestEntry, m); err != nil {
		return err
	}
	for _, f := range files {
		if f.RelPath == ReadmeEntry || f.RelPath == ManifestEntry {
			continue
		}
		if err := writeFileEntry(zw, f); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}
	return workspace.WriteFileAtomic(zipPath, buf.Bytes())
}

func writeFileEntry(zw *zip.Writer, f walkwalk.FileInfo) error {
	in, err := os.Open(f.AbsPath)
	if err != nil {
		return err
	}
	defer in.Close()
	return ziputil.CopyFromReader(zw, f.RelPath, in)
}
