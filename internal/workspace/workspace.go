// Package workspace manages the per-build working directory and publishes
// the finished library atomically.
//
// Conventions:
//   - One working directory per build, created under a caller-chosen parent.
//   - The release function removes it on every exit path.
//   - Publishing copies the staged tree next to the destination, then swaps
//     it in with renames so readers never observe a half-written library.
package workspace

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const dirPattern = "gqlbundle-"

// Acquire creates a fresh working directory under parent (os.TempDir() when
// empty). The returned dir is absolute. release removes it and is safe to
// call more than once.
func Acquire(parent string) (dir string, release func(), err error) {
	if parent == "" {
		parent = os.TempDir()
	}
	parent, err = filepath.Abs(parent)
	if err != nil {
		return "", nil, fmt.Errorf("work dir parent: %w", err)
	}
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", nil, fmt.Errorf("work dir parent: %w", err)
	}
	dir, err = os.MkdirTemp(parent, dirPattern)
	if err != nil {
		return "", nil, fmt.Errorf("create work dir: %w", err)
	}
	released := false
	release = func() {
		if released {
			return
		}
		released = true
		_ = os.RemoveAll(dir) // best-effort cleanup
	}
	return dir, release, nil
}

// WriteFileAtomic writes data to path through a temporary file in the same
// directory followed by a rename.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// WriteFiles writes each file (slash-separated relative name → content)
// under root.
func WriteFiles(root string, files map[string][]byte) error {
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(p, body, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// CopyFile copies src to dst, creating parent directories.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// CopyTree copies the regular files of src into dst.
func CopyTree(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return CopyFile(p, target)
	})
}

// Publish replaces out with the contents of staged. The tree is first copied
// into a sibling of out, so the final swap is a rename on one filesystem.
// On failure out is left as it was.
func Publish(staged, out string) error {
	st, err := os.Stat(staged)
	if err != nil {
		return fmt.Errorf("staged output: %w", err)
	}
	if !st.IsDir() {
		return fmt.Errorf("staged output %s is not a directory", staged)
	}
	parent, base := filepath.Dir(out), filepath.Base(out)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("output parent: %w", err)
	}

	next, err := os.MkdirTemp(parent, "."+base+".new-")
	if err != nil {
		return fmt.Errorf("stage next output: %w", err)
	}
	if err := CopyTree(staged, next); err != nil {
		_ = os.RemoveAll(next)
		return fmt.Errorf("copy staged output: %w", err)
	}
	if err := os.Chmod(next, 0o755); err != nil {
		_ = os.RemoveAll(next)
		return err
	}

	backup := ""
	if _, err := os.Lstat(out); err == nil {
		backup = next + ".old"
		if err := os.Rename(out, backup); err != nil {
			_ = os.RemoveAll(next)
			return fmt.Errorf("move previous output aside: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		_ = os.RemoveAll(next)
		return err
	}

	if err := os.Rename(next, out); err != nil {
		if backup != "" {
			_ = os.Rename(backup, out)
		}
		_ = os.RemoveAll(next)
		return fmt.Errorf("publish output: %w", err)
	}
	if backup != "" {
		_ = os.RemoveAll(backup)
	}
	return nil
}
