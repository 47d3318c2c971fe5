// Package walkwalk provides a deterministic, filterable filesystem walker
// used to discover operation files under the queries root.
package walkwalk

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// FileInfo is a minimal, deterministic descriptor of a collected file.
type FileInfo struct {
	RelPath   string // root-relative path with forward slashes
	AbsPath   string // absolute filesystem path
	Size      int64  // size in bytes
	SHA256Hex string // lowercase hex sha256 of the file contents
}

// Options selects which files are collected.
type Options struct {
	Exts           []string // extensions including the dot, matched exactly; empty means all
	Exclude        []string // basename prefixes skipped for files and dirs
	UseGitignore   bool     // honor <root>/.gitignore
	FollowSymlinks bool
}

type walkState struct {
	opts     Options
	exts     map[string]struct{}
	root     string
	patterns []gitPattern
	files    []FileInfo
}

// Collect walks root and returns the matching files sorted by RelPath.
// Unreadable entries abort the walk.
func Collect(root string, opts Options) ([]FileInfo, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	ws := &walkState{opts: opts, root: abs, exts: make(map[string]struct{}, len(opts.Exts))}
	for _, e := range opts.Exts {
		ws.exts[e] = struct{}{}
	}
	if opts.UseGitignore {
		if pats, err := parseGitignore(filepath.Join(abs, ".gitignore")); err == nil {
			ws.patterns = pats
		}
	}
	if err := filepath.WalkDir(abs, ws.visit); err != nil {
		return nil, err
	}
	sort.Slice(ws.files, func(i, j int) bool { return ws.files[i].RelPath < ws.files[j].RelPath })
	return ws.files, nil
}

func (ws *walkState) visit(path string, d fs.DirEntry, err error) error {
	if err != nil {
		return fmt.Errorf("walk %s: %w", path, err)
	}
	rel, ok := ws.relative(path)
	if !ok {
		return nil
	}
	if rel == "." {
		return nil
	}
	if ws.shouldSkip(rel, d) {
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}
	if d.IsDir() {
		return nil
	}
	return ws.handleFile(path, rel, d)
}

func (ws *walkState) relative(path string) (string, bool) {
	rel, err := filepath.Rel(ws.root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") || rel == ".." {
		return "", false
	}
	return rel, true
}

func (ws *walkState) shouldSkip(rel string, d fs.DirEntry) bool {
	base := filepath.Base(rel)
	for _, p := range ws.opts.Exclude {
		if p != "" && strings.HasPrefix(base, p) {
			return true
		}
	}
	return ws.opts.UseGitignore && matchGitignore(ws.patterns, rel, d.IsDir())
}

func (ws *walkState) handleFile(path, rel string, d fs.DirEntry) error {
	if len(ws.exts) > 0 {
		if _, ok := ws.exts[filepath.Ext(path)]; !ok {
			return nil
		}
	}
	info, err := ws.stat(path, d)
	if err != nil {
		return err
	}
	if info == nil || !info.Mode().IsRegular() {
		return nil
	}
	sum, err := sha256File(path)
	if err != nil {
		return fmt.Errorf("hash %s: %w", rel, err)
	}
	ws.files = append(ws.files, FileInfo{
		RelPath:   rel,
		AbsPath:   path,
		Size:      info.Size(),
		SHA256Hex: sum,
	})
	return nil
}

// stat resolves symlinks only when following is enabled; otherwise links
// are ignored.
func (ws *walkState) stat(path string, d fs.DirEntry) (fs.FileInfo, error) {
	if d.Type()&fs.ModeSymlink != 0 {
		if !ws.opts.FollowSymlinks {
			return nil, nil
		}
		return os.Stat(path)
	}
	return d.Info()
}

func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ---------------- .gitignore support ----------------

type gitPattern struct {
	neg     bool
	dirOnly bool
	rx      *regexp.Regexp
}

// parseGitignore reads a .gitignore file. Minimal support: comments, '!'
// negation, leading '/' anchoring, trailing '/' for directories, '**', '*'
// and '?'.
func parseGitignore(path string) ([]gitPattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var res []gitPattern
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		neg := strings.HasPrefix(line, "!")
		if neg {
			if line = strings.TrimSpace(line[1:]); line == "" {
				continue
			}
		}
		dirOnly := strings.HasSuffix(line, "/")
		line = strings.TrimSuffix(line, "/")
		anchored := strings.HasPrefix(line, "/")
		line = strings.TrimPrefix(line, "/")
		res = append(res, gitPattern{neg: neg, dirOnly: dirOnly, rx: compileGitGlob(line, anchored)})
	}
	return res, s.Err()
}

func compileGitGlob(glob string, anchored bool) *regexp.Regexp {
	esc := regexp.QuoteMeta(glob)
	esc = strings.ReplaceAll(esc, `\*\*`, "\x00")
	esc = strings.ReplaceAll(esc, `\*`, "[^/]*")
	esc = strings.ReplaceAll(esc, `\?`, "[^/]")
	esc = strings.ReplaceAll(esc, "\x00", ".*")
	if anchored {
		return regexp.MustCompile("^" + esc + "$")
	}
	return regexp.MustCompile("(^|.*/)" + esc + "$")
}

func matchGitignore(pats []gitPattern, rel string, isDir bool) bool {
	ignored := false
	for _, p := range pats {
		if p.dirOnly && !isDir {
			continue
		}
		if p.rx.MatchString(rel) {
			ignored = !p.neg
		}
	}
	return ignored
}
