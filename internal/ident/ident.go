// Package ident derives canonical operation identifiers from operation file
// paths. Derivation is pure: no filesystem access, no global state.
package ident

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// DefaultExt is the operation-file extension.
const DefaultExt = ".graphql"

// DefaultOrganizational lists directory names that only group files and
// never contribute to an identifier.
var DefaultOrganizational = []string{"fragments", "queries", "mutations", "subscriptions"}

// Deriver maps relative operation file paths to identifiers.
type Deriver struct {
	Ext            string              // operation-file extension, including the dot
	Organizational map[string]struct{} // directory segments dropped from identifiers
	Flatten        bool                // drop every directory segment, keep only the basename
}

// New returns a Deriver for ext (DefaultExt if empty) that drops the given
// organizational segments.
func New(ext string, organizational []string, flatten bool) Deriver {
	if ext == "" {
		ext = DefaultExt
	}
	org := make(map[string]struct{}, len(organizational))
	for _, s := range organizational {
		if s = strings.Trim(strings.TrimSpace(s), "/"); s != "" {
			org[s] = struct{}{}
		}
	}
	return Deriver{Ext: ext, Organizational: org, Flatten: flatten}
}

// Default returns the Deriver used when nothing is configured.
func Default() Deriver { return New(DefaultExt, DefaultOrganizational, false) }

// ErrInvalid is wrapped by every derivation error.
var ErrInvalid = errors.New("invalid operation path")

// Derive returns the identifier for rel, a path relative to the queries
// root. The root prefix, the extension and organizational segments are
// stripped; remaining segments are joined with '/'.
func (d Deriver) Derive(rel string) (string, error) {
	p := strings.ReplaceAll(rel, `\`, "/")
	p = strings.TrimPrefix(p, "./")
	p = path.Clean(p)
	if p == "." || strings.HasPrefix(p, "../") || p == ".." || strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: %q is not relative to the queries root", ErrInvalid, rel)
	}
	if !strings.HasSuffix(p, d.Ext) {
		return "", fmt.Errorf("%w: %q does not end in %s", ErrInvalid, rel, d.Ext)
	}
	p = strings.TrimSuffix(p, d.Ext)

	segs := strings.Split(p, "/")
	base := segs[len(segs)-1]
	kept := make([]string, 0, len(segs))
	if !d.Flatten {
		for _, s := range segs[:len(segs)-1] {
			if _, drop := d.Organizational[s]; drop {
				continue
			}
			kept = append(kept, s)
		}
	}
	kept = append(kept, base)

	id := strings.Join(kept, "/")
	if base == "" {
		return "", fmt.Errorf("%w: %q has an empty basename", ErrInvalid, rel)
	}
	if err := checkLiteral(id); err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalid, rel, err)
	}
	return id, nil
}

// checkLiteral rejects characters that cannot appear unescaped in a
// generated string literal key or a file name.
func checkLiteral(id string) error {
	for _, r := range id {
		switch {
		case r < 0x20 || r == 0x7f:
			return errors.New("control character in identifier")
		case r == '"' || r == '\'' || r == '`' || r == '\\':
			return fmt.Errorf("character %q not allowed in identifier", r)
		}
	}
	return nil
}
