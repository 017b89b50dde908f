// Package sanitize maps source path names onto names the destination
// filesystem accepts. exFAT and the other FAT-family filesystems reject
// the Windows-forbidden characters, so every mapped component has those
// replaced with underscores.
package sanitize

import (
	"path/filepath"
	"strings"
)

// forbidden is the character set the destination rejects in a name.
const forbidden = `"*/:<>?\|`

// Component returns name with every forbidden character replaced by an
// underscore. The result has the same length as the input; everything
// else, including spaces and non-ASCII characters, passes through
// unchanged. Pure and idempotent.
func Component(name string) string {
	if !strings.ContainsAny(name, forbidden) {
		return name
	}
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if strings.ContainsRune(forbidden, r) {
			b.WriteByte('_')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MapPath maps an absolute source path to its destination path: the
// source-root prefix is stripped and every remaining component is
// sanitized independently, so a forbidden character deep in the tree is
// corrected at exactly the component containing it. The mapping is
// recomputed on every call, never cached.
func MapPath(srcRoot, destRoot, src string) (string, error) {
	rel, err := filepath.Rel(srcRoot, src)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return filepath.Clean(destRoot), nil
	}
	parts := strings.Split(rel, string(filepath.Separator))
	for i, p := range parts {
		parts[i] = Component(p)
	}
	return filepath.Join(destRoot, filepath.Join(parts...)), nil
}

// RepairFinal returns path with only its final component re-sanitized.
// Used after the destination rejects a name that the bulk mapping let
// through.
func RepairFinal(path string) string {
	dir, base := filepath.Split(path)
	return filepath.Join(dir, Component(base))
}
