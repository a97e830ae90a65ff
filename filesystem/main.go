// Package filesystem provides an absolute path type used by the
// commands to read shortcut files and enumerate directories.
package filesystem

import "path/filepath"

// Path is an absolute filesystem path. The constructor panics on
// relative paths so that relative/absolute confusion fails loudly at
// the boundary instead of deep inside a traversal.
type Path string

func MakePath(names ...string) Path {
	p := filepath.Join(names...)

	if !filepath.IsAbs(p) {
		panic("MakePath requires absolute path")
	}

	return Path(p)
}
