// Package scan enumerates a directory tree, presenting Windows
// shortcut files as transparent pointers to their targets.
package scan

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/jamesbehr/shortcut/shellink"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// ManifestName is the optional per-tree configuration file read from
// the scan root.
const ManifestName = "shortcut.toml"

type Manifest struct {
	// Ignore lists glob patterns matched against the path of each
	// entry relative to the scan root. Matching directories are
	// skipped along with everything below them.
	Ignore []string `toml:"ignore,omitempty"`

	// Resolve controls whether shortcut files are resolved to their
	// targets. When false they are listed like any other file.
	Resolve bool `toml:"resolve"`
}

func DefaultManifest() Manifest {
	return Manifest{Resolve: true}
}

// Entry is a single filesystem entry produced by a scan.
type Entry struct {
	// Path of the entry relative to the scan root.
	Path string

	// Target is the absolute path a shortcut resolves to. It is empty
	// for entries that are not shortcuts.
	Target string

	// IsDir reports whether the entry, or for a shortcut its target,
	// is a directory.
	IsDir bool
}

// Scanner walks a tree on any afero filesystem. Each Scan call is
// independent, so a scanner can be reused or restarted freely.
type Scanner struct {
	Fs       afero.Fs
	Manifest Manifest
}

func New(fsys afero.Fs) *Scanner {
	return &Scanner{Fs: fsys, Manifest: DefaultManifest()}
}

// LoadManifest replaces the scanner's configuration with the manifest
// file in root, if there is one.
func (s *Scanner) LoadManifest(root string) error {
	f, err := s.Fs.Open(filepath.Join(root, ManifestName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return err
	}

	defer f.Close()

	m := DefaultManifest()
	if err := toml.NewDecoder(f).Decode(&m); err != nil {
		return err
	}

	s.Manifest = m
	return nil
}

// IsShortcut reports whether name looks like a Windows shortcut file.
func IsShortcut(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".lnk")
}

// Scan walks the tree under root and calls fn for every entry.
// Shortcut files that decode cleanly are reported with their resolved
// target; ones that do not are left out of the listing, since a tree
// may freely mix link files with unrelated data.
func (s *Scanner) Scan(root string, fn func(Entry) error) error {
	return afero.Walk(s.Fs, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if rel == "." || rel == ManifestName {
			return nil
		}

		ignored, err := s.ignored(rel)
		if err != nil {
			return err
		}

		if ignored {
			if info.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		entry := Entry{Path: rel, IsDir: info.IsDir()}

		if !info.IsDir() && s.Manifest.Resolve && IsShortcut(path) {
			data, err := afero.ReadFile(s.Fs, path)
			if err != nil {
				return err
			}

			target, isDir, err := resolveEntry(data)
			if err != nil {
				return nil
			}

			entry.Target = target
			entry.IsDir = isDir
		}

		return fn(entry)
	})
}

func (s *Scanner) ignored(rel string) (bool, error) {
	for _, pattern := range s.Manifest.Ignore {
		ok, err := filepath.Match(pattern, rel)
		if err != nil {
			return false, err
		}

		if ok {
			return true, nil
		}
	}

	return false, nil
}

// resolveEntry decodes a shortcut and reports whether it points at a
// directory, using the kind constraint to classify the target.
func resolveEntry(data []byte) (string, bool, error) {
	target, err := shellink.Resolve(data, shellink.Directory)
	if err == nil {
		return target, true, nil
	}

	var mismatch *shellink.MismatchError
	if errors.As(err, &mismatch) {
		target, err = shellink.Resolve(data, shellink.File)
		return target, false, err
	}

	return "", false, err
}
