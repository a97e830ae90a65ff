package scan

import (
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

var linkClassID = []byte{
	0x01, 0x14, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xC0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46,
}

// linkTo builds a minimal 8-bit shell link pointing at target.
func linkTo(target string, dir bool) []byte {
	data := make([]byte, 0x200)
	data[0] = 0x4C
	copy(data[0x04:], linkClassID)

	if dir {
		data[0x18] |= 0x10
	}

	binary.LittleEndian.PutUint32(data[0x4C+0x04:], 28)
	data[0x4C+0x10] = 0x40
	data[0x4C+0x18] = byte(0x40 + len(target) + 1)
	copy(data[0x4C+0x40:], target)
	return data
}

func memFs(t *testing.T, files map[string][]byte) afero.Fs {
	fsys := afero.NewMemMapFs()

	for name, data := range files {
		require.NoError(t, fsys.MkdirAll(filepath.Dir(name), 0o755))
		require.NoError(t, afero.WriteFile(fsys, name, data, 0o644))
	}

	return fsys
}

func collect(t *testing.T, s *Scanner, root string) map[string]Entry {
	entries := map[string]Entry{}

	err := s.Scan(root, func(entry Entry) error {
		entries[entry.Path] = entry
		return nil
	})
	require.NoError(t, err)

	return entries
}

func TestScanResolvesShortcuts(t *testing.T) {
	fsys := memFs(t, map[string][]byte{
		"/src/readme.txt":      []byte("hello"),
		"/src/games/doom.lnk":  linkTo(`C:\games\doom.exe`, false),
		"/src/games/saves.lnk": linkTo(`C:\games\saves`, true),
	})

	entries := collect(t, New(fsys), "/src")

	require.Len(t, entries, 4)

	require.Equal(t, Entry{Path: "readme.txt"}, entries["readme.txt"])
	require.Equal(t, Entry{Path: "games", IsDir: true}, entries["games"])
	require.Equal(t, Entry{Path: "games/doom.lnk", Target: `C:\games\doom.exe`}, entries["games/doom.lnk"])
	require.Equal(t, Entry{Path: "games/saves.lnk", Target: `C:\games\saves`, IsDir: true}, entries["games/saves.lnk"])
}

func TestScanSkipsBrokenShortcuts(t *testing.T) {
	fsys := memFs(t, map[string][]byte{
		"/src/broken.lnk": []byte("not a shell link"),
		"/src/ok.txt":     []byte("hello"),
	})

	entries := collect(t, New(fsys), "/src")

	require.Len(t, entries, 1)
	require.Contains(t, entries, "ok.txt")
}

func TestScanIgnore(t *testing.T) {
	fsys := memFs(t, map[string][]byte{
		"/src/readme.txt":     []byte("hello"),
		"/src/main.go":        []byte("package main"),
		"/src/vendor/dep.lnk": linkTo(`C:\dep`, true),
	})

	scanner := New(fsys)
	scanner.Manifest.Ignore = []string{"*.txt", "vendor"}

	entries := collect(t, scanner, "/src")

	require.Len(t, entries, 1)
	require.Contains(t, entries, "main.go")
}

func TestScanManifestDisablesResolution(t *testing.T) {
	fsys := memFs(t, map[string][]byte{
		"/src/shortcut.toml": []byte("resolve = false\n"),
		"/src/doom.lnk":      linkTo(`C:\games\doom.exe`, false),
	})

	scanner := New(fsys)
	require.NoError(t, scanner.LoadManifest("/src"))
	require.False(t, scanner.Manifest.Resolve)

	entries := collect(t, scanner, "/src")

	require.Len(t, entries, 1)
	require.Equal(t, Entry{Path: "doom.lnk"}, entries["doom.lnk"])
}

func TestLoadManifest(t *testing.T) {
	fsys := memFs(t, map[string][]byte{
		"/src/shortcut.toml": []byte("ignore = [\"*.bak\"]\n"),
	})

	scanner := New(fsys)
	require.NoError(t, scanner.LoadManifest("/src"))

	require.Equal(t, []string{"*.bak"}, scanner.Manifest.Ignore)

	// Keys the manifest leaves out keep their defaults.
	require.True(t, scanner.Manifest.Resolve)
}

func TestLoadManifestMissing(t *testing.T) {
	scanner := New(afero.NewMemMapFs())
	require.NoError(t, scanner.LoadManifest("/src"))
	require.Equal(t, DefaultManifest(), scanner.Manifest)
}

func TestIsShortcut(t *testing.T) {
	require.True(t, IsShortcut("doom.lnk"))
	require.True(t, IsShortcut("DOOM.LNK"))
	require.False(t, IsShortcut("doom.txt"))
	require.False(t, IsShortcut("lnk"))
}
