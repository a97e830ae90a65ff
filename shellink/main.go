// Package shellink decodes Microsoft Shell Link (.lnk) files far
// enough to recover the absolute path of the link target. It reads the
// binary format directly instead of going through the Windows shell
// APIs, so it works on any platform and on bytes from any source.
package shellink

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/jamesbehr/shortcut/filesystem"
)

// ErrMalformed is returned when the buffer is not a shell link file or
// is too damaged to locate the target path.
var ErrMalformed = errors.New("shellink: malformed shell link")

// TargetKind constrains what kind of filesystem entity a link must
// resolve to.
type TargetKind int

const (
	Any TargetKind = iota
	File
	Directory
)

func (k TargetKind) String() string {
	switch k {
	case File:
		return "file"
	case Directory:
		return "directory"
	}

	return "any"
}

// MismatchError is returned when a link decodes cleanly but points at
// a different kind of target than the caller asked for.
type MismatchError struct {
	Requested TargetKind
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("shellink: link target is not a %s", e.Requested)
}

const (
	// Size of the fixed header preceding all variable structures.
	headerSize = 0x4C

	// No valid link file is smaller than this.
	minSize = 0xFF
)

// Flag bits in the LinkFlags byte at offset 0x14.
const (
	hasLinkTargetIDList = 0x01
	isUnicode           = 0x80
)

// FILE_ATTRIBUTE_DIRECTORY bit in the attributes byte at offset 0x18.
const attributeDirectory = 0x10

// Class identifier every shell link carries at offset 0x04.
var classID = []byte{
	0x01, 0x14, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xC0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46,
}

// Resolve decodes the shell link in data and returns the absolute path
// it points to. kind restricts what the link is allowed to point at;
// Any accepts both files and directories. Resolve only reads data and
// does not retain it, so it is safe to call concurrently.
func Resolve(data []byte, kind TargetKind) (string, error) {
	if len(data) < minSize {
		return "", fmt.Errorf("%w: %d bytes is below the minimum link size", ErrMalformed, len(data))
	}

	if !bytes.Equal(data[0x04:0x14], classID) {
		return "", fmt.Errorf("%w: class identifier mismatch", ErrMalformed)
	}

	flags := data[0x14]
	linksToDirectory := data[0x18]&attributeDirectory != 0

	if kind == Directory && !linksToDirectory {
		return "", &MismatchError{Requested: kind}
	}

	if kind == File && linksToDirectory {
		return "", &MismatchError{Requested: kind}
	}

	start := headerSize
	if flags&hasLinkTargetIDList != 0 {
		// The ID list size word does not count its own two bytes.
		start += int(binary.LittleEndian.Uint16(data[headerSize:headerSize+2])) + 2
	}

	return extractPath(data, start, flags&isUnicode != 0)
}

// ResolveFile reads the shell link at path and resolves its target.
func ResolveFile(path filesystem.Path, kind TargetKind) (string, error) {
	data, err := path.ReadFile()
	if err != nil {
		return "", err
	}

	return Resolve(data, kind)
}
