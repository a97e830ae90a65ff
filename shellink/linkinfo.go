package shellink

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// LinkInfo field offsets, relative to the start of the structure. The
// one-byte fields hold offsets to 8-bit strings, the four-byte fields
// offsets to UTF-16 strings. Both kinds of offset are relative to the
// start of the structure as well.
const (
	linkInfoHeaderLen     = 0x04
	linkInfoBasePath      = 0x10
	linkInfoSuffix        = 0x18
	linkInfoBasePathUTF16 = 0x1C
	linkInfoSuffixUTF16   = 0x20
)

// Legacy LinkInfo headers are 28 bytes; anything larger carries the
// UTF-16 offset fields. This mirrors how files in the wild signal
// their presence, without re-deriving the exact boundary from the
// format specification.
const legacyLinkInfoHeader = 28

// extractPath reads the target path out of the LinkInfo structure
// beginning at start. The path is stored as two fragments, a base path
// and a suffix that already begins with the separator, so they join
// with plain concatenation.
func extractPath(data []byte, start int, unicodeFlag bool) (string, error) {
	headerLen, err := readUint32(data, start+linkInfoHeaderLen)
	if err != nil {
		return "", err
	}

	var base, suffix string
	if unicodeFlag && headerLen > legacyLinkInfoHeader {
		base, suffix, err = utf16Fragments(data, start)
	} else {
		base, suffix, err = ansiFragments(data, start)
	}
	if err != nil {
		return "", err
	}

	path := base + suffix
	if path == "" {
		return "", fmt.Errorf("%w: link carries no target path", ErrMalformed)
	}

	return path, nil
}

func ansiFragments(data []byte, start int) (string, string, error) {
	base, err := ansiString(data, start, linkInfoBasePath)
	if err != nil {
		return "", "", err
	}

	suffix, err := ansiString(data, start, linkInfoSuffix)
	return base, suffix, err
}

// ansiString reads the one-byte offset stored at start+field and scans
// the null-terminated 8-bit string it points to. The file does not
// record which ANSI code page these strings use; Windows-1252 is the
// common default and leaves ASCII untouched.
func ansiString(data []byte, start, field int) (string, error) {
	off, err := readByte(data, start+field)
	if err != nil {
		return "", err
	}

	raw, err := scanBytes(data, start+int(off))
	if err != nil {
		return "", err
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return string(decoded), nil
}

func utf16Fragments(data []byte, start int) (string, string, error) {
	base, err := utf16String(data, start, linkInfoBasePathUTF16)
	if err != nil {
		return "", "", err
	}

	suffix, err := utf16String(data, start, linkInfoSuffixUTF16)
	return base, suffix, err
}

// utf16String reads the four-byte offset stored at start+field and
// decodes the null-terminated UTF-16LE string it points to.
func utf16String(data []byte, start, field int) (string, error) {
	off, err := readUint32(data, start+field)
	if err != nil {
		return "", err
	}

	raw, err := scanUint16s(data, start+int(off))
	if err != nil {
		return "", err
	}

	decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return string(decoded), nil
}

// scanBytes returns the bytes from off up to the first zero byte,
// which must appear before the end of the buffer.
func scanBytes(data []byte, off int) ([]byte, error) {
	if off < 0 || off >= len(data) {
		return nil, outOfRange(off)
	}

	end := bytes.IndexByte(data[off:], 0)
	if end < 0 {
		return nil, fmt.Errorf("%w: unterminated string at offset %#x", ErrMalformed, off)
	}

	return data[off : off+end], nil
}

// scanUint16s returns the bytes from off up to the first zero 16-bit
// little-endian unit, which must appear before the end of the buffer.
func scanUint16s(data []byte, off int) ([]byte, error) {
	if off < 0 || off >= len(data) {
		return nil, outOfRange(off)
	}

	for end := off; end+2 <= len(data); end += 2 {
		if data[end] == 0 && data[end+1] == 0 {
			return data[off:end], nil
		}
	}

	return nil, fmt.Errorf("%w: unterminated string at offset %#x", ErrMalformed, off)
}

func readByte(data []byte, off int) (byte, error) {
	if off < 0 || off >= len(data) {
		return 0, outOfRange(off)
	}

	return data[off], nil
}

func readUint32(data []byte, off int) (uint32, error) {
	if off < 0 || off+4 > len(data) {
		return 0, outOfRange(off)
	}

	return binary.LittleEndian.Uint32(data[off : off+4]), nil
}

func outOfRange(off int) error {
	return fmt.Errorf("%w: offset %#x is out of range", ErrMalformed, off)
}
