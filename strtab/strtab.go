// Package strtab loads the string tables trailing a decompressed binary
// INF document.
//
// The table offset is the first little-endian word of the document. At
// that offset is a count and that many null-terminated UTF-8 strings,
// then (when at least 8 bytes remain) a count of wide strings each
// stored as a character count and UTF-16LE data.
//
// Loading is lenient: a table cut short by the end of the buffer yields
// the entries read so far. Lookups never fail; an index out of range
// yields a placeholder naming the index.
package strtab

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/signadot/inf-format/go-inf/debug"
	"github.com/signadot/inf-format/go-inf/format"
)

var ErrInvalidOffset = errors.New("invalid string table offset")

// OffsetError reports a string table offset outside the document.
type OffsetError struct {
	Offset uint32
	Size   int
}

func (e *OffsetError) Error() string {
	return fmt.Sprintf("%s: %d (document size %d)", ErrInvalidOffset, e.Offset, e.Size)
}

func (e *OffsetError) Unwrap() error { return ErrInvalidOffset }

type Table struct {
	Strings []string
	Wide    []string

	// Offset is where the table starts, End is just past the last entry
	// read.
	Offset int
	End    int

	// Declared counts, which exceed the lengths of Strings and Wide when
	// the table was cut short.
	StringCount uint32
	WideCount   uint32
}

// Offset reads the string table offset of the document b.
func Offset(b []byte) (int, error) {
	if len(b) < 4 {
		return 0, &OffsetError{Size: len(b)}
	}
	off := binary.LittleEndian.Uint32(b[0:4])
	if off < format.MinTableOffset || uint64(off) >= uint64(len(b)) {
		return 0, &OffsetError{Offset: off, Size: len(b)}
	}
	return int(off), nil
}

// Load reads the string and wide string tables of b.
func Load(b []byte) (*Table, error) {
	off, err := Offset(b)
	if err != nil {
		return nil, err
	}
	t := &Table{Offset: off, End: off}
	pos := off
	if pos+4 > len(b) {
		return t, nil
	}
	t.StringCount = binary.LittleEndian.Uint32(b[pos:])
	pos += 4
	for range t.StringCount {
		n := bytes.IndexByte(b[pos:], 0)
		if n < 0 {
			if debug.Table() {
				debug.Logf("strtab: unterminated string at 0x%X, %d of %d read\n", pos, len(t.Strings), t.StringCount)
			}
			break
		}
		t.Strings = append(t.Strings, strings.ToValidUTF8(string(b[pos:pos+n]), "\uFFFD"))
		pos += n + 1
	}
	t.End = pos

	if pos+8 > len(b) {
		return t, nil
	}
	t.WideCount = binary.LittleEndian.Uint32(b[pos:])
	pos += 4
	for range t.WideCount {
		if pos+4 > len(b) {
			break
		}
		n := uint64(binary.LittleEndian.Uint32(b[pos:])) * 2
		pos += 4
		if uint64(pos)+n > uint64(len(b)) {
			if debug.Table() {
				debug.Logf("strtab: wide string at 0x%X overruns buffer, %d of %d read\n", pos, len(t.Wide), t.WideCount)
			}
			break
		}
		t.Wide = append(t.Wide, decodeWide(b[pos:pos+int(n)], pos))
		pos += int(n)
	}
	t.End = pos
	if debug.Table() {
		debug.Logf("strtab: offset 0x%X, %d strings, %d wide strings, end 0x%X\n", t.Offset, len(t.Strings), len(t.Wide), t.End)
		debug.LogAny(t)
	}
	return t, nil
}

// decodeWide decodes UTF-16LE data; data with unpaired surrogates is
// replaced by a placeholder naming its offset.
func decodeWide(d []byte, pos int) string {
	u := make([]uint16, len(d)/2)
	for i := range u {
		u[i] = binary.LittleEndian.Uint16(d[2*i:])
	}
	for i := 0; i < len(u); i++ {
		switch {
		case utf16.IsSurrogate(rune(u[i])) && u[i] < 0xDC00:
			if i+1 >= len(u) || u[i+1] < 0xDC00 || u[i+1] > 0xDFFF {
				return fmt.Sprintf("<wstring@%d>", pos)
			}
			i++
		case utf16.IsSurrogate(rune(u[i])):
			return fmt.Sprintf("<wstring@%d>", pos)
		}
	}
	return string(utf16.Decode(u))
}

// Str returns string i or a placeholder.
func (t *Table) Str(i uint32) string {
	if uint64(i) < uint64(len(t.Strings)) {
		return t.Strings[i]
	}
	return fmt.Sprintf("<string_%d>", i)
}

// WideStr returns wide string i or a placeholder.
func (t *Table) WideStr(i uint32) string {
	if uint64(i) < uint64(len(t.Wide)) {
		return t.Wide[i]
	}
	return fmt.Sprintf("<wstring_%d>", i)
}

// First is the first string, or "" for an empty table.
func (t *Table) First() string {
	if len(t.Strings) == 0 {
		return ""
	}
	return t.Strings[0]
}
