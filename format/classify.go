package format

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind is what a raw INF file holds.
type Kind int

const (
	Unknown Kind = iota
	Text
	Compressed
	Decompressed
)

var ErrUnknownFormat = errors.New("unknown inf format")

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Compressed:
		return "compressed"
	case Decompressed:
		return "decompressed"
	default:
		return "unknown"
	}
}

// Classification is the result of Classify. Version is only meaningful
// for Compressed.
type Classification struct {
	Kind    Kind
	Version int
}

func (c Classification) String() string {
	if c.Kind == Compressed {
		return fmt.Sprintf("compressed(v%d)", c.Version)
	}
	return c.Kind.String()
}

const (
	// HeaderSize is the size of the compressed envelope header.
	HeaderSize = 12
	// MinTableOffset is the smallest legal string table offset.
	MinTableOffset = 16

	textProbeSize = 500
)

// Tags maps the little-endian envelope tags to their versions. Version 3
// is the newest.
var Tags = map[[4]byte]int{
	{0xAA, 0xA5, 0xFF, 0xFF}: 3,
	{0xAB, 0xA5, 0xFF, 0xFF}: 2,
	{0xAC, 0xA5, 0xFF, 0xFF}: 1,
	{0xAD, 0xA5, 0xFF, 0xFF}: 0,
}

// VersionOf returns the envelope version for the first 4 bytes of b.
func VersionOf(b []byte) (int, bool) {
	if len(b) < 4 {
		return 0, false
	}
	v, ok := Tags[[4]byte(b[:4])]
	return v, ok
}

// Classify decides whether b is text, a compressed envelope, an already
// decompressed binary document or none of these.
func Classify(b []byte) Classification {
	if len(b) < HeaderSize {
		return Classification{Kind: Unknown}
	}
	if v, ok := VersionOf(b); ok {
		return Classification{Kind: Compressed, Version: v}
	}
	if looksDecompressed(b) {
		return Classification{Kind: Decompressed}
	}
	if looksText(b) {
		return Classification{Kind: Text}
	}
	return Classification{Kind: Unknown}
}

func looksDecompressed(b []byte) bool {
	s := binary.LittleEndian.Uint32(b[0:4])
	if s < MinTableOffset || uint64(s) >= uint64(len(b)) {
		return false
	}
	return bytes.Equal(b[4:8], []byte{0, 0, 0, 0})
}

func looksText(b []byte) bool {
	probe := b
	if len(probe) > textProbeSize {
		probe = trimPartialRune(probe[:textProbeSize])
	}
	if !utf8.Valid(probe) {
		return false
	}
	text := string(probe)
	if strings.Contains(text, "[") && strings.Contains(text, "]") && strings.Contains(text, "{") {
		return true
	}
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, "[") ||
		strings.HasPrefix(trimmed, ";") ||
		strings.HasPrefix(trimmed, "#")
}

// trimPartialRune drops an incomplete multi-byte sequence cut off at the
// end of b.
func trimPartialRune(b []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		c := b[len(b)-i]
		if !utf8.RuneStart(c) {
			continue
		}
		if !utf8.FullRune(b[len(b)-i:]) {
			return b[:len(b)-i]
		}
		break
	}
	return b
}
