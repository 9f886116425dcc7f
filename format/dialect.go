package format

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Dialect is one of the two structural layouts of a decompressed binary
// INF document.
type Dialect int

const (
	// ObjectDialect documents hold a root object with nested class
	// objects.
	ObjectDialect Dialect = iota
	// SimpleDialect documents hold flat named sections.
	SimpleDialect
)

const (
	sectionCountOffset = 8
	probeOffset        = 20
)

func ParseDialect(v string) (Dialect, error) {
	switch v {
	case "o", "object":
		return ObjectDialect, nil
	case "s", "simple":
		return SimpleDialect, nil
	}
	return 0, fmt.Errorf("%w: dialect %q", ErrBadFormat, v)
}

func (d Dialect) String() string {
	switch d {
	case ObjectDialect:
		return "object"
	case SimpleDialect:
		return "simple"
	default:
		return fmt.Sprintf("<dialect %d>", int(d))
	}
}

func (d Dialect) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Dialect) UnmarshalText(b []byte) error {
	pd, err := ParseDialect(string(b))
	if err != nil {
		return err
	}
	*d = pd
	return nil
}

// DetectDialect guesses the dialect of the decompressed buffer b whose
// first string table entry is first.
//
// There is no dialect marker in the format. The guess uses the simple
// dialect section count at offset 8, the word at offset 20 and whether
// first looks like an inline object section name ("Name : Class"). Edge
// case inputs can be misclassified; callers that know better should
// force the dialect.
func DetectDialect(b []byte, first string) Dialect {
	count := u32At(b, sectionCountOffset)
	if count > 1 && u32At(b, probeOffset) == 0 {
		return SimpleDialect
	}
	if strings.Contains(first, " : ") {
		return ObjectDialect
	}
	if count > 1 {
		return SimpleDialect
	}
	return ObjectDialect
}

func u32At(b []byte, off int) uint32 {
	if off+4 > len(b) {
		return 0
	}
	return binary.LittleEndian.Uint32(b[off : off+4])
}
