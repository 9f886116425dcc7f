// Package inftest builds binary INF buffers for tests.
package inftest

import (
	"bytes"
	"encoding/binary"
	"math"
	"unicode/utf16"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
)

const bodyStart = 16

// Value is one property value to write.
type Value struct {
	typ  byte
	s    string
	n    float64
	blob []byte
}

func S(s string) Value       { return Value{typ: 0, s: s} }
func N(n float64) Value      { return Value{typ: 1, n: n} }
func W(s string) Value       { return Value{typ: 2, s: s} }
func Blob(b []byte) Value    { return Value{typ: 3, blob: b} }
func BadType(t byte) Value   { return Value{typ: t} }
func (v Value) Type() byte   { return v.typ }
func (v Value) Text() string { return v.s }

// Builder writes the body of a decompressed document and interns its
// strings. Strings()[0] is the root class (object dialect) or the first
// section name (simple dialect).
type Builder struct {
	body    bytes.Buffer
	strs    []string
	strIdx  map[string]uint32
	wide    []string
	wideIdx map[string]uint32

	sectionCount uint32
}

// NewObject starts an object dialect document whose root class is class.
func NewObject(class string) *Builder {
	b := newBuilder()
	b.Str(class)
	return b
}

// NewSimple starts a simple dialect document with sectionCount sections
// whose first section is named first.
func NewSimple(first string, sectionCount uint32) *Builder {
	b := newBuilder()
	b.Str(first)
	b.sectionCount = sectionCount
	return b
}

func newBuilder() *Builder {
	return &Builder{
		strIdx:  map[string]uint32{},
		wideIdx: map[string]uint32{},
	}
}

// Str interns s in the string table.
func (b *Builder) Str(s string) uint32 {
	if i, ok := b.strIdx[s]; ok {
		return i
	}
	i := uint32(len(b.strs))
	b.strs = append(b.strs, s)
	b.strIdx[s] = i
	return i
}

// Wide interns s in the wide string table.
func (b *Builder) Wide(s string) uint32 {
	if i, ok := b.wideIdx[s]; ok {
		return i
	}
	i := uint32(len(b.wide))
	b.wide = append(b.wide, s)
	b.wideIdx[s] = i
	return i
}

// Pos is the absolute offset the next write lands on.
func (b *Builder) Pos() int { return bodyStart + b.body.Len() }

func (b *Builder) U8(v byte) *Builder {
	b.body.WriteByte(v)
	return b
}

func (b *Builder) U32(v uint32) *Builder {
	b.body.Write(binary.LittleEndian.AppendUint32(nil, v))
	return b
}

func (b *Builder) F64(v float64) *Builder {
	b.body.Write(binary.LittleEndian.AppendUint64(nil, math.Float64bits(v)))
	return b
}

// Counts writes a prop_count, child_count pair.
func (b *Builder) Counts(props, children uint32) *Builder {
	return b.U32(props).U32(children)
}

// Child writes a container child object header.
func (b *Builder) Child(class string, props, children uint32) *Builder {
	return b.U32(b.Str(class)).Counts(props, children)
}

// Container writes a container section header holding n objects.
func (b *Builder) Container(name string, n uint32) *Builder {
	return b.U32(b.Str(name)).U32(0).U32(n)
}

// Inline writes an inline object section header; props must not be 0.
func (b *Builder) Inline(name string, props, children uint32) *Builder {
	return b.U32(b.Str(name)).Counts(props, children)
}

// Name writes a simple dialect section name index.
func (b *Builder) Name(name string) *Builder {
	return b.U32(b.Str(name))
}

// Prop writes a property with vals.
func (b *Builder) Prop(name string, vals ...Value) *Builder {
	b.U32(b.Str(name))
	b.U8(byte(len(vals)))
	for _, v := range vals {
		b.U8(v.typ)
		switch v.typ {
		case 0:
			b.U32(b.Str(v.s))
		case 1:
			b.F64(v.n)
		case 2:
			b.U32(b.Wide(v.s))
		case 3:
			b.U32(uint32(len(v.blob)))
			b.body.Write(v.blob)
		}
	}
	return b
}

// Strings returns the interned strings in index order.
func (b *Builder) Strings() []string { return b.strs }

// Bytes assembles the document: header, body, string table.
func (b *Builder) Bytes() []byte {
	off := uint32(b.Pos())
	out := binary.LittleEndian.AppendUint32(nil, off)
	out = append(out, make([]byte, 12)...)
	binary.LittleEndian.PutUint32(out[8:12], b.sectionCount)
	out = append(out, b.body.Bytes()...)
	return append(out, Table(b.strs, b.wide)...)
}

// Table encodes a string table followed by a wide string table.
func Table(strs, wide []string) []byte {
	out := binary.LittleEndian.AppendUint32(nil, uint32(len(strs)))
	for _, s := range strs {
		out = append(out, s...)
		out = append(out, 0)
	}
	out = binary.LittleEndian.AppendUint32(out, uint32(len(wide)))
	for _, s := range wide {
		u := utf16.Encode([]rune(s))
		out = binary.LittleEndian.AppendUint32(out, uint32(len(u)))
		for _, c := range u {
			out = binary.LittleEndian.AppendUint16(out, c)
		}
	}
	return out
}

// Envelope wraps payload in a 12-byte header for version with the given
// declared sizes.
func Envelope(version int, compressed, uncompressed uint32, payload []byte) []byte {
	out := []byte{0xAD - byte(version), 0xA5, 0xFF, 0xFF}
	out = binary.LittleEndian.AppendUint32(out, compressed)
	out = binary.LittleEndian.AppendUint32(out, uncompressed)
	return append(out, payload...)
}

// Compress zlib-compresses doc into a version envelope.
func Compress(version int, doc []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(doc)
	w.Close()
	return Envelope(version, uint32(buf.Len()), uint32(len(doc)), buf.Bytes())
}

// CompressRaw raw-DEFLATE-compresses doc into a version envelope.
func CompressRaw(version int, doc []byte) []byte {
	var buf bytes.Buffer
	w, _ := flate.NewWriter(&buf, flate.DefaultCompression)
	w.Write(doc)
	w.Close()
	return Envelope(version, uint32(buf.Len()), uint32(len(doc)), buf.Bytes())
}
