package decode

import (
	"fmt"

	"github.com/signadot/inf-format/go-inf/debug"
	"github.com/signadot/inf-format/go-inf/format"
	"github.com/signadot/inf-format/go-inf/ir"
	"github.com/signadot/inf-format/go-inf/strtab"
)

const (
	// BodyStart is the offset of the first structure after the header.
	BodyStart = 16

	// RefIDName is the property holding object ids. Stored values are
	// dropped; ids are assigned while decoding.
	RefIDName = "_RefID"

	defaultMaxDepth = 512
)

// Decoder decodes one decompressed binary INF document. It owns its
// cursor, string table and ref-id counter, so separate decoders can run
// concurrently.
type Decoder struct {
	sc      scanner
	tab     *strtab.Table
	dialect format.Dialect
	forced  bool

	nextRef  int
	maxDepth int
}

type DecodeOption func(*Decoder)

// WithDialect skips dialect detection.
func WithDialect(d format.Dialect) DecodeOption {
	return func(dec *Decoder) {
		dec.dialect = d
		dec.forced = true
	}
}

// MaxDepth bounds object nesting in the object dialect.
func MaxDepth(n int) DecodeOption {
	return func(dec *Decoder) { dec.maxDepth = n }
}

// NewDecoder loads the string tables of b and settles its dialect.
func NewDecoder(b []byte, opts ...DecodeOption) (*Decoder, error) {
	d := &Decoder{
		sc:       scanner{buf: b},
		maxDepth: defaultMaxDepth,
	}
	for _, opt := range opts {
		opt(d)
	}
	tab, err := strtab.Load(b)
	if err != nil {
		return nil, err
	}
	d.tab = tab
	if !d.forced {
		d.dialect = format.DetectDialect(b, tab.First())
	}
	if debug.Decode() {
		debug.Logf("decode: %d bytes, table at 0x%X, %d strings, dialect %s (forced %t)\n",
			len(b), tab.Offset, len(tab.Strings), d.dialect, d.forced)
	}
	return d, nil
}

// Decode decodes the document from the start.
func (d *Decoder) Decode() (*ir.Document, error) {
	d.sc.pos = BodyStart
	d.nextRef = 1
	var (
		doc *ir.Document
		err error
	)
	switch d.dialect {
	case format.ObjectDialect:
		doc, err = d.objectDocument()
	case format.SimpleDialect:
		doc, err = d.simpleDocument()
	default:
		return nil, fmt.Errorf("%w: %s", format.ErrBadFormat, d.dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("%s dialect: %w", d.dialect, err)
	}
	doc.End = d.sc.pos
	if debug.Decode() && doc.End != d.tab.Offset {
		debug.Logf("decode: ended at 0x%X, string table at 0x%X\n", doc.End, d.tab.Offset)
	}
	return doc, nil
}

// Pos is the decoder's current byte offset.
func (d *Decoder) Pos() int { return d.sc.pos }

func (d *Decoder) Table() *strtab.Table { return d.tab }

func (d *Decoder) Dialect() format.Dialect { return d.dialect }

// Decode decodes the decompressed binary INF document b.
func Decode(b []byte, opts ...DecodeOption) (*ir.Document, error) {
	d, err := NewDecoder(b, opts...)
	if err != nil {
		return nil, err
	}
	return d.Decode()
}

// property reads a name index, a value count and that many typed values.
// Wide strings and blobs are only legal when rich is set.
func (d *Decoder) property(rich bool) (ir.Property, error) {
	nameIdx, err := d.sc.U32()
	if err != nil {
		return ir.Property{}, err
	}
	n, err := d.sc.U8()
	if err != nil {
		return ir.Property{}, err
	}
	p := ir.Property{Name: d.tab.Str(nameIdx), Values: make([]ir.Value, 0, n)}
	for range n {
		tpos := d.sc.pos
		tag, err := d.sc.U8()
		if err != nil {
			return ir.Property{}, err
		}
		t := ir.Type(tag)
		if !t.Valid() || (!rich && t > ir.NumberType) {
			return ir.Property{}, &Error{Pos: tpos, Tag: int(tag), Err: ErrMalformedType}
		}
		switch t {
		case ir.StringType:
			i, err := d.sc.U32()
			if err != nil {
				return ir.Property{}, err
			}
			p.Values = append(p.Values, ir.FromString(i, d.tab.Str(i)))
		case ir.NumberType:
			f, err := d.sc.F64()
			if err != nil {
				return ir.Property{}, err
			}
			p.Values = append(p.Values, ir.FromNumber(f))
		case ir.WideType:
			i, err := d.sc.U32()
			if err != nil {
				return ir.Property{}, err
			}
			p.Values = append(p.Values, ir.FromWide(i, d.tab.WideStr(i)))
		case ir.BlobType:
			l, err := d.sc.U32()
			if err != nil {
				return ir.Property{}, err
			}
			if err := d.sc.Skip(l); err != nil {
				return ir.Property{}, err
			}
			p.Values = append(p.Values, ir.FromBlob(l))
		}
	}
	return p, nil
}
