package decode

import (
	"encoding/binary"

	"github.com/signadot/inf-format/go-inf/debug"
	"github.com/signadot/inf-format/go-inf/format"
	"github.com/signadot/inf-format/go-inf/ir"
)

const sectionCountOffset = 8

// Simple dialect: section_count at offset 8, then from offset 16
//
//	section  = [name_idx] prop_count child_count property*
//
// where the first section has no name_idx (its name is string 0) and
// child_count is not decoded. Only string and number values occur.
func (d *Decoder) simpleDocument() (*ir.Document, error) {
	count := binary.LittleEndian.Uint32(d.sc.buf[sectionCountOffset:])
	doc := &ir.Document{Dialect: format.SimpleDialect}
	for i := range count {
		name := d.tab.Str(0)
		if i > 0 {
			idx, err := d.sc.U32()
			if err != nil {
				return nil, err
			}
			name = d.tab.Str(idx)
		}
		props, err := d.sc.U32()
		if err != nil {
			return nil, err
		}
		children, err := d.sc.U32()
		if err != nil {
			return nil, err
		}
		if children != 0 && debug.Decode() {
			debug.Logf("decode: simple section %q at 0x%X claims %d children, ignored\n", name, d.sc.pos, children)
		}
		obj := &ir.Object{Class: name}
		for range props {
			p, err := d.property(false)
			if err != nil {
				return nil, err
			}
			obj.Props = append(obj.Props, p)
		}
		doc.Sections = append(doc.Sections, ir.NewInline(name, obj))
	}
	return doc, nil
}
