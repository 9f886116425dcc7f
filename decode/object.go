package decode

import (
	"github.com/signadot/inf-format/go-inf/debug"
	"github.com/signadot/inf-format/go-inf/format"
	"github.com/signadot/inf-format/go-inf/ir"
)

// Object dialect grammar, all words little-endian u32 unless noted:
//
//	root     = prop_count child_count property* section*     (class is string 0)
//	object   = class_idx prop_count child_count property* section*
//	section  = name_idx 0 obj_count object*                  (container)
//	         | name_idx prop_count child_count property* section*  (inline, prop_count != 0)
//	property = name_idx count:u8 (type:u8 payload)*

func (d *Decoder) objectDocument() (*ir.Document, error) {
	root, err := d.objectBody(d.tab.Str(0), 0)
	if err != nil {
		return nil, err
	}
	return &ir.Document{Dialect: format.ObjectDialect, Root: root}, nil
}

func (d *Decoder) childObject(depth int) (*ir.Object, error) {
	classIdx, err := d.sc.U32()
	if err != nil {
		return nil, err
	}
	return d.objectBody(d.tab.Str(classIdx), depth)
}

func (d *Decoder) objectBody(class string, depth int) (*ir.Object, error) {
	props, err := d.sc.U32()
	if err != nil {
		return nil, err
	}
	children, err := d.sc.U32()
	if err != nil {
		return nil, err
	}
	return d.objectRest(class, props, children, depth)
}

func (d *Decoder) objectRest(class string, props, children uint32, depth int) (*ir.Object, error) {
	if depth > d.maxDepth {
		return nil, errAt(d.sc.pos, ErrTooDeep)
	}
	obj := &ir.Object{Class: class, RefID: d.nextRef}
	d.nextRef++
	if debug.Decode() {
		debug.Logf("%*s[%s] ref %d at 0x%X: %d props, %d sections\n", depth*2, "", class, obj.RefID, d.sc.pos, props, children)
	}
	for range props {
		p, err := d.property(true)
		if err != nil {
			return nil, err
		}
		if p.Name == RefIDName {
			continue
		}
		obj.Props = append(obj.Props, p)
	}
	for range children {
		s, err := d.section(depth + 1)
		if err != nil {
			return nil, err
		}
		obj.Sections = append(obj.Sections, s)
	}
	return obj, nil
}

// section picks its shape from the word after the name index alone.
func (d *Decoder) section(depth int) (*ir.Section, error) {
	nameIdx, err := d.sc.U32()
	if err != nil {
		return nil, err
	}
	name := d.tab.Str(nameIdx)
	disc, err := d.sc.U32()
	if err != nil {
		return nil, err
	}
	if disc != 0 {
		children, err := d.sc.U32()
		if err != nil {
			return nil, err
		}
		obj, err := d.objectRest(name, disc, children, depth)
		if err != nil {
			return nil, err
		}
		return ir.NewInline(name, obj), nil
	}
	n, err := d.sc.U32()
	if err != nil {
		return nil, err
	}
	s := ir.NewContainer(name)
	for range n {
		obj, err := d.childObject(depth)
		if err != nil {
			return nil, err
		}
		s.Objects = append(s.Objects, obj)
	}
	return s, nil
}
