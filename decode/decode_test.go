package decode

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/signadot/inf-format/go-inf/format"
	"github.com/signadot/inf-format/go-inf/internal/inftest"
	"github.com/signadot/inf-format/go-inf/ir"
	"github.com/signadot/inf-format/go-inf/strtab"

	"github.com/google/go-cmp/cmp"
)

func S(idx uint32, s string) ir.Value { return ir.FromString(idx, s) }

// nested builds
//
//	[cRoot] Name, Size
//	  Controls * (container)
//	    [cButton] Text, Icon(blob)
//	      ToolTip : cPrismToolTip (inline) Text(wide)
//	    [cLabel] Pos
//	  Frame (inline) Color
func nested() *inftest.Builder {
	b := inftest.NewObject("cRoot")
	b.Counts(2, 2)
	b.Prop("Name", inftest.S("main menu"))
	b.Prop("Size", inftest.N(640), inftest.N(480))
	b.Container("Controls *", 2)
	b.Child("cButton", 2, 1)
	b.Prop("Text", inftest.S("OK"))
	b.Prop("Icon", inftest.Blob([]byte{1, 2, 3, 4, 5}))
	b.Inline("ToolTip : cPrismToolTip", 1, 0)
	b.Prop("Text", inftest.W("Press to accept"))
	b.Child("cLabel", 1, 0)
	b.Prop("Pos", inftest.N(1.5), inftest.N(-2))
	b.Inline("Frame", 1, 0)
	b.Prop("Color", inftest.S("red"))
	return b
}

func TestDecodeObjectNested(t *testing.T) {
	b := nested()
	doc, err := Decode(b.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	idx := func(s string) uint32 { return b.Str(s) }
	want := &ir.Document{
		Dialect: format.ObjectDialect,
		Root: &ir.Object{
			Class: "cRoot",
			RefID: 1,
			Props: []ir.Property{
				{Name: "Name", Values: []ir.Value{S(idx("main menu"), "main menu")}},
				{Name: "Size", Values: []ir.Value{ir.FromNumber(640), ir.FromNumber(480)}},
			},
			Sections: []*ir.Section{
				ir.NewContainer("Controls *",
					&ir.Object{
						Class: "cButton",
						RefID: 2,
						Props: []ir.Property{
							{Name: "Text", Values: []ir.Value{S(idx("OK"), "OK")}},
							{Name: "Icon", Values: []ir.Value{ir.FromBlob(5)}},
						},
						Sections: []*ir.Section{
							ir.NewInline("ToolTip : cPrismToolTip", &ir.Object{
								Class: "ToolTip : cPrismToolTip",
								RefID: 3,
								Props: []ir.Property{
									{Name: "Text", Values: []ir.Value{ir.FromWide(0, "Press to accept")}},
								},
							}),
						},
					},
					&ir.Object{
						Class: "cLabel",
						RefID: 4,
						Props: []ir.Property{
							{Name: "Pos", Values: []ir.Value{ir.FromNumber(1.5), ir.FromNumber(-2)}},
						},
					}),
				ir.NewInline("Frame", &ir.Object{
					Class: "Frame",
					RefID: 5,
					Props: []ir.Property{
						{Name: "Color", Values: []ir.Value{S(idx("red"), "red")}},
					},
				}),
			},
		},
	}
	if diff := cmp.Diff(want, doc, cmp.FilterPath(func(p cmp.Path) bool {
		return p.Last().String() == ".End"
	}, cmp.Ignore())); diff != "" {
		t.Errorf("document (-want +got):\n%s", diff)
	}
}

func TestDecodeEndsAtStringTable(t *testing.T) {
	for name, b := range map[string]*inftest.Builder{
		"nested": nested(),
		"empty-root": inftest.NewObject("cRoot").Counts(0, 0),
		"empty-container": func() *inftest.Builder {
			b := inftest.NewObject("cRoot").Counts(0, 1)
			b.Container("Items", 0)
			return b
		}(),
	} {
		t.Run(name, func(t *testing.T) {
			buf := b.Bytes()
			d, err := NewDecoder(buf)
			if err != nil {
				t.Fatal(err)
			}
			doc, err := d.Decode()
			if err != nil {
				t.Fatal(err)
			}
			off := int(binary.LittleEndian.Uint32(buf))
			if d.Pos() != off || doc.End != off {
				t.Errorf("decoder at 0x%X (doc.End 0x%X), string table at 0x%X", d.Pos(), doc.End, off)
			}
		})
	}
}

func TestDecodeRefIDsAreSequential(t *testing.T) {
	b := inftest.NewObject("cRoot")
	b.Counts(0, 2)
	b.Container("A", 3)
	for range 3 {
		b.Child("cItem", 1, 1)
		b.Prop("V", inftest.N(1))
		b.Container("Sub", 2)
		b.Child("cLeaf", 0, 0)
		b.Child("cLeaf", 0, 1)
		b.Inline("Deep", 1, 0)
		b.Prop("X", inftest.N(2))
	}
	b.Inline("B : cThing", 1, 1)
	b.Prop("W", inftest.N(3))
	b.Container("C", 1)
	b.Child("cLast", 0, 0)

	doc, err := Decode(b.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	objs := doc.Objects()
	// root + 3*(item + 2 leaves + deep) + B + last
	if len(objs) != 1+3*4+2 {
		t.Fatalf("got %d objects", len(objs))
	}
	seen := map[int]bool{}
	for i, o := range objs {
		if o.RefID != i+1 {
			t.Errorf("object %d (%s) has ref-id %d", i, o.Class, o.RefID)
		}
		if seen[o.RefID] {
			t.Errorf("duplicate ref-id %d", o.RefID)
		}
		seen[o.RefID] = true
	}
}

func TestDecodeContainerOrder(t *testing.T) {
	b := inftest.NewObject("cRoot")
	b.Counts(0, 1)
	b.Container("Controls *", 2)
	b.Child("cPrismButton", 0, 0)
	b.Child("cPrismLabel", 0, 0)
	doc, err := Decode(b.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	s := doc.Root.Sections[0]
	if s.Kind != ir.ContainerSection {
		t.Fatalf("got %s section", s.Kind)
	}
	got := [][2]any{}
	for _, o := range s.Objects {
		got = append(got, [2]any{o.Class, o.RefID})
	}
	want := [][2]any{{"cPrismButton", 2}, {"cPrismLabel", 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("objects (-want +got):\n%s", diff)
	}
}

// The section shape follows the discriminator word, never the name.
func TestDecodeDiscriminatorDecidesShape(t *testing.T) {
	b := inftest.NewObject("cRoot")
	b.Counts(0, 3)
	b.Container("Looks : Inline", 1) // container despite " : "
	b.Child("cChild", 0, 0)
	b.Inline("Plain", 1, 0) // inline without " : "
	b.Prop("A", inftest.N(1))
	b.Inline("Tip : cTip", 1, 0)
	b.Prop("B", inftest.N(2))
	doc, err := Decode(b.Bytes(), WithDialect(format.ObjectDialect))
	if err != nil {
		t.Fatal(err)
	}
	kinds := []ir.SectionKind{}
	for _, s := range doc.Root.Sections {
		kinds = append(kinds, s.Kind)
	}
	want := []ir.SectionKind{ir.ContainerSection, ir.InlineSection, ir.InlineSection}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("kinds (-want +got):\n%s", diff)
	}
	if doc.Root.Sections[0].Objects[0].Class != "cChild" {
		t.Errorf("got %+v", doc.Root.Sections[0].Objects[0])
	}
}

func TestDecodeMalformedType(t *testing.T) {
	b := inftest.NewObject("cRoot")
	b.Counts(2, 0)
	b.Prop("Good", inftest.N(1))
	b.U32(b.Str("Bad")).U8(2).U8(0).U32(0)
	pos := b.Pos()
	b.U8(4).U32(0)
	_, err := Decode(b.Bytes())
	if !errors.Is(err, ErrMalformedType) {
		t.Fatalf("expected ErrMalformedType, got %v", err)
	}
	var de *Error
	if !errors.As(err, &de) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if de.Pos != pos || de.Tag != 4 {
		t.Errorf("got pos 0x%X tag %d, want pos 0x%X tag 4", de.Pos, de.Tag, pos)
	}
}

func TestDecodeTruncatedBlob(t *testing.T) {
	b := inftest.NewObject("cRoot")
	b.Counts(1, 0)
	b.U32(b.Str("Data")).U8(1).U8(3).U32(100000)
	pos := b.Pos()
	_, err := Decode(b.Bytes())
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	var de *Error
	if !errors.As(err, &de) || de.Pos != pos {
		t.Errorf("got %v, want position 0x%X", err, pos)
	}
}

func TestDecodeRefIDPropertyDropped(t *testing.T) {
	b := inftest.NewObject("cRoot")
	b.Counts(3, 1)
	b.Prop("_RefID", inftest.N(77))
	b.Prop("Name", inftest.S("n"))
	b.Prop("_RefID", inftest.S("stale"))
	b.Container("Kids", 1)
	b.Child("cKid", 1, 0)
	b.Prop("_RefID", inftest.N(1))
	doc, err := Decode(b.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Root.Props) != 1 || doc.Root.Props[0].Name != "Name" {
		t.Errorf("root props %+v", doc.Root.Props)
	}
	kid := doc.Root.Sections[0].Objects[0]
	if len(kid.Props) != 0 || kid.RefID != 2 {
		t.Errorf("kid %+v", kid)
	}
}

func TestDecodeIndexPlaceholders(t *testing.T) {
	b := inftest.NewObject("cRoot")
	b.Counts(1, 1)
	b.U32(500).U8(2).U8(0).U32(501).U8(2).U32(9)
	b.U32(502).U32(0).U32(1)
	b.U32(503).U32(0).U32(0)
	doc, err := Decode(b.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	p := doc.Root.Props[0]
	want := ir.Property{Name: "<string_500>", Values: []ir.Value{
		S(501, "<string_501>"),
		ir.FromWide(9, "<wstring_9>"),
	}}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("property (-want +got):\n%s", diff)
	}
	s := doc.Root.Sections[0]
	if s.Name != "<string_502>" || s.Objects[0].Class != "<string_503>" {
		t.Errorf("section %+v", s)
	}
}

func TestDecodeTooDeep(t *testing.T) {
	b := inftest.NewObject("cRoot")
	b.Counts(0, 1)
	for range 10 {
		b.Inline("Level", 1, 1)
		b.Prop("A", inftest.N(0))
	}
	b.Inline("Level", 1, 0)
	b.Prop("A", inftest.N(0))
	if _, err := Decode(b.Bytes(), MaxDepth(5)); !errors.Is(err, ErrTooDeep) {
		t.Errorf("expected ErrTooDeep, got %v", err)
	}
	if _, err := Decode(b.Bytes(), MaxDepth(20)); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func TestDecodeInvalidOffset(t *testing.T) {
	buf := nested().Bytes()
	binary.LittleEndian.PutUint32(buf, uint32(len(buf)))
	if _, err := Decode(buf); !errors.Is(err, strtab.ErrInvalidOffset) {
		t.Errorf("expected ErrInvalidOffset, got %v", err)
	}
}

func TestDecodeSimple(t *testing.T) {
	b := inftest.NewSimple("Main", 3)
	b.Counts(2, 0)
	b.Prop("Title", inftest.S("War Front"))
	b.Prop("Mixed", inftest.N(1), inftest.S("two"), inftest.N(3.25))
	b.Name("Audio").Counts(1, 4) // children are not decoded
	b.Prop("Volume", inftest.N(0.8))
	b.Name("Empty").Counts(0, 0)
	buf := b.Bytes()

	d, err := NewDecoder(buf)
	if err != nil {
		t.Fatal(err)
	}
	if d.Dialect() != format.SimpleDialect {
		t.Fatalf("detected %s", d.Dialect())
	}
	doc, err := d.Decode()
	if err != nil {
		t.Fatal(err)
	}
	idx := b.Str
	want := &ir.Document{
		Dialect: format.SimpleDialect,
		Sections: []*ir.Section{
			ir.NewInline("Main", &ir.Object{Class: "Main", Props: []ir.Property{
				{Name: "Title", Values: []ir.Value{S(idx("War Front"), "War Front")}},
				{Name: "Mixed", Values: []ir.Value{ir.FromNumber(1), S(idx("two"), "two"), ir.FromNumber(3.25)}},
			}}),
			ir.NewInline("Audio", &ir.Object{Class: "Audio", Props: []ir.Property{
				{Name: "Volume", Values: []ir.Value{ir.FromNumber(0.8)}},
			}}),
			ir.NewInline("Empty", &ir.Object{Class: "Empty"}),
		},
		End: int(binary.LittleEndian.Uint32(buf)),
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("document (-want +got):\n%s", diff)
	}
}

func TestDecodeSimpleRejectsRichTypes(t *testing.T) {
	for _, v := range []inftest.Value{inftest.W("w"), inftest.Blob([]byte{1}), inftest.BadType(9)} {
		b := inftest.NewSimple("Main", 2)
		b.Counts(1, 0)
		pos := b.Pos() + 5
		b.Prop("P", v)
		b.Name("Next").Counts(0, 0)
		_, err := Decode(b.Bytes())
		var de *Error
		if !errors.As(err, &de) || !errors.Is(err, ErrMalformedType) {
			t.Errorf("type %d: expected ErrMalformedType, got %v", v.Type(), err)
			continue
		}
		if de.Pos != pos || de.Tag != int(v.Type()) {
			t.Errorf("type %d: got %v", v.Type(), de)
		}
	}
}

func TestDecodeForcedDialect(t *testing.T) {
	// a one-section simple document is detected as object dialect
	b := inftest.NewSimple("Main", 1)
	b.Counts(1, 0)
	b.Prop("A", inftest.N(7))
	doc, err := Decode(b.Bytes(), WithDialect(format.SimpleDialect))
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Sections) != 1 || doc.Sections[0].Object.Props[0].Values[0].Number != 7 {
		t.Errorf("got %+v", doc.Sections)
	}
}

func TestDecodersAreIndependent(t *testing.T) {
	buf := nested().Bytes()
	d1, err := NewDecoder(buf)
	if err != nil {
		t.Fatal(err)
	}
	d2, err := NewDecoder(buf)
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan *ir.Document, 2)
	for _, d := range []*Decoder{d1, d2} {
		go func() {
			doc, err := d.Decode()
			if err != nil {
				done <- nil
				return
			}
			done <- doc
		}()
	}
	for range 2 {
		doc := <-done
		if doc == nil {
			t.Fatal("decode failed")
		}
		if n := len(doc.Objects()); n != 5 {
			t.Errorf("got %d objects", n)
		}
	}
}
