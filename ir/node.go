package ir

import (
	"github.com/signadot/inf-format/go-inf/format"
)

// Value is one property value. Index is the string table index for
// StringType and WideType values, whose resolved text is in String. Len
// is the byte length of a BlobType value, whose content is not kept.
type Value struct {
	Type   Type    `json:"type" yaml:"type"`
	Index  uint32  `json:"index,omitempty" yaml:"index,omitempty"`
	String string  `json:"string,omitempty" yaml:"string,omitempty"`
	Number float64 `json:"number,omitempty" yaml:"number,omitempty"`
	Len    uint32  `json:"len,omitempty" yaml:"len,omitempty"`
}

func FromString(index uint32, s string) Value {
	return Value{Type: StringType, Index: index, String: s}
}

func FromWide(index uint32, s string) Value {
	return Value{Type: WideType, Index: index, String: s}
}

func FromNumber(f float64) Value {
	return Value{Type: NumberType, Number: f}
}

func FromBlob(n uint32) Value {
	return Value{Type: BlobType, Len: n}
}

// Any returns the value as a string, float64 or blob length.
func (v Value) Any() any {
	switch v.Type {
	case NumberType:
		return v.Number
	case BlobType:
		return int(v.Len)
	default:
		return v.String
	}
}

type Property struct {
	Name   string  `json:"name" yaml:"name"`
	Values []Value `json:"values" yaml:"values"`
}

type Object struct {
	Class    string     `json:"class" yaml:"class"`
	RefID    int        `json:"refID,omitempty" yaml:"refID,omitempty"`
	Props    []Property `json:"props,omitempty" yaml:"props,omitempty"`
	Sections []*Section `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// Prop returns the first property named name.
func (o *Object) Prop(name string) (*Property, bool) {
	for i := range o.Props {
		if o.Props[i].Name == name {
			return &o.Props[i], true
		}
	}
	return nil, false
}

// Section is a named child of an object. A ContainerSection lists
// Objects; an InlineSection is the single Object whose class is the
// section name.
type Section struct {
	Kind    SectionKind `json:"kind" yaml:"kind"`
	Name    string      `json:"name" yaml:"name"`
	Objects []*Object   `json:"objects,omitempty" yaml:"objects,omitempty"`
	Object  *Object     `json:"object,omitempty" yaml:"object,omitempty"`
}

func NewContainer(name string, objs ...*Object) *Section {
	return &Section{Kind: ContainerSection, Name: name, Objects: objs}
}

func NewInline(name string, obj *Object) *Section {
	return &Section{Kind: InlineSection, Name: name, Object: obj}
}

// Document is a decoded binary INF document. Object dialect documents
// have a Root; simple dialect documents have flat inline Sections whose
// objects carry no ref-id.
type Document struct {
	Dialect  format.Dialect `json:"dialect" yaml:"dialect"`
	Root     *Object        `json:"root,omitempty" yaml:"root,omitempty"`
	Sections []*Section     `json:"sections,omitempty" yaml:"sections,omitempty"`

	// End is the decoder position after the last structure read.
	End int `json:"-" yaml:"-"`
}
