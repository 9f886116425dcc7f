package ir

import "fmt"

// Type is the type tag of a property value as stored in the binary.
type Type byte

const (
	StringType Type = iota
	NumberType
	WideType
	BlobType
)

func (t Type) String() string {
	s, ok := map[Type]string{
		StringType: "String",
		NumberType: "Number",
		WideType:   "Wide",
		BlobType:   "Blob",
	}[t]
	if ok {
		return s
	}
	return "<unknown type>"
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(d []byte) error {
	tt, ok := map[string]Type{
		"String": StringType,
		"Number": NumberType,
		"Wide":   WideType,
		"Blob":   BlobType,
	}[string(d)]
	if !ok {
		return fmt.Errorf("%w: unrecognized type %q", ErrBadType, d)
	}
	*t = tt
	return nil
}

func Types() []Type {
	return []Type{
		StringType,
		NumberType,
		WideType,
		BlobType,
	}
}

// Valid reports whether t is a known type tag.
func (t Type) Valid() bool {
	return t <= BlobType
}

// SectionKind tells the two section shapes apart.
type SectionKind int

const (
	// ContainerSection holds a list of sibling objects.
	ContainerSection SectionKind = iota
	// InlineSection is itself the body of a single object.
	InlineSection
)

func (k SectionKind) String() string {
	switch k {
	case ContainerSection:
		return "Container"
	case InlineSection:
		return "Inline"
	default:
		return "<unknown section kind>"
	}
}

func (k SectionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *SectionKind) UnmarshalText(d []byte) error {
	switch string(d) {
	case "Container":
		*k = ContainerSection
	case "Inline":
		*k = InlineSection
	default:
		return fmt.Errorf("%w: unrecognized section kind %q", ErrBadType, d)
	}
	return nil
}
