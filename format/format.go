package format

import (
	"errors"
	"fmt"
	"strings"
)

// Format is an output format for a decoded document.
type Format int

const (
	INFFormat Format = iota
	JSONFormat
	YAMLFormat
)

var ErrBadFormat = errors.New("bad format")

func ParseFormat(v string) (Format, error) {
	f, ok := map[string]Format{
		"i":    INFFormat,
		"inf":  INFFormat,
		"j":    JSONFormat,
		"json": JSONFormat,
		"y":    YAMLFormat,
		"yaml": YAMLFormat,
	}[v]
	if ok {
		return f, nil
	}
	names := make([]string, 0, 3)
	for _, af := range AllFormats() {
		names = append(names, af.String())
	}
	return 0, fmt.Errorf("%w: %q, want one of %s", ErrBadFormat, v, strings.Join(names, ", "))
}

func (f Format) String() string {
	d, err := f.MarshalText()
	if err != nil {
		return err.Error()
	}
	return string(d)
}

func (f Format) MarshalText() ([]byte, error) {
	switch f {
	case INFFormat:
		return []byte("inf"), nil
	case JSONFormat:
		return []byte("json"), nil
	case YAMLFormat:
		return []byte("yaml"), nil
	default:
		return nil, fmt.Errorf("<err: %d is not a format>", f)
	}
}

func (f *Format) UnmarshalText(d []byte) error {
	pf, err := ParseFormat(string(d))
	if err != nil {
		return err
	}
	*f = pf
	return nil
}

func (f Format) IsINF() bool  { return f == INFFormat }
func (f Format) IsJSON() bool { return f == JSONFormat }
func (f Format) IsYAML() bool { return f == YAMLFormat }

// Suffix returns the extension appended to an input name when a dump in
// this format is written next to it. INF dumps are text, so they do not
// reuse the binary ".inf" extension.
func (f Format) Suffix() string {
	switch f {
	case INFFormat:
		return ".txt"
	case JSONFormat:
		return ".json"
	case YAMLFormat:
		return ".yaml"
	default:
		return ""
	}
}

// AllFormats returns all supported formats in preference order.
func AllFormats() []Format {
	return []Format{INFFormat, JSONFormat, YAMLFormat}
}
