package encode

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/signadot/inf-format/go-inf/format"
	"github.com/signadot/inf-format/go-inf/ir"

	"github.com/goccy/go-yaml"
)

var ErrEncoding = errors.New("encoding error")

const (
	newline = "\r\n"
	indent  = "\t"

	refIDName = "_RefID"
)

type EncState struct {
	depth  int
	format format.Format

	Color func(ir.Type, ColorAttr, string) string
}

func Encode(doc *ir.Document, w io.Writer, opts ...EncodeOption) error {
	es := &EncState{}
	for _, opt := range opts {
		opt(es)
	}
	switch f := es.format; {
	case f.IsINF():
		return encodeINF(doc, w, es)
	case f.IsJSON():
		d, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("%w: %w", ErrEncoding, err)
		}
		return writeString(w, string(d)+"\n")
	case f.IsYAML():
		d, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrEncoding, err)
		}
		return writeString(w, string(d))
	default:
		return fmt.Errorf("%w: %w", ErrEncoding, format.ErrBadFormat)
	}
}

// EncodeObject renders a single object of a document in dialect d as
// text.
func EncodeObject(o *ir.Object, d format.Dialect, w io.Writer, opts ...EncodeOption) error {
	es := &EncState{}
	for _, opt := range opts {
		opt(es)
	}
	switch d {
	case format.ObjectDialect:
		return encodeObject(o, w, es.depth, es)
	case format.SimpleDialect:
		return encodeSimpleSection(ir.NewInline(o.Class, o), w, es.depth, es)
	default:
		return fmt.Errorf("%w: dialect %s", ErrEncoding, d)
	}
}

func encodeINF(doc *ir.Document, w io.Writer, es *EncState) error {
	switch doc.Dialect {
	case format.ObjectDialect:
		if doc.Root == nil {
			return fmt.Errorf("%w: object dialect document without root", ErrEncoding)
		}
		if err := writeBlank(w); err != nil {
			return err
		}
		return encodeObject(doc.Root, w, es.depth, es)
	case format.SimpleDialect:
		for i, s := range doc.Sections {
			if i > 0 {
				if err := writeBlank(w); err != nil {
					return err
				}
			}
			if err := encodeSimpleSection(s, w, es.depth, es); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: dialect %s", ErrEncoding, doc.Dialect)
	}
}

func encodeObject(o *ir.Object, w io.Writer, depth int, es *EncState) error {
	if err := writeHeader(w, o.Class, depth, es); err != nil {
		return err
	}
	if err := writeBrace(w, "{", depth, es); err != nil {
		return err
	}
	if err := encodeBody(o, w, depth+1, es); err != nil {
		return err
	}
	return writeBrace(w, "}", depth, es)
}

// encodeBody writes the ref-id, properties and sections of o at depth.
func encodeBody(o *ir.Object, w io.Writer, depth int, es *EncState) error {
	refID := strconv.Itoa(o.RefID)
	if es.Color != nil {
		refID = es.Color(ir.NumberType, RefIDColor, refID)
	}
	if err := writeLine(w, depth, field(refIDName, es)+sep(es)+refID); err != nil {
		return err
	}
	for i := range o.Props {
		if err := writeLine(w, depth, propLine(&o.Props[i], true, es)); err != nil {
			return err
		}
	}
	if len(o.Sections) == 0 {
		return nil
	}
	if err := writeBlank(w); err != nil {
		return err
	}
	for _, s := range o.Sections {
		if err := encodeSection(s, w, depth, es); err != nil {
			return err
		}
	}
	return nil
}

func encodeSection(s *ir.Section, w io.Writer, depth int, es *EncState) error {
	if err := writeHeader(w, s.Name, depth, es); err != nil {
		return err
	}
	if err := writeBrace(w, "{", depth, es); err != nil {
		return err
	}
	if err := writeBlank(w); err != nil {
		return err
	}
	switch s.Kind {
	case ir.ContainerSection:
		for _, o := range s.Objects {
			if err := encodeObject(o, w, depth+1, es); err != nil {
				return err
			}
		}
	case ir.InlineSection:
		if s.Object != nil {
			if err := encodeBody(s.Object, w, depth+1, es); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: section kind %s", ErrEncoding, s.Kind)
	}
	return writeBrace(w, "}", depth, es)
}

func encodeSimpleSection(s *ir.Section, w io.Writer, depth int, es *EncState) error {
	if err := writeHeader(w, s.Name, depth, es); err != nil {
		return err
	}
	if err := writeBrace(w, "{", depth, es); err != nil {
		return err
	}
	if s.Object != nil {
		for i := range s.Object.Props {
			if err := writeLine(w, depth+1, propLine(&s.Object.Props[i], false, es)); err != nil {
				return err
			}
		}
	}
	return writeBrace(w, "}", depth, es)
}

// propLine renders "name = v1, v2". Strings are always quoted when quote
// is set and otherwise only when they need it.
func propLine(p *ir.Property, quote bool, es *EncState) string {
	vals := make([]string, len(p.Values))
	for i, v := range p.Values {
		vals[i] = applyValueColor(es, v.Type, FormatValue(v, quote))
	}
	comma := ", "
	if es.Color != nil {
		comma = es.Color(ir.StringType, SepColor, ",") + " "
	}
	return field(p.Name, es) + sep(es) + strings.Join(vals, comma)
}

// FormatValue renders a single property value.
func FormatValue(v ir.Value, quote bool) string {
	switch v.Type {
	case ir.NumberType:
		return FormatNumber(v.Number)
	case ir.WideType:
		return "L" + Quote(v.String)
	case ir.BlobType:
		return fmt.Sprintf("<blob:%d>", v.Len)
	default:
		if quote || NeedsQuote(v.String) {
			return Quote(v.String)
		}
		return escapeQuotes(v.String)
	}
}

// FormatNumber renders integral values with magnitude below 1e15 without
// a decimal point and everything else in full decimal.
func FormatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func Quote(s string) string {
	return `"` + escapeQuotes(s) + `"`
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// NeedsQuote reports whether a simple dialect string must be quoted: it
// holds a space, slash, backslash or comma. Embedded quotes alone are
// escaped in place.
func NeedsQuote(s string) bool {
	return strings.ContainsAny(s, ` /\,`)
}

// Helper functions for writing

func writeString(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}

func writeLine(w io.Writer, depth int, s string) error {
	return writeString(w, strings.Repeat(indent, depth)+s+newline)
}

func writeBlank(w io.Writer) error {
	return writeString(w, newline)
}

func writeHeader(w io.Writer, name string, depth int, es *EncState) error {
	h := "[" + name + "]"
	if es.Color != nil {
		h = es.Color(ir.StringType, HeaderColor, h)
	}
	return writeLine(w, depth, h)
}

func writeBrace(w io.Writer, b string, depth int, es *EncState) error {
	if es.Color != nil {
		b = es.Color(ir.StringType, BraceColor, b)
	}
	return writeLine(w, depth, b)
}

func field(name string, es *EncState) string {
	if es.Color == nil {
		return name
	}
	return es.Color(ir.StringType, FieldColor, name)
}

func sep(es *EncState) string {
	if es.Color == nil {
		return " = "
	}
	return " " + es.Color(ir.StringType, SepColor, "=") + " "
}

func applyValueColor(es *EncState, t ir.Type, v string) string {
	if es.Color == nil {
		return v
	}
	return es.Color(t, ValueColor, v)
}
