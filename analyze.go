package inf

import (
	"fmt"
	"io"
	"strings"

	"github.com/signadot/inf-format/go-inf/envelope"
	"github.com/signadot/inf-format/go-inf/format"
	"github.com/signadot/inf-format/go-inf/strtab"
)

const (
	// MaxSamples bounds Info.Samples.
	MaxSamples = 20
	// PreviewSize bounds Info.Preview.
	PreviewSize = 500
)

// Info summarizes a binary INF file without decoding its tree.
type Info struct {
	Class  format.Classification `json:"-"`
	Header *envelope.Header      `json:"header,omitempty"`

	// Size is the decompressed document size.
	Size        int            `json:"size"`
	TableOffset int            `json:"tableOffset"`
	StringCount uint32         `json:"stringCount"`
	WideCount   uint32         `json:"wideCount"`
	Dialect     format.Dialect `json:"dialect"`
	Samples     []string       `json:"samples,omitempty"`

	// Preview is the start of a text file.
	Preview string `json:"preview,omitempty"`
}

// Analyze reads the header and string table of b. Text input yields an
// Info with only Class and Preview set. The returned Info is non-nil
// even when decompression or table loading fails.
func Analyze(b []byte) (*Info, error) {
	info := &Info{Class: Classify(b)}
	switch info.Class.Kind {
	case format.Text:
		info.Preview = strings.ToValidUTF8(string(b[:min(len(b), PreviewSize)]), "\uFFFD")
		return info, nil
	case format.Unknown:
		return info, format.ErrUnknownFormat
	case format.Compressed:
		h, err := envelope.ParseHeader(b)
		if err != nil {
			return info, err
		}
		info.Header = &h
	}
	d, _, err := Binary(b)
	if err != nil {
		return info, err
	}
	info.Size = len(d)
	tab, err := strtab.Load(d)
	if err != nil {
		return info, err
	}
	info.TableOffset = tab.Offset
	info.StringCount = tab.StringCount
	info.WideCount = tab.WideCount
	info.Dialect = format.DetectDialect(d, tab.First())
	n := min(len(tab.Strings), MaxSamples)
	info.Samples = append([]string(nil), tab.Strings[:n]...)
	return info, nil
}

// Print writes a human readable summary.
func (i *Info) Print(w io.Writer) error {
	p := func(f string, args ...any) error {
		_, err := fmt.Fprintf(w, f, args...)
		return err
	}
	if err := p("format: %s\n", i.Class); err != nil {
		return err
	}
	switch i.Class.Kind {
	case format.Text:
		return p("%s\n", i.Preview)
	case format.Unknown:
		return nil
	}
	if h := i.Header; h != nil {
		if err := p("compressed size: %d\nuncompressed size: %d\n", h.CompressedSize, h.UncompressedSize); err != nil {
			return err
		}
	}
	if err := p("size: %d\nstring table offset: 0x%X\nstring count: %d\nwide string count: %d\ndialect: %s\n",
		i.Size, i.TableOffset, i.StringCount, i.WideCount, i.Dialect); err != nil {
		return err
	}
	if len(i.Samples) == 0 {
		return nil
	}
	if err := p("strings:\n"); err != nil {
		return err
	}
	for j, s := range i.Samples {
		if err := p("  [%d] %s\n", j, s); err != nil {
			return err
		}
	}
	return nil
}
