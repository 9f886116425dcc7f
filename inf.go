// Package inf decodes binary INF documents and renders them as text.
//
// An INF file is one of: plain text, a compressed envelope, or an
// already decompressed binary document. Classify tells them apart, Unwrap
// opens an envelope and DecodeAndRender takes either binary form to text.
// Render takes a document that is known to be decompressed to text.
package inf

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/signadot/inf-format/go-inf/decode"
	"github.com/signadot/inf-format/go-inf/encode"
	"github.com/signadot/inf-format/go-inf/envelope"
	"github.com/signadot/inf-format/go-inf/format"
	"github.com/signadot/inf-format/go-inf/ir"
)

// ErrAlreadyText is returned when asked to decode a text INF file.
var ErrAlreadyText = errors.New("already text")

type Config struct {
	Decode []decode.DecodeOption
	Encode []encode.EncodeOption
}

type Opt func(*Config)

func DecodeOptions(opts ...decode.DecodeOption) Opt {
	return func(c *Config) { c.Decode = append(c.Decode, opts...) }
}

func EncodeOptions(opts ...encode.EncodeOption) Opt {
	return func(c *Config) { c.Encode = append(c.Encode, opts...) }
}

func Classify(b []byte) format.Classification {
	return format.Classify(b)
}

// Unwrap decompresses a compressed envelope. See envelope.Unwrap.
func Unwrap(b []byte) ([]byte, error) {
	return envelope.Unwrap(b)
}

// Binary returns the decompressed binary document held in b, unwrapping
// it if needed, together with the classification of b.
func Binary(b []byte) ([]byte, format.Classification, error) {
	c := Classify(b)
	switch c.Kind {
	case format.Compressed:
		d, err := Unwrap(b)
		return d, c, err
	case format.Decompressed:
		return b, c, nil
	case format.Text:
		return nil, c, ErrAlreadyText
	default:
		return nil, c, format.ErrUnknownFormat
	}
}

// Decode classifies b, unwraps it if compressed and decodes the binary
// document.
func Decode(b []byte, opts ...Opt) (*ir.Document, error) {
	cfg := &Config{}
	for _, o := range opts {
		o(cfg)
	}
	d, _, err := Binary(b)
	if err != nil {
		return nil, err
	}
	return decode.Decode(d, cfg.Decode...)
}

// DecodeAndRender decodes b and renders it. Text input yields
// ErrAlreadyText so that callers can copy it through.
func DecodeAndRender(b []byte, opts ...Opt) (string, error) {
	d, _, err := Binary(b)
	if err != nil {
		return "", err
	}
	return Render(d, opts...)
}

// Render decodes and renders the decompressed binary document d, as
// returned by Binary or Unwrap. d is not classified again.
func Render(d []byte, opts ...Opt) (string, error) {
	cfg := &Config{}
	for _, o := range opts {
		o(cfg)
	}
	doc, err := decode.Decode(d, cfg.Decode...)
	if err != nil {
		return "", err
	}
	buf := bytes.NewBuffer(nil)
	if err := encode.Encode(doc, buf, cfg.Encode...); err != nil {
		return "", fmt.Errorf("could not render %s document as %s: %w",
			doc.Dialect, encode.FormatFromOpts(cfg.Encode...), err)
	}
	return buf.String(), nil
}
