// Package envelope unwraps compressed binary INF files.
//
// A compressed file is a 12-byte header (version tag, compressed size,
// uncompressed size, all little-endian) followed by a DEFLATE payload.
// Unwrap tries, in order, a zlib stream, a raw DEFLATE stream and a zlib
// stream cut to the declared compressed size, and returns the first that
// decompresses.
package envelope

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/signadot/inf-format/go-inf/debug"
	"github.com/signadot/inf-format/go-inf/format"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
)

var (
	ErrShort      = errors.New("envelope too short")
	ErrBadTag     = errors.New("bad envelope tag")
	ErrDecompress = errors.New("decompression failed")
)

type Header struct {
	Version          int
	CompressedSize   uint32
	UncompressedSize uint32
}

func ParseHeader(b []byte) (Header, error) {
	if len(b) < format.HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes", ErrShort, len(b))
	}
	v, ok := format.VersionOf(b)
	if !ok {
		return Header{}, fmt.Errorf("%w: % X", ErrBadTag, b[:4])
	}
	return Header{
		Version:          v,
		CompressedSize:   binary.LittleEndian.Uint32(b[4:8]),
		UncompressedSize: binary.LittleEndian.Uint32(b[8:12]),
	}, nil
}

// DecompressError holds the failure of every strategy.
type DecompressError struct {
	Header Header
	Errs   []error
}

func (e *DecompressError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%s (v%d): %s", ErrDecompress, e.Header.Version, strings.Join(msgs, "; "))
}

func (e *DecompressError) Unwrap() []error {
	return append([]error{ErrDecompress}, e.Errs...)
}

type strategy struct {
	name string
	fn   func(h Header, payload []byte) ([]byte, error)
}

var strategies = []strategy{
	{"zlib", func(_ Header, p []byte) ([]byte, error) { return inflateZlib(p) }},
	{"raw deflate", func(_ Header, p []byte) ([]byte, error) { return inflateRaw(p) }},
	{"zlib sized", func(h Header, p []byte) ([]byte, error) {
		n := int(h.CompressedSize)
		if n > len(p) || n < 0 {
			n = len(p)
		}
		return inflateZlib(p[:n])
	}},
}

// Unwrap decompresses the envelope b. The declared uncompressed size is
// advisory; the actual output length is what is returned.
func Unwrap(b []byte) ([]byte, error) {
	h, err := ParseHeader(b)
	if err != nil {
		return nil, err
	}
	payload := b[format.HeaderSize:]
	var errs []error
	for _, s := range strategies {
		out, err := s.fn(h, payload)
		if err == nil {
			if debug.Unwrap() {
				debug.Logf("unwrap v%d: %s ok, %d -> %d bytes (declared %d)\n",
					h.Version, s.name, len(payload), len(out), h.UncompressedSize)
			}
			return out, nil
		}
		if debug.Unwrap() {
			debug.Logf("unwrap v%d: %s failed: %v\n", h.Version, s.name, err)
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
	}
	return nil, &DecompressError{Header: h, Errs: errs}
}

func inflateZlib(p []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(p))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func inflateRaw(p []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(p))
	defer r.Close()
	return io.ReadAll(r)
}
