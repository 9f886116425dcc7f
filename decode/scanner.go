package decode

import (
	"encoding/binary"
	"fmt"
	"math"
)

// scanner reads little-endian fields from an owned buffer.
type scanner struct {
	buf []byte
	pos int
}

func (s *scanner) take(n int) ([]byte, error) {
	if n < 0 || n > len(s.buf)-s.pos {
		return nil, errAt(s.pos, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, n, max(len(s.buf)-s.pos, 0)))
	}
	b := s.buf[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

func (s *scanner) U8() (uint8, error) {
	b, err := s.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (s *scanner) U32() (uint32, error) {
	b, err := s.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (s *scanner) F64() (float64, error) {
	b, err := s.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

func (s *scanner) Skip(n uint32) error {
	if uint64(n) > uint64(len(s.buf)-s.pos) {
		return errAt(s.pos, fmt.Errorf("%w: skip %d bytes, have %d", ErrTruncated, n, len(s.buf)-s.pos))
	}
	s.pos += int(n)
	return nil
}
