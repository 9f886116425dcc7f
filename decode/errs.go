package decode

import (
	"errors"
	"fmt"
)

var (
	ErrTruncated     = errors.New("truncated read")
	ErrMalformedType = errors.New("malformed value type")
	ErrTooDeep       = errors.New("nesting too deep")
)

// Error is a structural decode failure at byte offset Pos. Tag is the
// offending type byte for ErrMalformedType and -1 otherwise.
type Error struct {
	Pos int
	Tag int
	Err error
}

func (e *Error) Error() string {
	if e.Tag >= 0 {
		return fmt.Sprintf("%v %d at 0x%X", e.Err, e.Tag, e.Pos)
	}
	return fmt.Sprintf("%v at 0x%X", e.Err, e.Pos)
}

func (e *Error) Unwrap() error { return e.Err }

func errAt(pos int, err error) *Error {
	return &Error{Pos: pos, Tag: -1, Err: err}
}
