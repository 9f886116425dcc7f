package ir

import (
	"errors"
)

var (
	ErrBadType = errors.New("bad value type")
)
