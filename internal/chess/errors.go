package chess

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfRange    = errors.New("coordinates out of range")
	ErrInvalidAction = errors.New("invalid action code")
)

func outOfRange(x, y int) error {
	return fmt.Errorf("%w: (%d, %d)", ErrOutOfRange, x, y)
}
