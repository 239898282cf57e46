package spantable

import (
	"errors"
	"fmt"
)

var ErrOutOfBounds = errors.New("coordinates out of bounds")

type OutOfBoundsError struct {
	Row, Col     int
	Depth, Width int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("invalid coordinates (%d,%d) for section of dims (%d,%d)", e.Row, e.Col, e.Depth, e.Width)
}

func (e *OutOfBoundsError) Unwrap() error { return ErrOutOfBounds }
