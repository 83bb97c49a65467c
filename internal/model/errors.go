package model

import (
	"errors"
	"fmt"
)

// ErrDimensionMismatch reports artifacts or inputs of disagreeing widths.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// DimensionError describes two pipeline parts that disagree on the input width.
type DimensionError struct {
	Stage  string
	Want   int
	Source string
	Got    int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch: the %s expects %d but the %s provides %d", e.Stage, e.Want, e.Source, e.Got)
}

// Is reports whether target is ErrDimensionMismatch.
func (e *DimensionError) Is(target error) bool {
	return target == ErrDimensionMismatch
}
