package airfoil

import (
	"errors"
	"fmt"
)

// ErrNoMoment is returned when Cm is queried on a table loaded without a moment column.
var ErrNoMoment = errors.New("airfoil table has no moment coefficient data")

// DataFormatError reports a malformed airfoil dataset.
type DataFormatError struct {
	Line   int // 1-based line in the source, 0 if not tied to a line
	Column int // 1-based column, 0 if not tied to a column
	Msg    string
	Err    error
}

func (e *DataFormatError) Error() string {
	loc := ""
	switch {
	case e.Line > 0 && e.Column > 0:
		loc = fmt.Sprintf("line %d, column %d: ", e.Line, e.Column)
	case e.Line > 0:
		loc = fmt.Sprintf("line %d: ", e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("airfoil data: %s%s: %v", loc, e.Msg, e.Err)
	}
	return fmt.Sprintf("airfoil data: %s%s", loc, e.Msg)
}

func (e *DataFormatError) Unwrap() error {
	return e.Err
}

// Dimension names the table key an out-of-range query was made against.
type Dimension string

const (
	DimAngle     Dimension = "angle of attack"
	DimThickness Dimension = "thickness ratio"
)

// OutOfRangeError reports a query outside the tabulated range. Extrapolation is never performed.
type OutOfRangeError struct {
	Dim   Dimension
	Value float64
	Min   float64
	Max   float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s %.4g outside tabulated range [%.4g, %.4g]", e.Dim, e.Value, e.Min, e.Max)
}
