package bem

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned for non-physical solver or rotor inputs.
var ErrInvalidInput = errors.New("invalid input")

// TermAxialInduction is the DivisionByZeroError term of an axial induction factor a >= 1,
// where the axial velocity v0·(1-a) vanishes or reverses.
const TermAxialInduction = "axial induction (a >= 1)"

// DivisionByZeroError reports a degenerate denominator during the induction iteration,
// e.g. a tangential induction factor of exactly -1.
type DivisionByZeroError struct {
	Term      string
	R         float64
	Iteration int
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("division by zero in %s at r=%.4g m (iteration %d)", e.Term, e.R, e.Iteration)
}

// ConvergenceError reports that the induction factors did not settle within MaxIter iterations.
type ConvergenceError struct {
	R          float64
	Iterations int
	DeltaA     float64 // |a - a_new| of the last iteration
	DeltaAP    float64 // |a' - a'_new| of the last iteration
	Tolerance  float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("no convergence at r=%.4g m after %d iterations (|Δa|=%.3g, |Δa'|=%.3g, tol=%.3g)",
		e.R, e.Iterations, e.DeltaA, e.DeltaAP, e.Tolerance)
}
