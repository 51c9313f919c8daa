package bem

import (
	"fmt"
	"math"

	"github.com/alexiusacademia/gobem/internal/airfoil"
	"github.com/alexiusacademia/gobem/internal/geometry"
)

// Defaults used when a configuration value is not given
const (
	DefaultBlades     = 3
	DefaultAirDensity = 1.225 // kg/m³, sea level

	DefaultRelaxation = 0.3
	DefaultTolerance  = 1e-4
	DefaultMaxIter    = 1000
)

// SolveOptions controls the fixed-point iteration of one blade station.
type SolveOptions struct {
	Relaxation float64 // f in a ← (1-f)·a + f·a_new, in (0, 1]
	Tolerance  float64 // convergence threshold on |a - a_new| and |a' - a'_new|
	MaxIter    int     // iteration limit before ConvergenceError
}

// DefaultSolveOptions returns relaxation 0.3, tolerance 1e-4 and 1000 iterations.
func DefaultSolveOptions() SolveOptions {
	return SolveOptions{
		Relaxation: DefaultRelaxation,
		Tolerance:  DefaultTolerance,
		MaxIter:    DefaultMaxIter,
	}
}

// Validate checks the option ranges.
func (o SolveOptions) Validate() error {
	if !(o.Relaxation > 0 && o.Relaxation <= 1) {
		return fmt.Errorf("%w: relaxation factor %.3g must be in (0, 1]", ErrInvalidInput, o.Relaxation)
	}
	if !(o.Tolerance > 0) {
		return fmt.Errorf("%w: tolerance %.3g must be positive", ErrInvalidInput, o.Tolerance)
	}
	if o.MaxIter < 1 {
		return fmt.Errorf("%w: max iterations %d must be at least 1", ErrInvalidInput, o.MaxIter)
	}
	return nil
}

// Solver computes the induction factors and local loads of single blade stations.
// It holds no mutable state; one Solver may be shared by concurrent callers.
type Solver struct {
	Table      airfoil.Table
	Blades     int     // B
	AirDensity float64 // ρ (kg/m³)
	Options    SolveOptions
}

// NewSolver creates a solver with the default iteration options
func NewSolver(table airfoil.Table, blades int, airDensity float64) *Solver {
	return &Solver{
		Table:      table,
		Blades:     blades,
		AirDensity: airDensity,
		Options:    DefaultSolveOptions(),
	}
}

// SegmentResult holds the converged state of one blade station
type SegmentResult struct {
	geometry.Station

	// Induction factors (final state = converged a_new, a'_new)
	A     float64
	AP    float64
	ANew  float64
	APNew float64

	// Flow geometry (rad)
	FlowAngle     float64
	AngleOfAttack float64

	// Coefficients
	Cl float64
	Cd float64
	Cn float64
	Ct float64

	// Local loads per unit span
	Loads

	Iterations int
}

// FlowAngleDeg returns φ in degrees
func (r *SegmentResult) FlowAngleDeg() float64 { return r.FlowAngle * 180 / math.Pi }

// AngleOfAttackDeg returns α in degrees
func (r *SegmentResult) AngleOfAttackDeg() float64 { return r.AngleOfAttack * 180 / math.Pi }

// Loads are the blade element forces per unit span
type Loads struct {
	Vrel float64 // relative velocity (m/s)
	Lift float64 // N/m
	Drag float64 // N/m
	Pn   float64 // normal to rotor plane (N/m)
	Pt   float64 // tangential to rotor plane (N/m)
}

// FlowAngle returns φ = atan2(v0·(1-a), ω·r·(1+a')) in radians.
// A tangential induction factor of exactly -1 collapses the tangential velocity and is rejected.
func FlowAngle(v0, omega, r, a, ap float64) (float64, error) {
	if 1+ap == 0 {
		return 0, &DivisionByZeroError{Term: "flow angle (a' = -1)"}
	}
	return math.Atan2(v0*(1-a), omega*r*(1+ap)), nil
}

// AngleOfAttack returns α = φ - (pitch + twist) in radians; pitch and twist are in degrees.
func AngleOfAttack(phi, pitchDeg, twistDeg float64) float64 {
	return phi - (pitchDeg+twistDeg)*math.Pi/180
}

// ForceCoefficients resolves Cl, Cd into the normal and tangential coefficients Cn, Ct.
func ForceCoefficients(cl, cd, phi float64) (cn, ct float64) {
	sin, cos := math.Sincos(phi)
	cn = cl*cos + cd*sin
	ct = cl*sin - cd*cos
	return cn, ct
}

// Solidity returns σ = B·c / (2π·r).
func Solidity(blades int, chord, r float64) float64 {
	return float64(blades) * chord / (2 * math.Pi * r)
}

// InductionFactors returns the momentum-balance induction factors
//
//	a_new  = 1 / (4 sin²φ / (σ·Cn) + 1)
//	a'_new = 1 / (4 sinφ cosφ / (σ·Ct) - 1)
//
// Every zero denominator is reported as a DivisionByZeroError.
func InductionFactors(sigma, cn, ct, phi float64) (aNew, apNew float64, err error) {
	sin, cos := math.Sincos(phi)

	switch {
	case sigma*cn == 0:
		return 0, 0, &DivisionByZeroError{Term: "axial induction (σ·Cn = 0)"}
	case sigma*ct == 0:
		return 0, 0, &DivisionByZeroError{Term: "tangential induction (σ·Ct = 0)"}
	case sin*cos == 0:
		return 0, 0, &DivisionByZeroError{Term: "tangential induction (sinφ·cosφ = 0)"}
	}

	denA := 4*sin*sin/(sigma*cn) + 1
	if denA == 0 {
		return 0, 0, &DivisionByZeroError{Term: "axial induction denominator"}
	}
	denAP := 4*sin*cos/(sigma*ct) - 1
	if denAP == 0 {
		return 0, 0, &DivisionByZeroError{Term: "tangential induction denominator"}
	}
	return 1 / denA, 1 / denAP, nil
}

// LocalLoads returns the relative velocity and the element forces per unit span.
func LocalLoads(rho, v0, omega, r, a, ap, chord, phi, cl, cd float64) Loads {
	vAxial := v0 * (1 - a)
	vTangential := omega * r * (1 + ap)
	vrel := math.Sqrt(vAxial*vAxial + vTangential*vTangential)

	q := 0.5 * rho * vrel * vrel * chord
	lift := q * cl
	drag := q * cd
	sin, cos := math.Sincos(phi)
	return Loads{
		Vrel: vrel,
		Lift: lift,
		Drag: drag,
		Pn:   lift*cos + drag*sin,
		Pt:   lift*sin - drag*cos,
	}
}

func (s *Solver) validate(v0, omega float64, st geometry.Station) error {
	if s.Table == nil {
		return fmt.Errorf("%w: no airfoil table", ErrInvalidInput)
	}
	if s.Blades < 1 {
		return fmt.Errorf("%w: blade count %d", ErrInvalidInput, s.Blades)
	}
	if !(s.AirDensity > 0) {
		return fmt.Errorf("%w: air density %.4g", ErrInvalidInput, s.AirDensity)
	}
	if !(v0 > 0) {
		return fmt.Errorf("%w: wind speed %.4g must be positive", ErrInvalidInput, v0)
	}
	if !(omega >= 0) {
		return fmt.Errorf("%w: angular speed %.4g must not be negative", ErrInvalidInput, omega)
	}
	if !(st.R > 0) || !(st.Chord > 0) {
		return fmt.Errorf("%w: station r=%.4g chord=%.4g", ErrInvalidInput, st.R, st.Chord)
	}
	return s.Options.Validate()
}

// Solve runs the relaxed fixed-point iteration for one station, starting from a = a' = 0.
// On convergence the final state adopts a_new, a'_new and φ, α, Cl, Cd, Cn, Ct and the loads
// are evaluated at that state. An axial induction of 1 or more is rejected with a
// DivisionByZeroError. Exceeding MaxIter returns a ConvergenceError; airfoil lookup failures
// are returned unchanged.
func (s *Solver) Solve(v0, omega float64, st geometry.Station) (*SegmentResult, error) {
	if err := s.validate(v0, omega, st); err != nil {
		return nil, err
	}

	opts := s.Options
	f := opts.Relaxation
	sigma := Solidity(s.Blades, st.Chord, st.R)

	var a, ap, deltaA, deltaAP float64
	for k := 1; k <= opts.MaxIter; k++ {
		phi, err := FlowAngle(v0, omega, st.R, a, ap)
		if err != nil {
			return nil, annotate(err, st.R, k)
		}
		alpha := AngleOfAttack(phi, st.Pitch, st.Twist)

		coefs, err := s.Table.Lookup(alpha*180/math.Pi, st.Thickness)
		if err != nil {
			return nil, err
		}

		cn, ct := ForceCoefficients(coefs.Cl, coefs.Cd, phi)
		aNew, apNew, err := InductionFactors(sigma, cn, ct, phi)
		if err != nil {
			return nil, annotate(err, st.R, k)
		}

		deltaA, deltaAP = math.Abs(a-aNew), math.Abs(ap-apNew)
		if deltaA < opts.Tolerance && deltaAP < opts.Tolerance {
			if aNew >= 1 {
				return nil, &DivisionByZeroError{Term: TermAxialInduction, R: st.R, Iteration: k}
			}
			res, err := s.converged(v0, omega, st, aNew, apNew)
			if err != nil {
				return nil, annotate(err, st.R, k)
			}
			res.Iterations = k
			return res, nil
		}

		a = (1-f)*a + f*aNew
		ap = (1-f)*ap + f*apNew
		if math.IsNaN(a) || math.IsNaN(ap) || math.IsInf(a, 0) || math.IsInf(ap, 0) {
			return nil, &DivisionByZeroError{Term: "induction update (non-finite)", R: st.R, Iteration: k}
		}
		if a >= 1 {
			return nil, &DivisionByZeroError{Term: TermAxialInduction, R: st.R, Iteration: k}
		}
	}

	return nil, &ConvergenceError{
		R:          st.R,
		Iterations: opts.MaxIter,
		DeltaA:     deltaA,
		DeltaAP:    deltaAP,
		Tolerance:  opts.Tolerance,
	}
}

// converged evaluates the flow state at the adopted induction factors
func (s *Solver) converged(v0, omega float64, st geometry.Station, a, ap float64) (*SegmentResult, error) {
	phi, err := FlowAngle(v0, omega, st.R, a, ap)
	if err != nil {
		return nil, err
	}
	alpha := AngleOfAttack(phi, st.Pitch, st.Twist)
	coefs, err := s.Table.Lookup(alpha*180/math.Pi, st.Thickness)
	if err != nil {
		return nil, err
	}
	cn, ct := ForceCoefficients(coefs.Cl, coefs.Cd, phi)

	return &SegmentResult{
		Station:       st,
		A:             a,
		AP:            ap,
		ANew:          a,
		APNew:         ap,
		FlowAngle:     phi,
		AngleOfAttack: alpha,
		Cl:            coefs.Cl,
		Cd:            coefs.Cd,
		Cn:            cn,
		Ct:            ct,
		Loads:         LocalLoads(s.AirDensity, v0, omega, st.R, a, ap, st.Chord, phi, coefs.Cl, coefs.Cd),
	}, nil
}

func annotate(err error, r float64, iteration int) error {
	if dz, ok := err.(*DivisionByZeroError); ok {
		dz.R = r
		dz.Iteration = iteration
	}
	return err
}
