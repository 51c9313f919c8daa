package bem

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/alexiusacademia/gobem/internal/geometry"
)

// Observer receives solver outcomes, e.g. for metrics. Implementations must be safe
// for concurrent use when the rotor is swept in parallel.
type Observer interface {
	ObserveSegment(res *SegmentResult, err error)
	ObservePerformance(p *Performance)
}

// Rotor aggregates station solutions into rotor torque, thrust and power.
type Rotor struct {
	Solver   *Solver
	Stations []geometry.Station
	Radius   float64 // tip radius R (m)

	Log      log.FieldLogger
	Observer Observer
}

// NewRotor creates a rotor over the stations of blade, using the blade's tip radius
func NewRotor(solver *Solver, blade *geometry.Blade) *Rotor {
	return &Rotor{
		Solver:   solver,
		Stations: blade.Stations(),
		Radius:   blade.TipRadius(),
		Log:      log.StandardLogger(),
	}
}

// SectionResult is a station solution plus its contribution to the rotor.
// Thrust, Torque and Power are single-blade values.
type SectionResult struct {
	Index int
	SegmentResult

	Dr     float64 // radial integration width (m)
	Thrust float64 // dT per blade (N)
	Torque float64 // dM per blade (N·m)
	Power  float64 // ω·dM per blade (W)
}

// StationFailure records a station excluded from the totals
type StationFailure struct {
	Index int
	R     float64
	Err   error
}

// Performance holds the rotor state at one operating point.
// Totals are for the full B-bladed rotor.
type Performance struct {
	WindSpeed float64 // v0 (m/s)
	Omega     float64 // ω (rad/s)

	Sections []SectionResult
	Failures []StationFailure

	TotalPower  float64 // W
	TotalTorque float64 // N·m
	TotalThrust float64 // N

	TipSpeedRatio float64 // λ
	Cp            float64 // power coefficient
	CT            float64 // thrust coefficient
}

func (r *Rotor) logger() log.FieldLogger {
	if r.Log == nil {
		return log.StandardLogger()
	}
	return r.Log
}

// Performance solves every station at (v0, ω) and integrates the loads.
// A station that fails to solve is logged and excluded from both the section list and
// the totals; only invalid rotor inputs make the call itself fail.
func (r *Rotor) Performance(v0, omega float64) (*Performance, error) {
	if r.Solver == nil {
		return nil, fmt.Errorf("%w: rotor has no solver", ErrInvalidInput)
	}
	if len(r.Stations) == 0 {
		return nil, fmt.Errorf("%w: rotor has no stations", ErrInvalidInput)
	}
	if !(r.Radius > 0) {
		return nil, fmt.Errorf("%w: rotor radius %.4g", ErrInvalidInput, r.Radius)
	}
	if !(v0 > 0) {
		return nil, fmt.Errorf("%w: wind speed %.4g must be positive", ErrInvalidInput, v0)
	}
	if !(omega >= 0) {
		return nil, fmt.Errorf("%w: angular speed %.4g must not be negative", ErrInvalidInput, omega)
	}

	rho := r.Solver.AirDensity
	blades := float64(r.Solver.Blades)
	n := len(r.Stations)

	p := &Performance{
		WindSpeed:     v0,
		Omega:         omega,
		Sections:      make([]SectionResult, 0, n),
		TipSpeedRatio: TipSpeedRatio(omega, r.Radius, v0),
	}

	for i, st := range r.Stations {
		res, err := r.Solver.Solve(v0, omega, st)
		if r.Observer != nil {
			r.Observer.ObserveSegment(res, err)
		}
		if err != nil {
			r.logger().WithFields(log.Fields{
				"station": i,
				"radius":  st.R,
			}).WithError(err).Warn("station solve failed, excluded from totals")
			p.Failures = append(p.Failures, StationFailure{Index: i, R: st.R, Err: err})
			continue
		}

		var dr float64
		if i < n-1 {
			dr = r.Stations[i+1].R - st.R
		} else {
			dr = r.Radius - st.R
		}

		sin, cos := math.Sincos(res.FlowAngle)
		a, ap := res.A, res.AP

		dM := 0.5 * rho * blades *
			((v0 * (1 - a) * omega * st.R * (1 + ap)) / (sin * cos)) *
			st.Chord * res.Ct * st.R * dr
		dT := 0.5 * rho * blades *
			((v0 * v0 * (1 - a) * (1 - a)) / (sin * sin)) *
			st.Chord * res.Cn * dr
		power := omega * dM

		p.TotalPower += power
		p.TotalTorque += dM
		p.TotalThrust += dT

		p.Sections = append(p.Sections, SectionResult{
			Index:         i,
			SegmentResult: *res,
			Dr:            dr,
			Thrust:        dT / blades,
			Torque:        dM / blades,
			Power:         power / blades,
		})
	}

	p.Cp = r.CoefficientOfPower(p.TotalPower, v0)
	p.CT = r.CoefficientOfThrust(p.TotalThrust, v0)

	if r.Observer != nil {
		r.Observer.ObservePerformance(p)
	}
	return p, nil
}

// SweptArea returns πR².
func (r *Rotor) SweptArea() float64 {
	return math.Pi * r.Radius * r.Radius
}

// CoefficientOfPower returns Cp = P / (½ρ·πR²·v0³).
func (r *Rotor) CoefficientOfPower(totalPower, v0 float64) float64 {
	windPower := 0.5 * r.Solver.AirDensity * r.SweptArea() * v0 * v0 * v0
	return totalPower / windPower
}

// CoefficientOfThrust returns CT = T / (½ρ·πR²·v0²).
func (r *Rotor) CoefficientOfThrust(totalThrust, v0 float64) float64 {
	windForce := 0.5 * r.Solver.AirDensity * r.SweptArea() * v0 * v0
	return totalThrust / windForce
}
