package bem

import (
	"context"
	"math"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/alexiusacademia/gobem/internal/geometry"
)

// OperatingPoint is one (wind speed, rotor speed) pair of a sweep
type OperatingPoint struct {
	WindSpeed float64 // m/s
	Omega     float64 // rad/s
}

// RPMToRadPerSec converts rotor speed from rpm to rad/s.
func RPMToRadPerSec(rpm float64) float64 {
	return 2 * math.Pi * rpm / 60
}

// RadPerSecToRPM converts rotor speed from rad/s to rpm.
func RadPerSecToRPM(omega float64) float64 {
	return omega * 60 / (2 * math.Pi)
}

// TipSpeedRatio returns λ = ω·R / v0.
func TipSpeedRatio(omega, radius, v0 float64) float64 {
	return omega * radius / v0
}

// TipSpeedRatioSweep returns n points at fixed wind speed with ω spaced evenly in [omegaMin, omegaMax].
func TipSpeedRatioSweep(v0, omegaMin, omegaMax float64, n int) []OperatingPoint {
	if n < 1 {
		return nil
	}
	omegas := geometry.Linspace(omegaMin, omegaMax, n)
	points := make([]OperatingPoint, n)
	for i, w := range omegas {
		points[i] = OperatingPoint{WindSpeed: v0, Omega: w}
	}
	return points
}

// PowerCurveSweep returns, for each wind speed, n points with rpm spaced evenly in [rpmMin, rpmMax].
// Points are grouped by wind speed in the order given.
func PowerCurveSweep(winds []float64, rpmMin, rpmMax float64, n int) []OperatingPoint {
	if n < 1 {
		return nil
	}
	rpms := geometry.Linspace(rpmMin, rpmMax, n)
	points := make([]OperatingPoint, 0, len(winds)*n)
	for _, v0 := range winds {
		for _, rpm := range rpms {
			points = append(points, OperatingPoint{WindSpeed: v0, Omega: RPMToRadPerSec(rpm)})
		}
	}
	return points
}

// PointResult is the outcome of one operating point of a stream
type PointResult struct {
	Index       int
	Performance *Performance
	Err         error
}

// Stream evaluates Performance at every point using a pool of workers and delivers results
// as they complete, in no particular order. Points share the read-only solver, table and
// stations, so no locking is needed. The channel is closed once all dispatched points are
// done; cancelling ctx stops dispatching and drops undelivered results.
func (r *Rotor) Stream(ctx context.Context, points []OperatingPoint, workers int) <-chan PointResult {
	if workers < 1 {
		workers = 1
	}
	if workers > len(points) {
		workers = len(points)
	}

	out := make(chan PointResult)
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				pt := points[i]
				p, err := r.Performance(pt.WindSpeed, pt.Omega)
				if err == nil {
					r.logger().WithFields(log.Fields{
						"wind_speed": pt.WindSpeed,
						"omega":      pt.Omega,
						"power":      p.TotalPower,
						"failed":     len(p.Failures),
					}).Debug("operating point evaluated")
				}
				select {
				case out <- PointResult{Index: i, Performance: p, Err: err}:
				case <-ctx.Done():
				}
			}
		}()
	}

	go func() {
	dispatch:
		for i := range points {
			select {
			case <-ctx.Done():
				break dispatch
			case jobs <- i:
			}
		}
		close(jobs)
		wg.Wait()
		close(out)
	}()
	return out
}

// Sweep evaluates every point with Stream and returns the results in the order of points.
// A cancelled ctx returns ctx.Err(); otherwise the first per-point error (by index) is returned.
func (r *Rotor) Sweep(ctx context.Context, points []OperatingPoint, workers int) ([]*Performance, error) {
	results := make([]*Performance, len(points))
	errs := make([]error, len(points))
	for res := range r.Stream(ctx, points, workers) {
		results[res.Index], errs[res.Index] = res.Performance, res.Err
	}

	if err := ctx.Err(); err != nil {
		return results, err
	}
	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
