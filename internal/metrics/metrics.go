package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alexiusacademia/gobem/internal/airfoil"
	"github.com/alexiusacademia/gobem/internal/bem"
)

// Outcome labels of gobem_station_solves_total
const (
	OutcomeConverged     = "converged"
	OutcomeNoConvergence = "no_convergence"
	OutcomeDivByZero     = "division_by_zero"
	OutcomeOutOfRange    = "out_of_range"
	OutcomeOther         = "error"
)

// Collector records solver activity. It implements bem.Observer and is safe for concurrent use.
type Collector struct {
	registry *prometheus.Registry

	stationSolves *prometheus.CounterVec
	iterations    prometheus.Histogram
	points        prometheus.Counter
	failedStation prometheus.Counter

	power     prometheus.Gauge
	torque    prometheus.Gauge
	thrust    prometheus.Gauge
	powerCoef prometheus.Gauge
	tsr       prometheus.Gauge
}

// New creates a collector registered on its own registry
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		stationSolves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobem_station_solves_total",
				Help: "Blade station solves by outcome",
			},
			[]string{"outcome"},
		),
		iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gobem_station_iterations",
			Help:    "Fixed-point iterations needed by converged stations",
			Buckets: prometheus.ExponentialBuckets(1, 2, 11),
		}),
		points:        prometheus.NewCounter(prometheus.CounterOpts{Name: "gobem_operating_points_total", Help: "Evaluated operating points"}),
		failedStation: prometheus.NewCounter(prometheus.CounterOpts{Name: "gobem_excluded_stations_total", Help: "Stations excluded from rotor totals"}),
		power:         prometheus.NewGauge(prometheus.GaugeOpts{Name: "gobem_rotor_power_watts", Help: "Rotor power of the last evaluated point"}),
		torque:        prometheus.NewGauge(prometheus.GaugeOpts{Name: "gobem_rotor_torque_newton_meters", Help: "Rotor torque of the last evaluated point"}),
		thrust:        prometheus.NewGauge(prometheus.GaugeOpts{Name: "gobem_rotor_thrust_newtons", Help: "Rotor thrust of the last evaluated point"}),
		powerCoef:     prometheus.NewGauge(prometheus.GaugeOpts{Name: "gobem_rotor_power_coefficient", Help: "Power coefficient Cp of the last evaluated point"}),
		tsr:           prometheus.NewGauge(prometheus.GaugeOpts{Name: "gobem_rotor_tip_speed_ratio", Help: "Tip speed ratio of the last evaluated point"}),
	}

	c.registry.MustRegister(
		c.stationSolves,
		c.iterations,
		c.points,
		c.failedStation,
		c.power,
		c.torque,
		c.thrust,
		c.powerCoef,
		c.tsr,
	)
	return c
}

// Registry exposes the underlying registry, e.g. to add process collectors.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveSegment counts a station solve.
func (c *Collector) ObserveSegment(res *bem.SegmentResult, err error) {
	c.stationSolves.WithLabelValues(Outcome(err)).Inc()
	if err == nil && res != nil {
		c.iterations.Observe(float64(res.Iterations))
	}
}

// ObservePerformance records the latest rotor totals.
func (c *Collector) ObservePerformance(p *bem.Performance) {
	c.points.Inc()
	c.failedStation.Add(float64(len(p.Failures)))
	c.power.Set(p.TotalPower)
	c.torque.Set(p.TotalTorque)
	c.thrust.Set(p.TotalThrust)
	c.powerCoef.Set(p.Cp)
	c.tsr.Set(p.TipSpeedRatio)
}

// Outcome maps a solve error to its label value
func Outcome(err error) string {
	var (
		ce  *bem.ConvergenceError
		dz  *bem.DivisionByZeroError
		oor *airfoil.OutOfRangeError
	)
	switch {
	case err == nil:
		return OutcomeConverged
	case errors.As(err, &ce):
		return OutcomeNoConvergence
	case errors.As(err, &dz):
		return OutcomeDivByZero
	case errors.As(err, &oor):
		return OutcomeOutOfRange
	}
	return OutcomeOther
}
