package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexiusacademia/gobem/internal/airfoil"
	"github.com/alexiusacademia/gobem/internal/bem"
)

func TestOutcome(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, OutcomeConverged},
		{&bem.ConvergenceError{R: 1}, OutcomeNoConvergence},
		{fmt.Errorf("station 3: %w", &bem.DivisionByZeroError{}), OutcomeDivByZero},
		{&airfoil.OutOfRangeError{Dim: airfoil.DimThickness}, OutcomeOutOfRange},
		{errors.New("boom"), OutcomeOther},
	}
	for _, c := range cases {
		if got := Outcome(c.err); got != c.want {
			t.Errorf("Outcome(%v) = %q, expected %q", c.err, got, c.want)
		}
	}
}

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func TestCollectorCounts(t *testing.T) {
	c := New()
	c.ObserveSegment(&bem.SegmentResult{Iterations: 12}, nil)
	c.ObserveSegment(&bem.SegmentResult{Iterations: 20}, nil)
	c.ObserveSegment(nil, &bem.ConvergenceError{})
	c.ObservePerformance(&bem.Performance{
		TotalPower:    1500,
		Cp:            0.42,
		TipSpeedRatio: 7,
		Failures:      []bem.StationFailure{{Index: 2}},
	})

	body := scrape(t, c)
	for _, line := range []string{
		`gobem_station_solves_total{outcome="converged"} 2`,
		`gobem_station_solves_total{outcome="no_convergence"} 1`,
		`gobem_station_iterations_count 2`,
		`gobem_station_iterations_sum 32`,
		`gobem_rotor_power_watts 1500`,
		`gobem_rotor_power_coefficient 0.42`,
		`gobem_rotor_tip_speed_ratio 7`,
		`gobem_excluded_stations_total 1`,
		`gobem_operating_points_total 1`,
	} {
		if !strings.Contains(body, line+"\n") {
			t.Errorf("metrics do not contain %q", line)
		}
	}
}

func TestHandlerStartsEmpty(t *testing.T) {
	body := scrape(t, New())
	if !strings.Contains(body, "gobem_operating_points_total 0\n") {
		t.Errorf("fresh collector should expose zeroed counters, got:\n%s", body)
	}
}

func TestEveryMetricHasHelp(t *testing.T) {
	c := New()
	c.ObserveSegment(&bem.SegmentResult{Iterations: 3}, nil)
	c.ObservePerformance(&bem.Performance{})

	families, err := c.Registry().Gather()
	if err != nil {
		t.Fatal(err)
	}
	if len(families) != 9 {
		t.Errorf("gathered %d metric families, expected 9", len(families))
	}
	for _, mf := range families {
		if mf.GetHelp() == "" {
			t.Errorf("%s has no help text", mf.GetName())
		}
	}
}
