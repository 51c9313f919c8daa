package bem

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/alexiusacademia/gobem/internal/airfoil"
	"github.com/alexiusacademia/gobem/internal/geometry"
)

func testBlade() *geometry.Blade {
	return &geometry.Blade{
		Radius:    10,
		Radii:     []float64{2.8, 5, 7.5},
		Chords:    []float64{5.38, 3, 2},
		Pitch:     []float64{14.5, 8, 3},
		Thickness: []float64{100, 100, 100},
	}
}

func testRotor(t *testing.T, rho float64) (*Rotor, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	r := NewRotor(NewSolver(cylinderTable(t), 3, rho), testBlade())
	r.Log = logger
	return r, hook
}

func TestRotorPerformance(t *testing.T) {
	r, hook := testRotor(t, 1.225)

	p, err := r.Performance(10, 0.5)
	if err != nil {
		t.Fatalf("Performance: %v", err)
	}
	if len(p.Sections) != 3 || len(p.Failures) != 0 {
		t.Fatalf("got %d sections and %d failures, expected 3 and 0", len(p.Sections), len(p.Failures))
	}
	if len(hook.Entries) != 0 {
		t.Errorf("unexpected log entries: %d", len(hook.Entries))
	}

	wantDr := []float64{2.2, 2.5, 2.5}
	for i, s := range p.Sections {
		if s.Index != i {
			t.Errorf("section %d has index %d", i, s.Index)
		}
		approx(t, "dr", s.Dr, wantDr[i], 1e-12)
	}

	approx(t, "tip speed ratio", p.TipSpeedRatio, 0.5, 1e-12)
	approx(t, "Cp", p.Cp, r.CoefficientOfPower(p.TotalPower, 10), 1e-12)
	approx(t, "CT", p.CT, r.CoefficientOfThrust(p.TotalThrust, 10), 1e-12)
}

func TestRotorTotalsAreBladeMultiples(t *testing.T) {
	r, _ := testRotor(t, 1.225)
	p, err := r.Performance(10, 0.5)
	if err != nil {
		t.Fatal(err)
	}

	var power, torque, thrust float64
	for _, s := range p.Sections {
		power += s.Power
		torque += s.Torque
		thrust += s.Thrust
	}
	b := float64(r.Solver.Blades)
	approx(t, "total power", p.TotalPower, b*power, 1e-12)
	approx(t, "total torque", p.TotalTorque, b*torque, 1e-12)
	approx(t, "total thrust", p.TotalThrust, b*thrust, 1e-12)
	approx(t, "power = ω·torque", p.TotalPower, 0.5*p.TotalTorque, 1e-12)
}

func TestRotorIsolatesFailingStation(t *testing.T) {
	r, hook := testRotor(t, 1.225)
	r.Stations[1].Thickness = 10 // below the tabulated t/c range

	p, err := r.Performance(10, 0.5)
	if err != nil {
		t.Fatalf("Performance should not fail on a single station: %v", err)
	}
	if len(p.Sections) != 2 || p.Sections[0].Index != 0 || p.Sections[1].Index != 2 {
		t.Fatalf("unexpected sections: %+v", p.Sections)
	}
	if len(p.Failures) != 1 || p.Failures[0].Index != 1 || p.Failures[0].R != 5 {
		t.Fatalf("unexpected failures: %+v", p.Failures)
	}
	var oor *airfoil.OutOfRangeError
	if !errors.As(p.Failures[0].Err, &oor) {
		t.Errorf("failure should carry OutOfRangeError, got %v", p.Failures[0].Err)
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel {
		t.Fatalf("expected a warning log entry, got %+v", entry)
	}
	if entry.Data["station"] != 1 || entry.Data["radius"] != 5.0 {
		t.Errorf("log fields = %v", entry.Data)
	}

	var power float64
	for _, s := range p.Sections {
		power += s.Power
	}
	approx(t, "total power", p.TotalPower, 3*power, 1e-12)
	// dr of the station before the gap still spans to the failed station
	approx(t, "dr", p.Sections[0].Dr, 2.2, 1e-12)
}

func TestPowerCoefficientIndependentOfDensity(t *testing.T) {
	r1, _ := testRotor(t, 1.225)
	r2, _ := testRotor(t, 2.45)

	p1, err := r1.Performance(10, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := r2.Performance(10, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	approx(t, "power ratio", p2.TotalPower, 2*p1.TotalPower, 1e-12)
	approx(t, "Cp", p2.Cp, p1.Cp, 1e-12)
	approx(t, "CT", p2.CT, p1.CT, 1e-12)
}

func TestCoefficientFormulas(t *testing.T) {
	r, _ := testRotor(t, 1.225)
	windPower := 0.5 * 1.225 * math.Pi * 100 * 1000
	approx(t, "Cp", r.CoefficientOfPower(windPower, 10), 1, 1e-12)
	windForce := 0.5 * 1.225 * math.Pi * 100 * 100
	approx(t, "CT", r.CoefficientOfThrust(windForce/2, 10), 0.5, 1e-12)
}

func TestRotorRejectsInvalidInput(t *testing.T) {
	r, _ := testRotor(t, 1.225)
	if _, err := r.Performance(0, 0.5); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero wind: expected ErrInvalidInput, got %v", err)
	}
	r.Stations = nil
	if _, err := r.Performance(10, 0.5); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("no stations: expected ErrInvalidInput, got %v", err)
	}
}

type countingObserver struct {
	mu           sync.Mutex
	solved       int
	failed       int
	performances int
}

func (o *countingObserver) ObserveSegment(_ *SegmentResult, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.failed++
		return
	}
	o.solved++
}

func (o *countingObserver) ObservePerformance(*Performance) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.performances++
}

func TestSweepMatchesSequential(t *testing.T) {
	r, _ := testRotor(t, 1.225)
	obs := &countingObserver{}
	r.Observer = obs

	points := TipSpeedRatioSweep(10, 0.2, 1.3, 8)
	got, err := r.Sweep(context.Background(), points, 3)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(got) != len(points) {
		t.Fatalf("got %d results, expected %d", len(got), len(points))
	}

	r.Observer = nil
	for i, pt := range points {
		want, err := r.Performance(pt.WindSpeed, pt.Omega)
		if err != nil {
			t.Fatal(err)
		}
		if got[i].Omega != pt.Omega || got[i].TotalPower != want.TotalPower {
			t.Errorf("point %d: power %v, expected %v", i, got[i].TotalPower, want.TotalPower)
		}
	}
	if obs.performances != len(points) || obs.solved+obs.failed != 3*len(points) {
		t.Errorf("observer saw %d performances, %d solved, %d failed", obs.performances, obs.solved, obs.failed)
	}
}

func TestSweepReportsInvalidPoint(t *testing.T) {
	r, _ := testRotor(t, 1.225)
	points := []OperatingPoint{{WindSpeed: 10, Omega: 0.5}, {WindSpeed: 0, Omega: 0.5}}
	res, err := r.Sweep(context.Background(), points, 2)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if res[0] == nil {
		t.Error("valid point should still be evaluated")
	}
}

func TestSweepCancelled(t *testing.T) {
	r, _ := testRotor(t, 1.225)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Sweep(ctx, TipSpeedRatioSweep(10, 0.2, 1.3, 20), 2); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSweepGrids(t *testing.T) {
	tsr := TipSpeedRatioSweep(10, 0, 1.3, 50)
	if len(tsr) != 50 || tsr[0].Omega != 0 || tsr[49].Omega != 1.3 || tsr[10].WindSpeed != 10 {
		t.Errorf("unexpected tip speed ratio grid: first=%+v last=%+v", tsr[0], tsr[49])
	}

	pc := PowerCurveSweep([]float64{6, 7}, 0, 30, 4)
	if len(pc) != 8 {
		t.Fatalf("got %d points, expected 8", len(pc))
	}
	if pc[4].WindSpeed != 7 || pc[4].Omega != 0 {
		t.Errorf("point 4 = %+v", pc[4])
	}
	approx(t, "omega at 30 rpm", pc[3].Omega, math.Pi, 1e-12)
	approx(t, "rpm round trip", RadPerSecToRPM(RPMToRadPerSec(12.1)), 12.1, 1e-12)
}

func TestStreamDeliversEveryPoint(t *testing.T) {
	r, _ := testRotor(t, 1.225)
	points := TipSpeedRatioSweep(10, 0.2, 1.3, 6)

	seen := make(map[int]bool)
	for res := range r.Stream(context.Background(), points, 4) {
		if res.Err != nil {
			t.Fatalf("point %d: %v", res.Index, res.Err)
		}
		if res.Performance.Omega != points[res.Index].Omega {
			t.Errorf("point %d carries omega %v", res.Index, res.Performance.Omega)
		}
		seen[res.Index] = true
	}
	if len(seen) != len(points) {
		t.Errorf("received %d of %d points", len(seen), len(points))
	}
}

func TestRotorExcludesStationWithAxialInductionAboveOne(t *testing.T) {
	blade := &geometry.Blade{
		Radius: 2,
		Radii:  []float64{1},
		Chords: []float64{5},
		Pitch:  []float64{0},
	}
	r := NewRotor(reversedLiftSolver(t), blade)
	logger, hook := test.NewNullLogger()
	r.Log = logger

	p, err := r.Performance(10, 10)
	if err != nil {
		t.Fatalf("Performance: %v", err)
	}
	if len(p.Sections) != 0 || len(p.Failures) != 1 {
		t.Fatalf("got %d sections and %d failures, expected 0 and 1", len(p.Sections), len(p.Failures))
	}
	var dz *DivisionByZeroError
	if !errors.As(p.Failures[0].Err, &dz) || dz.Term != TermAxialInduction {
		t.Errorf("failure should carry the axial induction error, got %v", p.Failures[0].Err)
	}
	if p.TotalPower != 0 || p.TotalThrust != 0 {
		t.Errorf("excluded station leaked into totals: power=%v thrust=%v", p.TotalPower, p.TotalThrust)
	}
	if entry := hook.LastEntry(); entry == nil || entry.Level != logrus.WarnLevel {
		t.Errorf("expected a warning log entry, got %+v", entry)
	}
}
