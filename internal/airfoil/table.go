package airfoil

import (
	"fmt"
	"math"
	"sort"
)

// DefaultPrecision is the number of decimal digits table keys are rounded to.
const DefaultPrecision = 3

// MaxPrecision is the largest key precision; float64 carries about 15 significant digits.
const MaxPrecision = 15

// CheckPrecision rejects key precisions outside [0, MaxPrecision].
func CheckPrecision(precision int) error {
	if precision < 0 || precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d, got %d", MaxPrecision, precision)
	}
	return nil
}

// Coefficients holds the aerodynamic section coefficients at one operating point
type Coefficients struct {
	Cl float64 // lift coefficient
	Cd float64 // drag coefficient
	Cm float64 // pitching moment coefficient (zero when the table has no moment data)
}

// Table answers coefficient queries for an angle of attack in degrees.
// Single-key tables ignore the thickness argument; two-key tables require it (percent t/c).
// Implementations are read-only after construction and safe for concurrent use.
type Table interface {
	Lookup(alpha, thickness float64) (Coefficients, error)
	Cl(alpha, thickness float64) (float64, error)
	Cd(alpha, thickness float64) (float64, error)
	Cm(alpha, thickness float64) (float64, error)
}

// Sample is one row of an airfoil dataset. Angle is in degrees.
type Sample struct {
	Angle     float64
	Thickness float64
	Coefficients

	Line int // source line, used in error messages
}

func roundTo(v float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	return math.Round(v*p) / p
}

func interpolate(x, x1, x2, y1, y2 float64) float64 {
	return y1 + (y2-y1)*((x-x1)/(x2-x1))
}

func interpolateCoefficients(x, x1, x2 float64, c1, c2 Coefficients) Coefficients {
	return Coefficients{
		Cl: interpolate(x, x1, x2, c1.Cl, c2.Cl),
		Cd: interpolate(x, x1, x2, c1.Cd, c2.Cd),
		Cm: interpolate(x, x1, x2, c1.Cm, c2.Cm),
	}
}

// bracket finds lo, hi with keys[lo] <= v <= keys[hi]. lo == hi on an exact hit.
func bracket(keys []float64, v float64, dim Dimension) (int, int, error) {
	n := len(keys)
	if n == 0 {
		return 0, 0, &OutOfRangeError{Dim: dim, Value: v, Min: math.NaN(), Max: math.NaN()}
	}
	i := sort.SearchFloat64s(keys, v)
	if i < n && keys[i] == v {
		return i, i, nil
	}
	if i == 0 || i == n {
		return 0, 0, &OutOfRangeError{Dim: dim, Value: v, Min: keys[0], Max: keys[n-1]}
	}
	return i - 1, i, nil
}

// curve is the sorted angle → coefficients mapping of one thickness bucket.
type curve struct {
	angles []float64
	coefs  []Coefficients
}

func (c *curve) lookup(alpha float64) (Coefficients, error) {
	lo, hi, err := bracket(c.angles, alpha, DimAngle)
	if err != nil {
		return Coefficients{}, err
	}
	if lo == hi {
		return c.coefs[lo], nil
	}
	return interpolateCoefficients(alpha, c.angles[lo], c.angles[hi], c.coefs[lo], c.coefs[hi]), nil
}

func newCurve(samples []Sample, precision int) (curve, error) {
	sorted := make([]Sample, len(samples))
	copy(sorted, samples)
	for i := range sorted {
		sorted[i].Angle = roundTo(sorted[i].Angle, precision)
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Angle < sorted[j].Angle })

	c := curve{
		angles: make([]float64, 0, len(sorted)),
		coefs:  make([]Coefficients, 0, len(sorted)),
	}
	for i, s := range sorted {
		if i > 0 && s.Angle == sorted[i-1].Angle {
			return curve{}, &DataFormatError{
				Line: s.Line,
				Msg:  fmt.Sprintf("duplicate angle of attack %.*f", precision, s.Angle),
			}
		}
		c.angles = append(c.angles, s.Angle)
		c.coefs = append(c.coefs, s.Coefficients)
	}
	return c, nil
}

// AngleTable is a single-key table: coefficients tabulated against angle of attack only.
type AngleTable struct {
	curve
	precision int
	hasMoment bool
}

// NewAngleTable builds a single-key table from samples. Sample thickness is ignored.
func NewAngleTable(samples []Sample, precision int, hasMoment bool) (*AngleTable, error) {
	if err := CheckPrecision(precision); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, &DataFormatError{Msg: "no samples"}
	}
	c, err := newCurve(samples, precision)
	if err != nil {
		return nil, err
	}
	return &AngleTable{curve: c, precision: precision, hasMoment: hasMoment}, nil
}

// Lookup returns the coefficients at alpha (degrees), rounded to the table precision.
func (t *AngleTable) Lookup(alpha, _ float64) (Coefficients, error) {
	return t.lookup(roundTo(alpha, t.precision))
}

func (t *AngleTable) Cl(alpha, thickness float64) (float64, error) {
	c, err := t.Lookup(alpha, thickness)
	return c.Cl, err
}

func (t *AngleTable) Cd(alpha, thickness float64) (float64, error) {
	c, err := t.Lookup(alpha, thickness)
	return c.Cd, err
}

func (t *AngleTable) Cm(alpha, thickness float64) (float64, error) {
	if !t.hasMoment {
		return 0, ErrNoMoment
	}
	c, err := t.Lookup(alpha, thickness)
	return c.Cm, err
}

// Range returns the tabulated angle bounds in degrees.
func (t *AngleTable) Range() (float64, float64) {
	return t.angles[0], t.angles[len(t.angles)-1]
}

// Len returns the number of samples.
func (t *AngleTable) Len() int {
	return len(t.angles)
}

// ThicknessTable is a two-key table: one angle curve per thickness ratio, queried by
// interpolating along angle inside the two bracketing thickness buckets and then across thickness.
type ThicknessTable struct {
	thicknesses []float64
	curves      []curve
	precision   int
	hasMoment   bool
}

// NewThicknessTable builds a two-key table, grouping samples by rounded thickness ratio.
func NewThicknessTable(samples []Sample, precision int, hasMoment bool) (*ThicknessTable, error) {
	if err := CheckPrecision(precision); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, &DataFormatError{Msg: "no samples"}
	}

	buckets := make(map[float64][]Sample)
	for _, s := range samples {
		tc := roundTo(s.Thickness, precision)
		buckets[tc] = append(buckets[tc], s)
	}

	t := &ThicknessTable{precision: precision, hasMoment: hasMoment}
	for tc := range buckets {
		t.thicknesses = append(t.thicknesses, tc)
	}
	sort.Float64s(t.thicknesses)

	t.curves = make([]curve, len(t.thicknesses))
	for i, tc := range t.thicknesses {
		c, err := newCurve(buckets[tc], precision)
		if err != nil {
			return nil, err
		}
		t.curves[i] = c
	}
	return t, nil
}

// Lookup returns the coefficients at alpha (degrees) and thickness ratio (percent).
func (t *ThicknessTable) Lookup(alpha, thickness float64) (Coefficients, error) {
	alpha = roundTo(alpha, t.precision)
	thickness = roundTo(thickness, t.precision)

	lo, hi, err := bracket(t.thicknesses, thickness, DimThickness)
	if err != nil {
		return Coefficients{}, err
	}
	c1, err := t.curves[lo].lookup(alpha)
	if err != nil {
		return Coefficients{}, err
	}
	if lo == hi {
		return c1, nil
	}
	c2, err := t.curves[hi].lookup(alpha)
	if err != nil {
		return Coefficients{}, err
	}
	return interpolateCoefficients(thickness, t.thicknesses[lo], t.thicknesses[hi], c1, c2), nil
}

func (t *ThicknessTable) Cl(alpha, thickness float64) (float64, error) {
	c, err := t.Lookup(alpha, thickness)
	return c.Cl, err
}

func (t *ThicknessTable) Cd(alpha, thickness float64) (float64, error) {
	c, err := t.Lookup(alpha, thickness)
	return c.Cd, err
}

func (t *ThicknessTable) Cm(alpha, thickness float64) (float64, error) {
	if !t.hasMoment {
		return 0, ErrNoMoment
	}
	c, err := t.Lookup(alpha, thickness)
	return c.Cm, err
}

// Thicknesses returns the tabulated thickness ratios in ascending order.
func (t *ThicknessTable) Thicknesses() []float64 {
	out := make([]float64, len(t.thicknesses))
	copy(out, t.thicknesses)
	return out
}

// AngleRange returns the angle bounds tabulated for the given thickness bucket index.
func (t *ThicknessTable) AngleRange(bucket int) (float64, float64) {
	a := t.curves[bucket].angles
	return a[0], a[len(a)-1]
}
