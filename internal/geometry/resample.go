package geometry

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// Resample places n radii linearly spaced in [rFirst, rLast] and interpolates chords,
// pitch and (when given) thickness ratios piecewise-linearly against radii.
// Query radii outside the original range are rejected; nothing is extrapolated.
func Resample(radii, chords, pitch, thickness []float64, rFirst, rLast float64, n int) (*Blade, error) {
	if n < 1 {
		return nil, &ValidationError{fmt.Sprintf("number of sections must be at least 1, got %d", n)}
	}
	if len(radii) < 2 {
		return nil, &ValidationError{"resampling needs at least two stations"}
	}
	if rLast < rFirst {
		return nil, &ValidationError{fmt.Sprintf("last radius %.4g is before first radius %.4g", rLast, rFirst)}
	}

	newRadii := Linspace(rFirst, rLast, n)
	lo, hi := radii[0], radii[len(radii)-1]
	for _, r := range newRadii {
		if r < lo || r > hi {
			return nil, &ValidationError{fmt.Sprintf("radius %.4g outside blade definition [%.4g, %.4g]", r, lo, hi)}
		}
	}

	out := &Blade{Radii: newRadii}
	var err error
	if out.Chords, err = interpolateAt(radii, chords, newRadii, "chords"); err != nil {
		return nil, err
	}
	if out.Pitch, err = interpolateAt(radii, pitch, newRadii, "pitch"); err != nil {
		return nil, err
	}
	if thickness != nil {
		if out.Thickness, err = interpolateAt(radii, thickness, newRadii, "tc_ratios"); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Resample returns a copy of the blade resampled onto n stations spanning its
// first and outermost radius. Rotor radius and metadata are carried over.
func (b *Blade) Resample(n int) (*Blade, error) {
	first, last := b.Radii[0], b.Radii[len(b.Radii)-1]
	out, err := Resample(b.Radii, b.Chords, b.Pitch, b.Thickness, first, last, n)
	if err != nil {
		return nil, err
	}
	if b.Twist != nil {
		if out.Twist, err = interpolateAt(b.Radii, b.Twist, out.Radii, "twist"); err != nil {
			return nil, err
		}
	}
	out.Name = b.Name
	out.Radius = b.Radius
	out.TipSpeedRatio = b.TipSpeedRatio
	out.Sections = n
	return out, nil
}

// Linspace returns n evenly spaced values from first to last inclusive.
// The last element is exactly last.
func Linspace(first, last float64, n int) []float64 {
	if n == 1 {
		return []float64{first}
	}
	out := floats.Span(make([]float64, n), first, last)
	out[n-1] = last
	return out
}

func interpolateAt(xs, ys, at []float64, name string) ([]float64, error) {
	if len(ys) != len(xs) {
		return nil, &ValidationError{fmt.Sprintf("%s has %d values, expected %d", name, len(ys), len(xs))}
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("interpolating %s: %w", name, err)
	}
	out := make([]float64, len(at))
	for i, x := range at {
		out[i] = pl.Predict(x)
	}
	return out, nil
}
