package geometry

import (
	"encoding/json"
	"fmt"
	"os"
)

// Blade represents a blade geometry definition as stored in JSON.
// Radii are measured from the rotor axis and must be strictly increasing.
type Blade struct {
	Name string `json:"name,omitempty"`

	// Rotor tip radius R (m). Zero means "use the outermost station".
	Radius float64 `json:"R"`

	// Per-station definition
	Radii     []float64 `json:"r_is"`                // m
	Chords    []float64 `json:"chords"`              // m
	Pitch     []float64 `json:"pitch"`               // deg
	Twist     []float64 `json:"twist,omitempty"`     // deg, zero when omitted
	Thickness []float64 `json:"tc_ratios,omitempty"` // t/c in percent, optional

	// Number of analysis stations to resample onto (0 keeps the definition as is)
	Sections int `json:"no_sections,omitempty"`

	// Design tip speed ratio, informational
	TipSpeedRatio float64 `json:"lambda0,omitempty"`
}

// Station is one radial blade element fed to the segment solver.
type Station struct {
	R         float64 // radial position (m)
	Chord     float64 // chord length (m)
	Pitch     float64 // pitch angle (deg)
	Twist     float64 // twist (deg)
	Thickness float64 // thickness ratio (percent), ignored by single-key airfoil tables
}

// LoadFromFile loads a blade definition from a JSON file
func LoadFromFile(path string) (*Blade, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var blade Blade
	if err := json.Unmarshal(data, &blade); err != nil {
		return nil, fmt.Errorf("invalid blade definition %s: %w", path, err)
	}

	if err := blade.Validate(); err != nil {
		return nil, err
	}

	return &blade, nil
}

// Validate checks if the blade definition is valid
func (b *Blade) Validate() error {
	n := len(b.Radii)
	if n == 0 {
		return &ValidationError{"blade must have at least one station"}
	}
	if len(b.Chords) != n {
		return &ValidationError{fmt.Sprintf("chords has %d values, expected %d", len(b.Chords), n)}
	}
	if len(b.Pitch) != n {
		return &ValidationError{fmt.Sprintf("pitch has %d values, expected %d", len(b.Pitch), n)}
	}
	if b.Twist != nil && len(b.Twist) != n {
		return &ValidationError{fmt.Sprintf("twist has %d values, expected %d", len(b.Twist), n)}
	}
	if b.Thickness != nil && len(b.Thickness) != n {
		return &ValidationError{fmt.Sprintf("tc_ratios has %d values, expected %d", len(b.Thickness), n)}
	}
	for i, r := range b.Radii {
		if r <= 0 {
			return &ValidationError{fmt.Sprintf("station %d radius must be positive", i+1)}
		}
		if i > 0 && r <= b.Radii[i-1] {
			return &ValidationError{fmt.Sprintf("station %d radius %.4g is not greater than the previous station", i+1, r)}
		}
		if b.Chords[i] <= 0 {
			return &ValidationError{fmt.Sprintf("station %d chord must be positive", i+1)}
		}
	}
	if b.Radius != 0 && b.Radius < b.Radii[n-1] {
		return &ValidationError{fmt.Sprintf("rotor radius %.4g is smaller than the outermost station %.4g", b.Radius, b.Radii[n-1])}
	}
	if b.Sections < 0 {
		return &ValidationError{"no_sections must not be negative"}
	}
	return nil
}

// TipRadius returns the rotor radius, falling back to the outermost station.
func (b *Blade) TipRadius() float64 {
	if b.Radius > 0 {
		return b.Radius
	}
	return b.Radii[len(b.Radii)-1]
}

// Stations expands the definition into solver stations.
func (b *Blade) Stations() []Station {
	stations := make([]Station, len(b.Radii))
	for i, r := range b.Radii {
		st := Station{R: r, Chord: b.Chords[i], Pitch: b.Pitch[i]}
		if b.Twist != nil {
			st.Twist = b.Twist[i]
		}
		if b.Thickness != nil {
			st.Thickness = b.Thickness[i]
		}
		stations[i] = st
	}
	return stations
}

// ValidationError represents a blade validation error
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}
