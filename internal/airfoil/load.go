package airfoil

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Layout selects the column layout of an airfoil dataset.
type Layout int

const (
	// LayoutAngle: angle, Cl, Cd[, Cm]
	LayoutAngle Layout = iota
	// LayoutThickness: angle, Cl, Cd, Cm, t/c
	LayoutThickness
)

func (l Layout) String() string {
	if l == LayoutThickness {
		return "thickness"
	}
	return "angle"
}

// ParseLayout parses "angle" or "thickness".
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "angle", "single", "naca":
		return LayoutAngle, nil
	case "thickness", "tc", "dtu":
		return LayoutThickness, nil
	}
	return 0, fmt.Errorf("unknown airfoil layout %q (want angle or thickness)", s)
}

// AngleUnit is the unit of the angle column in a dataset.
type AngleUnit int

const (
	Degrees AngleUnit = iota
	Radians
)

func (u AngleUnit) String() string {
	if u == Radians {
		return "rad"
	}
	return "deg"
}

// ParseAngleUnit parses "deg"/"degrees" or "rad"/"radians".
func ParseAngleUnit(s string) (AngleUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deg", "degree", "degrees":
		return Degrees, nil
	case "rad", "radian", "radians":
		return Radians, nil
	}
	return 0, fmt.Errorf("unknown angle unit %q (want deg or rad)", s)
}

// Options declares how a dataset is laid out. The caller must know the delimiter
// and the angle unit of its file; neither is sniffed.
type Options struct {
	Delimiter rune
	Unit      AngleUnit
	Layout    Layout
	Precision int
}

// DefaultOptions returns the conventional options for a layout: comma-separated
// single-key files and semicolon-separated thickness files, both in degrees.
func DefaultOptions(layout Layout) Options {
	opts := Options{Delimiter: ',', Unit: Degrees, Layout: layout, Precision: DefaultPrecision}
	if layout == LayoutThickness {
		opts.Delimiter = ';'
	}
	return opts
}

// LoadFile opens path and loads it with Load.
func LoadFile(path string, opts Options) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open airfoil data: %w", err)
	}
	defer f.Close()

	t, err := Load(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Load reads a delimited dataset with a header row and builds the table for opts.Layout.
// Angles are converted to degrees when opts.Unit is Radians.
func Load(r io.Reader, opts Options) (Table, error) {
	samples, hasMoment, err := readSamples(r, opts)
	if err != nil {
		return nil, err
	}
	if opts.Layout == LayoutThickness {
		return NewThicknessTable(samples, opts.Precision, hasMoment)
	}
	return NewAngleTable(samples, opts.Precision, hasMoment)
}

func readSamples(r io.Reader, opts Options) ([]Sample, bool, error) {
	cr := csv.NewReader(r)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, false, &DataFormatError{Msg: "missing header"}
	}
	if err != nil {
		return nil, false, csvError(err)
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(header[0]), 64); err == nil {
		return nil, false, &DataFormatError{Line: 1, Msg: "missing header (first row is numeric)"}
	}

	columns := len(header)
	var hasMoment bool
	switch opts.Layout {
	case LayoutThickness:
		if columns != 5 {
			return nil, false, &DataFormatError{Line: 1, Msg: fmt.Sprintf("expected 5 columns (angle, Cl, Cd, Cm, t/c), got %d", columns)}
		}
		hasMoment = true
	default:
		if columns != 3 && columns != 4 {
			return nil, false, &DataFormatError{Line: 1, Msg: fmt.Sprintf("expected 3 or 4 columns (angle, Cl, Cd[, Cm]), got %d", columns)}
		}
		hasMoment = columns == 4
	}

	var samples []Sample
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, false, csvError(err)
		}
		line, _ := cr.FieldPos(0)
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) != columns {
			return nil, false, &DataFormatError{Line: line, Msg: fmt.Sprintf("expected %d columns, got %d", columns, len(record))}
		}

		values := make([]float64, columns)
		for i, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, false, &DataFormatError{Line: line, Column: i + 1, Msg: fmt.Sprintf("invalid number %q", field), Err: err}
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, false, &DataFormatError{Line: line, Column: i + 1, Msg: fmt.Sprintf("non-finite value %q", field)}
			}
			values[i] = v
		}

		angle := values[0]
		if opts.Unit == Radians {
			angle = angle * 180 / math.Pi
		}
		s := Sample{
			Angle:        angle,
			Coefficients: Coefficients{Cl: values[1], Cd: values[2]},
			Line:         line,
		}
		if hasMoment {
			s.Cm = values[3]
		}
		if opts.Layout == LayoutThickness {
			s.Thickness = values[4]
		}
		samples = append(samples, s)
	}

	if len(samples) == 0 {
		return nil, false, &DataFormatError{Msg: "no samples after header"}
	}
	return samples, hasMoment, nil
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &DataFormatError{Line: pe.Line, Column: pe.Column, Msg: "malformed record", Err: pe.Err}
	}
	return &DataFormatError{Msg: "read failed", Err: err}
}
