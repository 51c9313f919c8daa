package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/alexiusacademia/gobem/internal/bem"
)

// SectionHeader is the header row written by WriteSections
var SectionHeader = []string{
	"index", "r", "chord", "pitch", "twist", "tc",
	"a", "a_prime", "phi_deg", "alpha_deg",
	"cl", "cd", "cn", "ct",
	"vrel", "lift", "drag", "pn", "pt",
	"dr", "thrust", "torque", "power", "iterations",
}

// PerformanceHeader is the header row written by WritePerformance
var PerformanceHeader = []string{
	"wind_speed", "omega", "rpm", "tsr",
	"power", "torque", "thrust", "cp", "ct", "failed_stations",
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'g', 8, 64)
}

// WriteSections writes one row per solved station. Loads are per blade.
func WriteSections(w io.Writer, p *bem.Performance) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SectionHeader); err != nil {
		return err
	}
	for _, s := range p.Sections {
		row := []string{
			strconv.Itoa(s.Index), f(s.R), f(s.Chord), f(s.Pitch), f(s.Twist), f(s.Thickness),
			f(s.A), f(s.AP), f(s.FlowAngleDeg()), f(s.AngleOfAttackDeg()),
			f(s.Cl), f(s.Cd), f(s.Cn), f(s.Ct),
			f(s.Vrel), f(s.Lift), f(s.Drag), f(s.Pn), f(s.Pt),
			f(s.Dr), f(s.Thrust), f(s.Torque), f(s.Power), strconv.Itoa(s.Iterations),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePerformance writes one row per operating point; nil points are skipped.
func WritePerformance(w io.Writer, points []*bem.Performance) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(PerformanceHeader); err != nil {
		return err
	}
	for _, p := range points {
		if p == nil {
			continue
		}
		row := []string{
			f(p.WindSpeed), f(p.Omega), f(bem.RadPerSecToRPM(p.Omega)), f(p.TipSpeedRatio),
			f(p.TotalPower), f(p.TotalTorque), f(p.TotalThrust), f(p.Cp), f(p.CT),
			strconv.Itoa(len(p.Failures)),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile creates path and passes it to write
func WriteFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed creating file: %w", err)
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
