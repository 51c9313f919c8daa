package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"github.com/alexiusacademia/gobem/internal/airfoil"
	"github.com/alexiusacademia/gobem/internal/bem"
)

// DefaultFile is the configuration file looked up when --config is not given
const DefaultFile = "gobem.ini"

// Defaults for the keys that have no package-level default elsewhere
const (
	DefaultSections   = 10
	DefaultWorkers    = 4
	DefaultLogLevel   = "info"
	DefaultServerAddr = ":9000"
)

// Config holds every tunable of the rotor model and the tools around it
type Config struct {
	// [rotor]
	Blades     int
	AirDensity float64

	// [solver]
	Solver bem.SolveOptions

	// [airfoil]
	AirfoilFile string
	Airfoil     airfoil.Options

	// [geometry]
	GeometryFile string
	Sections     int

	// [sweep]
	Workers int

	// [log]
	LogLevel string

	// [server]
	ServerAddr string
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Blades:     bem.DefaultBlades,
		AirDensity: bem.DefaultAirDensity,
		Solver:     bem.DefaultSolveOptions(),
		Airfoil:    airfoil.DefaultOptions(airfoil.LayoutThickness),
		Sections:   DefaultSections,
		Workers:    DefaultWorkers,
		LogLevel:   DefaultLogLevel,
		ServerAddr: DefaultServerAddr,
	}
}

// Load reads the INI file at path. A missing file yields the defaults; missing keys
// fall back to their defaults individually.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := FromFile(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// FromFile builds a Config from an already parsed INI file and validates it.
func FromFile(file *ini.File) (*Config, error) {
	d := Default()

	rotor := file.Section("rotor")
	solver := file.Section("solver")
	af := file.Section("airfoil")
	geo := file.Section("geometry")

	cfg := &Config{
		Blades:     rotor.Key("blades").MustInt(d.Blades),
		AirDensity: rotor.Key("air_density").MustFloat64(d.AirDensity),
		Solver: bem.SolveOptions{
			Relaxation: solver.Key("relaxation").MustFloat64(d.Solver.Relaxation),
			Tolerance:  solver.Key("tolerance").MustFloat64(d.Solver.Tolerance),
			MaxIter:    solver.Key("max_iter").MustInt(d.Solver.MaxIter),
		},
		AirfoilFile:  af.Key("file").String(),
		GeometryFile: geo.Key("file").String(),
		Sections:     geo.Key("sections").MustInt(d.Sections),
		Workers:      file.Section("sweep").Key("workers").MustInt(d.Workers),
		LogLevel:     file.Section("log").Key("level").MustString(d.LogLevel),
		ServerAddr:   file.Section("server").Key("addr").MustString(d.ServerAddr),
	}

	layout, err := airfoil.ParseLayout(af.Key("layout").MustString(d.Airfoil.Layout.String()))
	if err != nil {
		return nil, err
	}
	cfg.Airfoil = airfoil.DefaultOptions(layout)

	unit, err := airfoil.ParseAngleUnit(af.Key("angle_unit").MustString(d.Airfoil.Unit.String()))
	if err != nil {
		return nil, err
	}
	cfg.Airfoil.Unit = unit
	cfg.Airfoil.Precision = af.Key("precision").MustInt(d.Airfoil.Precision)

	if s := af.Key("delimiter").String(); s != "" {
		delim, err := ParseDelimiter(s)
		if err != nil {
			return nil, err
		}
		cfg.Airfoil.Delimiter = delim
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseDelimiter accepts a single character or the names "tab", "comma", "semicolon".
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "tab", `\t`:
		return '\t', nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("invalid delimiter %q: must be a single character", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Blades < 1 {
		return fmt.Errorf("blades must be at least 1, got %d", c.Blades)
	}
	if !(c.AirDensity > 0) {
		return fmt.Errorf("air_density must be positive, got %g", c.AirDensity)
	}
	if err := c.Solver.Validate(); err != nil {
		return err
	}
	if err := airfoil.CheckPrecision(c.Airfoil.Precision); err != nil {
		return err
	}
	if c.Sections < 1 {
		return fmt.Errorf("sections must be at least 1, got %d", c.Sections)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// File renders the configuration as an INI document.
func (c *Config) File() *ini.File {
	f := ini.Empty()

	rotor := f.Section("rotor")
	rotor.Comment = "Rotor definition"
	rotor.Key("blades").SetValue(strconv.Itoa(c.Blades))
	rotor.Key("air_density").SetValue(formatFloat(c.AirDensity))

	solver := f.Section("solver")
	solver.Comment = "Fixed-point iteration of each blade station"
	solver.Key("relaxation").SetValue(formatFloat(c.Solver.Relaxation))
	solver.Key("tolerance").SetValue(formatFloat(c.Solver.Tolerance))
	solver.Key("max_iter").SetValue(strconv.Itoa(c.Solver.MaxIter))

	af := f.Section("airfoil")
	af.Comment = "layout: angle (angle,Cl,Cd[,Cm]) or thickness (angle,Cl,Cd,Cm,t/c)"
	af.Key("file").SetValue(c.AirfoilFile)
	af.Key("layout").SetValue(c.Airfoil.Layout.String())
	af.Key("delimiter").SetValue(formatDelimiter(c.Airfoil.Delimiter))
	af.Key("angle_unit").SetValue(c.Airfoil.Unit.String())
	af.Key("precision").SetValue(strconv.Itoa(c.Airfoil.Precision))

	geo := f.Section("geometry")
	geo.Key("file").SetValue(c.GeometryFile)
	geo.Key("sections").SetValue(strconv.Itoa(c.Sections))

	f.Section("sweep").Key("workers").SetValue(strconv.Itoa(c.Workers))
	f.Section("log").Key("level").SetValue(c.LogLevel)
	f.Section("server").Key("addr").SetValue(c.ServerAddr)
	return f
}

// Save writes the configuration to path
func (c *Config) Save(path string) error {
	if err := c.File().SaveTo(path); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatDelimiter(r rune) string {
	switch r {
	case '\t':
		return "tab"
	case ';':
		return "semicolon"
	case ',':
		return "comma"
	}
	return string(r)
}
