package cmd

import (
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gobem/internal/airfoil"
	"github.com/alexiusacademia/gobem/internal/bem"
	"github.com/alexiusacademia/gobem/internal/config"
	"github.com/alexiusacademia/gobem/internal/diagram"
	"github.com/alexiusacademia/gobem/internal/geometry"
)

// Airfoil table flags, shared by every command that loads a table.
// Unset flags fall back to the [airfoil] section of the config file.
var (
	airfoilFile      string
	airfoilLayout    string
	airfoilDelimiter string
	airfoilUnit      string
	airfoilPrecision int
)

// Rotor flags
var (
	bladeFile     string
	bladeSections int
	bladeRaw      bool
	rotorBlades   int
	rotorDensity  float64
	solverMaxIter int
	solverTol     float64
	solverRelax   float64
	sweepWorkers  int
)

// Output flags
var (
	outputImage string
	outputHTML  string
	outputCSV   string
	outputASCII bool
)

func addAirfoilFlags(c *cobra.Command) {
	c.Flags().StringVar(&airfoilFile, "airfoil", "", "Airfoil data file (default: [airfoil] file)")
	c.Flags().StringVar(&airfoilLayout, "layout", "", "Airfoil table layout: angle or thickness")
	c.Flags().StringVar(&airfoilDelimiter, "delimiter", "", "Field delimiter (single character, tab, comma, semicolon)")
	c.Flags().StringVar(&airfoilUnit, "angle-unit", "", "Unit of the angle column: deg or rad")
	c.Flags().IntVar(&airfoilPrecision, "precision", airfoil.DefaultPrecision, "Decimal places of the table keys")
}

func addRotorFlags(c *cobra.Command) {
	addAirfoilFlags(c)
	c.Flags().StringVarP(&bladeFile, "blade", "f", "", "Blade geometry JSON file (default: [geometry] file)")
	c.Flags().IntVarP(&bladeSections, "sections", "n", 0, "Number of resampled stations (default: blade no_sections or [geometry] sections)")
	c.Flags().BoolVar(&bladeRaw, "raw", false, "Use the blade stations as given, without resampling")
	c.Flags().IntVarP(&rotorBlades, "blades", "B", bem.DefaultBlades, "Number of blades")
	c.Flags().Float64Var(&rotorDensity, "rho", bem.DefaultAirDensity, "Air density (kg/m³)")
	c.Flags().IntVar(&solverMaxIter, "max-iter", bem.DefaultMaxIter, "Iteration limit per station")
	c.Flags().Float64Var(&solverTol, "tol", bem.DefaultTolerance, "Convergence tolerance on the induction factors")
	c.Flags().Float64Var(&solverRelax, "relax", bem.DefaultRelaxation, "Relaxation factor in (0, 1]")
}

func addOutputFlags(c *cobra.Command, withASCII bool) {
	c.Flags().StringVarP(&outputImage, "output", "o", "", "Export chart to file (png, svg, pdf)")
	c.Flags().StringVar(&outputHTML, "html", "", "Export interactive chart to an HTML file")
	c.Flags().StringVar(&outputCSV, "csv", "", "Write results to a CSV file")
	if withASCII {
		c.Flags().BoolVar(&outputASCII, "ascii", false, "Plot the curve in the terminal")
	}
}

// airfoilOptions resolves the airfoil file and loader options from flags and config
func airfoilOptions(c *cobra.Command) (string, airfoil.Options, error) {
	path := cfg.AirfoilFile
	opts := cfg.Airfoil
	flags := c.Flags()

	if flags.Changed("airfoil") {
		path = airfoilFile
	}
	if flags.Changed("layout") {
		layout, err := airfoil.ParseLayout(airfoilLayout)
		if err != nil {
			return "", opts, err
		}
		def := airfoil.DefaultOptions(layout)
		opts.Layout = layout
		opts.Delimiter = def.Delimiter
	}
	if flags.Changed("delimiter") {
		d, err := config.ParseDelimiter(airfoilDelimiter)
		if err != nil {
			return "", opts, err
		}
		opts.Delimiter = d
	}
	if flags.Changed("angle-unit") {
		u, err := airfoil.ParseAngleUnit(airfoilUnit)
		if err != nil {
			return "", opts, err
		}
		opts.Unit = u
	}
	if flags.Changed("precision") {
		opts.Precision = airfoilPrecision
	}
	if path == "" {
		return "", opts, errors.New("no airfoil data file: use --airfoil or set [airfoil] file")
	}
	return path, opts, nil
}

func loadTable(c *cobra.Command) (airfoil.Table, error) {
	path, opts, err := airfoilOptions(c)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"file":   path,
		"layout": opts.Layout,
		"unit":   opts.Unit,
	}).Debug("loading airfoil table")
	return airfoil.LoadFile(path, opts)
}

// loadBlade reads the blade file and resamples it unless --raw is set
func loadBlade(c *cobra.Command) (*geometry.Blade, error) {
	path := cfg.GeometryFile
	if c.Flags().Changed("blade") {
		path = bladeFile
	}
	if path == "" {
		return nil, errors.New("no blade geometry file: use --blade or set [geometry] file")
	}
	blade, err := geometry.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	if bladeRaw {
		return blade, nil
	}

	n := cfg.Sections
	switch {
	case c.Flags().Changed("sections"):
		n = bladeSections
	case blade.Sections > 0:
		n = blade.Sections
	}
	return blade.Resample(n)
}

func solverFromFlags(c *cobra.Command, table airfoil.Table) (*bem.Solver, error) {
	flags := c.Flags()
	s := bem.NewSolver(table, cfg.Blades, cfg.AirDensity)
	s.Options = cfg.Solver

	if flags.Changed("blades") {
		s.Blades = rotorBlades
	}
	if flags.Changed("rho") {
		s.AirDensity = rotorDensity
	}
	if flags.Changed("max-iter") {
		s.Options.MaxIter = solverMaxIter
	}
	if flags.Changed("tol") {
		s.Options.Tolerance = solverTol
	}
	if flags.Changed("relax") {
		s.Options.Relaxation = solverRelax
	}
	if err := s.Options.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// buildRotor assembles table, blade and solver from flags and config
func buildRotor(c *cobra.Command) (*bem.Rotor, *geometry.Blade, error) {
	table, err := loadTable(c)
	if err != nil {
		return nil, nil, err
	}
	blade, err := loadBlade(c)
	if err != nil {
		return nil, nil, err
	}
	solver, err := solverFromFlags(c, table)
	if err != nil {
		return nil, nil, err
	}
	r := bem.NewRotor(solver, blade)
	r.Log = log.StandardLogger()
	return r, blade, nil
}

func workers(c *cobra.Command) int {
	if c.Flags().Changed("workers") {
		return sweepWorkers
	}
	return cfg.Workers
}

// writeChart exports a chart to every requested output
func writeChart(chart *diagram.Chart) error {
	if outputImage != "" {
		if err := chart.SaveImage(outputImage); err != nil {
			return fmt.Errorf("exporting chart: %w", err)
		}
		fmt.Printf("Chart exported to: %s\n", outputImage)
	}
	if outputHTML != "" {
		f, err := os.Create(outputHTML)
		if err != nil {
			return err
		}
		if err := diagram.RenderHTML(f, chart); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("HTML chart written to: %s\n", outputHTML)
	}
	if outputASCII {
		graph, err := chart.ASCII(15, 70)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(graph)
	}
	return nil
}
