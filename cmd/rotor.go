package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gobem/internal/bem"
	"github.com/alexiusacademia/gobem/internal/diagram"
	"github.com/alexiusacademia/gobem/internal/geometry"
	"github.com/alexiusacademia/gobem/internal/report"
)

var (
	rotorWind  float64
	rotorOmega float64
	rotorRPM   float64
	rotorTSR   float64
)

var rotorCmd = &cobra.Command{
	Use:   "rotor",
	Short: "Compute rotor power, torque and thrust at one operating point",
	Long: `Solve every blade station at the given wind speed and rotor speed and
integrate the loads over the blade:

  dM = ½ρB · v0(1-a)·ωr(1+a') / (sinφ cosφ) · c · Ct · r · dr
  dT = ½ρB · v0²(1-a)² / sin²φ · c · Cn · dr
  P  = Σ ω·dM

Stations that fail to solve are reported and excluded from the totals.
The rotor speed is taken from --rpm, --omega, --tsr or the blade's
lambda0, in that order.

Examples:
  gobem rotor --airfoil dtu.csv --blade dtu10mw.json --wind 10 --rpm 8.8
  gobem rotor -f dtu10mw.json --wind 10 --tsr 7.5 --csv sections.csv -o loads.png`,
	Run: runRotor,
}

func init() {
	rootCmd.AddCommand(rotorCmd)

	addRotorFlags(rotorCmd)
	addOutputFlags(rotorCmd, false)

	rotorCmd.Flags().Float64VarP(&rotorWind, "wind", "v", 0, "Free-stream wind speed (m/s) [required]")
	rotorCmd.Flags().Float64VarP(&rotorOmega, "omega", "w", 0, "Rotor speed (rad/s)")
	rotorCmd.Flags().Float64Var(&rotorRPM, "rpm", 0, "Rotor speed (rpm)")
	rotorCmd.Flags().Float64Var(&rotorTSR, "tsr", 0, "Tip speed ratio λ")
	rotorCmd.MarkFlagRequired("wind")
}

// rotorSpeed resolves ω from the operating point flags
func rotorSpeed(cmd *cobra.Command, blade *geometry.Blade) (float64, error) {
	flags := cmd.Flags()
	switch {
	case flags.Changed("rpm"):
		return bem.RPMToRadPerSec(rotorRPM), nil
	case flags.Changed("omega"):
		return rotorOmega, nil
	case flags.Changed("tsr"):
		return rotorTSR * rotorWind / blade.TipRadius(), nil
	case blade.TipSpeedRatio > 0:
		return blade.TipSpeedRatio * rotorWind / blade.TipRadius(), nil
	}
	return 0, errors.New("no rotor speed: use --rpm, --omega, --tsr or set lambda0 in the blade file")
}

func runRotor(cmd *cobra.Command, args []string) {
	rotor, blade, err := buildRotor(cmd)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	omega, err := rotorSpeed(cmd, blade)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	p, err := rotor.Performance(rotorWind, omega)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("     ROTOR PERFORMANCE - BLADE ELEMENT MOMENTUM")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()
	if blade.Name != "" {
		fmt.Printf("  Blade: %s\n", blade.Name)
	}
	fmt.Println()

	fmt.Println("OPERATING POINT:")
	fmt.Println("───────────────────────────────────────────────────────────────")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Wind speed (v0):\t%.2f m/s\n", p.WindSpeed)
	fmt.Fprintf(w, "  Rotor speed (ω):\t%.4f rad/s (%.2f rpm)\n", p.Omega, bem.RadPerSecToRPM(p.Omega))
	fmt.Fprintf(w, "  Tip radius (R):\t%.3f m\n", rotor.Radius)
	fmt.Fprintf(w, "  Blades (B):\t%d\n", rotor.Solver.Blades)
	fmt.Fprintf(w, "  Air density (ρ):\t%.4f kg/m³\n", rotor.Solver.AirDensity)
	w.Flush()
	fmt.Println()

	fmt.Println("BLADE STATIONS (per blade):")
	fmt.Println("───────────────────────────────────────────────────────────────")
	printSections(os.Stdout, p)

	if len(p.Failures) > 0 {
		fmt.Println("EXCLUDED STATIONS:")
		fmt.Println("───────────────────────────────────────────────────────────────")
		for _, f := range p.Failures {
			fmt.Printf("  #%d r=%.3f m: %v\n", f.Index+1, f.R, f.Err)
		}
		fmt.Println()
	}

	fmt.Print(diagram.DrawSummaryBox("ROTOR TOTALS", []string{
		fmt.Sprintf("Power     P  = %.2f kW", p.TotalPower/1000),
		fmt.Sprintf("Torque    M  = %.2f kN·m", p.TotalTorque/1000),
		fmt.Sprintf("Thrust    T  = %.2f kN", p.TotalThrust/1000),
		fmt.Sprintf("Tip speed λ  = %.3f", p.TipSpeedRatio),
		fmt.Sprintf("Power     Cp = %.4f", p.Cp),
		fmt.Sprintf("Thrust    CT = %.4f", p.CT),
	}))
	fmt.Println()

	if outputCSV != "" {
		err := report.WriteFile(outputCSV, func(w io.Writer) error { return report.WriteSections(w, p) })
		if err != nil {
			fmt.Printf("Error writing report: %v\n", err)
			return
		}
		fmt.Printf("Sections written to: %s\n", outputCSV)
	}
	if outputImage != "" || outputHTML != "" {
		chart, err := diagram.SpanwiseChart(p)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if err := writeChart(chart); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

func printSections(out io.Writer, p *bem.Performance) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  #\tr (m)\ta\ta'\tφ (°)\tα (°)\tpn (N/m)\tpt (N/m)\tdT (kN)\tdP (kW)\tIter\n")
	fmt.Fprintf(w, "  ─\t─────\t─\t──\t─────\t─────\t────────\t────────\t───────\t───────\t────\n")
	for _, s := range p.Sections {
		fmt.Fprintf(w, "  %d\t%.3f\t%.4f\t%.4f\t%.2f\t%.2f\t%.1f\t%.1f\t%.3f\t%.3f\t%d\n",
			s.Index+1, s.R, s.A, s.AP, s.FlowAngleDeg(), s.AngleOfAttackDeg(),
			s.Pn, s.Pt, s.Thrust/1000, s.Power/1000, s.Iterations)
	}
	w.Flush()
	fmt.Fprintln(out)
}
