package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gobem/internal/bem"
	"github.com/alexiusacademia/gobem/internal/geometry"
)

var (
	segmentR         float64
	segmentChord     float64
	segmentPitch     float64
	segmentTwist     float64
	segmentThickness float64
	segmentWind      float64
	segmentOmega     float64
	segmentRPM       float64
)

var segmentCmd = &cobra.Command{
	Use:   "segment",
	Short: "Solve the induction factors and loads of one blade station",
	Long: `Iterate the axial and tangential induction factors of a single blade
element until they converge, then report the flow angle, angle of attack,
force coefficients and local loads per unit span.

The iteration starts from a = a' = 0 and relaxes each update:
  a ← (1 - f)·a + f·a_new

Examples:
  # Root section of the DTU 10MW blade
  gobem segment --airfoil dtu.csv --radius 2.8 --chord 5.38 --pitch 14.5 --tc 100 --wind 10 --omega 0.5

  # Rotor speed in rpm
  gobem segment --airfoil naca.csv --layout angle --radius 20 --chord 1.5 --pitch 2 --wind 8 --rpm 14`,
	Run: runSegment,
}

func init() {
	rootCmd.AddCommand(segmentCmd)

	addAirfoilFlags(segmentCmd)

	// Station flags
	segmentCmd.Flags().Float64VarP(&segmentR, "radius", "r", 0, "Radial position (m) [required]")
	segmentCmd.Flags().Float64VarP(&segmentChord, "chord", "c", 0, "Chord length (m) [required]")
	segmentCmd.Flags().Float64VarP(&segmentPitch, "pitch", "p", 0, "Pitch angle (deg)")
	segmentCmd.Flags().Float64Var(&segmentTwist, "twist", 0, "Twist angle (deg)")
	segmentCmd.Flags().Float64Var(&segmentThickness, "tc", 0, "Thickness ratio (percent)")

	// Operating point flags
	segmentCmd.Flags().Float64VarP(&segmentWind, "wind", "v", 0, "Free-stream wind speed (m/s) [required]")
	segmentCmd.Flags().Float64VarP(&segmentOmega, "omega", "w", 0, "Rotor speed (rad/s)")
	segmentCmd.Flags().Float64Var(&segmentRPM, "rpm", 0, "Rotor speed (rpm), overrides --omega")

	// Solver flags
	segmentCmd.Flags().IntVarP(&rotorBlades, "blades", "B", bem.DefaultBlades, "Number of blades")
	segmentCmd.Flags().Float64Var(&rotorDensity, "rho", bem.DefaultAirDensity, "Air density (kg/m³)")
	segmentCmd.Flags().IntVar(&solverMaxIter, "max-iter", bem.DefaultMaxIter, "Iteration limit")
	segmentCmd.Flags().Float64Var(&solverTol, "tol", bem.DefaultTolerance, "Convergence tolerance on the induction factors")
	segmentCmd.Flags().Float64Var(&solverRelax, "relax", bem.DefaultRelaxation, "Relaxation factor in (0, 1]")

	segmentCmd.MarkFlagRequired("radius")
	segmentCmd.MarkFlagRequired("chord")
	segmentCmd.MarkFlagRequired("wind")
}

func runSegment(cmd *cobra.Command, args []string) {
	table, err := loadTable(cmd)
	if err != nil {
		fmt.Printf("Error loading airfoil data: %v\n", err)
		return
	}
	solver, err := solverFromFlags(cmd, table)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	omega := segmentOmega
	if cmd.Flags().Changed("rpm") {
		omega = bem.RPMToRadPerSec(segmentRPM)
	}
	st := geometry.Station{
		R:         segmentR,
		Chord:     segmentChord,
		Pitch:     segmentPitch,
		Twist:     segmentTwist,
		Thickness: segmentThickness,
	}

	res, err := solver.Solve(segmentWind, omega, st)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("     BLADE ELEMENT SOLUTION")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()

	fmt.Println("STATION:")
	fmt.Println("───────────────────────────────────────────────────────────────")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Radius (r):\t%.3f m\n", st.R)
	fmt.Fprintf(w, "  Chord (c):\t%.3f m\n", st.Chord)
	fmt.Fprintf(w, "  Pitch + twist:\t%.3f°\n", st.Pitch+st.Twist)
	fmt.Fprintf(w, "  Thickness ratio:\t%.2f %%\n", st.Thickness)
	fmt.Fprintf(w, "  Solidity (σ):\t%.4f\n", bem.Solidity(solver.Blades, st.Chord, st.R))
	fmt.Fprintf(w, "  Wind speed:\t%.2f m/s\n", segmentWind)
	fmt.Fprintf(w, "  Rotor speed:\t%.4f rad/s (%.2f rpm)\n", omega, bem.RadPerSecToRPM(omega))
	w.Flush()
	fmt.Println()

	printSegment(res)
}

func printSegment(res *bem.SegmentResult) {
	fmt.Println("INDUCTION:")
	fmt.Println("───────────────────────────────────────────────────────────────")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Axial induction (a):\t%.5f\n", res.A)
	fmt.Fprintf(w, "  Tangential induction (a'):\t%.5f\n", res.AP)
	fmt.Fprintf(w, "  Iterations:\t%d\n", res.Iterations)
	w.Flush()
	fmt.Println()

	fmt.Println("FLOW:")
	fmt.Println("───────────────────────────────────────────────────────────────")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Flow angle (φ):\t%.4f rad (%.2f°)\n", res.FlowAngle, res.FlowAngleDeg())
	fmt.Fprintf(w, "  Angle of attack (α):\t%.4f rad (%.2f°)\n", res.AngleOfAttack, res.AngleOfAttackDeg())
	fmt.Fprintf(w, "  Cl / Cd:\t%.4f / %.4f\n", res.Cl, res.Cd)
	fmt.Fprintf(w, "  Cn / Ct:\t%.4f / %.4f\n", res.Cn, res.Ct)
	fmt.Fprintf(w, "  Relative velocity:\t%.3f m/s\n", res.Vrel)
	w.Flush()
	fmt.Println()

	fmt.Println("LOADS PER UNIT SPAN:")
	fmt.Println("───────────────────────────────────────────────────────────────")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Lift (L):\t%.2f N/m\n", res.Lift)
	fmt.Fprintf(w, "  Drag (D):\t%.2f N/m\n", res.Drag)
	fmt.Fprintf(w, "  Normal (pn):\t%.2f N/m\n", res.Pn)
	fmt.Fprintf(w, "  Tangential (pt):\t%.2f N/m\n", res.Pt)
	w.Flush()
	fmt.Println()
}
