package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gobem/internal/bem"
	"github.com/alexiusacademia/gobem/internal/diagram"
	"github.com/alexiusacademia/gobem/internal/report"
)

var (
	sweepPoints int

	// tsr
	sweepWind     float64
	sweepOmegaMin float64
	sweepOmegaMax float64

	// power
	sweepWinds  []float64
	sweepRPMMin float64
	sweepRPMMax float64
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Evaluate the rotor over a grid of operating points",
	Long: `Evaluate rotor performance over many operating points in parallel.

Subcommands:
  tsr    - Cp and CT against tip speed ratio at a fixed wind speed
  power  - Power against rotor speed for several wind speeds

Points are distributed over a pool of workers ([sweep] workers or --workers).`,
}

var sweepTSRCmd = &cobra.Command{
	Use:   "tsr",
	Short: "Sweep rotor speed at a fixed wind speed (Cp-λ curve)",
	Long: `Evaluate the rotor at evenly spaced rotor speeds between --omega-min
and --omega-max at a fixed wind speed.

Examples:
  gobem sweep tsr -f dtu10mw.json --wind 10 --omega-min 0.1 --omega-max 1.3 --points 50 --ascii
  gobem sweep tsr -f dtu10mw.json --wind 10 --omega-max 1.3 -o cp.png --html cp.html --csv cp.csv`,
	Run: runSweepTSR,
}

var sweepPowerCmd = &cobra.Command{
	Use:   "power",
	Short: "Sweep rotor speed for several wind speeds (power curves)",
	Long: `Evaluate the rotor at evenly spaced rotor speeds (rpm) for each wind speed.

Examples:
  gobem sweep power -f dtu10mw.json --winds 6,7,8,9 --rpm-min 0 --rpm-max 30 --points 60 -o power.png`,
	Run: runSweepPower,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	sweepCmd.AddCommand(sweepTSRCmd)
	sweepCmd.AddCommand(sweepPowerCmd)

	for _, c := range []*cobra.Command{sweepTSRCmd, sweepPowerCmd} {
		addRotorFlags(c)
		addOutputFlags(c, true)
		c.Flags().IntVar(&sweepPoints, "points", 50, "Number of rotor speeds per wind speed")
		c.Flags().IntVar(&sweepWorkers, "workers", 4, "Parallel workers (default: [sweep] workers)")
	}

	sweepTSRCmd.Flags().Float64VarP(&sweepWind, "wind", "v", 0, "Free-stream wind speed (m/s) [required]")
	sweepTSRCmd.Flags().Float64Var(&sweepOmegaMin, "omega-min", 0, "Lowest rotor speed (rad/s)")
	sweepTSRCmd.Flags().Float64Var(&sweepOmegaMax, "omega-max", 0, "Highest rotor speed (rad/s) [required]")
	sweepTSRCmd.MarkFlagRequired("wind")
	sweepTSRCmd.MarkFlagRequired("omega-max")

	sweepPowerCmd.Flags().Float64SliceVar(&sweepWinds, "winds", nil, "Wind speeds (m/s), comma separated [required]")
	sweepPowerCmd.Flags().Float64Var(&sweepRPMMin, "rpm-min", 0, "Lowest rotor speed (rpm)")
	sweepPowerCmd.Flags().Float64Var(&sweepRPMMax, "rpm-max", 0, "Highest rotor speed (rpm) [required]")
	sweepPowerCmd.MarkFlagRequired("winds")
	sweepPowerCmd.MarkFlagRequired("rpm-max")
}

func runSweepTSR(cmd *cobra.Command, args []string) {
	points := bem.TipSpeedRatioSweep(sweepWind, sweepOmegaMin, sweepOmegaMax, sweepPoints)
	results, ok := runSweep(cmd, points)
	if !ok {
		return
	}
	chart, err := diagram.TipSpeedRatioChart(results)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	finishSweep(results, chart)
}

func runSweepPower(cmd *cobra.Command, args []string) {
	points := bem.PowerCurveSweep(sweepWinds, sweepRPMMin, sweepRPMMax, sweepPoints)
	results, ok := runSweep(cmd, points)
	if !ok {
		return
	}
	chart, err := diagram.PowerCurveChart(results)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	finishSweep(results, chart)
}

// runSweep evaluates points and prints the result table
func runSweep(cmd *cobra.Command, points []bem.OperatingPoint) ([]*bem.Performance, bool) {
	if len(points) == 0 {
		fmt.Println("Error: no operating points (check --points and --winds)")
		return nil, false
	}
	rotor, blade, err := buildRotor(cmd)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return nil, false
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	n := workers(cmd)
	start := time.Now()
	results, err := rotor.Sweep(ctx, points, n)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return nil, false
	}
	log.WithFields(log.Fields{
		"points":  len(points),
		"workers": n,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Info("sweep finished")

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("     ROTOR SWEEP - BLADE ELEMENT MOMENTUM")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()
	if blade.Name != "" {
		fmt.Printf("  Blade: %s\n", blade.Name)
	}
	fmt.Printf("  Tip radius: %.3f m, %d stations, %d blades\n", rotor.Radius, len(rotor.Stations), rotor.Solver.Blades)
	fmt.Println()
	printPerformance(os.Stdout, results)

	best := results[0]
	for _, p := range results[1:] {
		if p.Cp > best.Cp {
			best = p
		}
	}
	fmt.Print(diagram.DrawSummaryBox("MAXIMUM POWER COEFFICIENT", []string{
		fmt.Sprintf("Cp = %.4f", best.Cp),
		fmt.Sprintf("λ  = %.3f", best.TipSpeedRatio),
		fmt.Sprintf("v0 = %.2f m/s, %.2f rpm", best.WindSpeed, bem.RadPerSecToRPM(best.Omega)),
		fmt.Sprintf("P  = %.2f kW", best.TotalPower/1000),
	}))
	fmt.Println()
	return results, true
}

func finishSweep(results []*bem.Performance, chart *diagram.Chart) {
	if outputCSV != "" {
		err := report.WriteFile(outputCSV, func(w io.Writer) error { return report.WritePerformance(w, results) })
		if err != nil {
			fmt.Printf("Error writing report: %v\n", err)
			return
		}
		fmt.Printf("Results written to: %s\n", outputCSV)
	}
	if err := writeChart(chart); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
}

func printPerformance(out io.Writer, results []*bem.Performance) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  v0 (m/s)\tω (rad/s)\trpm\tλ\tP (kW)\tT (kN)\tCp\tCT\tExcluded\n")
	fmt.Fprintf(w, "  ────────\t─────────\t───\t─\t──────\t──────\t──\t──\t────────\n")
	for _, p := range results {
		fmt.Fprintf(w, "  %.2f\t%.4f\t%.2f\t%.3f\t%.2f\t%.2f\t%.4f\t%.4f\t%d\n",
			p.WindSpeed, p.Omega, bem.RadPerSecToRPM(p.Omega), p.TipSpeedRatio,
			p.TotalPower/1000, p.TotalThrust/1000, p.Cp, p.CT, len(p.Failures))
	}
	w.Flush()
	fmt.Fprintln(out)
}
