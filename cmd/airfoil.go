package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gobem/internal/airfoil"
)

var (
	lookupAlpha     float64
	lookupThickness float64
)

var airfoilCmd = &cobra.Command{
	Use:   "airfoil",
	Short: "Airfoil coefficient tables",
	Long: `Inspect tabulated airfoil data.

Two layouts are supported:
  angle      angle, Cl, Cd[, Cm]          (e.g. NACA polar, comma separated)
  thickness  angle, Cl, Cd, Cm, t/c       (e.g. DTU 10MW blade, semicolon separated)

Values between tabulated keys are linearly interpolated. Queries outside
the tabulated range are rejected.`,
}

var airfoilLookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Look up Cl, Cd and Cm at an angle of attack",
	Long: `Look up the lift, drag and moment coefficients at an angle of attack
(degrees) and, for thickness tables, a thickness ratio (percent).

Examples:
  gobem airfoil lookup --airfoil naca.csv --layout angle --alpha 5.5
  gobem airfoil lookup --airfoil dtu.csv --layout thickness --alpha 67.53 --tc 100`,
	Run: runAirfoilLookup,
}

func init() {
	rootCmd.AddCommand(airfoilCmd)
	airfoilCmd.AddCommand(airfoilLookupCmd)

	addAirfoilFlags(airfoilLookupCmd)
	airfoilLookupCmd.Flags().Float64VarP(&lookupAlpha, "alpha", "a", 0, "Angle of attack (deg) [required]")
	airfoilLookupCmd.Flags().Float64Var(&lookupThickness, "tc", 0, "Thickness ratio (percent), thickness tables only")
	airfoilLookupCmd.MarkFlagRequired("alpha")
}

func runAirfoilLookup(cmd *cobra.Command, args []string) {
	table, err := loadTable(cmd)
	if err != nil {
		fmt.Printf("Error loading airfoil data: %v\n", err)
		return
	}

	coefs, err := table.Lookup(lookupAlpha, lookupThickness)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println()
	fmt.Println("AIRFOIL COEFFICIENTS:")
	fmt.Println("───────────────────────────────────────────────────────────────")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Angle of attack:\t%.3f°\n", lookupAlpha)
	if _, ok := table.(*airfoil.ThicknessTable); ok {
		fmt.Fprintf(w, "  Thickness ratio:\t%.3f %%\n", lookupThickness)
	}
	fmt.Fprintf(w, "  Cl:\t%.5f\n", coefs.Cl)
	fmt.Fprintf(w, "  Cd:\t%.5f\n", coefs.Cd)
	if _, err := table.Cm(lookupAlpha, lookupThickness); errors.Is(err, airfoil.ErrNoMoment) {
		fmt.Fprintf(w, "  Cm:\tn/a\n")
	} else {
		fmt.Fprintf(w, "  Cm:\t%.5f\n", coefs.Cm)
	}
	if coefs.Cd != 0 {
		fmt.Fprintf(w, "  L/D:\t%.2f\n", coefs.Cl/coefs.Cd)
	}
	w.Flush()
	fmt.Println()

	fmt.Println("TABLE RANGE:")
	fmt.Println("───────────────────────────────────────────────────────────────")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	switch t := table.(type) {
	case *airfoil.AngleTable:
		lo, hi := t.Range()
		fmt.Fprintf(w, "  Angles:\t%.3f° to %.3f° (%d rows)\n", lo, hi, t.Len())
	case *airfoil.ThicknessTable:
		fmt.Fprintf(w, "  t/c\tAngles\n")
		fmt.Fprintf(w, "  ───\t──────\n")
		for i, tc := range t.Thicknesses() {
			lo, hi := t.AngleRange(i)
			fmt.Fprintf(w, "  %.3f\t%.3f° to %.3f°\n", tc, lo, hi)
		}
	}
	w.Flush()
	fmt.Println()
}
