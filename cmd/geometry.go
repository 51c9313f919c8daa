package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gobem/internal/geometry"
)

var resampleOutput string

var geometryCmd = &cobra.Command{
	Use:   "geometry",
	Short: "Blade geometry definitions",
	Long: `Inspect and resample blade geometry definitions.

A blade is defined in JSON:
  {
    "name": "DTU 10MW",
    "R": 89.17,
    "r_is": [2.8, 11.0, ...],
    "chords": [5.38, 5.45, ...],
    "pitch": [14.5, 14.4, ...],
    "tc_ratios": [100, 86.05, ...],
    "no_sections": 30
  }

Radii are measured from the rotor axis (m), pitch in degrees and
thickness ratios in percent.`,
}

var geometryResampleCmd = &cobra.Command{
	Use:   "resample",
	Short: "Resample a blade onto evenly spaced stations",
	Long: `Linearly interpolate chord, pitch, twist and thickness ratio onto n
stations evenly spaced between the first and outermost radius.

Examples:
  gobem geometry resample --blade dtu10mw.json --sections 30
  gobem geometry resample -f dtu10mw.json -n 30 --out dtu10mw-30.json`,
	Run: runGeometryResample,
}

func init() {
	rootCmd.AddCommand(geometryCmd)
	geometryCmd.AddCommand(geometryResampleCmd)

	geometryResampleCmd.Flags().StringVarP(&bladeFile, "blade", "f", "", "Blade geometry JSON file (default: [geometry] file)")
	geometryResampleCmd.Flags().IntVarP(&bladeSections, "sections", "n", 0, "Number of stations (default: blade no_sections or [geometry] sections)")
	geometryResampleCmd.Flags().StringVar(&resampleOutput, "out", "", "Write the resampled blade to a JSON file")
}

func runGeometryResample(cmd *cobra.Command, args []string) {
	blade, err := loadBlade(cmd)
	if err != nil {
		fmt.Printf("Error loading blade: %v\n", err)
		return
	}

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("     RESAMPLED BLADE GEOMETRY")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()
	if blade.Name != "" {
		fmt.Printf("  Blade: %s\n", blade.Name)
	}
	fmt.Printf("  Tip radius: %.3f m\n", blade.TipRadius())
	fmt.Println()
	printStations(blade.Stations())

	if resampleOutput != "" {
		data, err := json.MarshalIndent(blade, "", "  ")
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if err := os.WriteFile(resampleOutput, data, 0644); err != nil {
			fmt.Printf("Error writing blade: %v\n", err)
			return
		}
		fmt.Printf("Blade written to: %s\n", resampleOutput)
	}
}

func printStations(stations []geometry.Station) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  #\tr (m)\tChord (m)\tPitch (°)\tTwist (°)\tt/c (%%)\n")
	fmt.Fprintf(w, "  ─\t─────\t─────────\t─────────\t─────────\t───────\n")
	for i, st := range stations {
		fmt.Fprintf(w, "  %d\t%.3f\t%.3f\t%.3f\t%.3f\t%.2f\n", i+1, st.R, st.Chord, st.Pitch, st.Twist, st.Thickness)
	}
	w.Flush()
	fmt.Println()
}
