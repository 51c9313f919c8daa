package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gobem/internal/config"
	"github.com/alexiusacademia/gobem/internal/version"
)

var (
	configFile string
	logLevel   string

	// cfg is loaded before any subcommand runs
	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "gobem",
	Short: "Blade Element Momentum rotor analysis tool",
	Long: `gobem - Go Blade Element Momentum rotor analysis

A CLI tool for the steady-state aerodynamic analysis of horizontal-axis
wind turbine rotors using Blade Element Momentum (BEM) theory.

This tool helps rotor designers:
  - Look up tabulated airfoil coefficients (angle or angle + t/c tables)
  - Resample a blade geometry onto evenly spaced stations
  - Solve the induction factors and loads of a single blade station
  - Integrate rotor torque, thrust, power, Cp and CT
  - Sweep tip speed ratio and power curves in parallel
  - Stream operating points to websocket clients

Settings are read from gobem.ini (see 'gobem config init').`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.LogLevel
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}
		lvl, err := log.ParseLevel(level)
		if err != nil {
			return err
		}
		log.SetLevel(lvl)
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println()
		fmt.Println("  ╔═══════════════════════════════════════════════════════════╗")
		fmt.Println("  ║                                                           ║")
		fmt.Printf("  ║   gobem v%-49s║\n", version.Version)
		fmt.Println("  ║   Go Blade Element Momentum Rotor Analysis                ║")
		fmt.Printf("  ║   %-56s║\n", version.Author+" ©  "+version.Year)
		fmt.Println("  ║                                                           ║")
		fmt.Println("  ╚═══════════════════════════════════════════════════════════╝")
		fmt.Println()
		fmt.Println("  A CLI tool for the aerodynamic analysis of wind turbine rotors")
		fmt.Println("  using Blade Element Momentum theory.")
		fmt.Println()
		fmt.Println("  Features:")
		fmt.Println("    • Airfoil coefficient lookup with linear interpolation")
		fmt.Println("    • Blade station induction factors and local loads")
		fmt.Println("    • Rotor power, torque, thrust, Cp and CT")
		fmt.Println("    • Tip speed ratio and power curve sweeps")
		fmt.Println("    • PNG/SVG/PDF, HTML and terminal charts, CSV reports")
		fmt.Println("    • Websocket streaming service with Prometheus metrics")
		fmt.Println()
		fmt.Println("  Use 'gobem --help' to see available commands.")
		fmt.Println()
		fmt.Println("  ─────────────────────────────────────────────────────────────")
		fmt.Printf("  Copyright © %s %s. All rights reserved.\n", version.Year, version.Author)
		fmt.Println()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configFile, "config", config.DefaultFile, "Configuration file (INI)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)")
}
