package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the gobem configuration file",
	Long: `Manage the INI configuration file read at startup.

Sections:
  [rotor]     blades, air_density
  [solver]    relaxation, tolerance, max_iter
  [airfoil]   file, layout, delimiter, angle_unit, precision
  [geometry]  file, sections
  [sweep]     workers
  [log]       level
  [server]    addr

Command-line flags override the values in the file.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the current configuration (defaults if none) to the config file",
	Long: `Write the effective configuration to the file given by --config
(default gobem.ini). An existing file is kept unless --force is given.

Examples:
  gobem config init
  gobem config init --config rotor.ini --force`,
	Run: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := cfg.File().WriteTo(os.Stdout); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) {
	if _, err := os.Stat(configFile); err == nil && !configForce {
		fmt.Printf("Error: %s already exists (use --force to overwrite)\n", configFile)
		return
	}
	if err := cfg.Save(configFile); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Configuration written to: %s\n", configFile)
}
