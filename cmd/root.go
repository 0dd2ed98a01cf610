package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"daytally/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "daytally",
	Short: "Track work time per project and balance each day against a schedule target.",
	Long: `
**********************************************
*                DAYTALLY                    *
**********************************************

This CLI tracks per-project time entries in a local SQLite database, imports
entries from CSV/Excel sources, and balances each day: the recorded durations
are redistributed proportionally so their sum matches the effective work time
of the configured schedule, rounded to quarter hours.

Balancing never touches the recorded start/end times; it writes a corrected
duration per entry and can be undone at any time.
`,
	Example: `
  # Create configuration file
  daytally config create

  # Track time with the timer
  daytally start P-1042
  daytally stop

  # Import a generic CSV source
  daytally import -i examples/generic_import_example.csv --format csv

  # Balance today against the schedule target
  daytally balance

  # Undo balancing for a specific day
  daytally undo 2026-03-02

  # Export daily summary
  daytally export --mode daily --output ./daily-summary.csv

  # Browse months and days in the local web UI
  daytally serve
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.daytally.yaml, then ./.daytally.yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".daytally" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".daytally")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// A missing file is fine; the schedule defaults apply.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Warning: could not read config file: %v\n", err)
		}
	}
}
