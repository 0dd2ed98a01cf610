package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"daytally/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values.`,
	Example: `
  # Show active configuration
  daytally config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
		} else {
			fmt.Println("No config file found, showing defaults.")
		}
		fmt.Println("Configuration:")
		fmt.Printf("schedule.work_start: %s\n", cfg.Schedule.WorkStart)
		fmt.Printf("schedule.work_end: %s\n", cfg.Schedule.WorkEnd)
		fmt.Printf("schedule.lunch_break_minutes: %d\n", cfg.Schedule.LunchBreakMinutes)
		fmt.Printf("schedule.other_break_minutes: %d\n", cfg.Schedule.OtherBreakMinutes)
		if hours, err := cfg.Schedule.Balance().EffectiveHours(); err == nil {
			fmt.Printf("effective work time: %.2f h\n", hours)
		}
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
