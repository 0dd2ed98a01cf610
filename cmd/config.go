package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage daytally configuration file values.",
	Long: `Create, edit, display, and delete the daytally configuration file.

The configuration stores the work schedule used as the balancing target:
- schedule.work_start / schedule.work_end
- schedule.lunch_break_minutes
- schedule.other_break_minutes`,
	Example: `
  # Create default config in $HOME/.daytally.yaml
  daytally config create

  # Show active config and source file
  daytally config show

  # Open active config in editor (creates example if missing)
  daytally config edit

  # Delete active config file
  daytally config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
