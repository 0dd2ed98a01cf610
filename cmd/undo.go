package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"daytally/reconcile"
	"daytally/storage"
)

var undoDBPath string

var undoCmd = &cobra.Command{
	Use:   "undo [date]",
	Short: "Remove the balanced durations of a day",
	Long: `Clear every corrected duration of one local calendar day.

The entries fall back to their recorded start/end durations. Days that were
never balanced are left untouched; running undo twice is harmless.`,
	Example: `
  # Undo balancing for today
  daytally undo

  # Undo balancing for a specific day
  daytally undo 2026-03-02
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := parseDayArg(args)
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(undoDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		cleared, err := reconcile.UndoDay(store, day)
		if err != nil {
			return err
		}

		if cleared == 0 {
			fmt.Printf("No balanced entries for %s.\n", day.Format("2006-01-02"))
			return nil
		}
		fmt.Printf("Undo completed. Day: %s, Rows cleared: %d\n", day.Format("2006-01-02"), cleared)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(undoCmd)

	undoCmd.Flags().StringVar(&undoDBPath, "db", "./daytally.db", "Path to local SQLite database")
}
