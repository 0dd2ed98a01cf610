package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"daytally/storage"
)

var listDBPath string

var listCmd = &cobra.Command{
	Use:   "list [date]",
	Short: "List the completed entries of a day",
	Long: `List the completed time entries of one local calendar day.

Balanced entries show their corrected duration next to the recorded one.`,
	Example: `
  # List today's entries
  daytally list

  # List a specific day
  daytally list 2026-03-02
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := parseDayArg(args)
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(listDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.ListCompletedForDay(day)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Printf("No entries for %s.\n", day.Format("2006-01-02"))
			return nil
		}

		total := int64(0)
		for _, e := range entries {
			corrected := ""
			if e.CorrectedDuration != nil {
				corrected = fmt.Sprintf(" (balanced: %s)", formatSeconds(*e.CorrectedDuration))
			}
			fmt.Printf("%6d  %-12s %s - %s  %s%s\n",
				e.ID,
				e.ProjectNumber,
				e.StartDateTime.Format("15:04"),
				e.EndDateTime.Format("15:04"),
				formatSeconds(e.DurationSeconds()),
				corrected,
			)
			total += e.EffectiveDurationSeconds()
		}
		fmt.Printf("Total effective: %s\n", formatSeconds(total))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listDBPath, "db", "./daytally.db", "Path to local SQLite database")
}
