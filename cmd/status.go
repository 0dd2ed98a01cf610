package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"daytally/storage"
)

var statusDBPath string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running timer, if any",
	Example: `
  # Check whether a timer is running
  daytally status
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.OpenSQLite(statusDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		running, err := store.RunningEntry()
		if err != nil {
			return err
		}
		if running == nil {
			fmt.Println("No timer running.")
			return nil
		}

		elapsed := time.Since(running.StartDateTime)
		fmt.Printf("Timer running. Project: %s, Since: %s, Elapsed: %s\n",
			running.ProjectNumber,
			running.StartDateTime.Format("15:04:05"),
			formatSeconds(int64(elapsed.Seconds())),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusDBPath, "db", "./daytally.db", "Path to local SQLite database")
}
