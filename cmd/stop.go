package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"daytally/storage"
)

var stopDBPath string

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running timer",
	Long:  `Stop the currently running time entry and record its end time.`,
	Example: `
  # Stop the running timer
  daytally stop
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.OpenSQLite(stopDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		stopped, err := store.StopEntry(time.Now())
		if err != nil {
			if errors.Is(err, storage.ErrNoTimer) {
				return fmt.Errorf("no timer is running")
			}
			return err
		}

		fmt.Printf("Timer stopped. Project: %s, Duration: %s\n",
			stopped.ProjectNumber, formatSeconds(stopped.DurationSeconds()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)

	stopCmd.Flags().StringVar(&stopDBPath, "db", "./daytally.db", "Path to local SQLite database")
}
