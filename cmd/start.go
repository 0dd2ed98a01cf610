package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"daytally/storage"
)

var startDBPath string

var startCmd = &cobra.Command{
	Use:   "start <project-number>",
	Short: "Start the timer for a project",
	Long: `Start a new running time entry for the given project number.

Only one entry can run at a time; stop the current one first.`,
	Example: `
  # Start working on a project
  daytally start P-1042
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project := strings.TrimSpace(args[0])
		if project == "" {
			return fmt.Errorf("project number must not be empty")
		}

		store, err := storage.OpenSQLite(startDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		start := time.Now()
		if _, err := store.StartEntry(project, start); err != nil {
			if errors.Is(err, storage.ErrTimerRunning) {
				return fmt.Errorf("a timer is already running, stop it first with: daytally stop")
			}
			return err
		}

		fmt.Printf("Timer started. Project: %s, Start: %s\n", project, start.Format("15:04:05"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().StringVar(&startDBPath, "db", "./daytally.db", "Path to local SQLite database")
}
