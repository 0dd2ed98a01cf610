package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"daytally/config"
	"daytally/reconcile"
	"daytally/storage"
)

var (
	balanceDBPath string
	balanceYes    bool
	balanceDryRun bool
)

var (
	balancePromptInput  io.Reader = os.Stdin
	balancePromptOutput io.Writer = os.Stdout
)

var balanceCmd = &cobra.Command{
	Use:   "balance [date]",
	Short: "Redistribute a day's durations so they sum to the schedule target",
	Long: `Balance one local calendar day against the configured schedule.

Each completed entry of the day keeps its share of the total recorded time, but
the durations are scaled so their sum matches the effective work time of the
schedule (work window minus breaks), rounded to quarter hours. Start and end
times stay untouched; the result is written as a corrected duration per entry.

When rounding leaves a residual of at least 0.01 h, the command shows it and
asks for confirmation before writing. Balancing can be undone with "daytally undo".`,
	Example: `
  # Balance today
  daytally balance

  # Balance a specific day without the confirmation prompt
  daytally balance 2026-03-02 --yes

  # Show the plan without writing anything
  daytally balance 2026-03-02 --dry-run
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		day, err := parseDayArg(args)
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(balanceDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		result, err := reconcile.Preview(store, day, cfg.Schedule.Balance())
		if err != nil {
			return err
		}

		if result.Plan.NoOp() {
			fmt.Printf("Nothing to balance for %s.\n", result.Day)
			return nil
		}

		printBalancePlan(result)

		if balanceDryRun {
			fmt.Println("Dry run, nothing written.")
			return nil
		}

		if !balanceYes {
			confirmed, err := confirmBalancePrompt(balancePromptInput, balancePromptOutput, result)
			if err != nil {
				return err
			}
			if !confirmed {
				return fmt.Errorf("balance aborted: confirmation was not 'Y'")
			}
		}

		updated, err := reconcile.Apply(store, result)
		if err != nil {
			return err
		}
		fmt.Printf("Balance completed. Day: %s, Entries balanced: %d, Rows updated: %d\n",
			result.Day, result.EntriesBalanced, updated)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)

	balanceCmd.Flags().StringVar(&balanceDBPath, "db", "./daytally.db", "Path to local SQLite database")
	balanceCmd.Flags().BoolVarP(&balanceYes, "yes", "y", false, "Apply without confirmation prompt")
	balanceCmd.Flags().BoolVar(&balanceDryRun, "dry-run", false, "Show the plan without writing")
}

func printBalancePlan(result *reconcile.Result) {
	if result.TimeDifferenceHours != nil {
		fmt.Printf("Missing time for %s: %.2f h\n", result.Day, *result.TimeDifferenceHours)
	}
	for _, adjusted := range result.Plan.Entries {
		fmt.Printf("  entry %d: %s -> %s\n",
			adjusted.ID,
			formatSeconds(adjusted.OriginalDuration),
			formatSeconds(adjusted.Duration),
		)
	}
	if residual := roundedResidual(result); residual != 0 {
		fmt.Printf("Residual after rounding: %.2f h\n", residual)
	}
}

// roundedResidual returns the post-rounding residual, or 0 when it is below
// the 0.01 h reporting threshold.
func roundedResidual(result *reconcile.Result) float64 {
	if result.RoundedDifferenceHours == nil {
		return 0
	}
	if math.Abs(*result.RoundedDifferenceHours) < 0.01 {
		return 0
	}
	return *result.RoundedDifferenceHours
}

func confirmBalancePrompt(input io.Reader, output io.Writer, result *reconcile.Result) (bool, error) {
	if input == nil {
		return false, fmt.Errorf("balance confirmation input is not available")
	}
	if output == nil {
		output = io.Discard
	}

	if _, err := fmt.Fprintf(output, "Apply balancing for %s? Type Y to confirm: ", result.Day); err != nil {
		return false, fmt.Errorf("write balance confirmation prompt: %w", err)
	}

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return strings.TrimSpace(line) == "Y", nil
		}
		return false, fmt.Errorf("read balance confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "Y", nil
}

// parseDayArg resolves the optional date argument; today when omitted.
func parseDayArg(args []string) (time.Time, error) {
	if len(args) == 0 {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local), nil
	}

	raw := strings.TrimSpace(args[0])
	parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", raw)
	}
	return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.Local), nil
}

func formatSeconds(seconds int64) string {
	return fmt.Sprintf("%.2fh", float64(seconds)/3600.0)
}
