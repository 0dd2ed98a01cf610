package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"daytally/importer"
	"daytally/storage"
)

var (
	importInputs []string
	importFormat string
	importMapper string
	importDBPath string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import CSV/Excel time entries into the local SQLite database",
	Long: `Read source files, normalize each row via the selected mapper, and persist results in SQLite.

When --format is omitted, format is inferred from each input file extension.
Rows without a start and end time are skipped.`,
	Example: `
  # Import a generic CSV file
  daytally import -i examples/generic_import_example.csv --format csv

  # Import multiple Excel files
  daytally import -i march_week1.xlsx -i march_week2.xlsx --db ./daytally.db

  # Import with custom config file
  daytally --configFile ./custom-daytally.yaml import -i ./source.csv
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mapper, err := importer.MapperByName(importMapper)
		if err != nil {
			return err
		}

		result, err := importer.Run(importInputs, importFormat, mapper)
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(importDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		inserted, err := store.InsertEntries(result.Entries)
		if err != nil {
			return err
		}

		fmt.Printf("Import completed. Files: %d, Rows read: %d, Rows mapped: %d, Rows skipped: %d, Rows persisted: %d\n",
			result.FilesProcessed,
			result.RowsRead,
			result.RowsMapped,
			result.RowsSkipped,
			inserted,
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringArrayVarP(&importInputs, "input", "i", nil, "Input file path (repeatable)")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "Input format: csv|excel (optional, inferred from extension when omitted)")
	importCmd.Flags().StringVarP(&importMapper, "mapper", "m", "generic", "Mapper to normalize input data: generic")
	importCmd.Flags().StringVar(&importDBPath, "db", "./daytally.db", "Path to local SQLite database")

	_ = importCmd.MarkFlagRequired("input")
}
