package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/metaboard/internal/adapters/storage"
	"github.com/okian/metaboard/internal/domain/model"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a JSON dataset into a SQLite database",
	Long: `Read raw records from --input and upsert them into the SQLite
database at --db. Invalid records are skipped and reported.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if inputPath == "" || dbPath == "" {
		return errors.New("seed needs both --input and --db")
	}

	records, err := storage.LoadJSON(inputPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", inputPath, err)
	}

	valid := make([]model.RawRecord, 0, len(records))
	skipped := 0
	for _, r := range records {
		if err := r.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "skipping %q: %v\n", r.Name, err)
			skipped++
			continue
		}
		valid = append(valid, r)
	}
	if len(valid) == 0 {
		return errors.New("no valid records in dataset")
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", dbPath, err)
	}
	defer db.Close()

	if err := db.SaveRecords(ctx, valid); err != nil {
		return fmt.Errorf("save records: %w", err)
	}

	fmt.Fprintf(os.Stdout, "seeded %d records into %s (%d skipped)\n", len(valid), dbPath, skipped)
	return nil
}
