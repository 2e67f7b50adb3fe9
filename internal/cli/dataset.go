package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/metaboard/internal/adapters/storage"
	"github.com/okian/metaboard/internal/domain/model"
)

// loadDataset reads the raw records from --input or --db, in that order of
// preference.
func loadDataset(ctx context.Context) ([]model.RawRecord, error) {
	switch {
	case inputPath != "":
		records, err := storage.LoadJSON(inputPath)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", inputPath, err)
		}
		return records, nil
	case dbPath != "":
		db, err := storage.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", dbPath, err)
		}
		defer db.Close()
		records, err := db.LoadRecords(ctx)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", dbPath, err)
		}
		return records, nil
	default:
		return nil, errors.New("no dataset given; use --input or --db")
	}
}
