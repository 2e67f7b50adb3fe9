package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/okian/metaboard/internal/domain/model"
)

// LoadJSON reads a dataset from a JSON file holding an array of raw
// records.
func LoadJSON(path string) ([]model.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var records []model.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	return records, nil
}

// SaveJSON writes records as an indented JSON array.
func SaveJSON(path string, records []model.RawRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	return nil
}
