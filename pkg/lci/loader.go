package lci

import (
	"encoding/csv"
	"fmt"
	"os"
)

var databaseHeader = []string{"name", "reference product", "unit", "location", "categories"}

// LoadDatabase reads a pre-transformed inventory from a CSV file with the
// columns name, reference product, unit, location, categories.
func LoadDatabase(filename string) (Database, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory file %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory CSV: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("inventory CSV must have a header and at least one data row")
	}

	if !headerMatches(records[0], databaseHeader) {
		return nil, fmt.Errorf("inventory CSV header mismatch. Expected: %v, Got: %v", databaseHeader, records[0])
	}

	db := make(Database, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(databaseHeader) {
			return nil, fmt.Errorf("inventory CSV row %d: expected %d columns, got %d", i+2, len(databaseHeader), len(record))
		}
		db = append(db, Activity{
			Name:             record[0],
			ReferenceProduct: record[1],
			Unit:             record[2],
			Location:         record[3],
			Categories:       record[4],
		})
	}

	return db, nil
}

func headerMatches(header, expected []string) bool {
	if len(header) != len(expected) {
		return false
	}
	for i := range header {
		if header[i] != expected[i] {
			return false
		}
	}
	return true
}
