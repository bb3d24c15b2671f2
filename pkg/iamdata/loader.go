package iamdata

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

var dataHeader = []string{"variables", "region", "year", "value", "unit"}

// LoadDataArray reads scenario data from a CSV file with the columns
// variables, region, year, value, unit.
func LoadDataArray(filename string) (*DataArray, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario data file %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario data CSV: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("scenario data CSV must have a header and at least one data row")
	}

	header := records[0]
	if len(header) != len(dataHeader) {
		return nil, fmt.Errorf("scenario data CSV header mismatch. Expected: %v, Got: %v", dataHeader, header)
	}
	for i := range header {
		if header[i] != dataHeader[i] {
			return nil, fmt.Errorf("scenario data CSV header mismatch. Expected: %v, Got: %v", dataHeader, header)
		}
	}

	array := New()
	for i, record := range records[1:] {
		if len(record) != len(dataHeader) {
			return nil, fmt.Errorf("scenario data CSV row %d: expected %d columns, got %d", i+2, len(dataHeader), len(record))
		}

		year, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, fmt.Errorf("scenario data CSV row %d: invalid year %q: %w", i+2, record[2], err)
		}
		value, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("scenario data CSV row %d: invalid value %q: %w", i+2, record[3], err)
		}

		array.Set(record[0], record[1], year, value)
		if record[4] != "" {
			array.Units[record[0]] = record[4]
		}
	}

	return array, nil
}
