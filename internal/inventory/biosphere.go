package inventory

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/dbantje/premise/pkg/lci"
)

// FlowKey identifies one biosphere flow.
type FlowKey struct {
	Name        string
	Category    string
	SubCategory string
	Unit        string
}

// BiosphereFlows loads the flow dictionary for a database version:
// (name, category, sub-category, unit) -> flow code. Metal emission
// factors are recorded against these flows rather than processes.
func BiosphereFlows(version string) (map[FlowKey]string, error) {
	path := flowsBiosphere38File
	if version == "3.9" {
		path = flowsBiosphere39File
	}

	src, err := dataFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("the dictionary of biosphere flows could not be found: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(src))
	reader.Comma = detectDelimiter(src)
	reader.FieldsPerRecord = 5

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read biosphere flows from %s: %w", path, err)
	}

	flows := make(map[FlowKey]string, len(records))
	for _, record := range records {
		flows[FlowKey{
			Name:        record[0],
			Category:    record[1],
			SubCategory: record[2],
			Unit:        record[3],
		}] = record[4]
	}

	return flows, nil
}

// flowsAsDatabase threads the flow dictionary through the activity filter
// machinery by presenting flows as name/categories records.
func flowsAsDatabase(flows map[FlowKey]string) lci.Database {
	db := make(lci.Database, 0, len(flows))
	for key := range flows {
		db = append(db, lci.Activity{
			Name:       key.Name,
			Categories: key.Category,
			Unit:       key.Unit,
		})
	}
	return db
}

func detectDelimiter(src []byte) rune {
	scanner := bufio.NewScanner(bytes.NewReader(src))
	if scanner.Scan() {
		if bytes.ContainsRune(scanner.Bytes(), ';') {
			return ';'
		}
	}
	return ','
}
