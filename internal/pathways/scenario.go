// Package pathways reconciles IAM scenario variables against inventory
// filters and exports the result as a portable datapackage.
package pathways

import (
	"fmt"
	"strings"

	"github.com/dbantje/premise/internal/actfilter"
	"github.com/dbantje/premise/pkg/iamdata"
	"github.com/dbantje/premise/pkg/lci"
)

// Scenario is one (model, pathway, year) entry: its transformed inventory
// plus the scenario data array the transformation was driven by.
type Scenario struct {
	Model   string
	Pathway string
	Year    int

	Database lci.Database
	Data     *iamdata.DataArray

	// ExternalScenarios names any custom scenario sources folded into
	// this entry; they extend the composite scenario label.
	ExternalScenarios []string

	// External carries custom scenario configurations supplied outside
	// the alias table.
	External []ExternalConfig
}

// ExternalConfig is one custom scenario definition: its own data array,
// unit attributes and production-pathway filters.
type ExternalConfig struct {
	Name  string
	Data  *iamdata.DataArray
	Units map[string]string

	// Pathways declares production pathways: scenario variable name to
	// the filter resolving it against the inventory.
	Pathways map[string]actfilter.Definition
}

// Label is the composite scenario axis label: "MODEL - pathway", extended
// by any external scenario names.
func (s Scenario) Label() string {
	parts := []string{fmt.Sprintf("%s - %s", strings.ToUpper(s.Model), s.Pathway)}
	parts = append(parts, s.ExternalScenarios...)
	return strings.Join(parts, " - ")
}

// Description is the human-readable scenario summary used in the
// datapackage descriptor.
func (s Scenario) Description() string {
	return fmt.Sprintf("Prospective db, based on %s, pathway %s.", strings.ToUpper(s.Model), s.Pathway)
}
