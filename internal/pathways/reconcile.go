package pathways

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dbantje/premise/internal/actfilter"
	"github.com/dbantje/premise/pkg/lci"
)

// MappingEntry is one canonical variable's resolution: the scenario
// variable it was claimed by and the matching inventory records.
type MappingEntry struct {
	ScenarioVariable string            `yaml:"scenario variable"`
	Dataset          []lci.ActivityRef `yaml:"dataset"`
}

// VariableMapping is the artifact written to mapping.yaml.
type VariableMapping map[string]MappingEntry

// Reconciler cross-references scenario variable names against the alias
// table and resolves each claimed variable to inventory records.
type Reconciler struct {
	table  []AliasEntry
	logger zerolog.Logger
}

// NewReconciler builds a reconciler over a loaded alias table.
func NewReconciler(table []AliasEntry, logger zerolog.Logger) *Reconciler {
	return &Reconciler{table: table, logger: logger}
}

// BuildVariableMapping produces the variable mapping for the loaded
// scenarios. The first scenario's database is the resolution target; all
// scenarios contribute their variable names. Efficiency and emission
// variables are excluded from the active set.
func (r *Reconciler) BuildVariableMapping(scenarios []Scenario) (VariableMapping, error) {
	if len(scenarios) == 0 {
		return VariableMapping{}, nil
	}

	active := activeVariables(scenarios)
	models := make(map[string]struct{}, len(scenarios))
	for _, s := range scenarios {
		models[strings.ToLower(s.Model)] = struct{}{}
	}

	db := scenarios[0].Database
	mapping := make(VariableMapping)
	claimed := make(map[string]string) // scenario variable -> canonical that claimed it

	for _, entry := range r.table {
		for _, model := range sortedKeys(entry.Aliases) {
			modelVar := entry.Aliases[model]
			if _, ok := active[modelVar]; !ok {
				continue
			}
			if _, ok := models[strings.ToLower(model)]; !ok {
				continue
			}
			if winner, ok := claimed[modelVar]; ok {
				// First-writer-wins: an already claimed scenario variable
				// is never reassigned, only reported.
				r.logger.Warn().
					Str("scenario variable", modelVar).
					Str("kept", winner).
					Str("skipped", entry.Canonical).
					Msg("leaving out duplicate scenario variable claim")
				continue
			}
			claimed[modelVar] = entry.Canonical

			dataset, err := findActivities(db, entry.Filter)
			if err != nil {
				return nil, err
			}
			if len(dataset) == 0 {
				r.logger.Warn().
					Str("variable", entry.Canonical).
					Str("scenario variable", modelVar).
					Msg("no inventory records match; possible alias gap")
			}
			mapping[entry.Canonical] = MappingEntry{
				ScenarioVariable: modelVar,
				Dataset:          dataset,
			}
			// One claim per canonical variable; remaining model aliases
			// of this entry are not considered.
			break
		}
	}

	if err := r.foldExternalPathways(scenarios, db, mapping, claimed); err != nil {
		return nil, err
	}

	return mapping, nil
}

// foldExternalPathways resolves custom production-pathway declarations
// from external scenario configurations. When a pathway's filter matches
// more than one record, records whose name contains another declared
// pathway's variable token are dropped: they belong more specifically to
// that other pathway. The exclusion never empties a match set.
func (r *Reconciler) foldExternalPathways(scenarios []Scenario, db lci.Database, mapping VariableMapping, claimed map[string]string) error {
	for _, s := range scenarios {
		for _, ext := range s.External {
			declared := sortedKeys(ext.Pathways)
			for _, variable := range declared {
				if winner, ok := claimed[variable]; ok {
					r.logger.Warn().
						Str("scenario variable", variable).
						Str("kept", winner).
						Msg("leaving out duplicate production pathway")
					continue
				}
				claimed[variable] = variable

				dataset, err := findActivities(db, ext.Pathways[variable])
				if err != nil {
					return err
				}
				if len(dataset) > 1 {
					dataset = disambiguate(dataset, variable, declared)
				}
				if len(dataset) == 0 {
					r.logger.Warn().
						Str("variable", variable).
						Str("external scenario", ext.Name).
						Msg("no inventory records match; possible alias gap")
				}
				mapping[variable] = MappingEntry{
					ScenarioVariable: variable,
					Dataset:          dataset,
				}
			}
		}
	}
	return nil
}

func disambiguate(dataset []lci.ActivityRef, variable string, declared []string) []lci.ActivityRef {
	kept := make([]lci.ActivityRef, 0, len(dataset))
	for _, ref := range dataset {
		name := strings.ToLower(ref.Name)
		claimedElsewhere := false
		for _, other := range declared {
			if other == variable {
				continue
			}
			if strings.Contains(name, strings.ToLower(other)) {
				claimedElsewhere = true
				break
			}
		}
		if !claimedElsewhere {
			kept = append(kept, ref)
		}
	}
	if len(kept) == 0 {
		return dataset
	}
	return kept
}

func findActivities(db lci.Database, def actfilter.Definition) ([]lci.ActivityRef, error) {
	matches, err := actfilter.One(db, def)
	if err != nil {
		return nil, err
	}
	refs := make([]lci.ActivityRef, 0, len(matches))
	for _, act := range matches {
		refs = append(refs, act.Ref())
	}
	return lci.DedupeRefs(refs), nil
}

func activeVariables(scenarios []Scenario) map[string]struct{} {
	active := make(map[string]struct{})
	for _, s := range scenarios {
		if s.Data == nil {
			continue
		}
		for _, v := range s.Data.Variables() {
			lower := strings.ToLower(v)
			if strings.Contains(lower, "efficiency") || strings.Contains(lower, "emission") {
				continue
			}
			active[v] = struct{}{}
		}
	}
	return active
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
