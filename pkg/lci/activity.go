// Package lci models life-cycle-inventory process records as seen by the
// mapping subsystem: loosely-typed, read-only activity datasets identified
// by name, reference product and unit.
package lci

// Activity is one process record of an LCI database. The subsystem never
// mutates activities; they are projections of an externally owned database.
type Activity struct {
	Name             string
	ReferenceProduct string
	Unit             string
	Location         string
	Categories       string
}

// Field returns the value of a record field addressed by its external,
// space-separated field name ("reference product", not "ReferenceProduct").
// Unknown fields resolve to the empty string.
func (a Activity) Field(key string) string {
	switch key {
	case "name":
		return a.Name
	case "reference product":
		return a.ReferenceProduct
	case "unit":
		return a.Unit
	case "location":
		return a.Location
	case "categories":
		return a.Categories
	}
	return ""
}

// Ref projects the activity down to the three fields carried by the
// variable mapping artifact.
func (a Activity) Ref() ActivityRef {
	return ActivityRef{
		Name:             a.Name,
		ReferenceProduct: a.ReferenceProduct,
		Unit:             a.Unit,
	}
}

// ActivityRef is the (name, reference product, unit) triple exported in
// mapping.yaml. The YAML keys match the downstream consumer's schema.
type ActivityRef struct {
	Name             string `yaml:"name" json:"name"`
	ReferenceProduct string `yaml:"reference product" json:"reference product"`
	Unit             string `yaml:"unit" json:"unit"`
}

// Database is a full inventory, tens of thousands of records in practice.
type Database []Activity

// Names returns the set of activity names present in the database.
func (db Database) Names() map[string]struct{} {
	names := make(map[string]struct{}, len(db))
	for _, act := range db {
		names[act.Name] = struct{}{}
	}
	return names
}

// DedupeRefs removes refs identical across all three fields, keeping the
// first occurrence. Applying it twice is a no-op.
func DedupeRefs(refs []ActivityRef) []ActivityRef {
	seen := make(map[ActivityRef]struct{}, len(refs))
	out := make([]ActivityRef, 0, len(refs))
	for _, ref := range refs {
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return out
}
