// Package iamdata holds labeled multi-dimensional scenario data as produced
// by integrated assessment models: values indexed by (variable, region,
// year) with a unit attribute per variable. It is a container, not an
// algebra engine.
package iamdata

import (
	"math"
	"sort"
)

// Coord addresses one cell of a DataArray.
type Coord struct {
	Variable string
	Region   string
	Year     int
}

// DataArray is one model/pathway's scenario data.
type DataArray struct {
	// Units maps variable name to its unit, mirroring the source array's
	// unit attribute.
	Units map[string]string

	variables map[string]struct{}
	regions   map[string]struct{}
	years     map[int]struct{}
	values    map[Coord]float64
}

func New() *DataArray {
	return &DataArray{
		Units:     make(map[string]string),
		variables: make(map[string]struct{}),
		regions:   make(map[string]struct{}),
		years:     make(map[int]struct{}),
		values:    make(map[Coord]float64),
	}
}

// Set stores one value. NaN is accepted and later dropped by Flatten.
func (a *DataArray) Set(variable, region string, year int, value float64) {
	a.variables[variable] = struct{}{}
	a.regions[region] = struct{}{}
	a.years[year] = struct{}{}
	a.values[Coord{Variable: variable, Region: region, Year: year}] = value
}

// Get returns the value at the given coordinate.
func (a *DataArray) Get(variable, region string, year int) (float64, bool) {
	v, ok := a.values[Coord{Variable: variable, Region: region, Year: year}]
	return v, ok
}

// Variables returns the variable coordinate, sorted.
func (a *DataArray) Variables() []string {
	return sortedStrings(a.variables)
}

// Regions returns the region coordinate, sorted.
func (a *DataArray) Regions() []string {
	return sortedStrings(a.regions)
}

// Years returns the year coordinate, sorted.
func (a *DataArray) Years() []int {
	years := make([]int, 0, len(a.years))
	for y := range a.years {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Len reports the number of stored values.
func (a *DataArray) Len() int {
	return len(a.values)
}

func sortedStrings(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Slice is one array labeled with its composite scenario name.
type Slice struct {
	Label string
	Array *DataArray
}

// ScenarioArray is the concatenation of per-scenario arrays along a new
// scenario axis.
type ScenarioArray struct {
	Slices []Slice
	// Units is the merge of all slice unit attributes. Later slices win on
	// conflicting keys, so external scenarios can redefine the variables
	// they bring.
	Units map[string]string
}

// Concat joins slices along the scenario axis. Slices repeating an already
// seen label are skipped: one scenario contributes one slice regardless of
// how many per-year entries reference the same array.
func Concat(slices []Slice) *ScenarioArray {
	sa := &ScenarioArray{Units: make(map[string]string)}
	seen := make(map[string]struct{}, len(slices))
	for _, s := range slices {
		if _, ok := seen[s.Label]; ok {
			continue
		}
		seen[s.Label] = struct{}{}
		sa.Slices = append(sa.Slices, s)
		for variable, unit := range s.Array.Units {
			sa.Units[variable] = unit
		}
	}
	return sa
}

// Row is one record of the flattened scenario table.
type Row struct {
	Scenario string
	Variable string
	Region   string
	Year     int
	Value    float64
	Unit     string
}

// Flatten turns the concatenated array into tabular rows. Cells that are
// absent or NaN are dropped rather than imputed. Row order is slice order,
// then variable, region, year.
func (sa *ScenarioArray) Flatten() []Row {
	var rows []Row
	for _, s := range sa.Slices {
		for _, variable := range s.Array.Variables() {
			for _, region := range s.Array.Regions() {
				for _, year := range s.Array.Years() {
					value, ok := s.Array.Get(variable, region, year)
					if !ok || math.IsNaN(value) {
						continue
					}
					rows = append(rows, Row{
						Scenario: s.Label,
						Variable: variable,
						Region:   region,
						Year:     year,
						Value:    value,
						Unit:     sa.Units[variable],
					})
				}
			}
		}
	}
	return rows
}
