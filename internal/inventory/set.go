// Package inventory builds technology-to-activity mappings by running the
// shipped filter catalogues against an LCI database.
package inventory

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dbantje/premise/internal/actfilter"
	"github.com/dbantje/premise/pkg/lci"
)

// NameSet is a set of activity names. Records sharing a name across
// different locations or reference products merge deliberately.
type NameSet map[string]struct{}

// Names returns the set's members as an unsorted slice.
func (s NameSet) Names() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	return out
}

// Has reports membership.
func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Set hosts the filter catalogues used to find equivalencies between
// scenario terminology and inventory activities. Catalogues are loaded
// once at construction and shared by reference; the database is read-only.
type Set struct {
	db      lci.Database
	version string
	logger  zerolog.Logger

	powerplantFilters     map[string]actfilter.Definition
	powerplantFuelFilters map[string]actfilter.Definition
	fuelFilters           map[string]actfilter.Definition
	materialFilters       map[string]actfilter.Definition
	daccsFilters          map[string]actfilter.Definition
	carbonStorageFilters  map[string]actfilter.Definition
	cementFuelFilters     map[string]actfilter.Definition
	gainsFilters          map[string]actfilter.Definition
	metalsActivityFilters map[string]actfilter.Definition
	metalsFilters         map[string]actfilter.Definition
	gainsIAMAliases       map[string]string
}

// Option configures a Set.
type Option func(*Set)

// WithLogger attaches a logger for diagnostics. The default is a no-op
// logger so library use stays silent.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Set) { s.logger = logger }
}

// NewSet loads all filter catalogues and binds them to a database.
// version selects the biosphere flow dictionary ("3.8" or "3.9").
func NewSet(db lci.Database, version string, opts ...Option) (*Set, error) {
	s := &Set{
		db:      db,
		version: version,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	var err error
	if s.powerplantFilters, err = loadMappingFile(powerplantTechsFile, "ecoinvent_aliases"); err != nil {
		return nil, err
	}
	if s.powerplantFuelFilters, err = loadMappingFile(powerplantTechsFile, "ecoinvent_fuel_aliases"); err != nil {
		return nil, err
	}
	if s.fuelFilters, err = loadMappingFile(fuelsTechsFile, "ecoinvent_aliases"); err != nil {
		return nil, err
	}
	if s.materialFilters, err = loadMappingFile(materialsTechsFile, "ecoinvent_aliases"); err != nil {
		return nil, err
	}
	if s.daccsFilters, err = loadMappingFile(dacTechsFile, "ecoinvent_aliases"); err != nil {
		return nil, err
	}
	if s.carbonStorageFilters, err = loadMappingFile(carbonStorageFile, "ecoinvent_aliases"); err != nil {
		return nil, err
	}
	if s.cementFuelFilters, err = loadMappingFile(cementTechsFile, "ecoinvent_fuel_aliases"); err != nil {
		return nil, err
	}
	if s.gainsFilters, err = loadMappingFile(gainsMappingFile, "ecoinvent_aliases"); err != nil {
		return nil, err
	}
	if s.metalsActivityFilters, err = loadMappingFile(activitiesMetalsFile, "ecoinvent_aliases"); err != nil {
		return nil, err
	}
	if s.metalsFilters, err = loadMappingFile(metalsMappingFile, "ecoinvent_aliases"); err != nil {
		return nil, err
	}

	gainsSrc, err := dataFS.ReadFile(gainsMappingFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", gainsMappingFile, err)
	}
	if s.gainsIAMAliases, err = LoadAliases(gainsSrc, "gains_aliases_IAM"); err != nil {
		return nil, err
	}

	return s, nil
}

// PowerplantMap maps electricity generation technologies to activity names.
func (s *Set) PowerplantMap() (map[string]NameSet, error) {
	return s.setsFromFilters(s.powerplantFilters, s.db)
}

// PowerplantFuelsMap maps generation technologies to their fuel providers.
func (s *Set) PowerplantFuelsMap() (map[string]NameSet, error) {
	return s.setsFromFilters(s.powerplantFuelFilters, s.db)
}

// FuelMap maps fuel names to fuel supply activities.
func (s *Set) FuelMap() (map[string]NameSet, error) {
	return s.setsFromFilters(s.fuelFilters, s.db)
}

// CementFuelsMap maps cement production to its kiln fuel providers.
func (s *Set) CementFuelsMap() (map[string]NameSet, error) {
	return s.setsFromFilters(s.cementFuelFilters, s.db)
}

// MaterialMap maps material names to production activities.
func (s *Set) MaterialMap() (map[string]NameSet, error) {
	return s.setsFromFilters(s.materialFilters, s.db)
}

// DACCSMap maps direct-air-capture technologies to activities.
func (s *Set) DACCSMap() (map[string]NameSet, error) {
	return s.setsFromFilters(s.daccsFilters, s.db)
}

// CarbonStorageMap maps carbon storage routes to activities.
func (s *Set) CarbonStorageMap() (map[string]NameSet, error) {
	return s.setsFromFilters(s.carbonStorageFilters, s.db)
}

// MetalsInUseMap maps metal-consuming technologies to activities.
func (s *Set) MetalsInUseMap() (map[string]NameSet, error) {
	return s.setsFromFilters(s.metalsActivityFilters, s.db)
}

// GainsMap maps GAINS air-pollutant sectors to activities.
func (s *Set) GainsMap() (map[string]NameSet, error) {
	return s.setsFromFilters(s.gainsFilters, s.db)
}

// GainsIAMMap re-keys a GAINS sector mapping under the coarser
// IAM-reported pollutant sectors, unioning sets whose sector alias maps
// to the same coarse key.
func (s *Set) GainsIAMMap(mapping map[string]NameSet) map[string]NameSet {
	out := make(map[string]NameSet)
	for sector, iamSector := range s.gainsIAMAliases {
		if out[iamSector] == nil {
			out[iamSector] = make(NameSet)
		}
		for name := range mapping[sector] {
			out[iamSector][name] = struct{}{}
		}
	}
	return out
}

// MetalsMap maps metal names to biosphere flow names. It sources from the
// flow dictionary instead of the inventory: metal emission factors are
// recorded as biosphere flows, not processes.
func (s *Set) MetalsMap() (map[string]NameSet, error) {
	flows, err := BiosphereFlows(s.version)
	if err != nil {
		return nil, err
	}
	return s.setsFromFilters(s.metalsFilters, flowsAsDatabase(flows))
}

func (s *Set) setsFromFilters(filters map[string]actfilter.Definition, db lci.Database) (map[string]NameSet, error) {
	out := make(map[string]NameSet, len(filters))
	for tech, def := range filters {
		matches, err := actfilter.One(db, def)
		if err != nil {
			return nil, fmt.Errorf("filtering %q: %w", tech, err)
		}
		if len(matches) == 0 {
			s.logger.Debug().Str("technology", tech).Msg("filter matched no activities")
		}
		set := make(NameSet, len(matches))
		for _, act := range matches {
			set[act.Name] = struct{}{}
		}
		out[tech] = set
	}
	return out, nil
}
