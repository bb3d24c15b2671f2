package inventory

import "embed"

// Shipped variable definitions and reference data. The files mirror the
// structure of the upstream scenario-variable catalogues: one mapping per
// technology, with ecoinvent_aliases (and for some catalogues
// ecoinvent_fuel_aliases or gains_aliases_IAM) below each key.
//
//go:embed data
var dataFS embed.FS

const (
	powerplantTechsFile  = "data/electricity_variables.yaml"
	fuelsTechsFile       = "data/fuels_variables.yaml"
	materialsTechsFile   = "data/materials_vars.yaml"
	dacTechsFile         = "data/direct_air_capture_variables.yaml"
	carbonStorageFile    = "data/carbon_storage_variables.yaml"
	cementTechsFile      = "data/cement_variables.yaml"
	gainsMappingFile     = "data/gains_ecoinvent_sectoral_mapping.yaml"
	activitiesMetalsFile = "data/activities_metals_mapping.yaml"
	metalsMappingFile    = "data/metals_mapping.yaml"
	flowsBiosphere39File = "data/flows_biosphere_39.csv"
	flowsBiosphere38File = "data/flows_biosphere_38.csv"
	aliasTableDir        = "data/iam_variables_mapping"
)

// AliasTableFS exposes the embedded scenario-variable alias files for the
// reconciler.
func AliasTableFS() (embed.FS, string) {
	return dataFS, aliasTableDir
}
