package pathways

import (
	"archive/zip"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dbantje/premise/internal/actfilter"
	"github.com/dbantje/premise/pkg/iamdata"
	"github.com/dbantje/premise/pkg/lci"
)

func exportScenario(model, pathway string, year int) Scenario {
	array := iamdata.New()
	array.Set("FE|Coal", "World", year, 42.5)
	array.Set("FE|Gases", "World", year, 13.37)
	array.Units["FE|Coal"] = "EJ/yr"
	array.Units["FE|Gases"] = "EJ/yr"

	return Scenario{
		Model:   model,
		Pathway: pathway,
		Year:    year,
		Database: lci.Database{
			{Name: "market for hard coal", ReferenceProduct: "hard coal", Unit: "kilogram", Location: "GLO"},
		},
		Data: array,
	}
}

func testAliasTable() []AliasEntry {
	return []AliasEntry{{
		Canonical: "Coal",
		Aliases:   map[string]string{"remind": "FE|Coal"},
		Filter:    actfilter.Definition{Include: actfilter.ByName("hard coal")},
	}}
}

func TestExportScenarioData(t *testing.T) {
	dir := t.TempDir()
	dp := NewDataPackage([]Scenario{exportScenario("remind", "SSP2-Base", 2030)}, testAliasTable(), dir, nil, zerolog.Nop())

	require.NoError(t, dp.ExportScenarioData())

	file, err := os.Open(filepath.Join(dir, "pathways", "scenario_data", "scenario_data.csv"))
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, []string{"variables", "region", "year", "value", "unit", "model", "pathway"}, records[0])
	assert.Equal(t, []string{"FE|Coal", "World", "2030", "42.5", "EJ/yr", "REMIND", "SSP2-Base"}, records[1])
	assert.Equal(t, []string{"FE|Gases", "World", "2030", "13.37", "EJ/yr", "REMIND", "SSP2-Base"}, records[2])
}

func TestExportScenarioDataDeduplicatesPerYearEntries(t *testing.T) {
	// Entries for the same (model, pathway) share one array across years;
	// the scenario axis carries each label once.
	s2030 := exportScenario("remind", "SSP2-Base", 2030)
	s2050 := s2030
	s2050.Year = 2050

	dir := t.TempDir()
	dp := NewDataPackage([]Scenario{s2030, s2050}, testAliasTable(), dir, nil, zerolog.Nop())
	require.NoError(t, dp.ExportScenarioData())

	file, err := os.Open(filepath.Join(dir, "pathways", "scenario_data", "scenario_data.csv"))
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 3) // header + two variables, not doubled
}

func TestExportFullDataPackage(t *testing.T) {
	dir := t.TempDir()
	dp := NewDataPackage([]Scenario{exportScenario("remind", "SSP2-Base", 2030)}, testAliasTable(), dir, nil, zerolog.Nop())
	dp.Version = "0.1.0"

	archive, err := dp.Export("my test package", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "my_test_package.zip"), archive)

	// Mapping artifact.
	mappingSrc, err := os.ReadFile(filepath.Join(dir, "pathways", "mapping", "mapping.yaml"))
	require.NoError(t, err)
	var mapping map[string]struct {
		ScenarioVariable string `yaml:"scenario variable"`
		Dataset          []map[string]string
	}
	require.NoError(t, yaml.Unmarshal(mappingSrc, &mapping))
	require.Contains(t, mapping, "Coal")
	assert.Equal(t, "FE|Coal", mapping["Coal"].ScenarioVariable)
	require.Len(t, mapping["Coal"].Dataset, 1)
	// Dataset entries carry exactly name, reference product and unit.
	assert.Len(t, mapping["Coal"].Dataset[0], 3)
	assert.Equal(t, "market for hard coal", mapping["Coal"].Dataset[0]["name"])
	assert.Equal(t, "hard coal", mapping["Coal"].Dataset[0]["reference product"])
	assert.Equal(t, "kilogram", mapping["Coal"].Dataset[0]["unit"])

	// Inventory export.
	_, err = os.Stat(filepath.Join(dir, "pathways", "inventories", "remind__SSP2-Base__2030", "activities.csv"))
	require.NoError(t, err)

	// Descriptor.
	descriptorSrc, err := os.ReadFile(filepath.Join(dir, "pathways", "datapackage.json"))
	require.NoError(t, err)
	var descriptor Descriptor
	require.NoError(t, json.Unmarshal(descriptorSrc, &descriptor))
	assert.Equal(t, "my_test_package", descriptor.Name)
	assert.Equal(t, "My test package", descriptor.Title)
	assert.NotEmpty(t, descriptor.ID)
	require.Len(t, descriptor.Scenarios, 1)
	assert.Equal(t, "REMIND - SSP2-Base", descriptor.Scenarios[0].Name)
	require.Len(t, descriptor.Contributors, 1)
	assert.Equal(t, "anonymous", descriptor.Contributors[0].Name)

	require.NotEmpty(t, descriptor.Resources)
	for _, res := range descriptor.Resources {
		assert.NotContains(t, res.Path, "pathways/")
		assert.Equal(t, res.Name, slugify(res.Name))
	}

	// Archive is a readable zip with the expected members.
	zr, err := zip.OpenReader(archive)
	require.NoError(t, err)
	defer zr.Close()
	members := map[string]struct{}{}
	for _, f := range zr.File {
		members[f.Name] = struct{}{}
	}
	assert.Contains(t, members, "datapackage.json")
	assert.Contains(t, members, "mapping/mapping.yaml")
	assert.Contains(t, members, "scenario_data/scenario_data.csv")
}

func TestExportClearsStaleArtifacts(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "pathways", "scenario_data", "old.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0o644))

	dp := NewDataPackage([]Scenario{exportScenario("remind", "SSP2-Base", 2030)}, testAliasTable(), dir, nil, zerolog.Nop())
	_, err := dp.Export("pkg", nil)
	require.NoError(t, err)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale artifacts must be cleared before export")
}

func TestExternalScenarioUnitsMergeOverBase(t *testing.T) {
	base := exportScenario("remind", "SSP2-Base", 2030)
	extArray := iamdata.New()
	extArray.Set("Methanol|From Coal", "World", 2030, 7.0)
	base.External = []ExternalConfig{{
		Name:  "e-fuels",
		Data:  extArray,
		Units: map[string]string{"Methanol|From Coal": "Mt/yr"},
	}}

	dir := t.TempDir()
	dp := NewDataPackage([]Scenario{base}, testAliasTable(), dir, nil, zerolog.Nop())
	require.NoError(t, dp.ExportScenarioData())

	file, err := os.Open(filepath.Join(dir, "pathways", "scenario_data", "scenario_data.csv"))
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)

	var found bool
	for _, record := range records[1:] {
		if record[0] == "Methanol|From Coal" {
			found = true
			assert.Equal(t, "Mt/yr", record[4])
			assert.Equal(t, "REMIND", record[5])
			assert.Equal(t, "SSP2-Base - e-fuels", record[6])
		}
	}
	assert.True(t, found, "external scenario rows must be present")
}

func TestSplitScenarioLabel(t *testing.T) {
	model, pathway := splitScenarioLabel("REMIND - SSP2-Base")
	assert.Equal(t, "REMIND", model)
	assert.Equal(t, "SSP2-Base", pathway)

	model, pathway = splitScenarioLabel("IMAGE - SSP1 - low demand")
	assert.Equal(t, "IMAGE", model)
	assert.Equal(t, "SSP1 - low demand", pathway)
}
