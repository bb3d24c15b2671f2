package pathways

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/dbantje/premise/pkg/iamdata"
)

// MatrixWriter persists one scenario's transformed inventory. The real
// matrix construction is owned by an external collaborator; this interface
// is its seam.
type MatrixWriter interface {
	WriteMatrices(s Scenario, dir string) error
}

// CSVMatrixWriter is the default MatrixWriter: it writes the activity
// index of each scenario's inventory as CSV.
type CSVMatrixWriter struct{}

func (CSVMatrixWriter) WriteMatrices(s Scenario, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create inventory directory %s: %w", dir, err)
	}

	file, err := os.Create(filepath.Join(dir, "activities.csv"))
	if err != nil {
		return fmt.Errorf("failed to create activity index: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"name", "reference product", "unit", "location", "categories"}); err != nil {
		return fmt.Errorf("failed to write activity index header: %w", err)
	}
	for _, act := range s.Database {
		if err := w.Write([]string{act.Name, act.ReferenceProduct, act.Unit, act.Location, act.Categories}); err != nil {
			return fmt.Errorf("failed to write activity index row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// DataPackage assembles the pathways export: mapping, scenario data,
// per-scenario inventories and the descriptor, zipped into one archive.
type DataPackage struct {
	Scenarios []Scenario
	// OutputDir is the directory the pathways/ tree is created in,
	// typically the working directory.
	OutputDir string
	Writer    MatrixWriter
	Logger    zerolog.Logger
	Version   string

	reconciler *Reconciler
}

// NewDataPackage wires a datapackage builder. writer may be nil, in which
// case the CSV activity-index writer is used.
func NewDataPackage(scenarios []Scenario, table []AliasEntry, outputDir string, writer MatrixWriter, logger zerolog.Logger) *DataPackage {
	if writer == nil {
		writer = CSVMatrixWriter{}
	}
	return &DataPackage{
		Scenarios:  scenarios,
		OutputDir:  outputDir,
		Writer:     writer,
		Logger:     logger,
		reconciler: NewReconciler(table, logger),
	}
}

func (dp *DataPackage) root() string {
	return filepath.Join(dp.OutputDir, "pathways")
}

// Export runs the full pipeline: clear the output tree, write inventories,
// scenario data and mapping, build the descriptor and zip the result.
// The pre-export clear makes re-runs idempotent.
func (dp *DataPackage) Export(name string, contributors []Contributor) (string, error) {
	if err := os.RemoveAll(dp.root()); err != nil {
		return "", fmt.Errorf("failed to clear output directory: %w", err)
	}

	for _, s := range dp.Scenarios {
		dir := filepath.Join(dp.root(), "inventories",
			fmt.Sprintf("%s__%s__%d", s.Model, s.Pathway, s.Year))
		if err := dp.Writer.WriteMatrices(s, dir); err != nil {
			return "", fmt.Errorf("failed to export inventory for %s: %w", s.Label(), err)
		}
	}
	dp.Logger.Info().Int("scenarios", len(dp.Scenarios)).Msg("inventories exported")

	if err := dp.ExportScenarioData(); err != nil {
		return "", err
	}

	mapping, err := dp.reconciler.BuildVariableMapping(dp.Scenarios)
	if err != nil {
		return "", err
	}
	if err := dp.ExportMapping(mapping); err != nil {
		return "", err
	}
	dp.Logger.Info().Int("variables", len(mapping)).Msg("variable mapping exported")

	archive, err := dp.Build(name, contributors)
	if err != nil {
		return "", err
	}
	dp.Logger.Info().Str("archive", archive).Msg("data package saved")
	return archive, nil
}

// ExportScenarioData concatenates all scenario arrays along the scenario
// axis and writes the flattened table to scenario_data/scenario_data.csv.
// The composite scenario label is split back into model and pathway
// columns; rows with missing values are dropped.
func (dp *DataPackage) ExportScenarioData() error {
	slices := make([]iamdata.Slice, 0, len(dp.Scenarios))
	for _, s := range dp.Scenarios {
		if s.Data == nil {
			continue
		}
		slices = append(slices, iamdata.Slice{Label: s.Label(), Array: s.Data})
		for _, ext := range s.External {
			if ext.Data == nil {
				continue
			}
			array := ext.Data
			for variable, unit := range ext.Units {
				array.Units[variable] = unit
			}
			slices = append(slices, iamdata.Slice{
				Label: s.Label() + " - " + ext.Name,
				Array: array,
			})
		}
	}

	concatenated := iamdata.Concat(slices)
	rows := concatenated.Flatten()

	dir := filepath.Join(dp.root(), "scenario_data")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create scenario data directory: %w", err)
	}

	file, err := os.Create(filepath.Join(dir, "scenario_data.csv"))
	if err != nil {
		return fmt.Errorf("failed to create scenario data file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"variables", "region", "year", "value", "unit", "model", "pathway"}); err != nil {
		return fmt.Errorf("failed to write scenario data header: %w", err)
	}
	for _, row := range rows {
		model, pathway := splitScenarioLabel(row.Scenario)
		record := []string{
			row.Variable,
			row.Region,
			strconv.Itoa(row.Year),
			decimal.NewFromFloat(row.Value).String(),
			row.Unit,
			model,
			pathway,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write scenario data row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush scenario data: %w", err)
	}

	dp.Logger.Info().Int("rows", len(rows)).Msg("scenario data exported")
	return nil
}

// splitScenarioLabel splits "MODEL - pathway[- external...]" on the first
// separator only, so pathway names containing the separator survive.
func splitScenarioLabel(label string) (model, pathway string) {
	parts := strings.SplitN(label, " - ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// ExportMapping writes the variable mapping to mapping/mapping.yaml.
func (dp *DataPackage) ExportMapping(mapping VariableMapping) error {
	dir := filepath.Join(dp.root(), "mapping")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create mapping directory: %w", err)
	}

	out, err := yaml.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal variable mapping: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "mapping.yaml"), out, 0o644); err != nil {
		return fmt.Errorf("failed to write variable mapping: %w", err)
	}
	return nil
}
