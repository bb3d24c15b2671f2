// Pathways CLI - prospective LCI datapackage builder.
//
// Usage:
//   pathways export --scenarios scenarios.yaml --name my_package
//   pathways mapping --database inventory.csv --category powerplant
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/dbantje/premise/internal/inventory"
	"github.com/dbantje/premise/internal/pathways"
	"github.com/dbantje/premise/pkg/iamdata"
	"github.com/dbantje/premise/pkg/lci"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	app := &cli.App{
		Name:    "pathways",
		Usage:   "Build prospective-LCI scenario datapackages",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"PATHWAYS_LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			level, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", c.String("log-level"), err)
			}
			zerolog.SetGlobalLevel(level)
			return nil
		},

		Commands: []*cli.Command{
			exportCommand(),
			mappingCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export a scenario datapackage",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "scenarios",
				Aliases:  []string{"s"},
				Usage:    "Path to the scenarios config YAML",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Datapackage name",
				Value: "pathways",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory",
				Value:   ".",
			},
			&cli.StringSliceFlag{
				Name:  "contributor",
				Usage: "Contributor as name:email (repeatable)",
			},
		},
		Action: runExport,
	}
}

func runExport(c *cli.Context) error {
	cfg, err := loadRunConfig(c.String("scenarios"))
	if err != nil {
		return err
	}

	scenarios, err := cfg.buildScenarios()
	if err != nil {
		return err
	}
	log.Info().Int("entries", len(scenarios)).Msg("scenarios loaded")

	fsys, dir := inventory.AliasTableFS()
	table, err := pathways.LoadAliasTable(fsys, dir)
	if err != nil {
		return fmt.Errorf("failed to load alias table: %w", err)
	}

	dp := pathways.NewDataPackage(scenarios, table, c.String("output"), nil, log.Logger)
	dp.Version = version

	archive, err := dp.Export(c.String("name"), parseContributors(c.StringSlice("contributor")))
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Printf("Data package saved at %s\n", archive)
	return nil
}

func parseContributors(raw []string) []pathways.Contributor {
	var contributors []pathways.Contributor
	for _, entry := range raw {
		name, email, _ := strings.Cut(entry, ":")
		contributors = append(contributors, pathways.Contributor{Name: name, Email: email})
	}
	return contributors
}

func mappingCommand() *cli.Command {
	return &cli.Command{
		Name:  "mapping",
		Usage: "Print a technology map for one category",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database",
				Aliases:  []string{"d"},
				Usage:    "Path to the inventory CSV",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "category",
				Value: "powerplant",
				Usage: "Category (powerplant, powerplant-fuel, fuel, cement-fuel, material, daccs, carbon-storage, metals, metals-in-use, gains, gains-iam)",
			},
			&cli.StringFlag{
				Name:  "db-version",
				Value: "3.9",
				Usage: "Biosphere flow dictionary version (3.8, 3.9)",
			},
		},
		Action: runMapping,
	}
}

func runMapping(c *cli.Context) error {
	db, err := lci.LoadDatabase(c.String("database"))
	if err != nil {
		return err
	}
	log.Info().Int("records", len(db)).Msg("inventory loaded")

	set, err := inventory.NewSet(db, c.String("db-version"), inventory.WithLogger(log.Logger))
	if err != nil {
		return fmt.Errorf("failed to load filter catalogues: %w", err)
	}

	var mapping map[string]inventory.NameSet
	switch c.String("category") {
	case "powerplant":
		mapping, err = set.PowerplantMap()
	case "powerplant-fuel":
		mapping, err = set.PowerplantFuelsMap()
	case "fuel":
		mapping, err = set.FuelMap()
	case "cement-fuel":
		mapping, err = set.CementFuelsMap()
	case "material":
		mapping, err = set.MaterialMap()
	case "daccs":
		mapping, err = set.DACCSMap()
	case "carbon-storage":
		mapping, err = set.CarbonStorageMap()
	case "metals":
		mapping, err = set.MetalsMap()
	case "metals-in-use":
		mapping, err = set.MetalsInUseMap()
	case "gains":
		mapping, err = set.GainsMap()
	case "gains-iam":
		var sectors map[string]inventory.NameSet
		sectors, err = set.GainsMap()
		if err == nil {
			mapping = set.GainsIAMMap(sectors)
		}
	default:
		return fmt.Errorf("unknown category %q", c.String("category"))
	}
	if err != nil {
		return fmt.Errorf("failed to build mapping: %w", err)
	}

	printable := make(map[string][]string, len(mapping))
	for tech, names := range mapping {
		sorted := names.Names()
		sort.Strings(sorted)
		printable[tech] = sorted
	}
	out, err := yaml.Marshal(printable)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

// runConfig is the scenarios config file: a shared inventory plus the
// (model, pathway) combinations and the years each is expanded to.
type runConfig struct {
	Database string `yaml:"database"`
	Years    []int  `yaml:"years"`

	Scenarios []struct {
		Model   string `yaml:"model"`
		Pathway string `yaml:"pathway"`
		Data    string `yaml:"data"`
	} `yaml:"scenarios"`
}

func loadRunConfig(filename string) (*runConfig, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenarios config %s: %w", filename, err)
	}
	var cfg runConfig
	if err := yaml.Unmarshal(src, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse scenarios config: %w", err)
	}
	if len(cfg.Scenarios) == 0 {
		return nil, fmt.Errorf("scenarios config declares no scenarios")
	}
	if len(cfg.Years) == 0 {
		return nil, fmt.Errorf("scenarios config declares no years")
	}
	return &cfg, nil
}

// buildScenarios expands years x scenarios into entries, sharing the
// loaded inventory and each scenario's data array across years.
func (cfg *runConfig) buildScenarios() ([]pathways.Scenario, error) {
	db, err := lci.LoadDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	arrays := make(map[string]*iamdata.DataArray, len(cfg.Scenarios))
	for _, s := range cfg.Scenarios {
		if _, ok := arrays[s.Data]; ok {
			continue
		}
		array, err := iamdata.LoadDataArray(s.Data)
		if err != nil {
			return nil, err
		}
		arrays[s.Data] = array
	}

	var scenarios []pathways.Scenario
	for _, year := range cfg.Years {
		for _, s := range cfg.Scenarios {
			scenarios = append(scenarios, pathways.Scenario{
				Model:    s.Model,
				Pathway:  s.Pathway,
				Year:     year,
				Database: db,
				Data:     arrays[s.Data],
			})
		}
	}
	return scenarios, nil
}
