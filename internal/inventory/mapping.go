package inventory

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/dbantje/premise/internal/actfilter"
)

// LoadMapping reads a variable-definition YAML document and returns the
// filter definition stored under the given alias key for each technology.
// Technologies without that key are skipped, so one catalogue file can
// serve several alias kinds (ecoinvent_aliases, ecoinvent_fuel_aliases).
func LoadMapping(src []byte, key string) (map[string]actfilter.Definition, error) {
	var doc map[string]map[string]yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse variable definitions: %w", err)
	}

	mapping := make(map[string]actfilter.Definition)
	for tech, aliases := range doc {
		node, ok := aliases[key]
		if !ok {
			continue
		}
		var def actfilter.Definition
		if err := node.Decode(&def); err != nil {
			return nil, fmt.Errorf("failed to decode %s for %q: %w", key, tech, err)
		}
		if def.Include.Empty() {
			return nil, fmt.Errorf("%s for %q: %w", key, tech, actfilter.ErrEmptyFilter)
		}
		mapping[tech] = def
	}

	return mapping, nil
}

// LoadAliases reads plain string aliases (for example gains_aliases_IAM)
// from a variable-definition YAML document.
func LoadAliases(src []byte, key string) (map[string]string, error) {
	var doc map[string]map[string]yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse variable definitions: %w", err)
	}

	aliases := make(map[string]string)
	for tech, fields := range doc {
		node, ok := fields[key]
		if !ok {
			continue
		}
		var alias string
		if err := node.Decode(&alias); err != nil {
			return nil, fmt.Errorf("failed to decode %s for %q: %w", key, tech, err)
		}
		aliases[tech] = alias
	}

	return aliases, nil
}

func loadMappingFile(path, key string) (map[string]actfilter.Definition, error) {
	src, err := dataFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	mapping, err := LoadMapping(src, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mapping, nil
}
