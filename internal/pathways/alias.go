package pathways

import (
	"fmt"
	"io/fs"
	"path"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/dbantje/premise/internal/actfilter"
)

// AliasEntry bridges one canonical variable to its per-model scenario
// variable names and the inventory filter resolving it.
type AliasEntry struct {
	Canonical string
	// Aliases maps IAM model name to that model's scenario variable.
	Aliases map[string]string
	Filter  actfilter.Definition
}

// LoadAliasTable reads all alias YAML files under dir in fsys. Files are
// visited in sorted name order and entries within a file in document
// order, so the reconciler's first-writer-wins rule is deterministic.
// Entries missing either iam_aliases or ecoinvent_aliases are skipped.
func LoadAliasTable(fsys fs.FS, dir string) ([]AliasEntry, error) {
	names, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list alias files: %w", err)
	}
	sort.Strings(names)

	var table []AliasEntry
	for _, name := range names {
		src, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read alias file %s: %w", name, err)
		}
		entries, err := parseAliasFile(src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		table = append(table, entries...)
	}

	return table, nil
}

func parseAliasFile(src []byte) ([]AliasEntry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse alias table: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("alias table root must be a mapping")
	}

	var entries []AliasEntry
	for i := 0; i+1 < len(root.Content); i += 2 {
		var canonical string
		if err := root.Content[i].Decode(&canonical); err != nil {
			return nil, fmt.Errorf("failed to decode canonical variable name: %w", err)
		}

		var body struct {
			IAMAliases       map[string]string     `yaml:"iam_aliases"`
			EcoinventAliases *actfilter.Definition `yaml:"ecoinvent_aliases"`
		}
		if err := root.Content[i+1].Decode(&body); err != nil {
			return nil, fmt.Errorf("failed to decode alias entry %q: %w", canonical, err)
		}

		// Entries need both sides of the bridge to be usable.
		if len(body.IAMAliases) == 0 || body.EcoinventAliases == nil {
			continue
		}

		entries = append(entries, AliasEntry{
			Canonical: canonical,
			Aliases:   body.IAMAliases,
			Filter:    *body.EcoinventAliases,
		})
	}

	return entries, nil
}
