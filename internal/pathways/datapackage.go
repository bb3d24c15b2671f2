package pathways

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Contributor is one datapackage descriptor contributor.
type Contributor struct {
	Title string `json:"title"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

var anonymousContributor = Contributor{
	Title: "undefined",
	Name:  "anonymous",
	Email: "anonymous@anonymous.com",
}

// Resource is one file entry of the descriptor. Paths are relative to the
// package root, without the pathways/ prefix.
type Resource struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Profile   string `json:"profile"`
	Format    string `json:"format"`
	Mediatype string `json:"mediatype"`
	Encoding  string `json:"encoding"`
}

// scenarioDescriptor names one scenario in the descriptor.
type scenarioDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type license struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Descriptor is the datapackage.json document.
type Descriptor struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Version      string               `json:"version,omitempty"`
	Scenarios    []scenarioDescriptor `json:"scenarios"`
	Keywords     []string             `json:"keywords"`
	Licenses     []license            `json:"licenses"`
	Contributors []Contributor        `json:"contributors"`
	Resources    []Resource           `json:"resources"`
}

// Build writes datapackage.json and zips the pathways tree into
// <name>.zip next to it. It returns the archive path.
func (dp *DataPackage) Build(name string, contributors []Contributor) (string, error) {
	resources, err := inferResources(dp.root())
	if err != nil {
		return "", err
	}

	if len(contributors) == 0 {
		contributors = []Contributor{anonymousContributor}
	} else {
		for i := range contributors {
			if contributors[i].Title == "" {
				contributors[i].Title = anonymousContributor.Title
			}
			if contributors[i].Name == "" {
				contributors[i].Name = anonymousContributor.Name
			}
			if contributors[i].Email == "" {
				contributors[i].Email = anonymousContributor.Email
			}
		}
	}

	descriptor := Descriptor{
		ID:          uuid.NewString(),
		Name:        slugify(name),
		Title:       capitalize(name),
		Description: fmt.Sprintf("Data package generated by premise %s.", dp.Version),
		Version:     dp.Version,
		Keywords:    []string{"ecoinvent", "scenario", "data package", "premise", "pathways"},
		Licenses: []license{{
			ID:    "CC0-1.0",
			Title: "CC0 1.0",
			URL:   "https://creativecommons.org/publicdomain/zero/1.0/",
		}},
		Contributors: contributors,
		Resources:    resources,
	}
	for _, s := range dp.Scenarios {
		descriptor.Scenarios = append(descriptor.Scenarios, scenarioDescriptor{
			Name:        fmt.Sprintf("%s - %s", strings.ToUpper(s.Model), s.Pathway),
			Description: s.Description(),
		})
	}

	out, err := json.MarshalIndent(descriptor, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal datapackage descriptor: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dp.root(), "datapackage.json"), out, 0o644); err != nil {
		return "", fmt.Errorf("failed to write datapackage descriptor: %w", err)
	}

	archive := filepath.Join(dp.OutputDir, slugify(name)+".zip")
	if err := zipTree(dp.root(), archive); err != nil {
		return "", err
	}
	return archive, nil
}

// inferResources walks the pathways tree and registers every CSV and YAML
// file, with slugified resource names and paths relative to the tree root.
func inferResources(root string) ([]Resource, error) {
	var resources []Resource
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		var format, mediatype, profile string
		switch filepath.Ext(path) {
		case ".csv":
			format, mediatype, profile = "csv", "text/csv", "tabular-data-resource"
		case ".yaml", ".yml":
			format, mediatype, profile = "yaml", "text/yaml", "data-resource"
		default:
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		resources = append(resources, Resource{
			Name:      slugify(base),
			Path:      rel,
			Profile:   profile,
			Format:    format,
			Mediatype: mediatype,
			Encoding:  "utf-8",
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to infer resources: %w", err)
	}
	return resources, nil
}

func zipTree(root, archive string) error {
	file, err := os.Create(archive)
	if err != nil {
		return fmt.Errorf("failed to create archive %s: %w", archive, err)
	}
	defer file.Close()

	zw := zip.NewWriter(file)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(w, src)
		return err
	})
	if err != nil {
		zw.Close()
		return fmt.Errorf("failed to zip %s: %w", root, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}

func slugify(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

func capitalize(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
