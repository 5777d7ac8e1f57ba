// assessment.go
package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Assessment kinds served by the application.
const (
	KindAttention      = "attention"
	KindMemory         = "memory"
	KindProblemSolving = "problem-solving"
	KindHandwriting    = "handwriting"
	KindSpeech         = "speech"
)

// Assessment struct to match the YAML structure
type Assessment struct {
	ID           string `yaml:"id"`
	Kind         string `yaml:"kind"`
	Title        string `yaml:"title"`
	Category     string `yaml:"category"`
	Description  string `yaml:"description"`
	Instructions string `yaml:"instructions"`
}

// Catalog holds every assessment listed on the index page.
type Catalog struct {
	Assessments []Assessment `yaml:"assessments"`
}

// LoadCatalog reads and parses the assessments.yaml file
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	return ParseCatalog(data)
}

// ParseCatalog decodes a catalog document and rejects unknown kinds.
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog YAML: %w", err)
	}

	seen := make(map[string]bool, len(catalog.Assessments))
	for _, a := range catalog.Assessments {
		if a.ID == "" {
			return nil, fmt.Errorf("catalog entry %q has no id", a.Title)
		}
		if seen[a.ID] {
			return nil, fmt.Errorf("duplicate catalog id %q", a.ID)
		}
		seen[a.ID] = true
		if !IsKnownKind(a.Kind) {
			return nil, fmt.Errorf("catalog entry %q has unknown kind %q", a.ID, a.Kind)
		}
	}

	return &catalog, nil
}

// ByCategory groups assessments for the index page, preserving file order.
func (c *Catalog) ByCategory() ([]string, map[string][]Assessment) {
	var order []string
	groups := make(map[string][]Assessment)
	for _, a := range c.Assessments {
		if _, ok := groups[a.Category]; !ok {
			order = append(order, a.Category)
		}
		groups[a.Category] = append(groups[a.Category], a)
	}
	return order, groups
}

// Find returns the assessment with the given id.
func (c *Catalog) Find(id string) (Assessment, bool) {
	for _, a := range c.Assessments {
		if a.ID == id {
			return a, true
		}
	}
	return Assessment{}, false
}

func IsKnownKind(kind string) bool {
	switch kind {
	case KindAttention, KindMemory, KindProblemSolving, KindHandwriting, KindSpeech:
		return true
	}
	return false
}
