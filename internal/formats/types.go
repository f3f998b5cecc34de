package formats

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Family is the kind of source document a target applies to
type Family string

const (
	FamilyText         Family = "text"
	FamilySpreadsheet  Family = "spreadsheet"
	FamilyPresentation Family = "presentation"
	FamilyDrawing      Family = "drawing"
)

// Format describes one export target the converter understands
type Format struct {
	// Name is the --convert-to extension (set during YAML unmarshaling)
	Name string `yaml:"-" json:"name"`

	Description string   `yaml:"description" json:"description"`
	Families    []Family `yaml:"families" json:"families,omitempty"`

	// DefaultFilter is the export filter LibreOffice picks for the name alone
	DefaultFilter string `yaml:"default_filter" json:"default_filter,omitempty"`

	// Known is false for allowed names missing from the catalog
	Known bool `yaml:"-" json:"known"`
}

// Catalog is the decoded catalog file
type Catalog struct {
	Formats []Format `yaml:"-" json:"formats"` // ordered as in the YAML
}

// UnmarshalYAML keeps the catalog order of the formats mapping
func (c *Catalog) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("catalog: expected mapping, got %v", node.Tag)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "formats" {
			continue
		}
		formatsNode := node.Content[i+1]
		if formatsNode.Kind != yaml.MappingNode {
			return fmt.Errorf("catalog: formats must be a mapping")
		}
		for j := 0; j+1 < len(formatsNode.Content); j += 2 {
			var f Format
			if err := formatsNode.Content[j+1].Decode(&f); err != nil {
				return fmt.Errorf("catalog: format %s: %w", formatsNode.Content[j].Value, err)
			}
			f.Name = formatsNode.Content[j].Value
			f.Known = true
			c.Formats = append(c.Formats, f)
		}
		break
	}
	return nil
}
