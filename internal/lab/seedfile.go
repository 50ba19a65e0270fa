package lab

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultSeeds is the lab set used when no seed file exists.
var DefaultSeeds = []SeedLab{
	{Name: "Lab 120", Computers: 20},
	{Name: "Lab L44", Computers: 15},
	{Name: "Lab 170", Computers: 10},
	{Name: "Lab 210", Computers: 10},
	{Name: "Lab 128", Computers: 10},
}

type seedFile struct {
	Labs []SeedLab `yaml:"labs"`
}

// ParseSeeds decodes a YAML document of the form
//
//	labs:
//	  - name: Lab 120
//	    computers: 20
func ParseSeeds(data []byte) ([]SeedLab, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse lab seed file: %w", err)
	}
	if err := ValidateSeeds(f.Labs); err != nil {
		return nil, err
	}
	return f.Labs, nil
}

// LoadSeeds reads path, falling back to DefaultSeeds when it does not exist.
func LoadSeeds(path string) ([]SeedLab, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSeeds, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read lab seed file: %w", err)
	}
	return ParseSeeds(data)
}
