package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rl1809/cocktail-pantry/internal/core/domain"
)

// unitsFile is the YAML layout of UNITS_FILE:
//
//	units:
//	  - code: barspoon
//	    class: liquid
//	    factor: 5
//	    aliases: [bsp, bar spoon]
type unitsFile struct {
	Units []domain.UnitDefinition `yaml:"units" validate:"dive"`
}

// LoadUnitsFile reads a unit table to overlay on the built-in catalog.
// An empty path yields no definitions.
func LoadUnitsFile(path string) ([]domain.UnitDefinition, error) {
	if path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read units file: %w", err)
	}

	var file unitsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse units file %s: %w", path, err)
	}
	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("invalid units file %s: %w", path, err)
	}
	return file.Units, nil
}
