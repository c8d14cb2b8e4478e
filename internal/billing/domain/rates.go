package domain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default utility rates in THB.
const (
	DefaultElectricityPerUnit = 5.0
	DefaultWaterPerUnit       = 18.0
	DefaultFixedWaterPrice    = 100.0
)

// RateTable holds the per-unit utility rates applied by the billing
// engine. Rates are configuration, never derived from rooms or buildings.
type RateTable struct {
	ElectricityPerUnit float64 `yaml:"electricity_per_unit"`
	WaterPerUnit       float64 `yaml:"water_per_unit"`
	DefaultFixedWater  float64 `yaml:"default_fixed_water"`
}

// DefaultRateTable returns the standard dormitory rates.
func DefaultRateTable() RateTable {
	return RateTable{
		ElectricityPerUnit: DefaultElectricityPerUnit,
		WaterPerUnit:       DefaultWaterPerUnit,
		DefaultFixedWater:  DefaultFixedWaterPrice,
	}
}

// Validate rejects negative rates.
func (t RateTable) Validate() error {
	if t.ElectricityPerUnit < 0 || t.WaterPerUnit < 0 || t.DefaultFixedWater < 0 {
		return ErrNegativeRate
	}
	return nil
}

// LoadRateTable reads a YAML rate file. Missing file or omitted fields
// fall back to the defaults.
func LoadRateTable(path string) (RateTable, error) {
	table := DefaultRateTable()
	if path == "" {
		return table, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return table, nil
		}
		return RateTable{}, fmt.Errorf("read rate table: %w", err)
	}
	var file struct {
		ElectricityPerUnit *float64 `yaml:"electricity_per_unit"`
		WaterPerUnit       *float64 `yaml:"water_per_unit"`
		DefaultFixedWater  *float64 `yaml:"default_fixed_water"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return RateTable{}, fmt.Errorf("parse rate table: %w", err)
	}
	if file.ElectricityPerUnit != nil {
		table.ElectricityPerUnit = *file.ElectricityPerUnit
	}
	if file.WaterPerUnit != nil {
		table.WaterPerUnit = *file.WaterPerUnit
	}
	if file.DefaultFixedWater != nil {
		table.DefaultFixedWater = *file.DefaultFixedWater
	}
	if err := table.Validate(); err != nil {
		return RateTable{}, err
	}
	return table, nil
}
