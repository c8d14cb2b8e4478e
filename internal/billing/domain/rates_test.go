package domain

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRateTable_MissingFileUsesDefaults(t *testing.T) {
	table, err := LoadRateTable(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadRateTable: %v", err)
	}
	if table != DefaultRateTable() {
		t.Fatalf("expected defaults, got %+v", table)
	}
}

func TestLoadRateTable_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	if err := os.WriteFile(path, []byte("electricity_per_unit: 6.5\n"), 0o600); err != nil {
		t.Fatalf("write rates: %v", err)
	}

	table, err := LoadRateTable(path)
	if err != nil {
		t.Fatalf("LoadRateTable: %v", err)
	}
	if table.ElectricityPerUnit != 6.5 {
		t.Fatalf("expected overridden electricity rate, got %v", table.ElectricityPerUnit)
	}
	if table.WaterPerUnit != DefaultWaterPerUnit {
		t.Fatalf("expected default water rate, got %v", table.WaterPerUnit)
	}
	if table.DefaultFixedWater != DefaultFixedWaterPrice {
		t.Fatalf("expected default fixed water, got %v", table.DefaultFixedWater)
	}
}

func TestLoadRateTable_RejectsNegativeRates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	if err := os.WriteFile(path, []byte("water_per_unit: -1\n"), 0o600); err != nil {
		t.Fatalf("write rates: %v", err)
	}
	if _, err := LoadRateTable(path); err == nil {
		t.Fatal("expected error for negative rate")
	}
}
