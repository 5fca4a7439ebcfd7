package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default tuning invalid: %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	raw := []byte("grid:\n  width: 16\n  height: 12\n  root_x: 3\n  root_y: 4\neconomy:\n  tax_rate: 0.2\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Grid.Width != 16 || got.Grid.RootY != 4 {
		t.Errorf("grid = %+v", got.Grid)
	}
	if got.Economy.TaxRate != 0.2 {
		t.Errorf("tax rate = %v, expected 0.2", got.Economy.TaxRate)
	}
	if got.Economy.AffordabilityEpsilon != 1e-4 {
		t.Errorf("epsilon = %v, expected default 1e-4", got.Economy.AffordabilityEpsilon)
	}
	if got.Ticks.ShortTicksPerLong != Default().Ticks.ShortTicksPerLong {
		t.Errorf("ticks should keep defaults, got %+v", got.Ticks)
	}
}

func TestLoadRejectsRootOutsideGrid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("grid:\n  width: 8\n  height: 8\n  root_x: 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for a root outside the grid")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
