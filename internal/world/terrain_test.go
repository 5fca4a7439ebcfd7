package world

import "testing"

func TestGenerateTerrainDeterministic(t *testing.T) {
	cfg := TerrainConfig{Width: 24, Height: 16, Seed: 42, LandValueScale: 0.5, VentCount: 4, VentSpacing: 5}
	a := GenerateTerrain(cfg)
	b := GenerateTerrain(cfg)

	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			if a.LandValue[y][x] != b.LandValue[y][x] {
				t.Fatalf("land value differs at (%d,%d)", x, y)
			}
			if v := a.LandValue[y][x]; v < 0 || v > cfg.LandValueScale {
				t.Fatalf("land value %f out of range at (%d,%d)", v, x, y)
			}
		}
	}
	if len(a.Vents) != len(b.Vents) {
		t.Fatalf("vent count differs: %d vs %d", len(a.Vents), len(b.Vents))
	}
}

func TestGenerateTerrainVentSpacing(t *testing.T) {
	cfg := TerrainConfig{Width: 40, Height: 40, Seed: 7, LandValueScale: 1, VentCount: 6, VentSpacing: 6}
	tr := GenerateTerrain(cfg)
	if len(tr.Vents) == 0 {
		t.Fatal("expected at least one vent")
	}
	for i, p := range tr.Vents {
		for _, q := range tr.Vents[i+1:] {
			if max(abs(p.X-q.X), abs(p.Y-q.Y)) < cfg.VentSpacing {
				t.Errorf("vents %v and %v closer than %d", p, q, cfg.VentSpacing)
			}
		}
	}
}
