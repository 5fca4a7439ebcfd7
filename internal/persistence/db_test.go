package persistence

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talgya/gridtown/internal/catalog"
	"github.com/talgya/gridtown/internal/economy"
	"github.com/talgya/gridtown/internal/engine"
	"github.com/talgya/gridtown/internal/tuning"
	"github.com/talgya/gridtown/internal/world"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "city.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadEmpty(t *testing.T) {
	db := openTestDB(t)
	ok, err := db.HasCity()
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("fresh database reports a city")
	}
	if _, err := db.LoadCity(tuning.Default()); !errors.Is(err, ErrNoCity) {
		t.Fatalf("got %v, expected ErrNoCity", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	tun := tuning.Default()
	c := engine.NewCity(tun)
	terrain := world.GenerateTerrain(world.TerrainConfig{
		Width:          tun.Grid.Width,
		Height:         tun.Grid.Height,
		Seed:           42,
		LandValueScale: tun.Terrain.LandValueScale,
		VentCount:      3,
		VentSpacing:    8,
	})
	c.ApplyTerrain(terrain)
	catalog.SeedFormations(c, terrain)
	catalog.StarterTown(c)
	c.Notify("Hello", "first note")

	e := engine.NewEngine()
	e.Drive(c, nil)
	e.CatchUp(2 * e.ShortTicksPerLong)

	db := openTestDB(t)
	if err := db.SaveCity(c); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := db.LoadCity(tun)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.ID != c.ID {
		t.Errorf("id: got %s, expected %s", loaded.ID, c.ID)
	}
	if loaded.Tick != c.Tick || loaded.TerrainSeed != 42 {
		t.Errorf("meta: got tick %d seed %d, expected %d and 42", loaded.Tick, loaded.TerrainSeed, c.Tick)
	}
	if math.Abs(loaded.Happiness-c.Happiness) > 1e-12 {
		t.Errorf("happiness: got %v, expected %v", loaded.Happiness, c.Happiness)
	}
	if len(loaded.Buildings) != len(c.Buildings) {
		t.Fatalf("got %d buildings, expected %d", len(loaded.Buildings), len(c.Buildings))
	}
	for _, b := range c.Buildings {
		got := loaded.Building(b.ID)
		if got == nil {
			t.Errorf("building %d (%s) missing after load", b.ID, b.Kind)
			continue
		}
		if got.Kind != b.Kind || got.X != b.X || got.Y != b.Y {
			t.Errorf("building %d: got %s at (%d,%d), expected %s at (%d,%d)",
				b.ID, got.Kind, got.X, got.Y, b.Kind, b.X, b.Y)
		}
		if got.RoadConnected != b.RoadConnected || got.PowerConnected != b.PowerConnected {
			t.Errorf("building %d: connectivity differs after load", b.ID)
		}
		if got.UpkeepEfficiency != b.UpkeepEfficiency || got.Failed != b.Failed {
			t.Errorf("building %d: economy state differs after load", b.ID)
		}
	}
	if bad := loaded.VerifyConnectivity(); len(bad) != 0 {
		t.Fatalf("connectivity mismatch after load: %v", bad)
	}

	for _, rt := range c.Resources.Types() {
		want, got := c.Resources.Get(rt), loaded.Resources.Get(rt)
		if math.Abs(want.Amount-got.Amount) > 1e-9 {
			t.Errorf("%s amount: got %v, expected %v", rt, got.Amount, want.Amount)
		}
		if want.Capacity != got.Capacity {
			t.Errorf("%s capacity: got %v, expected %v", rt, got.Capacity, want.Capacity)
		}
	}
	if loaded.Resources.Get(economy.Coal).AutoBuyBelow != 0.1 {
		t.Error("auto-trade thresholds not restored")
	}

	for _, p := range terrain.Vents {
		if loaded.LandValue(p.X, p.Y) != c.LandValue(p.X, p.Y) {
			t.Errorf("land value at vent: got %v, expected %v", loaded.LandValue(p.X, p.Y), c.LandValue(p.X, p.Y))
		}
	}

	notes := loaded.Notifications.All()
	if len(notes) != c.Notifications.Len() || notes[0].Title != "Hello" {
		t.Errorf("notifications not restored: %+v", notes)
	}
}

func TestSaveReplaces(t *testing.T) {
	tun := tuning.Default()
	c := engine.NewCity(tun)
	road, err := catalog.Build(c, catalog.Road, tun.Grid.RootX+1, tun.Grid.RootY)
	if err != nil {
		t.Fatal(err)
	}
	db := openTestDB(t)
	if err := db.SaveCity(c); err != nil {
		t.Fatal(err)
	}
	if err := catalog.Demolish(c, road); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveCity(c); err != nil {
		t.Fatal(err)
	}

	loaded, err := db.LoadCity(tun)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Buildings) != 1 {
		t.Fatalf("got %d buildings, expected only the root", len(loaded.Buildings))
	}
}

func TestLoadRejectsGridMismatch(t *testing.T) {
	tun := tuning.Default()
	db := openTestDB(t)
	if err := db.SaveCity(engine.NewCity(tun)); err != nil {
		t.Fatal(err)
	}

	other := tun
	other.Grid.Width = 32
	other.Grid.Height = 32
	other.Grid.RootX, other.Grid.RootY = 16, 16
	if _, err := db.LoadCity(other); err == nil {
		t.Fatal("expected grid size mismatch error")
	}
}

func TestMeta(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveMeta("mayor", "ada"); err != nil {
		t.Fatal(err)
	}
	v, err := db.GetMeta("mayor")
	if err != nil {
		t.Fatal(err)
	}
	if v != "ada" {
		t.Fatalf("got %q, expected ada", v)
	}
}

func TestLoadRejectsCorruptMeta(t *testing.T) {
	tun := tuning.Default()
	for _, key := range []string{"tick", "tax_rate", "happiness", "width", "terrain_seed", "untapped_notified"} {
		t.Run(key, func(t *testing.T) {
			db := openTestDB(t)
			if err := db.SaveCity(engine.NewCity(tun)); err != nil {
				t.Fatal(err)
			}
			if err := db.SaveMeta(key, "garbage"); err != nil {
				t.Fatal(err)
			}
			_, err := db.LoadCity(tun)
			if err == nil {
				t.Fatalf("expected an error for corrupt %s", key)
			}
			if !strings.Contains(err.Error(), key) {
				t.Fatalf("error %q does not name %s", err, key)
			}
		})
	}
}
