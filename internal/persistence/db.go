// Package persistence provides SQLite-based city storage and the compressed
// long-tick log.
package persistence

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/gridtown/internal/catalog"
	"github.com/talgya/gridtown/internal/economy"
	"github.com/talgya/gridtown/internal/engine"
	"github.com/talgya/gridtown/internal/tuning"
	"github.com/talgya/gridtown/internal/world"
)

// ErrNoCity is returned when loading from a database that holds no city.
var ErrNoCity = errors.New("persistence: no saved city")

// DB wraps a SQLite connection for city persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS buildings (
		id INTEGER PRIMARY KEY,
		kind TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		upkeep_efficiency REAL NOT NULL,
		patronage_efficiency REAL NOT NULL,
		failed INTEGER NOT NULL,
		struggling_ticks INTEGER NOT NULL,
		reserve REAL NOT NULL,
		placed_tick INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS resources (
		type TEXT PRIMARY KEY,
		amount REAL NOT NULL,
		capacity REAL NOT NULL,
		buyable_amount REAL NOT NULL,
		buy_price_multiplier REAL NOT NULL,
		sell_price_multiplier REAL NOT NULL,
		auto_buy_below REAL NOT NULL,
		auto_sell_above REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS city_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type buildingRow struct {
	ID                  uint64  `db:"id"`
	Kind                string  `db:"kind"`
	X                   int     `db:"x"`
	Y                   int     `db:"y"`
	UpkeepEfficiency    float64 `db:"upkeep_efficiency"`
	PatronageEfficiency float64 `db:"patronage_efficiency"`
	Failed              bool    `db:"failed"`
	StrugglingTicks     int     `db:"struggling_ticks"`
	Reserve             float64 `db:"reserve"`
	PlacedTick          int64   `db:"placed_tick"`
}

type resourceRow struct {
	Type                string  `db:"type"`
	Amount              float64 `db:"amount"`
	Capacity            float64 `db:"capacity"` // -1 for unbounded
	BuyableAmount       float64 `db:"buyable_amount"`
	BuyPriceMultiplier  float64 `db:"buy_price_multiplier"`
	SellPriceMultiplier float64 `db:"sell_price_multiplier"`
	AutoBuyBelow        float64 `db:"auto_buy_below"`
	AutoSellAbove       float64 `db:"auto_sell_above"`
}

// SaveCity writes the whole city (full replace).
func (db *DB) SaveCity(c *engine.City) error {
	slog.Info("saving city", "id", c.ID, "buildings", len(c.Buildings), "tick", c.Tick)

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"buildings", "resources", "notifications"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, b := range c.Buildings {
		if b.Has(engine.CapNetworkRoot) {
			continue
		}
		row := buildingRow{
			ID:                  uint64(b.ID),
			Kind:                b.Kind,
			X:                   b.X,
			Y:                   b.Y,
			UpkeepEfficiency:    b.UpkeepEfficiency,
			PatronageEfficiency: b.PatronageEfficiency,
			Failed:              b.Failed,
			StrugglingTicks:     b.StrugglingTicks,
			Reserve:             b.Reserve,
			PlacedTick:          int64(b.PlacedTick),
		}
		_, err := tx.NamedExec(`INSERT INTO buildings
			(id, kind, x, y, upkeep_efficiency, patronage_efficiency, failed,
			 struggling_ticks, reserve, placed_tick)
			VALUES (:id, :kind, :x, :y, :upkeep_efficiency, :patronage_efficiency, :failed,
			 :struggling_ticks, :reserve, :placed_tick)`, row)
		if err != nil {
			return fmt.Errorf("insert building %d: %w", b.ID, err)
		}
	}

	for _, rt := range c.Resources.Types() {
		r := c.Resources.Get(rt)
		capacity := r.Capacity
		if math.IsInf(capacity, 1) {
			capacity = -1
		}
		row := resourceRow{
			Type:                string(rt),
			Amount:              r.Amount,
			Capacity:            capacity,
			BuyableAmount:       r.BuyableAmount,
			BuyPriceMultiplier:  r.BuyPriceMultiplier,
			SellPriceMultiplier: r.SellPriceMultiplier,
			AutoBuyBelow:        r.AutoBuyBelow,
			AutoSellAbove:       r.AutoSellAbove,
		}
		_, err := tx.NamedExec(`INSERT INTO resources
			(type, amount, capacity, buyable_amount, buy_price_multiplier,
			 sell_price_multiplier, auto_buy_below, auto_sell_above)
			VALUES (:type, :amount, :capacity, :buyable_amount, :buy_price_multiplier,
			 :sell_price_multiplier, :auto_buy_below, :auto_sell_above)`, row)
		if err != nil {
			return fmt.Errorf("insert resource %s: %w", rt, err)
		}
	}

	for _, n := range c.Notifications.All() {
		if _, err := tx.Exec("INSERT INTO notifications (tick, title, body) VALUES (?, ?, ?)",
			n.Tick, n.Title, n.Body); err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
	}

	meta := map[string]string{
		"city_id":           c.ID.String(),
		"tick":              strconv.FormatUint(c.Tick, 10),
		"tax_rate":          strconv.FormatFloat(c.TaxRate, 'g', -1, 64),
		"happiness":         strconv.FormatFloat(c.Happiness, 'g', -1, 64),
		"terrain_seed":      strconv.FormatInt(c.TerrainSeed, 10),
		"width":             strconv.Itoa(c.Grid.Width),
		"height":            strconv.Itoa(c.Grid.Height),
		"untapped_notified": strconv.FormatBool(c.UntappedNotified),
	}
	for k, v := range meta {
		if _, err := tx.Exec("INSERT OR REPLACE INTO city_meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("save meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("city saved")
	return nil
}

// HasCity reports whether a city has been saved.
func (db *DB) HasCity() (bool, error) {
	var n int
	if err := db.conn.Get(&n, "SELECT COUNT(*) FROM city_meta WHERE key = 'city_id'"); err != nil {
		return false, err
	}
	return n > 0, nil
}

// LoadCity rebuilds the saved city under the given tuning. The grid size must
// match the save.
func (db *DB) LoadCity(t tuning.Tuning) (*engine.City, error) {
	ok, err := db.HasCity()
	if err != nil {
		return nil, fmt.Errorf("check city: %w", err)
	}
	if !ok {
		return nil, ErrNoCity
	}

	meta := make(map[string]string)
	var pairs []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := db.conn.Select(&pairs, "SELECT key, value FROM city_meta"); err != nil {
		return nil, fmt.Errorf("load meta: %w", err)
	}
	for _, p := range pairs {
		meta[p.Key] = p.Value
	}

	width, err := strconv.Atoi(meta["width"])
	if err != nil {
		return nil, fmt.Errorf("parse width: %w", err)
	}
	height, err := strconv.Atoi(meta["height"])
	if err != nil {
		return nil, fmt.Errorf("parse height: %w", err)
	}
	if width != t.Grid.Width || height != t.Grid.Height {
		return nil, fmt.Errorf("save is %dx%d but tuning grid is %dx%d", width, height, t.Grid.Width, t.Grid.Height)
	}

	c := engine.NewCity(t)
	if c.ID, err = uuid.Parse(meta["city_id"]); err != nil {
		return nil, fmt.Errorf("parse city id: %w", err)
	}
	seed, err := strconv.ParseInt(meta["terrain_seed"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse terrain_seed: %w", err)
	}
	if seed != 0 {
		c.ApplyTerrain(world.GenerateTerrain(world.TerrainConfig{
			Width:          width,
			Height:         height,
			Seed:           seed,
			LandValueScale: t.Terrain.LandValueScale,
		}))
	}

	var rows []buildingRow
	if err := db.conn.Select(&rows, "SELECT * FROM buildings ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load buildings: %w", err)
	}
	for _, row := range rows {
		b, err := catalog.New(row.Kind)
		if err != nil {
			return nil, fmt.Errorf("building %d: %w", row.ID, err)
		}
		b.ID = world.BuildingID(row.ID)
		c.Place(b, row.X, row.Y)
		b.UpkeepEfficiency = row.UpkeepEfficiency
		b.PatronageEfficiency = row.PatronageEfficiency
		b.Failed = row.Failed
		b.StrugglingTicks = row.StrugglingTicks
		b.Reserve = row.Reserve
		b.PlacedTick = uint64(row.PlacedTick)
	}
	c.RecomputeConnectivity()

	var resources []resourceRow
	if err := db.conn.Select(&resources, "SELECT * FROM resources"); err != nil {
		return nil, fmt.Errorf("load resources: %w", err)
	}
	for _, row := range resources {
		r := c.Resources.Get(economy.ResourceType(row.Type))
		if r == nil {
			slog.Warn("unknown resource in save", "type", row.Type)
			continue
		}
		r.Amount = row.Amount
		r.Capacity = row.Capacity
		if row.Capacity < 0 {
			r.Capacity = math.Inf(1)
		}
		r.BuyableAmount = row.BuyableAmount
		r.BuyPriceMultiplier = row.BuyPriceMultiplier
		r.SellPriceMultiplier = row.SellPriceMultiplier
		r.AutoBuyBelow = row.AutoBuyBelow
		r.AutoSellAbove = row.AutoSellAbove
	}

	var notes []engine.Notification
	if err := db.conn.Select(&notes, "SELECT tick, title, body FROM notifications ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}
	for _, n := range notes {
		c.Notifications.Push(n)
	}

	if c.Tick, err = strconv.ParseUint(meta["tick"], 10, 64); err != nil {
		return nil, fmt.Errorf("parse tick: %w", err)
	}
	if c.TaxRate, err = strconv.ParseFloat(meta["tax_rate"], 64); err != nil {
		return nil, fmt.Errorf("parse tax_rate: %w", err)
	}
	if c.Happiness, err = strconv.ParseFloat(meta["happiness"], 64); err != nil {
		return nil, fmt.Errorf("parse happiness: %w", err)
	}
	if c.UntappedNotified, err = strconv.ParseBool(meta["untapped_notified"]); err != nil {
		return nil, fmt.Errorf("parse untapped_notified: %w", err)
	}

	slog.Info("city loaded", "id", c.ID, "buildings", len(c.Buildings), "tick", c.Tick)
	return c, nil
}

// SaveMeta stores a key-value pair in city metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO city_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM city_meta WHERE key = ?", key)
	return value, err
}
