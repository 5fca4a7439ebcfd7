// Command citysim creates, edits and runs a gridtown city stored in SQLite.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/gridtown/internal/engine"
	"github.com/talgya/gridtown/internal/persistence"
	"github.com/talgya/gridtown/internal/tuning"
)

// Global flags shared by every command.
type options struct {
	dbPath   string
	config   string
	logLevel string
	logDir   string

	tuning tuning.Tuning
}

func main() {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "citysim",
		Short:         "Grid settlement simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.setup()
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "data/gridtown.db", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&opts.config, "config", "", "tuning yaml (defaults when empty)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&opts.logDir, "log-dir", "data", "directory for the compressed tick log")

	rootCmd.AddCommand(newCmd(opts))
	rootCmd.AddCommand(placeCmd(opts))
	rootCmd.AddCommand(demolishCmd(opts))
	rootCmd.AddCommand(depositCmd(opts))
	rootCmd.AddCommand(runCmd(opts))
	rootCmd.AddCommand(catchupCmd(opts))
	rootCmd.AddCommand(reportCmd(opts))
	rootCmd.AddCommand(kindsCmd())

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func (o *options) setup() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(o.logLevel))); err != nil {
		return fmt.Errorf("log level %q: %w", o.logLevel, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	o.tuning = tuning.Default()
	if o.config != "" {
		t, err := tuning.Load(o.config)
		if err != nil {
			return err
		}
		o.tuning = t
	}
	return nil
}

func (o *options) openDB() (*persistence.DB, error) {
	if dir := filepath.Dir(o.dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return persistence.Open(o.dbPath)
}

// withCity loads the saved city, runs fn and saves the result when fn
// succeeds.
func (o *options) withCity(fn func(db *persistence.DB, c *engine.City) error) error {
	db, err := o.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	c, err := db.LoadCity(o.tuning)
	if err != nil {
		return err
	}
	if err := fn(db, c); err != nil {
		return err
	}
	return save(db, c)
}

func save(db *persistence.DB, c *engine.City) error {
	if err := db.SaveCity(c); err != nil {
		return fmt.Errorf("save city: %w", err)
	}
	return db.SaveMeta(metaSavedAt, time.Now().UTC().Format(time.RFC3339))
}

// newEngine returns an engine driving c, resumed at the city's long tick.
func (o *options) newEngine(c *engine.City, onReport func(engine.TickReport)) *engine.Engine {
	e := engine.NewEngine()
	e.ShortTicksPerLong = o.tuning.Ticks.ShortTicksPerLong
	if o.tuning.Ticks.ShortIntervalMs > 0 {
		e.Interval = time.Duration(o.tuning.Ticks.ShortIntervalMs) * time.Millisecond
	}
	e.Tick = c.Tick * uint64(e.ShortTicksPerLong)
	e.Drive(c, onReport)
	return e
}
