package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/gridtown/internal/catalog"
	"github.com/talgya/gridtown/internal/economy"
	"github.com/talgya/gridtown/internal/engine"
	"github.com/talgya/gridtown/internal/persistence"
	"github.com/talgya/gridtown/internal/world"
)

const metaSavedAt = "saved_at"

func newCmd(opts *options) *cobra.Command {
	var (
		seed    int64
		starter bool
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a city with terrain and resource vents",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			db, err := opts.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			exists, err := db.HasCity()
			if err != nil {
				return err
			}
			if exists && !force {
				return errors.New("a city is already saved; pass --force to replace it")
			}

			t := opts.tuning
			if seed != 0 {
				t.Terrain.Seed = seed
			}
			c := engine.NewCity(t)
			terrain := world.GenerateTerrain(world.TerrainConfig{
				Width:          t.Grid.Width,
				Height:         t.Grid.Height,
				Seed:           t.Terrain.Seed,
				LandValueScale: t.Terrain.LandValueScale,
				VentCount:      t.Terrain.VentCount,
				VentSpacing:    t.Terrain.VentSpacing,
			})
			c.ApplyTerrain(terrain)
			catalog.SeedFormations(c, terrain)
			if starter {
				catalog.StarterTown(c)
			}
			if err := save(db, c); err != nil {
				return err
			}
			fmt.Printf("Founded %s (%d buildings, terrain seed %d)\n", c.ID, len(c.Buildings), c.TerrainSeed)
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "terrain seed (tuning seed when 0)")
	cmd.Flags().BoolVar(&starter, "starter", false, "build the starter town")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing city")
	return cmd
}

func placeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "place [kind] [x] [y]",
		Short: "Build a catalog building, paying its costs",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			x, y, err := parseXY(args[1], args[2])
			if err != nil {
				return err
			}
			return opts.withCity(func(_ *persistence.DB, c *engine.City) error {
				b, err := catalog.Build(c, args[0], x, y)
				if err != nil {
					return err
				}
				fmt.Printf("Placed %s #%d at (%d,%d) road=%t power=%t\n",
					b.Kind, b.ID, b.X, b.Y, b.RoadConnected, b.PowerConnected)
				return nil
			})
		},
	}
}

func demolishCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "demolish [x] [y]",
		Short: "Remove the building occupying a cell",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			x, y, err := parseXY(args[0], args[1])
			if err != nil {
				return err
			}
			return opts.withCity(func(_ *persistence.DB, c *engine.City) error {
				b := c.BuildingAt(x, y)
				if b == nil {
					return fmt.Errorf("nothing at (%d,%d)", x, y)
				}
				if err := catalog.Demolish(c, b); err != nil {
					return err
				}
				fmt.Printf("Demolished %s #%d\n", b.Kind, b.ID)
				return nil
			})
		},
	}
}

func depositCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "deposit [amount]",
		Short: "Move flunds into the treasury reserve",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("amount %q: %w", args[0], err)
			}
			return opts.withCity(func(_ *persistence.DB, c *engine.City) error {
				if err := c.DepositToTreasury(amount); err != nil {
					return err
				}
				fmt.Printf("Deposited %s flunds\n", humanize.Commaf(amount))
				return nil
			})
		},
	}
}

func runCmd(opts *options) *cobra.Command {
	var (
		longTicks int
		speed     float64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation in real time until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return opts.withCity(func(db *persistence.DB, c *engine.City) error {
				ticks := persistence.NewTickLogger(opts.logDir)
				defer ticks.Close()

				remaining := longTicks
				var eng *engine.Engine
				eng = opts.newEngine(c, func(r engine.TickReport) {
					if err := ticks.WriteReport(r); err != nil {
						slog.Error("tick log write failed", "error", err)
					}
					if err := save(db, c); err != nil {
						slog.Error("autosave failed", "error", err)
					}
					if longTicks > 0 && countdown(&remaining) {
						eng.Stop()
					}
				})
				eng.Speed = speed

				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				defer signal.Stop(sigCh)
				go func() {
					sig := <-sigCh
					slog.Info("received signal, shutting down", "signal", sig)
					eng.Stop()
				}()

				fmt.Printf("Running %s from %s (Ctrl+C to stop)\n", c.ID, engine.SimTime(eng.Tick, eng.ShortTicksPerLong))
				eng.Run()
				fmt.Printf("Stopped at %s\n", engine.SimTime(eng.Tick, eng.ShortTicksPerLong))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&longTicks, "long-ticks", 0, "stop after this many long ticks (0 runs until interrupted)")
	cmd.Flags().Float64Var(&speed, "speed", 1, "tick speed multiplier")
	return cmd
}

// countdown decrements *n and reports whether it reached zero.
func countdown(n *int) bool {
	*n--
	return *n <= 0
}

func catchupCmd(opts *options) *cobra.Command {
	var (
		shortTicks int
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "catchup",
		Short: "Replay the ticks missed since the last save",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return opts.withCity(func(db *persistence.DB, c *engine.City) error {
				ticks := persistence.NewTickLogger(opts.logDir)
				defer ticks.Close()

				eng := opts.newEngine(c, func(r engine.TickReport) {
					if err := ticks.WriteReport(r); err != nil {
						slog.Error("tick log write failed", "error", err)
					}
				})

				var longs int
				if shortTicks > 0 {
					longs = eng.CatchUp(shortTicks)
				} else {
					raw, err := db.GetMeta(metaSavedAt)
					if err != nil {
						return fmt.Errorf("last save time: %w", err)
					}
					savedAt, err := time.Parse(time.RFC3339, raw)
					if err != nil {
						return fmt.Errorf("last save time %q: %w", raw, err)
					}
					idle := time.Since(savedAt)
					fmt.Printf("Away for %s\n", humanize.RelTime(savedAt, time.Now(), "", ""))
					longs = eng.CatchUpElapsed(idle, limit)
				}
				fmt.Printf("Caught up %d long ticks, now %s\n", longs, engine.SimTime(eng.Tick, eng.ShortTicksPerLong))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&shortTicks, "short-ticks", 0, "replay exactly this many short ticks instead of the idle time")
	cmd.Flags().IntVar(&limit, "limit", 0, "cap on replayed short ticks (0 is unlimited)")
	return cmd
}

func reportCmd(opts *options) *cobra.Command {
	var history int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize the saved city",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			db, err := opts.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			c, err := db.LoadCity(opts.tuning)
			if err != nil {
				return err
			}
			printCity(c)

			if history <= 0 {
				return nil
			}
			reports, err := persistence.ReadTickLog(opts.logDir)
			if err != nil {
				return fmt.Errorf("tick log: %w", err)
			}
			if len(reports) > history {
				reports = reports[len(reports)-history:]
			}
			fmt.Println("\nRecent long ticks:")
			for _, r := range reports {
				fmt.Printf("  #%-5d pop %-8s flunds %-10s taxes %-8s untapped %-8s power %s/%s\n",
					r.Tick,
					humanize.Commaf(r.Population),
					humanize.Commaf(r.Flunds),
					humanize.Commaf(r.Taxes),
					humanize.Commaf(r.Untapped),
					humanize.Commaf(r.PowerDemand),
					humanize.Commaf(r.PowerSupply),
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&history, "history", 5, "recent tick log entries to show")
	return cmd
}

func printCity(c *engine.City) {
	fmt.Printf("City %s, long tick %d\n", c.ID, c.Tick)
	fmt.Printf("  Population  %s (happiness %.0f%%)\n", humanize.Commaf(c.Population()), c.Happiness*100)
	fmt.Printf("  Buildings   %d\n", len(c.Buildings))
	fmt.Printf("  Power       %s supplied, %s demanded\n", humanize.Commaf(c.PowerSupply), humanize.Commaf(c.PowerDemand))

	fmt.Println("\nResources:")
	for _, rt := range c.Resources.Types() {
		r := c.Resources.Get(rt)
		if rt == economy.Power || rt == economy.Population {
			continue
		}
		fmt.Printf("  %-10s %12s\n", rt, humanize.CommafWithDigits(r.Amount, 2))
	}

	counts := make(map[string]int)
	var failed int
	for _, b := range c.Buildings {
		counts[b.Kind]++
		if b.Failed {
			failed++
		}
	}
	fmt.Println("\nBuildings:")
	for _, kind := range catalog.Kinds() {
		if n := counts[kind]; n > 0 {
			fmt.Printf("  %-15s %d\n", kind, n)
		}
	}
	if failed > 0 {
		fmt.Printf("  (%d closed businesses)\n", failed)
	}

	if notes := c.Notifications.All(); len(notes) > 0 {
		fmt.Println("\nNotifications:")
		for _, n := range notes {
			fmt.Printf("  [day %d] %s: %s\n", n.Tick, n.Title, n.Body)
		}
	}
}

func kindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the building kinds that can be placed",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			for _, kind := range catalog.Kinds() {
				fmt.Println(kind)
			}
		},
	}
}

func parseXY(xs, ys string) (int, int, error) {
	x, err := strconv.Atoi(xs)
	if err != nil {
		return 0, 0, fmt.Errorf("x %q: %w", xs, err)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return 0, 0, fmt.Errorf("y %q: %w", ys, err)
	}
	return x, y, nil
}
