// Terrain generation using layered simplex noise. Produces the land value
// field granted to a new city and the candidate positions of resource vents.
package world

import (
	"math"
	"math/rand"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// TerrainConfig holds terrain generation parameters.
type TerrainConfig struct {
	Width          int
	Height         int
	Seed           int64   // 0 = random
	LandValueScale float64 // Peak land value granted by terrain
	VentCount      int     // Resource vents to place
	VentSpacing    int     // Minimum Chebyshev distance between vents
}

// Terrain is the generated static layer of a city.
type Terrain struct {
	Width     int
	Height    int
	Seed      int64
	LandValue [][]float64 // [y][x], 0..LandValueScale
	Vents     []Point
}

// GenerateTerrain builds the land value field and picks vent positions.
func GenerateTerrain(cfg TerrainConfig) *Terrain {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	valueNoise := opensimplex.NewNormalized(seed)
	ventNoise := opensimplex.NewNormalized(seed + 1)

	t := &Terrain{
		Width:     cfg.Width,
		Height:    cfg.Height,
		Seed:      seed,
		LandValue: make([][]float64, cfg.Height),
	}

	type scored struct {
		p     Point
		score float64
	}
	var candidates []scored

	for y := 0; y < cfg.Height; y++ {
		t.LandValue[y] = make([]float64, cfg.Width)
		for x := 0; x < cfg.Width; x++ {
			v := octaveNoise(valueNoise, float64(x), float64(y), 3, 0.07, 0.5)
			t.LandValue[y][x] = math.Round(v*cfg.LandValueScale*100) / 100

			// Vents favor low land value (rough ground).
			score := octaveNoise(ventNoise, float64(x), float64(y), 2, 0.15, 0.5) * (1 - v)
			candidates = append(candidates, scored{Point{X: x, Y: y}, score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	for _, c := range candidates {
		if len(t.Vents) >= cfg.VentCount {
			break
		}
		if tooClose(c.p, t.Vents, cfg.VentSpacing) {
			continue
		}
		t.Vents = append(t.Vents, c.p)
	}

	return t
}

// tooClose checks whether p is within minDist (Chebyshev) of any taken point.
func tooClose(p Point, taken []Point, minDist int) bool {
	for _, q := range taken {
		if max(abs(p.X-q.X), abs(p.Y-q.Y)) < minDist {
			return true
		}
	}
	return false
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
