package resource

import (
	"math/rand"

	"driftworld/internal/sim/grid"
)

// Table is a weighted resource table for one zone.
type Table struct {
	Names   []string
	Weights []int
}

var tables = map[grid.Zone]Table{
	grid.ZoneGrass: {
		Names:   []string{"berries", "herbs", "wildflowers", "flint"},
		Weights: []int{40, 30, 20, 10},
	},
	grid.ZoneForest: {
		Names:   []string{"wood", "mushrooms", "berries", "tree sap", "acorns"},
		Weights: []int{35, 25, 15, 15, 10},
	},
	grid.ZoneRocky: {
		Names:   []string{"stone", "flint", "iron ore", "crystal shard"},
		Weights: []int{45, 25, 20, 10},
	},
	grid.ZoneSand: {
		Names:   []string{"sand", "cactus fruit", "clay", "sun-bleached bone"},
		Weights: []int{40, 25, 25, 10},
	},
	grid.ZoneCoast: {
		Names:   []string{"shells", "driftwood", "seaweed", "crab"},
		Weights: []int{35, 30, 20, 15},
	},
	grid.ZoneRiver: {
		Names:   []string{"fish", "reeds", "clay", "river pearl"},
		Weights: []int{40, 30, 20, 10},
	},
	grid.ZoneSwamp: {
		Names:   []string{"moss", "reeds", "bog iron", "glowcap mushroom"},
		Weights: []int{35, 30, 20, 15},
	},
	grid.ZoneCave: {
		Names:   []string{"crystal shard", "cave mushroom", "iron ore", "old bones"},
		Weights: []int{30, 30, 25, 15},
	},
	grid.ZonePath: {
		Names:   []string{"pebbles", "herbs"},
		Weights: []int{60, 40},
	},
	// water intentionally absent: deep water yields nothing
}

var food = map[string]bool{
	"berries":           true,
	"mushrooms":         true,
	"cactus fruit":      true,
	"crab":              true,
	"fish":              true,
	"acorns":            true,
	"glowcap mushroom":  true,
	"cave mushroom":     true,

	// Cooked results.
	"simple meal":    true,
	"campfire roast": true,
	"hearty stew":    true,
}

// IsFood reports whether a resource or item name is edible.
func IsFood(name string) bool { return food[name] }

// Oracle rolls zone-appropriate resources for tiles.
type Oracle struct {
	grid *grid.Grid
}

func NewOracle(g *grid.Grid) *Oracle { return &Oracle{grid: g} }

// TableFor exposes the weighted table for a zone; empty for water.
func (o *Oracle) TableFor(z grid.Zone) (Table, bool) {
	t, ok := tables[z]
	return t, ok
}

// Roll samples a resource name for (x, y) by exact cumulative weight, or
// "" for zones with no table.
func (o *Oracle) Roll(x, y int, rng *rand.Rand) string {
	t, ok := tables[o.grid.Zone(x, y)]
	if !ok || len(t.Names) == 0 {
		return ""
	}
	total := 0
	for _, w := range t.Weights {
		total += w
	}
	r := rng.Intn(total)
	for i, w := range t.Weights {
		if r < w {
			return t.Names[i]
		}
		r -= w
	}
	return t.Names[len(t.Names)-1]
}

// HasAny reports whether a tile can produce anything at all.
func (o *Oracle) HasAny(x, y int) bool {
	_, ok := tables[o.grid.Zone(x, y)]
	return ok
}

// Per-zone chance (percent) that a tile presents a visible resource.
var density = map[grid.Zone]int{
	grid.ZoneGrass:  14,
	grid.ZoneForest: 18,
	grid.ZoneRocky:  10,
	grid.ZoneSand:   8,
	grid.ZoneCoast:  16,
	grid.ZoneRiver:  16,
	grid.ZoneSwamp:  12,
	grid.ZoneCave:   12,
	grid.ZonePath:   4,
}

// At reports the resource visible on (x, y), if any. The answer is a
// pure function of the coordinates so perception stays stable from tick
// to tick.
func (o *Oracle) At(x, y int) (string, bool) {
	z := o.grid.Zone(x, y)
	t, ok := tables[z]
	if !ok {
		return "", false
	}
	h := tileHash(x, y)
	if int(h%100) >= density[z] {
		return "", false
	}
	total := 0
	for _, w := range t.Weights {
		total += w
	}
	r := int((h / 100) % uint64(total))
	for i, w := range t.Weights {
		if r < w {
			return t.Names[i], true
		}
		r -= w
	}
	return t.Names[len(t.Names)-1], true
}

func tileHash(x, y int) uint64 {
	h := uint64(uint32(x))<<32 | uint64(uint32(y))
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}
