package grid

import (
	"math"
)

// Grid is the immutable tile world. Biomes, elevation and the river/lake
// masks are computed once at load; every derived query is a pure function
// of (x, y).
type Grid struct {
	width  int
	height int

	biome      []string // per cell, from the asset tile defs
	elevation  []float64
	riverWidth []uint8 // 0..3
	lake       []bool
	seaDist    []int16 // distance from land, meaningful on ocean only

	zones []Zone // precomputed classification

	spawnX int
	spawnY int
}

// Tile is a read-only view of one cell.
type Tile struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Biome      string  `json:"biome"`
	Zone       Zone    `json:"zone"`
	Elevation  float64 `json:"elevation"`
	RiverWidth int     `json:"riverWidth"`
	Lake       bool    `json:"lake"`
	Walkable   bool    `json:"walkable"`
}

// New builds the grid from a world asset. All derived layers are
// deterministic in the asset seed.
func New(a WorldAsset) (*Grid, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	g := &Grid{
		width:      a.Width,
		height:     a.Height,
		biome:      make([]string, a.Width*a.Height),
		elevation:  make([]float64, a.Width*a.Height),
		riverWidth: make([]uint8, a.Width*a.Height),
		lake:       make([]bool, a.Width*a.Height),
		seaDist:    make([]int16, a.Width*a.Height),
		zones:      make([]Zone, a.Width*a.Height),
	}

	defByID := map[int]TileDef{}
	for _, d := range a.TileDefs {
		defByID[d.ID] = d
	}
	for i, t := range a.Terrain {
		g.biome[i] = defByID[t].Biome
	}

	seed := hashSeed(a.Seed)
	g.genElevation(seed)
	g.traceRivers(seed)
	g.fillLakes(seed)
	g.computeSeaDistance()

	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			g.zones[y*g.width+x] = g.classify(x, y)
		}
	}

	g.spawnX, g.spawnY = g.pickSpawn()
	return g, nil
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Spawn returns the point chosen at load time by scoring habitable
// grassland near water and coast.
func (g *Grid) Spawn() (int, int) { return g.spawnX, g.spawnY }

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

func (g *Grid) idx(x, y int) int { return y*g.width + x }

// GetTile returns the tile at (x, y) or nil outside the grid.
func (g *Grid) GetTile(x, y int) *Tile {
	if !g.inBounds(x, y) {
		return nil
	}
	i := g.idx(x, y)
	z := g.zones[i]
	return &Tile{
		X:          x,
		Y:          y,
		Biome:      g.biome[i],
		Zone:       z,
		Elevation:  g.elevation[i],
		RiverWidth: int(g.riverWidth[i]),
		Lake:       g.lake[i],
		Walkable:   z != ZoneWater,
	}
}

// Zone classifies (x, y). Out-of-bounds coordinates classify as water so
// that edge handling stays uniform for callers.
func (g *Grid) Zone(x, y int) Zone {
	if !g.inBounds(x, y) {
		return ZoneWater
	}
	return g.zones[g.idx(x, y)]
}

// Walkable reports whether an agent may occupy (x, y).
func (g *Grid) Walkable(x, y int) bool {
	return g.inBounds(x, y) && g.zones[g.idx(x, y)] != ZoneWater
}

// Ordered first-match rule; see the zone table in the project docs.
func (g *Grid) classify(x, y int) Zone {
	i := g.idx(x, y)
	b := g.biome[i]
	if g.lake[i] {
		return ZoneRiver
	}
	if g.riverWidth[i] > 0 && b != BiomeOcean {
		return ZoneRiver
	}
	if b == BiomeOcean {
		return ZoneWater
	}
	for _, d := range [4][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}} {
		nx, ny := x+d[0], y+d[1]
		if g.inBounds(nx, ny) && g.biome[g.idx(nx, ny)] == BiomeOcean {
			return ZoneCoast
		}
	}
	if b == BiomeMountain {
		e := g.elevation[i]
		if e > 0.6 && e < 0.72 {
			return ZoneCave
		}
	}
	if z, ok := biomeZone[b]; ok {
		return z
	}
	return ZoneGrass
}

// StepResult reports the outcome of a single-step move query.
type StepResult struct {
	X        int
	Y        int
	Zone     Zone
	MoveCost int
}

// Step resolves one move from (x, y) in a compass direction. It returns
// an error string on edge-of-world or non-walkable destinations; the
// grid itself never mutates agents.
func (g *Grid) Step(x, y int, dir Direction) (StepResult, string) {
	dx, dy, ok := Delta(dir)
	if !ok {
		return StepResult{}, "unknown direction: " + string(dir)
	}
	nx, ny := x+dx, y+dy
	if !g.inBounds(nx, ny) {
		return StepResult{}, "Edge of the world — nothing beyond here."
	}
	destZone := g.zones[g.idx(nx, ny)]
	if destZone == ZoneWater {
		return StepResult{}, "Cannot walk into deep water."
	}
	return StepResult{X: nx, Y: ny, Zone: destZone, MoveCost: g.stepCost(x, y, nx, ny, destZone)}, ""
}

// stepCost = round(2 * terrainCost(dest) + elevationDelta), where the
// elevation delta contributes -1/0/+1 by slope sign past ±0.05.
func (g *Grid) stepCost(x, y, nx, ny int, destZone Zone) int {
	cost, ok := terrainCost[destZone]
	if !ok {
		return math.MaxInt32
	}
	slope := g.elevation[g.idx(nx, ny)] - g.elevation[g.idx(x, y)]
	delta := 0.0
	if slope > 0.05 {
		delta = 1
	} else if slope < -0.05 {
		delta = -1
	}
	return int(math.Round(2*cost + delta))
}

// TilesInRadius returns every tile within a Euclidean disc around
// (cx, cy), clipped to the grid.
func (g *Grid) TilesInRadius(cx, cy, r int) []*Tile {
	if r < 0 {
		return nil
	}
	var out []*Tile
	r2 := r * r
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy > r2 {
				continue
			}
			if t := g.GetTile(x, y); t != nil {
				out = append(out, t)
			}
		}
	}
	return out
}
