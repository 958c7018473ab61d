package grid

import (
	"hash/fnv"
	"math"
	"math/rand"
)

// hashSeed folds the asset's seed string into an int64.
func hashSeed(s string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int64(h.Sum64())
}

// hash2 is a splitmix-style coordinate hash; the same seed and
// coordinates always yield the same value.
func hash2(seed int64, x, y int) uint64 {
	h := uint64(seed) ^ (uint64(uint32(x)) << 32) ^ uint64(uint32(y))
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}

func latticeValue(seed int64, x, y int) float64 {
	return float64(hash2(seed, x, y)%10000) / 10000
}

func smooth(t float64) float64 { return t * t * (3 - 2*t) }

// valueNoise samples bilinear-interpolated lattice noise at (x, y) with
// the given cell size.
func valueNoise(seed int64, x, y float64, cell float64) float64 {
	gx := math.Floor(x / cell)
	gy := math.Floor(y / cell)
	fx := smooth(x/cell - gx)
	fy := smooth(y/cell - gy)
	ix, iy := int(gx), int(gy)
	v00 := latticeValue(seed, ix, iy)
	v10 := latticeValue(seed, ix+1, iy)
	v01 := latticeValue(seed, ix, iy+1)
	v11 := latticeValue(seed, ix+1, iy+1)
	top := v00 + (v10-v00)*fx
	bot := v01 + (v11-v01)*fx
	return top + (bot-top)*fy
}

// genElevation fills the elevation layer with three octaves of fractal
// value noise, normalized to [0, 1]. Ocean cells are pinned low so the
// downhill tracer always terminates at sea.
func (g *Grid) genElevation(seed int64) {
	lo, hi := math.MaxFloat64, -math.MaxFloat64
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			fx, fy := float64(x), float64(y)
			e := valueNoise(seed, fx, fy, 48)*0.6 +
				valueNoise(seed+1, fx, fy, 16)*0.3 +
				valueNoise(seed+2, fx, fy, 6)*0.1
			g.elevation[g.idx(x, y)] = e
			if e < lo {
				lo = e
			}
			if e > hi {
				hi = e
			}
		}
	}
	span := hi - lo
	if span <= 0 {
		span = 1
	}
	for i := range g.elevation {
		g.elevation[i] = (g.elevation[i] - lo) / span
		if g.biome[i] == BiomeOcean {
			g.elevation[i] *= 0.15
		}
	}
}

const riverTraceLimit = 2000

// traceRivers walks downhill from the highest-elevation land cells,
// widening toward the mouth, for at most riverTraceLimit steps per
// source. Visited cells are never re-traced.
func (g *Grid) traceRivers(seed int64) {
	rng := rand.New(rand.NewSource(seed + 7))

	type cell struct{ x, y int }
	var peaks []cell
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			i := g.idx(x, y)
			if g.biome[i] != BiomeOcean && g.elevation[i] > 0.75 {
				peaks = append(peaks, cell{x, y})
			}
		}
	}
	if len(peaks) == 0 {
		return
	}
	rng.Shuffle(len(peaks), func(i, j int) { peaks[i], peaks[j] = peaks[j], peaks[i] })

	sources := len(peaks)
	if sources > 12 {
		sources = 12
	}
	visited := make([]bool, g.width*g.height)
	for _, p := range peaks[:sources] {
		x, y := p.x, p.y
		length := 0
		for steps := 0; steps < riverTraceLimit; steps++ {
			i := g.idx(x, y)
			if visited[i] || g.biome[i] == BiomeOcean {
				break
			}
			visited[i] = true
			width := uint8(1 + length/60)
			if width > 3 {
				width = 3
			}
			if width > g.riverWidth[i] {
				g.riverWidth[i] = width
			}
			length++

			// Step to the lowest unvisited neighbour; a tiny jitter
			// breaks plateaus.
			bx, by := x, y
			best := g.elevation[i] + 0.001
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := x+dx, y+dy
					if !g.inBounds(nx, ny) {
						continue
					}
					ni := g.idx(nx, ny)
					e := g.elevation[ni] + rng.Float64()*0.002
					if !visited[ni] && e < best {
						best = e
						bx, by = nx, ny
					}
				}
			}
			if bx == x && by == y {
				break
			}
			x, y = bx, by
		}
	}
}

const lakeElevationCeiling = 0.3

// fillLakes flood-fills small basins from randomly sampled low-lying
// land cells.
func (g *Grid) fillLakes(seed int64) {
	rng := rand.New(rand.NewSource(seed + 13))
	attempts := (g.width * g.height) / 4000
	if attempts < 2 {
		attempts = 2
	}
	for n := 0; n < attempts; n++ {
		sx := rng.Intn(g.width)
		sy := rng.Intn(g.height)
		i := g.idx(sx, sy)
		if g.biome[i] == BiomeOcean || g.elevation[i] >= lakeElevationCeiling {
			continue
		}
		ceiling := g.elevation[i] + 0.02
		// Bounded flood fill: basins larger than the cap are left dry.
		const maxLake = 80
		queue := []int{i}
		seen := map[int]bool{i: true}
		var basin []int
		for len(queue) > 0 && len(basin) < maxLake {
			c := queue[0]
			queue = queue[1:]
			basin = append(basin, c)
			cx, cy := c%g.width, c/g.width
			for _, d := range [4][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}} {
				nx, ny := cx+d[0], cy+d[1]
				if !g.inBounds(nx, ny) {
					continue
				}
				ni := g.idx(nx, ny)
				if seen[ni] || g.biome[ni] == BiomeOcean || g.elevation[ni] > ceiling {
					continue
				}
				seen[ni] = true
				queue = append(queue, ni)
			}
		}
		if len(basin) >= 4 && len(basin) < maxLake {
			for _, c := range basin {
				g.lake[c] = true
			}
		}
	}
}

const seaDistBound = 40

// computeSeaDistance runs a bounded multi-source BFS from every land
// cell across ocean cells. Distances beyond the bound are clamped.
func (g *Grid) computeSeaDistance() {
	const unset = int16(-1)
	for i := range g.seaDist {
		g.seaDist[i] = unset
	}
	var frontier []int
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			i := g.idx(x, y)
			if g.biome[i] != BiomeOcean {
				g.seaDist[i] = 0
				frontier = append(frontier, i)
			}
		}
	}
	for d := int16(1); d <= seaDistBound && len(frontier) > 0; d++ {
		var next []int
		for _, c := range frontier {
			cx, cy := c%g.width, c/g.width
			for _, dd := range [4][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}} {
				nx, ny := cx+dd[0], cy+dd[1]
				if !g.inBounds(nx, ny) {
					continue
				}
				ni := g.idx(nx, ny)
				if g.seaDist[ni] == unset {
					g.seaDist[ni] = d
					next = append(next, ni)
				}
			}
		}
		frontier = next
	}
	for i := range g.seaDist {
		if g.seaDist[i] == unset {
			g.seaDist[i] = seaDistBound
		}
	}
}
