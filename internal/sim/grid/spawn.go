package grid

// pickSpawn scores every walkable land cell for habitability: grassland
// beats forest beats the rest, and within a tie cells with fresh water
// within 15 tiles and ocean within 30 tiles win.
func (g *Grid) pickSpawn() (int, int) {
	freshDist := g.distanceFrom(func(i int) bool {
		return g.riverWidth[i] > 0 || g.lake[i]
	}, 15)
	oceanDist := g.distanceFrom(func(i int) bool {
		return g.biome[i] == BiomeOcean
	}, 30)

	bestX, bestY, bestScore := g.width/2, g.height/2, -1
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			i := g.idx(x, y)
			z := g.zones[i]
			if z == ZoneWater || z == ZoneRiver {
				continue
			}
			score := 10
			switch g.biome[i] {
			case BiomeGrassland:
				score += 200
			case BiomeForest:
				score += 100
			}
			if freshDist[i] >= 0 {
				score += 30 - freshDist[i]
			}
			if oceanDist[i] >= 0 {
				score += 30 - oceanDist[i]/2
			}
			if score > bestScore {
				bestScore = score
				bestX, bestY = x, y
			}
		}
	}
	return bestX, bestY
}

// distanceFrom runs a bounded multi-source BFS from every cell matching
// src. Cells beyond the bound report -1.
func (g *Grid) distanceFrom(src func(i int) bool, bound int) []int {
	dist := make([]int, g.width*g.height)
	for i := range dist {
		dist[i] = -1
	}
	var frontier []int
	for i := range dist {
		if src(i) {
			dist[i] = 0
			frontier = append(frontier, i)
		}
	}
	for d := 1; d <= bound && len(frontier) > 0; d++ {
		var next []int
		for _, c := range frontier {
			cx, cy := c%g.width, c/g.width
			for _, dd := range [4][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}} {
				nx, ny := cx+dd[0], cy+dd[1]
				if !g.inBounds(nx, ny) {
					continue
				}
				ni := g.idx(nx, ny)
				if dist[ni] == -1 {
					dist[ni] = d
					next = append(next, ni)
				}
			}
		}
		frontier = next
	}
	return dist
}
