package grid

// Zone is the gameplay-level classification of a tile, derived from the
// static biome layers. It never changes after load.
type Zone string

const (
	ZoneGrass  Zone = "grass"
	ZoneForest Zone = "forest"
	ZoneRocky  Zone = "rocky"
	ZoneSand   Zone = "sand"
	ZoneWater  Zone = "water"
	ZoneSwamp  Zone = "swamp"
	ZoneRiver  Zone = "river"
	ZoneCave   Zone = "cave"
	ZoneCoast  Zone = "coast"
	ZonePath   Zone = "path"
)

// Biomes as they appear in the world asset.
const (
	BiomeOcean     = "ocean"
	BiomeBeach     = "beach"
	BiomeGrassland = "grassland"
	BiomeForest    = "forest"
	BiomeDesert    = "desert"
	BiomeMountain  = "mountain"
	BiomeTundra    = "tundra"
	BiomeSwamp     = "swamp"
)

var biomeZone = map[string]Zone{
	BiomeGrassland: ZoneGrass,
	BiomeForest:    ZoneForest,
	BiomeDesert:    ZoneSand,
	BiomeMountain:  ZoneRocky,
	BiomeTundra:    ZoneRocky,
	BiomeSwamp:     ZoneSwamp,
	BiomeBeach:     ZoneSand,
}

// terrainCost is a movement multiplier per zone. Water is impassable and
// has no entry; callers must check Walkable first.
var terrainCost = map[Zone]float64{
	ZonePath:   0.8,
	ZoneGrass:  1.0,
	ZoneForest: 1.3,
	ZoneRocky:  1.5,
	ZoneSand:   1.2,
	ZoneCoast:  1.1,
	ZoneCave:   1.4,
	ZoneSwamp:  1.6,
	ZoneRiver:  1.4,
}

// TerrainCost returns the movement multiplier for a zone. Water returns
// ok=false.
func TerrainCost(z Zone) (float64, bool) {
	c, ok := terrainCost[z]
	return c, ok
}

// Direction is one of the 8 compass points.
type Direction string

const (
	North     Direction = "north"
	South     Direction = "south"
	East      Direction = "east"
	West      Direction = "west"
	NorthEast Direction = "northeast"
	NorthWest Direction = "northwest"
	SouthEast Direction = "southeast"
	SouthWest Direction = "southwest"
)

var directionDelta = map[Direction][2]int{
	North:     {0, -1},
	South:     {0, 1},
	East:      {1, 0},
	West:      {-1, 0},
	NorthEast: {1, -1},
	NorthWest: {-1, -1},
	SouthEast: {1, 1},
	SouthWest: {-1, 1},
}

// Delta resolves a direction to its (dx, dy) offset.
func Delta(d Direction) (dx, dy int, ok bool) {
	v, ok := directionDelta[d]
	return v[0], v[1], ok
}

// DirectionFor is the inverse of Delta. dx and dy must each be in
// {-1, 0, 1} and not both zero.
func DirectionFor(dx, dy int) (Direction, bool) {
	for d, v := range directionDelta {
		if v[0] == dx && v[1] == dy {
			return d, true
		}
	}
	return "", false
}
