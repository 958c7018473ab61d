package cognition

import (
	"math/rand"
	"testing"

	"driftworld/internal/sim/agent"
	"driftworld/internal/sim/grid"
	"driftworld/internal/sim/knowledge"
	"driftworld/internal/sim/mind"
	"driftworld/internal/sim/resource"
	"driftworld/internal/sim/tuning"
)

type nullEvents struct{}

func (nullEvents) News(typ, agentID, name, message string, zone grid.Zone) {}
func (nullEvents) Emit(typ string, payload map[string]any)                 {}

func grassGrid(t *testing.T, w, h int) *grid.Grid {
	t.Helper()
	g, err := grid.New(grid.WorldAsset{
		Width:   w,
		Height:  h,
		Terrain: make([]int, w*h),
		TileDefs: []grid.TileDef{
			{ID: 0, Biome: grid.BiomeGrassland, Name: "Grassland"},
		},
		Seed: "cognition-test",
	})
	if err != nil {
		t.Fatalf("grid.New: %v", err)
	}
	return g
}

func testShared(t *testing.T, seed int64) *Shared {
	t.Helper()
	g := grassGrid(t, 32, 32)
	tun := tuning.Defaults()
	return &Shared{
		Grid:      g,
		Agents:    agent.NewStore(g, tun.InventoryCap, tun.SpawnRetries, 5),
		Minds:     mind.NewStore(),
		Knowledge: knowledge.NewStore(tun.Knowledge, 144),
		Oracle:    resource.NewOracle(g),
		Tuning:    tun,
		RNG:       rand.New(rand.NewSource(seed)),
		Events:    nullEvents{},
	}
}

// blankMind builds a mind with no traits so intent scores depend only on
// the situation under test.
func blankMind() *mind.Mind {
	return &mind.Mind{
		Personality: mind.Personality{Traits: []string{}, Temperament: "brooding"},
		Memory: mind.Memory{
			Visited:  map[grid.Zone]int{},
			Gathered: map[string]int{},
		},
		Relationships: map[string]*mind.Relationship{},
	}
}

func spawnAt(t *testing.T, sh *Shared, name string, x, y int) *agent.Agent {
	t.Helper()
	a, err := sh.Agents.Spawn(name, 1, sh.RNG)
	if err != nil {
		t.Fatalf("spawn %s: %v", name, err)
	}
	a.TileX, a.TileY = x, y
	a.Zone = sh.Grid.Zone(x, y)
	return a
}

func TestChooseIntent_NilWhenNothingAppeals(t *testing.T) {
	sh := testShared(t, 1)
	a := spawnAt(t, sh, "Asha", 10, 10)
	m := blankMind()

	// Storm at night suppresses the lone wander candidate to zero.
	in := ChooseIntent(sh, a, m, &Visible{}, TimeOfDay{Period: "night"}, WeatherStorm, 5)
	if in != nil {
		t.Fatalf("expected no intent, got %+v", in)
	}
}

func TestChooseIntent_StarvingAgentHuntsFood(t *testing.T) {
	sh := testShared(t, 1)
	a := spawnAt(t, sh, "Asha", 10, 10)
	a.Hunger = 80
	m := blankMind()

	v := &Visible{Resources: []VisibleResource{
		{X: 11, Y: 10, Resource: "berries", Source: "grass", Distance: 1},
	}}
	in := ChooseIntent(sh, a, m, v, TimeOfDay{Period: "night"}, WeatherClear, 5)
	if in == nil || in.Action != mind.ActGather {
		t.Fatalf("starving agent chose %+v, want gather", in)
	}
	if !in.HasGather || in.GatherX != 11 || in.GatherY != 10 {
		t.Fatalf("gather target not recorded: %+v", in)
	}
	if in.StartedTick != 5 || in.MaxTicks != uint64(sh.Tuning.IntentMaxTicks) {
		t.Fatalf("intent budget: %+v", in)
	}
}

func TestChooseIntent_RestWhenExhausted(t *testing.T) {
	sh := testShared(t, 1)
	a := spawnAt(t, sh, "Asha", 10, 10)
	a.Energy = 10
	m := blankMind()

	in := ChooseIntent(sh, a, m, &Visible{}, TimeOfDay{Period: "night"}, WeatherClear, 5)
	if in == nil || in.Action != mind.ActRest {
		t.Fatalf("exhausted agent chose %+v, want rest", in)
	}
	if in.TargetX != a.TileX || in.TargetY != a.TileY {
		t.Fatalf("rest must target the current tile: %+v", in)
	}
}

func TestTraitTerm_SumsAcrossTraits(t *testing.T) {
	m := blankMind()
	m.Personality.Traits = []string{"social", "nurturing"}
	if got := traitTerm(m, mind.ActChat); got != 14 {
		t.Fatalf("chat trait term = %v, want 14", got)
	}
	m.Personality.Traits = []string{"greedy"}
	if got := traitTerm(m, mind.ActGift); got != -8 {
		t.Fatalf("gift trait term = %v, want -8", got)
	}
}

func TestStepToward_NoBudgetBelowEnergyFloor(t *testing.T) {
	sh := testShared(t, 1)
	a := spawnAt(t, sh, "Asha", 5, 5)
	a.Energy = MinStepEnergy
	m := blankMind()

	moved, stuck := StepToward(sh, a, m, 10, 10)
	if moved || stuck {
		t.Fatalf("moved=%v stuck=%v, want neither", moved, stuck)
	}
	if a.TileX != 5 || a.TileY != 5 {
		t.Fatalf("position changed without budget: (%d,%d)", a.TileX, a.TileY)
	}
}

func TestStepToward_DiagonalFirst(t *testing.T) {
	sh := testShared(t, 1)
	a := spawnAt(t, sh, "Asha", 2, 2)
	m := blankMind()

	moved, stuck := StepToward(sh, a, m, 6, 6)
	if !moved || stuck {
		t.Fatalf("moved=%v stuck=%v", moved, stuck)
	}
	if a.TileX != 3 || a.TileY != 3 {
		t.Fatalf("expected diagonal step to (3,3), got (%d,%d)", a.TileX, a.TileY)
	}
	if len(m.PathThisTick) != 1 || m.PathThisTick[0] != (mind.PathPoint{X: 3, Y: 3}) {
		t.Fatalf("path points: %+v", m.PathThisTick)
	}
	if m.Memory.Visited[a.Zone] == 0 {
		t.Fatalf("visit not counted for zone %s", a.Zone)
	}
}

func TestStepToward_StuckOnIsland(t *testing.T) {
	// Single land cell surrounded by ocean: every candidate step is
	// water, so the executor reports stuck.
	g, err := grid.New(grid.WorldAsset{
		Width:   5,
		Height:  5,
		Terrain: islandTerrain(5, 5, 2, 2),
		TileDefs: []grid.TileDef{
			{ID: 0, Biome: grid.BiomeOcean, Name: "Ocean"},
			{ID: 1, Biome: grid.BiomeGrassland, Name: "Grassland"},
		},
		Seed: "island",
	})
	if err != nil {
		t.Fatalf("grid.New: %v", err)
	}
	tun := tuning.Defaults()
	sh := &Shared{
		Grid:   g,
		Agents: agent.NewStore(g, tun.InventoryCap, tun.SpawnRetries, tun.SpawnSpread),
		Tuning: tun,
		RNG:    rand.New(rand.NewSource(1)),
		Events: nullEvents{},
	}
	a := &agent.Agent{ID: "a", TileX: 2, TileY: 2, Zone: g.Zone(2, 2), Energy: 100, HP: 100, Alive: true}
	m := blankMind()

	moved, stuck := StepToward(sh, a, m, 4, 4)
	if moved || !stuck {
		t.Fatalf("moved=%v stuck=%v, want stuck", moved, stuck)
	}
}

func islandTerrain(w, h, lx, ly int) []int {
	terrain := make([]int, w*h)
	terrain[ly*w+lx] = 1
	return terrain
}
