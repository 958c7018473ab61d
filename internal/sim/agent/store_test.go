package agent

import (
	"log"
	"math/rand"
	"path/filepath"
	"testing"

	"driftworld/internal/sim/grid"
)

func testGrid(t *testing.T) *grid.Grid {
	t.Helper()
	a := grid.WorldAsset{
		Width:   24,
		Height:  24,
		Terrain: make([]int, 24*24),
		TileDefs: []grid.TileDef{
			{ID: 0, Biome: grid.BiomeGrassland, Name: "Grassland"},
		},
		Seed: "agent-store-test",
	}
	g, err := grid.New(a)
	if err != nil {
		t.Fatalf("grid.New: %v", err)
	}
	return g
}

func TestSpawn_PlacesOnWalkableGround(t *testing.T) {
	g := testGrid(t)
	s := NewStore(g, 28, 100, 5)
	rng := rand.New(rand.NewSource(1))

	a, err := s.Spawn("Asha", 3, rng)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if !g.Walkable(a.TileX, a.TileY) {
		t.Fatalf("spawned on non-walkable (%d,%d)", a.TileX, a.TileY)
	}
	if a.Zone != g.Zone(a.TileX, a.TileY) {
		t.Fatalf("zone %s does not match grid %s", a.Zone, g.Zone(a.TileX, a.TileY))
	}
	if !a.Alive || a.HP != 100 || a.Energy != 100 || a.Hunger != 0 || a.TicksBorn != 3 {
		t.Fatalf("fresh agent vitals: %+v", a)
	}
	if s.Len() != 1 || s.AliveCount() != 1 || s.Get(a.ID) != a {
		t.Fatalf("store bookkeeping after spawn")
	}
}

func TestWalkAgent_ChargesCostAndNeverMutatesOnError(t *testing.T) {
	g := testGrid(t)
	s := NewStore(g, 28, 100, 5)
	a := &Agent{ID: "a", TileX: 5, TileY: 5, Zone: g.Zone(5, 5), Energy: 100, HP: 100, Alive: true}

	res := s.WalkAgent(a, grid.East)
	if !res.OK {
		t.Fatalf("walk east from (5,5): %+v", res)
	}
	if a.TileX != 6 || a.TileY != 5 {
		t.Fatalf("position after walk: (%d,%d)", a.TileX, a.TileY)
	}
	if a.Energy != 100-float64(res.MoveCost) {
		t.Fatalf("energy %.1f after cost %d", a.Energy, res.MoveCost)
	}
	if a.Zone != res.Zone {
		t.Fatalf("zone not updated")
	}

	a.TileX, a.TileY = 0, 0
	before := a.Energy
	res = s.WalkAgent(a, grid.NorthWest)
	if res.OK || res.Error == "" {
		t.Fatalf("edge walk must fail: %+v", res)
	}
	if a.TileX != 0 || a.TileY != 0 || a.Energy != before {
		t.Fatalf("failed walk mutated agent: (%d,%d) energy=%.1f", a.TileX, a.TileY, a.Energy)
	}
}

func TestMigratePosition_ClampsIntoBounds(t *testing.T) {
	g := testGrid(t)
	s := NewStore(g, 28, 100, 5)
	a := &Agent{TileX: -4, TileY: 99}
	s.MigratePosition(a)
	if a.TileX != 0 || a.TileY != g.Height()-1 {
		t.Fatalf("clamped to (%d,%d)", a.TileX, a.TileY)
	}
	if a.Zone != g.Zone(a.TileX, a.TileY) {
		t.Fatalf("zone not reclassified after migrate")
	}
}

func TestSaveLoad_RoundTripKeepsOrderAndState(t *testing.T) {
	g := testGrid(t)
	s := NewStore(g, 28, 100, 5)
	rng := rand.New(rand.NewSource(7))

	first, _ := s.Spawn("First", 1, rng)
	second, _ := s.Spawn("Second", 2, rng)
	third, _ := s.Spawn("Third", 3, rng)
	first.AddItem("berries", 4, 28)
	first.BumpRelationship(second.ID, 12, 3)
	second.Stats.Award(150)

	path := filepath.Join(t.TempDir(), "agents.json")
	if err := s.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	re := NewStore(g, 28, 100, 5)
	re.Load(path, log.Default())
	if re.Len() != 3 {
		t.Fatalf("reloaded %d agents, want 3", re.Len())
	}

	var order []string
	re.All(func(a *Agent) { order = append(order, a.ID) })
	want := []string{first.ID, second.ID, third.ID}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("iteration order %v, want birth order %v", order, want)
		}
	}

	fa := re.Get(first.ID)
	if fa.Name != "First" || fa.TileX != first.TileX || fa.TileY != first.TileY {
		t.Fatalf("reloaded agent mismatch: %+v", fa)
	}
	if it := fa.FindItem("berries"); it == nil || it.Quantity != 4 {
		t.Fatalf("inventory lost on reload: %+v", fa.Inventory)
	}
	if fa.RelationshipScore(second.ID) != 12 {
		t.Fatalf("relationship lost on reload")
	}
	sa := re.Get(second.ID)
	if sa.Stats.XP != 150 || sa.Stats.Level != 2 {
		t.Fatalf("stats lost on reload: %+v", sa.Stats)
	}
	_ = third
}
