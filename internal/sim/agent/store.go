package agent

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"driftworld/internal/sim/grid"
)

// Store holds every agent, live or dead, keyed by id. Iteration follows
// insertion order so each tick visits agents deterministically.
type Store struct {
	grid  *grid.Grid
	byID  map[string]*Agent
	order []string

	inventoryCap int
	spawnRetries int
	spawnSpread  int

	dirty bool
}

func NewStore(g *grid.Grid, inventoryCap, spawnRetries, spawnSpread int) *Store {
	return &Store{
		grid:         g,
		byID:         map[string]*Agent{},
		inventoryCap: inventoryCap,
		spawnRetries: spawnRetries,
		spawnSpread:  spawnSpread,
	}
}

func (s *Store) InventoryCap() int { return s.inventoryCap }

func (s *Store) Get(id string) *Agent { return s.byID[id] }

func (s *Store) Len() int { return len(s.order) }

// All visits every agent in insertion order.
func (s *Store) All(fn func(*Agent)) {
	for _, id := range s.order {
		fn(s.byID[id])
	}
}

// Live visits live agents in insertion order.
func (s *Store) Live(fn func(*Agent)) {
	for _, id := range s.order {
		if a := s.byID[id]; a.Alive {
			fn(a)
		}
	}
}

func (s *Store) AliveCount() int {
	n := 0
	for _, id := range s.order {
		if s.byID[id].Alive {
			n++
		}
	}
	return n
}

// MarkDirty flags the store for the next persistence flush.
func (s *Store) MarkDirty()       { s.dirty = true }
func (s *Store) Dirty() bool      { return s.dirty }
func (s *Store) ClearDirty()      { s.dirty = false }

// Spawn places a new agent near the world spawn point, retrying random
// offsets until a walkable cell is found. A fully blocked neighbourhood
// is an error; it never places an agent on water.
func (s *Store) Spawn(name string, nowTick uint64, rng *rand.Rand) (*Agent, error) {
	sx, sy := s.grid.Spawn()
	x, y := -1, -1
	for i := 0; i < s.spawnRetries; i++ {
		cx := sx + rng.Intn(2*s.spawnSpread+1) - s.spawnSpread
		cy := sy + rng.Intn(2*s.spawnSpread+1) - s.spawnSpread
		if s.grid.Walkable(cx, cy) {
			x, y = cx, cy
			break
		}
	}
	if x < 0 {
		return nil, fmt.Errorf("no walkable spawn cell within ±%d of (%d,%d)", s.spawnSpread, sx, sy)
	}

	a := &Agent{
		ID:        uuid.NewString(),
		Name:      name,
		TileX:     x,
		TileY:     y,
		Zone:      s.grid.Zone(x, y),
		HP:        100,
		Energy:    100,
		Hunger:    0,
		Alive:     true,
		TicksBorn: nowTick,
	}
	a.initDefaults()
	s.byID[a.ID] = a
	s.order = append(s.order, a.ID)
	s.dirty = true
	return a, nil
}

// WalkResult mirrors the movement contract: ok with cost and the new
// zone, or an error string. Errors never mutate the agent.
type WalkResult struct {
	OK       bool      `json:"ok"`
	MoveCost int       `json:"moveCost,omitempty"`
	Zone     grid.Zone `json:"zone,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// WalkAgent moves an agent one step in a compass direction, charging the
// terrain-and-slope energy cost.
func (s *Store) WalkAgent(a *Agent, dir grid.Direction) WalkResult {
	step, errMsg := s.grid.Step(a.TileX, a.TileY, dir)
	if errMsg != "" {
		return WalkResult{Error: errMsg}
	}
	a.TileX, a.TileY = step.X, step.Y
	a.Zone = step.Zone
	a.ApplyEnergy(-float64(step.MoveCost))
	s.dirty = true
	return WalkResult{OK: true, MoveCost: step.MoveCost, Zone: step.Zone}
}

// MigratePosition clamps an agent back into bounds and onto the zone its
// position classifies to. Invoked at the top of every agent's tick.
func (s *Store) MigratePosition(a *Agent) {
	if a.TileX < 0 {
		a.TileX = 0
	}
	if a.TileY < 0 {
		a.TileY = 0
	}
	if a.TileX >= s.grid.Width() {
		a.TileX = s.grid.Width() - 1
	}
	if a.TileY >= s.grid.Height() {
		a.TileY = s.grid.Height() - 1
	}
	a.Zone = s.grid.Zone(a.TileX, a.TileY)
}
