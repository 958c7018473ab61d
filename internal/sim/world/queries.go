package world

import (
	"fmt"

	"driftworld/internal/protocol"
	"driftworld/internal/sim/agent"
	"driftworld/internal/sim/grid"
	"driftworld/internal/sim/mind"
	"driftworld/internal/sim/resource"
)

// The query methods below read live state and must be called on the
// world loop, inside Do. Grid-only helpers (AreaTiles, TileInfo) touch
// immutable data and are safe from any goroutine.

type StatusInfo struct {
	Tick      uint64            `json:"tick"`
	GameTime  protocol.GameTime `json:"gameTime"`
	Agents    int               `json:"agents"`
	Alive     int               `json:"alive"`
	World     string            `json:"world"`
	Weather   string            `json:"weather"`
	Observers int               `json:"observers"`
	Uptime    string            `json:"uptime"`
}

func (w *World) Status() StatusInfo {
	nowTick := w.tick.Load()
	return StatusInfo{
		Tick:      nowTick,
		GameTime:  w.gameTime(nowTick),
		Agents:    w.agents.Len(),
		Alive:     w.agents.AliveCount(),
		World:     fmt.Sprintf("%dx%d", w.grid.Width(), w.grid.Height()),
		Weather:   string(w.weather),
		Observers: len(w.observers),
		Uptime:    w.Uptime().Truncate(1e9).String(),
	}
}

func (w *World) Agents() []*agent.Agent { return w.serializedAgents() }

func (w *World) Agent(id string) *agent.Agent { return w.agents.Get(id) }

func (w *World) News(limit int) []protocol.NewsItem { return w.newsHead(limit) }

func (w *World) StatsSnapshot() Stats { return w.stats }

// AgentDetail is the /api/agents/:id body: the agent plus where it
// stands and who and what is nearby.
type AgentDetail struct {
	Agent     *agent.Agent          `json:"agent"`
	Tile      *grid.Tile            `json:"tile"`
	Resources []string              `json:"resources"`
	Nearby    []protocol.DeltaAgent `json:"nearby"`
}

func (w *World) AgentDetail(id string) (AgentDetail, bool) {
	a := w.agents.Get(id)
	if a == nil {
		return AgentDetail{}, false
	}
	d := AgentDetail{
		Agent: a,
		Tile:  w.grid.GetTile(a.TileX, a.TileY),
	}
	if tbl, ok := w.oracle.TableFor(a.Zone); ok {
		d.Resources = tbl.Names
	}
	w.agents.Live(func(other *agent.Agent) {
		if other.ID == a.ID {
			return
		}
		if chebyshevDist(a.TileX, a.TileY, other.TileX, other.TileY) <= 10 {
			d.Nearby = append(d.Nearby, protocol.DeltaAgent{
				ID: other.ID, Name: other.Name,
				TileX: other.TileX, TileY: other.TileY,
				HP: other.HP, Energy: other.Energy, Alive: other.Alive,
			})
		}
	})
	return d, true
}

// MindView is the /api/agents/:id/mind body.
type MindView struct {
	Personality   mind.Personality              `json:"personality"`
	Mood          string                        `json:"mood"`
	CurrentAction mind.Action                   `json:"currentAction"`
	Intent        *mind.Intent                  `json:"intent,omitempty"`
	Goals         []string                      `json:"goals"`
	Memories      []mind.MemoryEntry            `json:"memories"`
	Relationships map[string]*mind.Relationship `json:"relationships"`
}

func (w *World) MindView(id string) (MindView, bool) {
	if w.agents.Get(id) == nil {
		return MindView{}, false
	}
	m := w.minds.Ensure(id)
	return MindView{
		Personality:   m.Personality,
		Mood:          m.Mood,
		CurrentAction: m.CurrentAction,
		Intent:        m.Intent,
		Goals:         m.Goals,
		Memories:      m.RecentMemories(10),
		Relationships: m.Relationships,
	}, true
}

// SpawnMany creates up to the bulk cap of agents named prefix-1..n.
// Loop-only, like every other mutator.
func (w *World) SpawnMany(prefix string, count int, nowTick uint64) []*agent.Agent {
	if count > w.tun.MaxBulkSpawn {
		count = w.tun.MaxBulkSpawn
	}
	out := make([]*agent.Agent, 0, count)
	for i := 1; i <= count; i++ {
		a, err := w.agents.Spawn(fmt.Sprintf("%s-%d", prefix, i), nowTick, w.rng)
		if err != nil {
			break
		}
		w.stats.SpawnsTotal++
		w.minds.Ensure(a.ID)
		w.addNews(protocol.TypeAgentSpawn, a.ID, a.Name, a.Name+" wandered into the world.", string(a.Zone))
		out = append(out, a)
	}
	return out
}

// TileInfo pairs one tile with its zone's resource table.
type TileInfo struct {
	Tile      *grid.Tile     `json:"tile"`
	Resources resource.Table `json:"resources"`
}

func (w *World) TileInfo(x, y int) (TileInfo, bool) {
	t := w.grid.GetTile(x, y)
	if t == nil {
		return TileInfo{}, false
	}
	info := TileInfo{Tile: t}
	if tbl, ok := w.oracle.TableFor(t.Zone); ok {
		info.Resources = tbl
	}
	return info, true
}

// AreaTiles lists every tile in the Euclidean disc. Reads only the
// immutable grid.
func (w *World) AreaTiles(x, y, r int) []protocol.AreaTile {
	if r > w.tun.MaxAreaRadius {
		r = w.tun.MaxAreaRadius
	}
	tiles := w.grid.TilesInRadius(x, y, r)
	out := make([]protocol.AreaTile, 0, len(tiles))
	for _, t := range tiles {
		at := protocol.AreaTile{
			X: t.X, Y: t.Y,
			Zone:     string(t.Zone),
			Biome:    t.Biome,
			Walkable: t.Walkable,
		}
		if c, ok := grid.TerrainCost(t.Zone); ok {
			at.MoveCost = 2 * c
		}
		out = append(out, at)
	}
	return out
}

func (w *World) MaxAreaRadius() int { return w.tun.MaxAreaRadius }
