package world

import (
	"encoding/json"

	"driftworld/internal/protocol"
	"driftworld/internal/sim/agent"
)

func (w *World) serializedAgents() []*agent.Agent {
	out := make([]*agent.Agent, 0, w.agents.Len())
	w.agents.All(func(a *agent.Agent) { out = append(out, a) })
	return out
}

// broadcastTick emits the full snapshot on the snapshot cadence and a
// position-only delta on every other tick. Path points are consumed
// here; clients use them for interpolation.
func (w *World) broadcastTick(nowTick uint64) {
	if len(w.observers) == 0 {
		w.clearPaths()
		return
	}

	var payload any
	if w.tun.FullSnapshotEveryTicks > 0 && nowTick%uint64(w.tun.FullSnapshotEveryTicks) == 0 {
		payload = protocol.TickFullMsg{
			Type:     protocol.TypeTick,
			Tick:     nowTick,
			GameTime: w.gameTime(nowTick),
			Weather:  string(w.weather),
			Agents:   w.serializedAgents(),
			Full:     true,
		}
	} else {
		delta := protocol.TickDeltaMsg{Type: protocol.TypeTick, Tick: nowTick}
		w.agents.All(func(a *agent.Agent) {
			da := protocol.DeltaAgent{
				ID:     a.ID,
				Name:   a.Name,
				TileX:  a.TileX,
				TileY:  a.TileY,
				HP:     a.HP,
				Energy: a.Energy,
				Alive:  a.Alive,
			}
			if m := w.minds.Get(a.ID); m != nil {
				da.Mind = protocol.DeltaMind{
					Action: string(m.CurrentAction),
					Mood:   m.Mood,
				}
				if m.Intent != nil {
					da.Mind.Intent = m.Intent
				}
				if len(m.PathThisTick) > 0 {
					da.Path = m.PathThisTick
				}
			}
			delta.Agents = append(delta.Agents, da)
		})
		payload = delta
	}

	b, err := json.Marshal(payload)
	if err != nil {
		w.logger.Printf("tick marshal: %v", err)
		w.clearPaths()
		return
	}
	for out := range w.observers {
		sendLatest(out, b)
	}
	w.stats.BroadcastsTotal++
	w.clearPaths()
}

func (w *World) clearPaths() {
	w.agents.All(func(a *agent.Agent) {
		if m := w.minds.Get(a.ID); m != nil && len(m.PathThisTick) > 0 {
			m.PathThisTick = m.PathThisTick[:0]
		}
	})
}
