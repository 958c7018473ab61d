package world

import (
	"driftworld/internal/sim/agent"
	"driftworld/internal/sim/cognition"
	"driftworld/internal/sim/grid"
	"driftworld/internal/sim/mind"
)

// worldMaster plants dangers and drops narrative beats. It runs on the
// world-master cadence and keeps its own state between invocations.
type worldMaster struct {
	active []activeDanger
}

type activeDanger struct {
	danger cognition.Danger
	until  uint64
}

var dangerKinds = []string{"wolf pack", "rockslide", "quicksand", "will-o-wisp"}

var narrativeBeats = []string{
	"A cold wind carries a song nobody remembers writing.",
	"Strange lights dance on the horizon at dusk.",
	"Old footprints appear on a path nobody has walked.",
	"Somewhere far off, a bell tolls once.",
}

func newWorldMaster() *worldMaster {
	return &worldMaster{}
}

// DangersIn implements cognition.DangerSource.
func (wm *worldMaster) DangersIn(z grid.Zone) []cognition.Danger {
	var out []cognition.Danger
	for _, d := range wm.active {
		if d.danger.Zone == z {
			out = append(out, d.danger)
		}
	}
	return out
}

func (wm *worldMaster) tick(w *World, nowTick uint64) {
	kept := wm.active[:0]
	for _, d := range wm.active {
		if nowTick >= d.until {
			w.addNews("consequenceEnd", "", "",
				"The "+d.danger.Kind+" in the "+string(d.danger.Zone)+" has moved on.", string(d.danger.Zone))
			continue
		}
		kept = append(kept, d)
	}
	wm.active = kept

	roll := w.rng.Float64()
	switch {
	case roll < 0.25 && len(wm.active) < 3:
		wm.plantDanger(w, nowTick)
	case roll < 0.45:
		w.addNews("narrative", "", "", narrativeBeats[w.rng.Intn(len(narrativeBeats))], "")
	}
}

// plantDanger drops a threat on a walkable tile near a random live
// agent so somebody actually encounters it.
func (wm *worldMaster) plantDanger(w *World, nowTick uint64) {
	var anchors []*agent.Agent
	w.agents.Live(func(a *agent.Agent) { anchors = append(anchors, a) })
	if len(anchors) == 0 {
		return
	}
	anchor := anchors[w.rng.Intn(len(anchors))]

	for try := 0; try < 20; try++ {
		x := anchor.TileX + w.rng.Intn(21) - 10
		y := anchor.TileY + w.rng.Intn(21) - 10
		if !w.grid.Walkable(x, y) {
			continue
		}
		d := cognition.Danger{
			Kind: dangerKinds[w.rng.Intn(len(dangerKinds))],
			Zone: w.grid.Zone(x, y),
			X:    x,
			Y:    y,
		}
		wm.active = append(wm.active, activeDanger{
			danger: d,
			until:  nowTick + 100 + uint64(w.rng.Intn(200)),
		})
		w.addNews("precursor", "", "",
			"Uneasy signs gather in the "+string(d.Zone)+".", string(d.Zone))
		w.addNews("zoneDanger", "", "",
			"A "+d.Kind+" now prowls the "+string(d.Zone)+"!", string(d.Zone))
		return
	}
}

// fight resolves an agent standing up to a nearby danger. Winning clears
// the danger; losing costs hit points.
func (wm *worldMaster) fight(w *World, a *agent.Agent, m *mind.Mind, nowTick uint64) {
	for i, d := range wm.active {
		if chebyshevDist(a.TileX, a.TileY, d.danger.X, d.danger.Y) > 1 {
			continue
		}
		winChance := 0.5 + 0.02*float64(a.Stats.Level)
		if winChance > 0.9 {
			winChance = 0.9
		}
		if w.rng.Float64() < winChance {
			wm.active = append(wm.active[:i], wm.active[i+1:]...)
			w.awardXP(a, 10)
			m.Remember(nowTick, "Drove off the "+d.danger.Kind+".")
			w.addNews("fight", a.ID, a.Name,
				a.Name+" drove off the "+d.danger.Kind+"!", string(d.danger.Zone))
			w.addNews("consequence", "", "",
				"The "+string(d.danger.Zone)+" is safe again.", string(d.danger.Zone))
		} else {
			a.ApplyHP(-10)
			m.Remember(nowTick, "The "+d.danger.Kind+" was too much; retreated hurt.")
			w.addNews("fight", a.ID, a.Name,
				a.Name+" was driven back by the "+d.danger.Kind+".", string(d.danger.Zone))
		}
		return
	}
}
