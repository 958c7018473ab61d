package world

import (
	"fmt"
	"time"

	"driftworld/internal/sim/agent"
	"driftworld/internal/sim/cognition"
	"driftworld/internal/sim/knowledge"
	"driftworld/internal/sim/mind"
)

// stepAgent runs one agent's slice of the tick: migrate, cognition,
// survival, knowledge upkeep, achievements. All mutations for this
// agent happen here before the next agent is visited.
func (w *World) stepAgent(a *agent.Agent, nowTick uint64, now time.Time) {
	w.agents.MigratePosition(a)
	m := w.minds.Ensure(a.ID)
	sh := w.shared()

	w.applyWeatherCosts(a)

	if m.Intent != nil && m.Intent.Expired(nowTick) {
		m.Intent = nil
	}
	if m.Intent == nil {
		v := cognition.Perceive(sh, a, m)
		m.Intent = cognition.ChooseIntent(sh, a, m, v, w.timeOfDay(nowTick), w.weather, nowTick)
		if m.Intent != nil {
			w.stats.IntentsTotal++
		}
	}

	if m.Intent == nil {
		m.CurrentAction = mind.ActIdle
	} else {
		in := m.Intent
		m.CurrentAction = in.Action
		dist := chebyshevDist(a.TileX, a.TileY, in.TargetX, in.TargetY)
		arrived := dist == 0 || (dist <= 1 && a.Energy > cognition.MinStepEnergy)
		if arrived {
			if cognition.Execute(sh, a, m, in, nowTick, now) {
				m.Intent = nil
			}
			switch in.Action {
			case mind.ActCraft:
				w.observeAction(a, "cooking", nowTick)
			case mind.ActExperiment:
				w.observeAction(a, "alchemy", nowTick)
			case mind.ActBuild:
				w.projects.contribute(w, a, nowTick)
			case mind.ActFight:
				w.master.fight(w, a, m, nowTick)
			}
		} else {
			prevZone := a.Zone
			moved, stuck := cognition.StepToward(sh, a, m, in.TargetX, in.TargetY)
			if stuck {
				m.Intent = nil
				w.stats.StuckTotal++
			}
			if moved && a.Zone != prevZone {
				for _, s := range w.know.TrackZoneAction(a.ID, a.Zone, "visit", nowTick) {
					m.Remember(nowTick, "Discovered: "+s.Text)
					w.addNews("discovery", a.ID, a.Name,
						a.Name+" discovered a secret of the "+string(a.Zone)+"!", string(a.Zone))
				}
			}
		}
	}

	a.ApplyHunger(w.tun.Passive.HungerPerTick)
	if a.Hunger >= 100 {
		a.ApplyEnergy(-w.tun.Passive.StarveEnergyDrain)
		if a.Energy <= 0 {
			a.ApplyHP(-1)
		}
	}
	if a.HP <= 0 && a.Alive {
		a.Alive = false
		w.stats.DeathsTotal++
		w.addNews("narrative", a.ID, a.Name, a.Name+" has perished.", string(a.Zone))
	}

	w.rollScrollDamage(a, nowTick)
	w.achieve.check(w, a, m, nowTick)

	w.agents.MarkDirty()
	w.minds.MarkDirty()
}

// observeAction lets bystanders pick up a recipe by watching it
// performed. Gated per observer and knowledge to once a game-day.
func (w *World) observeAction(actor *agent.Agent, skill string, nowTick uint64) {
	actorK := w.know.Ensure(actor.ID)
	if len(actorK.KnownRecipes) == 0 {
		return
	}
	w.agents.Live(func(other *agent.Agent) {
		if other.ID == actor.ID || other.Zone != actor.Zone {
			return
		}
		otherK := w.know.Ensure(other.ID)
		var key string
		for _, r := range actorK.KnownRecipes {
			if !otherK.Knows(knowledge.TypeRecipe, r) {
				key = r
				break
			}
		}
		if key == "" {
			return
		}
		p := knowledge.ObserveChance(other.Proficiencies.Best(skill))
		if w.rng.Float64() >= p {
			return
		}
		if w.know.Observed(other.ID, actorK, knowledge.TypeRecipe, key, nowTick) {
			if om := w.minds.Get(other.ID); om != nil {
				om.Remember(nowTick, "Watched "+actor.Name+" work and picked up "+key+".")
			}
		}
	})
}

// awardXP grants XP outside the dispatcher (projects, encounters) with
// the same level-up announcement.
func (w *World) awardXP(a *agent.Agent, xp int) {
	res := a.Stats.Award(xp)
	if res.LeveledUp {
		w.addNews("level_up", a.ID, a.Name,
			fmt.Sprintf("%s reached level %d and is now a %s!", a.Name, res.Level, res.Title), string(a.Zone))
		a.GrantTitle(res.Title)
	}
}

func chebyshevDist(ax, ay, bx, by int) int {
	dx := ax - bx
	if dx < 0 {
		dx = -dx
	}
	dy := ay - by
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}
