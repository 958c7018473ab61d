package world

import (
	"driftworld/internal/sim/agent"
	"driftworld/internal/sim/cognition"
	"driftworld/internal/sim/grid"
	"driftworld/internal/sim/knowledge"
)

type weatherSpell struct {
	w      cognition.Weather
	weight int
}

var weatherTable = []weatherSpell{
	{cognition.WeatherClear, 50},
	{cognition.WeatherRain, 18},
	{cognition.WeatherFog, 10},
	{cognition.WeatherStorm, 8},
	{cognition.WeatherHeatwave, 8},
	{cognition.WeatherSnow, 6},
}

// tickWeather rolls a new spell when the current one ends. Spells last
// 60 to 240 ticks.
func (w *World) tickWeather(nowTick uint64) {
	if nowTick < w.weatherUntil {
		return
	}
	total := 0
	for _, s := range weatherTable {
		total += s.weight
	}
	roll := w.rng.Intn(total)
	next := weatherTable[0].w
	for _, s := range weatherTable {
		roll -= s.weight
		if roll < 0 {
			next = s.w
			break
		}
	}
	w.weatherUntil = nowTick + 60 + uint64(w.rng.Intn(180))
	if next == w.weather {
		return
	}
	w.weather = next
	w.addNews("worldEvent", "", "", "The weather turns to "+string(next)+".", "")
}

// tickEcosystem is the ambient-world participant. Resources regrow
// implicitly (the oracle is stateless), so today this only posts the
// occasional seasonal note.
func (w *World) tickEcosystem(nowTick uint64) {
	if nowTick%1000 != 0 || nowTick == 0 {
		return
	}
	notes := []string{
		"Berry bushes hang heavy across the grasslands.",
		"The rivers run high and fast.",
		"Mushroom rings spread through the forest shade.",
		"Tidepools glitter along the coast.",
	}
	w.addNews("worldEvent", "", "", notes[w.rng.Intn(len(notes))], "")
}

// applyWeatherCosts runs before the agent's action selection each tick.
func (w *World) applyWeatherCosts(a *agent.Agent) {
	switch w.weather {
	case cognition.WeatherStorm:
		a.ApplyEnergy(-1.5)
	case cognition.WeatherHeatwave:
		a.ApplyHunger(0.5)
		a.ApplyEnergy(-0.5)
	case cognition.WeatherSnow:
		a.ApplyEnergy(-1)
	case cognition.WeatherRain:
		a.ApplyEnergy(-0.3)
	}
}

// wetZone reports whether carried scrolls are at risk where the agent
// stands: coast and sand always, grass only in rain or storm.
func (w *World) wetZone(z grid.Zone) bool {
	switch z {
	case grid.ZoneCoast, grid.ZoneSand:
		return true
	case grid.ZoneGrass:
		return w.weather == cognition.WeatherRain || w.weather == cognition.WeatherStorm
	}
	return false
}

func (w *World) rollScrollDamage(a *agent.Agent, nowTick uint64) {
	if !w.wetZone(a.Zone) {
		return
	}
	scrolls := make([]*agent.Item, 0, 2)
	for _, it := range a.Inventory {
		if it.ScrollData != nil {
			scrolls = append(scrolls, it)
		}
	}
	for _, it := range scrolls {
		if w.rng.Float64() >= w.tun.Knowledge.ScrollDamageChance {
			continue
		}
		key := it.ScrollData.KnowledgeKey
		if w.know.DamageScroll(a, it) {
			w.addNews("scrollDestroyed", a.ID, a.Name,
				"The damp ruined one of "+a.Name+"'s scrolls.", string(a.Zone))
			if m := w.minds.Get(a.ID); m != nil {
				m.Remember(nowTick, "A scroll about "+key+" rotted away.")
			}
		}
	}
}

// tickDecay runs mastery decay across every agent and broadcasts each
// forgotten entry.
func (w *World) tickDecay(nowTick uint64) {
	for _, f := range w.know.DecayTick(nowTick) {
		w.stats.ForgottenTotal++
		name := f.AgentID
		if a := w.agents.Get(f.AgentID); a != nil {
			name = a.Name
		}
		w.addNews("knowledgeForgotten", f.AgentID, name,
			name+" has forgotten "+f.Key+".", "")
		if m := w.minds.Get(f.AgentID); m != nil {
			m.Remember(nowTick, "The "+friendlyKind(f.Type)+" about "+f.Key+" slipped away.")
		}
	}
}

func friendlyKind(typ string) string {
	switch typ {
	case knowledge.TypeZoneSecret:
		return "secret"
	case knowledge.TypeLore:
		return "lore"
	case knowledge.TypeRecipe:
		return "recipe"
	}
	return "knowledge"
}
