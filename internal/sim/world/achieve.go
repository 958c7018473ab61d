package world

import (
	"driftworld/internal/sim/agent"
	"driftworld/internal/sim/mind"
)

// achievements is a small once-per-agent milestone tracker persisted as
// its own blob.
type achievements struct {
	ByAgent map[string]map[string]bool `json:"byAgent"`

	dirty bool
}

func newAchievements() *achievements {
	return &achievements{ByAgent: map[string]map[string]bool{}}
}

type achievementDef struct {
	id    string
	label string
	earn  func(w *World, a *agent.Agent, m *mind.Mind, nowTick uint64) bool
}

var achievementDefs = []achievementDef{
	{"first_harvest", "First Harvest", func(w *World, a *agent.Agent, m *mind.Mind, _ uint64) bool {
		return len(m.Memory.Gathered) > 0
	}},
	{"well_traveled", "Well-Traveled", func(w *World, a *agent.Agent, m *mind.Mind, _ uint64) bool {
		return len(m.Memory.Visited) >= 5
	}},
	{"socialite", "Socialite", func(w *World, a *agent.Agent, m *mind.Mind, _ uint64) bool {
		return len(a.Relationships) >= 5
	}},
	{"keeper_of_lore", "Keeper of Lore", func(w *World, a *agent.Agent, m *mind.Mind, _ uint64) bool {
		return len(w.know.Ensure(a.ID).LoreFragments) >= 3
	}},
	{"survivor", "Survivor", func(w *World, a *agent.Agent, m *mind.Mind, nowTick uint64) bool {
		ticksPerDay := uint64(24 * 60 / w.tun.MinutesPerTick)
		return nowTick-a.TicksBorn >= 7*ticksPerDay
	}},
}

func (ac *achievements) check(w *World, a *agent.Agent, m *mind.Mind, nowTick uint64) {
	earned := ac.ByAgent[a.ID]
	for _, def := range achievementDefs {
		if earned[def.id] {
			continue
		}
		if !def.earn(w, a, m, nowTick) {
			continue
		}
		if earned == nil {
			earned = map[string]bool{}
			ac.ByAgent[a.ID] = earned
		}
		earned[def.id] = true
		ac.dirty = true
		w.awardXP(a, 10)
		m.Remember(nowTick, "Earned the achievement: "+def.label+".")
		w.addNews("achievementUnlocked", a.ID, a.Name,
			a.Name+" earned the achievement "+def.label+"!", string(a.Zone))
	}
}
