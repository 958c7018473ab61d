package cognition

import (
	"fmt"
	"math/rand"
	"time"

	"driftworld/internal/sim/agent"
	"driftworld/internal/sim/grid"
	"driftworld/internal/sim/knowledge"
	"driftworld/internal/sim/mind"
	"driftworld/internal/sim/resource"
)

// actionEnergy is the flat energy cost charged when an action executes.
var actionEnergy = map[mind.Action]float64{
	mind.ActGather:     3,
	mind.ActRest:       0,
	mind.ActExplore:    2,
	mind.ActChat:       1,
	mind.ActGift:       1,
	mind.ActCraft:      4,
	mind.ActExperiment: 4,
	mind.ActEat:        1,
	mind.ActBuild:      4,
	mind.ActFight:      5,
}

// restUntilEnergy keeps a rest intent alive until the agent has
// recovered this much.
const restUntilEnergy = 80

// Crafter is the pluggable cooking/experiment participant. The
// dispatcher hands it ingredients and a force; it decides the outcome.
type Crafter interface {
	Cook(a *agent.Agent, foods []string, rng *rand.Rand) (result string, ok bool)
	Combine(a *agent.Agent, itemA, itemB, force string, rng *rand.Rand) (result string, ok bool)
}

var exoticForces = []string{"spark", "frost", "echo", "void"}

// forceForZone maps the agent's surroundings to the natural force an
// experiment is exposed to there.
func forceForZone(z grid.Zone) string {
	switch z {
	case grid.ZoneSand:
		return "heat"
	case grid.ZoneWater, grid.ZoneRiver, grid.ZoneCoast, grid.ZoneSwamp:
		return "dissolve"
	case grid.ZoneForest:
		return "grow"
	case grid.ZoneRocky, grid.ZoneCave:
		return "impact"
	}
	return "combine"
}

// Execute runs the intent's action at the agent's current position and
// reports whether the intent is consumed. Only rest below the recovery
// threshold keeps its intent.
func Execute(sh *Shared, a *agent.Agent, m *mind.Mind, in *mind.Intent, nowTick uint64, now time.Time) bool {
	clear := true
	switch in.Action {
	case mind.ActGather:
		execGather(sh, a, m, in, nowTick)
	case mind.ActRest:
		a.ApplyEnergy(5)
		a.ApplyHunger(-1)
		clear = a.Energy >= restUntilEnergy
	case mind.ActExplore:
		execExplore(sh, a, m, nowTick)
	case mind.ActChat:
		execChat(sh, a, m, in, nowTick, now)
	case mind.ActGift:
		execGift(sh, a, m, in, nowTick)
	case mind.ActCraft:
		execCraft(sh, a, m, nowTick)
	case mind.ActExperiment:
		execExperiment(sh, a, m, nowTick)
	case mind.ActEat:
		execEat(sh, a, m, nowTick)
	case mind.ActFight, mind.ActBuild:
		// Resolved by the encounter and project participants; the
		// dispatcher only charges the exertion.
	}
	if cost := actionEnergy[in.Action]; cost > 0 {
		a.ApplyEnergy(-cost)
	}
	sh.Agents.MarkDirty()
	return clear
}

func execGather(sh *Shared, a *agent.Agent, m *mind.Mind, in *mind.Intent, nowTick uint64) {
	gx, gy := a.TileX, a.TileY
	if in.HasGather {
		gx, gy = in.GatherX, in.GatherY
	}
	name := sh.Oracle.Roll(gx, gy, sh.RNG)
	if name == "" {
		return
	}
	if !a.AddItem(name, 1, sh.Agents.InventoryCap()) {
		m.Remember(nowTick, "Pack is full, left the "+name+" behind.")
		return
	}
	m.Memory.Gathered[name]++
	awardXP(sh, a, 2)
	m.Remember(nowTick, fmt.Sprintf("Gathered %s in %s.", name, a.Zone))
	noteSecrets(sh, a, m, nowTick, sh.Knowledge.TrackZoneAction(a.ID, a.Zone, "gather", nowTick))
}

func execExplore(sh *Shared, a *agent.Agent, m *mind.Mind, nowTick uint64) {
	awardXP(sh, a, 3)
	m.Remember(nowTick, fmt.Sprintf("Explored new ground in %s.", a.Zone))
	noteSecrets(sh, a, m, nowTick, sh.Knowledge.TrackZoneAction(a.ID, a.Zone, "explore", nowTick))
	if sh.RNG.Float64() < 0.10 {
		fragment := knowledge.LoreAt(sh.RNG.Intn(knowledge.LoreCount()))
		if sh.Knowledge.GrantLore(a.ID, fragment, nowTick) {
			m.Remember(nowTick, "Learned a piece of lore: "+fragment)
			sh.Events.News("discovery", a.ID, a.Name, a.Name+" uncovered a fragment of lore.", a.Zone)
		}
	}
}

func execChat(sh *Shared, a *agent.Agent, m *mind.Mind, in *mind.Intent, nowTick uint64, now time.Time) {
	other := chatPartner(sh, a, in.TargetAgent)
	if other == nil {
		return
	}
	a.BumpRelationship(other.ID, 1, 1)
	other.BumpRelationship(a.ID, 1, 1)
	m.NoteRelationship(other.ID, other.Name, 1, 1)
	if om := sh.Minds.Get(other.ID); om != nil {
		om.NoteRelationship(a.ID, a.Name, 1, 1)
	}
	m.Remember(nowTick, "Chatted with "+other.Name+".")
	sh.Events.News("chat", a.ID, a.Name, a.Name+" and "+other.Name+" shared stories.", a.Zone)

	if sh.RNG.Float64() < 0.15 {
		if key, ok := teachableLore(sh, a, other); ok {
			if res, err := sh.Knowledge.Teach(a, other, knowledge.TypeLore, key, nowTick, now); err == nil {
				sh.Events.News("knowledgeShared", a.ID, a.Name,
					fmt.Sprintf("%s taught %s a piece of lore.", a.Name, other.Name), a.Zone)
				m.Remember(nowTick, fmt.Sprintf("Taught %s lore (mastery %.3f).", other.Name, res.StudentMastery))
			}
		}
	}
	if sh.RNG.Float64() < 0.20 {
		tradeOffer(sh, a, other, m, nowTick)
	}
}

// chatPartner prefers the intended target if still adjacent, otherwise
// picks randomly among up to 8 live neighbours within Chebyshev 2.
func chatPartner(sh *Shared, a *agent.Agent, targetID string) *agent.Agent {
	if targetID != "" {
		if t := sh.Agents.Get(targetID); t != nil && t.Alive &&
			chebyshev(a.TileX, a.TileY, t.TileX, t.TileY) <= 2 {
			return t
		}
	}
	var near []*agent.Agent
	sh.Agents.Live(func(other *agent.Agent) {
		if other.ID == a.ID || len(near) >= 8 {
			return
		}
		if chebyshev(a.TileX, a.TileY, other.TileX, other.TileY) <= 2 {
			near = append(near, other)
		}
	})
	if len(near) == 0 {
		return nil
	}
	return near[sh.RNG.Intn(len(near))]
}

func teachableLore(sh *Shared, teacher, student *agent.Agent) (string, bool) {
	tk := sh.Knowledge.Ensure(teacher.ID)
	sk := sh.Knowledge.Ensure(student.ID)
	for _, f := range tk.LoreFragments {
		if !sk.Knows(knowledge.TypeLore, f) {
			return f, true
		}
	}
	return "", false
}

// tradeOffer swaps one unit each way when both sides have something to
// give. Both inventories must accept the incoming item or nothing moves.
func tradeOffer(sh *Shared, a, b *agent.Agent, m *mind.Mind, nowTick uint64) {
	give := pickGiftItem(sh, a)
	take := pickGiftItem(sh, b)
	if give == nil || take == nil || give.Name == take.Name {
		return
	}
	cap := sh.Agents.InventoryCap()
	if !b.AddItem(give.Name, 1, cap) {
		return
	}
	if !a.AddItem(take.Name, 1, cap) {
		b.ConsumeItem(give.Name)
		return
	}
	a.ConsumeItem(give.Name)
	b.ConsumeItem(take.Name)
	a.BumpRelationship(b.ID, 2, 1)
	b.BumpRelationship(a.ID, 2, 1)
	m.Remember(nowTick, fmt.Sprintf("Traded %s for %s with %s.", give.Name, take.Name, b.Name))
	sh.Events.News("narrative", a.ID, a.Name,
		fmt.Sprintf("%s traded %s for %s with %s.", a.Name, give.Name, take.Name, b.Name), a.Zone)
}

func execGift(sh *Shared, a *agent.Agent, m *mind.Mind, in *mind.Intent, nowTick uint64) {
	recv := chatPartner(sh, a, in.TargetAgent)
	if recv == nil {
		return
	}
	it := pickGiftItem(sh, a)
	if it == nil {
		return
	}
	if !recv.AddItem(it.Name, 1, sh.Agents.InventoryCap()) {
		return
	}
	a.ConsumeItem(it.Name)
	a.BumpRelationship(recv.ID, 8, 1)
	recv.BumpRelationship(a.ID, 10, 1)
	m.Remember(nowTick, fmt.Sprintf("Gave %s to %s.", it.Name, recv.Name))
	sh.Events.News("gift", a.ID, a.Name,
		fmt.Sprintf("%s gave %s to %s.", a.Name, it.Name, recv.Name), a.Zone)
}

// pickGiftItem prefers items the agent has spares of.
func pickGiftItem(sh *Shared, a *agent.Agent) *agent.Item {
	if len(a.Inventory) == 0 {
		return nil
	}
	var spares []*agent.Item
	for _, it := range a.Inventory {
		if it.Quantity > 1 {
			spares = append(spares, it)
		}
	}
	if len(spares) > 0 {
		return spares[sh.RNG.Intn(len(spares))]
	}
	return a.Inventory[sh.RNG.Intn(len(a.Inventory))]
}

func execCraft(sh *Shared, a *agent.Agent, m *mind.Mind, nowTick uint64) {
	var foods []string
	for _, it := range a.Inventory {
		if resource.IsFood(it.Name) {
			foods = append(foods, it.Name)
			if len(foods) == 3 {
				break
			}
		}
	}
	if len(foods) > 0 {
		if sh.Crafter == nil {
			return
		}
		result, ok := sh.Crafter.Cook(a, foods, sh.RNG)
		if !ok {
			return
		}
		awardXP(sh, a, 5)
		a.Proficiencies.Practice("cooking", 5)
		m.Remember(nowTick, "Cooked "+result+".")
		sh.Events.News("craft", a.ID, a.Name, a.Name+" cooked "+result+".", a.Zone)
	} else {
		combineItems(sh, a, m, "combine", nowTick)
	}
	noteSecrets(sh, a, m, nowTick, sh.Knowledge.TrackZoneAction(a.ID, a.Zone, "craft", nowTick))
}

func execExperiment(sh *Shared, a *agent.Agent, m *mind.Mind, nowTick uint64) {
	force := forceForZone(a.Zone)
	if hasTrait(m, "creative") && sh.RNG.Float64() < 0.30 {
		force = exoticForces[sh.RNG.Intn(len(exoticForces))]
	}
	combineItems(sh, a, m, force, nowTick)
}

func combineItems(sh *Shared, a *agent.Agent, m *mind.Mind, force string, nowTick uint64) {
	if len(a.Inventory) < 2 || sh.Crafter == nil {
		return
	}
	i := sh.RNG.Intn(len(a.Inventory))
	j := sh.RNG.Intn(len(a.Inventory) - 1)
	if j >= i {
		j++
	}
	nameA, nameB := a.Inventory[i].Name, a.Inventory[j].Name
	result, ok := sh.Crafter.Combine(a, nameA, nameB, force, sh.RNG)
	if !ok {
		m.Remember(nowTick, fmt.Sprintf("Tried %s on %s and %s; nothing happened.", force, nameA, nameB))
		return
	}
	awardXP(sh, a, 4)
	a.Proficiencies.Practice("alchemy", 4)
	m.Remember(nowTick, fmt.Sprintf("Combined %s and %s with %s into %s.", nameA, nameB, force, result))
	sh.Events.News("experiment", a.ID, a.Name,
		fmt.Sprintf("%s combined %s and %s into %s!", a.Name, nameA, nameB, result), a.Zone)
}

func execEat(sh *Shared, a *agent.Agent, m *mind.Mind, nowTick uint64) {
	for _, it := range a.Inventory {
		if resource.IsFood(it.Name) {
			name := it.Name
			a.ConsumeItem(name)
			a.ApplyHunger(-30)
			a.ApplyEnergy(10)
			m.Remember(nowTick, "Ate "+name+".")
			return
		}
	}
}

func noteSecrets(sh *Shared, a *agent.Agent, m *mind.Mind, nowTick uint64, secrets []knowledge.ZoneSecret) {
	for _, s := range secrets {
		m.Remember(nowTick, "Discovered: "+s.Text)
		sh.Events.News("discovery", a.ID, a.Name,
			fmt.Sprintf("%s discovered a secret of the %s!", a.Name, a.Zone), a.Zone)
		sh.Events.Emit("discovery", map[string]any{
			"type": "discovery", "agentId": a.ID, "zone": a.Zone, "secret": s.Text,
		})
	}
}

func awardXP(sh *Shared, a *agent.Agent, xp int) {
	res := a.Stats.Award(xp)
	if res.LeveledUp {
		sh.Events.News("level_up", a.ID, a.Name,
			fmt.Sprintf("%s reached level %d and is now a %s!", a.Name, res.Level, res.Title), a.Zone)
		sh.Events.Emit("level_up", map[string]any{
			"type": "level_up", "agentId": a.ID, "level": res.Level, "title": res.Title,
		})
		a.GrantTitle(res.Title)
	}
}
