package cognition

import (
	"fmt"
	"math"
	"sort"

	"driftworld/internal/sim/agent"
	"driftworld/internal/sim/mind"
	"driftworld/internal/sim/resource"
)

// traitBonus biases candidate scores by personality. Rows omit actions a
// trait is indifferent to.
var traitBonus = map[string]map[mind.Action]float64{
	"curious":     {mind.ActExplore: 8, mind.ActExperiment: 6},
	"cautious":    {mind.ActRest: 5, mind.ActFight: -10, mind.ActExplore: -3},
	"bold":        {mind.ActExplore: 5, mind.ActFight: 8},
	"creative":    {mind.ActCraft: 8, mind.ActExperiment: 8},
	"social":      {mind.ActChat: 10, mind.ActGift: 5},
	"solitary":    {mind.ActChat: -8, mind.ActExplore: 4},
	"patient":     {mind.ActRest: 4, mind.ActCraft: 4},
	"restless":    {mind.ActExplore: 8, mind.ActRest: -5},
	"generous":    {mind.ActGift: 10},
	"greedy":      {mind.ActGather: 8, mind.ActGift: -8},
	"stoic":       {mind.ActRest: 3, mind.ActFight: 3},
	"dramatic":    {mind.ActChat: 4, mind.ActFight: 4},
	"practical":   {mind.ActGather: 5, mind.ActCraft: 5},
	"dreamy":      {mind.ActExplore: 5, mind.ActExperiment: 4},
	"competitive": {mind.ActFight: 6, mind.ActCraft: 3},
	"nurturing":   {mind.ActGift: 6, mind.ActChat: 4},
}

func traitTerm(m *mind.Mind, act mind.Action) float64 {
	var sum float64
	for _, t := range m.Personality.Traits {
		sum += traitBonus[t][act]
	}
	return sum
}

type candidate struct {
	intent mind.Intent
	score  float64
}

// ChooseIntent scores every candidate the agent could pursue this tick
// and samples one proportionally from the top five. Returns nil when no
// candidate scores above zero.
func ChooseIntent(sh *Shared, a *agent.Agent, m *mind.Mind, v *Visible, tod TimeOfDay, w Weather, nowTick uint64) *mind.Intent {
	var cands []candidate
	add := func(in mind.Intent, score float64) {
		cands = append(cands, candidate{intent: in, score: score})
	}

	for _, r := range v.Resources {
		score := 20 + traitTerm(m, mind.ActGather)
		if a.Hunger > 50 && resource.IsFood(r.Resource) {
			score += 40
			if a.Hunger > 70 {
				score += 20
			}
		}
		score -= 2 * float64(r.Distance)
		in := mind.Intent{
			Action: mind.ActGather, TargetX: r.X, TargetY: r.Y,
			GatherX: r.X, GatherY: r.Y, HasGather: true,
			Reason: fmt.Sprintf("gather %s in %s", r.Resource, r.Source),
		}
		if !sh.Grid.Walkable(r.X, r.Y) {
			nx, ny, ok := nearestWalkableNeighbour(sh, r.X, r.Y, a.TileX, a.TileY)
			if !ok {
				continue
			}
			in.TargetX, in.TargetY = nx, ny
		}
		add(in, score)
	}

	for _, other := range v.Agents {
		rel := float64(a.RelationshipScore(other.ID))
		score := 15 + traitTerm(m, mind.ActChat)
		if rel >= 10 {
			score += 20
		} else if rel <= -5 {
			score -= 30
		}
		score -= 2 * float64(other.Distance)
		add(mind.Intent{
			Action: mind.ActChat, TargetX: other.X, TargetY: other.Y,
			TargetAgent: other.ID,
			Reason:      fmt.Sprintf("talk with %s", other.Name),
		}, score)

		if len(a.Inventory) > 0 && rel >= 5 {
			gscore := 10 + traitTerm(m, mind.ActGift) + rel - 2*float64(other.Distance)
			add(mind.Intent{
				Action: mind.ActGift, TargetX: other.X, TargetY: other.Y,
				TargetAgent: other.ID,
				Reason:      fmt.Sprintf("bring %s a gift", other.Name),
			}, gscore)
		}
	}

	for _, z := range v.UnknownZones {
		score := 15 + traitTerm(m, mind.ActExplore) - float64(z.Distance)
		add(mind.Intent{
			Action: mind.ActExplore, TargetX: z.X, TargetY: z.Y,
			Reason: fmt.Sprintf("explore the %s", z.Zone),
		}, score)
	}
	if len(v.UnknownZones) == 0 && len(m.Memory.Visited) < 20 {
		tx, ty := wanderTarget(sh, a)
		add(mind.Intent{
			Action: mind.ActExplore, TargetX: tx, TargetY: ty,
			Reason: "wander somewhere new",
		}, 10+traitTerm(m, mind.ActExplore))
	}

	if a.Energy < 30 {
		add(mind.Intent{
			Action: mind.ActRest, TargetX: a.TileX, TargetY: a.TileY,
			Reason: "exhausted, must rest",
		}, 60+(30-a.Energy))
	} else if a.Energy < 50 {
		add(mind.Intent{
			Action: mind.ActRest, TargetX: a.TileX, TargetY: a.TileY,
			Reason: "take a breather",
		}, 20+traitTerm(m, mind.ActRest))
	}

	if a.Hunger > 40 && hasFood(a) {
		add(mind.Intent{
			Action: mind.ActEat, TargetX: a.TileX, TargetY: a.TileY,
			Reason: "eat something",
		}, 50+a.Hunger)
	}

	if len(a.Inventory) >= 2 {
		cscore := 15 + traitTerm(m, mind.ActCraft)
		if len(a.Inventory) > 15 {
			cscore += 20
		}
		add(mind.Intent{
			Action: mind.ActCraft, TargetX: a.TileX, TargetY: a.TileY,
			Reason: "craft with what's on hand",
		}, cscore)
		add(mind.Intent{
			Action: mind.ActExperiment, TargetX: a.TileX, TargetY: a.TileY,
			Reason: "try combining things",
		}, 10+traitTerm(m, mind.ActExperiment))
	}

	for _, p := range v.Projects {
		d := chebyshev(a.TileX, a.TileY, p.X, p.Y)
		score := 20 + traitTerm(m, mind.ActBuild)
		if hasAnyOf(a, p.Needed) {
			score += 25
		} else {
			score -= 15
		}
		score -= 2 * float64(d)
		add(mind.Intent{
			Action: mind.ActBuild, TargetX: p.X, TargetY: p.Y,
			Reason: fmt.Sprintf("help build %s", p.Name),
		}, score)
	}

	for _, dgr := range v.Dangers {
		fscore := 5 + traitTerm(m, mind.ActFight)
		if a.Energy > 60 {
			fscore += 10
		}
		if fscore > 10 {
			add(mind.Intent{
				Action: mind.ActFight, TargetX: dgr.X, TargetY: dgr.Y,
				Reason: fmt.Sprintf("confront the %s", dgr.Kind),
			}, fscore)
		}

		fleeScore := 50.0
		if hasTrait(m, "cautious") {
			fleeScore += 30
		}
		if hasTrait(m, "bold") {
			fleeScore -= 20
		}
		tx := clampInt(a.TileX+8*sgn(a.TileX-dgr.X), 0, sh.Grid.Width()-1)
		ty := clampInt(a.TileY+8*sgn(a.TileY-dgr.Y), 0, sh.Grid.Height()-1)
		add(mind.Intent{
			Action: mind.ActExplore, TargetX: tx, TargetY: ty,
			Reason: fmt.Sprintf("flee the %s", dgr.Kind),
		}, fleeScore)
	}

	for i := range cands {
		cands[i].score += environmentBias(cands[i].intent.Action, tod, w)
		cands[i].score += temperamentBias(cands[i].intent.Action, m.Personality.Temperament)
		if cands[i].score < 0 {
			cands[i].score = 0
		}
	}

	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })
	top := cands
	if len(top) > 5 {
		top = top[:5]
	}
	var total float64
	n := 0
	for _, c := range top {
		if c.score <= 0 {
			break
		}
		total += c.score
		n++
	}
	if n == 0 {
		return nil
	}
	top = top[:n]

	roll := sh.RNG.Float64() * total
	pick := top[n-1]
	for _, c := range top {
		roll -= c.score
		if roll < 0 {
			pick = c
			break
		}
	}

	in := pick.intent
	in.StartedTick = nowTick
	in.MaxTicks = uint64(sh.Tuning.IntentMaxTicks)
	return &in
}

func environmentBias(act mind.Action, tod TimeOfDay, w Weather) float64 {
	var b float64
	if tod.Period == "night" {
		switch act {
		case mind.ActRest:
			b += 40
		case mind.ActExplore:
			b -= 20
		case mind.ActGather:
			b -= 10
		}
	}
	switch w {
	case WeatherStorm:
		switch act {
		case mind.ActRest:
			b += 30
		case mind.ActExplore, mind.ActGather, mind.ActBuild:
			b -= 15
		}
	case WeatherRain:
		switch act {
		case mind.ActRest, mind.ActCraft:
			b += 10
		case mind.ActGather:
			b -= 8
		}
	case WeatherClear:
		switch act {
		case mind.ActExplore:
			b += 12
		case mind.ActGather:
			b += 8
		}
	case WeatherHeatwave:
		switch act {
		case mind.ActRest:
			b += 20
		case mind.ActExplore:
			b -= 10
		}
	case WeatherFog:
		if act == mind.ActExplore {
			b += 10
		}
	}
	return b
}

func temperamentBias(act mind.Action, temperament string) float64 {
	switch temperament {
	case "restless":
		if act == mind.ActExplore {
			return 10
		}
	case "methodical":
		if act == mind.ActCraft || act == mind.ActGather {
			return 8
		}
	case "impulsive":
		if act == mind.ActExplore || act == mind.ActExperiment {
			return 10
		}
	case "calm":
		if act == mind.ActRest || act == mind.ActChat {
			return 5
		}
	}
	return 0
}

func hasTrait(m *mind.Mind, trait string) bool {
	for _, t := range m.Personality.Traits {
		if t == trait {
			return true
		}
	}
	return false
}

func hasFood(a *agent.Agent) bool {
	for _, it := range a.Inventory {
		if resource.IsFood(it.Name) {
			return true
		}
	}
	return false
}

func hasAnyOf(a *agent.Agent, names []string) bool {
	for _, n := range names {
		if a.FindItem(n) != nil {
			return true
		}
	}
	return false
}

// nearestWalkableNeighbour picks the walkable cell adjacent to (x,y)
// closest to the approaching agent.
func nearestWalkableNeighbour(sh *Shared, x, y, fromX, fromY int) (int, int, bool) {
	bestX, bestY, bestD := 0, 0, math.MaxInt
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if !sh.Grid.Walkable(nx, ny) {
				continue
			}
			if d := chebyshev(fromX, fromY, nx, ny); d < bestD {
				bestX, bestY, bestD = nx, ny, d
			}
		}
	}
	return bestX, bestY, bestD != math.MaxInt
}

// wanderTarget picks a point at polar offset r in [10,30] from the
// agent, clamped into bounds.
func wanderTarget(sh *Shared, a *agent.Agent) (int, int) {
	r := 10 + sh.RNG.Float64()*20
	theta := sh.RNG.Float64() * 2 * math.Pi
	tx := a.TileX + int(math.Round(r*math.Cos(theta)))
	ty := a.TileY + int(math.Round(r*math.Sin(theta)))
	return clampInt(tx, 0, sh.Grid.Width()-1), clampInt(ty, 0, sh.Grid.Height()-1)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
